package extract

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

func writeDoc(t *testing.T, root, category, name, content string) {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func loadCorpus(t *testing.T, root string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Load(types.CorpusConfig{CommandsDir: root})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

const startDoc = `---
name: "pb-start"
model_hint: "sonnet"
---
# Start a Feature

Create a feature branch before iterating.

**Resource Hint:** sonnet — branch setup is mechanical.

Tier: [XS, S]

## When to Use

Use daily when beginning work.
Use when: you have a fresh task.

## Next Steps

1. /pb-cycle
2. /pb-commit

## Checklist

- [ ] branch created
`

func TestExtractAll(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-start.md", startDoc)
	writeDoc(t, root, "core", "pb-cycle.md", "# Iteration Cycle\n\nRun the loop.\n\n## When to Use\n\nUse per iteration.\n")
	writeDoc(t, root, "core", "pb-commit.md", "# Commit\n\nStage and commit.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))

	if out.MetadataVersion != MetadataVersion {
		t.Errorf("MetadataVersion = %q", out.MetadataVersion)
	}
	if out.TotalCommands != 3 {
		t.Fatalf("TotalCommands = %d, want 3", out.TotalCommands)
	}
	if out.Report.ExtractionSuccess != 3 {
		t.Errorf("ExtractionSuccess = %d", out.Report.ExtractionSuccess)
	}
	if len(out.Report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", out.Report.Errors)
	}

	cat := out.Categories["core"]
	if cat == nil || cat.Count != 3 {
		t.Fatalf("Categories[core] = %+v", cat)
	}
	if cat.Commands[0] != "pb-commit" {
		t.Errorf("category commands not sorted: %v", cat.Commands)
	}
}

func TestExtractDocFields(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-start.md", startDoc)
	writeDoc(t, root, "core", "pb-cycle.md", "# Cycle\n\nLoop.\n")
	writeDoc(t, root, "core", "pb-commit.md", "# Commit\n\nStage.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))
	meta := out.Commands["pb-start"]
	if meta == nil {
		t.Fatal("pb-start missing")
	}

	if meta.Title != "Start a Feature" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Purpose != "Create a feature branch before iterating." {
		t.Errorf("Purpose = %q", meta.Purpose)
	}
	if meta.ModelHint != types.ModelSonnet {
		t.Errorf("ModelHint = %q", meta.ModelHint)
	}
	if len(meta.Tiers) != 2 || meta.Tiers[0] != types.TierXS {
		t.Errorf("Tiers = %v", meta.Tiers)
	}
	if meta.Frequency != types.FreqDaily {
		t.Errorf("Frequency = %q", meta.Frequency)
	}
	if len(meta.NextSteps) != 2 || meta.NextSteps[0] != "/pb-cycle" {
		t.Errorf("NextSteps = %v", meta.NextSteps)
	}
	if len(meta.RelatedCommands) != 2 {
		t.Errorf("RelatedCommands = %v", meta.RelatedCommands)
	}
	if !meta.HasChecklist {
		t.Error("HasChecklist should be true")
	}
	if meta.HasExamples {
		t.Error("HasExamples should be false without code fences")
	}
	if len(meta.DecisionContext) == 0 {
		t.Error("DecisionContext should pick up the use when line")
	}
	if meta.SourceFile != filepath.Join("core", "pb-start.md") {
		t.Errorf("SourceFile = %q", meta.SourceFile)
	}
	if meta.ExtractedAt == "" {
		t.Error("ExtractedAt not set")
	}
}

func TestConfidenceScores(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-start.md", startDoc)
	writeDoc(t, root, "core", "pb-cycle.md", "# Cycle\n\nLoop.\n")
	writeDoc(t, root, "core", "pb-commit.md", "# Commit\n\nStage.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))

	start := out.Commands["pb-start"]
	if start.ConfidenceScores["tier"] != 0.95 {
		t.Errorf("explicit tier score = %v, want 0.95", start.ConfidenceScores["tier"])
	}
	if start.ConfidenceScores["next_steps"] != 0.90 {
		t.Errorf("next_steps score = %v, want 0.90", start.ConfidenceScores["next_steps"])
	}
	if start.AverageConfidence <= 0 || start.AverageConfidence > 1 {
		t.Errorf("AverageConfidence = %v", start.AverageConfidence)
	}

	// pb-commit has no When to Use section and no tier evidence.
	commit := out.Commands["pb-commit"]
	if commit.ConfidenceScores["frequency"] != 0.60 {
		t.Errorf("frequency score = %v, want 0.60", commit.ConfidenceScores["frequency"])
	}
	if commit.ConfidenceScores["tier"] != 0 {
		t.Errorf("tier score = %v, want 0", commit.ConfidenceScores["tier"])
	}
}

func TestAverageConfidenceSkipsAbsentOptional(t *testing.T) {
	scores := map[string]float64{
		"command":       1.0,
		"title":         1.0,
		"next_steps":    0,
		"prerequisites": 0,
	}
	if got := averageConfidence(scores); got != 1.0 {
		t.Errorf("averageConfidence = %v, want 1.0", got)
	}
}

func TestValidateDanglingReference(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-start.md", "# Start\n\nBranch setup, then /pb-ghost.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))

	found := false
	for _, w := range out.Report.Warnings {
		if w.Command == "pb-start" && w.Field == "related_commands" {
			found = true
		}
	}
	if !found {
		t.Errorf("dangling reference not reported: %v", out.Report.Warnings)
	}
}

func TestValidateMissingTitle(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-untitled.md", "No heading, just prose.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))

	found := false
	for _, f := range out.Report.Errors {
		if f.Command == "pb-untitled" && f.Field == "title" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing title not reported: %v", out.Report.Errors)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "core", "pb-start.md", startDoc)
	writeDoc(t, root, "core", "pb-cycle.md", "# Cycle\n\nLoop.\n")
	writeDoc(t, root, "core", "pb-commit.md", "# Commit\n\nStage.\n")

	eng := New(zap.NewNop())
	out := eng.ExtractAll(loadCorpus(t, root))

	path := filepath.Join(t.TempDir(), ".playbook-metadata.json")
	if err := Save(out, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalCommands != out.TotalCommands {
		t.Errorf("TotalCommands = %d, want %d", loaded.TotalCommands, out.TotalCommands)
	}
	if loaded.Commands["pb-start"].Title != "Start a Feature" {
		t.Errorf("round-trip lost title")
	}
}
