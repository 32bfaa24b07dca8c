package index

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.IndexConfig{
		IndexDir:   filepath.Join(tmpDir, ".playbook-index"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

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

func sampleCorpus(t *testing.T, tmpDir string) *corpus.Corpus {
	t.Helper()
	root := filepath.Join(tmpDir, "commands")

	writeDoc(t, root, "core", "pb-start.md", `# Start a Feature

Create a feature branch before iterating.

**Resource Hint:** sonnet — mechanical setup.

## When to Use

Use daily when beginning new work.

## Next Steps

1. /pb-cycle
`)
	writeDoc(t, root, "core", "pb-cycle.md", `# Iteration Cycle

Run the edit test review loop.

**Resource Hint:** sonnet — routine iteration.

## When to Use

Use per iteration until the feature is complete.
`)
	writeDoc(t, root, "reviews", "pb-review-code.md", `---
name: "pb-review-code"
tags: ["review", "quality"]
---
# Code Review

Review logic and architecture in a diff.

**Resource Hint:** opus — judgment calls.

## When to Use

Use before each pull request.
`)

	c, err := corpus.Load(types.CorpusConfig{CommandsDir: root})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func ingest(t *testing.T, store *Store, c *corpus.Corpus) IngestSummary {
	t.Helper()
	summary, err := store.Ingest(context.Background(), c, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	return summary
}

// --- ingest ---

func TestIngestFresh(t *testing.T) {
	store, tmpDir := testSetup(t)
	c := sampleCorpus(t, tmpDir)

	summary := ingest(t, store, c)
	if summary.Indexed != 3 {
		t.Errorf("Indexed = %d, want 3", summary.Indexed)
	}
	if summary.Updated != 0 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	c := sampleCorpus(t, tmpDir)

	ingest(t, store, c)
	summary := ingest(t, store, c)
	if summary.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3: %+v", summary.Skipped, summary)
	}
}

func TestIngestDetectsChange(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	// Fake a newer mod time; reloading from disk can round-trip the
	// same timestamp on fast filesystems.
	c := sampleCorpus(t, tmpDir)
	c.Documents[0].ModTime = "2099-01-01T00:00:00Z"

	summary := ingest(t, store, c)
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1: %+v", summary.Updated, summary)
	}
	if summary.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2: %+v", summary.Skipped, summary)
	}
}

func TestIngestRemovesStale(t *testing.T) {
	store, tmpDir := testSetup(t)
	c := sampleCorpus(t, tmpDir)
	ingest(t, store, c)

	if err := os.Remove(filepath.Join(tmpDir, "commands", "reviews", "pb-review-code.md")); err != nil {
		t.Fatal(err)
	}
	smaller, err := corpus.Load(types.CorpusConfig{CommandsDir: filepath.Join(tmpDir, "commands")})
	if err != nil {
		t.Fatal(err)
	}

	summary := ingest(t, store, smaller)
	if summary.Removed != 1 {
		t.Errorf("Removed = %d, want 1: %+v", summary.Removed, summary)
	}

	hits, err := store.Search(context.Background(), QueryOptions{Slug: "pb-review-code"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale document still searchable: %v", hits)
	}
}

// --- search ---

func TestSearchFullText(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{Query: "iteration"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for iteration")
	}
	for _, h := range hits {
		if !strings.Contains(strings.ToLower(h.Content), "iteration") {
			t.Errorf("hit %s does not mention iteration: %q", h.ID, h.Content)
		}
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{Category: "reviews"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits in reviews category")
	}
	for _, h := range hits {
		if h.DocSlug != "pb-review-code" {
			t.Errorf("unexpected hit %s", h.DocSlug)
		}
	}
}

func TestSearchModelFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{Model: types.ModelOpus})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.Model != types.ModelOpus {
			t.Errorf("hit %s has model %q, want opus", h.ID, h.Model)
		}
	}
	if len(hits) == 0 {
		t.Fatal("no opus hits")
	}
}

func TestSearchTagFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{Tag: "review"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for tag review")
	}
	for _, h := range hits {
		if h.DocSlug != "pb-review-code" {
			t.Errorf("unexpected hit %s", h.DocSlug)
		}
	}

	// "rev" is a substring of "review" but not a stored tag.
	hits, err = store.Search(context.Background(), QueryOptions{Tag: "rev"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("partial tag should not match: %v", hits)
	}
}

func TestSearchCombinedQueryAndFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{
		Query:    "use",
		Category: "core",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.Category != "core" {
			t.Errorf("hit %s in category %q, want core", h.ID, h.Category)
		}
	}
}

func TestSearchMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	hits, err := store.Search(context.Background(), QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

// --- export ---

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	if err := store.ExportJSON(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".playbook-index", "export.json"))
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Slug != "pb-cycle" {
		t.Errorf("entries not sorted by slug: %s first", entries[0].Slug)
	}

	var start *ExportEntry
	for i := range entries {
		if entries[i].Slug == "pb-start" {
			start = &entries[i]
		}
	}
	if start == nil {
		t.Fatal("pb-start missing from export")
	}
	if start.Model != types.ModelSonnet {
		t.Errorf("Model = %q", start.Model)
	}
	if len(start.Sections) != 2 || start.Sections[0] != "when-to-use" {
		t.Errorf("Sections = %v", start.Sections)
	}
	if len(start.References) != 1 || start.References[0] != "pb-cycle" {
		t.Errorf("References = %v", start.References)
	}
}

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingest(t, store, sampleCorpus(t, tmpDir))

	if err := store.ExportYAML(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(tmpDir, ".playbook-index", "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "slug: pb-start") {
		t.Errorf("export.yaml missing pb-start:\n%s", data)
	}
}
