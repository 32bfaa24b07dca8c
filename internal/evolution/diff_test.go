package evolution

import (
	"context"
	"testing"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
)

func TestDiffFrontMatter(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	// Second commit: change pb-start's hint, add pb-cycle.
	writeRepoFile(t, dir, "commands/core/pb-start.md",
		"---\nname: \"pb-start\"\nmodel_hint: \"haiku\"\nlast_reviewed: \"2026-08-01\"\n---\n# Start\n\nBranch setup.\n")
	writeRepoFile(t, dir, "commands/core/pb-cycle.md",
		"---\nname: \"pb-cycle\"\nmodel_hint: \"sonnet\"\n---\n# Cycle\n\nLoop.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "evolve pb-start, add pb-cycle")

	diffs, err := DiffFrontMatter(ctx, gitutil.New(dir), "HEAD~1", "HEAD", "commands")
	if err != nil {
		t.Fatal(err)
	}

	byKey := make(map[string]FieldDiff)
	for _, d := range diffs {
		byKey[d.Command+"."+d.Field] = d
	}

	hint, ok := byKey["pb-start.model_hint"]
	if !ok {
		t.Fatalf("model_hint diff missing: %v", diffs)
	}
	if hint.Before != "sonnet" || hint.After != "haiku" {
		t.Errorf("hint diff = %+v", hint)
	}

	reviewed, ok := byKey["pb-start.last_reviewed"]
	if !ok || reviewed.Before != "2026-02-09" || reviewed.After != "2026-08-01" {
		t.Errorf("last_reviewed diff = %+v (ok=%v)", reviewed, ok)
	}

	added, ok := byKey["pb-cycle.document"]
	if !ok || added.Before != "" || added.After == "" {
		t.Errorf("added document diff = %+v (ok=%v)", added, ok)
	}
}

func TestDiffFrontMatterIdenticalRefs(t *testing.T) {
	dir := initRepo(t)

	diffs, err := DiffFrontMatter(context.Background(), gitutil.New(dir), "HEAD", "HEAD", "commands")
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 0 {
		t.Errorf("identical refs should produce no diffs: %v", diffs)
	}
}

func TestDiffFrontMatterRemovedDocument(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "rm", "-q", "commands/core/pb-start.md")
	runGit(t, dir, "commit", "-q", "-m", "retire pb-start")

	diffs, err := DiffFrontMatter(context.Background(), gitutil.New(dir), "HEAD~1", "HEAD", "commands")
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 1 || diffs[0].Field != "document" || diffs[0].After != "" {
		t.Errorf("diffs = %v, want one removed-document entry", diffs)
	}
}
