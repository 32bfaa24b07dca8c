package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

const driftedDoc = `---
name: "pb-review-code"
model_hint: "opus"
tags: ['review', 'quality']
---
# Code Review

Review a diff.

**Resource Hint:** sonnet — review quality holds at the lower tier.

## When to Use

Before each PR.
`

const agreeingDoc = `---
name: "pb-start"
model_hint: "sonnet"
---
# Start

Branch setup.

**Resource Hint:** sonnet — mechanical.
`

func writeCorpus(t *testing.T) (*corpus.Corpus, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "core")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"pb-review-code.md": driftedDoc,
		"pb-start.md":       agreeingDoc,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c, err := corpus.Load(types.CorpusConfig{CommandsDir: root})
	if err != nil {
		t.Fatal(err)
	}
	return c, root
}

func TestSyncModelHintsCheckOnly(t *testing.T) {
	c, root := writeCorpus(t)

	actions, err := New(zap.NewNop()).SyncModelHints(c, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1: %v", len(actions), actions)
	}
	a := actions[0]
	if a.Command != "pb-review-code" || a.Before != "opus" || a.After != "sonnet" {
		t.Errorf("action = %+v", a)
	}
	if a.Applied {
		t.Error("check-only run must not apply")
	}

	// File untouched.
	data, _ := os.ReadFile(filepath.Join(root, "core", "pb-review-code.md"))
	if !strings.Contains(string(data), `model_hint: "opus"`) {
		t.Error("check-only run rewrote the file")
	}
}

func TestSyncModelHintsFix(t *testing.T) {
	c, root := writeCorpus(t)

	actions, err := New(zap.NewNop()).SyncModelHints(c, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || !actions[0].Applied {
		t.Fatalf("actions = %v", actions)
	}

	data, err := os.ReadFile(filepath.Join(root, "core", "pb-review-code.md"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, `model_hint: "sonnet"`) {
		t.Errorf("model_hint not rewritten:\n%s", content)
	}
	// The body stays authoritative and untouched.
	if !strings.Contains(content, "**Resource Hint:** sonnet") {
		t.Error("body was modified")
	}
}

func TestCleanTags(t *testing.T) {
	c, root := writeCorpus(t)

	actions, err := New(zap.NewNop()).CleanTags(c, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Command != "pb-review-code" {
		t.Fatalf("actions = %v", actions)
	}

	data, err := os.ReadFile(filepath.Join(root, "core", "pb-review-code.md"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "tags:") {
		t.Error("tags line not removed")
	}
	if !strings.Contains(string(data), `name: "pb-review-code"`) {
		t.Error("surrounding front-matter damaged")
	}
}
