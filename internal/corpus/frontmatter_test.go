package corpus

import (
	"strings"
	"testing"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

const sampleDoc = `---
name: "pb-start"
title: "Start a Feature"
category: "core"
model_hint: "sonnet"
related_commands: ['pb-cycle', 'pb-commit']
tags: ['workflow', 'git']
last_reviewed: "2026-02-09"
last_evolved: ""
---
# Start a Feature

**Resource Hint:** sonnet — branch setup is mechanical.

## When to Use

Use daily when beginning work.
`

func TestSplitFrontMatter(t *testing.T) {
	raw, body, ok := SplitFrontMatter(sampleDoc)
	if !ok {
		t.Fatal("front-matter not detected")
	}
	if !strings.Contains(raw, `name: "pb-start"`) {
		t.Errorf("raw front-matter missing name: %q", raw)
	}
	if strings.Contains(raw, "---") {
		t.Errorf("raw front-matter should not contain delimiters: %q", raw)
	}
	if !strings.HasPrefix(body, "# Start a Feature") {
		t.Errorf("body should start at the H1: %q", body[:40])
	}
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	content := "# No Header\n\nPlain document.\n"
	raw, body, ok := SplitFrontMatter(content)
	if ok {
		t.Error("front-matter falsely detected")
	}
	if raw != "" || body != content {
		t.Errorf("content should pass through unchanged")
	}
}

func TestParseFrontMatter(t *testing.T) {
	fm, err := ParseFrontMatter(sampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	if fm == nil {
		t.Fatal("expected front-matter")
	}
	if fm.Name != "pb-start" {
		t.Errorf("Name = %q, want pb-start", fm.Name)
	}
	if fm.ModelHint != "sonnet" {
		t.Errorf("ModelHint = %q, want sonnet", fm.ModelHint)
	}
	if len(fm.RelatedCommands) != 2 || fm.RelatedCommands[0] != "pb-cycle" {
		t.Errorf("RelatedCommands = %v", fm.RelatedCommands)
	}
	if fm.LastReviewed != "2026-02-09" {
		t.Errorf("LastReviewed = %q", fm.LastReviewed)
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	fm, err := ParseFrontMatter("# Plain\n")
	if err != nil {
		t.Fatal(err)
	}
	if fm != nil {
		t.Errorf("expected nil front-matter, got %+v", fm)
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	content := "---\nname: [unclosed\n---\n# Doc\n"
	_, err := ParseFrontMatter(content)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetModelHint(t *testing.T) {
	updated := SetModelHint(sampleDoc, types.ModelOpus)

	if !strings.Contains(updated, `model_hint: "opus"`) {
		t.Errorf("model_hint not rewritten:\n%s", updated)
	}
	if strings.Contains(updated, `model_hint: "sonnet"`) {
		t.Error("old model_hint still present")
	}
	// Body untouched, including the (now conflicting) Resource Hint.
	if !strings.Contains(updated, "**Resource Hint:** sonnet") {
		t.Error("body should be preserved byte for byte")
	}
}

func TestSetModelHintNoFrontMatter(t *testing.T) {
	content := "# Doc\n\nBody.\n"
	if got := SetModelHint(content, types.ModelHaiku); got != content {
		t.Errorf("content without front-matter should pass through")
	}
}

func TestStripTags(t *testing.T) {
	updated := StripTags(sampleDoc)
	if strings.Contains(updated, "tags:") {
		t.Error("tags line should be removed")
	}
	if !strings.Contains(updated, `last_reviewed: "2026-02-09"`) {
		t.Error("surrounding fields should survive")
	}
}

func TestExtractResourceHint(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    types.ModelHint
	}{
		{"sonnet", "**Resource Hint:** sonnet — mechanical work\n", types.ModelSonnet},
		{"opus", "**Resource Hint:** opus — deep design\n", types.ModelOpus},
		{"absent", "# Doc with no hint\n", ""},
		{"unknown model", "**Resource Hint:** gpt5 — nope\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractResourceHint(tt.content); got != tt.want {
				t.Errorf("ExtractResourceHint() = %q, want %q", got, tt.want)
			}
		})
	}
}
