// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evolution

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// FieldDiff is one front-matter difference between two refs.
type FieldDiff struct {
	Command string `json:"command"`
	Field   string `json:"field"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// DiffFrontMatter compares the front-matter of every command document
// between two git refs. Documents present at only one ref are reported
// with the "document" pseudo-field.
func DiffFrontMatter(ctx context.Context, git *gitutil.Git, refA, refB, commandsDir string) ([]FieldDiff, error) {
	filesA, err := commandFiles(ctx, git, refA, commandsDir)
	if err != nil {
		return nil, err
	}
	filesB, err := commandFiles(ctx, git, refB, commandsDir)
	if err != nil {
		return nil, err
	}

	var diffs []FieldDiff

	for slug, path := range filesA {
		if _, ok := filesB[slug]; ok {
			continue
		}
		diffs = append(diffs, FieldDiff{Command: slug, Field: "document", Before: path, After: ""})
	}
	for slug, path := range filesB {
		if _, ok := filesA[slug]; ok {
			continue
		}
		diffs = append(diffs, FieldDiff{Command: slug, Field: "document", Before: "", After: path})
	}

	for slug, pathA := range filesA {
		pathB, ok := filesB[slug]
		if !ok {
			continue
		}
		fmA, err := frontMatterAt(ctx, git, refA, pathA)
		if err != nil {
			return nil, err
		}
		fmB, err := frontMatterAt(ctx, git, refB, pathB)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, diffFields(slug, fmA, fmB)...)
	}

	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Command != diffs[j].Command {
			return diffs[i].Command < diffs[j].Command
		}
		return diffs[i].Field < diffs[j].Field
	})
	return diffs, nil
}

func commandFiles(ctx context.Context, git *gitutil.Git, ref, commandsDir string) (map[string]string, error) {
	paths, err := git.ListFiles(ctx, ref, commandsDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s at %s: %w", commandsDir, ref, err)
	}

	files := make(map[string]string)
	for _, path := range paths {
		base := filepath.Base(path)
		if strings.HasPrefix(base, "pb-") && strings.HasSuffix(base, ".md") {
			files[strings.TrimSuffix(base, ".md")] = path
		}
	}
	return files, nil
}

func frontMatterAt(ctx context.Context, git *gitutil.Git, ref, path string) (*types.FrontMatter, error) {
	content, err := git.ShowFile(ctx, ref, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", path, ref, err)
	}
	fm, err := corpus.ParseFrontMatter(content)
	if err != nil {
		// A ref may hold a malformed header; treat it as absent rather
		// than failing the whole diff.
		return nil, nil
	}
	return fm, nil
}

func diffFields(slug string, a, b *types.FrontMatter) []FieldDiff {
	fields := func(fm *types.FrontMatter) map[string]string {
		if fm == nil {
			return map[string]string{}
		}
		return map[string]string{
			"title":            fm.Title,
			"category":         fm.Category,
			"model_hint":       fm.ModelHint,
			"related_commands": strings.Join(fm.RelatedCommands, ","),
			"tags":             strings.Join(fm.Tags, ","),
			"last_reviewed":    fm.LastReviewed,
			"last_evolved":     fm.LastEvolved,
		}
	}

	fa, fb := fields(a), fields(b)
	var diffs []FieldDiff
	for _, field := range []string{
		"title", "category", "model_hint", "related_commands",
		"tags", "last_reviewed", "last_evolved",
	} {
		if fa[field] != fb[field] {
			diffs = append(diffs, FieldDiff{
				Command: slug,
				Field:   field,
				Before:  fa[field],
				After:   fb[field],
			})
		}
	}
	return diffs
}
