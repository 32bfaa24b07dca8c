// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus discovers and parses playbook command documents.
// A corpus is a directory tree of pb-*.md files, one category per
// subdirectory, each file optionally carrying YAML front-matter.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

// DefaultPattern matches command documents at any depth.
const DefaultPattern = "**/pb-*.md"

// Corpus is the loaded set of command documents.
type Corpus struct {
	// Root is the commands directory the corpus was loaded from.
	Root string

	// Documents are the parsed documents sorted by slug.
	Documents []*types.Document

	// Skipped lists slugs of skill files excluded from discovery.
	Skipped []string

	bySlug map[string]*types.Document
}

// Load discovers and parses all command documents under cfg.CommandsDir.
// Skill files (prompt templates) are recorded in Skipped but not
// parsed. Individual parse failures abort the load; a corpus with a
// broken document is not usable for extraction or linting.
func Load(cfg types.CorpusConfig) (*Corpus, error) {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(cfg.CommandsDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no command documents found under %s", cfg.CommandsDir)
	}
	sort.Strings(matches)

	c := &Corpus{
		Root:   cfg.CommandsDir,
		bySlug: make(map[string]*types.Document),
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		content := string(data)

		slug := strings.TrimSuffix(filepath.Base(path), ".md")
		if IsSkillFile(content) {
			c.Skipped = append(c.Skipped, slug)
			continue
		}

		doc, err := Parse(path, content)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		if rel, relErr := filepath.Rel(cfg.CommandsDir, path); relErr == nil {
			doc.Path = rel
		}

		if info, statErr := os.Stat(path); statErr == nil {
			doc.ModTime = info.ModTime().UTC().Format(time.RFC3339Nano)
		}

		c.Documents = append(c.Documents, doc)
		// First document wins on duplicate slugs; linting reports the
		// collision.
		if _, dup := c.bySlug[doc.Slug]; !dup {
			c.bySlug[doc.Slug] = doc
		}
	}

	return c, nil
}

// Parse builds a Document from raw file content. The path supplies the
// slug (file stem) and category (parent directory name).
func Parse(path, content string) (*types.Document, error) {
	slug := strings.TrimSuffix(filepath.Base(path), ".md")

	fm, err := ParseFrontMatter(content)
	if err != nil {
		return nil, err
	}
	_, body, _ := SplitFrontMatter(content)

	raw := splitSections(body)
	sections := make([]types.Section, len(raw))
	for i, sec := range raw {
		sections[i] = types.Section{
			Heading:  sec.heading,
			Slug:     Slugify(sec.heading),
			Content:  sec.content,
			Position: i,
		}
	}

	return &types.Document{
		Slug:        slug,
		Path:        path,
		Category:    filepath.Base(filepath.Dir(path)),
		Title:       ExtractTitle(body),
		TitleCount:  CountTitles(body),
		Purpose:     ExtractPurpose(body),
		FrontMatter: fm,
		Sections:    sections,
		References:  References(body, slug),
		Body:        content,
	}, nil
}

// Get returns the document with the given slug, or nil.
func (c *Corpus) Get(slug string) *types.Document {
	return c.bySlug[slug]
}

// Slugs returns the set of all document slugs.
func (c *Corpus) Slugs() map[string]bool {
	slugs := make(map[string]bool, len(c.Documents))
	for _, doc := range c.Documents {
		slugs[doc.Slug] = true
	}
	return slugs
}

// Duplicates returns slugs that appear in more than one file, with the
// offending paths.
func (c *Corpus) Duplicates() map[string][]string {
	paths := make(map[string][]string)
	for _, doc := range c.Documents {
		paths[doc.Slug] = append(paths[doc.Slug], doc.Path)
	}
	dups := make(map[string][]string)
	for slug, p := range paths {
		if len(p) > 1 {
			dups[slug] = p
		}
	}
	return dups
}
