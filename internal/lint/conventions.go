// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// relatedLinkLimit caps the Related Commands section. Hub documents,
// which exist to route between commands, get a higher cap.
const (
	relatedLinkLimit    = 5
	hubRelatedLinkLimit = 10
)

// rawResourceHintRe captures whatever model name follows the marker,
// valid or not, so invalid names can be reported instead of ignored.
var rawResourceHintRe = regexp.MustCompile(`\*\*Resource Hint:\*\*\s+(\S+)`)

func (l *Linter) checkTitle(doc *types.Document, r *Report) {
	switch {
	case doc.TitleCount == 0:
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Issue:    "no top-level heading",
			Severity: "error",
		})
	case doc.TitleCount > 1:
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Issue:    fmt.Sprintf("%d top-level headings, want exactly 1", doc.TitleCount),
			Severity: "error",
		})
	}
}

func (l *Linter) checkDuplicates(c *corpus.Corpus, r *Report) {
	for slug, paths := range c.Duplicates() {
		r.Findings = append(r.Findings, types.Finding{
			Command:  slug,
			Issue:    fmt.Sprintf("slug defined by %d files: %s", len(paths), strings.Join(paths, ", ")),
			Severity: "error",
		})
	}
}

func (l *Linter) checkReferences(doc *types.Document, slugs map[string]bool, r *Report) {
	for _, ref := range doc.References {
		if !slugs[ref] {
			r.Findings = append(r.Findings, types.Finding{
				Command:  doc.Slug,
				Issue:    fmt.Sprintf("reference /%s does not resolve", ref),
				Severity: "error",
			})
		}
	}
}

func (l *Linter) checkResourceHint(doc *types.Document, r *Report) {
	m := rawResourceHintRe.FindStringSubmatch(doc.Body)
	if m == nil {
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "resource_hint",
			Issue:    "missing Resource Hint line",
			Severity: "error",
		})
		return
	}

	hint := types.ModelHint(strings.ToLower(m[1]))
	if !hint.IsValid() {
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "resource_hint",
			Issue:    fmt.Sprintf("unknown model %q in Resource Hint", m[1]),
			Severity: "error",
		})
	}
}

func (l *Linter) checkWhenToUse(doc *types.Document, r *Report) {
	_, body, _ := corpus.SplitFrontMatter(doc.Body)
	if corpus.SectionContent(body, corpus.WhenToUseHeadings...) == "" {
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "when_to_use",
			Issue:    "missing When to Use section",
			Severity: "error",
		})
	}
}

func (l *Linter) checkRelatedCommands(doc *types.Document, r *Report) {
	_, body, _ := corpus.SplitFrontMatter(doc.Body)
	section := corpus.SectionContent(body, "Related Commands")
	if section == "" {
		return
	}

	limit := relatedLinkLimit
	for _, hub := range l.cfg.HubCommands {
		if doc.Slug == hub {
			limit = hubRelatedLinkLimit
		}
	}

	links := countRelatedLinks(section)
	switch {
	case links == 0:
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "related_commands",
			Issue:    "Related Commands section has no command links",
			Severity: "warning",
		})
	case links > limit:
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "related_commands",
			Issue:    fmt.Sprintf("%d links in Related Commands, limit %d", links, limit),
			Severity: "error",
		})
	}
}

// countRelatedLinks counts bullet lines that link a command. Prose
// mentions do not count against the limit, and a horizontal rule ends
// the section.
func countRelatedLinks(section string) int {
	count := 0
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "---") {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), "- `/pb-") {
			count++
		}
	}
	return count
}

func (l *Linter) checkFrontMatter(doc *types.Document, r *Report) {
	fm := doc.FrontMatter
	if fm == nil {
		return
	}

	if fm.Name != "" && fm.Name != doc.Slug {
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "name",
			Issue:    fmt.Sprintf("front-matter name %q does not match file slug", fm.Name),
			Severity: "warning",
		})
	}

	bodyHint := corpus.ExtractResourceHint(doc.Body)
	if fm.ModelHint != "" && bodyHint != "" && types.ModelHint(fm.ModelHint) != bodyHint {
		r.Findings = append(r.Findings, types.Finding{
			Command:  doc.Slug,
			Field:    "model_hint",
			Issue:    fmt.Sprintf("front-matter model_hint %q disagrees with Resource Hint %q", fm.ModelHint, bodyHint),
			Severity: "warning",
		})
	}
}

func (l *Linter) checkExpectedCount(c *corpus.Corpus, r *Report) {
	if l.cfg.ExpectedCount > 0 && len(c.Documents) != l.cfg.ExpectedCount {
		r.Findings = append(r.Findings, types.Finding{
			Issue:    fmt.Sprintf("corpus has %d documents, expected %d", len(c.Documents), l.cfg.ExpectedCount),
			Severity: "error",
		})
	}
}
