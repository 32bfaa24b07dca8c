// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"regexp"
	"sort"
	"strings"
)

var (
	titleRe     = regexp.MustCompile(`(?m)^#\s+([^#\n]+)`)
	sectionRe   = regexp.MustCompile(`(?m)^##\s+([^#\n]+)`)
	referenceRe = regexp.MustCompile(`/pb-[\w-]+`)
	emphasisRe  = regexp.MustCompile(`\*\*|__`)
	checklistRe = regexp.MustCompile(`\[\s*\]`)
	slugCleanRe = regexp.MustCompile(`[^\w\s-]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// ExtractTitle returns the first H1 heading with emphasis markup
// removed, or "" when the document has none.
func ExtractTitle(content string) string {
	m := titleRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(emphasisRe.ReplaceAllString(m[1], ""))
}

// CountTitles returns the number of H1 headings in the body.
func CountTitles(content string) int {
	return len(titleRe.FindAllString(content, -1))
}

// ExtractPurpose returns the first paragraph after the H1: the text up
// to the first blank line or "---" separator that is not itself a
// heading.
func ExtractPurpose(content string) string {
	loc := titleRe.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	rest := content[loc[1]:]
	for _, para := range strings.Split(rest, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || para == "---" {
			continue
		}
		if strings.HasPrefix(para, "#") {
			return ""
		}
		// First line only; the rest of the paragraph is detail.
		line, _, _ := strings.Cut(para, "\n")
		return strings.TrimSpace(line)
	}
	return ""
}

// Slugify lowercases a heading and replaces runs of whitespace with
// hyphens, dropping punctuation.
func Slugify(heading string) string {
	s := strings.ToLower(strings.TrimSpace(heading))
	s = slugCleanRe.ReplaceAllString(s, "")
	return spaceRe.ReplaceAllString(s, "-")
}

// References returns all distinct /pb-* slugs in the content, sorted,
// with the leading slash stripped. self is excluded when non-empty.
func References(content, self string) []string {
	seen := make(map[string]bool)
	for _, ref := range referenceRe.FindAllString(content, -1) {
		slug := strings.TrimPrefix(ref, "/")
		if slug == self {
			continue
		}
		seen[slug] = true
	}
	refs := make([]string, 0, len(seen))
	for slug := range seen {
		refs = append(refs, slug)
	}
	sort.Strings(refs)
	return refs
}

// OrderedReferences returns the /pb-* slugs in the content in document
// order, deduplicated, with the leading slash stripped. Order matters
// for workflow sections.
func OrderedReferences(content string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, ref := range referenceRe.FindAllString(content, -1) {
		slug := strings.TrimPrefix(ref, "/")
		if seen[slug] {
			continue
		}
		seen[slug] = true
		refs = append(refs, slug)
	}
	return refs
}

// SectionContent returns the raw content of the first `##` section
// whose heading matches any of the given names case-insensitively.
// Returns "" when no section matches.
func SectionContent(content string, names ...string) string {
	for _, sec := range splitSections(content) {
		heading := strings.ToLower(strings.TrimSpace(sec.heading))
		for _, name := range names {
			if strings.HasPrefix(heading, strings.ToLower(name)) {
				return sec.content
			}
		}
	}
	return ""
}

// rawSection pairs a `##` heading with the text up to the next `##`.
type rawSection struct {
	heading string
	content string
}

// splitSections breaks the body into `##` sections in document order.
func splitSections(content string) []rawSection {
	locs := sectionRe.FindAllStringSubmatchIndex(content, -1)
	sections := make([]rawSection, 0, len(locs))
	for i, loc := range locs {
		heading := strings.TrimSpace(content[loc[2]:loc[3]])
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := content[loc[1]:end]
		sections = append(sections, rawSection{heading: heading, content: strings.TrimSpace(body)})
	}
	return sections
}

// WhenToUseHeadings covers the "When to ..." heading variants found
// across the corpus.
var WhenToUseHeadings = []string{
	"When to Use", "When to Read", "When to Write",
	"When to Deprecate", "When to Optimize", "When to Create",
}

// HasCodeFence reports whether the body contains a ``` block.
func HasCodeFence(content string) bool {
	return strings.Contains(content, "```")
}

// HasChecklist reports whether the body contains [ ] checkbox syntax.
func HasChecklist(content string) bool {
	return checklistRe.MatchString(content)
}

// skillPrefixes mark AI prompt templates, which are not user commands
// and are excluded from discovery.
var skillPrefixes = []string{"You are ", "You will ", "You should ", "Lets "}

// IsSkillFile reports whether the content is a prompt template rather
// than a command document, judged by its first line.
func IsSkillFile(content string) bool {
	first, _, _ := strings.Cut(content, "\n")
	first = strings.TrimSpace(first)
	for _, p := range skillPrefixes {
		if strings.HasPrefix(first, p) {
			return true
		}
	}
	return false
}
