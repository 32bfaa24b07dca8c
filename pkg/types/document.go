// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ModelHint identifies the model tier a playbook command recommends.
type ModelHint string

const (
	ModelOpus   ModelHint = "opus"
	ModelSonnet ModelHint = "sonnet"
	ModelHaiku  ModelHint = "haiku"
)

// ValidModelHints lists the accepted Resource Hint models.
var ValidModelHints = []ModelHint{ModelOpus, ModelSonnet, ModelHaiku}

// IsValid reports whether the hint names a known model tier.
func (m ModelHint) IsValid() bool {
	for _, v := range ValidModelHints {
		if m == v {
			return true
		}
	}
	return false
}

// Tier classifies the effort size of a playbook command.
type Tier string

const (
	TierXS Tier = "XS"
	TierS  Tier = "S"
	TierM  Tier = "M"
	TierL  Tier = "L"
)

// Minutes returns the estimated working time for the tier. Unknown
// tiers fall back to 15 minutes.
func (t Tier) Minutes() int {
	switch t {
	case TierXS:
		return 5
	case TierS:
		return 10
	case TierM:
		return 25
	case TierL:
		return 45
	}
	return 15
}

// tierOrder gives a stable sort order from smallest to largest.
var tierOrder = map[Tier]int{TierXS: 0, TierS: 1, TierM: 2, TierL: 3}

// Less reports whether t sorts before other.
func (t Tier) Less(other Tier) bool {
	return tierOrder[t] < tierOrder[other]
}

// FrontMatter is the optional YAML header carried by playbook documents.
// Arrays use flow syntax in the files; the yaml package handles both.
type FrontMatter struct {
	// Name is the command slug, e.g. "pb-start".
	Name string `yaml:"name,omitempty"`

	// Title is the human-readable document title.
	Title string `yaml:"title,omitempty"`

	// Category mirrors the directory the document lives in.
	Category string `yaml:"category,omitempty"`

	// ModelHint mirrors the body Resource Hint. The body is
	// authoritative; reconciliation copies it here.
	ModelHint string `yaml:"model_hint,omitempty"`

	// RelatedCommands lists sibling slugs referenced by the document.
	RelatedCommands []string `yaml:"related_commands,omitempty"`

	// Tags are topic labels. Currently noisy and subject to cleanup.
	Tags []string `yaml:"tags,omitempty"`

	// LastReviewed is an ISO date string ("2026-02-09") set when a
	// human last audited the document.
	LastReviewed string `yaml:"last_reviewed,omitempty"`

	// LastEvolved is an ISO date string set by the evolution cycle.
	LastEvolved string `yaml:"last_evolved,omitempty"`
}

// Section is one `##` heading of a document body with its raw content.
type Section struct {
	// Heading is the section title as written.
	Heading string `json:"heading" yaml:"heading"`

	// Slug is the lowercased, hyphenated form of the heading.
	Slug string `json:"slug" yaml:"slug"`

	// Content is the raw markdown between this heading and the next.
	Content string `json:"content" yaml:"content"`

	// Position is the zero-based order of the section in the body.
	Position int `json:"position" yaml:"position"`
}

// Document is one parsed playbook command file.
type Document struct {
	// Slug is the file stem, e.g. "pb-start" for pb-start.md. Unique
	// within the corpus; duplicates are a lint error.
	Slug string `json:"slug" yaml:"slug"`

	// Path is the file path relative to the corpus root.
	Path string `json:"path" yaml:"path"`

	// Category is the parent directory name (core, planning, ...).
	Category string `json:"category" yaml:"category"`

	// Title is the first H1 heading. Empty when the document has none.
	Title string `json:"title" yaml:"title"`

	// TitleCount is the number of top-level headings found. Exactly
	// one is required.
	TitleCount int `json:"title_count" yaml:"title_count"`

	// Purpose is the first paragraph after the H1.
	Purpose string `json:"purpose" yaml:"purpose"`

	// FrontMatter holds the parsed YAML header, nil when absent.
	FrontMatter *FrontMatter `json:"front_matter,omitempty" yaml:"front_matter,omitempty"`

	// Sections are the `##` sections in body order.
	Sections []Section `json:"sections" yaml:"sections"`

	// References are all distinct /pb-* slugs mentioned anywhere in
	// the body, sorted, excluding the document's own slug.
	References []string `json:"references" yaml:"references"`

	// Body is the full raw file content, front-matter included.
	Body string `json:"-" yaml:"-"`

	// ModTime is the file modification time in RFC3339Nano, used for
	// incremental indexing.
	ModTime string `json:"mod_time" yaml:"mod_time"`
}

// SectionBySlug returns the section with the given slug, or nil.
func (d *Document) SectionBySlug(slug string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Slug == slug {
			return &d.Sections[i]
		}
	}
	return nil
}
