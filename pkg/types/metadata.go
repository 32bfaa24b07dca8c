// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Frequency describes how often a command is expected to be used,
// derived from its "When to Use" section.
type Frequency string

const (
	FreqDaily          Frequency = "daily"
	FreqWeekly         Frequency = "weekly"
	FreqStartOfFeature Frequency = "start-of-feature"
	FreqPerIteration   Frequency = "per-iteration"
	FreqPerPR          Frequency = "per-pr"
	FreqPreRelease     Frequency = "pre-release"
	FreqOnIncident     Frequency = "on-incident"
	FreqOneTime        Frequency = "one-time"
	FreqAsNeeded       Frequency = "as-needed"
)

// DocMetadata is the derived metadata for a single playbook command.
// Every field is extracted from the document itself; nothing is entered
// by hand.
type DocMetadata struct {
	// Command is the document slug.
	Command string `json:"command"`

	// Category is the parent directory name.
	Category string `json:"category"`

	// Title is the first H1 heading.
	Title string `json:"title,omitempty"`

	// Purpose is the first paragraph after the H1.
	Purpose string `json:"purpose,omitempty"`

	// Tiers lists the effort tiers found in the document, smallest
	// first. Empty when no tier evidence was found.
	Tiers []Tier `json:"tier,omitempty"`

	// ModelHint is the model named by the body Resource Hint.
	ModelHint ModelHint `json:"model_hint,omitempty"`

	// RelatedCommands are all distinct /pb-* references, sorted.
	RelatedCommands []string `json:"related_commands,omitempty"`

	// NextSteps are the /pb-* references from a Next Steps or Workflow
	// section, in document order.
	NextSteps []string `json:"next_steps,omitempty"`

	// Prerequisites are the /pb-* references from a Prerequisites or
	// Before section, in document order.
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Frequency is the derived usage cadence.
	Frequency Frequency `json:"frequency"`

	// DecisionContext maps conditions to the command they route to,
	// from "condition → /pb-x" arrows and "Use when:" lines.
	DecisionContext map[string]string `json:"decision_context,omitempty"`

	// Sections lists the slugified `##` headings.
	Sections []string `json:"sections,omitempty"`

	// HasExamples reports whether the body contains code fences.
	HasExamples bool `json:"has_examples"`

	// HasChecklist reports whether the body contains checkbox items.
	HasChecklist bool `json:"has_checklist"`

	// SourceFile is the document path relative to the corpus root.
	SourceFile string `json:"source_file"`

	// ExtractedAt is the UTC extraction timestamp, RFC3339.
	ExtractedAt string `json:"extracted_at"`

	// ConfidenceScores holds a 0..1 score per extracted field.
	ConfidenceScores map[string]float64 `json:"confidence_scores,omitempty"`

	// AverageConfidence averages the relevant confidence scores.
	// Missing optional fields are excluded.
	AverageConfidence float64 `json:"average_confidence"`
}

// CategorySummary groups the commands of one category.
type CategorySummary struct {
	Count    int      `json:"count"`
	Commands []string `json:"commands"`
}

// Finding is one validation problem discovered during extraction or
// linting.
type Finding struct {
	// Command is the affected slug. Empty for corpus-level findings.
	Command string `json:"command,omitempty"`

	// Field names the metadata field at fault, when applicable.
	Field string `json:"field,omitempty"`

	// Issue is the human-readable description.
	Issue string `json:"issue"`

	// Severity is "error" or "warning".
	Severity string `json:"severity"`
}

// ExtractionReport summarizes one extraction run.
type ExtractionReport struct {
	TotalCommands     int       `json:"total_commands"`
	ExtractionSuccess int       `json:"extraction_success"`
	AverageConfidence float64   `json:"average_confidence"`
	Warnings          []Finding `json:"warnings"`
	Errors            []Finding `json:"errors"`
}

// CorpusMetadata is the complete extraction output written to
// .playbook-metadata.json.
type CorpusMetadata struct {
	// MetadataVersion identifies the output schema.
	MetadataVersion string `json:"metadata_version"`

	// ExtractionDate is the UTC run timestamp, RFC3339.
	ExtractionDate string `json:"extraction_date"`

	// TotalCommands counts the extracted documents.
	TotalCommands int `json:"total_commands"`

	// Commands maps slug to its derived metadata.
	Commands map[string]*DocMetadata `json:"commands"`

	// Categories groups commands by category.
	Categories map[string]*CategorySummary `json:"categories"`

	// Report carries the run summary.
	Report ExtractionReport `json:"extraction_report"`
}
