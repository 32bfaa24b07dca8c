// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CorpusConfig holds settings for document discovery and parsing.
type CorpusConfig struct {
	// CommandsDir is the corpus root containing category directories
	// of pb-*.md files (default "commands").
	CommandsDir string `json:"commands_dir" yaml:"commands_dir"`

	// Pattern is the doublestar glob used for discovery
	// (default "**/pb-*.md").
	Pattern string `json:"pattern" yaml:"pattern"`

	// ExpectedCount, when non-zero, makes validation fail unless the
	// corpus contains exactly this many command documents.
	ExpectedCount int `json:"expected_count" yaml:"expected_count"`

	// HubCommands lists documents allowed the higher related-link
	// limit (default pb-patterns.md).
	HubCommands []string `json:"hub_commands" yaml:"hub_commands"`
}

// ExtractionConfig holds settings for the metadata extraction stage.
type ExtractionConfig struct {
	// MetadataFile is the JSON output path
	// (default ".playbook-metadata.json").
	MetadataFile string `json:"metadata_file" yaml:"metadata_file"`
}

// IndexConfig holds settings for the full-text corpus index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database
	// (default ".playbook-index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// QuickRefConfig holds settings for quick-reference generation.
type QuickRefConfig struct {
	// OutputFile is the generated markdown path
	// (default ".playbook-quick-ref.md").
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// EvolutionConfig holds settings for evolution tracking.
type EvolutionConfig struct {
	// AuditFile is the structured log path
	// (default "todos/evolution-audit.json").
	AuditFile string `json:"audit_file" yaml:"audit_file"`

	// SnapshotsDir holds the snapshot registry
	// (default "todos/evolution-snapshots").
	SnapshotsDir string `json:"snapshots_dir" yaml:"snapshots_dir"`

	// CycleThreshold is how long after the last cycle the calendar
	// trigger fires (default 90 days).
	CycleThreshold time.Duration `json:"cycle_threshold" yaml:"cycle_threshold"`

	// StaleThreshold is how old a last_reviewed date may be before a
	// document counts as stale (default 180 days).
	StaleThreshold time.Duration `json:"stale_threshold" yaml:"stale_threshold"`

	// FeedbackDir is scanned for user feedback files
	// (default "todos/feedback").
	FeedbackDir string `json:"feedback_dir" yaml:"feedback_dir"`
}

// SignalsConfig holds settings for git history mining.
type SignalsConfig struct {
	// Since is the git time range expression (default "1 year ago").
	Since string `json:"since" yaml:"since"`

	// OutputDir receives the JSON metrics and markdown summary
	// (default "todos/git-signals/latest").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// TopN caps ranked metric lists (default 20).
	TopN int `json:"top_n" yaml:"top_n"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is how long to wait after the last filesystem event
	// before re-extracting (default 500ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	QuickRef   QuickRefConfig   `json:"quickref" yaml:"quickref"`
	Evolution  EvolutionConfig  `json:"evolution" yaml:"evolution"`
	Signals    SignalsConfig    `json:"signals" yaml:"signals"`
	Watch      WatchConfig      `json:"watch" yaml:"watch"`
}
