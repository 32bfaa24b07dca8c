// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CycleStatus is the lifecycle state of an evolution cycle.
type CycleStatus string

const (
	CycleInProgress CycleStatus = "in_progress"
	CycleCompleted  CycleStatus = "completed"
	CycleReverted   CycleStatus = "reverted"
)

// CycleTrigger names what prompted an evolution cycle.
type CycleTrigger string

const (
	TriggerQuarterly      CycleTrigger = "quarterly"
	TriggerVersionUpgrade CycleTrigger = "version_upgrade"
	TriggerUserFeedback   CycleTrigger = "user_feedback"
	TriggerManual         CycleTrigger = "manual"
)

// Change records one field-level edit to a command within a cycle.
type Change struct {
	// Command is the slug of the edited document.
	Command string `json:"command"`

	// Field is the metadata field that changed (e.g. "model_hint").
	Field string `json:"field"`

	// Before is the value prior to the change.
	Before string `json:"before"`

	// After is the value after the change.
	After string `json:"after"`

	// Rationale explains the edit.
	Rationale string `json:"rationale"`

	// RecordedAt is the RFC3339 timestamp of the record.
	RecordedAt string `json:"recorded_at"`
}

// Cycle is one evolution pass over the corpus.
type Cycle struct {
	// ID is a generated UUID for the cycle.
	ID string `json:"id"`

	// Name is the human label, e.g. "Q1 2026".
	Name string `json:"cycle"`

	// StartedAt is the RFC3339 start timestamp.
	StartedAt string `json:"started_at"`

	// CompletedAt is set when the cycle finishes.
	CompletedAt string `json:"completed_at,omitempty"`

	// RevertedAt is set when the cycle is rolled back.
	RevertedAt string `json:"reverted_at,omitempty"`

	// RevertReason explains a rollback.
	RevertReason string `json:"revert_reason,omitempty"`

	// Trigger names what prompted the cycle.
	Trigger CycleTrigger `json:"trigger"`

	// CapabilityChanges describes upstream model capability changes
	// motivating the cycle.
	CapabilityChanges string `json:"capability_changes"`

	// Changes are the recorded per-command edits.
	Changes []Change `json:"changes"`

	// Status is the lifecycle state.
	Status CycleStatus `json:"status"`

	// SnapshotID links the pre-cycle snapshot tag, when one exists.
	SnapshotID string `json:"snapshot_id,omitempty"`

	// PRNumber links the pull request that landed the cycle.
	PRNumber int `json:"pr_number,omitempty"`
}

// SnapshotStatus is the state of a pre-evolution snapshot.
type SnapshotStatus string

const (
	SnapshotActive SnapshotStatus = "active"
	SnapshotUsed   SnapshotStatus = "used"
)

// Snapshot records one git-tag backup taken before an evolution cycle.
type Snapshot struct {
	// ID is the git tag name, e.g. "evolution-20260115-093012".
	ID string `json:"id"`

	// CreatedAt is the RFC3339 creation timestamp.
	CreatedAt string `json:"created_at"`

	// Message is the operator-supplied description.
	Message string `json:"message"`

	// Commit is the full hash the tag points at.
	Commit string `json:"commit"`

	// Branch is the branch that was checked out at creation time.
	Branch string `json:"branch"`

	// Status is active until the snapshot is used for a rollback.
	Status SnapshotStatus `json:"status"`
}

// TriggerSeverity ranks a detected evolution trigger.
type TriggerSeverity string

const (
	SeverityHigh   TriggerSeverity = "high"
	SeverityMedium TriggerSeverity = "medium"
	SeverityInfo   TriggerSeverity = "info"
)

// EvolutionTrigger is one detected signal that a cycle is due.
// Detection is reporting only; acting on a trigger is a human call.
type EvolutionTrigger struct {
	// Type names the check that fired (calendar_trigger,
	// staleness_trigger, user_feedback, first_evolution).
	Type string `json:"type"`

	// Severity ranks the signal.
	Severity TriggerSeverity `json:"severity"`

	// Message describes the signal.
	Message string `json:"message"`

	// Recommendation suggests an action, when one exists.
	Recommendation string `json:"recommendation,omitempty"`

	// StaleCommands samples the stale documents for staleness
	// triggers, capped at ten.
	StaleCommands []StaleCommand `json:"stale_commands,omitempty"`
}

// StaleCommand identifies a document whose review date has lapsed.
type StaleCommand struct {
	Command      string `json:"command"`
	LastReviewed string `json:"last_reviewed"`
	DaysStale    int    `json:"days_stale"`
}
