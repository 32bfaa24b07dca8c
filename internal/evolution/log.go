// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evolution tracks how the corpus changes over time: a
// structured audit log of evolution cycles, git-tag snapshots for
// rollback, trigger detection, and front-matter diffs between commits.
package evolution

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

// ErrCycleNotFound is returned when an ID or name matches no cycle.
var ErrCycleNotFound = errors.New("cycle not found")

// Log is the structured audit log of evolution cycles, persisted as
// one JSON file.
type Log struct {
	log  *zap.SugaredLogger
	path string
}

type auditFile struct {
	Cycles []types.Cycle `json:"cycles"`
}

// NewLog returns an audit log stored at path.
func NewLog(log *zap.Logger, path string) *Log {
	return &Log{log: log.Sugar(), path: path}
}

func (l *Log) load() (*auditFile, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return &auditFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.path, err)
	}
	var audit auditFile
	if err := json.Unmarshal(data, &audit); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.path, err)
	}
	return &audit, nil
}

func (l *Log) save(audit *auditFile) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating audit directory: %w", err)
	}
	data, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling audit log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", l.path, err)
	}
	return nil
}

// Record opens a new in-progress cycle and returns it.
func (l *Log) Record(name string, trigger types.CycleTrigger, capabilityChanges, snapshotID string) (*types.Cycle, error) {
	audit, err := l.load()
	if err != nil {
		return nil, err
	}

	for _, c := range audit.Cycles {
		if c.Status == types.CycleInProgress {
			return nil, fmt.Errorf("cycle %q is still in progress; complete or revert it first", c.Name)
		}
	}

	cycle := types.Cycle{
		ID:                uuid.NewString(),
		Name:              name,
		StartedAt:         time.Now().UTC().Format(time.RFC3339),
		Trigger:           trigger,
		CapabilityChanges: capabilityChanges,
		Status:            types.CycleInProgress,
		SnapshotID:        snapshotID,
	}
	audit.Cycles = append(audit.Cycles, cycle)

	if err := l.save(audit); err != nil {
		return nil, err
	}
	l.log.Infow("cycle recorded", "cycle", name, "id", cycle.ID, "trigger", trigger)
	return &cycle, nil
}

// AddChange appends a per-command edit to a cycle.
func (l *Log) AddChange(idOrName string, change types.Change) error {
	return l.update(idOrName, func(c *types.Cycle) error {
		if c.Status != types.CycleInProgress {
			return fmt.Errorf("cycle %q is %s, changes can only be added in progress", c.Name, c.Status)
		}
		change.RecordedAt = time.Now().UTC().Format(time.RFC3339)
		c.Changes = append(c.Changes, change)
		return nil
	})
}

// Complete marks a cycle finished, optionally linking its PR.
func (l *Log) Complete(idOrName string, prNumber int) error {
	return l.update(idOrName, func(c *types.Cycle) error {
		if c.Status != types.CycleInProgress {
			return fmt.Errorf("cycle %q is already %s", c.Name, c.Status)
		}
		c.Status = types.CycleCompleted
		c.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		c.PRNumber = prNumber
		return nil
	})
}

// Revert marks a cycle rolled back with the operator's reason.
func (l *Log) Revert(idOrName, reason string) error {
	return l.update(idOrName, func(c *types.Cycle) error {
		if c.Status == types.CycleReverted {
			return fmt.Errorf("cycle %q is already reverted", c.Name)
		}
		c.Status = types.CycleReverted
		c.RevertedAt = time.Now().UTC().Format(time.RFC3339)
		c.RevertReason = reason
		return nil
	})
}

func (l *Log) update(idOrName string, fn func(*types.Cycle) error) error {
	audit, err := l.load()
	if err != nil {
		return err
	}
	for i := range audit.Cycles {
		c := &audit.Cycles[i]
		if c.ID == idOrName || c.Name == idOrName {
			if err := fn(c); err != nil {
				return err
			}
			return l.save(audit)
		}
	}
	return fmt.Errorf("%w: %s", ErrCycleNotFound, idOrName)
}

// Show returns one cycle by ID or name.
func (l *Log) Show(idOrName string) (*types.Cycle, error) {
	audit, err := l.load()
	if err != nil {
		return nil, err
	}
	for i := range audit.Cycles {
		c := &audit.Cycles[i]
		if c.ID == idOrName || c.Name == idOrName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCycleNotFound, idOrName)
}

// List returns all cycles, oldest first.
func (l *Log) List() ([]types.Cycle, error) {
	audit, err := l.load()
	if err != nil {
		return nil, err
	}
	return audit.Cycles, nil
}

// Timeline writes a chronological view of all cycles and their changes.
func (l *Log) Timeline(w io.Writer) error {
	cycles, err := l.List()
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Fprintln(w, "no evolution cycles recorded")
		return nil
	}

	for _, c := range cycles {
		fmt.Fprintf(w, "%s  %s [%s] trigger=%s", c.StartedAt, c.Name, c.Status, c.Trigger)
		if c.PRNumber > 0 {
			fmt.Fprintf(w, " pr=#%d", c.PRNumber)
		}
		fmt.Fprintln(w)
		if c.CapabilityChanges != "" {
			fmt.Fprintf(w, "    capability: %s\n", c.CapabilityChanges)
		}
		for _, ch := range c.Changes {
			fmt.Fprintf(w, "    %s.%s: %q -> %q (%s)\n",
				ch.Command, ch.Field, ch.Before, ch.After, ch.Rationale)
		}
		if c.RevertReason != "" {
			fmt.Fprintf(w, "    reverted: %s\n", c.RevertReason)
		}
	}
	return nil
}

// Analyze writes aggregate statistics over the audit log.
func (l *Log) Analyze(w io.Writer) error {
	cycles, err := l.List()
	if err != nil {
		return err
	}

	byStatus := make(map[types.CycleStatus]int)
	byTrigger := make(map[types.CycleTrigger]int)
	byCommand := make(map[string]int)
	totalChanges := 0

	for _, c := range cycles {
		byStatus[c.Status]++
		byTrigger[c.Trigger]++
		for _, ch := range c.Changes {
			byCommand[ch.Command]++
			totalChanges++
		}
	}

	fmt.Fprintf(w, "cycles: %d (completed %d, in progress %d, reverted %d)\n",
		len(cycles), byStatus[types.CycleCompleted],
		byStatus[types.CycleInProgress], byStatus[types.CycleReverted])

	triggers := make([]string, 0, len(byTrigger))
	for tr := range byTrigger {
		triggers = append(triggers, string(tr))
	}
	sort.Strings(triggers)
	for _, tr := range triggers {
		fmt.Fprintf(w, "trigger %s: %d\n", tr, byTrigger[types.CycleTrigger(tr)])
	}

	fmt.Fprintf(w, "changes: %d\n", totalChanges)
	if len(byCommand) > 0 {
		type count struct {
			slug string
			n    int
		}
		counts := make([]count, 0, len(byCommand))
		for slug, n := range byCommand {
			counts = append(counts, count{slug, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].n != counts[j].n {
				return counts[i].n > counts[j].n
			}
			return counts[i].slug < counts[j].slug
		})

		parts := make([]string, 0, 5)
		for i, c := range counts {
			if i >= 5 {
				break
			}
			parts = append(parts, fmt.Sprintf("/%s (%d)", c.slug, c.n))
		}
		fmt.Fprintf(w, "most changed: %s\n", strings.Join(parts, ", "))
	}
	return nil
}
