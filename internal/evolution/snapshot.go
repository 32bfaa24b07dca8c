// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// ErrSnapshotNotFound is returned when an ID matches no snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrDirtyTree is returned when a snapshot operation requires a clean
// working tree.
var ErrDirtyTree = errors.New("working tree has uncommitted changes")

const (
	tagPrefix    = "evolution-"
	registryFile = "registry.json"
)

// Snapshotter manages pre-evolution git-tag snapshots and their
// registry.
type Snapshotter struct {
	log         *zap.SugaredLogger
	git         *gitutil.Git
	dir         string
	commandsDir string
}

type registry struct {
	Snapshots []types.Snapshot `json:"snapshots"`
}

// NewSnapshotter returns a snapshotter storing its registry under dir
// and rolling back the corpus at commandsDir.
func NewSnapshotter(log *zap.Logger, git *gitutil.Git, dir, commandsDir string) *Snapshotter {
	return &Snapshotter{log: log.Sugar(), git: git, dir: dir, commandsDir: commandsDir}
}

func (s *Snapshotter) loadRegistry() (*registry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, registryFile))
	if os.IsNotExist(err) {
		return &registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot registry: %w", err)
	}
	var reg registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing snapshot registry: %w", err)
	}
	return &reg, nil
}

func (s *Snapshotter) saveRegistry(reg *registry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshots directory: %w", err)
	}
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot registry: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, registryFile), data, 0o644)
}

// Create tags HEAD as a new snapshot. The corpus directory must be
// clean; a snapshot of uncommitted state would not be restorable. The
// registry and other generated files outside the corpus do not block.
func (s *Snapshotter) Create(ctx context.Context, message string) (*types.Snapshot, error) {
	dirty, err := s.git.IsDirty(ctx, s.commandsDir)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, ErrDirtyTree
	}

	commit, err := s.git.Head(ctx)
	if err != nil {
		return nil, err
	}
	branch, err := s.git.Branch(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snap := types.Snapshot{
		ID:        tagPrefix + now.Format("20060102-150405"),
		CreatedAt: now.Format(time.RFC3339),
		Message:   message,
		Commit:    commit,
		Branch:    branch,
		Status:    types.SnapshotActive,
	}

	if err := s.git.CreateTag(ctx, snap.ID, message); err != nil {
		return nil, fmt.Errorf("tagging snapshot: %w", err)
	}

	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	reg.Snapshots = append(reg.Snapshots, snap)
	if err := s.saveRegistry(reg); err != nil {
		return nil, err
	}

	s.log.Infow("snapshot created", "id", snap.ID, "commit", commit, "branch", branch)
	return &snap, nil
}

// List returns all registered snapshots, oldest first.
func (s *Snapshotter) List() ([]types.Snapshot, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Snapshots, nil
}

// Show returns one snapshot by ID.
func (s *Snapshotter) Show(id string) (*types.Snapshot, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	for i := range reg.Snapshots {
		if reg.Snapshots[i].ID == id {
			return &reg.Snapshots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
}

// Rollback restores the corpus directory from a snapshot tag, records a
// rollback marker commit for the audit trail, and marks the snapshot
// used. The corpus directory must be clean so the rollback does not
// clobber unmerged edits.
func (s *Snapshotter) Rollback(ctx context.Context, id string) error {
	reg, err := s.loadRegistry()
	if err != nil {
		return err
	}

	var snap *types.Snapshot
	for i := range reg.Snapshots {
		if reg.Snapshots[i].ID == id {
			snap = &reg.Snapshots[i]
		}
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	dirty, err := s.git.IsDirty(ctx, s.commandsDir)
	if err != nil {
		return err
	}
	if dirty {
		return ErrDirtyTree
	}

	if err := s.git.CheckoutPaths(ctx, snap.ID, s.commandsDir); err != nil {
		return fmt.Errorf("restoring %s from %s: %w", s.commandsDir, snap.ID, err)
	}

	// checkout <tag> -- dir stages the restored files; the marker commit
	// records them. Allow-empty covers a rollback to the current state.
	marker := fmt.Sprintf("rollback: restored from snapshot %s\n\nOriginal message: %s",
		snap.ID, snap.Message)
	if err := s.git.Commit(ctx, marker, true); err != nil {
		return fmt.Errorf("recording rollback commit: %w", err)
	}

	snap.Status = types.SnapshotUsed
	if err := s.saveRegistry(reg); err != nil {
		return err
	}

	s.log.Infow("snapshot restored", "id", id, "dir", s.commandsDir)
	return nil
}

// Cleanup deletes the oldest snapshots beyond keep, removing both the
// git tag and the registry entry. Returns the deleted IDs.
func (s *Snapshotter) Cleanup(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	if len(reg.Snapshots) <= keep {
		return nil, nil
	}

	drop := reg.Snapshots[:len(reg.Snapshots)-keep]
	var removed []string
	for _, snap := range drop {
		if err := s.git.DeleteTag(ctx, snap.ID); err != nil {
			return removed, fmt.Errorf("deleting tag %s: %w", snap.ID, err)
		}
		removed = append(removed, snap.ID)
	}

	reg.Snapshots = reg.Snapshots[len(drop):]
	if err := s.saveRegistry(reg); err != nil {
		return removed, err
	}

	s.log.Infow("snapshots cleaned up", "removed", len(removed), "kept", keep)
	return removed, nil
}
