package evolution

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// --- git test helpers ---

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// initRepo creates a repository with one committed command file.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")

	writeRepoFile(t, dir, "commands/core/pb-start.md",
		"---\nname: \"pb-start\"\nmodel_hint: \"sonnet\"\nlast_reviewed: \"2026-02-09\"\n---\n# Start\n\nBranch setup.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "add pb-start")

	return dir
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func writeRepoFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testSnapshotter(t *testing.T, dir string) *Snapshotter {
	t.Helper()
	return NewSnapshotter(zap.NewNop(), gitutil.New(dir),
		filepath.Join(dir, "todos", "evolution-snapshots"), "commands")
}

// --- tests ---

func TestSnapshotCreateAndList(t *testing.T) {
	dir := initRepo(t)
	s := testSnapshotter(t, dir)
	ctx := context.Background()

	snap, err := s.Create(ctx, "before Q3 cycle")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != types.SnapshotActive {
		t.Errorf("Status = %q", snap.Status)
	}
	if snap.Commit == "" || snap.Branch == "" {
		t.Errorf("git state missing: %+v", snap)
	}

	snaps, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 || snaps[0].ID != snap.ID {
		t.Errorf("List() = %v", snaps)
	}

	got, err := s.Show(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Message != "before Q3 cycle" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestSnapshotCreateRefusesDirtyTree(t *testing.T) {
	dir := initRepo(t)
	writeRepoFile(t, dir, "commands/core/pb-start.md", "# Start\n\nEdited.\n")

	_, err := testSnapshotter(t, dir).Create(context.Background(), "msg")
	if !errors.Is(err, ErrDirtyTree) {
		t.Fatalf("err = %v, want ErrDirtyTree", err)
	}
}

func TestSnapshotRollback(t *testing.T) {
	dir := initRepo(t)
	s := testSnapshotter(t, dir)
	ctx := context.Background()

	snap, err := s.Create(ctx, "before edits")
	if err != nil {
		t.Fatal(err)
	}

	// Commit a change, then roll the corpus back to the snapshot.
	writeRepoFile(t, dir, "commands/core/pb-start.md", "# Start\n\nRewritten.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "rewrite pb-start")

	if err := s.Rollback(ctx, snap.ID); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "commands/core/pb-start.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "# Start\n\nRewritten.\n" {
		t.Error("rollback did not restore the original content")
	}

	got, err := s.Show(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.SnapshotUsed {
		t.Errorf("Status = %q, want used", got.Status)
	}

	// The restore lands as a marker commit so history shows the rollback.
	subject := gitOutput(t, dir, "log", "-1", "--pretty=%s")
	want := "rollback: restored from snapshot " + snap.ID
	if subject != want {
		t.Errorf("last commit = %q, want %q", subject, want)
	}

	// The commit leaves the corpus clean, so further snapshot operations
	// are not blocked.
	if status := gitOutput(t, dir, "status", "--porcelain", "--", "commands"); status != "" {
		t.Errorf("corpus dirty after rollback:\n%s", status)
	}
}

func TestSnapshotDirtyCheckScopedToCorpus(t *testing.T) {
	dir := initRepo(t)
	s := testSnapshotter(t, dir)
	ctx := context.Background()

	// Untracked files outside the corpus (the registry itself, scratch
	// notes) must not block snapshot operations.
	writeRepoFile(t, dir, "notes.txt", "scratch\n")
	snap, err := s.Create(ctx, "with untracked noise")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(ctx, snap.ID); err != nil {
		t.Errorf("Rollback with untracked registry: %v", err)
	}

	// An edited command file still refuses.
	writeRepoFile(t, dir, "commands/core/pb-start.md", "# Start\n\nEdited.\n")
	if _, err := s.Create(ctx, "dirty corpus"); !errors.Is(err, ErrDirtyTree) {
		t.Errorf("err = %v, want ErrDirtyTree", err)
	}
}

func TestSnapshotRollbackUnknownID(t *testing.T) {
	dir := initRepo(t)
	err := testSnapshotter(t, dir).Rollback(context.Background(), "evolution-19990101-000000")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("err = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSnapshotCleanup(t *testing.T) {
	dir := initRepo(t)
	s := testSnapshotter(t, dir)
	ctx := context.Background()

	// Distinct tag names need distinct commits or timestamps; amending
	// the registry directly keeps the test fast.
	first, err := s.Create(ctx, "first")
	if err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "commit", "-q", "--allow-empty", "-m", "tick")
	reg, err := s.loadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	second := *first
	second.ID = first.ID + "-b"
	runGit(t, dir, "tag", "-a", second.ID, "-m", "second")
	reg.Snapshots = append(reg.Snapshots, second)
	if err := s.saveRegistry(reg); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Cleanup(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != first.ID {
		t.Errorf("removed = %v, want oldest %s", removed, first.ID)
	}

	snaps, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 || snaps[0].ID != second.ID {
		t.Errorf("remaining = %v", snaps)
	}
}
