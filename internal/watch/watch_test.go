package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func TestRunTriggersHandlerOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "core"), 0o755); err != nil {
		t.Fatal(err)
	}

	triggered := make(chan struct{}, 1)
	w := New(zap.NewNop(), dir, 50*time.Millisecond, func(context.Context) error {
		select {
		case triggered <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "core", "pb-start.md"),
		[]byte("# Start\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-triggered:
	case <-time.After(3 * time.Second):
		t.Fatal("handler not triggered")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()

	triggered := make(chan struct{}, 1)
	w := New(zap.NewNop(), dir, 50*time.Millisecond, func(context.Context) error {
		select {
		case triggered <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("scratch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-triggered:
		t.Fatal("unrelated file should not trigger a rebuild")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRelevant(t *testing.T) {
	w := New(zap.NewNop(), t.TempDir(), 0, nil)

	// Removed command files cannot be stat'ed; the name alone decides.
	write := func(name string) fsnotify.Event {
		return fsnotify.Event{Name: name, Op: fsnotify.Write}
	}
	if !w.relevant(write("commands/core/pb-start.md")) {
		t.Error("command file change should be relevant")
	}
	if w.relevant(write("commands/core/README.md")) {
		t.Error("non-command markdown should be ignored")
	}
	if w.relevant(write("commands/core/pb-start.md.swp")) {
		t.Error("editor swap file should be ignored")
	}
	if w.relevant(fsnotify.Event{Name: "commands/core/pb-start.md", Op: fsnotify.Chmod}) {
		t.Error("chmod should be ignored")
	}
}
