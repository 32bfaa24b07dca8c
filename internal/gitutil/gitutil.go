// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitutil wraps the git binary for the repository queries the
// engine needs: history mining, tagging, and working tree state.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const binGit = "git"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, dir string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binGit, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

var defaultExec = &osExecutor{}

// Git runs git commands in one repository.
type Git struct {
	dir  string
	exec executor
}

// New returns a Git bound to the repository at dir.
func New(dir string) *Git {
	return &Git{dir: dir, exec: defaultExec}
}

// Available reports whether the git binary exists on PATH.
func (g *Git) Available() bool {
	_, err := g.exec.LookPath(binGit)
	return err == nil
}

// IsRepo reports whether dir is inside a git work tree.
func (g *Git) IsRepo(ctx context.Context) bool {
	out, err := g.exec.Output(ctx, g.dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Head returns the current commit hash.
func (g *Git) Head(ctx context.Context) (string, error) {
	return g.exec.Output(ctx, g.dir, "rev-parse", "HEAD")
}

// Branch returns the current branch name.
func (g *Git) Branch(ctx context.Context) (string, error) {
	return g.exec.Output(ctx, g.dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsDirty reports whether the working tree has uncommitted changes.
// With paths given, only changes under those paths count.
func (g *Git) IsDirty(ctx context.Context, paths ...string) (bool, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	out, err := g.exec.Output(ctx, g.dir, args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// StatusPaths returns the paths with uncommitted changes.
func (g *Git) StatusPaths(ctx context.Context) ([]string, error) {
	out, err := g.exec.Output(ctx, g.dir, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range splitLines(out) {
		if len(line) > 3 {
			paths = append(paths, strings.TrimSpace(line[3:]))
		}
	}
	return paths, nil
}

// ShowFile returns the content of path at the given ref.
func (g *Git) ShowFile(ctx context.Context, ref, path string) (string, error) {
	return g.exec.Output(ctx, g.dir, "show", ref+":"+path)
}

// ListFiles returns the paths under pathspec at the given ref.
func (g *Git) ListFiles(ctx context.Context, ref, pathspec string) ([]string, error) {
	out, err := g.exec.Output(ctx, g.dir, "ls-tree", "-r", "--name-only", ref, "--", pathspec)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CreateTag creates an annotated tag at HEAD.
func (g *Git) CreateTag(ctx context.Context, name, message string) error {
	_, err := g.exec.Output(ctx, g.dir, "tag", "-a", name, "-m", message)
	return err
}

// DeleteTag removes a tag.
func (g *Git) DeleteTag(ctx context.Context, name string) error {
	_, err := g.exec.Output(ctx, g.dir, "tag", "-d", name)
	return err
}

// ListTags returns the tags matching pattern, most recent first.
func (g *Git) ListTags(ctx context.Context, pattern string) ([]string, error) {
	out, err := g.exec.Output(ctx, g.dir,
		"tag", "--list", pattern, "--sort=-creatordate")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// TagCommit returns the commit hash a tag points at.
func (g *Git) TagCommit(ctx context.Context, name string) (string, error) {
	return g.exec.Output(ctx, g.dir, "rev-list", "-n", "1", name)
}

// Commit records staged changes with the given message. With allowEmpty
// set, a commit is created even when nothing changed, which rollback
// uses as an audit marker.
func (g *Git) Commit(ctx context.Context, message string, allowEmpty bool) error {
	args := []string{"commit", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := g.exec.Output(ctx, g.dir, args...)
	return err
}

// CheckoutPaths restores the given paths from ref into the working tree.
func (g *Git) CheckoutPaths(ctx context.Context, ref string, paths ...string) error {
	args := append([]string{"checkout", ref, "--"}, paths...)
	_, err := g.exec.Output(ctx, g.dir, args...)
	return err
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
