//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// engine runs the built CLI with the given arguments.
func engine(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Extract rebuilds the corpus metadata file.
func Extract() error {
	mg.Deps(Build)
	return engine("extract")
}

// Validate lints the corpus in strict mode.
func Validate() error {
	mg.Deps(Build)
	return engine("validate", "--strict")
}

// Index rebuilds the full-text search index.
func Index() error {
	mg.Deps(Build)
	return engine("index", "build")
}

// Quickref regenerates the quick-reference file.
func Quickref() error {
	mg.Deps(Build)
	return engine("quickref", "--fresh")
}

// Refresh rebuilds every derived artifact from the corpus.
func Refresh() {
	mg.SerialDeps(Extract, Index, Quickref)
}
