// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lint validates a playbook corpus against its structural
// properties and authoring conventions. Structural violations are
// errors; convention drift is a warning unless strict mode promotes it.
package lint

import (
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// Report is the outcome of one lint run.
type Report struct {
	// Checked counts the documents examined.
	Checked int

	// Findings lists every problem discovered, errors and warnings.
	Findings []types.Finding

	// Strict promotes warnings to failures.
	Strict bool
}

// Errors returns the error-severity findings.
func (r *Report) Errors() []types.Finding {
	return r.filter("error")
}

// Warnings returns the warning-severity findings.
func (r *Report) Warnings() []types.Finding {
	return r.filter("warning")
}

func (r *Report) filter(severity string) []types.Finding {
	var out []types.Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// Passed reports whether the corpus is acceptable. Warnings fail the
// run only in strict mode.
func (r *Report) Passed() bool {
	if len(r.Errors()) > 0 {
		return false
	}
	if r.Strict && len(r.Warnings()) > 0 {
		return false
	}
	return true
}

// Linter runs corpus validation.
type Linter struct {
	log *zap.SugaredLogger
	cfg types.CorpusConfig
}

// New returns a linter for the given corpus configuration.
func New(log *zap.Logger, cfg types.CorpusConfig) *Linter {
	return &Linter{log: log.Sugar(), cfg: cfg}
}

// Run checks every document and the corpus as a whole.
func (l *Linter) Run(c *corpus.Corpus, strict bool) *Report {
	r := &Report{Checked: len(c.Documents), Strict: strict}

	l.checkDuplicates(c, r)
	slugs := c.Slugs()
	for _, doc := range c.Documents {
		l.checkTitle(doc, r)
		l.checkReferences(doc, slugs, r)
		l.checkResourceHint(doc, r)
		l.checkWhenToUse(doc, r)
		l.checkRelatedCommands(doc, r)
		l.checkFrontMatter(doc, r)
	}
	l.checkExpectedCount(c, r)

	sort.SliceStable(r.Findings, func(i, j int) bool {
		return r.Findings[i].Command < r.Findings[j].Command
	})

	l.log.Infow("lint complete",
		"checked", r.Checked,
		"errors", len(r.Errors()),
		"warnings", len(r.Warnings()),
		"passed", r.Passed())
	return r
}

// Render writes a human-readable summary.
func (r *Report) Render(w io.Writer) {
	errs, warns := r.Errors(), r.Warnings()

	fmt.Fprintf(w, "Checked %d documents\n", r.Checked)
	if len(errs) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(errs))
		for _, f := range errs {
			fmt.Fprintf(w, "  %s\n", formatFinding(f))
		}
	}
	if len(warns) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(warns))
		for _, f := range warns {
			fmt.Fprintf(w, "  %s\n", formatFinding(f))
		}
	}

	fmt.Fprintln(w)
	if r.Passed() {
		fmt.Fprintln(w, "PASS")
	} else {
		fmt.Fprintln(w, "FAIL")
	}
}

func formatFinding(f types.Finding) string {
	switch {
	case f.Command != "" && f.Field != "":
		return fmt.Sprintf("%s [%s]: %s", f.Command, f.Field, f.Issue)
	case f.Command != "":
		return fmt.Sprintf("%s: %s", f.Command, f.Issue)
	default:
		return f.Issue
	}
}
