// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lint

import (
	"fmt"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// confidenceFloor is the lowest acceptable per-command average.
const confidenceFloor = 0.70

// CheckMetadata compares a saved metadata file against the live corpus
// and appends findings to r. Drift between the two means extraction
// needs a re-run.
func (l *Linter) CheckMetadata(c *corpus.Corpus, meta *types.CorpusMetadata, r *Report) {
	for _, doc := range c.Documents {
		if _, ok := meta.Commands[doc.Slug]; !ok {
			r.Findings = append(r.Findings, types.Finding{
				Command:  doc.Slug,
				Issue:    "document missing from metadata, re-run extraction",
				Severity: "warning",
			})
		}
	}

	slugs := c.Slugs()
	for slug, m := range meta.Commands {
		if !slugs[slug] {
			r.Findings = append(r.Findings, types.Finding{
				Command:  slug,
				Issue:    "metadata entry has no corpus document",
				Severity: "warning",
			})
			continue
		}
		if m.AverageConfidence < confidenceFloor {
			r.Findings = append(r.Findings, types.Finding{
				Command:  slug,
				Issue:    fmt.Sprintf("average extraction confidence %.2f below %.2f", m.AverageConfidence, confidenceFloor),
				Severity: "warning",
			})
		}
	}

	if meta.TotalCommands != len(meta.Commands) {
		r.Findings = append(r.Findings, types.Finding{
			Issue:    fmt.Sprintf("metadata total_commands %d disagrees with %d entries", meta.TotalCommands, len(meta.Commands)),
			Severity: "error",
		})
	}

	l.log.Debugw("metadata checked",
		"entries", len(meta.Commands),
		"documents", len(c.Documents))
}
