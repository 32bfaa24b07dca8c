// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Write stores the report under the configured output directory:
// per-signal JSON files plus a human-readable summary.
func (m *Miner) Write(report *Report) error {
	dir := m.cfg.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	files := map[string]any{
		"adoption.json":     report.Adoption,
		"least-active.json": report.LeastActive,
		"churn.json":        report.Churn,
		"pain-points.json":  report.PainPoints,
		"pain-scores.json":  report.PainScores,
	}
	for name, payload := range files {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	summary := m.renderSummary(report)
	if err := os.WriteFile(filepath.Join(dir, "summary.md"), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	m.log.Infow("signals written", "dir", dir)
	return nil
}

// Snapshot copies the latest output directory to a dated sibling so
// runs can be compared over time.
func (m *Miner) Snapshot() (string, error) {
	src := m.cfg.OutputDir
	dst := filepath.Join(filepath.Dir(src), time.Now().UTC().Format("2006-01-02"))
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dst, entry.Name()), data, 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", entry.Name(), err)
		}
	}

	m.log.Infow("signals snapshot", "dir", dst)
	return dst, nil
}

func (m *Miner) renderSummary(report *Report) string {
	topN := m.cfg.TopN
	if topN <= 0 {
		topN = 10
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Git Signals\n\n")
	fmt.Fprintf(&sb, "Window: %s. Commits analyzed: %d. Generated %s.\n\n",
		report.Since, report.Commits, report.GeneratedAt)

	fmt.Fprintf(&sb, "## Most Touched Commands\n\n")
	for i, a := range report.Adoption {
		if i >= topN {
			break
		}
		fmt.Fprintf(&sb, "- /%s: %d touches, last %s (%s)\n",
			a.Slug, a.Touches, a.LastTouched.Format("2006-01-02"), strings.Join(a.Authors, ", "))
	}

	fmt.Fprintf(&sb, "\n## Least Active Commands\n\n")
	fmt.Fprintf(&sb, "Candidates for review or retirement.\n\n")
	for i, a := range report.LeastActive {
		if i >= topN {
			break
		}
		fmt.Fprintf(&sb, "- /%s: %d touches, last %s\n",
			a.Slug, a.Touches, a.LastTouched.Format("2006-01-02"))
	}

	fmt.Fprintf(&sb, "\n## Highest Churn\n\n")
	for i, c := range report.Churn {
		if i >= topN {
			break
		}
		fmt.Fprintf(&sb, "- /%s: +%d -%d over %d commits\n", c.Slug, c.Added, c.Deleted, c.Commits)
	}

	fmt.Fprintf(&sb, "\n## Pain Points\n\n")
	if len(report.PainPoints) == 0 {
		fmt.Fprintf(&sb, "None detected.\n")
	}
	for _, p := range report.PainPoints {
		slugs := make([]string, len(p.Files))
		for i, f := range p.Files {
			slugs[i] = "/" + slugOf(f)
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n",
			p.Subject, p.Date.Format("2006-01-02"), strings.Join(slugs, ", "))
	}

	if len(report.PainScores) > 0 {
		fmt.Fprintf(&sb, "\n## Pain Score by File\n\n")
		for i, p := range report.PainScores {
			if i >= topN {
				break
			}
			fmt.Fprintf(&sb, "- /%s: pain score %d\n", p.Slug, p.Score)
		}
	}

	return sb.String()
}
