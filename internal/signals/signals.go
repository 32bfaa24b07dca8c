// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signals mines the git history of the corpus for usage
// evidence: which commands get touched, how heavily they churn, and
// which ones keep needing fixes.
package signals

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// painRe matches commit subjects that signal a command caused trouble.
var painRe = regexp.MustCompile(`(?i)\b(revert|fix|hotfix|broken|regress)`)

// commandFileRe matches corpus command files in commit file lists.
var commandFileRe = regexp.MustCompile(`(^|/)pb-[\w-]+\.md$`)

// Adoption records how often one command file was touched.
type Adoption struct {
	Slug        string    `json:"slug"`
	File        string    `json:"file"`
	Touches     int       `json:"touches"`
	LastTouched time.Time `json:"last_touched"`
	Authors     []string  `json:"authors"`
}

// FileChurn records line-level churn for one command file.
type FileChurn struct {
	Slug    string `json:"slug"`
	File    string `json:"file"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
	Commits int    `json:"commits"`
}

// PainPoint is a fix-like commit that touched command files.
type PainPoint struct {
	Hash    string    `json:"hash"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Files   []string  `json:"files"`
}

// PainScore aggregates how often fix-like commits touched one file.
type PainScore struct {
	Slug  string `json:"slug"`
	File  string `json:"file"`
	Score int    `json:"pain_score"`
}

// Caps matching the metric lists the summaries expect.
const (
	leastActiveLimit = 10
	painScoreLimit   = 15
)

// Report is the complete output of one mining run.
type Report struct {
	Since       string      `json:"since"`
	GeneratedAt string      `json:"generated_at"`
	Commits     int         `json:"commits"`
	Adoption    []Adoption  `json:"adoption"`
	LeastActive []Adoption  `json:"least_active"`
	Churn       []FileChurn `json:"churn"`
	PainPoints  []PainPoint `json:"pain_points"`
	PainScores  []PainScore `json:"pain_scores"`
}

// Miner runs git-history analysis over the corpus directory.
type Miner struct {
	log      *zap.SugaredLogger
	git      *gitutil.Git
	pathspec string
	cfg      types.SignalsConfig
}

// New returns a miner for the command files under pathspec.
func New(log *zap.Logger, git *gitutil.Git, pathspec string, cfg types.SignalsConfig) *Miner {
	return &Miner{log: log.Sugar(), git: git, pathspec: pathspec, cfg: cfg}
}

// Mine analyzes commits newer than the configured window and builds the
// signals report.
func (m *Miner) Mine(ctx context.Context) (*Report, error) {
	since := m.cfg.Since
	if since == "" {
		since = "6 months ago"
	}

	commits, err := m.git.LogSince(ctx, since, m.pathspec)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	churn, err := m.git.NumstatSince(ctx, since, m.pathspec)
	if err != nil {
		return nil, fmt.Errorf("reading churn: %w", err)
	}

	adoption := mineAdoption(commits)
	painPoints := minePainPoints(commits)
	report := &Report{
		Since:       since,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Commits:     len(commits),
		Adoption:    adoption,
		LeastActive: leastActive(adoption),
		Churn:       mineChurn(churn),
		PainPoints:  painPoints,
		PainScores:  minePainScores(painPoints),
	}

	m.log.Infow("signals mined",
		"since", since,
		"commits", report.Commits,
		"files", len(report.Adoption),
		"pain_points", len(report.PainPoints))
	return report, nil
}

func mineAdoption(commits []gitutil.Commit) []Adoption {
	type acc struct {
		touches int
		last    time.Time
		authors map[string]bool
	}
	byFile := make(map[string]*acc)

	for _, c := range commits {
		for _, file := range c.Files {
			if !commandFileRe.MatchString(file) {
				continue
			}
			a := byFile[file]
			if a == nil {
				a = &acc{authors: make(map[string]bool)}
				byFile[file] = a
			}
			a.touches++
			a.authors[c.Author] = true
			if c.Date.After(a.last) {
				a.last = c.Date
			}
		}
	}

	adoption := make([]Adoption, 0, len(byFile))
	for file, a := range byFile {
		authors := make([]string, 0, len(a.authors))
		for author := range a.authors {
			authors = append(authors, author)
		}
		sort.Strings(authors)
		adoption = append(adoption, Adoption{
			Slug:        slugOf(file),
			File:        file,
			Touches:     a.touches,
			LastTouched: a.last,
			Authors:     authors,
		})
	}

	sort.Slice(adoption, func(i, j int) bool {
		if adoption[i].Touches != adoption[j].Touches {
			return adoption[i].Touches > adoption[j].Touches
		}
		return adoption[i].Slug < adoption[j].Slug
	})
	return adoption
}

func mineChurn(stats map[string]gitutil.Churn) []FileChurn {
	churn := make([]FileChurn, 0, len(stats))
	for file, c := range stats {
		if !commandFileRe.MatchString(file) {
			continue
		}
		churn = append(churn, FileChurn{
			Slug:    slugOf(file),
			File:    file,
			Added:   c.Added,
			Deleted: c.Deleted,
			Commits: c.Commits,
		})
	}

	sort.Slice(churn, func(i, j int) bool {
		li, lj := churn[i].Added+churn[i].Deleted, churn[j].Added+churn[j].Deleted
		if li != lj {
			return li > lj
		}
		return churn[i].Slug < churn[j].Slug
	})
	return churn
}

func minePainPoints(commits []gitutil.Commit) []PainPoint {
	var points []PainPoint
	for _, c := range commits {
		if !painRe.MatchString(c.Subject) {
			continue
		}
		var files []string
		for _, file := range c.Files {
			if commandFileRe.MatchString(file) {
				files = append(files, file)
			}
		}
		if len(files) == 0 {
			continue
		}
		points = append(points, PainPoint{
			Hash:    c.Hash,
			Subject: c.Subject,
			Date:    c.Date,
			Files:   files,
		})
	}
	return points
}

// leastActive returns the quietest commands, ascending by touches.
// These are review candidates: a command nobody touches is either
// stable or abandoned.
func leastActive(adoption []Adoption) []Adoption {
	least := make([]Adoption, len(adoption))
	copy(least, adoption)
	sort.Slice(least, func(i, j int) bool {
		if least[i].Touches != least[j].Touches {
			return least[i].Touches < least[j].Touches
		}
		return least[i].Slug < least[j].Slug
	})
	if len(least) > leastActiveLimit {
		least = least[:leastActiveLimit]
	}
	return least
}

// minePainScores counts, per file, how many fix-like commits touched
// it. Files that keep needing fixes score highest.
func minePainScores(points []PainPoint) []PainScore {
	byFile := make(map[string]int)
	for _, p := range points {
		for _, file := range p.Files {
			byFile[file]++
		}
	}

	scores := make([]PainScore, 0, len(byFile))
	for file, score := range byFile {
		scores = append(scores, PainScore{Slug: slugOf(file), File: file, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Slug < scores[j].Slug
	})
	if len(scores) > painScoreLimit {
		scores = scores[:painScoreLimit]
	}
	return scores
}

func slugOf(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".md")
}
