// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend suggests the next playbook commands from the state
// of the working tree: current branch, uncommitted files, and recent
// commit subjects.
package recommend

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// Phase is the detected stage of the working cycle.
type Phase string

const (
	PhaseStarting  Phase = "starting"
	PhaseIterating Phase = "iterating"
	PhaseReviewing Phase = "reviewing"
	PhaseReleasing Phase = "releasing"
	PhaseUnknown   Phase = "unknown"
)

// State is the observed git state used for phase detection.
type State struct {
	Branch         string
	Dirty          bool
	ChangedFiles   []string
	RecentSubjects []string
}

// Recommendation is one suggested command with its score, rationale,
// and a time estimate derived from the command's largest tier.
type Recommendation struct {
	Command string  `json:"command"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Minutes int     `json:"minutes"`
}

// Engine produces recommendations for one repository.
type Engine struct {
	log *zap.SugaredLogger
	git *gitutil.Git
}

// New returns a recommendation engine.
func New(log *zap.Logger, git *gitutil.Git) *Engine {
	return &Engine{log: log.Sugar(), git: git}
}

// recentWindow bounds how much history informs phase detection.
const recentWindow = "2 weeks ago"

// AnalyzeState reads the git state relevant to recommendations.
func (e *Engine) AnalyzeState(ctx context.Context) (*State, error) {
	branch, err := e.git.Branch(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading branch: %w", err)
	}
	changed, err := e.git.StatusPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	commits, err := e.git.LogSince(ctx, recentWindow, "")
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	subjects := make([]string, len(commits))
	for i, c := range commits {
		subjects[i] = c.Subject
	}

	return &State{
		Branch:         branch,
		Dirty:          len(changed) > 0,
		ChangedFiles:   changed,
		RecentSubjects: subjects,
	}, nil
}

var (
	releaseRe = regexp.MustCompile(`(?i)\brelease\b|\bv\d+\.\d+`)
	reviewRe  = regexp.MustCompile(`(?i)\breview\b|\bpull request\b|\bpr\b`)
)

// DetectPhase classifies the working state.
func DetectPhase(s *State) Phase {
	onMainline := s.Branch == "main" || s.Branch == "master"

	for _, subject := range s.RecentSubjects {
		if releaseRe.MatchString(subject) {
			return PhaseReleasing
		}
	}

	if s.Dirty {
		return PhaseIterating
	}
	if onMainline {
		return PhaseStarting
	}

	for _, subject := range s.RecentSubjects {
		if reviewRe.MatchString(subject) {
			return PhaseReviewing
		}
	}
	if len(s.RecentSubjects) > 0 {
		// Clean feature branch with recent work reads as ready for
		// review.
		return PhaseReviewing
	}
	return PhaseUnknown
}

// phaseWeights scores each usage cadence per phase.
var phaseWeights = map[Phase]map[types.Frequency]float64{
	PhaseStarting: {
		types.FreqStartOfFeature: 1.0,
		types.FreqOneTime:        0.6,
		types.FreqDaily:          0.5,
	},
	PhaseIterating: {
		types.FreqPerIteration: 1.0,
		types.FreqDaily:        0.7,
		types.FreqAsNeeded:     0.2,
	},
	PhaseReviewing: {
		types.FreqPerPR:        1.0,
		types.FreqPerIteration: 0.4,
	},
	PhaseReleasing: {
		types.FreqPreRelease: 1.0,
		types.FreqOnIncident: 0.3,
	},
	PhaseUnknown: {
		types.FreqDaily:    0.5,
		types.FreqAsNeeded: 0.3,
	},
}

// editBoost rewards commands whose own document is being edited.
const editBoost = 0.2

// Recommend scores every command in the metadata against the current
// git state and returns the top suggestions, highest score first.
func (e *Engine) Recommend(ctx context.Context, meta *types.CorpusMetadata, limit int) ([]Recommendation, Phase, error) {
	state, err := e.AnalyzeState(ctx)
	if err != nil {
		return nil, PhaseUnknown, err
	}
	phase := DetectPhase(state)
	recs := Score(meta, state, phase, limit)

	e.log.Infow("recommendations computed",
		"phase", phase, "branch", state.Branch, "results", len(recs))
	return recs, phase, nil
}

// Score ranks commands for a known state and phase.
func Score(meta *types.CorpusMetadata, state *State, phase Phase, limit int) []Recommendation {
	editedSlugs := make(map[string]bool)
	for _, file := range state.ChangedFiles {
		base := filepath.Base(file)
		if strings.HasPrefix(base, "pb-") && strings.HasSuffix(base, ".md") {
			editedSlugs[strings.TrimSuffix(base, ".md")] = true
		}
	}

	var recs []Recommendation
	for slug, cmd := range meta.Commands {
		score := phaseWeights[phase][cmd.Frequency]
		reason := fmt.Sprintf("%s command in %s phase", cmd.Frequency, phase)

		if editedSlugs[slug] {
			score += editBoost
			reason = "its document is being edited; " + reason
		}

		if score <= 0 {
			continue
		}
		recs = append(recs, Recommendation{
			Command: slug,
			Score:   score,
			Reason:  reason,
			Minutes: commandMinutes(cmd),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Command < recs[j].Command
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// commandMinutes estimates a command's time from its largest tier.
func commandMinutes(cmd *types.DocMetadata) int {
	if cmd == nil || len(cmd.Tiers) == 0 {
		return types.Tier("").Minutes()
	}
	return cmd.Tiers[len(cmd.Tiers)-1].Minutes()
}
