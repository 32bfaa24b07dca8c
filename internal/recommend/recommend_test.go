package recommend

import (
	"math"
	"testing"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

func TestDetectPhase(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Phase
	}{
		{
			"clean mainline",
			State{Branch: "main"},
			PhaseStarting,
		},
		{
			"dirty feature branch",
			State{Branch: "feat/parser", Dirty: true, ChangedFiles: []string{"parser.go"}},
			PhaseIterating,
		},
		{
			"dirty mainline still iterating",
			State{Branch: "main", Dirty: true, ChangedFiles: []string{"x.go"}},
			PhaseIterating,
		},
		{
			"clean feature branch with commits",
			State{Branch: "feat/parser", RecentSubjects: []string{"add parser", "test parser"}},
			PhaseReviewing,
		},
		{
			"release commits",
			State{Branch: "main", RecentSubjects: []string{"prepare release v1.2"}},
			PhaseReleasing,
		},
		{
			"no signal",
			State{Branch: "feat/empty"},
			PhaseUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPhase(&tt.state); got != tt.want {
				t.Errorf("DetectPhase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func scoringMeta() *types.CorpusMetadata {
	return &types.CorpusMetadata{
		Commands: map[string]*types.DocMetadata{
			"pb-start":   {Command: "pb-start", Frequency: types.FreqStartOfFeature, Tiers: []types.Tier{types.TierXS, types.TierS}},
			"pb-cycle":   {Command: "pb-cycle", Frequency: types.FreqPerIteration},
			"pb-commit":  {Command: "pb-commit", Frequency: types.FreqDaily},
			"pb-pr":      {Command: "pb-pr", Frequency: types.FreqPerPR},
			"pb-release": {Command: "pb-release", Frequency: types.FreqPreRelease},
			"pb-notes":   {Command: "pb-notes", Frequency: types.FreqAsNeeded},
		},
	}
}

func TestScoreStartingPhase(t *testing.T) {
	recs := Score(scoringMeta(), &State{Branch: "main"}, PhaseStarting, 0)

	if len(recs) == 0 {
		t.Fatal("no recommendations")
	}
	if recs[0].Command != "pb-start" {
		t.Errorf("top = %s, want pb-start", recs[0].Command)
	}
	for _, r := range recs {
		if r.Command == "pb-pr" {
			t.Error("per-pr command should not score in starting phase")
		}
	}
}

func TestScoreIteratingPhase(t *testing.T) {
	recs := Score(scoringMeta(), &State{Dirty: true}, PhaseIterating, 0)
	if recs[0].Command != "pb-cycle" {
		t.Errorf("top = %s, want pb-cycle", recs[0].Command)
	}
}

func TestScoreEditBoost(t *testing.T) {
	state := &State{
		Dirty:        true,
		ChangedFiles: []string{"commands/core/pb-commit.md"},
	}
	recs := Score(scoringMeta(), state, PhaseIterating, 0)

	// Daily (0.7) plus the edit boost (0.2) still trails per-iteration.
	var commit *Recommendation
	for i := range recs {
		if recs[i].Command == "pb-commit" {
			commit = &recs[i]
		}
	}
	if commit == nil {
		t.Fatal("pb-commit missing")
	}
	if math.Abs(commit.Score-0.9) > 1e-9 {
		t.Errorf("Score = %v, want 0.9", commit.Score)
	}
	if recs[0].Command != "pb-cycle" {
		t.Errorf("top = %s, want pb-cycle", recs[0].Command)
	}
}

func TestScoreMinutes(t *testing.T) {
	recs := Score(scoringMeta(), &State{Branch: "main"}, PhaseStarting, 0)

	byCommand := make(map[string]Recommendation)
	for _, r := range recs {
		byCommand[r.Command] = r
	}
	// The largest tier sets the estimate; tier-less commands fall back
	// to the default.
	if got := byCommand["pb-start"].Minutes; got != types.TierS.Minutes() {
		t.Errorf("pb-start Minutes = %d, want %d", got, types.TierS.Minutes())
	}
	if got := byCommand["pb-commit"].Minutes; got != 15 {
		t.Errorf("pb-commit Minutes = %d, want 15", got)
	}
}

func TestScoreLimit(t *testing.T) {
	recs := Score(scoringMeta(), &State{}, PhaseIterating, 2)
	if len(recs) != 2 {
		t.Errorf("got %d recommendations, want 2", len(recs))
	}
}

func TestScoreDeterministicTieBreak(t *testing.T) {
	meta := &types.CorpusMetadata{
		Commands: map[string]*types.DocMetadata{
			"pb-b": {Command: "pb-b", Frequency: types.FreqDaily},
			"pb-a": {Command: "pb-a", Frequency: types.FreqDaily},
		},
	}
	recs := Score(meta, &State{}, PhaseIterating, 0)
	if recs[0].Command != "pb-a" || recs[1].Command != "pb-b" {
		t.Errorf("tie break not alphabetical: %v", recs)
	}
}
