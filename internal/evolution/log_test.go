package evolution

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	return NewLog(zap.NewNop(), filepath.Join(t.TempDir(), "todos", "evolution-audit.json"))
}

func TestRecordAndShow(t *testing.T) {
	l := testLog(t)

	cycle, err := l.Record("Q3 2026", types.TriggerQuarterly, "larger context windows", "evolution-20260801-120000")
	if err != nil {
		t.Fatal(err)
	}
	if cycle.ID == "" {
		t.Error("cycle ID not generated")
	}
	if cycle.Status != types.CycleInProgress {
		t.Errorf("Status = %q", cycle.Status)
	}

	byID, err := l.Show(cycle.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byID.Name != "Q3 2026" {
		t.Errorf("Name = %q", byID.Name)
	}

	byName, err := l.Show("Q3 2026")
	if err != nil {
		t.Fatal(err)
	}
	if byName.ID != cycle.ID {
		t.Errorf("lookup by name returned different cycle")
	}
}

func TestRecordRefusesConcurrentCycle(t *testing.T) {
	l := testLog(t)

	if _, err := l.Record("Q3 2026", types.TriggerQuarterly, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Record("Q4 2026", types.TriggerManual, "", ""); err == nil {
		t.Fatal("second in-progress cycle should be refused")
	}
}

func TestAddChangeAndComplete(t *testing.T) {
	l := testLog(t)
	cycle, err := l.Record("Q3 2026", types.TriggerQuarterly, "", "")
	if err != nil {
		t.Fatal(err)
	}

	change := types.Change{
		Command: "pb-review-code", Field: "model_hint",
		Before: "opus", After: "sonnet",
		Rationale: "review quality holds at the lower tier",
	}
	if err := l.AddChange(cycle.ID, change); err != nil {
		t.Fatal(err)
	}
	if err := l.Complete(cycle.ID, 42); err != nil {
		t.Fatal(err)
	}

	got, err := l.Show(cycle.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.CycleCompleted {
		t.Errorf("Status = %q", got.Status)
	}
	if got.PRNumber != 42 {
		t.Errorf("PRNumber = %d", got.PRNumber)
	}
	if len(got.Changes) != 1 || got.Changes[0].RecordedAt == "" {
		t.Errorf("Changes = %+v", got.Changes)
	}

	if err := l.AddChange(cycle.ID, change); err == nil {
		t.Error("changes must be refused after completion")
	}
	if err := l.Complete(cycle.ID, 0); err == nil {
		t.Error("double completion must be refused")
	}
}

func TestRevert(t *testing.T) {
	l := testLog(t)
	cycle, err := l.Record("Q3 2026", types.TriggerUserFeedback, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Complete(cycle.ID, 0); err != nil {
		t.Fatal(err)
	}

	if err := l.Revert(cycle.ID, "regressions reported in review commands"); err != nil {
		t.Fatal(err)
	}
	got, _ := l.Show(cycle.ID)
	if got.Status != types.CycleReverted {
		t.Errorf("Status = %q", got.Status)
	}
	if got.RevertReason == "" || got.RevertedAt == "" {
		t.Errorf("revert details missing: %+v", got)
	}

	if err := l.Revert(cycle.ID, "again"); err == nil {
		t.Error("double revert must be refused")
	}
}

func TestShowNotFound(t *testing.T) {
	l := testLog(t)
	if _, err := l.Show("nope"); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestTimelineAndAnalyze(t *testing.T) {
	l := testLog(t)
	cycle, err := l.Record("Q2 2026", types.TriggerQuarterly, "new model release", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.AddChange(cycle.ID, types.Change{
		Command: "pb-plan", Field: "model_hint",
		Before: "opus", After: "sonnet", Rationale: "planning got cheaper",
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Complete(cycle.ID, 7); err != nil {
		t.Fatal(err)
	}

	var timeline strings.Builder
	if err := l.Timeline(&timeline); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Q2 2026", "completed", "pr=#7", "pb-plan.model_hint"} {
		if !strings.Contains(timeline.String(), want) {
			t.Errorf("timeline missing %q:\n%s", want, timeline.String())
		}
	}

	var analyze strings.Builder
	if err := l.Analyze(&analyze); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"cycles: 1", "trigger quarterly: 1", "changes: 1", "/pb-plan (1)"} {
		if !strings.Contains(analyze.String(), want) {
			t.Errorf("analyze missing %q:\n%s", want, analyze.String())
		}
	}
}

func TestTimelineEmpty(t *testing.T) {
	var sb strings.Builder
	if err := testLog(t).Timeline(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "no evolution cycles") {
		t.Errorf("empty timeline output: %q", sb.String())
	}
}
