// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evolution

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// staleFraction is the share of the corpus that must be stale before
// the staleness trigger fires.
const staleFraction = 0.25

// staleSampleLimit caps the stale commands listed in a trigger.
const staleSampleLimit = 10

// dateLayout is the ISO date used in front-matter.
const dateLayout = "2006-01-02"

// Detector evaluates whether an evolution cycle is due.
type Detector struct {
	log *zap.SugaredLogger
	cfg types.EvolutionConfig
}

// NewDetector returns a trigger detector.
func NewDetector(log *zap.Logger, cfg types.EvolutionConfig) *Detector {
	return &Detector{log: log.Sugar(), cfg: cfg}
}

// Detect runs all trigger checks against the corpus and audit log as
// of now. Detection only reports; starting a cycle stays a human call.
func (d *Detector) Detect(c *corpus.Corpus, auditLog *Log, now time.Time) ([]types.EvolutionTrigger, error) {
	var triggers []types.EvolutionTrigger

	calendar, err := d.checkCalendar(auditLog, now)
	if err != nil {
		return nil, err
	}
	if calendar != nil {
		triggers = append(triggers, *calendar)
	}

	if stale := d.checkStaleness(c, now); stale != nil {
		triggers = append(triggers, *stale)
	}

	if feedback := d.checkFeedback(); feedback != nil {
		triggers = append(triggers, *feedback)
	}

	d.log.Infow("trigger detection complete", "triggers", len(triggers))
	return triggers, nil
}

func (d *Detector) checkCalendar(auditLog *Log, now time.Time) (*types.EvolutionTrigger, error) {
	cycles, err := auditLog.List()
	if err != nil {
		return nil, err
	}

	threshold := d.cfg.CycleThreshold
	if threshold <= 0 {
		threshold = 90 * 24 * time.Hour
	}

	if len(cycles) == 0 {
		return &types.EvolutionTrigger{
			Type:           "first_evolution",
			Severity:       types.SeverityInfo,
			Message:        "no evolution cycle has ever been recorded",
			Recommendation: "run a baseline cycle to establish the cadence",
		}, nil
	}

	var last time.Time
	for _, c := range cycles {
		if started, err := time.Parse(time.RFC3339, c.StartedAt); err == nil && started.After(last) {
			last = started
		}
	}

	age := now.Sub(last)
	if age < threshold {
		return nil, nil
	}

	severity := types.SeverityMedium
	if age >= 2*threshold {
		severity = types.SeverityHigh
	}
	return &types.EvolutionTrigger{
		Type:     "calendar_trigger",
		Severity: severity,
		Message: fmt.Sprintf("last evolution cycle started %d days ago, cadence is %d days",
			int(age.Hours()/24), int(threshold.Hours()/24)),
		Recommendation: "schedule the next evolution cycle",
	}, nil
}

func (d *Detector) checkStaleness(c *corpus.Corpus, now time.Time) *types.EvolutionTrigger {
	threshold := d.cfg.StaleThreshold
	if threshold <= 0 {
		threshold = 180 * 24 * time.Hour
	}

	var stale []types.StaleCommand
	for _, doc := range c.Documents {
		if doc.FrontMatter == nil || doc.FrontMatter.LastReviewed == "" {
			continue
		}
		reviewed, err := time.Parse(dateLayout, doc.FrontMatter.LastReviewed)
		if err != nil {
			continue
		}
		if age := now.Sub(reviewed); age >= threshold {
			stale = append(stale, types.StaleCommand{
				Command:      doc.Slug,
				LastReviewed: doc.FrontMatter.LastReviewed,
				DaysStale:    int(age.Hours() / 24),
			})
		}
	}

	if len(c.Documents) == 0 ||
		float64(len(stale))/float64(len(c.Documents)) <= staleFraction {
		return nil
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].DaysStale > stale[j].DaysStale })
	sample := stale
	if len(sample) > staleSampleLimit {
		sample = sample[:staleSampleLimit]
	}

	return &types.EvolutionTrigger{
		Type:     "staleness_trigger",
		Severity: types.SeverityMedium,
		Message: fmt.Sprintf("%d of %d commands have not been reviewed in %d days",
			len(stale), len(c.Documents), int(threshold.Hours()/24)),
		Recommendation: "review the stalest commands first",
		StaleCommands:  sample,
	}
}

func (d *Detector) checkFeedback() *types.EvolutionTrigger {
	dir := d.cfg.FeedbackDir
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil
	}

	return &types.EvolutionTrigger{
		Type:     "user_feedback",
		Severity: types.SeverityHigh,
		Message: fmt.Sprintf("%d feedback file(s) waiting in %s: %s",
			len(files), dir, strings.Join(files, ", ")),
		Recommendation: "incorporate the feedback in the next cycle",
	}
}

// RenderTriggers writes a console view of detected triggers.
func RenderTriggers(w io.Writer, triggers []types.EvolutionTrigger) {
	if len(triggers) == 0 {
		fmt.Fprintln(w, "no evolution triggers detected")
		return
	}
	for _, t := range triggers {
		fmt.Fprintf(w, "[%s] %s: %s\n", t.Severity, t.Type, t.Message)
		if t.Recommendation != "" {
			fmt.Fprintf(w, "    recommendation: %s\n", t.Recommendation)
		}
		for _, s := range t.StaleCommands {
			fmt.Fprintf(w, "    /%s last reviewed %s (%d days)\n",
				s.Command, s.LastReviewed, s.DaysStale)
		}
	}
}

// MarkdownReport renders detected triggers as a markdown document.
func MarkdownReport(triggers []types.EvolutionTrigger, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Evolution Triggers\n\nChecked %s.\n\n", now.Format(dateLayout))

	if len(triggers) == 0 {
		fmt.Fprintf(&sb, "No triggers detected.\n")
		return sb.String()
	}

	for _, t := range triggers {
		fmt.Fprintf(&sb, "## %s (%s)\n\n%s\n\n", t.Type, t.Severity, t.Message)
		if t.Recommendation != "" {
			fmt.Fprintf(&sb, "Recommendation: %s\n\n", t.Recommendation)
		}
		if len(t.StaleCommands) > 0 {
			fmt.Fprintf(&sb, "| Command | Last Reviewed | Days Stale |\n")
			fmt.Fprintf(&sb, "|---------|---------------|------------|\n")
			for _, s := range t.StaleCommands {
				fmt.Fprintf(&sb, "| /%s | %s | %d |\n", s.Command, s.LastReviewed, s.DaysStale)
			}
			fmt.Fprintln(&sb)
		}
	}
	return sb.String()
}
