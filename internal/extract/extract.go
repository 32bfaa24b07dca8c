// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives structured metadata from playbook documents.
// Every field carries a confidence score reflecting how directly it was
// observed: parsed structure scores high, keyword inference scores low.
package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// MetadataVersion identifies the metadata file schema.
const MetadataVersion = "1.0"

// Engine runs metadata extraction over a corpus.
type Engine struct {
	log      *zap.SugaredLogger
	warnings []types.Finding
	errors   []types.Finding
}

// New returns an extraction engine logging through log.
func New(log *zap.Logger) *Engine {
	return &Engine{log: log.Sugar()}
}

// ExtractAll derives metadata for every document in the corpus and
// assembles the complete corpus metadata with its run report.
func (e *Engine) ExtractAll(c *corpus.Corpus) *types.CorpusMetadata {
	e.warnings = nil
	e.errors = nil

	commands := make(map[string]*types.DocMetadata, len(c.Documents))
	for _, doc := range c.Documents {
		meta := e.extractDoc(doc)
		e.validateMeta(meta, c)
		commands[meta.Command] = meta
		e.log.Debugw("extracted",
			"command", meta.Command,
			"confidence", meta.AverageConfidence)
	}

	out := e.assemble(commands)
	e.log.Infow("extraction complete",
		"commands", out.TotalCommands,
		"average_confidence", out.Report.AverageConfidence,
		"warnings", len(out.Report.Warnings),
		"errors", len(out.Report.Errors))
	return out
}

func (e *Engine) extractDoc(doc *types.Document) *types.DocMetadata {
	_, body, _ := corpus.SplitFrontMatter(doc.Body)

	whenToUse := corpus.SectionContent(body, corpus.WhenToUseHeadings...)

	meta := &types.DocMetadata{
		Command:         doc.Slug,
		Category:        doc.Category,
		Title:           doc.Title,
		Purpose:         doc.Purpose,
		Tiers:           InferTiers(body),
		ModelHint:       corpus.ExtractResourceHint(body),
		RelatedCommands: prefixed(doc.References),
		NextSteps: prefixed(corpus.OrderedReferences(
			corpus.SectionContent(body, "Next Steps", "Then", "Workflow", "After"))),
		Prerequisites: prefixed(corpus.OrderedReferences(
			corpus.SectionContent(body, "Prerequisites", "Before", "Pre-Start"))),
		Frequency:       InferFrequency(whenToUse),
		DecisionContext: InferDecisionContext(body, whenToUse),
		HasExamples:     corpus.HasCodeFence(body),
		HasChecklist:    corpus.HasChecklist(body),
		SourceFile:      doc.Path,
		ExtractedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	for _, sec := range doc.Sections {
		meta.Sections = append(meta.Sections, sec.Slug)
	}

	meta.ConfidenceScores = e.scoreConfidence(meta, body, whenToUse)
	meta.AverageConfidence = averageConfidence(meta.ConfidenceScores)
	return meta
}

// scoreConfidence assigns a 0..1 score per field. Structural fields
// read straight off the document score 1.0; inferred fields score by
// the strength of their evidence.
func (e *Engine) scoreConfidence(meta *types.DocMetadata, body, whenToUse string) map[string]float64 {
	scores := map[string]float64{
		"command":  1.0,
		"category": 1.0,
		"sections": 1.0,
	}

	scores["title"] = boolScore(meta.Title != "", 1.0)
	scores["purpose"] = boolScore(meta.Purpose != "", 0.95)

	switch {
	case len(meta.Tiers) == 0:
		scores["tier"] = 0
	case explicitTierRe.MatchString(body):
		scores["tier"] = 0.95
	case tierRowRe.MatchString(body):
		scores["tier"] = 0.85
	default:
		scores["tier"] = 0.75
	}

	scores["model_hint"] = boolScore(meta.ModelHint != "", 1.0)
	scores["related_commands"] = boolScore(len(meta.RelatedCommands) > 0, 0.95)

	switch {
	case len(meta.NextSteps) == 0:
		scores["next_steps"] = 0
	case corpus.SectionContent(body, "Next Steps") != "":
		scores["next_steps"] = 0.90
	default:
		scores["next_steps"] = 0.80
	}

	scores["prerequisites"] = boolScore(len(meta.Prerequisites) > 0, 0.85)

	if meta.Frequency == types.FreqAsNeeded && whenToUse == "" {
		scores["frequency"] = 0.60
	} else {
		scores["frequency"] = 0.85
	}

	scores["decision_context"] = boolScore(len(meta.DecisionContext) > 0, 0.70)
	scores["has_examples"] = 1.0
	scores["has_checklist"] = 1.0

	return scores
}

// optionalFields are excluded from the average when absent; a command
// with no prerequisites is not less trustworthy for lacking them.
var optionalFields = map[string]bool{
	"next_steps":       true,
	"prerequisites":    true,
	"decision_context": true,
}

func averageConfidence(scores map[string]float64) float64 {
	var sum float64
	var n int
	for field, score := range scores {
		if score == 0 && optionalFields[field] {
			continue
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0
	}
	return round4(sum / float64(n))
}

// validateMeta records findings for missing required fields, dangling
// references, and low-confidence extractions.
func (e *Engine) validateMeta(meta *types.DocMetadata, c *corpus.Corpus) {
	required := map[string]string{
		"command":  meta.Command,
		"title":    meta.Title,
		"category": meta.Category,
		"purpose":  meta.Purpose,
	}
	for field, value := range required {
		if value == "" {
			e.errors = append(e.errors, types.Finding{
				Command:  meta.Command,
				Field:    field,
				Issue:    "required field is empty",
				Severity: "error",
			})
		}
	}

	slugs := c.Slugs()
	for field, refs := range map[string][]string{
		"related_commands": meta.RelatedCommands,
		"next_steps":       meta.NextSteps,
	} {
		for _, ref := range refs {
			if !slugs[stripSlash(ref)] {
				e.warnings = append(e.warnings, types.Finding{
					Command:  meta.Command,
					Field:    field,
					Issue:    fmt.Sprintf("reference %s does not resolve to a corpus document", ref),
					Severity: "warning",
				})
			}
		}
	}

	for _, field := range []string{"command", "title", "category"} {
		if score := meta.ConfidenceScores[field]; score < 1.0 {
			e.errors = append(e.errors, types.Finding{
				Command:  meta.Command,
				Field:    field,
				Issue:    fmt.Sprintf("critical field extracted with confidence %.2f", score),
				Severity: "error",
			})
		}
	}
	for field, score := range meta.ConfidenceScores {
		if score > 0 && score < 0.70 {
			e.warnings = append(e.warnings, types.Finding{
				Command:  meta.Command,
				Field:    field,
				Issue:    fmt.Sprintf("low extraction confidence %.2f", score),
				Severity: "warning",
			})
		}
	}
}

func (e *Engine) assemble(commands map[string]*types.DocMetadata) *types.CorpusMetadata {
	categories := make(map[string]*types.CategorySummary)
	var confidenceSum float64
	for _, meta := range commands {
		cat := categories[meta.Category]
		if cat == nil {
			cat = &types.CategorySummary{}
			categories[meta.Category] = cat
		}
		cat.Count++
		cat.Commands = append(cat.Commands, meta.Command)
		confidenceSum += meta.AverageConfidence
	}
	for _, cat := range categories {
		sort.Strings(cat.Commands)
	}

	avg := 0.0
	if len(commands) > 0 {
		avg = round4(confidenceSum / float64(len(commands)))
	}

	return &types.CorpusMetadata{
		MetadataVersion: MetadataVersion,
		ExtractionDate:  time.Now().UTC().Format(time.RFC3339),
		TotalCommands:   len(commands),
		Commands:        commands,
		Categories:      categories,
		Report: types.ExtractionReport{
			TotalCommands:     len(commands),
			ExtractionSuccess: len(commands),
			AverageConfidence: avg,
			Warnings:          e.warnings,
			Errors:            e.errors,
		},
	}
}

// Save writes the metadata as indented JSON.
func Save(meta *types.CorpusMetadata, path string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a previously saved metadata file.
func LoadFile(path string) (*types.CorpusMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var meta types.CorpusMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &meta, nil
}

func prefixed(slugs []string) []string {
	if len(slugs) == 0 {
		return nil
	}
	out := make([]string, len(slugs))
	for i, s := range slugs {
		out[i] = "/" + s
	}
	return out
}

func stripSlash(ref string) string {
	return strings.TrimPrefix(ref, "/")
}

func boolScore(present bool, score float64) float64 {
	if present {
		return score
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
