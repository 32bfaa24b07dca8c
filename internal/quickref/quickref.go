// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quickref renders the corpus quick-reference markdown from
// extracted metadata. The output file is generated, never hand-edited.
package quickref

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

// workflow is a named command pipeline surfaced in the quick reference
// when enough of its steps exist in the corpus.
type workflow struct {
	name  string
	steps []string
}

var workflows = []workflow{
	{"Feature development", []string{"pb-start", "pb-cycle", "pb-testing", "pb-commit", "pb-pr"}},
	{"Code review", []string{"pb-review-code", "pb-review-tests", "pb-pr"}},
	{"Planning", []string{"pb-plan", "pb-adr", "pb-start"}},
}

// minWorkflowSteps is the fewest present steps worth rendering.
const minWorkflowSteps = 2

// Generator renders quick-reference output.
type Generator struct {
	log *zap.SugaredLogger
}

// New returns a generator logging through log.
func New(log *zap.Logger) *Generator {
	return &Generator{log: log.Sugar()}
}

// Generate renders the quick-reference markdown for the metadata.
func (g *Generator) Generate(meta *types.CorpusMetadata) string {
	var sb strings.Builder

	g.writeHeader(&sb, meta)
	g.writeWorkflows(&sb, meta)
	g.writeCategories(&sb, meta)
	g.writeDecisionTrees(&sb, meta)
	g.writeFooter(&sb)

	return sb.String()
}

// WriteFile renders the quick reference and writes it to path.
func (g *Generator) WriteFile(meta *types.CorpusMetadata, path string) error {
	content := g.Generate(meta)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	g.log.Infow("quick reference written", "path", path, "commands", meta.TotalCommands)
	return nil
}

func (g *Generator) writeHeader(sb *strings.Builder, meta *types.CorpusMetadata) {
	fmt.Fprintf(sb, "# Playbook Quick Reference\n\n")
	fmt.Fprintf(sb, "Generated from %d commands on %s. Extraction confidence %.0f%%.\n\n",
		meta.TotalCommands, meta.ExtractionDate, meta.Report.AverageConfidence*100)
}

func (g *Generator) writeWorkflows(sb *strings.Builder, meta *types.CorpusMetadata) {
	var rendered []string
	for _, wf := range workflows {
		var present []string
		for _, step := range wf.steps {
			if _, ok := meta.Commands[step]; ok {
				present = append(present, step)
			}
		}
		if len(present) < minWorkflowSteps {
			continue
		}

		minutes := 0
		parts := make([]string, len(present))
		for i, step := range present {
			parts[i] = "/" + step
			minutes += commandMinutes(meta.Commands[step])
		}
		rendered = append(rendered,
			fmt.Sprintf("**%s** (~%d min)\n\n%s\n", wf.name, minutes, strings.Join(parts, " then ")))
	}

	if len(rendered) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Common Workflows\n\n")
	for _, r := range rendered {
		fmt.Fprintf(sb, "%s\n", r)
	}
}

func (g *Generator) writeCategories(sb *strings.Builder, meta *types.CorpusMetadata) {
	if len(meta.Categories) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Commands by Category\n\n")

	names := make([]string, 0, len(meta.Categories))
	for name := range meta.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat := meta.Categories[name]
		fmt.Fprintf(sb, "### %s (%d)\n\n", name, cat.Count)
		fmt.Fprintf(sb, "| Command | Purpose | Model | Time |\n")
		fmt.Fprintf(sb, "|---------|---------|-------|------|\n")
		for _, slug := range cat.Commands {
			cmd := meta.Commands[slug]
			if cmd == nil {
				continue
			}
			fmt.Fprintf(sb, "| /%s | %s | %s | %s |\n",
				slug, cmd.Purpose, orDash(string(cmd.ModelHint)), tierRange(cmd.Tiers))
		}
		fmt.Fprintln(sb)
	}
}

func (g *Generator) writeDecisionTrees(sb *strings.Builder, meta *types.CorpusMetadata) {
	slugs := make([]string, 0, len(meta.Commands))
	for slug, cmd := range meta.Commands {
		if len(cmd.DecisionContext) > 0 {
			slugs = append(slugs, slug)
		}
	}
	if len(slugs) == 0 {
		return
	}
	sort.Strings(slugs)

	fmt.Fprintf(sb, "## Decision Guide\n\n")
	for _, slug := range slugs {
		fmt.Fprintf(sb, "### /%s\n\n", slug)

		cmd := meta.Commands[slug]
		conditions := make([]string, 0, len(cmd.DecisionContext))
		for cond := range cmd.DecisionContext {
			conditions = append(conditions, cond)
		}
		sort.Strings(conditions)
		for _, cond := range conditions {
			target := cmd.DecisionContext[cond]
			if strings.HasPrefix(target, "/pb-") {
				fmt.Fprintf(sb, "- %s: use %s\n", cond, target)
			} else {
				fmt.Fprintf(sb, "- when %s\n", target)
			}
		}
		fmt.Fprintln(sb)
	}
}

func (g *Generator) writeFooter(sb *strings.Builder) {
	fmt.Fprintf(sb, "---\n\n")
	fmt.Fprintf(sb, "Tier times: XS %d min, S %d min, M %d min, L %d min.\n",
		types.TierXS.Minutes(), types.TierS.Minutes(), types.TierM.Minutes(), types.TierL.Minutes())
	fmt.Fprintf(sb, "Generated by playbook-engine. Edit the command files, not this file.\n")
}

// commandMinutes estimates a command's time from its largest tier.
func commandMinutes(cmd *types.DocMetadata) int {
	if cmd == nil || len(cmd.Tiers) == 0 {
		return types.Tier("").Minutes()
	}
	return cmd.Tiers[len(cmd.Tiers)-1].Minutes()
}

// tierRange formats the tier span as a time estimate.
func tierRange(tiers []types.Tier) string {
	switch len(tiers) {
	case 0:
		return "-"
	case 1:
		return fmt.Sprintf("%d min", tiers[0].Minutes())
	default:
		return fmt.Sprintf("%d-%d min", tiers[0].Minutes(), tiers[len(tiers)-1].Minutes())
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
