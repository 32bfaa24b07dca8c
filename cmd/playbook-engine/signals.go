// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/internal/signals"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Mine git history for command usage signals",
	Long: `Signals analyzes the repository history of the corpus directory:
which commands are touched most, where line churn concentrates, and
which fix-like commits point at pain points. Results are written as
JSON metrics plus a markdown summary.

With --snapshot, the output directory is also copied to a dated
sibling so trends can be compared across runs.`,
	RunE: runSignals,
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		cfg.Signals.Since = since
	}
	if out, _ := cmd.Flags().GetString("output-dir"); out != "" {
		cfg.Signals.OutputDir = out
	}
	withSnapshot, _ := cmd.Flags().GetBool("snapshot")

	pathspec := filepath.ToSlash(cfg.Corpus.CommandsDir)
	miner := signals.New(logger, gitutil.New("."), pathspec, cfg.Signals)

	report, err := miner.Mine(context.Background())
	if err != nil {
		return err
	}
	if err := miner.Write(report); err != nil {
		return err
	}

	fmt.Printf("Analyzed %d commits since %q\n", report.Commits, report.Since)
	fmt.Printf("Commands touched: %d  Pain points: %d\n", len(report.Adoption), len(report.PainPoints))
	fmt.Println("Wrote", cfg.Signals.OutputDir)

	if withSnapshot {
		dir, err := miner.Snapshot()
		if err != nil {
			return err
		}
		fmt.Println("Snapshot copied to", dir)
	}
	return nil
}

func init() {
	addCorpusFlags(signalsCmd)
	signalsCmd.Flags().String("since", "", "git time range, e.g. \"6 months ago\" (default from config: 1 year ago)")
	signalsCmd.Flags().String("output-dir", "", "metrics output directory (default from config: todos/git-signals/latest)")
	signalsCmd.Flags().Bool("snapshot", false, "also copy the output to a dated sibling directory")

	rootCmd.AddCommand(signalsCmd)
}
