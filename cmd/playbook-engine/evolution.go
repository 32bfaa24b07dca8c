// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/evolution"
	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

var evolutionCmd = &cobra.Command{
	Use:   "evolution",
	Short: "Track evolution cycles, snapshots, and triggers",
	Long: `Evolution maintains the audit log of corpus evolution cycles, takes
git-tag snapshots before a cycle starts, detects when a new cycle is
due, and diffs front-matter between refs.

A cycle is recorded, accumulates per-command changes, and is then
completed (with its PR) or reverted. Snapshots allow rolling the
corpus back to its pre-cycle state.`,
}

func auditLog() *evolution.Log {
	return evolution.NewLog(logger, engineConfig().Evolution.AuditFile)
}

// --- record subcommand ---

var evolutionRecordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Start a new evolution cycle",
	Long: `Record opens a new in-progress cycle in the audit log. Only one
cycle may be in progress at a time. With --snapshot, a pre-cycle
snapshot is taken first and linked to the cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvolutionRecord,
}

func runEvolutionRecord(cmd *cobra.Command, args []string) error {
	trigger, _ := cmd.Flags().GetString("trigger")
	capability, _ := cmd.Flags().GetString("capability-changes")
	withSnapshot, _ := cmd.Flags().GetBool("snapshot")

	cfg := engineConfig()
	snapshotID := ""
	if withSnapshot {
		snapshotter := evolution.NewSnapshotter(logger, gitutil.New("."),
			cfg.Evolution.SnapshotsDir, cfg.Corpus.CommandsDir)
		snap, err := snapshotter.Create(context.Background(),
			fmt.Sprintf("Pre-evolution snapshot for %s", args[0]))
		if err != nil {
			return err
		}
		snapshotID = snap.ID
		fmt.Println("Snapshot created:", snap.ID)
	}

	cycle, err := auditLog().Record(args[0], types.CycleTrigger(trigger), capability, snapshotID)
	if err != nil {
		return err
	}
	fmt.Printf("Cycle %q started (%s)\n", cycle.Name, cycle.ID)
	return nil
}

// --- add-change subcommand ---

var evolutionAddChangeCmd = &cobra.Command{
	Use:   "add-change <cycle>",
	Short: "Record a per-command change within the open cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvolutionAddChange,
}

func runEvolutionAddChange(cmd *cobra.Command, args []string) error {
	change := types.Change{}
	change.Command, _ = cmd.Flags().GetString("command")
	change.Field, _ = cmd.Flags().GetString("field")
	change.Before, _ = cmd.Flags().GetString("before")
	change.After, _ = cmd.Flags().GetString("after")
	change.Rationale, _ = cmd.Flags().GetString("rationale")

	if change.Command == "" || change.Field == "" {
		return fmt.Errorf("--command and --field are required")
	}
	if err := auditLog().AddChange(args[0], change); err != nil {
		return err
	}
	fmt.Printf("Recorded %s.%s change\n", change.Command, change.Field)
	return nil
}

// --- complete / revert subcommands ---

var evolutionCompleteCmd = &cobra.Command{
	Use:   "complete <cycle>",
	Short: "Mark a cycle completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, _ := cmd.Flags().GetInt("pr")
		if err := auditLog().Complete(args[0], pr); err != nil {
			return err
		}
		fmt.Println("Cycle completed:", args[0])
		return nil
	},
}

var evolutionRevertCmd = &cobra.Command{
	Use:   "revert <cycle>",
	Short: "Mark a cycle reverted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		if err := auditLog().Revert(args[0], reason); err != nil {
			return err
		}
		fmt.Println("Cycle reverted:", args[0])
		return nil
	},
}

// --- show / timeline / analyze subcommands ---

var evolutionShowCmd = &cobra.Command{
	Use:   "show <cycle>",
	Short: "Print one cycle as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycle, err := auditLog().Show(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cycle)
	},
}

var evolutionTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the cycle history in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return auditLog().Timeline(os.Stdout)
	},
}

var evolutionAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize cycle outcomes and most-changed commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		return auditLog().Analyze(os.Stdout)
	},
}

// --- triggers subcommand ---

var evolutionTriggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Detect whether a new evolution cycle is due",
	Long: `Triggers checks calendar age since the last cycle, document review
staleness, and queued user feedback. Detection reports signals; acting
on them is a human call.`,
	RunE: runEvolutionTriggers,
}

func runEvolutionTriggers(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	markdown, _ := cmd.Flags().GetBool("markdown")

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	detector := evolution.NewDetector(logger, cfg.Evolution)
	triggers, err := detector.Detect(c, auditLog(), time.Now().UTC())
	if err != nil {
		return err
	}

	if markdown {
		fmt.Print(evolution.MarkdownReport(triggers, time.Now().UTC()))
		return nil
	}
	evolution.RenderTriggers(os.Stdout, triggers)
	return nil
}

// --- diff subcommand ---

var evolutionDiffCmd = &cobra.Command{
	Use:   "diff <ref-a> <ref-b>",
	Short: "Diff command front-matter between two git refs",
	Args:  cobra.ExactArgs(2),
	RunE:  runEvolutionDiff,
}

func runEvolutionDiff(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)

	diffs, err := evolution.DiffFrontMatter(context.Background(), gitutil.New("."),
		args[0], args[1], cfg.Corpus.CommandsDir)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diffs)
	}

	if len(diffs) == 0 {
		fmt.Println("No front-matter differences.")
		return nil
	}
	for _, d := range diffs {
		fmt.Printf("%s  %s: %q -> %q\n", d.Command, d.Field, d.Before, d.After)
	}
	fmt.Printf("\n%d difference(s)\n", len(diffs))
	return nil
}

// --- snapshot subcommands ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage pre-evolution git-tag snapshots",
}

func snapshotter() *evolution.Snapshotter {
	cfg := engineConfig()
	return evolution.NewSnapshotter(logger, gitutil.New("."),
		cfg.Evolution.SnapshotsDir, cfg.Corpus.CommandsDir)
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Tag the current commit as a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		snap, err := snapshotter().Create(context.Background(), message)
		if err != nil {
			return err
		}
		fmt.Println("Snapshot created:", snap.ID)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps, err := snapshotter().List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots recorded.")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("%s  %-6s  %s  %s\n", s.ID, s.Status, s.CreatedAt, s.Message)
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshotter().Show(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

var snapshotRollbackCmd = &cobra.Command{
	Use:   "rollback <id>",
	Short: "Restore the corpus directory from a snapshot tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := snapshotter().Rollback(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Rolled back to", args[0])
		return nil
	},
}

var snapshotCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old snapshot tags, keeping the newest",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		deleted, err := snapshotter().Cleanup(context.Background(), keep)
		if err != nil {
			return err
		}
		if len(deleted) == 0 {
			fmt.Println("Nothing to clean up.")
			return nil
		}
		for _, id := range deleted {
			fmt.Println("Deleted", id)
		}
		return nil
	},
}

func init() {
	evolutionRecordCmd.Flags().String("trigger", string(types.TriggerManual), "cycle trigger: quarterly, version_upgrade, user_feedback, manual")
	evolutionRecordCmd.Flags().String("capability-changes", "", "upstream capability changes motivating the cycle")
	evolutionRecordCmd.Flags().Bool("snapshot", false, "take a pre-cycle snapshot and link it")

	evolutionAddChangeCmd.Flags().String("command", "", "slug of the edited command")
	evolutionAddChangeCmd.Flags().String("field", "", "field that changed, e.g. model_hint")
	evolutionAddChangeCmd.Flags().String("before", "", "value before the change")
	evolutionAddChangeCmd.Flags().String("after", "", "value after the change")
	evolutionAddChangeCmd.Flags().String("rationale", "", "why the change was made")

	evolutionCompleteCmd.Flags().Int("pr", 0, "pull request number that landed the cycle")
	evolutionRevertCmd.Flags().String("reason", "", "why the cycle was rolled back")

	addCorpusFlags(evolutionTriggersCmd)
	evolutionTriggersCmd.Flags().Bool("markdown", false, "print a markdown report instead of the plain summary")

	addCorpusFlags(evolutionDiffCmd)
	evolutionDiffCmd.Flags().Bool("json", false, "output differences as JSON")

	snapshotCreateCmd.Flags().String("message", "", "snapshot description")
	snapshotCleanupCmd.Flags().Int("keep", 5, "number of newest snapshots to keep")

	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotRollbackCmd)
	snapshotCmd.AddCommand(snapshotCleanupCmd)

	evolutionCmd.AddCommand(evolutionRecordCmd)
	evolutionCmd.AddCommand(evolutionAddChangeCmd)
	evolutionCmd.AddCommand(evolutionCompleteCmd)
	evolutionCmd.AddCommand(evolutionRevertCmd)
	evolutionCmd.AddCommand(evolutionShowCmd)
	evolutionCmd.AddCommand(evolutionTimelineCmd)
	evolutionCmd.AddCommand(evolutionAnalyzeCmd)
	evolutionCmd.AddCommand(evolutionTriggersCmd)
	evolutionCmd.AddCommand(evolutionDiffCmd)
	evolutionCmd.AddCommand(snapshotCmd)

	rootCmd.AddCommand(evolutionCmd)
}
