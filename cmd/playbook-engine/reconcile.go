// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile front-matter with document bodies",
	Long: `Reconcile repairs drift between front-matter and the authoritative
document body. Without --fix, drift is reported but files are left
untouched.`,
}

var reconcileModelHintsCmd = &cobra.Command{
	Use:   "model-hints",
	Short: "Sync front-matter model_hint with the body Resource Hint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, func(r *reconcile.Reconciler, c *corpus.Corpus, fix bool) ([]reconcile.Action, error) {
			return r.SyncModelHints(c, fix)
		})
	},
}

var reconcileTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Remove the uncurated tags field from front-matter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, func(r *reconcile.Reconciler, c *corpus.Corpus, fix bool) ([]reconcile.Action, error) {
			return r.CleanTags(c, fix)
		})
	},
}

func runReconcile(cmd *cobra.Command, op func(*reconcile.Reconciler, *corpus.Corpus, bool) ([]reconcile.Action, error)) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	fix, _ := cmd.Flags().GetBool("fix")

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	actions, err := op(reconcile.New(logger), c, fix)
	if err != nil {
		return err
	}

	if len(actions) == 0 {
		fmt.Println("Nothing to reconcile.")
		return nil
	}
	for _, a := range actions {
		state := "would change"
		if a.Applied {
			state = "changed"
		}
		fmt.Printf("  %s  %s: %q -> %q  (%s)\n", a.Command, a.Field, a.Before, a.After, state)
	}
	if !fix {
		fmt.Printf("\n%d document(s) drifted. Re-run with --fix to apply.\n", len(actions))
	}
	return nil
}

func init() {
	reconcileCmd.PersistentFlags().Bool("fix", false, "rewrite files instead of reporting drift")
	addCorpusFlags(reconcileModelHintsCmd)
	addCorpusFlags(reconcileTagsCmd)

	reconcileCmd.AddCommand(reconcileModelHintsCmd)
	reconcileCmd.AddCommand(reconcileTagsCmd)

	rootCmd.AddCommand(reconcileCmd)
}
