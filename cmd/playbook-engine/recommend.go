// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/gitutil"
	"github.com/pdiddy/playbook-engine/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest the next commands for the current repository state",
	Long: `Recommend inspects the working repository (branch, dirty files,
recent commit subjects) to detect the development phase, then ranks
commands by how well their frequency matches that phase.`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	limit, _ := cmd.Flags().GetInt("limit")

	meta, err := quickrefMetadata(cmd, cfg, false)
	if err != nil {
		return err
	}

	engine := recommend.New(logger, gitutil.New("."))
	recs, phase, err := engine.Recommend(context.Background(), meta, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	fmt.Printf("Phase: %s\n\n", phase)
	if len(recs) == 0 {
		fmt.Println("No recommendations for this state.")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("  /%s  (%.2f, ~%d min)  %s\n", r.Command, r.Score, r.Minutes, r.Reason)
	}
	return nil
}

func init() {
	addCorpusFlags(recommendCmd)
	recommendCmd.Flags().Int("limit", 5, "maximum number of recommendations")
	recommendCmd.Flags().Bool("json", false, "output recommendations as JSON")

	rootCmd.AddCommand(recommendCmd)
}
