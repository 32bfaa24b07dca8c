// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/extract"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured metadata from the command corpus",
	Long: `Extract parses every command document, derives per-field metadata
(title, purpose, tiers, model hint, related commands, frequency, decision
context) with confidence scores, and writes the corpus metadata JSON file.

Fields the documents do not state explicitly are inferred from body
structure; each field carries a confidence score reflecting how direct
the evidence was.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Extraction.MetadataFile = out
	}

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	meta := extract.New(logger).ExtractAll(c)
	if err := extract.Save(meta, cfg.Extraction.MetadataFile); err != nil {
		return err
	}

	r := meta.Report
	fmt.Printf("Extracted %d commands (%d categories)\n", meta.TotalCommands, len(meta.Categories))
	fmt.Printf("Average confidence: %.0f%%\n", r.AverageConfidence*100)
	fmt.Printf("Warnings: %d  Errors: %d\n", len(r.Warnings), len(r.Errors))
	fmt.Println("Wrote", cfg.Extraction.MetadataFile)

	if len(r.Errors) > 0 {
		for _, f := range r.Errors {
			fmt.Printf("  error: %s: %s\n", f.Command, f.Issue)
		}
		return fmt.Errorf("%d extraction error(s)", len(r.Errors))
	}
	return nil
}

// overrideCorpusFlags applies the shared corpus flags over the viper
// configuration. Used by every command that loads the corpus.
func overrideCorpusFlags(cmd *cobra.Command, cfg *types.CorpusConfig) {
	if dir, _ := cmd.Flags().GetString("commands-dir"); dir != "" {
		cfg.CommandsDir = dir
	}
	if pat, _ := cmd.Flags().GetString("pattern"); pat != "" {
		cfg.Pattern = pat
	}
}

// addCorpusFlags registers the shared corpus flags on a command.
func addCorpusFlags(cmd *cobra.Command) {
	cmd.Flags().String("commands-dir", "", "corpus root directory (default from config: commands)")
	cmd.Flags().String("pattern", "", "glob for command discovery (default from config: **/pb-*.md)")
}

func init() {
	addCorpusFlags(extractCmd)
	extractCmd.Flags().String("output", "", "metadata output path (default from config: .playbook-metadata.json)")

	rootCmd.AddCommand(extractCmd)
}
