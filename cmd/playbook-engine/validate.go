// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/extract"
	"github.com/pdiddy/playbook-engine/internal/lint"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate corpus conventions and cross-references",
	Long: `Validate checks every command document against corpus conventions:
exactly one H1 title, unique slugs, resolvable /pb-* references, a valid
Resource Hint, a When to Use section, and related-link limits.

Reference and title problems are errors; convention drift is a warning.
With --strict, warnings also fail the run. With --metadata, the current
metadata file is checked for staleness against the corpus.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	if n, _ := cmd.Flags().GetInt("expected-count"); n > 0 {
		cfg.Corpus.ExpectedCount = n
	}
	strict, _ := cmd.Flags().GetBool("strict")
	withMeta, _ := cmd.Flags().GetBool("metadata")

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	linter := lint.New(logger, cfg.Corpus)
	report := linter.Run(c, strict)

	if withMeta {
		meta, err := extract.LoadFile(cfg.Extraction.MetadataFile)
		if err != nil {
			return fmt.Errorf("loading metadata for check: %w", err)
		}
		linter.CheckMetadata(c, meta, report)
	}

	report.Render(os.Stdout)
	if !report.Passed() {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func init() {
	addCorpusFlags(validateCmd)
	validateCmd.Flags().Bool("strict", false, "treat warnings as failures")
	validateCmd.Flags().Bool("metadata", false, "also check the metadata file against the corpus")
	validateCmd.Flags().Int("expected-count", 0, "fail unless the corpus has exactly this many commands")

	rootCmd.AddCommand(validateCmd)
}
