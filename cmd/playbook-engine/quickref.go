// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/extract"
	"github.com/pdiddy/playbook-engine/internal/quickref"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

var quickrefCmd = &cobra.Command{
	Use:   "quickref",
	Short: "Generate the quick-reference markdown file",
	Long: `Quickref renders the corpus metadata into a single quick-reference
markdown file: common workflows with time estimates, per-category
command tables, and a decision guide.

By default the existing metadata file is used; --fresh re-extracts the
corpus first so the reference never trails the documents.`,
	RunE: runQuickref,
}

func runQuickref(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.QuickRef.OutputFile = out
	}
	fresh, _ := cmd.Flags().GetBool("fresh")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	meta, err := quickrefMetadata(cmd, cfg, fresh)
	if err != nil {
		return err
	}

	gen := quickref.New(logger)
	if toStdout {
		fmt.Print(gen.Generate(meta))
		return nil
	}
	if err := gen.WriteFile(meta, cfg.QuickRef.OutputFile); err != nil {
		return err
	}
	fmt.Println("Wrote", cfg.QuickRef.OutputFile)
	return nil
}

func quickrefMetadata(cmd *cobra.Command, cfg types.EngineConfig, fresh bool) (*types.CorpusMetadata, error) {
	if !fresh {
		if meta, err := extract.LoadFile(cfg.Extraction.MetadataFile); err == nil {
			return meta, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// No metadata file yet; fall through to extraction.
	}

	overrideCorpusFlags(cmd, &cfg.Corpus)
	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return nil, err
	}
	return extract.New(logger).ExtractAll(c), nil
}

func init() {
	addCorpusFlags(quickrefCmd)
	quickrefCmd.Flags().String("output", "", "output path (default from config: .playbook-quick-ref.md)")
	quickrefCmd.Flags().Bool("fresh", false, "re-extract the corpus instead of reading the metadata file")
	quickrefCmd.Flags().Bool("stdout", false, "print the reference instead of writing the file")

	rootCmd.AddCommand(quickrefCmd)
}
