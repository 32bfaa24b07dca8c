// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/extract"
	"github.com/pdiddy/playbook-engine/internal/index"
	"github.com/pdiddy/playbook-engine/internal/quickref"
	"github.com/pdiddy/playbook-engine/internal/watch"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild metadata and the quick reference on file changes",
	Long: `Watch monitors the corpus directory and re-runs extraction and
quick-reference generation after changes settle. With --index, the
search index is rebuilt too. Runs until interrupted.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	if d, _ := cmd.Flags().GetDuration("debounce"); d > 0 {
		cfg.Watch.Debounce = d
	}
	withIndex, _ := cmd.Flags().GetBool("index")

	handler := func(ctx context.Context) error {
		return rebuild(ctx, cfg, withIndex)
	}

	// An initial build so the outputs exist before the first change.
	if err := handler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "initial build:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(logger, cfg.Corpus.CommandsDir, cfg.Watch.Debounce, handler)
	err := w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func rebuild(ctx context.Context, cfg types.EngineConfig, withIndex bool) error {
	start := time.Now()

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	meta := extract.New(logger).ExtractAll(c)
	if err := extract.Save(meta, cfg.Extraction.MetadataFile); err != nil {
		return err
	}
	if err := quickref.New(logger).WriteFile(meta, cfg.QuickRef.OutputFile); err != nil {
		return err
	}

	if withIndex {
		store, err := index.NewStore(cfg.Index)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Ingest(ctx, c, io.Discard); err != nil {
			return err
		}
	}

	fmt.Printf("Rebuilt %d commands in %s\n", meta.TotalCommands, time.Since(start).Round(time.Millisecond))
	return nil
}

func init() {
	addCorpusFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "settle time after the last change (default from config: 500ms)")
	watchCmd.Flags().Bool("index", false, "also rebuild the search index on changes")

	rootCmd.AddCommand(watchCmd)
}
