// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the playbook-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/logging"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built once in the root PersistentPreRunE and shared by all
// subcommands.
var logger *zap.Logger

// rootCmd is the base command for the playbook-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "playbook-engine",
	Short: "Maintenance tooling for a playbook command corpus",
	Long: `playbook-engine maintains a corpus of playbook command documents
(pb-*.md files organized by category). It extracts structured metadata,
validates corpus conventions, builds a full-text search index, generates
a quick reference, tracks evolution cycles, and mines git history for
usage signals.

Each maintenance stage is a subcommand: extract, validate, index,
quickref, evolution, signals, recommend, reconcile, watch, and doc.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./playbook-engine.yaml or ~/.config/playbook-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("playbook-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "playbook-engine"))
		}
	}

	viper.SetEnvPrefix("PLAYBOOK_ENGINE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("corpus.commands_dir", "commands")
	viper.SetDefault("corpus.pattern", "**/pb-*.md")
	viper.SetDefault("corpus.expected_count", 0)
	viper.SetDefault("corpus.hub_commands", []string{"pb-patterns"})
	viper.SetDefault("extraction.metadata_file", ".playbook-metadata.json")
	viper.SetDefault("index.index_dir", ".playbook-index")
	viper.SetDefault("index.max_results", 20)
	viper.SetDefault("quickref.output_file", ".playbook-quick-ref.md")
	viper.SetDefault("evolution.audit_file", "todos/evolution-audit.json")
	viper.SetDefault("evolution.snapshots_dir", "todos/evolution-snapshots")
	viper.SetDefault("evolution.cycle_threshold", 90*24*time.Hour)
	viper.SetDefault("evolution.stale_threshold", 180*24*time.Hour)
	viper.SetDefault("evolution.feedback_dir", "todos/feedback")
	viper.SetDefault("signals.since", "1 year ago")
	viper.SetDefault("signals.output_dir", "todos/git-signals/latest")
	viper.SetDefault("signals.top_n", 20)
	viper.SetDefault("watch.debounce", 500*time.Millisecond)
}

// engineConfig assembles the full stage configuration from viper, so
// config file, environment, and defaults all flow through one place.
// Per-command flags override individual fields after this.
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		Corpus: types.CorpusConfig{
			CommandsDir:   viper.GetString("corpus.commands_dir"),
			Pattern:       viper.GetString("corpus.pattern"),
			ExpectedCount: viper.GetInt("corpus.expected_count"),
			HubCommands:   viper.GetStringSlice("corpus.hub_commands"),
		},
		Extraction: types.ExtractionConfig{
			MetadataFile: viper.GetString("extraction.metadata_file"),
		},
		Index: types.IndexConfig{
			IndexDir:   viper.GetString("index.index_dir"),
			MaxResults: viper.GetInt("index.max_results"),
		},
		QuickRef: types.QuickRefConfig{
			OutputFile: viper.GetString("quickref.output_file"),
		},
		Evolution: types.EvolutionConfig{
			AuditFile:      viper.GetString("evolution.audit_file"),
			SnapshotsDir:   viper.GetString("evolution.snapshots_dir"),
			CycleThreshold: viper.GetDuration("evolution.cycle_threshold"),
			StaleThreshold: viper.GetDuration("evolution.stale_threshold"),
			FeedbackDir:    viper.GetString("evolution.feedback_dir"),
		},
		Signals: types.SignalsConfig{
			Since:     viper.GetString("signals.since"),
			OutputDir: viper.GetString("signals.output_dir"),
			TopN:      viper.GetInt("signals.top_n"),
		},
		Watch: types.WatchConfig{
			Debounce: viper.GetDuration("watch.debounce"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
