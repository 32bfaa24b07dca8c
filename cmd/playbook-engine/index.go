// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/internal/index"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the full-text corpus index (build, search, export)",
	Long: `Index manages a local SQLite index of command documents and their
sections with FTS5 full-text search. Use subcommands to build the index,
query it, or export it.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Ingest command documents into the index",
	Long: `Build parses the corpus and ingests every document into the SQLite
index, one section per row. Unchanged documents are skipped on
subsequent runs; documents removed from the corpus are dropped.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)
	overrideIndexFlags(cmd, &cfg.Index)

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), c, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the index with full-text search and filters",
	Long: `Search queries the index using FTS5 full-text search, structured
filters (category, model, command), or a combination of both. Results
are sections with their document provenance.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideIndexFlags(cmd, &cfg.Index)

	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := searchOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --category, --model, --tag, or --command")
	}

	hits, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(hits, jsonOutput)
}

func formatSearchOutput(hits []index.SectionHit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-24s  %-10s  %s\n",
		"Rank", "Command", "Section", "Model", "Content")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, h := range hits {
		content := strings.Join(strings.Fields(h.Content), " ")
		if len(content) > 40 {
			content = content[:37] + "..."
		}
		heading := h.Heading
		if len(heading) > 24 {
			heading = heading[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-24s  %-10s  %s\n",
			i+1, h.DocSlug, heading, h.Model, content)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	category, _ := cmd.Flags().GetString("category")
	model, _ := cmd.Flags().GetString("model")
	slug, _ := cmd.Flags().GetString("command")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Category:   category,
		Model:      types.ModelHint(model),
		Slug:       slug,
		Tag:        tag,
		MaxResults: limit,
	}
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	RunE:  runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := engineConfig()
	overrideIndexFlags(cmd, &cfg.Index)

	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.Index.IndexDir)
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.Index.IndexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func overrideIndexFlags(cmd *cobra.Command, cfg *types.IndexConfig) {
	if dir, _ := cmd.Flags().GetString("index-dir"); dir != "" {
		cfg.IndexDir = dir
	}
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.MaxResults = n
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "", "index directory (default from config: .playbook-index)")
	indexCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (default from config: 20)")

	addCorpusFlags(indexBuildCmd)

	indexSearchCmd.Flags().String("query", "", "full-text search query")
	indexSearchCmd.Flags().String("category", "", "filter by category")
	indexSearchCmd.Flags().String("model", "", "filter by Resource Hint model: opus, sonnet, haiku")
	indexSearchCmd.Flags().String("command", "", "restrict to one command slug")
	indexSearchCmd.Flags().String("tag", "", "filter by front-matter tag")
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
