// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pdiddy/playbook-engine/internal/corpus"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Browse command documents in the terminal",
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List commands by category",
	RunE:  runDocList,
}

func runDocList(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	byCategory := map[string][]string{}
	for _, doc := range c.Documents {
		byCategory[doc.Category] = append(byCategory[doc.Category], doc.Slug)
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		slugs := byCategory[cat]
		sort.Strings(slugs)
		fmt.Printf("%s (%d)\n", cat, len(slugs))
		for _, slug := range slugs {
			doc := c.Get(slug)
			fmt.Printf("  /%-24s %s\n", slug, doc.Title)
		}
	}
	fmt.Printf("\n%d commands\n", len(c.Documents))
	return nil
}

var docShowCmd = &cobra.Command{
	Use:   "show <command>",
	Short: "Render one command document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocShow,
}

func runDocShow(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	overrideCorpusFlags(cmd, &cfg.Corpus)

	c, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return err
	}

	slug := strings.TrimPrefix(args[0], "/")
	doc := c.Get(slug)
	if doc == nil {
		return fmt.Errorf("unknown command %q", slug)
	}

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Print(doc.Body)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("building renderer: %w", err)
	}
	out, err := r.Render(doc.Body)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", doc.Slug, err)
	}
	fmt.Print(out)
	return nil
}

func init() {
	addCorpusFlags(docListCmd)
	addCorpusFlags(docShowCmd)
	docShowCmd.Flags().Bool("plain", false, "print raw markdown without rendering")

	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docShowCmd)

	rootCmd.AddCommand(docCmd)
}
