// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

// ExportEntry holds one indexed document for export.
type ExportEntry struct {
	Slug       string          `json:"slug" yaml:"slug"`
	Path       string          `json:"path" yaml:"path"`
	Category   string          `json:"category" yaml:"category"`
	Title      string          `json:"title" yaml:"title"`
	Purpose    string          `json:"purpose" yaml:"purpose"`
	Model      types.ModelHint `json:"model_hint,omitempty" yaml:"model_hint,omitempty"`
	References []string        `json:"references,omitempty" yaml:"references,omitempty"`
	Tags       []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Sections   []string        `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// ExportYAML writes the indexed documents to indexDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.indexDir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the indexed documents to indexDir/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.indexDir, "export.json"), data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, path, category, title, purpose, model_hint, refs, tags
		 FROM documents ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var (
			e        ExportEntry
			model    sql.NullString
			refsJSON sql.NullString
			tagsJSON sql.NullString
		)
		if err := rows.Scan(&e.Slug, &e.Path, &e.Category, &e.Title, &e.Purpose,
			&model, &refsJSON, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if model.Valid {
			e.Model = types.ModelHint(model.String)
		}
		if refsJSON.Valid && refsJSON.String != "" {
			json.Unmarshal([]byte(refsJSON.String), &e.References)
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			json.Unmarshal([]byte(tagsJSON.String), &e.Tags)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		secRows, err := s.db.QueryContext(ctx,
			`SELECT section_slug FROM sections WHERE doc_slug = ? ORDER BY position`,
			entries[i].Slug)
		if err != nil {
			return nil, fmt.Errorf("querying sections: %w", err)
		}
		for secRows.Next() {
			var slug string
			if err := secRows.Scan(&slug); err != nil {
				secRows.Close()
				return nil, fmt.Errorf("scanning section: %w", err)
			}
			entries[i].Sections = append(entries[i].Sections, slug)
		}
		if err := secRows.Err(); err != nil {
			secRows.Close()
			return nil, err
		}
		secRows.Close()
	}

	return entries, nil
}
