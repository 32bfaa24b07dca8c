// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Category filters by document category.
	Category string

	// Model filters by the document's Resource Hint model.
	Model types.ModelHint

	// Slug restricts results to one document.
	Slug string

	// Tag filters by front-matter tag.
	Tag string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == "" && q.Model == "" && q.Slug == "" && q.Tag == ""
}

// SectionHit is one matching section with its document metadata.
type SectionHit struct {
	ID       string          `json:"id" yaml:"id"`
	DocSlug  string          `json:"doc_slug" yaml:"doc_slug"`
	Path     string          `json:"path" yaml:"path"`
	Category string          `json:"category" yaml:"category"`
	Title    string          `json:"title" yaml:"title"`
	Heading  string          `json:"heading" yaml:"heading"`
	Content  string          `json:"content" yaml:"content"`
	Model    types.ModelHint `json:"model_hint,omitempty" yaml:"model_hint,omitempty"`
	Tags     []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Search queries the index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries sort by document and section position.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SectionHit, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT sec.id, sec.doc_slug, sec.heading, sec.content,
				d.path, d.category, d.title, d.model_hint, d.tags
			FROM sections_fts
			JOIN sections sec ON sec.rowid = sections_fts.rowid
			JOIN documents d ON sec.doc_slug = d.slug
			WHERE sections_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT sec.id, sec.doc_slug, sec.heading, sec.content,
				d.path, d.category, d.title, d.model_hint, d.tags
			FROM sections sec
			JOIN documents d ON sec.doc_slug = d.slug
			WHERE 1=1`)
	}

	if opts.Category != "" {
		qb.WriteString(` AND d.category = ?`)
		args = append(args, opts.Category)
	}
	if opts.Model != "" {
		qb.WriteString(` AND d.model_hint = ?`)
		args = append(args, string(opts.Model))
	}
	if opts.Slug != "" {
		qb.WriteString(` AND sec.doc_slug = ?`)
		args = append(args, opts.Slug)
	}
	if opts.Tag != "" {
		// Tags are stored as a JSON array; matching the quoted element
		// keeps "review" from matching "reviewers".
		qb.WriteString(` AND d.tags LIKE ?`)
		args = append(args, `%"`+opts.Tag+`"%`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY sections_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY sec.doc_slug, sec.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []SectionHit
	for rows.Next() {
		var (
			hit      SectionHit
			model    sql.NullString
			tagsJSON sql.NullString
		)
		if err := rows.Scan(
			&hit.ID, &hit.DocSlug, &hit.Heading, &hit.Content,
			&hit.Path, &hit.Category, &hit.Title, &model, &tagsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if model.Valid {
			hit.Model = types.ModelHint(model.String)
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			json.Unmarshal([]byte(tagsJSON.String), &hit.Tags)
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}
