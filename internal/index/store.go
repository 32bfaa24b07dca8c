// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists the playbook corpus in SQLite and serves
// full-text section search over it.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

const dbFile = "playbooks.db"

// Store manages the corpus index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/playbooks.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, indexDir: cfg.IndexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			slug TEXT PRIMARY KEY,
			path TEXT,
			category TEXT,
			title TEXT,
			purpose TEXT,
			model_hint TEXT,
			refs TEXT,
			tags TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			doc_slug TEXT NOT NULL REFERENCES documents(slug),
			heading TEXT,
			section_slug TEXT,
			content TEXT NOT NULL,
			position INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_doc_slug ON sections(doc_slug)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			doc_slug TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sections_fts USING fts5(content, content=sections, content_rowid=rowid)`,
			`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER sections_au AFTER UPDATE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of documents processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest populates the database from a loaded corpus. File modification
// times drive incremental updates: unchanged documents are skipped,
// changed ones re-indexed, and index entries whose document left the
// corpus are removed.
func (s *Store) Ingest(ctx context.Context, c *corpus.Corpus, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, doc := range c.Documents {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var storedModTime string
		err := s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE doc_slug = ?`, doc.Slug,
		).Scan(&storedModTime)

		if err == nil && storedModTime == doc.ModTime {
			fmt.Fprintf(w, "skipped %s\n", doc.Slug)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.ingestDocument(ctx, doc, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.Slug, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d sections)\n", doc.Slug, len(doc.Sections))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d sections)\n", doc.Slug, len(doc.Sections))
			summary.Indexed++
		}
	}

	removed, err := s.removeStale(ctx, c, w)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)
	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, doc *types.Document, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE doc_slug = ?`, doc.Slug); err != nil {
			return fmt.Errorf("deleting old sections: %w", err)
		}
	}

	refsJSON, _ := json.Marshal(doc.References)
	var tagsJSON []byte
	if doc.FrontMatter != nil {
		tagsJSON, _ = json.Marshal(doc.FrontMatter.Tags)
	}
	modelHint := string(corpus.ExtractResourceHint(doc.Body))

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (slug, path, category, title, purpose, model_hint, refs, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			path=excluded.path, category=excluded.category, title=excluded.title,
			purpose=excluded.purpose, model_hint=excluded.model_hint,
			refs=excluded.refs, tags=excluded.tags`,
		doc.Slug, doc.Path, doc.Category, doc.Title, doc.Purpose,
		modelHint, string(refsJSON), string(tagsJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO sections (id, doc_slug, heading, section_slug, content, position)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sec := range doc.Sections {
		id := doc.Slug + "#" + sec.Slug
		_, err := stmt.ExecContext(ctx,
			id, doc.Slug, sec.Heading, sec.Slug, sec.Content, sec.Position)
		if err != nil {
			return fmt.Errorf("inserting section %s: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (doc_slug, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(doc_slug) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		doc.Slug, doc.ModTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// removeStale drops index entries for documents no longer in the corpus.
func (s *Store) removeStale(ctx context.Context, c *corpus.Corpus, w io.Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed documents: %w", err)
	}
	defer rows.Close()

	var stale []string
	slugs := c.Slugs()
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return 0, fmt.Errorf("scanning slug: %w", err)
		}
		if !slugs[slug] {
			stale = append(stale, slug)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, slug := range stale {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		for _, stmt := range []string{
			`DELETE FROM sections WHERE doc_slug = ?`,
			`DELETE FROM documents WHERE slug = ?`,
			`DELETE FROM indexing_status WHERE doc_slug = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, slug); err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("removing %s: %w", slug, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		fmt.Fprintf(w, "removed %s\n", slug)
	}

	return len(stale), nil
}
