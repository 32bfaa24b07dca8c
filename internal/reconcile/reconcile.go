// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile brings document front-matter back in line with the
// body. The body Resource Hint is the authoritative model statement;
// front-matter model_hint mirrors it.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/playbook-engine/internal/corpus"
	"github.com/pdiddy/playbook-engine/pkg/types"
)

// Action is one reconciliation performed or proposed.
type Action struct {
	Command string `json:"command"`
	Field   string `json:"field"`
	Before  string `json:"before"`
	After   string `json:"after"`
	Applied bool   `json:"applied"`
}

// Reconciler checks and repairs front-matter drift.
type Reconciler struct {
	log *zap.SugaredLogger
}

// New returns a reconciler logging through log.
func New(log *zap.Logger) *Reconciler {
	return &Reconciler{log: log.Sugar()}
}

// SyncModelHints finds documents whose front-matter model_hint
// disagrees with the body Resource Hint. With fix set, the
// front-matter is rewritten in place; the body is never touched.
func (r *Reconciler) SyncModelHints(c *corpus.Corpus, fix bool) ([]Action, error) {
	var actions []Action

	for _, doc := range c.Documents {
		if doc.FrontMatter == nil {
			continue
		}
		bodyHint := corpus.ExtractResourceHint(doc.Body)
		if bodyHint == "" || doc.FrontMatter.ModelHint == string(bodyHint) {
			continue
		}

		action := Action{
			Command: doc.Slug,
			Field:   "model_hint",
			Before:  doc.FrontMatter.ModelHint,
			After:   string(bodyHint),
		}

		if fix {
			updated := corpus.SetModelHint(doc.Body, bodyHint)
			if err := r.writeDoc(c, doc, updated); err != nil {
				return actions, err
			}
			action.Applied = true
		}
		actions = append(actions, action)
	}

	r.log.Infow("model hints reconciled", "drifted", len(actions), "fixed", fix)
	return actions, nil
}

// CleanTags removes the tags line from front-matter. The tag data has
// accumulated without curation and carries no signal the category and
// references do not already provide.
func (r *Reconciler) CleanTags(c *corpus.Corpus, fix bool) ([]Action, error) {
	var actions []Action

	for _, doc := range c.Documents {
		if doc.FrontMatter == nil || len(doc.FrontMatter.Tags) == 0 {
			continue
		}

		action := Action{
			Command: doc.Slug,
			Field:   "tags",
			Before:  fmt.Sprintf("%d tags", len(doc.FrontMatter.Tags)),
			After:   "",
		}

		if fix {
			if err := r.writeDoc(c, doc, corpus.StripTags(doc.Body)); err != nil {
				return actions, err
			}
			action.Applied = true
		}
		actions = append(actions, action)
	}

	r.log.Infow("tags cleaned", "documents", len(actions), "fixed", fix)
	return actions, nil
}

func (r *Reconciler) writeDoc(c *corpus.Corpus, doc *types.Document, content string) error {
	path := filepath.Join(c.Root, doc.Path)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	r.log.Debugw("document rewritten", "command", doc.Slug)
	return nil
}
