// Package journalmap assembles the query reconciliation layer over open
// access journal data: journals from DOAJ CSV exports held in graph stores,
// category and area classifications from Scimago JSON exports held in
// relational stores. A single facade wires upload handlers and a full query
// engine over any number of store endpoints.
package journalmap

import (
	"context"
	"fmt"

	"github.com/journalmap/journalmap/pkg/handlers"
	"github.com/journalmap/journalmap/pkg/reconcile"
	"github.com/journalmap/journalmap/pkg/store/graph"
	"github.com/journalmap/journalmap/pkg/store/relational"
)

// JournalMap owns one full query engine plus the upload handlers for every
// configured store endpoint. Handler precedence follows option order: the
// first configured endpoint wins conflicting non-null fields.
type JournalMap struct {
	config *config
	engine *reconcile.FullEngine

	journalUploads  []handlers.UploadHandler
	categoryUploads []handlers.UploadHandler

	relationalQueries []*relational.CategoryQuery
}

// New creates a JournalMap instance with the given options. Endpoints are
// wired into query and upload handlers immediately; connections open lazily
// on first use. Creating an instance with no endpoints is valid, queries
// against it fail with a configuration error.
func New(opts ...Option) (*JournalMap, error) {
	cfg := newConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	jm := &JournalMap{
		config: cfg,
		engine: reconcile.NewFullEngine(cfg.engineOptions()...),
	}

	for _, endpoint := range cfg.graphEndpoints {
		query := graph.NewJournalQuery()
		query.SetDBPathOrURL(endpoint)
		jm.engine.AddJournalHandler(query)

		upload := graph.NewJournalUpload()
		upload.SetDBPathOrURL(endpoint)
		jm.journalUploads = append(jm.journalUploads, upload)
	}

	for _, path := range cfg.sqlitePaths {
		query := relational.NewCategoryQuery()
		query.SetDBPathOrURL(path)
		jm.engine.AddCategoryHandler(query)
		jm.relationalQueries = append(jm.relationalQueries, query)

		upload := relational.NewCategoryUpload()
		upload.SetDBPathOrURL(path)
		jm.categoryUploads = append(jm.categoryUploads, upload)
	}

	return jm, nil
}

// Engine returns the full query engine. All reconciliation operations,
// basic and mashup, hang off it.
func (jm *JournalMap) Engine() *reconcile.FullEngine {
	return jm.engine
}

// UploadJournals pushes a DOAJ CSV export into every configured graph
// endpoint. The first failing endpoint aborts the upload.
func (jm *JournalMap) UploadJournals(ctx context.Context, csvPath string) error {
	if len(jm.journalUploads) == 0 {
		return fmt.Errorf("no graph endpoints configured")
	}
	for _, u := range jm.journalUploads {
		if err := u.PushDataToDB(ctx, csvPath); err != nil {
			return err
		}
	}
	return nil
}

// UploadCategories pushes a Scimago JSON export into every configured
// relational database. The first failing database aborts the upload.
func (jm *JournalMap) UploadCategories(ctx context.Context, jsonPath string) error {
	if len(jm.categoryUploads) == 0 {
		return fmt.Errorf("no relational databases configured")
	}
	for _, u := range jm.categoryUploads {
		if err := u.PushDataToDB(ctx, jsonPath); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the relational connection pools. Graph handlers hold no
// persistent connections.
func (jm *JournalMap) Close() error {
	var firstErr error
	for _, q := range jm.relationalQueries {
		if err := q.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, u := range jm.categoryUploads {
		if c, ok := u.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
