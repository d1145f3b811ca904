// Package reconcile implements the query reconciliation layer: results
// independently fetched from any number of graph-backed and
// relational-backed query handlers are merged into a single, deduplicated,
// internally consistent result set keyed on shared journal identifiers.
//
// The engine tolerates redundant handlers per store type, inconsistent
// partial data, and identifier mismatches (ISSN vs EISSN). Conflicting
// non-null field values are resolved by handler registration order:
// earlier-registered handlers win. Callers control precedence by
// registering handlers in the order they trust them.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
	"github.com/journalmap/journalmap/pkg/logging"
)

// DefaultHandlerTimeout bounds each handler's contribution to a query.
// A slow store contributes nothing past this, it never blocks the query.
const DefaultHandlerTimeout = 30 * time.Second

// Engine fans same-type queries out to every registered handler of that
// type and merges the results. Handler registration is ordered; duplicates
// (same instance or same endpoint) are permitted, the engine deduplicates
// results, not handlers, so callers can fan out across mirrored or sharded
// stores without pre-deduplicating endpoints.
type Engine struct {
	mu         sync.RWMutex
	journals   []handlers.JournalQueryHandler
	categories []handlers.CategoryQueryHandler

	timeout time.Duration
	logger  *zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHandlerTimeout sets the per-handler timeout applied at the fan-out
// boundary.
func WithHandlerTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger used to record handler faults and rejected
// entities.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with no registered handlers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultHandlerTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddJournalHandler appends a graph-backed journal handler. Earlier
// handlers take precedence on conflicting non-null fields.
func (e *Engine) AddJournalHandler(h handlers.JournalQueryHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journals = append(e.journals, h)
}

// AddCategoryHandler appends a relational-backed category/area handler.
func (e *Engine) AddCategoryHandler(h handlers.CategoryQueryHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories = append(e.categories, h)
}

// CleanJournalHandlers removes all journal handlers.
func (e *Engine) CleanJournalHandlers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journals = nil
}

// CleanCategoryHandlers removes all category handlers.
func (e *Engine) CleanCategoryHandlers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories = nil
}

// journalHandlers returns a registration-ordered snapshot.
func (e *Engine) journalHandlers() []handlers.JournalQueryHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]handlers.JournalQueryHandler, len(e.journals))
	copy(out, e.journals)
	return out
}

// categoryHandlers returns a registration-ordered snapshot.
func (e *Engine) categoryHandlers() []handlers.CategoryQueryHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]handlers.CategoryQueryHandler, len(e.categories))
	copy(out, e.categories)
	return out
}

// journalQuery fans op out over every journal handler and merges.
func (e *Engine) journalQuery(
	ctx context.Context,
	operation string,
	op func(context.Context, handlers.JournalQueryHandler) ([]entities.Journal, error),
) ([]entities.Journal, error) {
	hs := e.journalHandlers()
	if len(hs) == 0 {
		return nil, errors.NewConfigurationError("journal", operation)
	}

	chunks, err := queryAll(ctx, e.logger, e.timeout, operation, hs, journalEndpoint, op)
	if err != nil {
		return nil, err
	}
	return mergeJournals(e.logger, flatten(chunks)), nil
}

// categoryQuery fans op out over every category handler and merges.
func (e *Engine) categoryQuery(
	ctx context.Context,
	operation string,
	op func(context.Context, handlers.CategoryQueryHandler) ([]entities.Category, error),
) ([]entities.Category, error) {
	hs := e.categoryHandlers()
	if len(hs) == 0 {
		return nil, errors.NewConfigurationError("category", operation)
	}

	chunks, err := queryAll(ctx, e.logger, e.timeout, operation, hs, categoryEndpoint, op)
	if err != nil {
		return nil, err
	}
	return mergeCategories(e.logger, flatten(chunks)), nil
}

// areaQuery fans op out over every category handler and merges areas.
func (e *Engine) areaQuery(
	ctx context.Context,
	operation string,
	op func(context.Context, handlers.CategoryQueryHandler) ([]entities.Area, error),
) ([]entities.Area, error) {
	hs := e.categoryHandlers()
	if len(hs) == 0 {
		return nil, errors.NewConfigurationError("category", operation)
	}

	chunks, err := queryAll(ctx, e.logger, e.timeout, operation, hs, categoryEndpoint, op)
	if err != nil {
		return nil, err
	}
	return mergeAreas(e.logger, flatten(chunks)), nil
}

func journalEndpoint(h handlers.JournalQueryHandler) string { return h.DBPathOrURL() }

func categoryEndpoint(h handlers.CategoryQueryHandler) string { return h.DBPathOrURL() }

// AllJournals returns every journal, merged across all journal handlers.
func (e *Engine) AllJournals(ctx context.Context) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "AllJournals",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.AllJournals(ctx)
		})
}

// JournalsWithTitle returns journals whose title contains partialTitle,
// case-insensitively.
func (e *Engine) JournalsWithTitle(ctx context.Context, partialTitle string) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "JournalsWithTitle",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.JournalsWithTitle(ctx, partialTitle)
		})
}

// JournalsPublishedBy returns journals whose publisher name contains
// partialName, case-insensitively.
func (e *Engine) JournalsPublishedBy(ctx context.Context, partialName string) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "JournalsPublishedBy",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.JournalsPublishedBy(ctx, partialName)
		})
}

// JournalsWithLicense returns journals carrying any of the given licenses.
// An empty set matches all journals.
func (e *Engine) JournalsWithLicense(ctx context.Context, licenses []string) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "JournalsWithLicense",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.JournalsWithLicense(ctx, licenses)
		})
}

// JournalsWithAPC returns journals that charge an article processing charge.
func (e *Engine) JournalsWithAPC(ctx context.Context) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "JournalsWithAPC",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.JournalsWithAPC(ctx)
		})
}

// JournalsWithDOAJSeal returns journals awarded the DOAJ Seal.
func (e *Engine) JournalsWithDOAJSeal(ctx context.Context) ([]entities.Journal, error) {
	return e.journalQuery(ctx, "JournalsWithDOAJSeal",
		func(ctx context.Context, h handlers.JournalQueryHandler) ([]entities.Journal, error) {
			return h.JournalsWithDOAJSeal(ctx)
		})
}

// AllCategories returns every category, merged across all category handlers.
func (e *Engine) AllCategories(ctx context.Context) ([]entities.Category, error) {
	return e.categoryQuery(ctx, "AllCategories",
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Category, error) {
			return h.AllCategories(ctx)
		})
}

// AllAreas returns every area, merged across all category handlers.
func (e *Engine) AllAreas(ctx context.Context) ([]entities.Area, error) {
	return e.areaQuery(ctx, "AllAreas",
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Area, error) {
			return h.AllAreas(ctx)
		})
}

// CategoriesWithQuartile returns categories in any of the given quartiles.
// An empty set matches all categories.
func (e *Engine) CategoriesWithQuartile(ctx context.Context, quartiles []string) ([]entities.Category, error) {
	return e.categoryQuery(ctx, "CategoriesWithQuartile",
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Category, error) {
			return h.CategoriesWithQuartile(ctx, quartiles)
		})
}

// CategoriesAssignedToAreas returns categories sharing at least one journal
// with any of the given areas. An empty set matches all.
func (e *Engine) CategoriesAssignedToAreas(ctx context.Context, areaIDs []string) ([]entities.Category, error) {
	return e.categoryQuery(ctx, "CategoriesAssignedToAreas",
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Category, error) {
			return h.CategoriesAssignedToAreas(ctx, areaIDs)
		})
}

// AreasAssignedToCategories returns areas sharing at least one journal with
// any of the given categories. An empty set matches all.
func (e *Engine) AreasAssignedToCategories(ctx context.Context, categoryIDs []string) ([]entities.Area, error) {
	return e.areaQuery(ctx, "AreasAssignedToCategories",
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Area, error) {
			return h.AreasAssignedToCategories(ctx, categoryIDs)
		})
}

// EntityByID looks an entity up by identifier across both handler families:
// journals first, then categories and areas. Point lookups are sequential,
// a hit on an earlier-registered handler wins. A handler fault is recorded
// and skipped; a missing entity yields a typed not-found error, which is
// distinct from a fault and from a misconfigured engine.
func (e *Engine) EntityByID(ctx context.Context, id string) (entities.Identified, error) {
	js := e.journalHandlers()
	cs := e.categoryHandlers()
	if len(js) == 0 && len(cs) == 0 {
		return nil, errors.NewConfigurationError("journal or category", "EntityByID")
	}

	for i, h := range js {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hctx, cancel := context.WithTimeout(ctx, e.timeout)
		journal, err := h.JournalByID(hctx, id)
		cancel()
		if err != nil {
			e.warnFault(h.DBPathOrURL(), "EntityByID", i, err)
			continue
		}
		if journal != nil {
			return *journal, nil
		}
	}

	for i, h := range cs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hctx, cancel := context.WithTimeout(ctx, e.timeout)
		entity, err := h.EntityByID(hctx, id)
		cancel()
		if err != nil {
			e.warnFault(h.DBPathOrURL(), "EntityByID", i, err)
			continue
		}
		if entity != nil {
			return entity, nil
		}
	}

	return nil, errors.NewNotFoundError("entity", id)
}

func (e *Engine) warnFault(endpoint, operation string, index int, err error) {
	fault := errors.NewHandlerFaultError(endpoint, operation, err)
	e.logger.Warn().
		Err(fault).
		Str("operation", operation).
		Str("endpoint", endpoint).
		Int("handler_index", index).
		Msg("handler fault, contribution treated as empty")
}
