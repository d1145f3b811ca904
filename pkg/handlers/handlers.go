// Package handlers defines the contracts every backing store adapter must
// honor. A handler is a read-only (query) or write-only (upload) adapter
// bound to exactly one store endpoint: a local path for the relational
// store, a URL for the graph store.
//
// The reconciliation engine depends only on these interfaces, never on a
// concrete store; multiple interchangeable implementations per store type
// are expected for redundancy and fan-out.
package handlers

import (
	"context"

	"github.com/journalmap/journalmap/pkg/entities"
)

// Handler is the base configuration shared by upload and query handlers.
// Embed it in concrete adapters.
type Handler struct {
	dbPathOrURL string
}

// SetDBPathOrURL configures the handler's store endpoint: a local file path
// for relational stores, an HTTP endpoint URL for graph stores.
func (h *Handler) SetDBPathOrURL(pathOrURL string) {
	h.dbPathOrURL = pathOrURL
}

// DBPathOrURL returns the configured store endpoint.
func (h *Handler) DBPathOrURL() string {
	return h.dbPathOrURL
}

// Configurable is implemented by every handler.
type Configurable interface {
	SetDBPathOrURL(pathOrURL string)
	DBPathOrURL() string
}

// UploadHandler pushes parsed source records into a backing store.
// Errors on malformed source rows are the uploader's concern, not the
// engine's.
type UploadHandler interface {
	Configurable

	// PushDataToDB reads the given source file and loads it into the
	// configured store.
	PushDataToDB(ctx context.Context, sourceFile string) error
}

// JournalQueryHandler executes the fixed set of journal reads against one
// graph-backed store. All operations are pure reads with no side effects;
// a failed store connection surfaces as a handler-level fault, never as an
// empty result. Full scans are re-issuable, not one-shot streams.
type JournalQueryHandler interface {
	Configurable

	// JournalByID is a point lookup by any of the journal's identifiers.
	// A missing journal returns (nil, nil); nil error with nil journal is
	// not a fault.
	JournalByID(ctx context.Context, id string) (*entities.Journal, error)

	// AllJournals returns every journal. Order undefined, finite.
	AllJournals(ctx context.Context) ([]entities.Journal, error)

	// JournalsWithTitle returns journals whose title contains the given
	// fragment, case-insensitively.
	JournalsWithTitle(ctx context.Context, partialTitle string) ([]entities.Journal, error)

	// JournalsPublishedBy returns journals whose publisher name contains
	// the given fragment, case-insensitively.
	JournalsPublishedBy(ctx context.Context, partialName string) ([]entities.Journal, error)

	// JournalsWithLicense returns journals carrying any of the given
	// licenses. An empty set matches all journals.
	JournalsWithLicense(ctx context.Context, licenses []string) ([]entities.Journal, error)

	// JournalsWithAPC returns journals that charge an APC.
	JournalsWithAPC(ctx context.Context) ([]entities.Journal, error)

	// JournalsWithDOAJSeal returns journals awarded the DOAJ Seal.
	JournalsWithDOAJSeal(ctx context.Context) ([]entities.Journal, error)
}

// CategoryQueryHandler executes the fixed set of category and area reads
// against one relational-backed store.
type CategoryQueryHandler interface {
	Configurable

	// EntityByID looks up a category or area by its identifier (name).
	// A missing entity returns (nil, nil).
	EntityByID(ctx context.Context, id string) (entities.Identified, error)

	// AllCategories returns every category with its journal back-references.
	AllCategories(ctx context.Context) ([]entities.Category, error)

	// AllAreas returns every area with its journal back-references.
	AllAreas(ctx context.Context) ([]entities.Area, error)

	// CategoriesWithQuartile returns categories in any of the given
	// quartiles. An empty set matches all categories.
	CategoriesWithQuartile(ctx context.Context, quartiles []string) ([]entities.Category, error)

	// CategoriesAssignedToAreas returns categories that share at least one
	// journal with any of the given areas. An empty set matches all.
	CategoriesAssignedToAreas(ctx context.Context, areaIDs []string) ([]entities.Category, error)

	// AreasAssignedToCategories returns areas that share at least one
	// journal with any of the given categories. An empty set matches all.
	AreasAssignedToCategories(ctx context.Context, categoryIDs []string) ([]entities.Area, error)

	// EntitiesByJournalID returns the categories and areas that reference
	// the given journal identifier.
	EntitiesByJournalID(ctx context.Context, id string) ([]entities.Identified, error)

	// JournalIDsForCategories returns the identifiers of journals assigned
	// to any of the given categories, optionally restricted to quartiles.
	// Empty sets are wildcards.
	JournalIDsForCategories(ctx context.Context, categoryIDs, quartiles []string) ([]string, error)

	// JournalIDsForAreas returns the identifiers of journals assigned to
	// any of the given areas. An empty set is a wildcard.
	JournalIDsForAreas(ctx context.Context, areaIDs []string) ([]string, error)
}
