package reconcile

import (
	"context"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
)

// FullEngine composes the basic engine operations into mashup queries that
// join journal records from the graph side with category/area
// classifications from the relational side.
//
// Joins are inner joins on identifier intersection: a journal with no
// matching classification is excluded from mashup output but still appears
// in journal-only queries. "Journals with no category" is the explicit
// anti-join JournalsWithoutCategory, never inferred.
type FullEngine struct {
	*Engine
}

// NewFullEngine creates a full query engine with no registered handlers.
func NewFullEngine(opts ...Option) *FullEngine {
	return &FullEngine{Engine: NewEngine(opts...)}
}

// requireBoth signals a configuration error unless at least one handler of
// each family is registered. Mashup queries need both sides.
func (e *FullEngine) requireBoth(operation string) error {
	if len(e.journalHandlers()) == 0 {
		return errors.NewConfigurationError("journal", operation)
	}
	if len(e.categoryHandlers()) == 0 {
		return errors.NewConfigurationError("category", operation)
	}
	return nil
}

// journalIDsForCategories unions, across all category handlers, the
// identifiers of journals assigned to the given categories and quartiles.
// Empty filter sets are wildcards.
func (e *FullEngine) journalIDsForCategories(ctx context.Context, categoryIDs, quartiles []string) (map[string]struct{}, error) {
	hs := e.categoryHandlers()
	chunks, err := queryAll(ctx, e.logger, e.timeout, "JournalIDsForCategories", hs, categoryEndpoint,
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]string, error) {
			return h.JournalIDsForCategories(ctx, categoryIDs, quartiles)
		})
	if err != nil {
		return nil, err
	}
	return idSet(chunks), nil
}

// journalIDsForAreas unions, across all category handlers, the identifiers
// of journals assigned to the given areas. An empty set is a wildcard.
func (e *FullEngine) journalIDsForAreas(ctx context.Context, areaIDs []string) (map[string]struct{}, error) {
	hs := e.categoryHandlers()
	chunks, err := queryAll(ctx, e.logger, e.timeout, "JournalIDsForAreas", hs, categoryEndpoint,
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]string, error) {
			return h.JournalIDsForAreas(ctx, areaIDs)
		})
	if err != nil {
		return nil, err
	}
	return idSet(chunks), nil
}

func idSet(chunks [][]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, ids := range chunks {
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
	}
	return set
}

// joinJournals keeps journals whose identifier set intersects ids.
func joinJournals(journals []entities.Journal, ids map[string]struct{}) []entities.Journal {
	out := make([]entities.Journal, 0, len(journals))
	for _, j := range journals {
		for _, id := range j.Identifiers {
			if _, ok := ids[id]; ok {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// antiJoinJournals keeps journals whose identifier set does not intersect ids.
func antiJoinJournals(journals []entities.Journal, ids map[string]struct{}) []entities.Journal {
	out := make([]entities.Journal, 0, len(journals))
	for _, j := range journals {
		matched := false
		for _, id := range j.Identifiers {
			if _, ok := ids[id]; ok {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, j)
		}
	}
	return out
}

// JournalsInCategoriesWithQuartile returns journals classified under any of
// the given categories with any of the given quartiles. Empty filter sets
// are wildcards, so passing no categories restricts by quartile alone.
func (e *FullEngine) JournalsInCategoriesWithQuartile(ctx context.Context, categoryIDs, quartiles []string) ([]entities.Journal, error) {
	if err := e.requireBoth("JournalsInCategoriesWithQuartile"); err != nil {
		return nil, err
	}

	ids, err := e.journalIDsForCategories(ctx, categoryIDs, quartiles)
	if err != nil {
		return nil, err
	}

	journals, err := e.AllJournals(ctx)
	if err != nil {
		return nil, err
	}
	return joinJournals(journals, ids), nil
}

// JournalsInAreasWithLicense returns journals in any of the given areas that
// carry any of the given licenses. Empty filter sets are wildcards.
func (e *FullEngine) JournalsInAreasWithLicense(ctx context.Context, areaIDs, licenses []string) ([]entities.Journal, error) {
	if err := e.requireBoth("JournalsInAreasWithLicense"); err != nil {
		return nil, err
	}

	ids, err := e.journalIDsForAreas(ctx, areaIDs)
	if err != nil {
		return nil, err
	}

	journals, err := e.JournalsWithLicense(ctx, licenses)
	if err != nil {
		return nil, err
	}
	return joinJournals(journals, ids), nil
}

// DiamondJournalsInAreasAndCategoriesWithQuartile returns diamond journals
// (no APC) that appear in any of the given areas and in any of the given
// categories with the given quartiles. Empty filter sets are wildcards.
func (e *FullEngine) DiamondJournalsInAreasAndCategoriesWithQuartile(ctx context.Context, areaIDs, categoryIDs, quartiles []string) ([]entities.Journal, error) {
	if err := e.requireBoth("DiamondJournalsInAreasAndCategoriesWithQuartile"); err != nil {
		return nil, err
	}

	areaJournalIDs, err := e.journalIDsForAreas(ctx, areaIDs)
	if err != nil {
		return nil, err
	}
	categoryJournalIDs, err := e.journalIDsForCategories(ctx, categoryIDs, quartiles)
	if err != nil {
		return nil, err
	}

	journals, err := e.AllJournals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Journal, 0, len(journals))
	for _, j := range joinJournals(joinJournals(journals, areaJournalIDs), categoryJournalIDs) {
		if !j.APC {
			out = append(out, j)
		}
	}
	return out, nil
}

// JournalsWithoutCategory is the explicit anti-join: journals with no
// category classification at all.
func (e *FullEngine) JournalsWithoutCategory(ctx context.Context) ([]entities.Journal, error) {
	if err := e.requireBoth("JournalsWithoutCategory"); err != nil {
		return nil, err
	}

	ids, err := e.journalIDsForCategories(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	journals, err := e.AllJournals(ctx)
	if err != nil {
		return nil, err
	}
	return antiJoinJournals(journals, ids), nil
}

// ClassificationsForJournal returns the merged categories and areas that
// reference any of the given journal's identifiers.
func (e *FullEngine) ClassificationsForJournal(ctx context.Context, journalID string) ([]entities.Category, []entities.Area, error) {
	hs := e.categoryHandlers()
	if len(hs) == 0 {
		return nil, nil, errors.NewConfigurationError("category", "ClassificationsForJournal")
	}

	chunks, err := queryAll(ctx, e.logger, e.timeout, "ClassificationsForJournal", hs, categoryEndpoint,
		func(ctx context.Context, h handlers.CategoryQueryHandler) ([]entities.Identified, error) {
			return h.EntitiesByJournalID(ctx, journalID)
		})
	if err != nil {
		return nil, nil, err
	}

	var rawCategories []entities.Category
	var rawAreas []entities.Area
	for _, entity := range flatten(chunks) {
		switch v := entity.(type) {
		case entities.Category:
			rawCategories = append(rawCategories, v)
		case *entities.Category:
			rawCategories = append(rawCategories, *v)
		case entities.Area:
			rawAreas = append(rawAreas, v)
		case *entities.Area:
			rawAreas = append(rawAreas, *v)
		}
	}

	return mergeCategories(e.logger, rawCategories), mergeAreas(e.logger, rawAreas), nil
}
