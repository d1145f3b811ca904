package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/errors"
)

// groupByIDs partitions records into merge groups: records whose identifier
// sets intersect, transitively, belong to the same group. Input order is
// preserved twice over, so output is deterministic for identical inputs:
// groups appear in order of their first member, and members keep their
// input order within a group. Records with an empty identifier set cannot
// participate and are returned separately for the caller to report.
func groupByIDs[T entities.Identified](records []T) (groups [][]T, invalid []T) {
	uf := newUnionFind()

	for _, rec := range records {
		ids := rec.IDs()
		if len(ids) == 0 {
			continue
		}
		anchor := ids[0]
		for _, id := range ids[1:] {
			uf.union(anchor, id)
		}
	}

	groupIndex := make(map[string]int)
	for _, rec := range records {
		ids := rec.IDs()
		if len(ids) == 0 {
			invalid = append(invalid, rec)
			continue
		}
		root := uf.find(ids[0])
		i, ok := groupIndex[root]
		if !ok {
			i = len(groups)
			groupIndex[root] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}

	return groups, invalid
}

// reportInvalid records rejected entities; they are excluded from output but
// never silently dropped.
func reportInvalid[T entities.Identified](logger *zerolog.Logger, kind string, invalid []T) {
	for range invalid {
		err := errors.NewInvalidEntityError(kind, "")
		logger.Warn().Err(err).Str("entity", kind).Msg("rejected entity with empty identifier set")
	}
}

// mergeJournals collapses raw journal records into one record per merge
// group. Records must already be ordered by handler registration: within a
// group the first non-null value of each field wins, so earlier-registered
// handlers take precedence on conflicts. Identifier sets are unioned.
func mergeJournals(logger *zerolog.Logger, records []entities.Journal) []entities.Journal {
	groups, invalid := groupByIDs(records)
	reportInvalid(logger, "journal", invalid)

	merged := make([]entities.Journal, 0, len(groups))
	for _, group := range groups {
		merged = append(merged, mergeJournalGroup(group))
	}
	return merged
}

func mergeJournalGroup(group []entities.Journal) entities.Journal {
	idSets := make([][]string, len(group))
	for i, j := range group {
		idSets[i] = j.Identifiers
	}

	// Booleans are never null; the earliest-registered record decides them.
	out := entities.Journal{
		Identifiers: entities.UnionIDs(idSets...),
		Seal:        group[0].Seal,
		APC:         group[0].APC,
	}

	for _, j := range group {
		if out.Title == "" {
			out.Title = j.Title
		}
		if len(out.Languages) == 0 {
			out.Languages = j.Languages
		}
		if out.Publisher == nil {
			out.Publisher = j.Publisher
		}
		if len(out.Licenses) == 0 {
			out.Licenses = j.Licenses
		}
	}
	return out
}

// mergeCategories collapses raw category records, one per merge group.
// Categories are identified by name, so a group is all records for one
// category name; journal back-references are unioned.
func mergeCategories(logger *zerolog.Logger, records []entities.Category) []entities.Category {
	groups, invalid := groupByIDs(records)
	reportInvalid(logger, "category", invalid)

	merged := make([]entities.Category, 0, len(groups))
	for _, group := range groups {
		refSets := make([][]string, len(group))
		for i, c := range group {
			refSets[i] = c.JournalIDs
		}
		out := entities.Category{
			Name:       group[0].Name,
			JournalIDs: entities.UnionIDs(refSets...),
		}
		for _, c := range group {
			if out.Quartile == nil {
				out.Quartile = c.Quartile
			}
		}
		merged = append(merged, out)
	}
	return merged
}

// mergeAreas collapses raw area records, one per merge group.
func mergeAreas(logger *zerolog.Logger, records []entities.Area) []entities.Area {
	groups, invalid := groupByIDs(records)
	reportInvalid(logger, "area", invalid)

	merged := make([]entities.Area, 0, len(groups))
	for _, group := range groups {
		refSets := make([][]string, len(group))
		for i, a := range group {
			refSets[i] = a.JournalIDs
		}
		merged = append(merged, entities.Area{
			Name:       group[0].Name,
			JournalIDs: entities.UnionIDs(refSets...),
		})
	}
	return merged
}
