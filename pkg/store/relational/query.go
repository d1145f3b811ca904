package relational

import (
	"context"
	"database/sql"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/handlers"
)

// CategoryQuery is the SQLite-backed category and area query handler. All
// operations are pure reads against the configured database file.
type CategoryQuery struct {
	store
}

// NewCategoryQuery creates an unconfigured relational query handler; call
// SetDBPathOrURL with the database path before use.
func NewCategoryQuery() *CategoryQuery {
	return &CategoryQuery{}
}

var _ handlers.CategoryQueryHandler = (*CategoryQuery)(nil)

// selectCategories runs the shared category query shape with an optional
// filter clause and folds the joined rows into category records, one per
// category id with all journal back-references attached.
func (q *CategoryQuery) selectCategories(ctx context.Context, filter string, filterArgs []any) ([]entities.Category, error) {
	db, err := q.open()
	if err != nil {
		return nil, err
	}

	query := `
SELECT c.id, c.quartile, jc.issn
FROM categories c
LEFT JOIN journal_categories jc ON jc.category_id = c.id
` + filter + `
ORDER BY c.id, jc.issn`

	rows, err := db.QueryContext(ctx, query, filterArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []string
	byID := make(map[string]*entities.Category)
	for rows.Next() {
		var id string
		var quartile, issn sql.NullString
		if err := rows.Scan(&id, &quartile, &issn); err != nil {
			return nil, err
		}

		c, ok := byID[id]
		if !ok {
			c = &entities.Category{Name: id}
			if quartile.Valid {
				quartileValue := quartile.String
				c.Quartile = &quartileValue
			}
			byID[id] = c
			order = append(order, id)
		}
		if issn.Valid && issn.String != "" {
			c.JournalIDs = entities.UnionIDs(c.JournalIDs, []string{issn.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entities.Category, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// selectAreas is the area counterpart of selectCategories.
func (q *CategoryQuery) selectAreas(ctx context.Context, filter string, filterArgs []any) ([]entities.Area, error) {
	db, err := q.open()
	if err != nil {
		return nil, err
	}

	query := `
SELECT a.id, ja.issn
FROM areas a
LEFT JOIN journal_areas ja ON ja.area_id = a.id
` + filter + `
ORDER BY a.id, ja.issn`

	rows, err := db.QueryContext(ctx, query, filterArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []string
	byID := make(map[string]*entities.Area)
	for rows.Next() {
		var id string
		var issn sql.NullString
		if err := rows.Scan(&id, &issn); err != nil {
			return nil, err
		}

		a, ok := byID[id]
		if !ok {
			a = &entities.Area{Name: id}
			byID[id] = a
			order = append(order, id)
		}
		if issn.Valid && issn.String != "" {
			a.JournalIDs = entities.UnionIDs(a.JournalIDs, []string{issn.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entities.Area, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// EntityByID looks up a category or area by name, categories first. A
// missing entity returns (nil, nil).
func (q *CategoryQuery) EntityByID(ctx context.Context, id string) (entities.Identified, error) {
	categories, err := q.selectCategories(ctx, "WHERE c.id = ?", []any{id})
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return &categories[0], nil
	}

	areas, err := q.selectAreas(ctx, "WHERE a.id = ?", []any{id})
	if err != nil {
		return nil, err
	}
	if len(areas) > 0 {
		return &areas[0], nil
	}
	return nil, nil
}

// AllCategories returns every category with its journal back-references.
func (q *CategoryQuery) AllCategories(ctx context.Context) ([]entities.Category, error) {
	return q.selectCategories(ctx, "", nil)
}

// AllAreas returns every area with its journal back-references.
func (q *CategoryQuery) AllAreas(ctx context.Context) ([]entities.Area, error) {
	return q.selectAreas(ctx, "", nil)
}

// CategoriesWithQuartile returns categories in any of the given quartiles.
// An empty set matches all categories.
func (q *CategoryQuery) CategoriesWithQuartile(ctx context.Context, quartiles []string) ([]entities.Category, error) {
	if len(quartiles) == 0 {
		return q.AllCategories(ctx)
	}
	return q.selectCategories(ctx,
		"WHERE c.quartile IN ("+placeholders(len(quartiles))+")", args(quartiles))
}

// CategoriesAssignedToAreas returns categories sharing at least one journal
// with any of the given areas. An empty set matches all areas.
func (q *CategoryQuery) CategoriesAssignedToAreas(ctx context.Context, areaIDs []string) ([]entities.Category, error) {
	filter := `WHERE c.id IN (
    SELECT DISTINCT jc2.category_id
    FROM journal_categories jc2
    JOIN journal_areas ja ON ja.issn = jc2.issn`
	var filterArgs []any
	if len(areaIDs) > 0 {
		filter += `
    WHERE ja.area_id IN (` + placeholders(len(areaIDs)) + `)`
		filterArgs = args(areaIDs)
	}
	filter += `
)`
	return q.selectCategories(ctx, filter, filterArgs)
}

// AreasAssignedToCategories returns areas sharing at least one journal with
// any of the given categories. An empty set matches all categories.
func (q *CategoryQuery) AreasAssignedToCategories(ctx context.Context, categoryIDs []string) ([]entities.Area, error) {
	filter := `WHERE a.id IN (
    SELECT DISTINCT ja2.area_id
    FROM journal_areas ja2
    JOIN journal_categories jc ON jc.issn = ja2.issn`
	var filterArgs []any
	if len(categoryIDs) > 0 {
		filter += `
    WHERE jc.category_id IN (` + placeholders(len(categoryIDs)) + `)`
		filterArgs = args(categoryIDs)
	}
	filter += `
)`
	return q.selectAreas(ctx, filter, filterArgs)
}

// EntitiesByJournalID returns the categories and areas assigned to the given
// journal identifier.
func (q *CategoryQuery) EntitiesByJournalID(ctx context.Context, id string) ([]entities.Identified, error) {
	categories, err := q.selectCategories(ctx,
		"WHERE c.id IN (SELECT category_id FROM journal_categories WHERE issn = ?)", []any{id})
	if err != nil {
		return nil, err
	}
	areas, err := q.selectAreas(ctx,
		"WHERE a.id IN (SELECT area_id FROM journal_areas WHERE issn = ?)", []any{id})
	if err != nil {
		return nil, err
	}

	out := make([]entities.Identified, 0, len(categories)+len(areas))
	for i := range categories {
		out = append(out, &categories[i])
	}
	for i := range areas {
		out = append(out, &areas[i])
	}
	return out, nil
}

// JournalIDsForCategories returns identifiers of journals assigned to any of
// the given categories, optionally restricted to quartiles. Empty sets are
// wildcards.
func (q *CategoryQuery) JournalIDsForCategories(ctx context.Context, categoryIDs, quartiles []string) ([]string, error) {
	query := `SELECT DISTINCT issn FROM journal_categories`
	var queryArgs []any
	switch {
	case len(categoryIDs) > 0 && len(quartiles) > 0:
		query += ` WHERE category_id IN (` + placeholders(len(categoryIDs)) +
			`) AND quartile IN (` + placeholders(len(quartiles)) + `)`
		queryArgs = append(args(categoryIDs), args(quartiles)...)
	case len(categoryIDs) > 0:
		query += ` WHERE category_id IN (` + placeholders(len(categoryIDs)) + `)`
		queryArgs = args(categoryIDs)
	case len(quartiles) > 0:
		query += ` WHERE quartile IN (` + placeholders(len(quartiles)) + `)`
		queryArgs = args(quartiles)
	}
	return q.selectIDs(ctx, query, queryArgs)
}

// JournalIDsForAreas returns identifiers of journals assigned to any of the
// given areas. An empty set is a wildcard.
func (q *CategoryQuery) JournalIDsForAreas(ctx context.Context, areaIDs []string) ([]string, error) {
	query := `SELECT DISTINCT issn FROM journal_areas`
	var queryArgs []any
	if len(areaIDs) > 0 {
		query += ` WHERE area_id IN (` + placeholders(len(areaIDs)) + `)`
		queryArgs = args(areaIDs)
	}
	return q.selectIDs(ctx, query, queryArgs)
}

func (q *CategoryQuery) selectIDs(ctx context.Context, query string, queryArgs []any) ([]string, error) {
	db, err := q.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
