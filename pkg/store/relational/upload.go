package relational

import (
	"context"
	"encoding/json"
	"os"

	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
	"github.com/journalmap/journalmap/pkg/logging"
)

// scimagoEntry mirrors one record of the Scimago JSON export: the journal's
// identifier set plus the categories and areas it is assigned to.
type scimagoEntry struct {
	Identifiers []string `json:"identifiers"`
	Categories  []struct {
		ID       string  `json:"id"`
		Quartile *string `json:"quartile"`
	} `json:"categories"`
	Areas []string `json:"areas"`
}

// CategoryUpload loads the Scimago JSON export into a SQLite database:
// categories and areas as rows, journal assignments as join-table rows
// keyed on ISSN.
type CategoryUpload struct {
	store
}

// NewCategoryUpload creates an unconfigured relational upload handler; call
// SetDBPathOrURL with the database path before use.
func NewCategoryUpload() *CategoryUpload {
	return &CategoryUpload{}
}

var _ handlers.UploadHandler = (*CategoryUpload)(nil)

// PushDataToDB reads the JSON export at sourceFile and loads it in a single
// transaction. The schema is created if missing; re-uploading the same file
// is idempotent since every insert ignores existing rows.
func (u *CategoryUpload) PushDataToDB(ctx context.Context, sourceFile string) error {
	raw, err := os.ReadFile(sourceFile)
	if err != nil {
		return errors.WrapIO("read", sourceFile, err)
	}

	var entries []scimagoEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return errors.WrapParse("json", sourceFile, err)
	}

	db, err := u.open()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.NewUploadError(u.DBPathOrURL(), 0, len(entries), err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewUploadError(u.DBPathOrURL(), 0, len(entries), err)
	}
	defer tx.Rollback()

	categories := 0
	areas := 0
	for i, entry := range entries {
		for _, cat := range entry.Categories {
			if cat.ID == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO categories (id, quartile) VALUES (?, ?)`,
				cat.ID, cat.Quartile); err != nil {
				return errors.NewUploadError(u.DBPathOrURL(), i, len(entries), err)
			}
			categories++
			for _, issn := range entry.Identifiers {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO journal_categories (issn, category_id, quartile) VALUES (?, ?, ?)`,
					issn, cat.ID, cat.Quartile); err != nil {
					return errors.NewUploadError(u.DBPathOrURL(), i, len(entries), err)
				}
			}
		}
		for _, area := range entry.Areas {
			if area == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO areas (id) VALUES (?)`, area); err != nil {
				return errors.NewUploadError(u.DBPathOrURL(), i, len(entries), err)
			}
			areas++
			for _, issn := range entry.Identifiers {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO journal_areas (issn, area_id) VALUES (?, ?)`,
					issn, area); err != nil {
					return errors.NewUploadError(u.DBPathOrURL(), i, len(entries), err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewUploadError(u.DBPathOrURL(), 0, len(entries), err)
	}

	logging.FromContext(ctx).Info().
		Int("entries", len(entries)).
		Int("category_assignments", categories).
		Int("area_assignments", areas).
		Str("database", u.DBPathOrURL()).
		Msg("uploaded classifications to relational store")
	return nil
}
