// Package relational adapts a SQLite database to the category/area handler
// contracts. Categories and areas from the Scimago JSON export live in a
// small relational schema with join tables back-referencing journal ISSNs.
package relational

import (
	"database/sql"
	"strings"
	"sync"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"

	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
)

const schema = `
CREATE TABLE IF NOT EXISTS areas (
    id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    quartile TEXT
);
CREATE TABLE IF NOT EXISTS journal_categories (
    issn TEXT,
    category_id TEXT,
    quartile TEXT,
    PRIMARY KEY (issn, category_id),
    FOREIGN KEY (category_id) REFERENCES categories(id)
);
CREATE TABLE IF NOT EXISTS journal_areas (
    issn TEXT,
    area_id TEXT,
    PRIMARY KEY (issn, area_id),
    FOREIGN KEY (area_id) REFERENCES areas(id)
);
`

// store owns one SQLite connection pool per configured path. Handlers are
// read-only or write-only; all locking beyond this lazy open is the
// driver's concern.
type store struct {
	handlers.Handler

	mu sync.Mutex
	db *sql.DB
}

// open returns the connection pool, opening it on first use.
func (s *store) open() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.DBPathOrURL() == "" {
		return nil, errors.New("relational handler has no configured database path")
	}

	db, err := sql.Open("sqlite3", s.DBPathOrURL())
	if err != nil {
		return nil, errors.WrapIO("open", s.DBPathOrURL(), err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", s.DBPathOrURL(), err)
	}
	s.db = db
	return db, nil
}

// Close releases the connection pool.
func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// placeholders renders n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// args converts a string slice to driver arguments.
func args(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
