// Package results defines the tabular structure query operations return to
// callers: an ordered list of named columns with one row per merged entity.
// Absent values are explicit nulls, never omitted columns; set-valued
// fields are flattened to delimited strings.
package results

import (
	"strconv"
	"strings"

	"github.com/journalmap/journalmap/pkg/entities"
)

// IDDelimiter flattens identifier sets into a single list column.
const IDDelimiter = ", "

// Value is one cell. Valid is false for an explicit null.
type Value struct {
	String string
	Valid  bool
}

// String creates a non-null cell. An empty string is still a value;
// null means the source never provided the field.
func String(s string) Value {
	return Value{String: s, Valid: true}
}

// Bool creates a non-null boolean cell.
func Bool(b bool) Value {
	return Value{String: strconv.FormatBool(b), Valid: true}
}

// Null creates an explicit null cell.
func Null() Value {
	return Value{}
}

// Table is an ordered tabular result set.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// New creates an empty table with the given column set.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row. Short rows are padded with explicit nulls so a row
// always matches the column set.
func (t *Table) Append(row ...Value) {
	for len(row) < len(t.Columns) {
		row = append(row, Null())
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Strings renders all rows, substituting nullDisplay for explicit nulls.
func (t *Table) Strings(nullDisplay string) [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if v.Valid {
				cells[j] = v.String
			} else {
				cells[j] = nullDisplay
			}
		}
		out[i] = cells
	}
	return out
}

// Records converts rows to column-keyed maps with nil for explicit nulls,
// the shape JSON and YAML encoders expect.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) && row[j].Valid {
				rec[col] = row[j].String
			} else {
				rec[col] = nil
			}
		}
		out[i] = rec
	}
	return out
}

// Journals tabulates merged journal records.
func Journals(journals []entities.Journal) *Table {
	t := New("identifiers", "title", "languages", "publisher", "seal", "licenses", "apc")
	for _, j := range journals {
		publisher := Null()
		if j.Publisher != nil {
			publisher = String(*j.Publisher)
		}
		languages := Null()
		if len(j.Languages) > 0 {
			languages = String(entities.JoinLanguages(j.Languages))
		}
		licenses := Null()
		if len(j.Licenses) > 0 {
			licenses = String(strings.Join(j.Licenses, IDDelimiter))
		}
		t.Append(
			String(strings.Join(j.Identifiers, IDDelimiter)),
			String(j.Title),
			languages,
			publisher,
			Bool(j.Seal),
			licenses,
			Bool(j.APC),
		)
	}
	return t
}

// Categories tabulates merged category records.
func Categories(categories []entities.Category) *Table {
	t := New("name", "quartile", "journal_ids")
	for _, c := range categories {
		quartile := Null()
		if c.Quartile != nil {
			quartile = String(*c.Quartile)
		}
		journalIDs := Null()
		if len(c.JournalIDs) > 0 {
			journalIDs = String(strings.Join(c.JournalIDs, IDDelimiter))
		}
		t.Append(String(c.Name), quartile, journalIDs)
	}
	return t
}

// Areas tabulates merged area records.
func Areas(areas []entities.Area) *Table {
	t := New("name", "journal_ids")
	for _, a := range areas {
		journalIDs := Null()
		if len(a.JournalIDs) > 0 {
			journalIDs = String(strings.Join(a.JournalIDs, IDDelimiter))
		}
		t.Append(String(a.Name), journalIDs)
	}
	return t
}
