// Package entities defines the bibliographic data model shared by every
// store and by the reconciliation engine: journals from the graph-oriented
// source, categories and areas from the relational-oriented source.
//
// Entities are plain immutable value records. They are constructed
// transiently from handler output; a merge always produces a new value and
// never mutates its inputs.
package entities

import (
	"slices"

	"github.com/journalmap/journalmap/pkg/errors"
)

// Identified is the identity contract every entity participating in
// reconciliation must satisfy. Two entities describe the same real-world
// object iff their identifier sets intersect, not only if they are equal;
// sources expose ISSN vs EISSN inconsistently and either suffices.
type Identified interface {
	// IDs returns the entity's identifiers. Never empty for a valid entity.
	IDs() []string
}

// Journal is a journal record sourced from the graph-oriented store.
type Journal struct {
	// Identifiers holds the ISSN and/or EISSN naming this journal.
	Identifiers []string `json:"identifiers" yaml:"identifiers"`
	Title       string   `json:"title" yaml:"title"`
	Languages   []string `json:"languages" yaml:"languages"`
	Publisher   *string  `json:"publisher" yaml:"publisher"`
	Seal        bool     `json:"seal" yaml:"seal"`
	Licenses    []string `json:"licenses" yaml:"licenses"`
	APC         bool     `json:"apc" yaml:"apc"`
}

// IDs implements the Identified contract.
func (j Journal) IDs() []string { return j.Identifiers }

// Validate rejects journals that cannot participate in reconciliation.
func (j Journal) Validate() error {
	if len(j.Identifiers) == 0 {
		return errors.NewInvalidEntityError("journal", "")
	}
	return nil
}

// HasLicense reports whether the journal carries any of the given licenses.
// An empty filter set matches every journal.
func (j Journal) HasLicense(licenses []string) bool {
	if len(licenses) == 0 {
		return true
	}
	for _, want := range licenses {
		if slices.Contains(j.Licenses, want) {
			return true
		}
	}
	return false
}

// Category is a subject category sourced from the relational store.
// Its own identifier is the category name; JournalIDs are back-references
// to the journals classified under it, never owned journals.
type Category struct {
	Name       string   `json:"name" yaml:"name"`
	Quartile   *string  `json:"quartile" yaml:"quartile"`
	JournalIDs []string `json:"journal_ids" yaml:"journal_ids"`
}

// IDs implements the Identified contract. A category is identified by name.
func (c Category) IDs() []string {
	if c.Name == "" {
		return nil
	}
	return []string{c.Name}
}

// Validate rejects categories that cannot participate in reconciliation.
func (c Category) Validate() error {
	if c.Name == "" {
		return errors.NewInvalidEntityError("category", "")
	}
	return nil
}

// References reports whether the category back-references any of the given
// journal identifiers.
func (c Category) References(journalIDs []string) bool {
	for _, id := range journalIDs {
		if slices.Contains(c.JournalIDs, id) {
			return true
		}
	}
	return false
}

// Area is a subject area sourced from the relational store.
type Area struct {
	Name       string   `json:"name" yaml:"name"`
	JournalIDs []string `json:"journal_ids" yaml:"journal_ids"`
}

// IDs implements the Identified contract. An area is identified by name.
func (a Area) IDs() []string {
	if a.Name == "" {
		return nil
	}
	return []string{a.Name}
}

// Validate rejects areas that cannot participate in reconciliation.
func (a Area) Validate() error {
	if a.Name == "" {
		return errors.NewInvalidEntityError("area", "")
	}
	return nil
}

// References reports whether the area back-references any of the given
// journal identifiers.
func (a Area) References(journalIDs []string) bool {
	for _, id := range journalIDs {
		if slices.Contains(a.JournalIDs, id) {
			return true
		}
	}
	return false
}

// Intersects reports whether two identifier sets share at least one member.
func Intersects(a, b []string) bool {
	for _, id := range a {
		if slices.Contains(b, id) {
			return true
		}
	}
	return false
}

// UnionIDs merges identifier slices preserving first-seen order and
// dropping duplicates and empty strings.
func UnionIDs(sets ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, id := range set {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
