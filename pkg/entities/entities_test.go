package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalValidate(t *testing.T) {
	assert.Error(t, Journal{Title: "No IDs"}.Validate())
	assert.NoError(t, Journal{Identifiers: []string{"1111-1111"}}.Validate())
}

func TestCategoryIdentity(t *testing.T) {
	c := Category{Name: "Oncology", JournalIDs: []string{"1111-1111"}}
	// A category is identified by name; journal back-references are not
	// identifiers and must not drive same-type merging.
	assert.Equal(t, []string{"Oncology"}, c.IDs())
	assert.Empty(t, Category{}.IDs())
	assert.Error(t, Category{}.Validate())
}

func TestAreaIdentity(t *testing.T) {
	assert.Equal(t, []string{"Medicine"}, Area{Name: "Medicine"}.IDs())
	assert.Error(t, Area{}.Validate())
}

func TestHasLicense(t *testing.T) {
	j := Journal{Licenses: []string{"CC BY", "CC0"}}
	assert.True(t, j.HasLicense(nil))
	assert.True(t, j.HasLicense([]string{"CC0", "CC BY-NC"}))
	assert.False(t, j.HasLicense([]string{"CC BY-NC"}))
}

func TestIntersects(t *testing.T) {
	assert.True(t, Intersects([]string{"a", "b"}, []string{"b", "c"}))
	assert.False(t, Intersects([]string{"a"}, []string{"b"}))
	assert.False(t, Intersects(nil, []string{"a"}))
}

func TestUnionIDs(t *testing.T) {
	got := UnionIDs(
		[]string{"1111-1111", ""},
		[]string{"2222-2222", "1111-1111"},
		nil,
		[]string{"3333-3333"},
	)
	assert.Equal(t, []string{"1111-1111", "2222-2222", "3333-3333"}, got)
	assert.Nil(t, UnionIDs(nil, []string{""}))
}

func TestParseLanguagesRoundTrip(t *testing.T) {
	langs := ParseLanguages("eng, fre, spa")
	require.Equal(t, []string{"eng", "fre", "spa"}, langs)
	assert.Equal(t, "eng, fre, spa", JoinLanguages(langs))
}

func TestParseLanguages(t *testing.T) {
	assert.Nil(t, ParseLanguages(""))
	assert.Nil(t, ParseLanguages("   "))
	assert.Equal(t, []string{"eng"}, ParseLanguages(" eng "))
	// Duplicates collapse, order preserved.
	assert.Equal(t, []string{"eng", "fre"}, ParseLanguages("eng, fre, eng"))
}
