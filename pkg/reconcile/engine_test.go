package reconcile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
	"github.com/journalmap/journalmap/pkg/logging"
)

// Test helper functions

func strptr(s string) *string { return &s }

func journal(title string, ids ...string) entities.Journal {
	return entities.Journal{Identifiers: ids, Title: title}
}

// fakeJournalHandler serves a fixed journal set, optionally failing or
// stalling to exercise fault absorption and cancellation.
type fakeJournalHandler struct {
	handlers.Handler
	journals []entities.Journal
	err      error
	delay    time.Duration
}

func newFakeJournalHandler(endpoint string, journals ...entities.Journal) *fakeJournalHandler {
	h := &fakeJournalHandler{journals: journals}
	h.SetDBPathOrURL(endpoint)
	return h
}

func (h *fakeJournalHandler) respond(ctx context.Context) ([]entities.Journal, error) {
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if h.err != nil {
		return nil, h.err
	}
	out := make([]entities.Journal, len(h.journals))
	copy(out, h.journals)
	return out, nil
}

func (h *fakeJournalHandler) JournalByID(ctx context.Context, id string) (*entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	for _, j := range all {
		if entities.Intersects(j.Identifiers, []string{id}) {
			return &j, nil
		}
	}
	return nil, nil
}

func (h *fakeJournalHandler) AllJournals(ctx context.Context) ([]entities.Journal, error) {
	return h.respond(ctx)
}

func (h *fakeJournalHandler) JournalsWithTitle(ctx context.Context, partialTitle string) ([]entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Journal
	for _, j := range all {
		if strings.Contains(strings.ToLower(j.Title), strings.ToLower(partialTitle)) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (h *fakeJournalHandler) JournalsPublishedBy(ctx context.Context, partialName string) ([]entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Journal
	for _, j := range all {
		if j.Publisher != nil && strings.Contains(strings.ToLower(*j.Publisher), strings.ToLower(partialName)) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (h *fakeJournalHandler) JournalsWithLicense(ctx context.Context, licenses []string) ([]entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Journal
	for _, j := range all {
		if j.HasLicense(licenses) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (h *fakeJournalHandler) JournalsWithAPC(ctx context.Context) ([]entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Journal
	for _, j := range all {
		if j.APC {
			out = append(out, j)
		}
	}
	return out, nil
}

func (h *fakeJournalHandler) JournalsWithDOAJSeal(ctx context.Context) ([]entities.Journal, error) {
	all, err := h.respond(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Journal
	for _, j := range all {
		if j.Seal {
			out = append(out, j)
		}
	}
	return out, nil
}

// fakeCategoryHandler serves fixed category and area sets.
type fakeCategoryHandler struct {
	handlers.Handler
	categories []entities.Category
	areas      []entities.Area
	err        error
}

func newFakeCategoryHandler(endpoint string) *fakeCategoryHandler {
	h := &fakeCategoryHandler{}
	h.SetDBPathOrURL(endpoint)
	return h
}

func (h *fakeCategoryHandler) EntityByID(ctx context.Context, id string) (entities.Identified, error) {
	if h.err != nil {
		return nil, h.err
	}
	for _, c := range h.categories {
		if c.Name == id {
			return c, nil
		}
	}
	for _, a := range h.areas {
		if a.Name == id {
			return a, nil
		}
	}
	return nil, nil
}

func (h *fakeCategoryHandler) AllCategories(ctx context.Context) ([]entities.Category, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.categories, nil
}

func (h *fakeCategoryHandler) AllAreas(ctx context.Context) ([]entities.Area, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.areas, nil
}

func (h *fakeCategoryHandler) CategoriesWithQuartile(ctx context.Context, quartiles []string) ([]entities.Category, error) {
	if h.err != nil {
		return nil, h.err
	}
	if len(quartiles) == 0 {
		return h.categories, nil
	}
	var out []entities.Category
	for _, c := range h.categories {
		for _, q := range quartiles {
			if c.Quartile != nil && *c.Quartile == q {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (h *fakeCategoryHandler) CategoriesAssignedToAreas(ctx context.Context, areaIDs []string) ([]entities.Category, error) {
	if h.err != nil {
		return nil, h.err
	}
	var journalIDs []string
	for _, a := range h.areas {
		if len(areaIDs) == 0 || entities.Intersects([]string{a.Name}, areaIDs) {
			journalIDs = append(journalIDs, a.JournalIDs...)
		}
	}
	var out []entities.Category
	for _, c := range h.categories {
		if c.References(journalIDs) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (h *fakeCategoryHandler) AreasAssignedToCategories(ctx context.Context, categoryIDs []string) ([]entities.Area, error) {
	if h.err != nil {
		return nil, h.err
	}
	var journalIDs []string
	for _, c := range h.categories {
		if len(categoryIDs) == 0 || entities.Intersects([]string{c.Name}, categoryIDs) {
			journalIDs = append(journalIDs, c.JournalIDs...)
		}
	}
	var out []entities.Area
	for _, a := range h.areas {
		if a.References(journalIDs) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (h *fakeCategoryHandler) EntitiesByJournalID(ctx context.Context, id string) ([]entities.Identified, error) {
	if h.err != nil {
		return nil, h.err
	}
	var out []entities.Identified
	for _, c := range h.categories {
		if c.References([]string{id}) {
			out = append(out, c)
		}
	}
	for _, a := range h.areas {
		if a.References([]string{id}) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (h *fakeCategoryHandler) JournalIDsForCategories(ctx context.Context, categoryIDs, quartiles []string) ([]string, error) {
	if h.err != nil {
		return nil, h.err
	}
	var sets [][]string
	for _, c := range h.categories {
		if len(categoryIDs) > 0 && !entities.Intersects([]string{c.Name}, categoryIDs) {
			continue
		}
		if len(quartiles) > 0 {
			if c.Quartile == nil || !entities.Intersects([]string{*c.Quartile}, quartiles) {
				continue
			}
		}
		sets = append(sets, c.JournalIDs)
	}
	return entities.UnionIDs(sets...), nil
}

func (h *fakeCategoryHandler) JournalIDsForAreas(ctx context.Context, areaIDs []string) ([]string, error) {
	if h.err != nil {
		return nil, h.err
	}
	var sets [][]string
	for _, a := range h.areas {
		if len(areaIDs) > 0 && !entities.Intersects([]string{a.Name}, areaIDs) {
			continue
		}
		sets = append(sets, a.JournalIDs)
	}
	return entities.UnionIDs(sets...), nil
}

func TestEngineNoHandlers(t *testing.T) {
	e := NewEngine(WithLogger(logging.NewNopLogger()))
	ctx := context.Background()

	_, err := e.AllJournals(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsNoHandlers(err))

	_, err = e.AllCategories(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsNoHandlers(err))

	_, err = e.EntityByID(ctx, "1234-5678")
	require.Error(t, err)
	assert.True(t, errors.IsNoHandlers(err))
}

func TestEngineNoHandlersDistinctFromEmpty(t *testing.T) {
	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(newFakeJournalHandler("empty"))

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, journals)
}

func TestEngineMergesTransitiveIdentifierChain(t *testing.T) {
	// Three records chained through shared identifiers must collapse to one.
	h := newFakeJournalHandler("graph",
		journal("Chained", "1111-1111"),
		journal("Chained", "1111-1111", "2222-2222"),
		journal("Chained", "2222-2222"),
	)
	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(h)

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, []string{"1111-1111", "2222-2222"}, journals[0].Identifiers)
}

func TestEngineRegistrationOrderPrecedence(t *testing.T) {
	first := entities.Journal{
		Identifiers: []string{"1111-1111"},
		Title:       "Alpha",
	}
	second := entities.Journal{
		Identifiers: []string{"1111-1111", "2222-2222"},
		Title:       "Beta",
		Publisher:   strptr("Beta Press"),
	}

	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(newFakeJournalHandler("one", first))
	e.AddJournalHandler(newFakeJournalHandler("two", second))

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 1)
	// Earlier handler wins the conflicting title; its null publisher is
	// filled from the later handler.
	assert.Equal(t, "Alpha", journals[0].Title)
	require.NotNil(t, journals[0].Publisher)
	assert.Equal(t, "Beta Press", *journals[0].Publisher)
	assert.Equal(t, []string{"1111-1111", "2222-2222"}, journals[0].Identifiers)

	// Reversing registration reverses the winner.
	e2 := NewEngine(WithLogger(logging.NewNopLogger()))
	e2.AddJournalHandler(newFakeJournalHandler("two", second))
	e2.AddJournalHandler(newFakeJournalHandler("one", first))

	journals, err = e2.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, "Beta", journals[0].Title)
}

func TestEngineAbsorbsHandlerFault(t *testing.T) {
	faulty := newFakeJournalHandler("faulty")
	faulty.err = errors.New("store unreachable")

	healthy := newFakeJournalHandler("healthy",
		journal("A", "1111-1111"),
		journal("B", "2222-2222"),
		journal("C", "3333-3333"),
		journal("D", "4444-4444"),
		journal("E", "5555-5555"),
	)

	tl := logging.NewTestLogger(t)
	e := NewEngine(WithLogger(tl.Logger))
	e.AddJournalHandler(faulty)
	e.AddJournalHandler(healthy)

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	assert.Len(t, journals, 5)
	assert.True(t, tl.Contains("handler fault"))
	assert.True(t, tl.Contains("faulty"))
}

func TestEngineRejectsRecordsWithoutIdentifiers(t *testing.T) {
	h := newFakeJournalHandler("graph",
		journal("Valid", "1111-1111"),
		journal("No IDs"),
	)

	tl := logging.NewTestLogger(t)
	e := NewEngine(WithLogger(tl.Logger))
	e.AddJournalHandler(h)

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, "Valid", journals[0].Title)
	assert.True(t, tl.Contains("empty identifier set"))
}

func TestEngineCancellation(t *testing.T) {
	slow := newFakeJournalHandler("slow", journal("Slow", "1111-1111"))
	slow.delay = 5 * time.Second

	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(slow)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := e.AllJournals(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestEnginePerHandlerTimeout(t *testing.T) {
	slow := newFakeJournalHandler("slow", journal("Slow", "1111-1111"))
	slow.delay = time.Second

	fast := newFakeJournalHandler("fast", journal("Fast", "2222-2222"))

	tl := logging.NewTestLogger(t)
	e := NewEngine(WithLogger(tl.Logger), WithHandlerTimeout(50*time.Millisecond))
	e.AddJournalHandler(slow)
	e.AddJournalHandler(fast)

	journals, err := e.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, "Fast", journals[0].Title)
	assert.True(t, tl.Contains("handler fault"))
}

func TestEngineMergesCategoriesByName(t *testing.T) {
	h1 := newFakeCategoryHandler("db1")
	h1.categories = []entities.Category{
		{Name: "Oncology", JournalIDs: []string{"1111-1111"}},
	}
	h2 := newFakeCategoryHandler("db2")
	h2.categories = []entities.Category{
		{Name: "Oncology", Quartile: strptr("Q1"), JournalIDs: []string{"2222-2222"}},
	}

	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddCategoryHandler(h1)
	e.AddCategoryHandler(h2)

	categories, err := e.AllCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Oncology", categories[0].Name)
	require.NotNil(t, categories[0].Quartile)
	assert.Equal(t, "Q1", *categories[0].Quartile)
	assert.Equal(t, []string{"1111-1111", "2222-2222"}, categories[0].JournalIDs)
}

func TestEngineEntityByID(t *testing.T) {
	jh := newFakeJournalHandler("graph", journal("Found Journal", "1111-1111", "1111-2222"))
	ch := newFakeCategoryHandler("db")
	ch.categories = []entities.Category{{Name: "Oncology", Quartile: strptr("Q1")}}
	ch.areas = []entities.Area{{Name: "Medicine"}}

	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(jh)
	e.AddCategoryHandler(ch)

	ctx := context.Background()

	entity, err := e.EntityByID(ctx, "1111-2222")
	require.NoError(t, err)
	j, ok := entity.(entities.Journal)
	require.True(t, ok)
	assert.Equal(t, "Found Journal", j.Title)

	entity, err = e.EntityByID(ctx, "Oncology")
	require.NoError(t, err)
	c, ok := entity.(entities.Category)
	require.True(t, ok)
	assert.Equal(t, "Oncology", c.Name)

	entity, err = e.EntityByID(ctx, "Medicine")
	require.NoError(t, err)
	a, ok := entity.(entities.Area)
	require.True(t, ok)
	assert.Equal(t, "Medicine", a.Name)

	_, err = e.EntityByID(ctx, "absent")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEngineEntityByIDSkipsFaultyHandler(t *testing.T) {
	faulty := newFakeJournalHandler("faulty")
	faulty.err = errors.New("store unreachable")
	healthy := newFakeJournalHandler("healthy", journal("Found", "1111-1111"))

	tl := logging.NewTestLogger(t)
	e := NewEngine(WithLogger(tl.Logger))
	e.AddJournalHandler(faulty)
	e.AddJournalHandler(healthy)

	entity, err := e.EntityByID(context.Background(), "1111-1111")
	require.NoError(t, err)
	j, ok := entity.(entities.Journal)
	require.True(t, ok)
	assert.Equal(t, "Found", j.Title)
	assert.True(t, tl.Contains("handler fault"))
}

func TestEngineCleanHandlers(t *testing.T) {
	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(newFakeJournalHandler("graph", journal("A", "1111-1111")))

	_, err := e.AllJournals(context.Background())
	require.NoError(t, err)

	e.CleanJournalHandlers()
	_, err = e.AllJournals(context.Background())
	assert.True(t, errors.IsNoHandlers(err))
}

func TestEngineMergeDeterministic(t *testing.T) {
	h1 := newFakeJournalHandler("one",
		journal("A", "1111-1111"),
		journal("B", "2222-2222"),
	)
	h2 := newFakeJournalHandler("two",
		journal("B2", "2222-2222", "2222-3333"),
		journal("C", "4444-4444"),
	)

	e := NewEngine(WithLogger(logging.NewNopLogger()))
	e.AddJournalHandler(h1)
	e.AddJournalHandler(h2)

	first, err := e.AllJournals(context.Background())
	require.NoError(t, err)

	// Concurrency must not leak into output order or content.
	for i := 0; i < 10; i++ {
		again, err := e.AllJournals(context.Background())
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("merged output changed between identical queries (-first +again):\n%s", diff)
		}
	}
}
