package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sparqlServer fakes a SPARQL endpoint: SELECT queries get the canned
// bindings, updates are captured for inspection.
type sparqlServer struct {
	*httptest.Server
	queries  []string
	updates  []string
	bindings []map[string]string
}

func newSparqlServer(t *testing.T) *sparqlServer {
	t.Helper()
	s := &sparqlServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.queries = append(s.queries, r.URL.Query().Get("query"))
			w.Header().Set("Content-Type", "application/sparql-results+json")
			bindings := make([]map[string]map[string]string, 0, len(s.bindings))
			for _, row := range s.bindings {
				binding := make(map[string]map[string]string, len(row))
				for name, value := range row {
					binding[name] = map[string]string{"type": "literal", "value": value}
				}
				bindings = append(bindings, binding)
			}
			resp := map[string]any{"results": map[string]any{"bindings": bindings}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		case http.MethodPost:
			require.NoError(t, r.ParseForm())
			s.updates = append(s.updates, r.PostForm.Get("update"))
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func TestClientSelect(t *testing.T) {
	srv := newSparqlServer(t)
	srv.bindings = []map[string]string{
		{"journal": "http://doaj.org/journal/1", "title": "Alpha"},
	}

	rows, err := NewClient(srv.URL).Select(context.Background(), "SELECT ...")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha", rows[0]["title"])
	require.Len(t, srv.queries, 1)
	assert.Equal(t, "SELECT ...", srv.queries[0])
}

func TestClientSelectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed query", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Select(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestJournalQueryAllJournals(t *testing.T) {
	srv := newSparqlServer(t)
	srv.bindings = []map[string]string{
		{"journal": "j1", "title": "Alpha", "issn": "1111-1111", "language": "eng", "licence": "CC BY", "seal": "true", "apc": "false"},
		{"journal": "j1", "title": "Alpha", "issn": "1111-1111", "language": "fre", "licence": "CC BY", "seal": "true", "apc": "false"},
		{"journal": "j2", "title": "Beta", "eissn": "2222-2222", "publisher": "Springer", "apc": "true"},
	}

	q := NewJournalQuery()
	q.SetDBPathOrURL(srv.URL)

	journals, err := q.AllJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, journals, 2)

	// Multi-valued fields fold across binding rows of the same node.
	assert.Equal(t, []string{"1111-1111"}, journals[0].Identifiers)
	assert.Equal(t, []string{"eng", "fre"}, journals[0].Languages)
	assert.Equal(t, []string{"CC BY"}, journals[0].Licenses)
	assert.True(t, journals[0].Seal)

	assert.Equal(t, []string{"2222-2222"}, journals[1].Identifiers)
	require.NotNil(t, journals[1].Publisher)
	assert.Equal(t, "Springer", *journals[1].Publisher)
	assert.True(t, journals[1].APC)
}

func TestJournalByIDMissing(t *testing.T) {
	srv := newSparqlServer(t)

	q := NewJournalQuery()
	q.SetDBPathOrURL(srv.URL)

	j, err := q.JournalByID(context.Background(), "0000-0000")
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestJournalsWithLicenseQueryShape(t *testing.T) {
	srv := newSparqlServer(t)

	q := NewJournalQuery()
	q.SetDBPathOrURL(srv.URL)

	_, err := q.JournalsWithLicense(context.Background(), []string{"CC BY", "CC0"})
	require.NoError(t, err)
	require.Len(t, srv.queries, 1)
	assert.Contains(t, srv.queries[0], `?lic = "CC BY" || ?lic = "CC0"`)
}

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, `say \"hi\"`, escapeLiteral(`say "hi"`))
	assert.Equal(t, `back\\slash`, escapeLiteral(`back\slash`))
	assert.Equal(t, `line\nbreak`, escapeLiteral("line\nbreak"))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journals.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const csvHeader = `Journal title,Journal ISSN (print version),Journal EISSN (online version),Languages in which the journal accepts manuscripts,Publisher,DOAJ Seal,Journal license,APC
`

func TestReadJournalCSV(t *testing.T) {
	path := writeCSV(t, csvHeader+
		`Oncology Letters,1111-1111,2222-2222,"eng, fre",Springer,Yes,CC BY,No
No Identifiers,,,eng,,No,,No
EISSN Only,,3333-3333,spa,,No,CC0,Yes
`)

	journals, err := readJournalCSV(context.Background(), path)
	require.NoError(t, err)
	// The identifier-less row is rejected.
	require.Len(t, journals, 2)

	first := journals[0]
	assert.Equal(t, []string{"1111-1111", "2222-2222"}, first.Identifiers)
	assert.Equal(t, "Oncology Letters", first.Title)
	assert.Equal(t, []string{"eng", "fre"}, first.Languages)
	require.NotNil(t, first.Publisher)
	assert.Equal(t, "Springer", *first.Publisher)
	assert.True(t, first.Seal)
	assert.False(t, first.APC)

	second := journals[1]
	assert.Equal(t, "", second.issn)
	assert.Equal(t, "3333-3333", second.eissn)
	assert.True(t, second.APC)
}

func TestReadJournalCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, "Journal title,Publisher\nAlpha,Springer\n")

	_, err := readJournalCSV(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestUploadPushesInsertData(t *testing.T) {
	srv := newSparqlServer(t)
	path := writeCSV(t, csvHeader+
		`Oncology Letters,1111-1111,2222-2222,"eng, fre",Springer,Yes,CC BY,No
`)

	u := NewJournalUpload()
	u.SetDBPathOrURL(srv.URL)

	require.NoError(t, u.PushDataToDB(context.Background(), path))
	require.Len(t, srv.updates, 1)

	update := srv.updates[0]
	assert.Contains(t, update, "INSERT DATA {")
	assert.Contains(t, update, `doaj:issn "1111-1111"`)
	assert.Contains(t, update, `doaj:eissn "2222-2222"`)
	assert.Contains(t, update, `doaj:language "eng"`)
	assert.Contains(t, update, `doaj:language "fre"`)
	assert.Contains(t, update, `doaj:hasDOAJSeal "true"^^xsd:boolean`)
	assert.Contains(t, update, `doaj:hasAPC "false"^^xsd:boolean`)
}

func TestUploadFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeCSV(t, csvHeader+
		`Oncology Letters,1111-1111,,,Springer,No,CC BY,No
`)

	u := NewJournalUpload()
	u.SetDBPathOrURL(srv.URL)

	err := u.PushDataToDB(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload")
}

func TestSelectSendsFormatParam(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Select(context.Background(), "SELECT ...")
	require.NoError(t, err)
	assert.Equal(t, "json", query.Get("format"))
}
