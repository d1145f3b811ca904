package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/handlers"
)

const sparqlPrefixes = `PREFIX doaj: <http://doaj.org/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
`

// journalSelect is the shared SELECT shape: one binding row per
// (journal, language, licence) combination; foldJournals reassembles rows
// into journal records keyed on the journal node.
const journalSelect = `SELECT ?journal ?title ?issn ?eissn ?language ?publisher ?seal ?licence ?apc
WHERE {
    ?journal rdf:type doaj:Journal .
    ?journal doaj:title ?title .
%s    OPTIONAL { ?journal doaj:issn ?issn }
    OPTIONAL { ?journal doaj:eissn ?eissn }
    OPTIONAL { ?journal doaj:language ?language }
    OPTIONAL { ?journal doaj:publisher ?publisher }
    OPTIONAL { ?journal doaj:hasDOAJSeal ?seal }
    OPTIONAL { ?journal doaj:licence ?licence }
    OPTIONAL { ?journal doaj:hasAPC ?apc }
}
ORDER BY ?title`

// JournalQuery is the graph-backed journal query handler. All operations
// are pure reads against the configured SPARQL endpoint.
type JournalQuery struct {
	handlers.Handler
}

// NewJournalQuery creates an unconfigured graph query handler; call
// SetDBPathOrURL with the endpoint URL before use.
func NewJournalQuery() *JournalQuery {
	return &JournalQuery{}
}

var _ handlers.JournalQueryHandler = (*JournalQuery)(nil)

func (q *JournalQuery) client() *Client {
	return NewClient(q.DBPathOrURL())
}

func (q *JournalQuery) selectJournals(ctx context.Context, constraint string) ([]entities.Journal, error) {
	query := sparqlPrefixes + fmt.Sprintf(journalSelect, constraint)
	rows, err := q.client().Select(ctx, query)
	if err != nil {
		return nil, err
	}
	return foldJournals(rows), nil
}

// JournalByID returns the journal whose issn or eissn equals id, or nil.
func (q *JournalQuery) JournalByID(ctx context.Context, id string) (*entities.Journal, error) {
	constraint := fmt.Sprintf(
		"    ?journal doaj:issn|doaj:eissn \"%s\" .\n", escapeLiteral(id))
	journals, err := q.selectJournals(ctx, constraint)
	if err != nil {
		return nil, err
	}
	if len(journals) == 0 {
		return nil, nil
	}
	return &journals[0], nil
}

// AllJournals returns every journal in the store.
func (q *JournalQuery) AllJournals(ctx context.Context) ([]entities.Journal, error) {
	return q.selectJournals(ctx, "")
}

// JournalsWithTitle returns journals whose title contains partialTitle,
// case-insensitively.
func (q *JournalQuery) JournalsWithTitle(ctx context.Context, partialTitle string) ([]entities.Journal, error) {
	constraint := fmt.Sprintf(
		"    FILTER (CONTAINS(LCASE(?title), LCASE(\"%s\")))\n", escapeLiteral(partialTitle))
	return q.selectJournals(ctx, constraint)
}

// JournalsPublishedBy returns journals whose publisher contains partialName,
// case-insensitively.
func (q *JournalQuery) JournalsPublishedBy(ctx context.Context, partialName string) ([]entities.Journal, error) {
	constraint := fmt.Sprintf(
		"    ?journal doaj:publisher ?pub .\n    FILTER (CONTAINS(LCASE(?pub), LCASE(\"%s\")))\n",
		escapeLiteral(partialName))
	return q.selectJournals(ctx, constraint)
}

// JournalsWithLicense returns journals carrying any of the given licenses.
// An empty set matches all journals.
func (q *JournalQuery) JournalsWithLicense(ctx context.Context, licenses []string) ([]entities.Journal, error) {
	if len(licenses) == 0 {
		return q.AllJournals(ctx)
	}

	clauses := make([]string, 0, len(licenses))
	for _, license := range licenses {
		clauses = append(clauses, fmt.Sprintf("?lic = \"%s\"", escapeLiteral(license)))
	}
	constraint := fmt.Sprintf(
		"    ?journal doaj:licence ?lic .\n    FILTER (%s)\n", strings.Join(clauses, " || "))
	return q.selectJournals(ctx, constraint)
}

// JournalsWithAPC returns journals that charge an article processing charge.
func (q *JournalQuery) JournalsWithAPC(ctx context.Context) ([]entities.Journal, error) {
	return q.selectJournals(ctx, "    ?journal doaj:hasAPC \"true\"^^xsd:boolean .\n")
}

// JournalsWithDOAJSeal returns journals awarded the DOAJ Seal.
func (q *JournalQuery) JournalsWithDOAJSeal(ctx context.Context) ([]entities.Journal, error) {
	return q.selectJournals(ctx, "    ?journal doaj:hasDOAJSeal \"true\"^^xsd:boolean .\n")
}

// foldJournals reassembles flat binding rows into journal records. Rows are
// keyed on the journal node URI; languages and licenses accumulate across a
// journal's rows since the store holds one triple per value.
func foldJournals(rows []map[string]string) []entities.Journal {
	var order []string
	byNode := make(map[string]*entities.Journal)

	for _, row := range rows {
		node := row["journal"]
		if node == "" {
			// A malformed binding without the journal variable; the
			// engine rejects identifier-less records downstream.
			node = row["issn"] + "|" + row["eissn"]
		}

		j, ok := byNode[node]
		if !ok {
			j = &entities.Journal{
				Identifiers: entities.UnionIDs([]string{row["issn"], row["eissn"]}),
				Title:       row["title"],
				Seal:        row["seal"] == "true",
				APC:         row["apc"] == "true",
			}
			if publisher := row["publisher"]; publisher != "" {
				j.Publisher = &publisher
			}
			byNode[node] = j
			order = append(order, node)
		}

		if lang := row["language"]; lang != "" {
			j.Languages = entities.UnionIDs(j.Languages, []string{lang})
		}
		if lic := row["licence"]; lic != "" {
			j.Licenses = entities.UnionIDs(j.Licenses, []string{lic})
		}
	}

	out := make([]entities.Journal, 0, len(order))
	for _, node := range order {
		out = append(out, *byNode[node])
	}
	return out
}
