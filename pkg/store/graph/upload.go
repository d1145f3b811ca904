package graph

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/errors"
	"github.com/journalmap/journalmap/pkg/handlers"
	"github.com/journalmap/journalmap/pkg/logging"
)

// DOAJ CSV export column names.
const (
	colTitle     = "Journal title"
	colISSN      = "Journal ISSN (print version)"
	colEISSN     = "Journal EISSN (online version)"
	colLanguages = "Languages in which the journal accepts manuscripts"
	colPublisher = "Publisher"
	colSeal      = "DOAJ Seal"
	colLicense   = "Journal license"
	colAPC       = "APC"
)

// uploadBatchSize caps the number of journals per INSERT DATA update.
const uploadBatchSize = 200

// JournalUpload loads the DOAJ CSV export into a graph store as one
// doaj:Journal node per journal, one triple per field value.
type JournalUpload struct {
	handlers.Handler
}

// NewJournalUpload creates an unconfigured graph upload handler; call
// SetDBPathOrURL with the endpoint URL before use.
func NewJournalUpload() *JournalUpload {
	return &JournalUpload{}
}

var _ handlers.UploadHandler = (*JournalUpload)(nil)

// PushDataToDB reads the CSV export at sourceFile and uploads it to the
// configured SPARQL endpoint in batches. Rows without any identifier are
// skipped with a warning; they could never be queried or joined.
func (u *JournalUpload) PushDataToDB(ctx context.Context, sourceFile string) error {
	journals, err := readJournalCSV(ctx, sourceFile)
	if err != nil {
		return err
	}

	client := NewClient(u.DBPathOrURL())
	uploaded := 0
	for start := 0; start < len(journals); start += uploadBatchSize {
		end := min(start+uploadBatchSize, len(journals))

		if err := client.Update(ctx, buildInsert(journals[start:end])); err != nil {
			return errors.NewUploadError(u.DBPathOrURL(), uploaded, len(journals), err)
		}
		uploaded = end
	}

	logging.FromContext(ctx).Info().
		Int("journals", uploaded).
		Str("endpoint", u.DBPathOrURL()).
		Msg("uploaded journals to graph store")
	return nil
}

// csvJournal keeps the print ISSN and EISSN distinct for triple emission;
// the merged identifier set alone cannot tell them apart.
type csvJournal struct {
	entities.Journal
	issn  string
	eissn string
}

// readJournalCSV parses the DOAJ export into journal records.
func readJournalCSV(ctx context.Context, path string) ([]csvJournal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colTitle, colISSN, colEISSN} {
		if _, ok := index[required]; !ok {
			return nil, errors.NewParseError("csv", path, "missing column "+required, nil)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	logger := logging.FromContext(ctx)
	var journals []csvJournal
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("csv", path, err.Error(), err)
		}

		row := csvJournal{
			issn:  field(record, colISSN),
			eissn: field(record, colEISSN),
		}
		row.Journal = entities.Journal{
			Identifiers: entities.UnionIDs([]string{row.issn, row.eissn}),
			Title:       field(record, colTitle),
			Languages:   entities.ParseLanguages(field(record, colLanguages)),
			Seal:        strings.EqualFold(field(record, colSeal), "yes"),
			Licenses:    entities.ParseLanguages(field(record, colLicense)),
			APC:         strings.EqualFold(field(record, colAPC), "yes"),
		}
		if publisher := field(record, colPublisher); publisher != "" {
			row.Publisher = &publisher
		}

		if err := row.Validate(); err != nil {
			logger.Warn().Err(err).Int("line", line).Str("title", row.Title).
				Msg("skipping journal row without identifiers")
			continue
		}
		journals = append(journals, row)
	}

	return journals, nil
}

// buildInsert renders one SPARQL INSERT DATA update for a journal batch.
func buildInsert(journals []csvJournal) string {
	var b strings.Builder
	b.WriteString(sparqlPrefixes)
	b.WriteString("INSERT DATA {\n")

	for _, j := range journals {
		node := fmt.Sprintf("<http://doaj.org/journal/%s>", j.Identifiers[0])

		writeTriple := func(predicate, object string) {
			fmt.Fprintf(&b, "    %s %s %s .\n", node, predicate, object)
		}
		literal := func(s string) string {
			return `"` + escapeLiteral(s) + `"`
		}

		writeTriple("rdf:type", "doaj:Journal")
		writeTriple("doaj:title", literal(j.Title))
		if j.issn != "" {
			writeTriple("doaj:issn", literal(j.issn))
		}
		if j.eissn != "" {
			writeTriple("doaj:eissn", literal(j.eissn))
		}
		for _, lang := range j.Languages {
			writeTriple("doaj:language", literal(lang))
		}
		if j.Publisher != nil {
			writeTriple("doaj:publisher", literal(*j.Publisher))
		}
		writeTriple("doaj:hasDOAJSeal", literal(boolLiteral(j.Seal))+"^^xsd:boolean")
		for _, lic := range j.Licenses {
			writeTriple("doaj:licence", literal(lic))
		}
		writeTriple("doaj:hasAPC", literal(boolLiteral(j.APC))+"^^xsd:boolean")
	}

	b.WriteString("}")
	return b.String()
}
