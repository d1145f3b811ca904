// Package graph adapts a SPARQL endpoint (Blazegraph-compatible) to the
// journal handler contracts. Journals live in the graph store as one
// doaj:Journal node per journal with one triple per field value; the query
// handler folds the flat SPARQL bindings back into journal records.
package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/journalmap/journalmap/pkg/errors"
)

// Client is a minimal SPARQL protocol client: SELECT over GET, update over
// POST form encoding. One client per handler, one handler per endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given SPARQL endpoint URL. Request
// lifetimes are bounded by the caller's context, not a client timeout.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// selectResponse mirrors the SPARQL 1.1 JSON results format.
type selectResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Select executes a SELECT query and returns one variable-to-value map per
// binding row.
func (c *Client) Select(ctx context.Context, query string) ([]map[string]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewParseError("sparql-json", c.endpoint,
			"unexpected status "+resp.Status+": "+string(body), nil)
	}

	var parsed selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.WrapParse("sparql-json", c.endpoint, err)
	}

	rows := make([]map[string]string, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(map[string]string, len(binding))
		for name, value := range binding {
			row[name] = value.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Update executes a SPARQL UPDATE (INSERT DATA and friends).
func (c *Client) Update(ctx context.Context, update string) error {
	form := url.Values{}
	form.Set("update", update)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.New("sparql update failed: " + resp.Status + ": " + string(body))
	}
	return nil
}

// escapeLiteral escapes a string for embedding in a SPARQL literal.
func escapeLiteral(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return r.Replace(s)
}

// boolLiteral renders a lowercase xsd:boolean literal.
func boolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
