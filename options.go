package journalmap

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/journalmap/journalmap/pkg/reconcile"
)

// Option is a function that configures a JournalMap instance
type Option func(*config) error

// config collects endpoint and engine settings before wiring.
type config struct {
	graphEndpoints []string
	sqlitePaths    []string
	handlerTimeout time.Duration
	logger         *zerolog.Logger
}

func newConfig() *config {
	return &config{}
}

// engineOptions translates the collected settings into engine options.
func (c *config) engineOptions() []reconcile.Option {
	var opts []reconcile.Option
	if c.handlerTimeout > 0 {
		opts = append(opts, reconcile.WithHandlerTimeout(c.handlerTimeout))
	}
	if c.logger != nil {
		opts = append(opts, reconcile.WithLogger(c.logger))
	}
	return opts
}

// WithGraphEndpoint adds a SPARQL endpoint URL serving journal data. The
// option can be repeated; earlier endpoints take precedence on conflicting
// non-null fields.
func WithGraphEndpoint(url string) Option {
	return func(c *config) error {
		c.graphEndpoints = append(c.graphEndpoints, url)
		return nil
	}
}

// WithSQLitePath adds a SQLite database path serving category and area
// classifications. The option can be repeated; earlier databases take
// precedence on conflicting non-null fields.
func WithSQLitePath(path string) Option {
	return func(c *config) error {
		c.sqlitePaths = append(c.sqlitePaths, path)
		return nil
	}
}

// WithHandlerTimeout bounds each store's contribution to a query.
func WithHandlerTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.handlerTimeout = d
		return nil
	}
}

// WithLogger sets the logger used to record handler faults and rejected
// records.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
