package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/journalmap/journalmap/pkg/errors"
)

// fanoutResult carries one handler's contribution back from the fan-out,
// tagged with its registration index so precedence survives concurrency.
type fanoutResult[T any] struct {
	index   int
	records []T
	err     error
}

// queryAll issues op against every handler concurrently. Store latency
// dominates, so handlers are queried in parallel; the returned slice is
// indexed by registration order regardless of completion order, which keeps
// the downstream merge deterministic.
//
// A handler that faults or exceeds the per-handler timeout contributes an
// empty slice with a recorded warning; it never aborts the overall query.
// Caller-level cancellation aborts in-flight calls and returns promptly.
func queryAll[H any, T any](
	ctx context.Context,
	logger *zerolog.Logger,
	timeout time.Duration,
	operation string,
	hs []H,
	endpoint func(H) string,
	op func(context.Context, H) ([]T, error),
) ([][]T, error) {
	out := make([][]T, len(hs))
	results := make(chan fanoutResult[T], len(hs))

	for i, h := range hs {
		go func(i int, h H) {
			hctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			records, err := op(hctx, h)
			results <- fanoutResult[T]{index: i, records: records, err: err}
		}(i, h)
	}

	for pending := len(hs); pending > 0; pending-- {
		select {
		case <-ctx.Done():
			// Stragglers keep their per-handler contexts, which are
			// children of ctx and are already canceled with it.
			return nil, ctx.Err()
		case res := <-results:
			if res.err != nil {
				fault := errors.NewHandlerFaultError(endpoint(hs[res.index]), operation, res.err)
				logger.Warn().
					Err(fault).
					Str("operation", operation).
					Str("endpoint", endpoint(hs[res.index])).
					Int("handler_index", res.index).
					Msg("handler fault, contribution treated as empty")
				continue
			}
			out[res.index] = res.records
		}
	}

	return out, nil
}

// flatten concatenates per-handler record slices in registration order.
func flatten[T any](chunks [][]T) []T {
	var n int
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]T, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
