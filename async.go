package pgbridge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Async is a view over a Bridge whose operations run on their own goroutine
// so the caller's scheduling thread is never blocked by a native call.
// Cancellation is cooperative: it aborts the wait before a native call
// starts, but an in-flight native call is not preemptible and finishes in
// the background; its envelope is still freed by the normal pairing.
type Async struct {
	b *Bridge
}

// Async returns the asynchronous view of the bridge.
func (b *Bridge) Async() *Async { return &Async{b: b} }

// run executes op on a worker goroutine and waits for it or for ctx.
func run[T any](ctx context.Context, op func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op()
		done <- outcome{v, err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case o := <-done:
		return o.v, o.err
	}
}

// Parse is the asynchronous counterpart of Bridge.Parse.
func (a *Async) Parse(ctx context.Context, query string) (*ParseResult, error) {
	return run(ctx, func() (*ParseResult, error) { return a.b.Parse(query) })
}

// Normalize is the asynchronous counterpart of Bridge.Normalize.
func (a *Async) Normalize(ctx context.Context, query string) (*NormalizeResult, error) {
	return run(ctx, func() (*NormalizeResult, error) { return a.b.Normalize(query) })
}

// Fingerprint is the asynchronous counterpart of Bridge.Fingerprint.
func (a *Async) Fingerprint(ctx context.Context, query string) (*FingerprintResult, error) {
	return run(ctx, func() (*FingerprintResult, error) { return a.b.Fingerprint(query) })
}

// Deparse is the asynchronous counterpart of Bridge.Deparse.
func (a *Async) Deparse(ctx context.Context, tree string) (*DeparseResult, error) {
	return run(ctx, func() (*DeparseResult, error) { return a.b.Deparse(tree) })
}

// Split is the asynchronous counterpart of Bridge.Split.
func (a *Async) Split(ctx context.Context, query string, usingParser bool) (*SplitResult, error) {
	return run(ctx, func() (*SplitResult, error) { return a.b.Split(query, usingParser) })
}

// Scan is the asynchronous counterpart of Bridge.Scan.
func (a *Async) Scan(ctx context.Context, query string) (*ScanResult, error) {
	return run(ctx, func() (*ScanResult, error) { return a.b.Scan(query) })
}

// ParsePLpgSQL is the asynchronous counterpart of Bridge.ParsePLpgSQL.
func (a *Async) ParsePLpgSQL(ctx context.Context, definition string) (*PLpgSQLResult, error) {
	return run(ctx, func() (*PLpgSQLResult, error) { return a.b.ParsePLpgSQL(definition) })
}

// IsValid is the asynchronous counterpart of Bridge.IsValid.
func (a *Async) IsValid(ctx context.Context, query string) (bool, error) {
	return run(ctx, func() (bool, error) { return a.b.IsValid(query) })
}

// GetError is the asynchronous counterpart of Bridge.GetError.
func (a *Async) GetError(ctx context.Context, query string) (string, error) {
	return run(ctx, func() (string, error) { return a.b.GetError(query) })
}

// batch runs op over inputs with at most limit native calls in flight.
// Result index i corresponds to input index i. The context is checked at
// admission, before each native call; usage errors abort the whole batch,
// per-input diagnostics land in the individual results.
func batch[T any](ctx context.Context, inputs []string, limit int, op func(string) (T, error)) ([]T, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]T, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := op(input)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParseBatch parses all inputs with bounded concurrency, preserving order.
func (a *Async) ParseBatch(ctx context.Context, queries []string, limit int) ([]*ParseResult, error) {
	return batch(ctx, queries, limit, a.b.Parse)
}

// NormalizeBatch normalizes all inputs with bounded concurrency.
func (a *Async) NormalizeBatch(ctx context.Context, queries []string, limit int) ([]*NormalizeResult, error) {
	return batch(ctx, queries, limit, a.b.Normalize)
}

// FingerprintBatch fingerprints all inputs with bounded concurrency.
func (a *Async) FingerprintBatch(ctx context.Context, queries []string, limit int) ([]*FingerprintResult, error) {
	return batch(ctx, queries, limit, a.b.Fingerprint)
}

// SplitBatch splits all inputs with bounded concurrency.
func (a *Async) SplitBatch(ctx context.Context, queries []string, limit int, usingParser bool) ([]*SplitResult, error) {
	return batch(ctx, queries, limit, func(q string) (*SplitResult, error) {
		return a.b.Split(q, usingParser)
	})
}
