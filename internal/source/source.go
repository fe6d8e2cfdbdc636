// Package source fetches traces from the trace service, the local
// filesystem and the sqlite catalog, and tags in-flight loads so a late
// response can never replace a newer one.
package source

import (
	"context"
	"errors"

	"github.com/jask/stepthrough/internal/trace"
)

var (
	ErrNotFound      = errors.New("trace not found")
	ErrStaleResponse = errors.New("stale trace response")
)

// Source resolves a reference to a decoded trace.
type Source interface {
	Fetch(ctx context.Context, ref string) (*trace.Trace, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, ref string) (*trace.Trace, error)

func (f SourceFunc) Fetch(ctx context.Context, ref string) (*trace.Trace, error) { return f(ctx, ref) }
