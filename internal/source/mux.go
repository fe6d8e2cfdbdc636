package source

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jask/stepthrough/internal/trace"
)

const catalogPrefix = "catalog:"

// Mux picks a source from the shape of the reference: URLs go to HTTP,
// "catalog:<name>" to the catalog, existing paths to Files, and anything
// else to HTTP as an algorithm name.
type Mux struct {
	HTTP    Source
	Files   Source
	Catalog Source
}

func (m *Mux) Fetch(ctx context.Context, ref string) (*trace.Trace, error) {
	src, key := m.route(ref)
	if src == nil {
		return nil, errors.New("no source configured for " + ref)
	}
	return src.Fetch(ctx, key)
}

func (m *Mux) route(ref string) (Source, string) {
	switch {
	case isURL(ref):
		return m.HTTP, ref
	case strings.HasPrefix(ref, catalogPrefix):
		return m.Catalog, strings.TrimPrefix(ref, catalogPrefix)
	}
	if _, err := os.Stat(ref); err == nil {
		return m.Files, ref
	}
	return m.HTTP, ref
}
