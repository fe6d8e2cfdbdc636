package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jask/stepthrough/internal/trace"
)

// Files reads JSON or YAML traces from disk.
type Files struct{}

func (Files) Fetch(_ context.Context, path string) (*trace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	var t *trace.Trace
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = trace.DecodeYAML(f)
	default:
		t, err = trace.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
