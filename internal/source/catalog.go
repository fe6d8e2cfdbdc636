package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agnivade/levenshtein"
	_ "modernc.org/sqlite"

	"github.com/jask/stepthrough/internal/trace"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS traces (
	name TEXT PRIMARY KEY,
	algorithm TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	steps INTEGER NOT NULL,
	prediction_points INTEGER NOT NULL,
	body BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// suggestDistance bounds how far a name may be from a stored one to be
// offered as a suggestion.
const suggestDistance = 3

// Entry describes one stored trace.
type Entry struct {
	Name             string
	Algorithm        string
	DisplayName      string
	Steps            int
	PredictionPoints int
	UpdatedAt        time.Time
}

// NotFoundError wraps ErrNotFound with the closest stored name, if any.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.Name)
	}
	return fmt.Sprintf("%s: %q (did you mean %q?)", ErrNotFound, e.Name, e.Suggestion)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Catalog keeps named traces in a local sqlite file so they can be replayed
// without the trace service.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the catalog at path. ":memory:"
// gives a throwaway catalog.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Put validates t and stores it under name, replacing any previous entry.
func (c *Catalog) Put(ctx context.Context, name string, t *trace.Trace) error {
	if name == "" {
		return errors.New("catalog: empty name")
	}
	if err := trace.Validate(t); err != nil {
		return err
	}
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
	INSERT INTO traces(name, algorithm, display_name, steps, prediction_points, body, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
	 algorithm=excluded.algorithm,
	 display_name=excluded.display_name,
	 steps=excluded.steps,
	 prediction_points=excluded.prediction_points,
	 body=excluded.body,
	 updated_at=CURRENT_TIMESTAMP;
	`, name, t.Metadata.Algorithm, t.Metadata.DisplayName, t.Len(), len(t.Metadata.PredictionPoints), body)
	return err
}

func (c *Catalog) Fetch(ctx context.Context, name string) (*trace.Trace, error) {
	var body []byte
	err := c.db.QueryRowContext(ctx, `SELECT body FROM traces WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, c.notFound(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return trace.Parse(body)
}

func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, algorithm, display_name, steps, prediction_points, updated_at FROM traces ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Algorithm, &e.DisplayName, &e.Steps, &e.PredictionPoints, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *Catalog) Delete(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM traces WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.notFound(ctx, name)
	}
	return nil
}

func (c *Catalog) notFound(ctx context.Context, name string) error {
	nf := &NotFoundError{Name: name}
	entries, err := c.List(ctx)
	if err != nil {
		return nf
	}
	best := suggestDistance + 1
	for _, e := range entries {
		if d := levenshtein.ComputeDistance(name, e.Name); d < best {
			best = d
			nf.Suggestion = e.Name
		}
	}
	return nf
}
