// Package trace records request/response exchanges to a SQLite database for
// post-hoc inspection. It is a debugging log, not conversation persistence:
// history is never reloaded from it.
package trace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Exchange is one recorded request/response round-trip.
type Exchange struct {
	ID           string
	Timestamp    time.Time
	Mode         string
	RequestBody  string
	StatusCode   int
	ResponseBody string
	Error        string
}

// Recorder persists exchanges to a SQLite database.
type Recorder struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    mode TEXT NOT NULL,
    request_body TEXT NOT NULL,
    status_code INTEGER NOT NULL DEFAULT 0,
    response_body TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_exchanges_timestamp ON exchanges(timestamp);
`

// Open creates or opens the trace database at the given path.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging trace database: %w", err)
	}

	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return r, nil
}

// OpenMemory creates an in-memory trace database (useful for testing).
func OpenMemory() (*Recorder, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory trace database: %w", err)
	}
	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	_, err := r.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record inserts one exchange. If the ID is empty a UUID is generated.
func (r *Recorder) Record(ctx context.Context, ex Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, mode, request_body, status_code, response_body, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Mode, ex.RequestBody, ex.StatusCode, ex.ResponseBody, ex.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, mode, request_body, status_code, response_body, error
		FROM exchanges
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var (
			ex Exchange
			ts string
		)
		if err := rows.Scan(&ex.ID, &ts, &ex.Mode, &ex.RequestBody, &ex.StatusCode, &ex.ResponseBody, &ex.Error); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		if parsed, err := time.Parse(time.DateTime, ts); err == nil {
			ex.Timestamp = parsed
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
