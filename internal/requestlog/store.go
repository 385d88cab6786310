// Package requestlog persists the outcome of each chat request to SQLite or
// Postgres. Entries are fed from client event hooks.
package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Outcome values.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Entry is one persisted chat request outcome.
type Entry struct {
	TraceID          string
	Outcome          string
	Provider         string
	Model            string
	DurationMs       int64
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ErrorType        string
	ErrorMessage     string
	CreatedAt        time.Time
}

// Writer persists request log entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter ignores all log writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists entries to SQLite/Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// Open creates a writer for driver "sqlite" or "postgres".
func Open(driver, dsn string) (*SQLWriter, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteWriter(dsn)
	case "postgres":
		return NewPostgresWriter(dsn)
	default:
		return nil, fmt.Errorf("unsupported request log driver %q", driver)
	}
}

func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "ferrochat-requests.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite request log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres request log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s request log writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS chat_requests (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	outcome TEXT NOT NULL,
	provider TEXT,
	model TEXT,
	duration_ms INTEGER NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	error_type TEXT,
	error_message TEXT,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS chat_requests (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	outcome TEXT NOT NULL,
	provider TEXT,
	model TEXT,
	duration_ms BIGINT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	error_type TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize request log schema: %w", err)
	}
	return nil
}

func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO chat_requests(trace_id, outcome, provider, model, duration_ms, prompt_tokens, completion_tokens, total_tokens, error_type, error_message, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO chat_requests(trace_id, outcome, provider, model, duration_ms, prompt_tokens, completion_tokens, total_tokens, error_type, error_message, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Outcome,
		entry.Provider,
		entry.Model,
		entry.DurationMs,
		entry.PromptTokens,
		entry.CompletionTokens,
		entry.TotalTokens,
		entry.ErrorType,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write request log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (w *SQLWriter) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT trace_id, outcome, provider, model, duration_ms, prompt_tokens, completion_tokens, total_tokens, error_type, error_message, created_at
	FROM chat_requests ORDER BY created_at DESC, id DESC LIMIT ?`
	if w.dialect == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	rows, err := w.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query request log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e                        Entry
			traceID, provider, model sql.NullString
			errType, errMsg          sql.NullString
		)
		if err := rows.Scan(&traceID, &e.Outcome, &provider, &model, &e.DurationMs,
			&e.PromptTokens, &e.CompletionTokens, &e.TotalTokens, &errType, &errMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		e.TraceID = traceID.String
		e.Provider = provider.String
		e.Model = model.String
		e.ErrorType = errType.String
		e.ErrorMessage = errMsg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
