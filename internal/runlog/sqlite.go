package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    query      TEXT NOT NULL,
    intent     TEXT NOT NULL,
    tool_calls TEXT NOT NULL,
    sources    TEXT NOT NULL,
    confidence REAL NOT NULL,
    answer     TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_intent ON runs(intent);
`

// SQLiteLogger persists run records to a local SQLite database.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (creating if needed) the run database at path and
// ensures the schema exists.
func NewSQLiteLogger(path string) (*SQLiteLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run schema: %w", err)
	}
	return &SQLiteLogger{db: db}, nil
}

// Log implements Logger.
func (l *SQLiteLogger) Log(ctx context.Context, rec Record) error {
	toolCalls, err := json.Marshal(rec.ToolCalls)
	if err != nil {
		return fmt.Errorf("failed to encode tool calls: %w", err)
	}
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, query, intent, tool_calls, sources, confidence, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Query, rec.Intent, string(toolCalls), string(sources),
		rec.Confidence, rec.Answer, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// Recent returns the most recent run records, newest first.
func (l *SQLiteLogger) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, query, intent, tool_calls, sources, confidence, answer, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var toolCalls, sources string
		if err := rows.Scan(&rec.RunID, &rec.Query, &rec.Intent, &toolCalls,
			&sources, &rec.Confidence, &rec.Answer, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		if err := json.Unmarshal([]byte(toolCalls), &rec.ToolCalls); err != nil {
			return nil, fmt.Errorf("failed to decode tool calls: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}
