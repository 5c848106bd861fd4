// Package runlog records one structured entry per answered query. Logging is
// fire-and-forget at the call site: a failed write is logged and dropped,
// never surfaced to the querying user.
package runlog

import (
	"context"
	"time"
)

// Record is one answered query.
type Record struct {
	RunID      string    `json:"run_id"`
	Query      string    `json:"query"`
	Intent     string    `json:"intent"`
	ToolCalls  []string  `json:"tool_calls"`
	Sources    []string  `json:"sources"`
	Confidence float64   `json:"confidence"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// Logger persists run records.
type Logger interface {
	Log(ctx context.Context, rec Record) error
	Close() error
}

// NopLogger discards all records.
type NopLogger struct{}

// NewNopLogger creates a logger that drops everything.
func NewNopLogger() *NopLogger { return &NopLogger{} }

// Log implements Logger.
func (*NopLogger) Log(context.Context, Record) error { return nil }

// Close implements Logger.
func (*NopLogger) Close() error { return nil }
