package calllog

import (
	"context"
	"sync"
	"time"

	"github.com/n-chekan/ialla-api/observe"
	"github.com/n-chekan/ialla-api/supabase"
)

// Record is one append-only call log entry. Written once per request
// attempt, never mutated.
type Record struct {
	SessionID      string    `json:"session_id"`
	Service        string    `json:"service_name"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	RequestSummary string    `json:"request_summary,omitempty"`
	Status         int       `json:"response_status"`
	DurationMS     int64     `json:"duration_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Sink persists records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Write may fail; callers treat the write as best-effort.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Logger writes call records to a sink without ever failing the caller.
type Logger struct {
	sink   Sink
	logger observe.Logger
}

// NewLogger creates a call logger. A nil sink drops records after
// reporting them on the secondary channel at debug level.
func NewLogger(sink Sink, logger observe.Logger) *Logger {
	return &Logger{sink: sink, logger: logger}
}

// Record persists rec. Sink failures are logged to the secondary channel
// and swallowed.
func (l *Logger) Record(ctx context.Context, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if l.sink == nil {
		l.logger.Debug(ctx, "call log dropped, no sink configured",
			observe.Field{Key: "endpoint", Value: rec.Endpoint})
		return
	}

	if err := l.sink.Write(ctx, rec); err != nil {
		l.logger.Warn(ctx, "call log write failed",
			observe.Field{Key: "endpoint", Value: rec.Endpoint},
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// SupabaseSink writes records to the api_logs table.
type SupabaseSink struct {
	client *supabase.Client
	table  string
}

// NewSupabaseSink creates a sink over the given client.
// Table defaults to "api_logs".
func NewSupabaseSink(client *supabase.Client, table string) *SupabaseSink {
	if table == "" {
		table = "api_logs"
	}
	return &SupabaseSink{client: client, table: table}
}

// Write inserts the record.
func (s *SupabaseSink) Write(ctx context.Context, rec Record) error {
	_, err := s.client.From(s.table).Insert(ctx, rec)
	return err
}

// MemorySink collects records in memory, for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
	failErr error
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// FailWith makes every subsequent Write return err.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

// Write appends the record.
func (s *MemorySink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of all written records.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Ensure implementations satisfy Sink
var (
	_ Sink = (*SupabaseSink)(nil)
	_ Sink = (*MemorySink)(nil)
)
