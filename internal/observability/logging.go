// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger is the global structured logger instance used throughout the application.
// It writes to stderr so command output on stdout stays clean.
var Logger = defaultLogger()

func defaultLogger() *slog.Logger {
	return slog.New(&ctxHandler{slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})})
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// ctxHandler adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := CorrelationID(ctx); id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// SetupLogger replaces Logger. Production gets JSON output, everything else
// gets text.
func SetupLogger(w io.Writer, level slog.Level, production bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	Logger = slog.New(&ctxHandler{handler})
	return Logger
}

// WithCorrelationID returns ctx carrying a fresh correlation id unless it already has one.
func WithCorrelationID(ctx context.Context) context.Context {
	if CorrelationID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, uuid.NewString())
}

// CorrelationID retrieves the correlation ID from the context.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) log(ctx context.Context, op string, attrs ...any) {
	attrs = append([]any{slog.String("table", l.table), slog.String("operation", op)}, attrs...)
	Logger.DebugContext(ctx, "repository "+op, attrs...)
}

func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...any) { l.log(ctx, "create", attrs...) }
func (l *RepoLogger) LogRead(ctx context.Context, attrs ...any)   { l.log(ctx, "read", attrs...) }
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...any) { l.log(ctx, "update", attrs...) }
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...any) { l.log(ctx, "delete", attrs...) }
