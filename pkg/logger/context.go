package logger

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	fieldsKey ctxKey = "request_fields"
)

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// requestFields is shared by every context derived from one request, so a value added
// deep in the handler chain is visible to the middleware that logs the request.
type requestFields struct {
	mu   sync.Mutex
	args []any
}

// WithRequestFields starts collecting fields for one request.
func WithRequestFields(ctx context.Context) context.Context {
	return context.WithValue(ctx, fieldsKey, &requestFields{})
}

// Annotate adds fields to the context logger and, when the request collects them, to
// the request's fields as well.
func Annotate(ctx context.Context, fields ...any) context.Context {
	if rf, ok := ctx.Value(fieldsKey).(*requestFields); ok {
		rf.mu.Lock()
		rf.args = append(rf.args, fields...)
		rf.mu.Unlock()
	}
	return With(ctx, fields...)
}

// RequestFields returns a copy of what Annotate recorded for the request.
func RequestFields(ctx context.Context) []any {
	rf, ok := ctx.Value(fieldsKey).(*requestFields)
	if !ok {
		return nil
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return append([]any(nil), rf.args...)
}
