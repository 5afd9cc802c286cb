package logger

import (
	"context"
	"log/slog"
	"time"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	BrowserIDKey ContextKey = "browser_id"
	OperationKey ContextKey = "operation"
)

// GlobalContext is set by Init.
var GlobalContext *ContextLogger

type ContextLogger struct {
	logger *slog.Logger
}

func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext adds context values to log entries
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 6)

	for _, key := range []ContextKey{RequestIDKey, BrowserIDKey, OperationKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, string(key), v)
		}
	}

	return cl.logger.With(args...)
}

// LogDuration records the time taken by the operation tagged on ctx.
func (cl *ContextLogger) LogDuration(ctx context.Context, msg string, duration time.Duration) {
	cl.WithContext(ctx).DebugContext(ctx, msg, "duration_ms", duration.Milliseconds())
}

// LogError records a failure of the operation tagged on ctx.
func (cl *ContextLogger) LogError(ctx context.Context, msg string, err error) {
	cl.WithContext(ctx).WarnContext(ctx, msg, "error", err)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithBrowserID(ctx context.Context, browserID string) context.Context {
	return context.WithValue(ctx, BrowserIDKey, browserID)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// FromContext returns the global context logger for ctx, or the default
// logger before Init has run.
func FromContext(ctx context.Context) *slog.Logger {
	if GlobalContext == nil {
		return slog.Default()
	}
	return GlobalContext.WithContext(ctx)
}
