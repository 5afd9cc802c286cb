package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// scope names the portal's records in the OTel logs pipeline.
const scope = "docs-portal"

// Init installs the process-wide logger and GlobalContext. Records go to
// stdout as JSON stamped with the active trace. With enableOTel they are
// also exported through the global OTel logger provider, so call it after
// the provider is registered.
func Init(enableOTel bool) *slog.Logger {
	var exporter log.Logger
	if enableOTel {
		exporter = global.GetLoggerProvider().Logger(scope)
	}

	l := slog.New(newHandler(os.Stdout, parseLevel(os.Getenv("LOG_LEVEL")), exporter))
	slog.SetDefault(l)
	GlobalContext = NewContextLogger(l)
	return l
}

func newHandler(w io.Writer, level slog.Level, exporter log.Logger) slog.Handler {
	stdout := withTraceIDs(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	if exporter == nil {
		return stdout
	}
	return fanout{stdout, &otelHandler{logger: exporter, level: level}}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout hands every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
