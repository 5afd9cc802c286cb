package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/log"
)

// otelHandler emits slog records through an OTel logger. The SDK stamps
// trace and span ids from ctx, so they are not copied into attributes.
type otelHandler struct {
	logger log.Logger
	level  slog.Level
	attrs  []log.KeyValue
	prefix string
}

func (h *otelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *otelHandler) Handle(ctx context.Context, r slog.Record) error {
	var rec log.Record
	rec.SetTimestamp(r.Time)
	rec.SetBody(log.StringValue(r.Message))
	rec.SetSeverity(severity(r.Level))
	rec.SetSeverityText(r.Level.String())
	rec.AddAttributes(h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if kv, ok := keyValue(h.prefix, a); ok {
			rec.AddAttributes(kv)
		}
		return true
	})

	h.logger.Emit(ctx, rec)
	return nil
}

func (h *otelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]log.KeyValue(nil), h.attrs...)
	for _, a := range attrs {
		if kv, ok := keyValue(h.prefix, a); ok {
			next.attrs = append(next.attrs, kv)
		}
	}
	return &next
}

func (h *otelHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func severity(level slog.Level) log.Severity {
	switch {
	case level >= slog.LevelError:
		return log.SeverityError
	case level >= slog.LevelWarn:
		return log.SeverityWarn
	case level >= slog.LevelInfo:
		return log.SeverityInfo
	default:
		return log.SeverityDebug
	}
}

// keyValue converts a to an OTel attribute, dropping empty attrs the way
// slog handlers do.
func keyValue(prefix string, a slog.Attr) (log.KeyValue, bool) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return log.KeyValue{}, false
	}
	return log.KeyValue{Key: prefix + a.Key, Value: value(a.Value)}, true
}

func value(v slog.Value) log.Value {
	switch v.Kind() {
	case slog.KindString:
		return log.StringValue(v.String())
	case slog.KindInt64:
		return log.Int64Value(v.Int64())
	case slog.KindUint64:
		return log.Int64Value(int64(v.Uint64()))
	case slog.KindFloat64:
		return log.Float64Value(v.Float64())
	case slog.KindBool:
		return log.BoolValue(v.Bool())
	case slog.KindDuration:
		return log.Int64Value(v.Duration().Milliseconds())
	case slog.KindGroup:
		group := v.Group()
		kvs := make([]log.KeyValue, 0, len(group))
		for _, a := range group {
			if kv, ok := keyValue("", a); ok {
				kvs = append(kvs, kv)
			}
		}
		return log.MapValue(kvs...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return log.StringValue(err.Error())
		}
	}
	return log.StringValue(v.String())
}
