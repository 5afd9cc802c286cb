package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// memoryExporter keeps exported log records for inspection.
type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) Records() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func newExporterLogger(t *testing.T) (log.Logger, *memoryExporter) {
	t.Helper()
	exp := &memoryExporter{}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp.Logger(scope), exp
}

func attributes(r sdklog.Record) map[string]log.Value {
	out := make(map[string]log.Value)
	r.WalkAttributes(func(kv log.KeyValue) bool {
		out[kv.Key] = kv.Value
		return true
	})
	return out
}

func TestNewHandler_StdoutOnly(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(&buf, slog.LevelWarn, nil))

	l.Info("hidden")
	l.Warn("identity operation failed", "operation", "sign_in")

	entry := decode(t, &buf)
	assert.Equal(t, "identity operation failed", entry["msg"])
	assert.Equal(t, "sign_in", entry["operation"])
}

func TestNewHandler_ExportsToOTel(t *testing.T) {
	var buf bytes.Buffer
	exporter, exp := newExporterLogger(t)
	l := slog.New(newHandler(&buf, slog.LevelInfo, exporter))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "POST /login")
	defer span.End()

	l.With("browser_id", "browser-1").WithGroup("identity").
		WarnContext(ctx, "identity operation failed", "error", errors.New("provider down"), "elapsed", 1500*time.Millisecond)

	entry := decode(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])

	records := exp.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "identity operation failed", rec.Body().AsString())
	assert.Equal(t, log.SeverityWarn, rec.Severity())
	assert.Equal(t, span.SpanContext().TraceID(), rec.TraceID())

	attrs := attributes(rec)
	assert.Equal(t, "browser-1", attrs["browser_id"].AsString())
	assert.Equal(t, "provider down", attrs["identity.error"].AsString())
	assert.Equal(t, int64(1500), attrs["identity.elapsed"].AsInt64())
	assert.NotContains(t, attrs, "trace_id")
}

func TestNewHandler_LevelAppliesToExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter, exp := newExporterLogger(t)
	l := slog.New(newHandler(&buf, slog.LevelInfo, exporter))

	l.Debug("identity operation completed")

	assert.Zero(t, buf.Len())
	assert.Empty(t, exp.Records())
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, log.SeverityDebug, severity(slog.LevelDebug))
	assert.Equal(t, log.SeverityInfo, severity(slog.LevelInfo))
	assert.Equal(t, log.SeverityWarn, severity(slog.LevelWarn))
	assert.Equal(t, log.SeverityError, severity(slog.LevelError))
}
