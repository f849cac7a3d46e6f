package pipeline

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// memoryExporter is an in-process span recorder: no OTLP network sink, no
// batching. It exists so a Pipeline run's stages are additionally visible
// as spans (for anyone wiring in a real exporter later) without making
// otel export a required I/O dependency of a library package.
type memoryExporter struct {
	mu    sync.Mutex
	spans []sdktrace.ReadOnlySpan
}

func (e *memoryExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, spans...)
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error { return nil }

// Spans returns the spans recorded so far, for tests and diagnostics.
func (e *memoryExporter) Spans() []sdktrace.ReadOnlySpan {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sdktrace.ReadOnlySpan, len(e.spans))
	copy(out, e.spans)
	return out
}

// newTracer builds a TracerProvider with a SimpleSpanProcessor over a
// memoryExporter and returns a Tracer for stage spans plus the exporter so
// a caller can inspect what was recorded.
func newTracer() (trace.Tracer, *memoryExporter) {
	exp := &memoryExporter{}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)))
	return tp.Tracer("gocontext.retrieval/pipeline"), exp
}
