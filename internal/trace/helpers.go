package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on lextree spans
const (
	AttrModelPath      = "model.path"
	AttrModelKind      = "model.kind"
	AttrTreeNodes      = "tree.nodes"
	AttrTreeWords      = "tree.words"
	AttrTreeEntryUnits = "tree.entry_units"
	AttrTreeDropped    = "tree.dropped_words"
	AttrWalkID         = "walk.id"
	AttrWalkFrames     = "walk.frames"
	AttrWalkHypotheses = "walk.hypotheses"
	AttrWalkStates     = "walk.states"
)

// WithSpan executes a function within a new span
func WithSpan(ctx context.Context, spanName string, fn func(context.Context) error, opts ...trace.SpanStartOption) error {
	ctx, span := StartSpan(ctx, spanName, opts...)
	defer span.End()

	if err := fn(ctx); err != nil {
		RecordError(span, err)
		return err
	}

	return nil
}

// RecordError records an error on a span
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets multiple attributes on a span
func SetAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// ModelAttrs creates attributes for a model file load
func ModelAttrs(kind, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrModelKind, kind),
		attribute.String(AttrModelPath, path),
	}
}

// TraceID returns the trace ID from the current span in context
func TraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// WithAttributes returns a span start option carrying attrs
func WithAttributes(attrs ...attribute.KeyValue) trace.SpanStartOption {
	return trace.WithAttributes(attrs...)
}
