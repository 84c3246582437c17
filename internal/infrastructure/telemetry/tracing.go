package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for pipeline spans
const TracerName = "obralink-backend"

// Span attributes recorded by the integration pipeline
const (
	AttrPlatform        = attribute.Key("integration.platform")
	AttrTraceID         = attribute.Key("integration.trace_id")
	AttrJobID           = attribute.Key("integration.job_id")
	AttrAttempt         = attribute.Key("integration.attempt")
	AttrTemplateVersion = attribute.Key("integration.template_version")
	// AttrOutcome is accepted, rejected, transient or terminal
	AttrOutcome = attribute.Key("integration.outcome")
)

func tracer() trace.Tracer { return otel.GetTracerProvider().Tracer(TracerName) }

// StartSpan starts an internal span. The caller ends it, usually through EndSpan.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartClientSpan starts a span for a call to an external platform
func StartClientSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// EndSpan tags span with outcome when it is set, records err and ends the span
func EndSpan(span trace.Span, outcome string, err error) {
	if outcome != "" {
		span.SetAttributes(AttrOutcome.String(outcome))
	}
	RecordError(span, err)
	span.End()
}

// RecordError records err on span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the OpenTelemetry trace ID in ctx, or ""
func GetTraceID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).TraceID(); id.IsValid() {
		return id.String()
	}
	return ""
}
