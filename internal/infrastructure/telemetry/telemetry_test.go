package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.TelemetryConfig{Enabled: false, ServiceName: "obralink-test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled())
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.NotNil(t, p.Tracer.Tracer("x"))
	assert.NotNil(t, p.Meter.Meter("x"))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestLoggerProvider_BridgeDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	lp := &LoggerProvider{}
	bridged := lp.Bridge(base, zapcore.InfoLevel)
	bridged.Info("dispatch accepted")

	assert.Same(t, base, bridged)
	assert.Equal(t, 1, logs.Len())
}

func TestMinLevelCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &minLevelCore{Core: inner, min: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("platform", "nalanda"))

	logger.Info("ignored")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "nalanda", logs.All()[0].ContextMap()["platform"])
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := StartClientSpan(context.Background(), "platform.send",
		AttrPlatform.String(integration.PlatformCTAIMA.String()),
		AttrAttempt.Int(2))
	assert.NotEmpty(t, GetTraceID(ctx))
	_, child := StartSpan(ctx, "template.resolve", AttrTemplateVersion.Int(3))
	EndSpan(child, "", nil)
	EndSpan(span, "transient", errors.New("503 Service Unavailable"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	inner, outer := spans[0], spans[1]
	assert.Equal(t, codes.Unset, inner.Status().Code)
	assert.Equal(t, outer.SpanContext().SpanID(), inner.Parent().SpanID())

	assert.Equal(t, "platform.send", outer.Name())
	assert.Equal(t, trace.SpanKindClient, outer.SpanKind())
	assert.Equal(t, codes.Error, outer.Status().Code)
	assert.Contains(t, outer.Attributes(), attribute.String("integration.platform", "ctaima"))
	assert.Contains(t, outer.Attributes(), attribute.Int("integration.attempt", 2))
	assert.Contains(t, outer.Attributes(), attribute.String("integration.outcome", "transient"))
	assert.Len(t, outer.Events(), 1)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestIntegrationMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	m, err := NewIntegrationMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.RecordDispatch(ctx, integration.PlatformNalanda, integration.OutcomeAccepted, 300*time.Millisecond)
	m.RecordDispatch(ctx, integration.PlatformNalanda, integration.OutcomeAccepted, 100*time.Millisecond)
	m.RecordDispatch(ctx, integration.PlatformNalanda, integration.OutcomeTransient, time.Second)
	m.RecordWebhook(ctx, integration.PlatformNalanda, "applied")
	m.RecordRemediation(ctx, integration.PlatformCTAIMA)
	m.RecordAuditRelay(ctx, integration.EventTypeIntegrationAccepted, "sent")
	m.RecordAuditRelay(ctx, integration.EventTypeIntegrationAccepted, "sent")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		byName[metric.Name] = metric
	}

	dispatches := byName["integration.dispatch.total"].Data.(metricdata.Sum[int64])
	counts := map[string]int64{}
	for _, dp := range dispatches.DataPoints {
		outcome, _ := dp.Attributes.Value("outcome")
		counts[outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"accepted": 2, "transient": 1}, counts)

	hist := byName["integration.dispatch.duration"].Data.(metricdata.Histogram[float64])
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(3), total)

	webhooks := byName["integration.webhook.total"].Data.(metricdata.Sum[int64])
	require.Len(t, webhooks.DataPoints, 1)
	assert.Equal(t, int64(1), webhooks.DataPoints[0].Value)

	remediations := byName["integration.remediation.created"].Data.(metricdata.Sum[int64])
	require.Len(t, remediations.DataPoints, 1)
	platform, _ := remediations.DataPoints[0].Attributes.Value("platform")
	assert.Equal(t, "ctaima", platform.AsString())

	relays := byName["integration.audit.relayed"].Data.(metricdata.Sum[int64])
	require.Len(t, relays.DataPoints, 1)
	assert.Equal(t, int64(2), relays.DataPoints[0].Value)
}
