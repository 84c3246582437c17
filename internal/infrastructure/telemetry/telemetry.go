// Package telemetry wires OpenTelemetry traces, metrics and logs for the
// service and provides the instrumentation used by the integration pipeline.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obralink/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported in the resource of every signal
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Target is the OTLP/gRPC collector all three signals are sent to
type Target struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func (t Target) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(t.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Providers groups the signal providers and the profiler so they start and stop together
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
}

// Setup starts the providers enabled in cfg. Disabled signals get no-op
// providers, so callers never need to nil-check.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target := Target{Endpoint: cfg.CollectorEndpoint, Insecure: cfg.Insecure, ServiceName: cfg.ServiceName}

	p := &Providers{}
	var err error
	if p.Tracer, err = NewTracerProvider(ctx, Config{Target: target, Enabled: cfg.Enabled, SamplingRatio: cfg.SamplingRatio}, logger); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, target, cfg.Enabled && cfg.MetricsEnabled, cfg.MetricsInterval, logger); err != nil {
		_ = p.Tracer.Shutdown(ctx)
		return nil, err
	}
	if p.Logs, err = NewLoggerProvider(ctx, target, cfg.Enabled, logger); err != nil {
		_ = errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
		return nil, err
	}
	if p.Profiler, err = NewProfiler(cfg.Profiling, logger); err != nil {
		_ = errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx), p.Logs.Shutdown(ctx))
		return nil, err
	}
	if cfg.Profiling.SpanProfiles && p.Profiler.IsEnabled() && !p.Tracer.EnableSpanProfiles() {
		logger.Warn("Span profiles need tracing enabled; skipping")
	}
	return p, nil
}

// Shutdown flushes and stops every provider, reporting all failures
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Tracer.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Logs.Shutdown(ctx),
		p.Profiler.Stop(ctx),
	)
}

// flush runs an SDK shutdown bounded by shutdownTimeout
func flush(ctx context.Context, signal string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	return nil
}
