package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultMetricsInterval = time.Minute

// MeterProvider backs the integration and HTTP instruments. Without export it
// hands out meters from the global provider, which is a no-op unless a test installs one.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
}

// NewMeterProvider starts periodic OTLP export every interval (one minute when
// unset) and installs the provider globally
func NewMeterProvider(ctx context.Context, target Target, enabled bool, interval time.Duration, logger *zap.Logger) (*MeterProvider, error) {
	if !enabled {
		logger.Info("Metrics export disabled")
		return &MeterProvider{}, nil
	}
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target.Endpoint)}
	if target.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := target.resource()
	if err != nil {
		return nil, err
	}

	sdk := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(sdk)
	logger.Info("Metrics export started",
		zap.String("collector_endpoint", target.Endpoint),
		zap.Duration("export_interval", interval))
	return &MeterProvider{sdk: sdk}, nil
}

func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	return flush(ctx, "meter", mp.sdk.Shutdown)
}

func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp == nil || mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

func (mp *MeterProvider) IsEnabled() bool { return mp.sdk != nil }
