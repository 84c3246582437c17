package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/obralink/backend/internal/infrastructure/config"
)

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes([]string{"cpu", "inuse_space", "mutex_count"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileMutexCount,
	}, types)

	_, err = ParseProfileTypes([]string{"cpu", "heap"})
	assert.ErrorContains(t, err, `unknown profile type "heap"`)
}

func TestNewProfiler(t *testing.T) {
	t.Run("Disabled profiler is a no-op", func(t *testing.T) {
		p, err := NewProfiler(config.ProfilingConfig{}, nil)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop(context.Background()))
		assert.NoError(t, p.Stop(context.Background()))
	})

	t.Run("Enabled profiler needs a server", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true, ApplicationName: "obralink"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("Unknown profile type is refused before starting", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{
			Enabled:         true,
			ServerAddress:   "http://localhost:4040",
			ApplicationName: "obralink",
			ProfileTypes:    []string{"disk"},
		}, zap.NewNop())
		assert.ErrorContains(t, err, "disk")
	})
}

func TestWithProfileLabels(t *testing.T) {
	t.Run("Labels are visible inside the wrapped work", func(t *testing.T) {
		var platform, work string
		var hasRoute bool
		WithProfileLabels(context.Background(), func(ctx context.Context) {
			platform, _ = pprof.Label(ctx, ProfileLabelPlatform)
			work, _ = pprof.Label(ctx, ProfileLabelWork)
			_, hasRoute = pprof.Label(ctx, ProfileLabelRoute)
		}, ProfileLabelPlatform, "nalanda", ProfileLabelWork, "retry", ProfileLabelRoute, "")

		assert.Equal(t, "nalanda", platform)
		assert.Equal(t, "retry", work)
		assert.False(t, hasRoute)
	})

	t.Run("No labels runs the work directly", func(t *testing.T) {
		ran := false
		WithProfileLabels(context.Background(), func(context.Context) { ran = true })
		assert.True(t, ran)
	})
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	disabled := &TracerProvider{logger: zap.NewNop()}
	assert.False(t, disabled.EnableSpanProfiles())

	sdk := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
	tp := &TracerProvider{provider: sdk, logger: zap.NewNop()}

	require.True(t, tp.EnableSpanProfiles())
	require.True(t, tp.EnableSpanProfiles())
	assert.Equal(t, tp.profiled, otel.GetTracerProvider())

	_, span := tp.Tracer("dispatch").Start(context.Background(), "send")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
