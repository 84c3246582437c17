package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/obralink/backend/internal/domain/integration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	attrPlatform = attribute.Key("platform")
	attrOutcome  = attribute.Key("outcome")
	attrResult   = attribute.Key("result")
	attrEvent    = attribute.Key("event_type")
)

// IntegrationMetrics records dispatch, webhook and remediation activity
type IntegrationMetrics struct {
	dispatches       metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	webhooks         metric.Int64Counter
	remediations     metric.Int64Counter
	auditRelays      metric.Int64Counter
}

// NewIntegrationMetrics registers the pipeline instruments on meter
func NewIntegrationMetrics(meter metric.Meter) (*IntegrationMetrics, error) {
	dispatches, err := meter.Int64Counter("integration.dispatch.total",
		metric.WithDescription("Dispatch attempts by platform and outcome"),
		metric.WithUnit("{attempt}"))
	if err != nil {
		return nil, fmt.Errorf("dispatch counter: %w", err)
	}
	duration, err := meter.Float64Histogram("integration.dispatch.duration",
		metric.WithDescription("Platform call latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		return nil, fmt.Errorf("dispatch histogram: %w", err)
	}
	webhooks, err := meter.Int64Counter("integration.webhook.total",
		metric.WithDescription("Inbound platform webhooks by result"),
		metric.WithUnit("{webhook}"))
	if err != nil {
		return nil, fmt.Errorf("webhook counter: %w", err)
	}
	remediations, err := meter.Int64Counter("integration.remediation.created",
		metric.WithDescription("Remediation tasks opened for terminal failures"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("remediation counter: %w", err)
	}
	auditRelays, err := meter.Int64Counter("integration.audit.relayed",
		metric.WithDescription("Outbox entries relayed to the audit log by result"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("audit relay counter: %w", err)
	}
	return &IntegrationMetrics{
		dispatches:       dispatches,
		dispatchDuration: duration,
		webhooks:         webhooks,
		remediations:     remediations,
		auditRelays:      auditRelays,
	}, nil
}

// RecordDispatch counts one attempt and its latency
func (m *IntegrationMetrics) RecordDispatch(ctx context.Context, platform integration.PlatformCode, outcome integration.OutcomeKind, d time.Duration) {
	attrs := metric.WithAttributes(attrPlatform.String(string(platform)), attrOutcome.String(string(outcome)))
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordWebhook counts one inbound webhook
func (m *IntegrationMetrics) RecordWebhook(ctx context.Context, platform integration.PlatformCode, result string) {
	m.webhooks.Add(ctx, 1, metric.WithAttributes(attrPlatform.String(string(platform)), attrResult.String(result)))
}

// RecordRemediation counts one created remediation task
func (m *IntegrationMetrics) RecordRemediation(ctx context.Context, platform integration.PlatformCode) {
	m.remediations.Add(ctx, 1, metric.WithAttributes(attrPlatform.String(string(platform))))
}

// RecordAuditRelay counts one outbox entry relayed to the audit log
func (m *IntegrationMetrics) RecordAuditRelay(ctx context.Context, eventType, result string) {
	m.auditRelays.Add(ctx, 1, metric.WithAttributes(attrEvent.String(eventType), attrResult.String(result)))
}
