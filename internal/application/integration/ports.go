package integration

import (
	"context"
	"time"

	"github.com/obralink/backend/internal/domain/integration"
)

// Metrics records integration activity. Implemented by the telemetry package.
type Metrics interface {
	RecordDispatch(ctx context.Context, platform integration.PlatformCode, outcome integration.OutcomeKind, duration time.Duration)
	RecordWebhook(ctx context.Context, platform integration.PlatformCode, result string)
	RecordRemediation(ctx context.Context, platform integration.PlatformCode)
}

type noopMetrics struct{}

func (noopMetrics) RecordDispatch(context.Context, integration.PlatformCode, integration.OutcomeKind, time.Duration) {
}
func (noopMetrics) RecordWebhook(context.Context, integration.PlatformCode, string) {}
func (noopMetrics) RecordRemediation(context.Context, integration.PlatformCode)    {}

// DocumentURLSigner turns a storage key into a time-limited download URL
type DocumentURLSigner interface {
	SignDocumentURL(ctx context.Context, key string) (string, error)
}

// TemplateDocumentValidator checks a raw template document before it is decoded.
// It returns one message per violation.
type TemplateDocumentValidator interface {
	ValidateDocument(doc []byte) []string
}

// Webhook results recorded in metrics
const (
	WebhookResultApplied          = "applied"
	WebhookResultDuplicate        = "duplicate"
	WebhookResultInvalidSignature = "invalid_signature"
	WebhookResultInvalidPayload   = "invalid_payload"
	WebhookResultFailed           = "failed"
)
