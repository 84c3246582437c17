package integration

import "errors"

var (
	// Path errors
	ErrPathEmpty             = errors.New("integration: path is empty")
	ErrPathEmptySegment      = errors.New("integration: path contains an empty segment")
	ErrPathMalformed         = errors.New("integration: malformed path")
	ErrPathMultipleWildcards = errors.New("integration: path contains more than one wildcard")
	ErrPathWildcardValue     = errors.New("integration: wildcard path requires an array value")

	// Payload and template errors
	ErrPayloadValidation       = errors.New("integration: canonical payload validation failed")
	ErrShapeValidation         = errors.New("integration: destination payload does not match template shape")
	ErrTemplateNotFound        = errors.New("integration: mapping template not found")
	ErrTemplateInvalid         = errors.New("integration: invalid mapping template")
	ErrTemplateVersionConflict = errors.New("integration: mapping template version already exists")

	// Platform errors
	ErrPlatformNotConfigured = errors.New("integration: platform not configured")
	ErrPlatformInvalidCode   = errors.New("integration: invalid platform code")
	ErrTransientTransport    = errors.New("integration: transient transport error")
	ErrTerminalTransport     = errors.New("integration: terminal transport error")

	// Job errors
	ErrJobNotFound          = errors.New("integration: integration job not found")
	ErrJobInvalidTransition = errors.New("integration: invalid job state transition")
	ErrJobTerminal          = errors.New("integration: job is in a terminal state")
	ErrJobNotRetryable      = errors.New("integration: job is not retryable")
	ErrInvalidTenantID      = errors.New("integration: invalid tenant ID")
	ErrJobInvalidTraceID    = errors.New("integration: invalid trace ID")

	// Webhook errors
	ErrWebhookSignature     = errors.New("integration: invalid webhook signature")
	ErrWebhookPayload       = errors.New("integration: invalid webhook payload")
	ErrWebhookUnknownStatus = errors.New("integration: unknown webhook status")

	// Remediation errors
	ErrRemediationTaskNotFound = errors.New("integration: remediation task not found")
)
