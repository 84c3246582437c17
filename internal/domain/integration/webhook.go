package integration

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WebhookEvent is a platform event normalized to the canonical vocabulary
type WebhookEvent struct {
	TraceID   string          `json:"traceId"`
	RawStatus string          `json:"status"`
	State     JobState        `json:"state"`
	Errors    []PlatformError `json:"errors,omitempty"`
}

// WebhookVerifier checks the signature of a raw webhook body
type WebhookVerifier interface {
	Verify(platform PlatformCode, body []byte, signature string) error
}

// WebhookFormat describes where a platform puts the event fields in its native JSON.
// Each field is a Path; ErrorMessage is resolved inside each element of Errors.
type WebhookFormat struct {
	TraceID      string `json:"traceId"`
	Status       string `json:"status"`
	Errors       string `json:"errors"`
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
	DocumentID   string `json:"documentId"`
}

// DefaultWebhookFormat is the layout used by platforms without a specific one
var DefaultWebhookFormat = WebhookFormat{
	TraceID:      "traceId",
	Status:       "status",
	Errors:       "errors",
	ErrorMessage: "message",
	ErrorCode:    "code",
	DocumentID:   "documentId",
}

var builtInWebhookFormats = map[PlatformCode]WebhookFormat{
	PlatformNalanda: {
		TraceID:      "referencia",
		Status:       "estado",
		Errors:       "errores",
		ErrorMessage: "mensaje",
		ErrorCode:    "codigo",
		DocumentID:   "idDocumento",
	},
	PlatformCTAIMA: {
		TraceID:      "trace_id",
		Status:       "status",
		Errors:       "errors",
		ErrorMessage: "message",
		ErrorCode:    "code",
		DocumentID:   "document_id",
	},
	PlatformEcoordina: {
		TraceID:      "data.traceId",
		Status:       "data.status",
		Errors:       "data.errors",
		ErrorMessage: "description",
		ErrorCode:    "code",
		DocumentID:   "documentRef",
	},
}

// WebhookFormatFor returns the built-in layout for a platform, or the default
func WebhookFormatFor(platform PlatformCode) WebhookFormat {
	if f, ok := builtInWebhookFormats[platform]; ok {
		return f
	}
	return DefaultWebhookFormat
}

// webhookStatusVocabulary maps platform status words to canonical states
var webhookStatusVocabulary = map[string]JobState{
	"accepted":   JobStateAccepted,
	"aceptado":   JobStateAccepted,
	"validado":   JobStateAccepted,
	"approved":   JobStateAccepted,
	"ok":         JobStateAccepted,
	"rejected":   JobStateRejected,
	"rechazado":  JobStateRejected,
	"denied":     JobStateRejected,
	"ko":         JobStateRejected,
	"processing": JobStateSent,
	"queued":     JobStateSent,
	"received":   JobStateSent,
	"pendiente":  JobStateSent,
	"en_proceso": JobStateSent,
	"error":      JobStateError,
	"failed":     JobStateError,
	"fallo":      JobStateError,
}

// NormalizeWebhookStatus maps a platform status word to a canonical job state
func NormalizeWebhookStatus(raw string) (JobState, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	state, ok := webhookStatusVocabulary[key]
	return state, ok
}

// ParseWebhookEvent extracts a WebhookEvent from a platform's native JSON body
func ParseWebhookEvent(format WebhookFormat, body []byte) (*WebhookEvent, error) {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookPayload, err)
	}

	traceID := strings.TrimSpace(stringify(resolveField(root, format.TraceID)))
	if traceID == "" {
		return nil, fmt.Errorf("%w: missing trace ID", ErrWebhookPayload)
	}
	rawStatus := stringify(resolveField(root, format.Status))
	state, ok := NormalizeWebhookStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWebhookUnknownStatus, rawStatus)
	}

	event := &WebhookEvent{TraceID: traceID, RawStatus: rawStatus, State: state}
	items, _ := asSlice(resolveField(root, format.Errors))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			event.Errors = append(event.Errors, PlatformError{Message: v})
		case map[string]any:
			event.Errors = append(event.Errors, PlatformError{
				Message:    stringify(resolveField(v, format.ErrorMessage)),
				Code:       stringify(resolveField(v, format.ErrorCode)),
				DocumentID: stringify(resolveField(v, format.DocumentID)),
			})
		}
	}
	return event, nil
}

func resolveField(root any, path string) any {
	if path == "" {
		return nil
	}
	p, err := ParsePath(path)
	if err != nil {
		return nil
	}
	return p.Get(root)
}
