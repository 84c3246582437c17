package integration

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// PlatformCode identifies an external coordination platform
// ---------------------------------------------------------------------------

// PlatformCode identifies an external coordination platform
type PlatformCode string

const (
	// PlatformNalanda is the Nalanda (Obralia) platform
	PlatformNalanda PlatformCode = "nalanda"
	// PlatformCTAIMA is the CTAIMA CAE platform
	PlatformCTAIMA PlatformCode = "ctaima"
	// PlatformEcoordina is the Ecoordina platform
	PlatformEcoordina PlatformCode = "ecoordina"
)

var platformCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

// ParsePlatformCode normalizes and validates a platform code
func ParsePlatformCode(raw string) (PlatformCode, error) {
	code := PlatformCode(strings.ToLower(strings.TrimSpace(raw)))
	if !code.IsValid() {
		return "", ErrPlatformInvalidCode
	}
	return code, nil
}

// IsValid returns true if the code is syntactically valid.
// Platforms beyond the built-in ones are allowed when configured.
func (c PlatformCode) IsValid() bool {
	return platformCodePattern.MatchString(string(c))
}

// IsBuiltIn returns true for the platforms with default templates
func (c PlatformCode) IsBuiltIn() bool {
	switch c {
	case PlatformNalanda, PlatformCTAIMA, PlatformEcoordina:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformNalanda:
		return "Nalanda"
	case PlatformCTAIMA:
		return "CTAIMA"
	case PlatformEcoordina:
		return "Ecoordina"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Adapter contract
// ---------------------------------------------------------------------------

// Platform response statuses
const (
	PlatformStatusAccepted   = "accepted"
	PlatformStatusRejected   = "rejected"
	PlatformStatusProcessing = "processing"
)

// PlatformError is one error message reported by a platform
type PlatformError struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
}

// DispatchRequest is what an adapter sends to a platform
type DispatchRequest struct {
	TenantID uuid.UUID
	JobID    uuid.UUID
	TraceID  string
	SiteCode string
	Payload  map[string]any
	Digest   string
}

// DispatchResponse is the normalized platform answer to a dispatch
type DispatchResponse struct {
	OK     bool            `json:"ok"`
	Status string          `json:"status,omitempty"`
	Code   int             `json:"code,omitempty"`
	Errors []PlatformError `json:"errors,omitempty"`
}

// ErrorMessages returns the non-empty error messages of the response
func (r *DispatchResponse) ErrorMessages() []string {
	if r == nil {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if m := strings.TrimSpace(e.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// PlatformAdapter is the port for sending transformed payloads to one platform.
// Send returns an error wrapping ErrTransientTransport for 5xx, 429 and timeouts,
// and ErrTerminalTransport for other 4xx responses. The response is returned
// alongside the error when the platform answered.
type PlatformAdapter interface {
	// Platform returns the platform this adapter serves
	Platform() PlatformCode
	// Send dispatches one payload
	Send(ctx context.Context, req *DispatchRequest) (*DispatchResponse, error)
}

// PlatformAdapterRegistry looks up adapters by platform
type PlatformAdapterRegistry interface {
	Get(code PlatformCode) (PlatformAdapter, error)
	Platforms() []PlatformCode
}

// ---------------------------------------------------------------------------
// Dispatch outcome classification
// ---------------------------------------------------------------------------

// OutcomeKind is the job-level meaning of one dispatch attempt
type OutcomeKind string

const (
	OutcomeAccepted  OutcomeKind = "accepted"
	OutcomeQueued    OutcomeKind = "queued"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeTransient OutcomeKind = "transient"
)

// DispatchOutcome is the classified result of one dispatch attempt
type DispatchOutcome struct {
	Kind     OutcomeKind
	Response *DispatchResponse
	Reason   string
}

// ClassifyDispatch maps an adapter result onto an outcome.
// Context deadline and cancellation are transient like a 5xx.
func ClassifyDispatch(resp *DispatchResponse, err error) DispatchOutcome {
	if err != nil {
		out := DispatchOutcome{Kind: OutcomeTransient, Response: resp, Reason: err.Error()}
		if errors.Is(err, ErrTerminalTransport) {
			out.Kind = OutcomeRejected
		}
		return out
	}
	if resp == nil {
		return DispatchOutcome{Kind: OutcomeTransient, Reason: "empty platform response"}
	}

	switch {
	case resp.Code >= http.StatusInternalServerError || resp.Code == http.StatusTooManyRequests:
		return DispatchOutcome{Kind: OutcomeTransient, Response: resp, Reason: http.StatusText(resp.Code)}
	case resp.Code >= http.StatusBadRequest:
		return DispatchOutcome{Kind: OutcomeRejected, Response: resp, Reason: http.StatusText(resp.Code)}
	}

	switch strings.ToLower(resp.Status) {
	case PlatformStatusAccepted:
		return DispatchOutcome{Kind: OutcomeAccepted, Response: resp}
	case PlatformStatusRejected:
		return DispatchOutcome{Kind: OutcomeRejected, Response: resp, Reason: "rejected by platform"}
	}
	if !resp.OK {
		return DispatchOutcome{Kind: OutcomeRejected, Response: resp, Reason: "platform reported failure"}
	}
	return DispatchOutcome{Kind: OutcomeQueued, Response: resp}
}
