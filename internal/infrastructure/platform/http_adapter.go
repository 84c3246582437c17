package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/config"
	"github.com/obralink/backend/internal/infrastructure/telemetry"
)

const (
	// maxResponseSize limits how much of a platform answer is read
	maxResponseSize = 1 << 20

	// HeaderPayloadDigest carries the canonical SHA-256 digest of the body
	HeaderPayloadDigest = "X-Payload-Digest"
	// HeaderTraceID carries the integration trace ID
	HeaderTraceID = "X-Trace-Id"
	// HeaderTenantID carries the tenant the payload belongs to
	HeaderTenantID = "X-Tenant-Id"
	// HeaderIdempotencyKey lets platforms deduplicate replays of one job
	HeaderIdempotencyKey = "Idempotency-Key"
)

var validate = validator.New()

// Settings are the validated connection settings of one platform
type Settings struct {
	APIBase        string        `validate:"required,url"`
	APIKey         string        `validate:"required"`
	ImportEndpoint string        `validate:"required,startswith=/"`
	Timeout        time.Duration `validate:"gt=0"`
	RateLimit      float64       `validate:"gte=0"`
	Burst          int           `validate:"gte=0"`
}

// SettingsFromConfig converts the configuration block of a platform
func SettingsFromConfig(cfg config.PlatformConfig) Settings {
	return Settings{
		APIBase:        strings.TrimRight(cfg.APIBase, "/"),
		APIKey:         cfg.APIKey,
		ImportEndpoint: cfg.ImportEndpoint,
		Timeout:        cfg.Timeout,
		RateLimit:      cfg.RateLimit,
		Burst:          cfg.Burst,
	}
}

// Validate checks the settings
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid platform settings: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// HTTPAdapter sends transformed payloads to a platform import endpoint as JSON
type HTTPAdapter struct {
	code       integration.PlatformCode
	settings   Settings
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewHTTPAdapter creates an adapter for one platform.
// A nil client gets one with the configured timeout. A zero rate limit disables throttling.
func NewHTTPAdapter(code integration.PlatformCode, settings Settings, client *http.Client, logger *zap.Logger) (*HTTPAdapter, error) {
	if !code.IsValid() {
		return nil, integration.ErrPlatformInvalidCode
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	if client == nil {
		client = &http.Client{Timeout: settings.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if settings.RateLimit > 0 {
		burst := settings.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.RateLimit), burst)
	}

	return &HTTPAdapter{
		code:       code,
		settings:   settings,
		httpClient: client,
		limiter:    limiter,
		logger:     logger.With(zap.String("platform", code.String())),
	}, nil
}

// Platform returns the platform this adapter serves
func (a *HTTPAdapter) Platform() integration.PlatformCode {
	return a.code
}

// Send posts the payload to the import endpoint and normalizes the answer
func (a *HTTPAdapter) Send(ctx context.Context, req *integration.DispatchRequest) (*integration.DispatchResponse, error) {
	ctx, span := telemetry.StartClientSpan(ctx, "platform.send",
		telemetry.AttrPlatform.String(a.code.String()),
		telemetry.AttrTraceID.String(req.TraceID),
		telemetry.AttrJobID.String(req.JobID.String()),
	)

	resp, err := a.send(ctx, req)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.Code))
	}
	telemetry.EndSpan(span, sendOutcome(resp, err), err)
	return resp, err
}

func sendOutcome(resp *integration.DispatchResponse, err error) string {
	switch {
	case errors.Is(err, integration.ErrTransientTransport):
		return "transient"
	case err != nil:
		return "terminal"
	case resp != nil && resp.OK:
		return "accepted"
	default:
		return "rejected"
	}
}

func (a *HTTPAdapter) send(ctx context.Context, req *integration.DispatchRequest) (*integration.DispatchResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s rate limit wait: %v", integration.ErrTransientTransport, a.code, err)
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: marshal payload: %v", integration.ErrTerminalTransport, a.code, err)
	}

	url := a.settings.APIBase + a.settings.ImportEndpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create request: %v", integration.ErrTerminalTransport, a.code, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.settings.APIKey)
	httpReq.Header.Set(HeaderTraceID, req.TraceID)
	httpReq.Header.Set(HeaderTenantID, req.TenantID.String())
	httpReq.Header.Set(HeaderIdempotencyKey, req.TraceID)
	if req.Digest != "" {
		httpReq.Header.Set(HeaderPayloadDigest, "sha256="+req.Digest)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	started := time.Now()
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Warn("Platform request failed",
			zap.String("trace_id", req.TraceID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrTransientTransport, a.code, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", integration.ErrTransientTransport, a.code, err)
	}

	resp := decodeResponse(httpResp.StatusCode, raw)
	a.logger.Debug("Platform answered",
		zap.String("trace_id", req.TraceID),
		zap.Int("status_code", httpResp.StatusCode),
		zap.String("status", resp.Status),
		zap.Duration("elapsed", time.Since(started)))

	switch {
	case httpResp.StatusCode >= 500, httpResp.StatusCode == http.StatusTooManyRequests:
		return resp, fmt.Errorf("%w: %s: HTTP %d", integration.ErrTransientTransport, a.code, httpResp.StatusCode)
	case httpResp.StatusCode >= 400:
		return resp, fmt.Errorf("%w: %s: HTTP %d", integration.ErrTerminalTransport, a.code, httpResp.StatusCode)
	}
	return resp, nil
}

// decodeResponse reads the platform JSON answer. Bodies that are not the
// expected JSON keep the HTTP status and carry the status text as the error.
func decodeResponse(statusCode int, raw []byte) *integration.DispatchResponse {
	resp := &integration.DispatchResponse{}
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, resp) == nil {
		resp.Code = statusCode
		if statusCode >= 400 {
			resp.OK = false
			if len(resp.Errors) == 0 {
				resp.Errors = []integration.PlatformError{{Message: http.StatusText(statusCode)}}
			}
		}
		return resp
	}

	resp = &integration.DispatchResponse{Code: statusCode, OK: statusCode < 300}
	if statusCode >= 400 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" || len(msg) > 512 {
			msg = http.StatusText(statusCode)
		}
		resp.Errors = []integration.PlatformError{{Message: msg}}
	}
	return resp
}

var _ integration.PlatformAdapter = (*HTTPAdapter)(nil)
