package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/config"
)

func testSettings(base string) Settings {
	return Settings{
		APIBase:        base,
		APIKey:         "key-123",
		ImportEndpoint: "/imports",
		Timeout:        2 * time.Second,
	}
}

func testRequest() *integration.DispatchRequest {
	return &integration.DispatchRequest{
		TenantID: uuid.MustParse("7d1f5c8e-2b1e-4d3a-9a4f-0c6b8e2f1a11"),
		JobID:    uuid.New(),
		TraceID:  "trace-abc",
		SiteCode: "S-01",
		Payload:  map[string]any{"empresa": map[string]any{"cif": "B12345678"}},
		Digest:   "d1",
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "missing base", mutate: func(s *Settings) { s.APIBase = "" }, wantErr: "APIBase"},
		{name: "base not a URL", mutate: func(s *Settings) { s.APIBase = "nalanda" }, wantErr: "APIBase"},
		{name: "missing key", mutate: func(s *Settings) { s.APIKey = "" }, wantErr: "APIKey"},
		{name: "relative endpoint", mutate: func(s *Settings) { s.ImportEndpoint = "imports" }, wantErr: "ImportEndpoint"},
		{name: "zero timeout", mutate: func(s *Settings) { s.Timeout = 0 }, wantErr: "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings("https://api.nalanda.test")
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPAdapter_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Posts the payload with integration headers", func(t *testing.T) {
		var got *http.Request
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"status":"accepted"}`))
		}))
		defer server.Close()

		adapter, err := NewHTTPAdapter(integration.PlatformNalanda, testSettings(server.URL), server.Client(), nil)
		require.NoError(t, err)

		resp, err := adapter.Send(ctx, testRequest())
		require.NoError(t, err)
		assert.True(t, resp.OK)
		assert.Equal(t, integration.PlatformStatusAccepted, resp.Status)
		assert.Equal(t, http.StatusOK, resp.Code)

		require.NotNil(t, got)
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, "/imports", got.URL.Path)
		assert.Equal(t, "Bearer key-123", got.Header.Get("Authorization"))
		assert.Equal(t, "trace-abc", got.Header.Get(HeaderTraceID))
		assert.Equal(t, "trace-abc", got.Header.Get(HeaderIdempotencyKey))
		assert.Equal(t, "sha256=d1", got.Header.Get(HeaderPayloadDigest))
		assert.Equal(t, "7d1f5c8e-2b1e-4d3a-9a4f-0c6b8e2f1a11", got.Header.Get(HeaderTenantID))
		assert.Equal(t, "B12345678", body["empresa"].(map[string]any)["cif"])
	})

	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantMsg   string
		wantOK    bool
		wantState string
	}{
		{name: "server error is transient", status: 503, body: "", wantErr: integration.ErrTransientTransport, wantMsg: "Service Unavailable"},
		{name: "throttling is transient", status: 429, body: `{"ok":false,"errors":[{"message":"slow down"}]}`, wantErr: integration.ErrTransientTransport, wantMsg: "slow down"},
		{name: "bad request is terminal", status: 400, body: `{"ok":false,"status":"rejected","errors":[{"message":"CIF unknown","code":"E12"}]}`, wantErr: integration.ErrTerminalTransport, wantMsg: "CIF unknown", wantState: "rejected"},
		{name: "plain text error body", status: 422, body: "missing obra", wantErr: integration.ErrTerminalTransport, wantMsg: "missing obra"},
		{name: "non JSON success", status: 202, body: "queued", wantOK: true},
		{name: "business rejection on 200", status: 200, body: `{"ok":false,"status":"rejected","errors":[{"message":"expired"}]}`, wantMsg: "expired", wantState: "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter, err := NewHTTPAdapter(integration.PlatformCTAIMA, testSettings(server.URL), server.Client(), nil)
			require.NoError(t, err)

			resp, err := adapter.Send(ctx, testRequest())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.wantOK, resp.OK)
			assert.Equal(t, tt.wantState, resp.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, []string{tt.wantMsg}, resp.ErrorMessages())
			}
		})
	}

	t.Run("Timeout is transient without a response", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		adapter, err := NewHTTPAdapter(integration.PlatformCTAIMA, testSettings(server.URL), server.Client(), nil)
		require.NoError(t, err)

		sendCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		resp, err := adapter.Send(sendCtx, testRequest())
		assert.ErrorIs(t, err, integration.ErrTransientTransport)
		assert.Nil(t, resp)
	})

	t.Run("Unreachable platform is transient", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		base := server.URL
		server.Close()

		adapter, err := NewHTTPAdapter(integration.PlatformCTAIMA, testSettings(base), nil, nil)
		require.NoError(t, err)
		_, err = adapter.Send(ctx, testRequest())
		assert.ErrorIs(t, err, integration.ErrTransientTransport)
	})

	t.Run("Rate limit wait beyond the deadline is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		settings := testSettings(server.URL)
		settings.RateLimit = 0.01
		settings.Burst = 1
		adapter, err := NewHTTPAdapter(integration.PlatformCTAIMA, settings, server.Client(), nil)
		require.NoError(t, err)

		_, err = adapter.Send(ctx, testRequest())
		require.NoError(t, err)

		sendCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err = adapter.Send(sendCtx, testRequest())
		assert.ErrorIs(t, err, integration.ErrTransientTransport)
	})
}

func TestNewHTTPAdapter_Invalid(t *testing.T) {
	_, err := NewHTTPAdapter("X", testSettings("https://a.test"), nil, nil)
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidCode)

	_, err = NewHTTPAdapter(integration.PlatformNalanda, Settings{}, nil, nil)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	registry, err := NewRegistryFromConfig(map[string]config.PlatformConfig{
		"Nalanda": {APIBase: "https://api.nalanda.test/", APIKey: "k", ImportEndpoint: "/imports", Timeout: time.Second},
		"ctaima":  {APIBase: "https://api.ctaima.test", APIKey: "k", ImportEndpoint: "/v2/import", Timeout: time.Second, RateLimit: 5, Burst: 2},
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []integration.PlatformCode{integration.PlatformCTAIMA, integration.PlatformNalanda}, registry.Platforms())

	adapter, err := registry.Get(integration.PlatformNalanda)
	require.NoError(t, err)
	assert.Equal(t, integration.PlatformNalanda, adapter.Platform())
	assert.Equal(t, "https://api.nalanda.test", adapter.(*HTTPAdapter).settings.APIBase)

	_, err = registry.Get(integration.PlatformEcoordina)
	assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)

	_, err = NewRegistryFromConfig(map[string]config.PlatformConfig{
		"ecoordina": {APIBase: "https://api.ecoordina.test", ImportEndpoint: "/imports", Timeout: time.Second},
	}, nil, nil)
	assert.ErrorContains(t, err, "APIKey")
}

func TestHMACVerifier(t *testing.T) {
	verifier := NewHMACVerifier(map[string]config.PlatformConfig{
		"nalanda": {WebhookSecret: "s3cret"},
		"ctaima":  {},
	})
	body := []byte(`{"referencia":"trace-abc","estado":"ACEPTADO"}`)

	sig, err := verifier.Sign(integration.PlatformNalanda, body)
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	assert.NoError(t, verifier.Verify(integration.PlatformNalanda, body, sig))
	assert.NoError(t, verifier.Verify(integration.PlatformNalanda, body, "sha256="+sig))
	assert.NoError(t, verifier.Verify(integration.PlatformNalanda, body, " SHA256="+sig))

	assert.ErrorIs(t, verifier.Verify(integration.PlatformNalanda, []byte(`{}`), sig), integration.ErrWebhookSignature)
	assert.ErrorIs(t, verifier.Verify(integration.PlatformNalanda, body, "sha256=zz"), integration.ErrWebhookSignature)
	assert.ErrorIs(t, verifier.Verify(integration.PlatformNalanda, body, ""), integration.ErrWebhookSignature)
	assert.ErrorIs(t, verifier.Verify(integration.PlatformCTAIMA, body, sig), integration.ErrWebhookSignature)

	_, err = verifier.Sign(integration.PlatformCTAIMA, body)
	assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)
}
