package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/auth"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testTenantID = uuid.MustParse("7d1f5c8e-2b1e-4d3a-9a4f-0c6b8e2f1a11")

// withTenant injects JWT claims the way JWTAuth does
func withTenant(tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{TenantID: tenantID.String()})
		c.Next()
	}
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp testResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, payload integration.CanonicalPayload) (*integrationapp.DispatchResult, error) {
	args := m.Called(ctx, tenantID, platform, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.DispatchResult), args.Error(1)
}

func (m *MockDispatcher) RetryJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integrationapp.DispatchResult, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.DispatchResult), args.Error(1)
}

func (m *MockDispatcher) CancelJob(ctx context.Context, tenantID, jobID uuid.UUID, reason string) (*integration.IntegrationJob, error) {
	args := m.Called(ctx, tenantID, jobID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationJob), args.Error(1)
}

func (m *MockDispatcher) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integration.IntegrationJob, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationJob), args.Error(1)
}

func (m *MockDispatcher) ListJobs(ctx context.Context, tenantID uuid.UUID, filter integration.JobFilter) (shared.Paginated[integration.IntegrationJob], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[integration.IntegrationJob]), args.Error(1)
}

// MockPayloadBuilder is a mock implementation of PayloadBuilder
type MockPayloadBuilder struct {
	mock.Mock
}

func (m *MockPayloadBuilder) BuildCanonicalPayload(ctx context.Context, h integrationapp.TenantHierarchy) (*integrationapp.BuildPayloadResult, error) {
	args := m.Called(ctx, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.BuildPayloadResult), args.Error(1)
}

// MockHistoryReader is a mock implementation of JobHistoryReader
type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) GetHistory(ctx context.Context, tenantID, jobID uuid.UUID) (*integrationapp.JobHistory, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.JobHistory), args.Error(1)
}

// MockTemplateManager is a mock implementation of TemplateManager
type MockTemplateManager struct {
	mock.Mock
}

func (m *MockTemplateManager) GetTemplate(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, version *int) (*integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID, platform, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateManager) GetAllTemplates(ctx context.Context, tenantID uuid.UUID) ([]integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateManager) CreateTemplate(ctx context.Context, tenantID uuid.UUID, input integrationapp.CreateTemplateInput) (*integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateManager) ValidateDocument(doc []byte) integration.ValidationResult {
	args := m.Called(doc)
	return args.Get(0).(integration.ValidationResult)
}

func (m *MockTemplateManager) PreviewTemplate(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, tpl *integration.MappingTemplate, payload integration.CanonicalPayload) (*integrationapp.PreviewResult, error) {
	args := m.Called(ctx, tenantID, platform, tpl, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.PreviewResult), args.Error(1)
}

func (m *MockTemplateManager) SeedDefaults(ctx context.Context, tenantID uuid.UUID) ([]*integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.MappingTemplate), args.Error(1)
}

// MockReconciler is a mock implementation of WebhookReconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, platform integration.PlatformCode, body []byte, signature string) (*integrationapp.WebhookResult, error) {
	args := m.Called(ctx, platform, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.WebhookResult), args.Error(1)
}
