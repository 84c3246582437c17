package integration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Job Repository
// =============================================================================

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, job *integration.IntegrationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.IntegrationJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationJob), args.Error(1)
}

func (m *MockJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.IntegrationJob, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationJob), args.Error(1)
}

func (m *MockJobRepository) FindByTraceID(ctx context.Context, traceID string) (*integration.IntegrationJob, error) {
	args := m.Called(ctx, traceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.IntegrationJob), args.Error(1)
}

func (m *MockJobRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*integration.IntegrationJob, error) {
	args := m.Called(ctx, now, lease, limit)
	return args.Get(0).([]*integration.IntegrationJob), args.Error(1)
}

func (m *MockJobRepository) FindAwaitingRemediation(ctx context.Context, limit int) ([]*integration.IntegrationJob, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*integration.IntegrationJob), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter integration.JobFilter) ([]integration.IntegrationJob, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]integration.IntegrationJob), args.Get(1).(int64), args.Error(2)
}

// =============================================================================
// Mock Template Repository
// =============================================================================

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, t *integration.MappingTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTemplateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode) (*integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindByVersion(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, version int) (*integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID, platform, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.MappingTemplate, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]integration.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) NextVersion(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode) (int, error) {
	args := m.Called(ctx, tenantID, platform)
	return args.Int(0), args.Error(1)
}

// =============================================================================
// Mock Platform Adapter and Registry
// =============================================================================

type MockPlatformAdapter struct {
	mock.Mock
}

func (m *MockPlatformAdapter) Platform() integration.PlatformCode {
	args := m.Called()
	return args.Get(0).(integration.PlatformCode)
}

func (m *MockPlatformAdapter) Send(ctx context.Context, req *integration.DispatchRequest) (*integration.DispatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.DispatchResponse), args.Error(1)
}

type MockAdapterRegistry struct {
	mock.Mock
}

func (m *MockAdapterRegistry) Get(code integration.PlatformCode) (integration.PlatformAdapter, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.PlatformAdapter), args.Error(1)
}

func (m *MockAdapterRegistry) Platforms() []integration.PlatformCode {
	args := m.Called()
	return args.Get(0).([]integration.PlatformCode)
}

// =============================================================================
// Mock Remediation Creator
// =============================================================================

type MockRemediationCreator struct {
	mock.Mock
}

func (m *MockRemediationCreator) Create(ctx context.Context, task *integration.RemediationTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRemediationCreator) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integration.RemediationTask, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemediationTask), args.Error(1)
}

// =============================================================================
// Mock Audit Log Repository
// =============================================================================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *integration.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]integration.AuditEntry, error) {
	args := m.Called(ctx, tenantID, jobID)
	return args.Get(0).([]integration.AuditEntry), args.Error(1)
}

// =============================================================================
// Webhook collaborators
// =============================================================================

type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) Verify(platform integration.PlatformCode, body []byte, signature string) error {
	args := m.Called(platform, body, signature)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Recording metrics
// =============================================================================

type recordingMetrics struct {
	mu           sync.Mutex
	dispatches   []integration.OutcomeKind
	webhooks     []string
	remediations int
}

func (r *recordingMetrics) RecordDispatch(_ context.Context, _ integration.PlatformCode, outcome integration.OutcomeKind, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, outcome)
}

func (r *recordingMetrics) RecordWebhook(_ context.Context, _ integration.PlatformCode, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks = append(r.webhooks, result)
}

func (r *recordingMetrics) RecordRemediation(context.Context, integration.PlatformCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remediations++
}
