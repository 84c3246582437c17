package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newJobEvent(eventType string) *integration.JobEvent {
	return &integration.JobEvent{
		EventEnvelope: shared.NewEventEnvelope(eventType, integration.AggregateTypeIntegrationJob, uuid.New(), uuid.New()),
		TraceID:       "trace-evt",
		Platform:      integration.PlatformCTAIMA,
		State:         integration.JobStateSent,
		Attempts:      2,
		Detail:        "queued",
	}
}

// handlerFunc adapts a function to shared.EventHandler
type handlerFunc struct {
	types []string
	fn    func(ctx context.Context, event shared.DomainEvent) error
}

func (h *handlerFunc) EventTypes() []string { return h.types }
func (h *handlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.fn(ctx, event)
}

// memoryStore is a map-backed idempotency store
type memoryStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMemoryStore() *memoryStore { return &memoryStore{keys: map[string]bool{}} }

func (s *memoryStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], s.err
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

var errBoom = errors.New("boom")

// MockOutboxRepository is a testify mock of shared.OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockOutboxRepository) ClaimBatch(ctx context.Context, now time.Time, stale time.Duration, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, now, stale, limit)
	entries, _ := args.Get(0).([]*shared.OutboxEntry)
	return entries, args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockOutboxRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogRepository is a testify mock of integration.AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *integration.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]integration.AuditEntry, error) {
	args := m.Called(ctx, tenantID, jobID)
	entries, _ := args.Get(0).([]integration.AuditEntry)
	return entries, args.Error(1)
}
