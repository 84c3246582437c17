package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)

// newSQLiteDB opens a private in-memory database with the full schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return testNow },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockPostgres returns a GORM postgres connection backed by sqlmock
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	return db, mock, mockDB
}

// recordingSaver captures events handed to the outbox
type recordingSaver struct {
	events []shared.DomainEvent
	err    error
}

func (s *recordingSaver) SaveEvents(_ context.Context, tx any, events ...shared.DomainEvent) error {
	if _, ok := tx.(*gorm.DB); !ok {
		panic("outbox saver called without a transaction")
	}
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

func newTestJob(t *testing.T, tenantID uuid.UUID, traceID string) *integration.IntegrationJob {
	t.Helper()
	payload := integration.CanonicalPayload{
		Company: integration.Company{TaxID: "B12345678", Name: "Acme Obras SL"},
		Site:    integration.Site{Code: "S-01", Name: "Torre Norte", RiskProfile: integration.RiskProfileHigh},
		Workers: []integration.Worker{{IDNumber: "12345678Z", FirstName: "Ana"}},
	}
	job, err := integration.NewIntegrationJob(tenantID, integration.PlatformNalanda, traceID, payload,
		map[string]any{"empresa": map[string]any{"cif": "B12345678"}}, 3, 5)
	require.NoError(t, err)
	job.PayloadDigest = "d1"
	return job
}

// failTransiently runs one attempt that ends in a scheduled retry
func failTransiently(t *testing.T, job *integration.IntegrationJob, now time.Time) {
	t.Helper()
	require.NoError(t, job.LeaseAttempt(now, time.Minute))
	require.NoError(t, job.ApplyDispatchOutcome(integration.DispatchOutcome{
		Kind:     integration.OutcomeTransient,
		Response: &integration.DispatchResponse{Code: 503},
		Reason:   "Service Unavailable",
	}, now))
}
