//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/migration"
	"github.com/obralink/backend/migrations"
)

// newPostgresDB starts PostgreSQL, applies the embedded migrations and returns a GORM handle
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("obralink_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migration.New(sqlDB, migration.Embedded(migrations.FS), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	return db
}

func TestPostgres_IntegrationJobLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	saver := &recordingSaver{}
	repo := NewGormIntegrationJobRepository(db, saver)
	tenantID := uuid.New()

	job := newTestJob(t, tenantID, "trace-pg-1")
	require.NoError(t, repo.Save(ctx, job))

	now := time.Now().UTC().Truncate(time.Millisecond)
	failTransiently(t, job, now)
	require.NoError(t, repo.Save(ctx, job))

	loaded, err := repo.FindByTraceID(ctx, "trace-pg-1")
	require.NoError(t, err)
	assert.Equal(t, integration.JobStateError, loaded.State)
	assert.Equal(t, 1, loaded.Attempts)
	assert.Equal(t, "B12345678", loaded.TransformedPayload["empresa"].(map[string]any)["cif"])
	require.NotNil(t, loaded.NextRetryAt)
	assert.NotEmpty(t, saver.events)

	stale, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel("superseded", now))
	require.NoError(t, repo.Save(ctx, loaded))
	require.NoError(t, stale.BeginRetry("trace-pg-2", now))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestPostgres_ClaimDueSkipsLockedRows(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormIntegrationJobRepository(db, nil)
	tenantID := uuid.New()

	past := time.Now().UTC().Add(-2 * time.Hour)
	for i := 0; i < 20; i++ {
		job := newTestJob(t, tenantID, uuid.NewString())
		failTransiently(t, job, past)
		require.NoError(t, repo.Save(ctx, job))
	}

	var (
		mu      sync.Mutex
		claimed = map[uuid.UUID]int{}
		wg      sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs, err := repo.ClaimDue(ctx, time.Now().UTC(), time.Minute, 5)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			for _, j := range jobs {
				claimed[j.ID]++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, 20)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "job %s claimed twice", id)
	}
}

func TestPostgres_TemplateVersionConflict(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormMappingTemplateRepository(db)
	tenantID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTemplate(t, tenantID, integration.PlatformNalanda, 1)))
	err := repo.Create(ctx, newTemplate(t, tenantID, integration.PlatformNalanda, 1))
	assert.ErrorIs(t, err, integration.ErrTemplateVersionConflict)

	next, err := repo.NextVersion(ctx, tenantID, integration.PlatformNalanda)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}
