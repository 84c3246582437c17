package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTemplate(t *testing.T, tenantID uuid.UUID, platform integration.PlatformCode, version int) *integration.MappingTemplate {
	t.Helper()
	tpl, err := integration.NewMappingTemplate(tenantID, platform, version,
		map[string]any{"empresa": map[string]any{"cif": ""}},
		[]integration.MappingRule{{From: "company.taxId", To: "empresa.cif", Transform: "upper"}})
	require.NoError(t, err)
	return tpl
}

func TestMappingTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMappingTemplateRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	next, err := repo.NextVersion(ctx, tenantID, integration.PlatformNalanda)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = repo.FindLatest(ctx, tenantID, integration.PlatformNalanda)
	assert.ErrorIs(t, err, integration.ErrTemplateNotFound)

	require.NoError(t, repo.Create(ctx, newTemplate(t, tenantID, integration.PlatformNalanda, 1)))
	v2 := newTemplate(t, tenantID, integration.PlatformNalanda, 2)
	v2.Description = "second layout"
	require.NoError(t, repo.Create(ctx, v2))
	require.NoError(t, repo.Create(ctx, newTemplate(t, tenantID, integration.PlatformCTAIMA, 1)))

	t.Run("Latest version wins", func(t *testing.T) {
		latest, err := repo.FindLatest(ctx, tenantID, integration.PlatformNalanda)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)
		assert.Equal(t, "second layout", latest.Description)
		require.Len(t, latest.Rules, 1)
		assert.Equal(t, "upper", latest.Rules[0].Transform)
		assert.Contains(t, latest.DestinationSchema, "empresa")
	})

	t.Run("Specific version", func(t *testing.T) {
		v1, err := repo.FindByVersion(ctx, tenantID, integration.PlatformNalanda, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, v1.Version)

		_, err = repo.FindByVersion(ctx, tenantID, integration.PlatformNalanda, 9)
		assert.ErrorIs(t, err, integration.ErrTemplateNotFound)
	})

	t.Run("Duplicate version conflicts", func(t *testing.T) {
		err := repo.Create(ctx, newTemplate(t, tenantID, integration.PlatformNalanda, 2))
		assert.ErrorIs(t, err, integration.ErrTemplateVersionConflict)
	})

	t.Run("Versions are per tenant and platform", func(t *testing.T) {
		next, err := repo.NextVersion(ctx, tenantID, integration.PlatformNalanda)
		require.NoError(t, err)
		assert.Equal(t, 3, next)

		next, err = repo.NextVersion(ctx, uuid.New(), integration.PlatformNalanda)
		require.NoError(t, err)
		assert.Equal(t, 1, next)
	})

	t.Run("List orders by platform then newest", func(t *testing.T) {
		all, err := repo.FindAllForTenant(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, integration.PlatformCTAIMA, all[0].Platform)
		assert.Equal(t, 2, all[1].Version)
		assert.Equal(t, 1, all[2].Version)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "uq_template_version" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: mapping_templates.version")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
