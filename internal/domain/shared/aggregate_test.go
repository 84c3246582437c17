package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTenantAggregateRoot(t *testing.T) {
	tenantID := uuid.New()

	t.Run("New roots start at version 1", func(t *testing.T) {
		root := NewTenantAggregateRoot(tenantID)
		assert.NotEqual(t, uuid.Nil, root.ID)
		assert.Equal(t, tenantID, root.TenantID)
		assert.Equal(t, 1, root.GetVersion())
		assert.Equal(t, root.CreatedAt, root.UpdatedAt)
	})

	t.Run("Restored roots keep stored columns and no events", func(t *testing.T) {
		id := uuid.New()
		created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
		root := RestoreTenantAggregateRoot(id, tenantID, 4, created, created.Add(time.Hour))
		assert.Equal(t, id, root.ID)
		assert.Equal(t, 4, root.GetVersion())
		assert.Empty(t, root.GetDomainEvents())

		root.IncrementVersion()
		assert.Equal(t, 5, root.Version)
	})

	t.Run("Events queue until cleared", func(t *testing.T) {
		root := NewTenantAggregateRoot(tenantID)
		evt := NewEventEnvelope("integration.sent", "IntegrationJob", root.ID, tenantID)
		root.AddDomainEvent(&evt)
		root.AddDomainEvent(&evt)
		assert.Len(t, root.GetDomainEvents(), 2)

		root.ClearDomainEvents()
		assert.Empty(t, root.GetDomainEvents())
	})
}
