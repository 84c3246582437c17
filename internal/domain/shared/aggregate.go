package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregateRoot is the identity and bookkeeping every tenant-owned
// aggregate carries: who owns it, the version it was loaded at and the events
// raised since then.
//
// Version starts at 1 and is compared on update; a stale version makes the
// repository return ErrConcurrencyConflict.
type TenantAggregateRoot struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	pending []DomainEvent
}

// NewTenantAggregateRoot starts a fresh aggregate for tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now().UTC()
	return TenantAggregateRoot{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RestoreTenantAggregateRoot rebuilds the root from stored columns. No events are pending.
func RestoreTenantAggregateRoot(id, tenantID uuid.UUID, version int, createdAt, updatedAt time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		ID:        id,
		TenantID:  tenantID,
		Version:   version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func (a *TenantAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion is called by repositories after a successful conditional update
func (a *TenantAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues e for the outbox write that accompanies the next save
func (a *TenantAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *TenantAggregateRoot) ClearDomainEvents() { a.pending = nil }
