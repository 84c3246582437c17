package models

import (
	"github.com/obralink/backend/internal/domain/shared"
)

// OutboxEntryModel is an outbox_events row. The entry maps column for column,
// so it is embedded rather than copied; indexes and the event_id unique
// constraint live in the 000002 migration.
type OutboxEntryModel struct {
	shared.OutboxEntry `gorm:"embedded"`
}

func (OutboxEntryModel) TableName() string { return "outbox_events" }

// ToDomain returns a copy of the stored entry
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	e := m.OutboxEntry
	return &e
}

// OutboxEntryModelFromDomain wraps an entry for insertion
func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	return &OutboxEntryModel{OutboxEntry: *e}
}
