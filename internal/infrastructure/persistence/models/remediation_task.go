package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// RemediationTaskStatusOpen is the status of a newly created task
const RemediationTaskStatusOpen = "open"

// RemediationTaskModel stores remediation tasks. One task per job.
type RemediationTaskModel struct {
	ID           uuid.UUID                `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	JobID        uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	TraceID      string                   `gorm:"type:varchar(64);not null"`
	Platform     integration.PlatformCode `gorm:"type:varchar(32);not null"`
	Type         string                   `gorm:"type:varchar(32);not null"`
	SiteCode     string                   `gorm:"type:varchar(100)"`
	DocumentID   string                   `gorm:"type:varchar(100)"`
	DueAt        time.Time                `gorm:"not null;index"`
	AssigneeRole string                   `gorm:"type:varchar(64);not null"`
	Notes        string                   `gorm:"type:text"`
	Status       string                   `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time                `gorm:"not null"`
}

func (RemediationTaskModel) TableName() string {
	return "remediation_tasks"
}

// RemediationTaskModelFromDomain creates an open task row
func RemediationTaskModelFromDomain(t *integration.RemediationTask) *RemediationTaskModel {
	return &RemediationTaskModel{
		ID:           t.ID,
		TenantID:     t.TenantID,
		JobID:        t.JobID,
		TraceID:      t.TraceID,
		Platform:     t.Platform,
		Type:         t.Type,
		SiteCode:     t.SiteCode,
		DocumentID:   t.DocumentID,
		DueAt:        t.DueAt,
		AssigneeRole: t.AssigneeRole,
		Notes:        t.Notes,
		Status:       RemediationTaskStatusOpen,
		CreatedAt:    t.CreatedAt,
	}
}

// ToDomain converts the row back to a task
func (m *RemediationTaskModel) ToDomain() *integration.RemediationTask {
	return &integration.RemediationTask{
		ID:           m.ID,
		TenantID:     m.TenantID,
		JobID:        m.JobID,
		TraceID:      m.TraceID,
		Platform:     m.Platform,
		Type:         m.Type,
		SiteCode:     m.SiteCode,
		DocumentID:   m.DocumentID,
		DueAt:        m.DueAt,
		AssigneeRole: m.AssigneeRole,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
	}
}
