package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// IntegrationJobModel is the persistence model for integration jobs
type IntegrationJobModel struct {
	TenantAggregateModel
	Platform           integration.PlatformCode `gorm:"type:varchar(32);not null;index:idx_jobs_tenant_platform,priority:2"`
	SiteCode           string                   `gorm:"type:varchar(100);index"`
	TraceID            string                   `gorm:"type:varchar(64);not null;uniqueIndex"`
	State              integration.JobState     `gorm:"type:varchar(20);not null;index"`
	Attempts           int                      `gorm:"not null"`
	MaxAttempts        int                      `gorm:"not null"`
	TemplateVersion    int                      `gorm:"not null"`
	CanonicalPayload   []byte                   `gorm:"type:jsonb;not null"`
	TransformedPayload []byte                   `gorm:"type:jsonb;not null"`
	PayloadDigest      string                   `gorm:"type:char(64)"`
	LastResponse       []byte                   `gorm:"type:jsonb"`
	LastError          string                   `gorm:"type:text"`
	NextRetryAt        *time.Time               `gorm:"index"`
	Terminal           bool                     `gorm:"not null"`
	RemediationTaskID  *uuid.UUID               `gorm:"type:uuid"`
}

func (IntegrationJobModel) TableName() string {
	return "integration_jobs"
}

// IntegrationJobModelFromDomain encodes a job for storage
func IntegrationJobModelFromDomain(j *integration.IntegrationJob) (*IntegrationJobModel, error) {
	canonical, err := json.Marshal(j.CanonicalPayload)
	if err != nil {
		return nil, fmt.Errorf("encode canonical payload: %w", err)
	}
	transformed, err := json.Marshal(j.TransformedPayload)
	if err != nil {
		return nil, fmt.Errorf("encode transformed payload: %w", err)
	}
	var response []byte
	if j.LastResponse != nil {
		if response, err = json.Marshal(j.LastResponse); err != nil {
			return nil, fmt.Errorf("encode last response: %w", err)
		}
	}

	m := &IntegrationJobModel{
		Platform:           j.Platform,
		SiteCode:           j.SiteCode,
		TraceID:            j.TraceID,
		State:              j.State,
		Attempts:           j.Attempts,
		MaxAttempts:        j.MaxAttempts,
		TemplateVersion:    j.TemplateVersion,
		CanonicalPayload:   canonical,
		TransformedPayload: transformed,
		PayloadDigest:      j.PayloadDigest,
		LastResponse:       response,
		LastError:          j.LastError,
		NextRetryAt:        j.NextRetryAt,
		Terminal:           j.Terminal,
		RemediationTaskID:  j.RemediationTaskID,
	}
	m.TenantAggregateModel.FromDomain(j.TenantAggregateRoot)
	return m, nil
}

// ToDomain decodes the stored job
func (m *IntegrationJobModel) ToDomain() (*integration.IntegrationJob, error) {
	j := &integration.IntegrationJob{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Platform:            m.Platform,
		SiteCode:            m.SiteCode,
		TraceID:             m.TraceID,
		State:               m.State,
		Attempts:            m.Attempts,
		MaxAttempts:         m.MaxAttempts,
		TemplateVersion:     m.TemplateVersion,
		PayloadDigest:       m.PayloadDigest,
		LastError:           m.LastError,
		NextRetryAt:         m.NextRetryAt,
		Terminal:            m.Terminal,
		RemediationTaskID:   m.RemediationTaskID,
	}
	if err := json.Unmarshal(m.CanonicalPayload, &j.CanonicalPayload); err != nil {
		return nil, fmt.Errorf("decode canonical payload of job %s: %w", m.ID, err)
	}
	if err := json.Unmarshal(m.TransformedPayload, &j.TransformedPayload); err != nil {
		return nil, fmt.Errorf("decode transformed payload of job %s: %w", m.ID, err)
	}
	if len(m.LastResponse) > 0 {
		j.LastResponse = &integration.DispatchResponse{}
		if err := json.Unmarshal(m.LastResponse, j.LastResponse); err != nil {
			return nil, fmt.Errorf("decode last response of job %s: %w", m.ID, err)
		}
	}
	return j, nil
}
