package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// MappingTemplateModel stores one immutable template version
type MappingTemplateModel struct {
	ID                uuid.UUID                `gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:uq_template_version,priority:1"`
	Platform          integration.PlatformCode `gorm:"type:varchar(32);not null;uniqueIndex:uq_template_version,priority:2"`
	Version           int                      `gorm:"not null;uniqueIndex:uq_template_version,priority:3"`
	Description       string                   `gorm:"type:text"`
	DestinationSchema []byte                   `gorm:"type:jsonb;not null"`
	Rules             []byte                   `gorm:"type:jsonb;not null"`
	CreatedAt         time.Time                `gorm:"not null"`
}

func (MappingTemplateModel) TableName() string {
	return "mapping_templates"
}

// MappingTemplateModelFromDomain encodes a template for storage
func MappingTemplateModelFromDomain(t *integration.MappingTemplate) (*MappingTemplateModel, error) {
	schema, err := json.Marshal(t.DestinationSchema)
	if err != nil {
		return nil, fmt.Errorf("encode destination schema: %w", err)
	}
	rules, err := json.Marshal(t.Rules)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return &MappingTemplateModel{
		ID:                t.ID,
		TenantID:          t.TenantID,
		Platform:          t.Platform,
		Version:           t.Version,
		Description:       t.Description,
		DestinationSchema: schema,
		Rules:             rules,
		CreatedAt:         t.CreatedAt,
	}, nil
}

// ToDomain decodes the stored template
func (m *MappingTemplateModel) ToDomain() (*integration.MappingTemplate, error) {
	t := &integration.MappingTemplate{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Platform:    m.Platform,
		Version:     m.Version,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
	if err := json.Unmarshal(m.DestinationSchema, &t.DestinationSchema); err != nil {
		return nil, fmt.Errorf("decode destination schema of template %s: %w", m.ID, err)
	}
	if err := json.Unmarshal(m.Rules, &t.Rules); err != nil {
		return nil, fmt.Errorf("decode rules of template %s: %w", m.ID, err)
	}
	return t, nil
}
