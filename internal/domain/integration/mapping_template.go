package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MappingRule moves one value from the canonical payload into the destination
type MappingRule struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Transform string `json:"transform,omitempty"`
	Condition string `json:"condition,omitempty"`
	Default   any    `json:"default,omitempty"`
}

// MappingTemplate is an immutable, versioned (destination schema, rules) pair for
// one tenant and platform. New behaviour is introduced by creating a new version.
type MappingTemplate struct {
	ID                uuid.UUID      `json:"id"`
	TenantID          uuid.UUID      `json:"tenantId"`
	Platform          PlatformCode   `json:"platform"`
	Version           int            `json:"version"`
	Description       string         `json:"description,omitempty"`
	DestinationSchema map[string]any `json:"destinationSchema"`
	Rules             []MappingRule  `json:"rules"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// NewMappingTemplate creates a validated template version
func NewMappingTemplate(
	tenantID uuid.UUID,
	platform PlatformCode,
	version int,
	destinationSchema map[string]any,
	rules []MappingRule,
) (*MappingTemplate, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !platform.IsValid() {
		return nil, ErrPlatformInvalidCode
	}
	if version < 1 {
		return nil, fmt.Errorf("%w: version must be positive", ErrTemplateInvalid)
	}

	t := &MappingTemplate{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Platform:          platform,
		Version:           version,
		DestinationSchema: destinationSchema,
		Rules:             append([]MappingRule(nil), rules...),
		CreatedAt:         time.Now(),
	}
	if res := ValidateTemplate(t); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrTemplateInvalid, strings.Join(res.Errors, "; "))
	}
	return t, nil
}

// ValidateTemplate checks that a template can drive the mapping engine
func ValidateTemplate(t *MappingTemplate) ValidationResult {
	if t == nil {
		return NewValidationResult([]string{"Template is required"})
	}
	var errs []string
	if len(t.DestinationSchema) == 0 {
		errs = append(errs, "Destination schema is required")
	}
	if len(t.Rules) == 0 {
		errs = append(errs, "At least one mapping rule is required")
	}
	for i, r := range t.Rules {
		if blank(r.From) {
			errs = append(errs, fmt.Sprintf("Rule %d: 'from' path is required", i+1))
		}
		if blank(r.To) {
			errs = append(errs, fmt.Sprintf("Rule %d: 'to' path is required", i+1))
		}
	}
	return NewValidationResult(errs)
}

// MappingTemplateRepository stores template versions append-only
type MappingTemplateRepository interface {
	// Create inserts a new version; an existing (tenant, platform, version) yields
	// ErrTemplateVersionConflict
	Create(ctx context.Context, t *MappingTemplate) error
	// FindLatest returns the highest version for the tenant and platform
	FindLatest(ctx context.Context, tenantID uuid.UUID, platform PlatformCode) (*MappingTemplate, error)
	// FindByVersion returns one specific version
	FindByVersion(ctx context.Context, tenantID uuid.UUID, platform PlatformCode, version int) (*MappingTemplate, error)
	// FindAllForTenant returns every version of every platform for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]MappingTemplate, error)
	// NextVersion returns the version number the next Create should use
	NextVersion(ctx context.Context, tenantID uuid.UUID, platform PlatformCode) (int, error)
}
