package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// createTemplateAttempts bounds retries when two writers race for the same version
const createTemplateAttempts = 3

// CreateTemplateInput is the content of a new template version
type CreateTemplateInput struct {
	Platform          integration.PlatformCode  `json:"platform"`
	Description       string                    `json:"description"`
	DestinationSchema map[string]any            `json:"destinationSchema"`
	Rules             []integration.MappingRule `json:"rules"`
}

// TemplateService manages versioned mapping templates
type TemplateService struct {
	templates integration.MappingTemplateRepository
	engine    *integration.MappingEngine
	documents TemplateDocumentValidator
	logger    *zap.Logger
}

// NewTemplateService creates a new TemplateService. documents may be nil, in
// which case raw template documents are only checked after decoding.
func NewTemplateService(
	templates integration.MappingTemplateRepository,
	engine *integration.MappingEngine,
	documents TemplateDocumentValidator,
	logger *zap.Logger,
) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = integration.NewMappingEngine(nil, logger)
	}
	return &TemplateService{
		templates: templates,
		engine:    engine,
		documents: documents,
		logger:    logger,
	}
}

// GetTemplate returns the given version, or the latest when version is nil
func (s *TemplateService) GetTemplate(
	ctx context.Context,
	tenantID uuid.UUID,
	platform integration.PlatformCode,
	version *int,
) (*integration.MappingTemplate, error) {
	if version == nil {
		return s.templates.FindLatest(ctx, tenantID, platform)
	}
	return s.templates.FindByVersion(ctx, tenantID, platform, *version)
}

// GetAllTemplates returns every stored version for the tenant
func (s *TemplateService) GetAllTemplates(ctx context.Context, tenantID uuid.UUID) ([]integration.MappingTemplate, error) {
	return s.templates.FindAllForTenant(ctx, tenantID)
}

// CreateTemplate stores the input as the next version for its platform.
// Existing versions are never modified.
func (s *TemplateService) CreateTemplate(
	ctx context.Context,
	tenantID uuid.UUID,
	input CreateTemplateInput,
) (*integration.MappingTemplate, error) {
	var lastErr error
	for i := 0; i < createTemplateAttempts; i++ {
		version, err := s.templates.NextVersion(ctx, tenantID, input.Platform)
		if err != nil {
			return nil, err
		}
		tpl, err := integration.NewMappingTemplate(tenantID, input.Platform, version, input.DestinationSchema, input.Rules)
		if err != nil {
			return nil, err
		}
		tpl.Description = input.Description

		err = s.templates.Create(ctx, tpl)
		if err == nil {
			s.logger.Info("Mapping template version created",
				zap.String("tenant_id", tenantID.String()),
				zap.String("platform", input.Platform.String()),
				zap.Int("version", version),
				zap.Int("rules", len(tpl.Rules)))
			return tpl, nil
		}
		if !errors.Is(err, integration.ErrTemplateVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ValidateTemplate checks that a template can drive the mapping engine
func (s *TemplateService) ValidateTemplate(tpl *integration.MappingTemplate) integration.ValidationResult {
	return integration.ValidateTemplate(tpl)
}

// ValidateDocument checks a raw JSON template document, first against the
// document schema when one is configured and then against the domain rules
func (s *TemplateService) ValidateDocument(doc []byte) integration.ValidationResult {
	if s.documents != nil {
		if errs := s.documents.ValidateDocument(doc); len(errs) > 0 {
			return integration.NewValidationResult(errs)
		}
	}
	var input CreateTemplateInput
	if err := json.Unmarshal(doc, &input); err != nil {
		return integration.NewValidationResult([]string{fmt.Sprintf("Template document is not valid JSON: %v", err)})
	}
	return integration.ValidateTemplate(&integration.MappingTemplate{
		Platform:          input.Platform,
		DestinationSchema: input.DestinationSchema,
		Rules:             input.Rules,
	})
}

// PreviewTemplate runs a template over a sample payload without dispatching it.
// A nil template previews the latest stored version.
func (s *TemplateService) PreviewTemplate(
	ctx context.Context,
	tenantID uuid.UUID,
	platform integration.PlatformCode,
	tpl *integration.MappingTemplate,
	payload integration.CanonicalPayload,
) (*PreviewResult, error) {
	if tpl == nil {
		latest, err := s.templates.FindLatest(ctx, tenantID, platform)
		if err != nil {
			return nil, err
		}
		tpl = latest
	} else if res := integration.ValidateTemplate(tpl); !res.Valid {
		return &PreviewResult{Validation: res, Template: tpl}, nil
	}

	source, err := payload.ToMap()
	if err != nil {
		return nil, err
	}
	mapped := s.engine.TransformWithReport(tpl, source)
	return &PreviewResult{
		Payload:    mapped.Payload,
		Skipped:    mapped.Skipped,
		Shape:      s.engine.ValidateShape(tpl, mapped.Payload),
		Validation: payload.Validate(),
		Template:   tpl,
	}, nil
}

// SeedDefaults creates version 1 of the built-in template for every platform
// the tenant has no template for yet. It returns the created templates.
func (s *TemplateService) SeedDefaults(ctx context.Context, tenantID uuid.UUID) ([]*integration.MappingTemplate, error) {
	var created []*integration.MappingTemplate
	for _, def := range integration.DefaultTemplateDefinitions() {
		_, err := s.templates.FindLatest(ctx, tenantID, def.Platform)
		if err == nil {
			continue
		}
		if !errors.Is(err, integration.ErrTemplateNotFound) {
			return created, err
		}

		tpl, err := integration.NewMappingTemplate(tenantID, def.Platform, 1, def.DestinationSchema, def.Rules)
		if err != nil {
			return created, err
		}
		tpl.Description = def.Description
		if err := s.templates.Create(ctx, tpl); err != nil {
			if errors.Is(err, integration.ErrTemplateVersionConflict) {
				continue
			}
			return created, err
		}
		created = append(created, tpl)
	}
	if len(created) > 0 {
		s.logger.Info("Default mapping templates seeded",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(created)))
	}
	return created, nil
}
