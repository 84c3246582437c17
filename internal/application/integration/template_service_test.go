package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDocumentValidator struct {
	errs []string
}

func (s stubDocumentValidator) ValidateDocument([]byte) []string { return s.errs }

func templateInput() CreateTemplateInput {
	return CreateTemplateInput{
		Platform:          integration.PlatformCTAIMA,
		Description:       "Custom CTAIMA layout",
		DestinationSchema: map[string]any{"company": map[string]any{"vat": ""}},
		Rules:             []integration.MappingRule{{From: "company.taxId", To: "company.vat", Transform: "prefix:ES"}},
	}
}

func TestTemplateService_CreateTemplate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Creates the next version", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, zap.NewNop())
		repo.On("NextVersion", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(4, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *integration.MappingTemplate) bool {
			return tpl.Version == 4 && tpl.Description == "Custom CTAIMA layout"
		})).Return(nil)

		tpl, err := svc.CreateTemplate(ctx, tenantID, templateInput())
		require.NoError(t, err)
		assert.Equal(t, 4, tpl.Version)
		repo.AssertExpectations(t)
	})

	t.Run("Retries after a version race", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, zap.NewNop())
		repo.On("NextVersion", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(2, nil).Once()
		repo.On("NextVersion", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(3, nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *integration.MappingTemplate) bool {
			return tpl.Version == 2
		})).Return(integration.ErrTemplateVersionConflict)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *integration.MappingTemplate) bool {
			return tpl.Version == 3
		})).Return(nil)

		tpl, err := svc.CreateTemplate(ctx, tenantID, templateInput())
		require.NoError(t, err)
		assert.Equal(t, 3, tpl.Version)
	})

	t.Run("Gives up after repeated conflicts", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, zap.NewNop())
		repo.On("NextVersion", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(2, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(integration.ErrTemplateVersionConflict)

		_, err := svc.CreateTemplate(ctx, tenantID, templateInput())
		assert.ErrorIs(t, err, integration.ErrTemplateVersionConflict)
		repo.AssertNumberOfCalls(t, "Create", createTemplateAttempts)
	})

	t.Run("Invalid template is not stored", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, zap.NewNop())
		repo.On("NextVersion", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(1, nil)
		input := templateInput()
		input.Rules = nil

		_, err := svc.CreateTemplate(ctx, tenantID, input)
		assert.ErrorIs(t, err, integration.ErrTemplateInvalid)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTemplateService_GetTemplate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockTemplateRepository)
	svc := NewTemplateService(repo, nil, nil, nil)
	latest := testTemplate(t, tenantID)

	repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformNalanda).Return(latest, nil)
	repo.On("FindByVersion", mock.Anything, tenantID, integration.PlatformNalanda, 1).Return(nil, integration.ErrTemplateNotFound)

	got, err := svc.GetTemplate(ctx, tenantID, integration.PlatformNalanda, nil)
	require.NoError(t, err)
	assert.Same(t, latest, got)

	version := 1
	_, err = svc.GetTemplate(ctx, tenantID, integration.PlatformNalanda, &version)
	assert.ErrorIs(t, err, integration.ErrTemplateNotFound)
}

func TestTemplateService_ValidateDocument(t *testing.T) {
	t.Run("Schema violations come first", func(t *testing.T) {
		svc := NewTemplateService(nil, nil, stubDocumentValidator{errs: []string{"/rules: minItems"}}, nil)
		res := svc.ValidateDocument([]byte(`{}`))
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"/rules: minItems"}, res.Errors)
	})

	t.Run("Domain rules without a schema validator", func(t *testing.T) {
		svc := NewTemplateService(nil, nil, nil, nil)
		res := svc.ValidateDocument([]byte(`{"platform":"ctaima","destinationSchema":{"a":""},"rules":[{"from":"x"}]}`))
		assert.Equal(t, []string{"Rule 1: 'to' path is required"}, res.Errors)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		svc := NewTemplateService(nil, nil, nil, nil)
		res := svc.ValidateDocument([]byte(`{`))
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "not valid JSON")
	})
}

func TestTemplateService_PreviewTemplate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Latest stored template", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, nil)
		repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformNalanda).Return(testTemplate(t, tenantID), nil)

		preview, err := svc.PreviewTemplate(ctx, tenantID, integration.PlatformNalanda, nil, validPayload())
		require.NoError(t, err)
		assert.True(t, preview.Shape.Valid)
		assert.True(t, preview.Validation.Valid)
		assert.Equal(t, "B12345678", preview.Payload["empresa"].(map[string]any)["cif"])
	})

	t.Run("Draft template reports skipped rules", func(t *testing.T) {
		svc := NewTemplateService(new(MockTemplateRepository), nil, nil, nil)
		draft := &integration.MappingTemplate{
			Platform:          integration.PlatformNalanda,
			Version:           1,
			DestinationSchema: map[string]any{},
			Rules: []integration.MappingRule{
				{From: "site.code", To: "obra.codigo"},
				{From: "workers[*].idNumber", To: "a[*].b[*].c"},
			},
		}

		preview, err := svc.PreviewTemplate(ctx, tenantID, integration.PlatformNalanda, draft, validPayload())
		require.NoError(t, err)
		require.Len(t, preview.Skipped, 1)
		assert.Equal(t, 1, preview.Skipped[0].Index)
		assert.Equal(t, "S-01", preview.Payload["obra"].(map[string]any)["codigo"])
	})

	t.Run("Invalid draft returns its validation", func(t *testing.T) {
		svc := NewTemplateService(new(MockTemplateRepository), nil, nil, nil)
		preview, err := svc.PreviewTemplate(ctx, tenantID, integration.PlatformNalanda, &integration.MappingTemplate{}, validPayload())
		require.NoError(t, err)
		assert.False(t, preview.Validation.Valid)
		assert.Nil(t, preview.Payload)
	})
}

func TestTemplateService_SeedDefaults(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Seeds missing platforms only", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, nil)
		repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformNalanda).Return(testTemplate(t, tenantID), nil)
		repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformCTAIMA).Return(nil, integration.ErrTemplateNotFound)
		repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformEcoordina).Return(nil, integration.ErrTemplateNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *integration.MappingTemplate) bool {
			return tpl.Version == 1 && tpl.TenantID == tenantID
		})).Return(nil)

		created, err := svc.SeedDefaults(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, integration.PlatformCTAIMA, created[0].Platform)
		assert.Equal(t, integration.PlatformEcoordina, created[1].Platform)
	})

	t.Run("Repository failure stops seeding", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		svc := NewTemplateService(repo, nil, nil, nil)
		repo.On("FindLatest", mock.Anything, tenantID, integration.PlatformNalanda).Return(nil, errors.New("db down"))

		_, err := svc.SeedDefaults(ctx, tenantID)
		assert.Error(t, err)
	})
}
