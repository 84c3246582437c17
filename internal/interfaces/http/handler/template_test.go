package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTemplateRouter(tm *MockTemplateManager) *gin.Engine {
	r := gin.New()
	r.Use(withTenant(testTenantID))
	h := NewTemplateHandler(tm)
	r.GET("/templates", h.ListTemplates)
	r.GET("/templates/:platform", h.GetTemplate)
	r.POST("/templates", h.CreateTemplate)
	r.POST("/templates/validate", h.ValidateTemplate)
	r.POST("/templates/preview", h.PreviewTemplate)
	r.POST("/templates/seed", h.SeedTemplates)
	return r
}

const createTemplateBody = `{
	"platform": "nalanda",
	"destinationSchema": {"type": "object"},
	"rules": [{"from": "company.cif", "to": "empresa.cif", "transform": "uppercase"}]
}`

func TestTemplateHandler_Create(t *testing.T) {
	t.Run("Valid document creates the next version", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("ValidateDocument", mock.Anything).Return(integration.NewValidationResult(nil))
		tm.On("CreateTemplate", mock.Anything, testTenantID, mock.MatchedBy(func(in integrationapp.CreateTemplateInput) bool {
			return in.Platform == integration.PlatformNalanda &&
				len(in.Rules) == 1 &&
				in.Rules[0].From == "company.cif" &&
				in.Rules[0].Transform == "uppercase"
		})).Return(&integration.MappingTemplate{Platform: integration.PlatformNalanda, Version: 3}, nil)

		w, resp := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates", createTemplateBody)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(resp.Data), `"version":3`)
		tm.AssertExpectations(t)
	})

	t.Run("Schema violations answer 422 with details", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("ValidateDocument", mock.Anything).
			Return(integration.NewValidationResult([]string{"rules: minimum 1 items required"}))

		w, resp := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates", `{"platform":"nalanda","rules":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_TEMPLATE_INVALID", resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Contains(t, resp.Error.Details[0].Message, "minimum 1 items")
		tm.AssertNotCalled(t, "CreateTemplate")
	})

	t.Run("Unknown transform from the service is 422", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("ValidateDocument", mock.Anything).Return(integration.NewValidationResult(nil))
		tm.On("CreateTemplate", mock.Anything, testTenantID, mock.Anything).Return(nil, integration.ErrTemplateInvalid)

		w, _ := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates", createTemplateBody)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestTemplateHandler_Get(t *testing.T) {
	t.Run("Latest version", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("GetTemplate", mock.Anything, testTenantID, integration.PlatformCTAIMA, (*int)(nil)).
			Return(&integration.MappingTemplate{Platform: integration.PlatformCTAIMA, Version: 2}, nil)

		w, _ := doRequest(t, setupTemplateRouter(tm), http.MethodGet, "/templates/ctaima", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		tm.AssertExpectations(t)
	})

	t.Run("Explicit version", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("GetTemplate", mock.Anything, testTenantID, integration.PlatformCTAIMA, mock.MatchedBy(func(v *int) bool {
			return v != nil && *v == 1
		})).Return(nil, integration.ErrTemplateNotFound)

		w, resp := doRequest(t, setupTemplateRouter(tm), http.MethodGet, "/templates/ctaima?version=1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("Bad version", func(t *testing.T) {
		w, _ := doRequest(t, setupTemplateRouter(new(MockTemplateManager)), http.MethodGet, "/templates/ctaima?version=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTemplateHandler_ValidateAndPreview(t *testing.T) {
	t.Run("Validate returns the result with 200", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("ValidateDocument", []byte(`{}`)).
			Return(integration.NewValidationResult([]string{"platform is required"}))

		w, resp := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates/validate", `{}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(resp.Data), `"valid":false`)
	})

	t.Run("Preview with an inline template", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("PreviewTemplate", mock.Anything, testTenantID, integration.PlatformNalanda,
			mock.MatchedBy(func(tpl *integration.MappingTemplate) bool {
				return tpl != nil && tpl.TenantID == testTenantID && len(tpl.Rules) == 1
			}), mock.Anything).
			Return(&integrationapp.PreviewResult{Payload: map[string]any{"empresa": map[string]any{"cif": "B1"}}}, nil)

		body := `{"platform":"nalanda","template":` + createTemplateBody + `,"payload":{"company":{"cif":"b1"}}}`
		w, resp := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates/preview", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(resp.Data), `"cif":"B1"`)
		tm.AssertExpectations(t)
	})

	t.Run("Preview with the stored template", func(t *testing.T) {
		tm := new(MockTemplateManager)
		tm.On("PreviewTemplate", mock.Anything, testTenantID, integration.PlatformNalanda, (*integration.MappingTemplate)(nil), mock.Anything).
			Return(&integrationapp.PreviewResult{}, nil)

		w, _ := doRequest(t, setupTemplateRouter(tm), http.MethodPost, "/templates/preview", `{"platform":"nalanda","payload":{}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		tm.AssertExpectations(t)
	})
}

func TestTemplateHandler_ListAndSeed(t *testing.T) {
	tm := new(MockTemplateManager)
	tm.On("GetAllTemplates", mock.Anything, testTenantID).Return([]integration.MappingTemplate{{Platform: integration.PlatformNalanda}}, nil)
	tm.On("SeedDefaults", mock.Anything, testTenantID).Return([]*integration.MappingTemplate{}, nil).Once()

	r := setupTemplateRouter(tm)
	w, _ := doRequest(t, r, http.MethodGet, "/templates", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/templates/seed", nil)
	assert.Equal(t, http.StatusOK, w.Code, "nothing seeded when every platform has a template")
	tm.AssertExpectations(t)
}
