package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
)

// TemplateManager is the template registry surface used by the API
type TemplateManager interface {
	GetTemplate(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, version *int) (*integration.MappingTemplate, error)
	GetAllTemplates(ctx context.Context, tenantID uuid.UUID) ([]integration.MappingTemplate, error)
	CreateTemplate(ctx context.Context, tenantID uuid.UUID, input integrationapp.CreateTemplateInput) (*integration.MappingTemplate, error)
	ValidateDocument(doc []byte) integration.ValidationResult
	PreviewTemplate(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, tpl *integration.MappingTemplate, payload integration.CanonicalPayload) (*integrationapp.PreviewResult, error)
	SeedDefaults(ctx context.Context, tenantID uuid.UUID) ([]*integration.MappingTemplate, error)
}

// TemplateHandler serves mapping template endpoints
type TemplateHandler struct {
	BaseHandler
	templates TemplateManager
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templates TemplateManager) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// ListTemplates handles GET /integrations/templates
//
// @ID           listMappingTemplates
// @Summary      List mapping templates
// @Description  Return the latest version of every platform template for the tenant
// @Tags         templates
// @Produce      json
// @Success      200 {object} dto.Response{data=[]integration.MappingTemplate}
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	templates, err := h.templates.GetAllTemplates(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// GetTemplate handles GET /integrations/templates/:platform?version=
//
// @ID           getMappingTemplate
// @Summary      Get mapping template
// @Tags         templates
// @Produce      json
// @Param        platform path  string true  "Platform code"
// @Param        version  query int    false "Template version, latest when omitted" minimum(1)
// @Success      200 {object} dto.Response{data=integration.MappingTemplate}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates/{platform} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	platform, ok := h.platformParam(c, c.Param("platform"))
	if !ok {
		return
	}
	var version *int
	if raw := c.Query("version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			h.BadRequest(c, "version must be a positive integer")
			return
		}
		version = &v
	}

	tpl, err := h.templates.GetTemplate(c.Request.Context(), tenantID, platform, version)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tpl)
}

// CreateTemplate handles POST /integrations/templates. The raw document is
// checked against the template schema before it is stored as a new version.
//
// @ID           createMappingTemplate
// @Summary      Create mapping template version
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateTemplateRequest true "Template document"
// @Success      201 {object} dto.Response{data=integration.MappingTemplate}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}
	if res := h.templates.ValidateDocument(raw); !res.Valid {
		h.ValidationFailed(c, dto.ErrCodeTemplateInvalid, "Invalid mapping template", res.Errors)
		return
	}

	var req dto.CreateTemplateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.BadRequest(c, "Invalid JSON body")
		return
	}
	platform, ok := h.platformParam(c, req.Platform)
	if !ok {
		return
	}

	tpl, err := h.templates.CreateTemplate(c.Request.Context(), tenantID, integrationapp.CreateTemplateInput{
		Platform:          platform,
		Description:       req.Description,
		DestinationSchema: req.DestinationSchema,
		Rules:             req.Rules,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tpl)
}

// ValidateTemplate handles POST /integrations/templates/validate
//
// @ID           validateMappingTemplate
// @Summary      Validate mapping template document
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateTemplateRequest true "Template document"
// @Success      200 {object} dto.Response{data=integration.ValidationResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates/validate [post]
func (h *TemplateHandler) ValidateTemplate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}
	h.Success(c, h.templates.ValidateDocument(raw))
}

// PreviewTemplate handles POST /integrations/templates/preview
//
// @ID           previewMappingTemplate
// @Summary      Preview mapping template
// @Description  Run a stored or inline template over a sample payload without creating a job
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        request body dto.PreviewTemplateRequest true "Preview request"
// @Success      200 {object} dto.Response{data=integrationapp.PreviewResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates/preview [post]
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req dto.PreviewTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	platform, ok := h.platformParam(c, req.Platform)
	if !ok {
		return
	}

	var tpl *integration.MappingTemplate
	if req.Template != nil {
		tpl = &integration.MappingTemplate{
			TenantID:          tenantID,
			Platform:          platform,
			Description:       req.Template.Description,
			DestinationSchema: req.Template.DestinationSchema,
			Rules:             req.Template.Rules,
		}
	}

	result, err := h.templates.PreviewTemplate(c.Request.Context(), tenantID, platform, tpl, req.Payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SeedTemplates handles POST /integrations/templates/seed
//
// @ID           seedMappingTemplates
// @Summary      Seed default mapping templates
// @Description  Store the built-in template for every platform the tenant has none for
// @Tags         templates
// @Produce      json
// @Success      200 {object} dto.Response{data=[]integration.MappingTemplate}
// @Success      201 {object} dto.Response{data=[]integration.MappingTemplate}
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/templates/seed [post]
func (h *TemplateHandler) SeedTemplates(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	created, err := h.templates.SeedDefaults(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status := http.StatusOK
	if len(created) > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewSuccessResponse(created))
}
