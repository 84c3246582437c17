package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
)

// Dispatcher is the job manager surface used by the API
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, payload integration.CanonicalPayload) (*integrationapp.DispatchResult, error)
	RetryJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integrationapp.DispatchResult, error)
	CancelJob(ctx context.Context, tenantID, jobID uuid.UUID, reason string) (*integration.IntegrationJob, error)
	GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integration.IntegrationJob, error)
	ListJobs(ctx context.Context, tenantID uuid.UUID, filter integration.JobFilter) (shared.Paginated[integration.IntegrationJob], error)
}

// PayloadBuilder builds canonical payloads from tenant data
type PayloadBuilder interface {
	BuildCanonicalPayload(ctx context.Context, h integrationapp.TenantHierarchy) (*integrationapp.BuildPayloadResult, error)
}

// JobHistoryReader reads a job's audit trail
type JobHistoryReader interface {
	GetHistory(ctx context.Context, tenantID, jobID uuid.UUID) (*integrationapp.JobHistory, error)
}

// IntegrationHandler serves payload building, dispatch and job endpoints
type IntegrationHandler struct {
	BaseHandler
	dispatcher Dispatcher
	payloads   PayloadBuilder
	history    JobHistoryReader
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(dispatcher Dispatcher, payloads PayloadBuilder, history JobHistoryReader) *IntegrationHandler {
	return &IntegrationHandler{dispatcher: dispatcher, payloads: payloads, history: history}
}

// BuildPayload handles POST /integrations/payload
//
// @ID           buildCanonicalPayload
// @Summary      Build canonical payload
// @Description  Assemble the canonical compliance payload from a company, site and worker hierarchy and validate it
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body integrationapp.TenantHierarchy true "Tenant hierarchy"
// @Success      200 {object} dto.Response{data=integrationapp.BuildPayloadResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/payload [post]
func (h *IntegrationHandler) BuildPayload(c *gin.Context) {
	var req integrationapp.TenantHierarchy
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.payloads.BuildCanonicalPayload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Dispatch handles POST /integrations/dispatch
//
// A created job answers 200 whatever the platform said; its state carries the
// outcome. Payloads refused before any job exists answer 422.
//
// @ID           dispatchPayload
// @Summary      Dispatch payload to a platform
// @Description  Validate, transform and send a canonical payload, creating an integration job
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body dto.DispatchRequest true "Dispatch request"
// @Success      200 {object} dto.Response{data=dto.DispatchResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response{data=dto.DispatchResponse}
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/dispatch [post]
func (h *IntegrationHandler) Dispatch(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	platform, ok := h.platformParam(c, req.Platform)
	if !ok {
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), tenantID, platform, req.Payload)
	if err != nil {
		if rejected, ok := integrationapp.AsDispatchRejection(err); ok {
			c.JSON(http.StatusUnprocessableEntity, dto.NewSuccessResponse(dto.DispatchResponse{
				OK:     false,
				Errors: rejected.Errors,
			}))
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDispatchResponse(result))
}

// ListJobs handles GET /integrations/jobs
//
// @ID           listIntegrationJobs
// @Summary      List integration jobs
// @Description  Page through the tenant's integration jobs, newest first
// @Tags         jobs
// @Produce      json
// @Param        platform  query string false "Platform code"
// @Param        state     query string false "Job state" Enums(pending, sent, accepted, rejected, error, cancelled)
// @Param        site_code query string false "Site code"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]dto.JobResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/jobs [get]
func (h *IntegrationHandler) ListJobs(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	filter := integration.JobFilter{
		State:    integration.JobState(req.State),
		SiteCode: req.SiteCode,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Platform != "" {
		platform, ok := h.platformParam(c, req.Platform)
		if !ok {
			return
		}
		filter.Platform = platform
	}

	page, err := h.dispatcher.ListJobs(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]dto.JobResponse, len(page.Items))
	for i := range page.Items {
		items[i] = dto.ToJobResponse(&page.Items[i], false)
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// GetJob handles GET /integrations/jobs/:id
//
// @ID           getIntegrationJob
// @Summary      Get integration job
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.JobResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/jobs/{id} [get]
func (h *IntegrationHandler) GetJob(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	job, err := h.dispatcher.GetJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToJobResponse(job, true))
}

// GetJobHistory handles GET /integrations/jobs/:id/audit
//
// @ID           getIntegrationJobAudit
// @Summary      Get integration job audit trail
// @Description  Return the job with every recorded state transition and its remediation task, if any
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.JobHistoryResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/jobs/{id}/audit [get]
func (h *IntegrationHandler) GetJobHistory(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.history.GetHistory(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	audit := history.Audit
	if audit == nil {
		audit = []integration.AuditEntry{}
	}
	h.Success(c, dto.JobHistoryResponse{
		Job:         dto.ToJobResponse(history.Job, true),
		Audit:       audit,
		Remediation: history.Remediation,
	})
}

// RetryJob handles POST /integrations/jobs/:id/retry
//
// @ID           retryIntegrationJob
// @Summary      Retry integration job
// @Description  Resend a job in the error state using its stored transformed payload
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.DispatchResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/jobs/{id}/retry [post]
func (h *IntegrationHandler) RetryJob(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.dispatcher.RetryJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDispatchResponse(result))
}

// CancelJob handles POST /integrations/jobs/:id/cancel
//
// @ID           cancelIntegrationJob
// @Summary      Cancel integration job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Job ID" format(uuid)
// @Param        request body dto.CancelJobRequest true "Cancel request"
// @Success      200 {object} dto.Response{data=dto.JobResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /integrations/jobs/{id}/cancel [post]
func (h *IntegrationHandler) CancelJob(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	job, err := h.dispatcher.CancelJob(c.Request.Context(), tenantID, jobID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToJobResponse(job, false))
}

func toDispatchResponse(r *integrationapp.DispatchResult) dto.DispatchResponse {
	jobID := r.JobID
	return dto.DispatchResponse{
		OK:                 r.OK,
		JobID:              &jobID,
		TraceID:            r.TraceID,
		State:              r.State,
		Attempts:           r.Attempts,
		Errors:             r.Errors,
		RemediationPending: r.RemediationPending,
	}
}
