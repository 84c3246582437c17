// Package handler holds the gin handlers of the integration API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/logger"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, c.GetString(middleware.RequestIDKey)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationFailed sends a 422 response listing every violated rule
func (h *BaseHandler) ValidationFailed(c *gin.Context, code, message string, errs []string) {
	resp := dto.NewErrorResponseWithRequestID(code, message, c.GetString(middleware.RequestIDKey))
	resp.Error.Details = dto.DetailsFromMessages(errs)
	c.JSON(dto.GetHTTPStatus(code), resp)
}

// tenantID returns the authenticated tenant or writes a 401
func (h *BaseHandler) tenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := middleware.GetTenantID(c)
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant context is required")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter or writes a 400
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// platformParam parses a platform code or writes a 400
func (h *BaseHandler) platformParam(c *gin.Context, raw string) (integration.PlatformCode, bool) {
	code, err := integration.ParsePlatformCode(raw)
	if err != nil {
		h.BadRequest(c, "Invalid platform code: "+strconv.Quote(raw))
		return "", false
	}
	return code, true
}

// errorMapping maps sentinel errors to API codes
var errorMapping = []struct {
	err     error
	code    string
	message string
}{
	{integration.ErrJobNotFound, dto.ErrCodeNotFound, "Integration job not found"},
	{integration.ErrTemplateNotFound, dto.ErrCodeNotFound, "Mapping template not found"},
	{integration.ErrRemediationTaskNotFound, dto.ErrCodeNotFound, "Remediation task not found"},
	{integration.ErrTemplateVersionConflict, dto.ErrCodeConflict, "Template version already exists"},
	{shared.ErrConcurrencyConflict, dto.ErrCodeConcurrencyConflict, "Job was modified concurrently, retry the request"},
	{integration.ErrJobTerminal, dto.ErrCodeInvalidState, "Job is in a terminal state"},
	{integration.ErrJobNotRetryable, dto.ErrCodeInvalidState, "Job cannot be retried in its current state"},
	{integration.ErrJobInvalidTransition, dto.ErrCodeInvalidState, "Operation not allowed in the job's current state"},
	{integration.ErrTemplateInvalid, dto.ErrCodeTemplateInvalid, "Invalid mapping template"},
	{integration.ErrPlatformNotConfigured, dto.ErrCodePlatformNotConfigured, "Platform is not configured"},
	{integration.ErrPlatformInvalidCode, dto.ErrCodeBadRequest, "Invalid platform code"},
	{integration.ErrInvalidTenantID, dto.ErrCodeBadRequest, "Invalid tenant"},
	{context.DeadlineExceeded, dto.ErrCodeUnavailable, "Request timed out"},
}

// HandleError converts service errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			h.Error(c, dto.GetHTTPStatus(m.code), m.code, m.message)
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
