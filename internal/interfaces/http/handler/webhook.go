package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/logger"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DefaultSignatureHeader carries the HMAC of the webhook body
const DefaultSignatureHeader = "X-Signature"

// WebhookReconciler applies platform status callbacks
type WebhookReconciler interface {
	Reconcile(ctx context.Context, platform integration.PlatformCode, body []byte, signature string) (*integrationapp.WebhookResult, error)
}

// WebhookHandler receives platform status callbacks
type WebhookHandler struct {
	reconciler      WebhookReconciler
	signatureHeader string
}

// NewWebhookHandler creates a new WebhookHandler. An empty header name falls
// back to DefaultSignatureHeader.
func NewWebhookHandler(reconciler WebhookReconciler, signatureHeader string) *WebhookHandler {
	if signatureHeader == "" {
		signatureHeader = DefaultSignatureHeader
	}
	return &WebhookHandler{reconciler: reconciler, signatureHeader: signatureHeader}
}

// clientErrors are webhook failures the platform caused and should not retry as is
var clientErrors = []error{
	integration.ErrWebhookSignature,
	integration.ErrWebhookPayload,
	integration.ErrWebhookUnknownStatus,
	integration.ErrJobNotFound,
	integration.ErrJobInvalidTransition,
	integration.ErrJobTerminal,
	integration.ErrPlatformInvalidCode,
}

// Receive handles POST /webhooks/:platform
//
// @ID           receivePlatformWebhook
// @Summary      Receive platform status callback
// @Description  Verify the body signature and reconcile the referenced job's state
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        platform    path   string true "Platform code"
// @Param        X-Signature header string true "HMAC-SHA256 of the body, sha256=<hex> or bare hex"
// @Success      200 {object} dto.WebhookResponse
// @Failure      400 {object} dto.WebhookResponse
// @Failure      409 {object} dto.WebhookResponse
// @Failure      500 {object} dto.WebhookResponse
// @Router       /webhooks/{platform} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	log := logger.GetGinLogger(c)

	platform, err := integration.ParsePlatformCode(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "unknown platform"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "unable to read body"})
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), platform, body, c.GetHeader(h.signatureHeader))
	if err != nil {
		status := webhookStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("Webhook reconciliation failed",
				zap.String("platform", platform.String()),
				zap.Error(err))
			c.JSON(status, dto.WebhookResponse{Error: "internal error"})
			return
		}
		c.JSON(status, dto.WebhookResponse{Error: err.Error()})
		return
	}

	msg := "processed"
	if result.AlreadyProcessed {
		msg = "already processed"
	} else if !result.Changed {
		msg = "no change"
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{OK: true, Message: msg})
}

func webhookStatus(err error) int {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
