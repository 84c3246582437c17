package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obralink/backend/internal/interfaces/http/dto"
)

// DefaultWebhookBodyLimit applies when BodyLimit is given a non-positive limit
const DefaultWebhookBodyLimit int64 = 1 << 20

// BodyLimit caps inbound bodies. Webhook handlers read the whole body to verify
// its HMAC, so the cap bounds memory per request. A declared Content-Length over
// the cap is refused with 413 before reading; a chunked body fails on read instead.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultWebhookBodyLimit
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", c.GetString(RequestIDKey)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
