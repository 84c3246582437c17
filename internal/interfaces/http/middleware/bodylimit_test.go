package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/webhook", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.String(http.StatusBadRequest, "body too large")
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
	}{
		{name: "within limit", limit: 1024, body: `{"ok":true}`, contentLength: 11, wantStatus: http.StatusOK},
		{name: "declared length over limit", limit: 100, body: strings.Repeat("x", 200), contentLength: 200, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "streamed body over limit", limit: 50, body: strings.Repeat("x", 100), contentLength: -1, wantStatus: http.StatusBadRequest},
		{name: "zero limit falls back to default", limit: 0, body: strings.Repeat("x", 4096), contentLength: 4096, wantStatus: http.StatusOK},
		{name: "default limit still applies", limit: -1, body: "x", contentLength: DefaultWebhookBodyLimit + 1, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			newRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
			}
		})
	}
}
