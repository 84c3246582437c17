package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/obralink/backend/internal/infrastructure/telemetry"
)

// ProfileLabels tags the rest of the chain with the route pattern and, on
// webhook and template routes, the platform path parameter. Profiles then split
// dispatch, webhook and template work without per-request cardinality.
func ProfileLabels() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		telemetry.WithProfileLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, telemetry.ProfileLabelRoute, route, telemetry.ProfileLabelPlatform, c.Param("platform"))
	}
}
