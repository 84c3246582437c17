package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/obralink/backend/docs"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
)

// DocsConfig controls the Swagger UI mount
type DocsConfig struct {
	Enabled bool
	// AllowedNets lists IPs or CIDR ranges that may read the docs; empty allows all
	AllowedNets []string
}

func mountDocs(engine *gin.Engine, cfg DocsConfig) {
	if !cfg.Enabled {
		return
	}
	engine.GET("/swagger/*any", middleware.DocsAccess(cfg.AllowedNets), ginSwagger.WrapHandler(swaggerFiles.Handler))
}
