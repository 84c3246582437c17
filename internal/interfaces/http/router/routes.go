package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/obralink/backend/internal/infrastructure/logger"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"github.com/obralink/backend/internal/interfaces/http/handler"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
)

// EngineConfig holds the global middleware settings
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	HSTS           bool
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	Meter          metric.Meter
	Logger         *zap.Logger
	// ProfileLabels tags request work with its route for the continuous profiler
	ProfileLabels bool
	// Docs mounts the Swagger UI at /swagger when Enabled
	Docs DocsConfig
}

// Handlers are the API endpoints and the guards in front of them
type Handlers struct {
	Integration *handler.IntegrationHandler
	Templates   *handler.TemplateHandler
	Webhooks    *handler.WebhookHandler
	Health      *handler.HealthHandler

	// Auth authenticates tenant requests; nil leaves them open
	Auth gin.HandlerFunc
	// RateLimiter throttles tenant requests; nil disables throttling
	RateLimiter *middleware.RateLimiter
	// WebhookBodyLimit caps webhook bodies in bytes; zero means 1 MiB
	WebhookBodyLimit int64
	// TemplateAdminRole is required to create or seed templates when set
	TemplateAdminRole string
}

// NewEngine builds the gin engine with global middleware and every API route
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(log),
		middleware.Secure(cfg.HSTS),
		middleware.CORS(cfg.CORS),
		middleware.HTTPMetrics(cfg.Meter),
	)
	if cfg.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.ProfileLabels {
		engine.Use(middleware.ProfileLabels())
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", c.GetString(middleware.RequestIDKey)))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}
	mountDocs(engine, cfg.Docs)

	api := NewAPI(engine, DefaultAPIVersion)
	if h.Health != nil {
		api.Attach(NewMount("/health").GET("", h.Health.Check))
	}
	if h.Integration != nil || h.Templates != nil {
		api.Attach(integrationMount(h))
	}
	if h.Webhooks != nil {
		api.Attach(NewMount("/webhooks", middleware.BodyLimit(h.WebhookBodyLimit), middleware.SpanEnricher()).
			POST("/:platform", h.Webhooks.Receive))
	}

	return engine
}

func integrationMount(h Handlers) *Mount {
	m := NewMount("/integrations").Guard(h.Auth)
	if h.RateLimiter != nil {
		m.Guard(middleware.RateLimit(h.RateLimiter))
	}
	m.Guard(middleware.SpanEnricher())

	if ih := h.Integration; ih != nil {
		m.POST("/payload", ih.BuildPayload)
		m.POST("/dispatch", ih.Dispatch)

		m.Nest("/jobs").
			GET("", ih.ListJobs).
			GET("/:id", ih.GetJob).
			GET("/:id/audit", ih.GetJobHistory).
			POST("/:id/retry", ih.RetryJob).
			POST("/:id/cancel", ih.CancelJob)
	}

	if th := h.Templates; th != nil {
		admin := func(next gin.HandlerFunc) []gin.HandlerFunc {
			if h.TemplateAdminRole == "" {
				return []gin.HandlerFunc{next}
			}
			return []gin.HandlerFunc{middleware.RequireRole(h.TemplateAdminRole), next}
		}

		m.Nest("/templates").
			GET("", th.ListTemplates).
			POST("/validate", th.ValidateTemplate).
			POST("/preview", th.PreviewTemplate).
			POST("", admin(th.CreateTemplate)...).
			POST("/seed", admin(th.SeedTemplates)...).
			GET("/:platform", th.GetTemplate)
	}
	return m
}
