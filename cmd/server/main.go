package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	integrationapp "github.com/obralink/backend/internal/application/integration"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/auth"
	"github.com/obralink/backend/internal/infrastructure/cache"
	"github.com/obralink/backend/internal/infrastructure/config"
	"github.com/obralink/backend/internal/infrastructure/event"
	"github.com/obralink/backend/internal/infrastructure/logger"
	"github.com/obralink/backend/internal/infrastructure/migration"
	"github.com/obralink/backend/internal/infrastructure/persistence"
	"github.com/obralink/backend/internal/infrastructure/platform"
	"github.com/obralink/backend/internal/infrastructure/scheduler"
	"github.com/obralink/backend/internal/infrastructure/storage"
	"github.com/obralink/backend/internal/infrastructure/telemetry"
	"github.com/obralink/backend/internal/infrastructure/validation"
	"github.com/obralink/backend/internal/interfaces/http/handler"
	"github.com/obralink/backend/internal/interfaces/http/middleware"
	"github.com/obralink/backend/internal/interfaces/http/router"
	"github.com/obralink/backend/migrations"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

const shutdownTimeout = 30 * time.Second

//	@title			ObraLink Integration API
//	@version		1.0
//	@description	Construction compliance integration pipeline: canonical payloads, mapping templates, platform dispatch and job tracking

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.NewForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = baseLog.Sync() }()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			baseLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log := providers.Logs.Bridge(baseLog, zapcore.InfoLevel)

	log.Info("Starting ObraLink integration backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))

	// Database
	if cfg.Database.MigrateOnStart && cfg.Database.Driver == "postgres" {
		if err := migration.UpDSN(cfg.Database.DSN(), migration.Embedded(migrations.FS), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	dbOpts := persistence.Options{
		Logger: logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		system := "postgresql"
		if cfg.Database.Driver == "sqlite" {
			system = "sqlite"
		}
		dbOpts.Plugins = append(dbOpts.Plugins, telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        system,
		}, log))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database handle", zap.Error(err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	metrics, err := telemetry.NewIntegrationMetrics(providers.Meter.Meter("obralink/integration"))
	if err != nil {
		log.Fatal("Failed to create integration metrics", zap.Error(err))
	}

	// Events: job saves write to the outbox, the processor moves them onto the
	// bus and the audit handler records them.
	serializer := event.NewEventSerializer()
	event.RegisterIntegrationEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(db.DB, serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	bus := event.NewInMemoryEventBus(log)

	idempotency, err := cache.NewIdempotencyStore(cfg.Idempotency, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotency.Close() }()

	// Repositories
	jobRepo := persistence.NewGormIntegrationJobRepository(db.DB, outboxPublisher)
	templateRepo := persistence.NewGormMappingTemplateRepository(db.DB)
	remediationRepo := persistence.NewGormRemediationTaskRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)

	auditHandler := event.NewIdempotentHandler(
		event.NewAuditLogHandler(auditRepo, log), idempotency, cfg.Idempotency.TTL, log)
	bus.Subscribe(auditHandler, auditHandler.EventTypes()...)

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, bus, serializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupRetention: cfg.Event.CleanupRetention,
	}, log).ObserveWith(metrics)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
	} else {
		log.Warn("Outbox processor disabled; audit entries are not written by this instance")
	}

	// Platforms
	adapters, err := platform.NewRegistryFromConfig(cfg.Platforms, nil, log)
	if err != nil {
		log.Fatal("Invalid platform configuration", zap.Error(err))
	}
	if len(adapters.Platforms()) == 0 {
		log.Warn("No platforms configured; every dispatch will be rejected")
	}
	verifier := platform.NewHMACVerifier(cfg.Platforms)

	var signer integrationapp.DocumentURLSigner
	if cfg.Storage.Enabled {
		store, err := storage.NewS3DocumentStore(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal("Document bucket unavailable", zap.String("bucket", store.Bucket()), zap.Error(err))
		}
		signer = store
	}

	schemaValidator, err := validation.NewTemplateSchemaValidator(cfg.Integration.TemplateSchemaPath)
	if err != nil {
		log.Fatal("Failed to load template schema", zap.Error(err))
	}


	// Application services
	engine := integration.NewMappingEngine(nil, log)
	locker := integrationapp.NewJobLocker()

	dispatchService := integrationapp.NewDispatchService(integrationapp.DispatchServiceConfig{
		Jobs:            jobRepo,
		Templates:       templateRepo,
		Adapters:        adapters,
		Remediation:     remediationRepo,
		Engine:          engine,
		Locker:          locker,
		Metrics:         metrics,
		Logger:          log,
		DispatchTimeout: cfg.Integration.DispatchTimeout,
		AttemptLease:    cfg.Integration.AttemptLease,
		MaxAttempts:     cfg.Integration.MaxAttempts,
	})
	webhookService := integrationapp.NewWebhookService(integrationapp.WebhookServiceConfig{
		Jobs:           jobRepo,
		Verifier:       verifier,
		Idempotency:    idempotency,
		Audit:          outboxPublisher,
		Remediation:    remediationRepo,
		Locker:         locker,
		Metrics:        metrics,
		Logger:         log,
		IdempotencyTTL: cfg.Idempotency.TTL,
	})
	templateService := integrationapp.NewTemplateService(templateRepo, engine, schemaValidator, log)
	payloadService := integrationapp.NewPayloadService(signer, log)
	historyService := integrationapp.NewHistoryService(jobRepo, auditRepo, remediationRepo)

	// Background workers
	retryPoller, err := scheduler.NewRetryPoller(scheduler.RetryPollerConfig{
		PollInterval: cfg.Integration.RetryPollInterval,
		BatchSize:    cfg.Integration.RetryBatchSize,
		Workers:      cfg.Integration.Workers,
		Lease:        cfg.Integration.AttemptLease,
		JobTimeout:   cfg.Integration.AttemptLease,
	}, jobRepo, dispatchService, log)
	if err != nil {
		log.Fatal("Invalid retry poller configuration", zap.Error(err))
	}
	if err := retryPoller.Start(ctx); err != nil {
		log.Fatal("Failed to start retry poller", zap.Error(err))
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		perSecond := float64(cfg.HTTP.RateLimitRequests) / cfg.HTTP.RateLimitWindow.Seconds()
		rateLimiter = middleware.NewRateLimiter(perSecond, cfg.HTTP.RateLimitRequests)
	}

	housekeeping := scheduler.NewHousekeeping(5*time.Minute, log)
	mustRegister(log, housekeeping, "remediation_sweep", cfg.Integration.RemediationSweep, func(ctx context.Context) error {
		n, err := dispatchService.CompletePendingRemediations(ctx, cfg.Integration.RemediationBatch)
		if n > 0 {
			log.Info("Completed pending remediation tasks", zap.Int("count", n))
		}
		return err
	})
	if cfg.Event.CleanupEnabled {
		mustRegister(log, housekeeping, "outbox_cleanup", cfg.Event.CleanupSchedule, func(ctx context.Context) error {
			_, err := outboxProcessor.Cleanup(ctx)
			return err
		})
	}
	if rateLimiter != nil {
		mustRegister(log, housekeeping, "rate_limiter_prune", "0 */10 * * * *", func(context.Context) error {
			rateLimiter.Prune()
			return nil
		})
	}
	housekeeping.Start()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	httpEngine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		HSTS:           cfg.App.Env == "production",
		CORS:           cors,
		RequestTimeout: cfg.HTTP.WriteTimeout,
		Meter:          providers.Meter.Meter("obralink/http"),
		Logger:         log,
		ProfileLabels:  providers.Profiler.IsEnabled(),
		Docs: router.DocsConfig{
			Enabled:     cfg.HTTP.Docs.Enabled,
			AllowedNets: cfg.HTTP.Docs.AllowedNets,
		},
	}, router.Handlers{
		Integration: handler.NewIntegrationHandler(dispatchService, payloadService, historyService),
		Templates:   handler.NewTemplateHandler(templateService),
		Webhooks:    handler.NewWebhookHandler(webhookService, cfg.Integration.SignatureHeader),
		Health: handler.NewHealthHandler(telemetry.ServiceVersion, adapters, map[string]handler.HealthCheck{
			"database": sqlDB.PingContext,
			"idempotency": func(ctx context.Context) error {
				_, err := idempotency.IsProcessed(ctx, "health:ping")
				return err
			},
		}),
		Auth:              middleware.JWTAuth(jwtCfg),
		RateLimiter:       rateLimiter,
		WebhookBodyLimit:  cfg.HTTP.MaxBodySize,
		TemplateAdminRole: cfg.Integration.TemplateAdminRole,
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := httpEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := retryPoller.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping retry poller", zap.Error(err))
	}
	if err := housekeeping.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping housekeeping", zap.Error(err))
	}
	log.Info("Server exited")
}

func mustRegister(log *zap.Logger, h *scheduler.Housekeeping, name, spec string, task scheduler.Task) {
	if err := h.Register(name, spec, task); err != nil {
		log.Fatal("Failed to schedule housekeeping task", zap.String("task", name), zap.Error(err))
	}
}
