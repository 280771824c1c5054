package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/api/handlers"
	"github.com/ghi-core/backend/internal/auth"
	rediscache "github.com/ghi-core/backend/internal/cache/redis"
	"github.com/ghi-core/backend/internal/collector/beacon"
	"github.com/ghi-core/backend/internal/collector/social"
	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/middleware/ratelimit"
	"github.com/ghi-core/backend/internal/middleware/security"
	"github.com/ghi-core/backend/internal/middleware/validation"
	"github.com/ghi-core/backend/internal/scheduler"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/sqlite"
	"github.com/ghi-core/backend/internal/workflow"
	"github.com/ghi-core/backend/pkg/config"
	appLogger "github.com/ghi-core/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting outbreak intelligence API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	if err := storage.SeedReferenceData(context.Background(), sqliteClient); err != nil {
		appLogger.Warn("Failed to seed reference data", zap.Error(err))
	}

	var snapshotCache beacon.SnapshotCache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, snapshot caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			snapshotCache = redisClient
		}
	}

	var beaconCollector *beacon.Collector
	if cfg.Beacon.Enabled {
		fetcher := beacon.NewFetcher(
			cfg.Beacon.ReaderProxy,
			cfg.Beacon.BaseURL,
			time.Duration(cfg.Beacon.TimeoutSec)*time.Second,
			cfg.Beacon.MaxRetries,
		)
		beaconCollector = beacon.NewCollector(sqliteClient, fetcher, snapshotCache, cfg.Beacon.BaseURL)
	}

	var socialCollector *social.Collector
	if cfg.Listener.Enabled {
		socialCollector = social.NewCollector(sqliteClient, social.NewMockSource())
	}

	checker := auth.RoleChecker{}
	gate := workflow.NewTriageGate(sqliteClient, checker)
	assessments := workflow.NewAssessmentWorkflow(sqliteClient, checker)
	ledger := workflow.NewEscalationLedger(sqliteClient, checker)
	bridge := workflow.NewPromotionBridge(sqliteClient, checker)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID, X-User-Role",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		IsDevelopment:  cfg.Security.IsDevelopment,
	}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxBodySize: cfg.Server.BodyLimit,
		Logger:      appLogger.Log,
	}))

	signalHandler := handlers.NewSignalHandler(sqliteClient, gate)
	assessmentHandler := handlers.NewAssessmentHandler(sqliteClient, assessments)
	escalationHandler := handlers.NewEscalationHandler(sqliteClient, ledger)
	socialHandler := handlers.NewSocialHandler(sqliteClient, bridge)
	// Assign through a nil check so a disabled collector stays a nil
	// interface instead of a typed nil pointer.
	var beaconRunner, socialRunner handlers.Runner
	if beaconCollector != nil {
		beaconRunner = beaconCollector
	}
	if socialCollector != nil {
		socialRunner = socialCollector
	}
	collectorHandler := handlers.NewCollectorHandler(sqliteClient, beaconRunner, socialRunner)

	api := app.Group("/api/v1")

	api.Get("/signals", signalHandler.ListSignals)
	api.Get("/signals/:id", signalHandler.GetSignal)
	api.Post("/signals/:id/accept", signalHandler.Accept)
	api.Post("/signals/:id/reject", signalHandler.Reject)

	api.Get("/assessments", assessmentHandler.ListAssessments)
	api.Get("/assessments/:id", assessmentHandler.GetAssessment)
	api.Put("/assessments/:id", assessmentHandler.Save)
	api.Post("/assessments/:id/escalate", assessmentHandler.Escalate)
	api.Post("/assessments/:id/complete", assessmentHandler.Complete)

	api.Get("/escalations", escalationHandler.ListEscalations)
	api.Get("/escalations/:id", escalationHandler.GetEscalation)
	api.Post("/escalations/:id/resolve", escalationHandler.Resolve)

	api.Get("/social-signals", socialHandler.ListSocialSignals)
	api.Get("/social-signals/:id", socialHandler.GetSocialSignal)
	api.Post("/social-signals/:id/promote", socialHandler.Promote)
	api.Post("/social-signals/:id/dismiss", socialHandler.Dismiss)

	api.Post("/collect/beacon", collectorHandler.CollectBeacon)
	api.Post("/collect/social", collectorHandler.CollectSocial)
	api.Get("/monitored-accounts", collectorHandler.ListMonitoredAccounts)
	api.Get("/listener-keywords", collectorHandler.ListListenerKeywords)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	sched := scheduler.New()
	if beaconCollector != nil {
		sched.Add("beacon", beaconCollector, time.Duration(cfg.Beacon.IntervalMin)*time.Minute)
	}
	if socialCollector != nil {
		sched.Add("social", socialCollector, time.Duration(cfg.Listener.IntervalMin)*time.Minute)
	}
	sched.Start()
	defer sched.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
