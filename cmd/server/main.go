package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/application/generator"
	"github.com/shoptag/backend/internal/application/tagger"
	"github.com/shoptag/backend/internal/infrastructure/cache"
	"github.com/shoptag/backend/internal/infrastructure/config"
	"github.com/shoptag/backend/internal/infrastructure/logger"
	"github.com/shoptag/backend/internal/infrastructure/persistence"
	"github.com/shoptag/backend/internal/infrastructure/shopify"
	"github.com/shoptag/backend/internal/infrastructure/tasks"
	"github.com/shoptag/backend/internal/interfaces/http/handler"
	"github.com/shoptag/backend/internal/interfaces/http/middleware"
	"github.com/shoptag/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopTag Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Initialize repositories
	auditRepo := persistence.NewGormTagAuditRepository(db.DB)

	// Initialize Shopify Admin API client
	shopifyConfig := shopify.NewConfig(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken)
	shopifyConfig.APIVersion = cfg.Shopify.APIVersion
	shopifyConfig.Timeout = cfg.Shopify.Timeout
	shopifyConfig.MaxRetries = cfg.Shopify.MaxRetries
	shopifyConfig.SearchPageSize = cfg.Shopify.SearchPageSize
	shopifyConfig.CollectionPageSize = cfg.Shopify.CollectionPageSize
	shopifyConfig.ThrottleFloor = cfg.Shopify.ThrottleFloor

	shopifyClient, err := shopify.NewClient(shopifyConfig, log)
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}

	// Collection cache: Redis when enabled, in-memory otherwise
	collectionCache := cache.NewCollectionCacheFactory(cfg.Redis, log).CreateCache()

	// Deferred task runner for background tag operations
	runner := tasks.NewRunner(cfg.Tasks, log)
	runner.Start()
	log.Info("Task runner started",
		zap.Int("workers", cfg.Tasks.Workers),
		zap.Int("queue_size", cfg.Tasks.QueueSize),
	)

	// Initialize application services
	taggerService := tagger.NewService(shopifyClient, auditRepo, collectionCache, runner, log)
	generatorService := generator.NewService(shopifyClient, log)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. SecureHeaders - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecureHeaders())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Register routes under /api/v1
	r := router.NewRouter(engine)
	r.Register(handler.NewTaggerHandler(taggerService, log)).
		Register(handler.NewGeneratorHandler(generatorService, log)).
		Register(handler.NewHealthHandler(db, cfg.App.Name, cfg.App.Env))
	r.Setup()

	// Create HTTP server with config. Synchronous apply-tag runs can take
	// minutes on large catalogs, hence the generous write timeout default.
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain the deferred task queue before exiting so accepted work is not lost
	if err := runner.Stop(ctx); err != nil {
		log.Error("Task runner did not drain in time", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
