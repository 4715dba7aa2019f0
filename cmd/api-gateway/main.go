package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/noah-isme/meeting-planner-api/api/swagger"
	"github.com/noah-isme/meeting-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/meeting-planner-api/internal/middleware"
	"github.com/noah-isme/meeting-planner-api/internal/repository"
	"github.com/noah-isme/meeting-planner-api/internal/service"
	"github.com/noah-isme/meeting-planner-api/pkg/cache"
	"github.com/noah-isme/meeting-planner-api/pkg/config"
	"github.com/noah-isme/meeting-planner-api/pkg/database"
	"github.com/noah-isme/meeting-planner-api/pkg/jobs"
	"github.com/noah-isme/meeting-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/meeting-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/meeting-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/meeting-planner-api/pkg/storage"
)

// @title Meeting Planner API
// @version 1.0.0
// @description Weekly availability grid for a fixed meeting roster
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	roster, err := config.LoadRoster(cfg.Roster)
	if err != nil {
		logr.Fatal("failed to load roster", zap.Error(err))
	}

	store, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open state store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, state cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, cfg.Cache.KeyPrefix, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			checks["cache"] = repo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheRepo != nil)

	stateSvc := service.NewStateService(store, service.StateServiceConfig{
		Backend:      cfg.Store.Backend,
		Participants: roster,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
	})
	weekSvc := service.NewWeekService(stateSvc, time.Now, time.Local)

	exportSvc, queue, err := setupExports(ctx, cfg, weekSvc, metricsSvc, logr)
	if err != nil {
		logr.Fatal("failed to set up exports", zap.Error(err))
	}
	if queue != nil {
		defer queue.Stop()
	}

	limiter := internalmiddleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logr)
	go sweepLimiter(ctx, limiter)

	stateHandler := handler.NewStateHandler(stateSvc, weekSvc)
	weekHandler := handler.NewWeekHandler(weekSvc, stateSvc)
	exportHandler := handler.NewExportHandler(exportSvc, stateSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		meetings := api.Group("/meetings/:id")
		meetings.GET("/state", stateHandler.Get)
		meetings.GET("/grid", stateHandler.Grid)

		mutating := meetings.Group("", limiter.Handler())
		mutating.PUT("/state", stateHandler.Put)
		mutating.POST("/state/toggle", stateHandler.Toggle)
		mutating.POST("/state/range", stateHandler.Range)
		mutating.POST("/exports", exportHandler.Create)

		api.GET("/weeks/current", weekHandler.Current)
		api.GET("/weeks/resolve", weekHandler.Resolve)
		api.GET("/weeks/:timestamp", weekHandler.FromTimestamp)
		api.GET("/slots", weekHandler.Slots)
		api.GET("/participants", weekHandler.Participants)

		api.GET("/exports/download", exportHandler.Download)
		api.GET("/exports/:jobId", exportHandler.Status)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Backend),
			zap.Bool("cache", cacheSvc.Enabled()),
			zap.Bool("exports", queue != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured state repository together with its readiness checks.
func openStore(ctx context.Context, cfg *config.Config) (repository.StateRepository, map[string]handler.ReadinessCheck, func(), error) {
	checks := map[string]handler.ReadinessCheck{}
	switch cfg.Store.Backend {
	case config.StoreBackendFile:
		file, err := storage.NewJSONFile(cfg.Store.DataFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewFileStateRepository(file), checks, func() {}, nil
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		checks["store"] = db.PingContext
		return repository.NewPostgresStateRepository(db), checks, func() { _ = db.Close() }, nil
	case config.StoreBackendMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMongoStateRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection), cfg.Mongo.Timeout)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		checks["store"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		return repo, checks, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// setupExports wires the export service. The queue is nil when exports are disabled.
func setupExports(ctx context.Context, cfg *config.Config, grids *service.WeekService, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(grids, files, signer, service.ExportConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       24 * time.Hour,
		CleanupInterval: time.Hour,
	}, metrics, logr)
	if !cfg.Exports.Enabled {
		return exportSvc, nil, nil
	}

	queue := jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnDiscard:  exportSvc.Discard,
	})
	queue.Start(ctx)
	exportSvc.SetQueue(queue)
	exportSvc.StartCleanup(ctx)
	return exportSvc, queue, nil
}

func sweepLimiter(ctx context.Context, limiter *internalmiddleware.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
