package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cartCompanion/app/echo-server/router"
	"cartCompanion/business/bandit"
	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/business/recommend"
	"cartCompanion/business/retrain"
	"cartCompanion/internal/middleware"
	"cartCompanion/internal/repository/memory"
	"cartCompanion/internal/repository/modelstore"
	psqlRepo "cartCompanion/internal/repository/postgres"
	redisRepo "cartCompanion/internal/repository/redis"
	"cartCompanion/internal/rest"
	"cartCompanion/pkg/config"
	"cartCompanion/pkg/database"
	redisdb "cartCompanion/pkg/database/redis"
	"cartCompanion/pkg/logger"
	"cartCompanion/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const memoryEventCapacity = 100000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Cart Companion", "version", cfg.App.Version, "env", cfg.App.Environment)
	metrics.Init()

	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if db != nil {
		logger.Info("Database connected successfully", "driver", cfg.Database.Driver)
	}

	cat, err := loadCatalog(ctx, cfg, db)
	if err != nil {
		logger.Fatal("Failed to load catalog", "error", err)
	}

	events, err := newEventLog(ctx, db)
	if err != nil {
		logger.Fatal("Failed to init event log", "error", err)
	}

	store := modelstore.NewFileStore()
	model, err := loadModel(store, cfg.Model.Path, cat)
	if err != nil {
		logger.Fatal("Failed to init model", "error", err)
	}

	stateStore, redisClient, err := newStateStore(ctx, cfg, db)
	if err != nil {
		logger.Fatal("Failed to init bandit state store", "error", err)
	}

	recoCfg := cfg.RecommendConfig()
	explorer := bandit.NewUCB(recoCfg.UCBAlpha)
	if stateStore != nil {
		if err := bandit.LoadInto(ctx, stateStore, bandit.DefaultStateKey, explorer); err != nil {
			logger.Warn("Bandit state not restored", "error", err)
		}
	}

	elig := cfg.EligibilityChecker()
	if elig != nil {
		logger.Info("Excluding items from recommendations", "items", cfg.Recommend.ExcludedItems)
	}

	engine, err := recommend.NewEngine(cat, recoCfg, model, explorer, elig)
	if err != nil {
		logger.Fatal("Failed to init recommendation engine", "error", err)
	}

	// Init service
	recommendService := recommend.NewService(engine, events)
	retrainer := retrain.NewRetrainer(cat, events, retrain.DefaultConfig())

	// Init handler
	recommendHandler := rest.NewRecommendHandler(recommendService)
	adminHandler := rest.NewAdminHandler(engine, store, retrainer, stateStore, cfg.Model.Path)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8000"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	if cfg.JWT.AdminSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is empty, admin endpoints are disabled")
	}

	// Setup routes
	router.SetHealthRoutes(e, recommendHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	api := e.Group("/api/v1")
	router.SetRecommendRoutes(api, recommendHandler, cfg.JWT.AdminSecret)
	router.SetAdminRoutes(api, adminHandler, cfg.JWT.AdminSecret)

	snapshotCtx, stopSnapshots := context.WithCancel(ctx)
	snapshotsDone := make(chan struct{})
	go func() {
		defer close(snapshotsDone)
		runSnapshots(snapshotCtx, stateStore, engine.Bandit(), cfg.Model.SnapshotInterval)
	}()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	stopSnapshots()
	<-snapshotsDone
	if stateStore != nil {
		if err := bandit.SaveFrom(shutdownCtx, stateStore, bandit.DefaultStateKey, engine.Bandit()); err != nil {
			logger.Error("Final bandit snapshot failed", "error", err)
		}
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}
	if err := database.Close(db); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
}

func loadCatalog(ctx context.Context, cfg *config.Config, db *gorm.DB) (*catalog.Catalog, error) {
	if cfg.Database.CatalogSource != config.CatalogDB {
		return catalog.Load(ctx, catalog.NewSampleSource())
	}

	repo := psqlRepo.NewCatalogRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if empty {
		logger.Info("Catalog tables empty, seeding sample menu")
		if err := repo.Seed(ctx, catalog.SampleItems(), catalog.SampleUsers(), catalog.SampleAffinities()); err != nil {
			return nil, err
		}
	}
	return catalog.Load(ctx, repo)
}

func newEventLog(ctx context.Context, db *gorm.DB) (recommend.EventLog, error) {
	if db == nil {
		logger.Warn("Using in-memory event log, feedback is lost on restart")
		return memory.NewFeedbackRepository(memoryEventCapacity), nil
	}
	repo := psqlRepo.NewFeedbackRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// loadModel falls back to a model trained on synthetic data when the file is
// missing or unreadable. A file with the wrong dimension is fatal.
func loadModel(store *modelstore.FileStore, path string, cat *catalog.Catalog) (*ranker.LogisticModel, error) {
	m, err := store.Load(path)
	if err == nil {
		if err := m.Validate(ranker.FeatureDim); err != nil {
			return nil, fmt.Errorf("model %s: %w", path, err)
		}
		logger.Info("Model loaded", "path", path)
		return m, nil
	}
	if !errors.Is(err, modelstore.ErrModelLoad) {
		return nil, err
	}

	logger.Warn("Model file unavailable, training default model", "path", path, "error", err)
	return ranker.TrainDefaultModel(cat)
}

func newStateStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (bandit.StateStore, *goredis.Client, error) {
	switch cfg.Model.StateStore {
	case config.StateStoreRedis:
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Redis connected successfully")
		return redisRepo.NewBanditStateRepository(client, 0), client, nil
	case config.StateStorePostgres:
		repo := psqlRepo.NewBanditStateRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	default:
		return nil, nil, nil
	}
}

func runSnapshots(ctx context.Context, store bandit.StateStore, b *bandit.UCB, every time.Duration) {
	if store == nil || every <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bandit.SaveFrom(ctx, store, bandit.DefaultStateKey, b); err != nil {
				logger.Warn("Periodic bandit snapshot failed", "error", err)
			}
		}
	}
}
