package main // Entry point package

import (
	"context"  // Context for the schema bootstrap
	"log"      // Logging library
	"net/http" // Status codes for the central error handler
	"time"     // Timeout for startup tasks

	"github.com/joho/godotenv"                // Loads .env files into the environment
	"github.com/labstack/echo/v4"             // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Panic recovery
	"go.uber.org/zap"                         // Structured logging

	"github.com/cse-motors/dealership/internal/config"     // Internal config loader
	"github.com/cse-motors/dealership/internal/database"   // MySQL connection and schema bootstrap
	"github.com/cse-motors/dealership/internal/handler"    // HTTP handlers
	"github.com/cse-motors/dealership/internal/queue"      // Review event consumer
	"github.com/cse-motors/dealership/internal/repository" // Persistence layer
	"github.com/cse-motors/dealership/internal/router"     // Route registration
	"github.com/cse-motors/dealership/internal/service"    // Ownership-checked review service
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	cfg := config.Load() // Load environment config

	logger, err := zap.NewProduction()
	if cfg.IsDev() {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Bootstrap(ctx, db); err != nil {
		cancel()
		logger.Fatal("schema bootstrap failed", zap.Error(err))
	}
	cancel()

	// Redis is optional: a nil client disables the login limiter and the
	// classification cache without affecting correctness.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and nav cache disabled")
	}

	accounts := repository.NewAccountRepo(db)
	inventory := repository.NewInventoryRepo(db)
	reviews := repository.NewReviewRepo(db)

	// Classification reads go through the Redis cache when available; Add
	// invalidates so navigation picks up new classifications immediately.
	var classifications handler.ClassificationStore = repository.NewClassificationRepo(db)
	navCfg := config.LoadNavCacheConfig()
	if rdb != nil && navCfg.Enabled {
		classifications = repository.NewCachedClassificationRepo(repository.NewClassificationRepo(db), rdb, navCfg)
	}

	reviewSvc := service.NewReviewService(reviews, inventory, logger)

	accountHandler := handler.NewAccountHandler(cfg, accounts, logger)
	inventoryHandler := handler.NewInventoryHandler(classifications, inventory, reviewSvc, logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, inventory, logger)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())

	// Faults are logged with detail server-side; the client only ever sees a
	// generic failure message.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			if !c.Response().Committed {
				_ = c.JSON(he.Code, echo.Map{"error": he.Message})
			}
			return
		}
		logger.Error("unhandled request error",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
		if !c.Response().Committed {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
		}
	}

	router.RegisterRoutes(e, router.Deps{
		Account:   accountHandler,
		Inventory: inventoryHandler,
		Review:    reviewHandler,
		JWTSecret: cfg.JWTSecret,
		LoginRL:   config.LoadLoginLimitConfig(),
		Redis:     rdb,
	})

	// Background consumer appends review.posted events to logs/review.log.
	// It reconnects on its own; a broker outage never blocks the server.
	go func() {
		if err := queue.StartReviewConsumer(); err != nil {
			logger.Warn("review consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	if err := e.Start(addr); err != nil { // Start HTTP server
		logger.Fatal("server stopped", zap.Error(err))
	}
}
