package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docecupcake/cupcake-backend/config"
	"github.com/docecupcake/cupcake-backend/internal/app/controller"
	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	"github.com/docecupcake/cupcake-backend/internal/db"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/docecupcake/cupcake-backend/internal/router"
	"github.com/docecupcake/cupcake-backend/internal/scheduler"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/docecupcake/cupcake-backend/internal/storage"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/docecupcake/cupcake-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Cupcake Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed the catalog on first start (optional)
	if err := db.SeedCupcakes(db.GetDB()); err != nil {
		logger.Warn("Failed to seed cupcakes", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Token blacklist: Redis when enabled, in-process otherwise
	var blacklist redis.Blacklist
	if cfg.Redis.Enabled {
		client, err := redis.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer client.Close()
		blacklist = redis.NewTokenBlacklist(client)
	} else {
		logger.Warn("Redis disabled, revoked tokens are kept in memory")
		blacklist = redis.NewMemoryBlacklist()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	cupcakeRepo := repository.NewCupcakeRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	var policy model.TransitionPolicy
	if cfg.Order.StrictTransitions {
		policy = model.StrictTransitions{}
	}

	authService := service.NewAuthService(
		userRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	cupcakeService := service.NewCupcakeService(cupcakeRepo, favoriteRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, cupcakeRepo)
	orderService := service.NewOrderService(orderRepo, cupcakeRepo, policy)
	exportService := service.NewExportService(orderService)
	cartService := service.NewCartService(cupcakeRepo)
	checkoutService := service.NewCheckoutService(orderService)

	imageStore := storage.NewS3Storage(
		context.Background(),
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	uploadService := service.NewUploadService(imageStore, cfg.Upload.MaxImageWidth, cfg.Upload.MaxBytes)

	// Browsing sessions
	registry := session.NewRegistry(cfg.Session.IdleTimeout)
	sessionMiddleware := middleware.NewSessionMiddleware(
		middleware.NewCookieStore(cfg.Session.Secret, int(cfg.Session.IdleTimeout.Seconds()), cfg.Session.SecureCookie),
		cfg.Session.CookieName,
		registry,
	)

	sweeper := scheduler.NewSessionSweeper(registry, cfg.Session.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", err)
	}
	defer sweeper.Stop()

	// Initialize controllers
	authController := controller.NewAuthController(authService, sessionMiddleware)
	cupcakeController := controller.NewCupcakeController(cupcakeService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	orderController := controller.NewOrderController(orderService, exportService)
	sessionController := controller.NewSessionController(cartService, checkoutService, sessionMiddleware)
	uploadController := controller.NewUploadController(uploadService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	// Setup router
	r := router.NewRouter(
		authController,
		cupcakeController,
		favoriteController,
		orderController,
		sessionController,
		uploadController,
		authMiddleware,
		sessionMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
