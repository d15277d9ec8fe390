package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brushbolt/store-backend/cache"
	"github.com/brushbolt/store-backend/config"
	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/handlers"
	customMiddleware "github.com/brushbolt/store-backend/middleware"
	"github.com/brushbolt/store-backend/routes"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		cancel()
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal("Failed to create indexes: ", err)
	}

	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		if redisCache, err = cache.New(ctx, cfg.RedisURL); err != nil {
			log.Printf("Redis unavailable, running without cache: %v", err)
		}
	}
	cancel()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = customMiddleware.ErrorHandler(cfg.IsDevelopment())

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(customMiddleware.Metrics)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	auth := customMiddleware.NewAuthenticator(tokens, store)
	limiter := customMiddleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	done := make(chan struct{})
	go limiter.Run(time.Minute, done)

	h := handlers.New(store, tokens, redisCache, cfg)
	routes.SetupRoutes(e, h, auth, limiter)

	go func() {
		log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	close(done)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if err := redisCache.Close(); err != nil {
		log.Printf("Closing redis: %v", err)
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		log.Printf("Closing database: %v", err)
	}
	log.Println("Server stopped")
}
