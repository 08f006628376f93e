// cmd/server/main.go
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
	"github.com/selfhydro/selfhydro-api/internal/api"
	"github.com/selfhydro/selfhydro-api/internal/config"
	"github.com/selfhydro/selfhydro-api/internal/metrics"
	"github.com/selfhydro/selfhydro-api/internal/service"
	"github.com/selfhydro/selfhydro-api/internal/storage"
	"github.com/selfhydro/selfhydro-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Configure(cfg.App.Env)
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.App.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize object store
	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize object store")
	}
	defer store.Close()

	// Initialize services
	m := metrics.New()
	opts := service.Options{StoreTimeout: cfg.Storage.StoreTimeout(), Metrics: m}
	signer := service.NewSigner(store, cfg.Images.SignedURLExpiry, cfg.Images.SignMaxWorkers, m)
	services := &api.Services{
		SensorService: service.NewSensorService(store, opts),
		ImageService: service.NewImageService(store, signer, service.ImageOptions{
			Delivery: cfg.Images.Delivery,
			BaseURL:  cfg.App.BaseURL,
		}, opts),
		Metrics: m,
		Env:     cfg.App.Env,
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("bucket", cfg.Storage.Bucket).
			Str("delivery", cfg.Images.Delivery).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
