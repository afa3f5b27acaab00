package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/service"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/backend"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/config"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/http"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/http/handler"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/storage/file"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/storage/memory"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/telemetry"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		t, err := telemetry.NewTelemetry(&cfg.OTLP)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
		telem = t
	} else {
		telem = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	// Get tracer, meter, and logger instances
	tracer := telem.TracerProvider.Tracer("cart-api")
	meter := telem.MeterProvider.Meter("cart-api")
	logger := telem.Logger

	logger.Info("Starting Cart API")

	// Initialize the persistence adapter (dependency injection)
	var store domain.CartStore
	if cfg.Cart.StorageFile != "" {
		store = file.NewCartStore(cfg.Cart.StorageFile, tracer, logger)
	} else {
		store = memory.NewCartStore(tracer, logger)
	}

	// Initialize the backend sync adapter; nil disables sync
	var backendCart domain.BackendCart
	if cfg.Backend.BaseURL != "" {
		backendCart = backend.NewClient(&cfg.Backend, tracer, logger)
	}

	// Initialize the cart service and hydrate it from persisted state
	cartService := service.NewCartService(store, backendCart, tracer, meter, logger)
	cartService.Hydrate(ctx)

	// Initialize handler
	cartHandler := handler.NewCartHandler(cartService, logger)

	// Initialize HTTP server
	server := http.NewServer(&cfg.Server, cartHandler, tracer, logger, telem)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", "error", err.Error())
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	logger.Info("Server stopped")
}
