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

	"github.com/Dan9191/umkm-health/internal/config"
	"github.com/Dan9191/umkm-health/internal/forecast"
	"github.com/Dan9191/umkm-health/internal/handler"
	"github.com/Dan9191/umkm-health/internal/logger"
	"github.com/Dan9191/umkm-health/internal/middleware"
	"github.com/Dan9191/umkm-health/internal/repository"
	"github.com/Dan9191/umkm-health/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load model artifacts once; they are read-only afterwards
	repo := repository.NewRepository(log)
	net, err := repo.LoadClassifier(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to load classifier: %v", err)
	}
	sc, err := repo.LoadScaler(cfg.ScalerPath)
	if err != nil {
		log.Fatalf("Failed to load scaler: %v", err)
	}
	labels, err := repo.LoadLabels(cfg.LabelsPath)
	if err != nil {
		log.Fatalf("Failed to load label classes: %v", err)
	}
	if net.OutputDim() != len(labels) {
		log.Fatalf("Classifier has %d outputs but %d label classes", net.OutputDim(), len(labels))
	}
	log.Infof("Loaded classifier %s with %d classes", cfg.ModelPath, len(labels))

	// Initialize layers
	svc := service.NewService(net, sc, labels, forecast.NewSeasonal(), cfg.InferenceTimeout, log)
	h := handler.NewHandler(svc, log)

	// Setup router
	r := handler.NewRouter(h,
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}
