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

	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/application"
	appanalysis "github.com/rumera-ai/rumera/internal/application/analysis"
	"github.com/rumera-ai/rumera/internal/application/models"
	"github.com/rumera-ai/rumera/internal/config"
	"github.com/rumera-ai/rumera/internal/infra/httpserver"
	"github.com/rumera-ai/rumera/internal/infra/imaging"
	"github.com/rumera-ai/rumera/internal/infra/inference/hf"
	"github.com/rumera-ai/rumera/internal/middleware"
)

// warmupDelay lets the listener come up before pipelines start loading.
const warmupDelay = 500 * time.Millisecond

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("dotenv: %v", err)
	}

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if cfg.Auth.DemoMode {
		logger.Warn("AUTH_DEMO_MODE is on: tokens are trusted without a user store lookup when the store is unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkers := map[string]middleware.HealthChecker{}

	// persistence (optional)
	stores, closeDB := openStores(ctx, cfg, logger)
	defer closeDB()
	if stores.db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: stores.db}
	}

	// quota + archive (optional)
	limiter, closeRedis := openQuota(ctx, cfg, logger)
	defer closeRedis()
	if limiter != nil {
		checkers["redis"] = middleware.CheckerFunc(limiter.Ping)
	}
	archive := openArchive(ctx, cfg, logger)
	if archive != nil {
		checkers["minio"] = middleware.CheckerFunc(archive.Ping)
	}

	// local models
	loader := hf.NewLoader(hf.Config{
		Enabled:  cfg.Inference.Enabled,
		Endpoint: cfg.Inference.Endpoint,
		Token:    cfg.Inference.Token,
		Timeout:  cfg.Inference.Timeout,
	}, logger)
	registry := models.NewRegistry(loader, models.DefaultSpecs(cfg.Inference.Models), logger, cfg.Inference.LoadTimeout)
	ocr := hf.NewOCR(loader, cfg.Inference.OCRModel, cfg.Inference.LoadTimeout, logger)

	metrics := middleware.NewMetrics()
	clock := application.SystemClock{}

	// init services
	svc := &appanalysis.Service{
		Pipelines: registry,
		OCR:       ocr,
		Inspector: imaging.Inspector{},
		Metrics:   metrics,
		Clock:     clock,
		Logger:    logger,
	}
	if llm := newLLM(ctx, cfg, logger); llm != nil {
		svc.LLM = llm
	}
	if stores.history != nil {
		svc.Records = stores.history
	}
	if limiter != nil {
		svc.Quota = limiter
	}
	if archive != nil {
		svc.Archive = archive
	}

	authSvc, err := newAuth(cfg, stores, clock, logger)
	if err != nil {
		logger.Fatal("auth init error", zap.Error(err))
	}

	// init router
	handler := httpserver.NewRouter(httpserver.Deps{
		Analysis:    svc,
		Auth:        authSvc,
		Models:      registry,
		Metrics:     metrics,
		Checkers:    checkers,
		Limiter:     middleware.NewRateLimiter(ctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// warm up pipelines in the background; failures only flip modalities to fallback
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(warmupDelay):
		}
		status := registry.Initialize(ctx)
		fields := make([]zap.Field, 0, len(status))
		for m, st := range status {
			fields = append(fields, zap.String(string(m), string(st)))
		}
		logger.Info("model warmup finished", fields...)
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
