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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	httpHandlers "github.com/ratewall/ratewall/internal/adapters/http/handlers"
	httpMiddleware "github.com/ratewall/ratewall/internal/adapters/http/middleware"
	redislimiter "github.com/ratewall/ratewall/internal/adapters/storage/redis"
	"github.com/ratewall/ratewall/internal/config"
	"github.com/ratewall/ratewall/internal/core/ports"
	"github.com/ratewall/ratewall/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	limiter, closeFn, err := initLimiter(cfg.Limiter)
	if err != nil {
		logger.Fatal("failed to init limiter", zap.Error(err))
	}
	defer closeFn()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(httpMiddleware.NewRateLimiter(limiter, logger))
	r.Get("/ping", httpHandlers.Ping)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.Limiter.Backend),
		zap.Duration("window", cfg.Limiter.Limit.Window),
		zap.Int("max_requests", cfg.Limiter.Limit.MaxRequests))

	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// initLimiter picks the decision backend. Memory keeps per-process windows;
// redis shares one window across instances.
func initLimiter(cfg config.LimiterConfig) (ports.Limiter, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		limiter, err := services.NewSlidingWindowLimiter(cfg.Limit)
		if err != nil {
			return nil, nil, err
		}
		return limiter, func() {}, nil
	case config.BackendRedis:
		limiter, err := redislimiter.New(redislimiter.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Limit)
		if err != nil {
			return nil, nil, err
		}
		return limiter, func() {
			if err := limiter.Close(); err != nil {
				log.Printf("failed to close redis limiter: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported limiter backend: %s", cfg.Backend)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zapCfg.Level = parsed
	return zapCfg.Build()
}
