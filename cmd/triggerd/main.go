package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"triggerd/internal/bootstrap"
	"triggerd/internal/config"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := zapr.NewLogger(zapLogger)

	rt, err := bootstrap.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error(err, "runtime init failed")
		log.Fatal(err)
	}
	defer rt.Cleanup()

	summary := cfg.Summary()
	logger.Info("startup config",
		"repository_mode", summary.RepositoryMode,
		"platforms", summary.Platforms,
		"queue_capacity", summary.QueueCapacity,
		"sink_configured", summary.SinkConfigured,
		"jwt_enabled", summary.JWTEnabled,
		"dev_insecure", summary.DevInsecure,
	)
	logger.Info("triggerd listening", "addr", cfg.Addr)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           rt.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Error(err, "http server failed")
		log.Fatal(err)
	}
}
