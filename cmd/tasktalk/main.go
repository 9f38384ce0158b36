package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tasktalk/internal/config"
	"tasktalk/internal/httpapi"
	"tasktalk/internal/interpreter"
	"tasktalk/internal/llm"
	"tasktalk/internal/notify"
	"tasktalk/internal/observability"
	"tasktalk/internal/tasks"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	stages := observability.NewCommandStageWindow(256)

	ctx := context.Background()
	store, storeMode, err := tasks.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("task store init failed: %v", err)
	}
	defer store.Close()
	logger.Info("task store ready", zap.String("mode", storeMode))

	classifier, err := llm.NewClassifier(llm.Config{
		Mode:       cfg.LLMMode,
		HTTPURL:    cfg.LLMHTTPURL,
		APIKey:     cfg.LLMAPIKey,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
	})
	if err != nil {
		log.Fatalf("llm classifier init failed: %v", err)
	}

	var notifier notify.Notifier = notify.NewNoopNotifier()
	if cfg.NotifyAPIKey != "" {
		notifier = notify.NewEmailNotifier(cfg.NotifyAPIURL, cfg.NotifyAPIKey, cfg.NotifyFromEmail)
		logger.Info("email notifications enabled")
	}

	interp := interpreter.New(classifier, store, metrics, stages, logger, interpreter.Options{
		UpstreamTimeout: cfg.LLMTimeout,
		ReadLimit:       cfg.ReadLimitDefault,
	})

	api := httpapi.New(cfg, interp, store, storeMode, notifier, metrics, stages, logger)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		_ = httpServer.Close()
	}

	logger.Info("shutdown complete")
}
