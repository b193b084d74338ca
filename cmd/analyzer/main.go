package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/newsmood/config"
	"github.com/spacesedan/newsmood/internal/analysis"
	"github.com/spacesedan/newsmood/internal/clients"
	"github.com/spacesedan/newsmood/internal/logging"
	"github.com/spacesedan/newsmood/internal/monitoring"
	"github.com/spacesedan/newsmood/internal/sentiment"
	"github.com/spacesedan/newsmood/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load(env)
	logging.InitLogger(cfg.Log.Level)
	if err != nil {
		slog.Error("[Main] Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vocab, err := sentiment.VocabularyFor(cfg.Model.Language)
	if err != nil {
		slog.Error("[Main] Invalid sentiment language", slog.String("error", err.Error()))
		os.Exit(1)
	}
	labels := sentiment.NewLabelMapper(vocab)

	// the model is loaded before the listener opens
	classifier, err := sentiment.NewClassifier(cfg)
	if err != nil {
		slog.Error("[Main] Failed to load classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := sentiment.Close(classifier); err != nil {
			slog.Warn("[Main] Failed to release classifier", slog.String("error", err.Error()))
		}
	}()

	healthy := &atomic.Bool{}
	healthy.Store(true)
	if cfg.Model.Backend == config.BACKEND_REMOTE {
		go monitoring.MonitorClassifierHealth(ctx, classifier, healthy, monitoring.HEALTHCHECK_TIMER)
	}

	var sink monitoring.FallbackSink
	if cfg.Valkey.Enabled() {
		vc, err := clients.InitValkey(cfg.Valkey)
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, fallback counts will only be logged",
				slog.String("error", err.Error()))
		} else {
			sink = vc
			defer clients.CloseValkey()
		}
	}
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitoring.MonitorLabelFallbacks(ctx, labels, sink, cfg.FallbackReportInterval)
	}()

	svc := analysis.NewService(classifier, labels, cfg.Model.MaxInputChars)
	router := server.NewRouter(svc, server.Options{
		Backend: cfg.Model.Backend,
		Healthy: healthy,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Main] Sentiment analysis server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("[Main] Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}

	// flush the last fallback report before valkey is closed
	stop()
	select {
	case <-monitorDone:
	case <-shutdownCtx.Done():
		slog.Warn("[Main] Timed out waiting for fallback monitor")
	}
}
