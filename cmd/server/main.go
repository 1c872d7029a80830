package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crosscheck-ai/dissent/internal/api"
	"github.com/crosscheck-ai/dissent/internal/buildconfig"
	"github.com/crosscheck-ai/dissent/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	if err := config.Validate(); err != nil {
		logger.Fatal("refusing to start", zap.Error(err))
	}

	app, err := api.NewApp(logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		build := buildconfig.Get()
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", build.Version),
			zap.String("commit", build.Commit),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	// Let in-flight analytics events finish before exiting.
	app.Analytics.Close()

	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if config.LogLevel() == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
