package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamtechie/zenji/internal/app"
	"github.com/kamtechie/zenji/internal/config"
	"github.com/kamtechie/zenji/internal/observability"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog := observability.NewLogger(os.Stdout, observability.ParseLevel(cfg.LogLevel), cfg.LogFile)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err = app.Serve(ctx, cfg, logger, shutdownTimeout)

	stop()
	_ = closeLog()

	if err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
