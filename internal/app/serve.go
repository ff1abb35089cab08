package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kamtechie/zenji/internal/config"
)

// Serve builds the app, runs it until ctx is cancelled or the server fails, then shuts down
// within shutdownTimeout.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, shutdownTimeout time.Duration) error {
	a, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	runErr := a.Run(ctx)
	if runErr != nil {
		logger.Error("Server error", "error", runErr)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exited")

	return runErr
}
