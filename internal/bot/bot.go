// Package bot wires the storebot runtime together and manages the lifecycle
// of its long-running components.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner is a component that serves until its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// App runs the HTTP server and the scheduler side by side.
type App struct {
	logger    *slog.Logger
	server    Runner
	scheduler *Scheduler
}

// NewApp creates the application orchestrator.
func NewApp(logger *slog.Logger, server Runner, scheduler *Scheduler) *App {
	return &App{
		logger:    logger.With("component", "app"),
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting storebot...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Run(gCtx); err != nil {
			return err
		}
		if gCtx.Err() == nil {
			a.logger.Warn("HTTP server stopped without context cancellation.")
			return fmt.Errorf("http server stopped unexpectedly")
		}
		return nil
	})

	if a.scheduler != nil {
		g.Go(func() error {
			if err := a.scheduler.Start(); err != nil {
				a.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.logger.Info("Shutdown signal received, stopping scheduler...")

			if err := a.scheduler.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Storebot stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Storebot stopped gracefully.")
	return nil
}
