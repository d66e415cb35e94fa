package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/codesync/internal/storage"
	"github.com/starford/codesync/internal/watch"
)

// Run starts watch mode with the given options and blocks until the
// context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Diagnostics go to stderr as structured JSON; the session's own
	// console output stays on stdout.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("root", cfg.Watch.Root),
		slog.Int("debounce_ms", cfg.Watch.DebounceMs),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Watch.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	session, err := watch.NewSession(store, watch.Options{
		Debounce:  time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		LogToFile: cfg.Watch.LogToFile,
		Out:       app.out,
	}, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return session.Run(gCtx)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("watch session error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("watch session ended")
	return nil
}
