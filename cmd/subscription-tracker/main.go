// Package main запускает интерактивный трекер подписок.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/magabrotheeeer/subscription-tracker/internal/app/tracker"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad(os.Args[1:])

	logger, closeLog, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot set up logger: %s\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("starting subscription-tracker", slog.String("env", cfg.Env), slog.String("storage", cfg.StoragePath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := tracker.New(ctx, cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		fmt.Fprintf(os.Stderr, "failed to start: %s\n", err)
		closeLog()
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", sl.Err(err))
		closeLog()
		os.Exit(1)
	}

	logger.Info("subscription-tracker stopped")
}

// setupLogger выбирает формат по окружению: текст для local, JSON для prod.
func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Log.Level))); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Log.Path != "" {
		f, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Env {
	case config.EnvProd:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closeFn, nil
}
