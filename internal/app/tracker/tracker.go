// Package tracker собирает трекер подписок: хранилище, миграции, каталог,
// сервисы и интерактивную оболочку.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/cli"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/report"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// App приложение трекера.
type App struct {
	logger      *slog.Logger
	db          *repository.Storage
	shell       *cli.Shell
	metrics     *metrics.Metrics
	metricsPath string
}

// Option настраивает App.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет источник текущего времени журнала подписок.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New открывает базу, применяет миграции и собирает оболочку над in и out.
func New(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger, opts ...Option) (*App, error) {
	const op = "app.tracker.New"

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	cat := catalog.Default()
	if len(cfg.Catalog) > 0 {
		var err error
		if cat, err = catalog.New(cfg.Catalog); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	hasher, err := password.New(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := auth.NewService(db, hasher, logger)
	ledgerService := subscription.NewService(db, cat, logger,
		subscription.WithClock(o.now),
		subscription.WithMaxStartAgeDays(cfg.Ledger.MaxStartAgeDays),
	)
	reportService := report.NewService(db, cat, cfg.Report.Plan, logger)
	m := metrics.New()

	return &App{
		logger:      logger,
		db:          db,
		shell:       cli.New(in, out, authService, ledgerService, reportService, logger, cli.WithRecorder(m)),
		metrics:     m,
		metricsPath: cfg.Metrics.TextfilePath,
	}, nil
}

// Run запускает оболочку и закрывает базу после её завершения.
// Если задан путь для метрик, счётчики выгружаются после выхода из оболочки.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("shell starting")
	defer a.Close()

	err := a.shell.Run(ctx)
	a.flushMetrics()
	if err != nil {
		return err
	}
	a.logger.Info("shell stopped")
	return nil
}

func (a *App) flushMetrics() {
	if a.metricsPath == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.metricsPath); err != nil {
		a.logger.Warn("failed to write metrics", sl.Err(err))
	}
}

// Close закрывает базу. Повторный вызов безопасен.
func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
	a.db = nil
}
