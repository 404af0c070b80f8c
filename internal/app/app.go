package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/financialevent"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/invoicing"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/order"
	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore/shipment"
	"github.com/icingerpower/AmzBooks-sub000/internal/config"
	"github.com/icingerpower/AmzBooks-sub000/internal/metrics"
	"github.com/icingerpower/AmzBooks-sub000/internal/service/ledger"
	"github.com/icingerpower/AmzBooks-sub000/pkg/ctxutil"
)

// App is the ledger engine wired for one command run.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Ledger  *ledger.Service
	Metrics *metrics.Recorder

	db *sqlstore.DB
}

// New opens the configured database and wires the ledger service on top of it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := sqlstore.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	svc := ledger.NewService(
		logger,
		shipment.New(db),
		order.New(db),
		invoicing.New(db),
		financialevent.New(db),
		sqlstore.NewArchiver(db, cfg.Storage.BusyTimeout),
		sqlstore.NewTxManager(db),
		cfg.Ledger,
	)

	rec := metrics.NewRecorder(cfg.Metrics.Namespace)
	svc.SetMetrics(rec)

	return &App{
		Config:  cfg,
		Log:     logger,
		Ledger:  svc,
		Metrics: rec,
		db:      db,
	}, nil
}

// Close writes the metrics textfile when configured and closes the database.
func (a *App) Close() error {
	var errs []error
	if a.Config.Metrics.Enabled() {
		if err := a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// Run is the entry point shared by the commands. It loads configuration,
// initializes the logger, tags the context with a fresh run id and the
// command name, wires the App and hands it to fn. The App is closed when fn
// returns.
func Run(ctx context.Context, command string, timeout time.Duration, fn func(ctx context.Context, a *App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	runID := uuid.New()
	ctx = ctxutil.WithCommand(ctxutil.WithRunID(ctx, runID), command)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.InfoContext(ctx, "starting command",
		slog.String("command", command),
		slog.String("run_id", runID.String()),
		slog.String("build", BuildVersion()),
		slog.String("storage", cfg.Storage.Driver),
	)

	a, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(); err != nil {
		logger.ErrorContext(ctx, "shutdown", slog.String("error", err.Error()))
	}
	return runErr
}
