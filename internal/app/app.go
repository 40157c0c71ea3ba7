// Package app initializes and holds the job's long-lived services, acting
// as a dependency injection container, and runs the scrape pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kasrat/countryscrape/internal/config"
	"github.com/kasrat/countryscrape/internal/fetcher"
	"github.com/kasrat/countryscrape/internal/logging"
	"github.com/kasrat/countryscrape/internal/metrics"
	"github.com/kasrat/countryscrape/internal/report"
	"github.com/kasrat/countryscrape/internal/scrape"
	"github.com/kasrat/countryscrape/internal/store"
)

// App holds the shared services for one job run: logger, configuration,
// the store handle, and the page fetcher. It is initialized once at
// startup and closed on every exit path.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  store.Provider
	fetch  *fetcher.Fetcher
	out    io.Writer
}

// NewApp creates and initializes an App from the global Viper
// configuration. It fails fast if the store cannot be opened.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	metrics.Init()
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info("Starting metrics endpoint", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	st, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		fetch:  fetcher.New(fetcher.Config{UserAgent: cfg.Source.UserAgent, Timeout: cfg.Source.Timeout}, logger),
		out:    os.Stdout,
	}, nil
}

// NewWithServices builds an App from explicit services (primarily for tests).
func NewWithServices(cfg config.Config, st store.Provider, f *fetcher.Fetcher, out io.Writer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{cfg: cfg, logger: logger, store: st, fetch: f, out: out}
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the configured persistence provider.
func (a *App) GetStore() store.Provider {
	return a.store
}

// Close releases the store handle and flushes the logger. It runs on
// every exit path, success or failure.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// Run executes the pipeline: init store, fetch, extract, write, report.
//
// Fetch failures and empty extractions halt the run cleanly: a message
// is printed, nothing is written, and the process still exits zero.
// Store, write, and report failures are returned to the caller, which
// maps them onto a non-zero process exit instead of swallowing them.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting scrape run",
		zap.String("url", a.cfg.Source.URL),
		zap.Int("limit", a.cfg.Source.Limit),
	)

	if err := a.store.Init(ctx); err != nil {
		metrics.IncRun(metrics.OutcomeStoreError)
		logger.Error("Store initialization failed", zap.Error(err))
		fmt.Fprintln(a.out, "Error initializing/clearing database:", err)
		return fmt.Errorf("init store: %w", err)
	}

	doc, err := a.fetch.Fetch(ctx, a.cfg.Source.URL)
	if err != nil {
		metrics.IncRun(metrics.OutcomeFetchError)
		logger.Warn("Fetch failed; halting run", zap.Error(err))
		fmt.Fprintln(a.out, "Could not access website or content retrieval failed. Program halted.")
		return nil
	}

	records := scrape.Extract(doc, a.cfg.Source.Limit)
	if len(records) == 0 {
		metrics.IncRun(metrics.OutcomeNoRecords)
		logger.Warn("No country records found; halting run")
		fmt.Fprintln(a.out, "No data found to save. Program halted.")
		return nil
	}
	metrics.AddExtracted(len(records))
	logger.Info("Extracted country records", zap.Int("count", len(records)))

	if err := a.store.WriteBatch(ctx, records); err != nil {
		metrics.IncRun(metrics.OutcomeStoreError)
		logger.Error("Batch insert failed", zap.Error(err))
		fmt.Fprintln(a.out, "Error during batch insertion:", err)
		return fmt.Errorf("write batch: %w", err)
	}
	metrics.AddStored(len(records))

	if err := report.New(a.store, a.out).Print(ctx); err != nil {
		metrics.IncRun(metrics.OutcomeStoreError)
		logger.Error("Reporting failed", zap.Error(err))
		fmt.Fprintln(a.out, "Error during reporting:", err)
		return fmt.Errorf("report: %w", err)
	}

	metrics.IncRun(metrics.OutcomeSuccess)
	logger.Info("Scrape run finished", zap.Int("records", len(records)))
	return nil
}
