// Package backend selects the reading source the web process serves from.
package backend

import (
	"context"
	"errors"
	"fmt"

	"weatherman/internal/config"
	applog "weatherman/internal/log"
	"weatherman/internal/readings"
	"weatherman/internal/readings/files"
	"weatherman/internal/readings/google"
	"weatherman/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is an opened reading source. Cleanup and Ping may be nil.
type Result struct {
	Name    string
	Source  readings.Source
	Cleanup CleanupFunc
	Ping    func(ctx context.Context) error
}

// Close runs Cleanup when one is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens backends from application config.
type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create opens the backend named by cfg.DataBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("app config is nil")
	}

	switch cfg.DataBackend {
	case config.BackendFiles:
		return f.createFiles(cfg)
	case config.BackendSQLite:
		return f.createSQLite(cfg)
	case config.BackendSheets:
		return f.createSheets(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

func (f *Factory) createFiles(cfg *config.Config) (*Result, error) {
	f.logger.Info("Initialized files backend", applog.FieldDataDir, cfg.DataDir)
	return &Result{
		Name:   config.BackendFiles,
		Source: files.New(cfg.DataDir),
	}, nil
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &Result{
		Name:    config.BackendSQLite,
		Source:  repo,
		Cleanup: repo.Close,
		Ping:    repo.Ping,
	}, nil
}

func (f *Factory) createSheets(ctx context.Context, cfg *config.Config) (*Result, error) {
	cli, err := google.Open(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")
	return &Result{
		Name:   config.BackendSheets,
		Source: cli,
	}, nil
}
