package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"weatherman/internal/amqp"
	applog "weatherman/internal/log"
	"weatherman/internal/services"
	"weatherman/internal/storage"
)

// Importer runs one directory import.
type Importer interface {
	Import(ctx context.Context, dir string) (int, error)
}

// RunStore remembers which import requests have been handled.
type RunStore interface {
	RecordImport(ctx context.Context, run storage.ImportRun) error
	GetImport(ctx context.Context, messageID string) (storage.ImportRun, error)
}

// ImportWorker executes import requests consumed from AMQP.
type ImportWorker struct {
	importer Importer
	runs     RunStore
}

func NewImportWorker(importer Importer, runs RunStore) *ImportWorker {
	return &ImportWorker{
		importer: importer,
		runs:     runs,
	}
}

// HandleImportRequest imports the requested directory. A request that was
// already completed is skipped. Errors that retrying cannot fix are recorded
// and swallowed so the message is acknowledged; other errors are returned
// so the message is requeued.
func (w *ImportWorker) HandleImportRequest(ctx context.Context, msg *amqp.ImportRequestMessage) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker).With(
		applog.FieldMessageID, msg.ID,
		applog.FieldDataDir, msg.DataDir)

	if w.runs != nil {
		run, err := w.runs.GetImport(ctx, msg.ID)
		switch {
		case err == nil && run.Status == storage.ImportCompleted:
			logger.InfoContext(ctx, "Import already completed, skipping redelivery",
				applog.FieldReadings, run.Readings)
			return nil
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("check previous import: %w", err)
		}
	}

	logger.InfoContext(ctx, "Processing import request")
	start := time.Now()
	n, err := w.importer.Import(ctx, msg.DataDir)
	if err != nil {
		w.record(ctx, logger, msg, storage.ImportFailed, 0, err)
		if isPermanent(err) {
			logger.ErrorContext(ctx, "Import request cannot succeed, dropping", applog.FieldError, err)
			return nil
		}
		return fmt.Errorf("import %s: %w", msg.DataDir, err)
	}

	w.record(ctx, logger, msg, storage.ImportCompleted, n, nil)
	logger.InfoContext(ctx, "Import request completed",
		applog.FieldReadings, n,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (w *ImportWorker) record(ctx context.Context, logger *applog.Logger, msg *amqp.ImportRequestMessage, status string, n int, importErr error) {
	if w.runs == nil {
		return
	}
	run := storage.ImportRun{
		MessageID:   msg.ID,
		DataDir:     msg.DataDir,
		Status:      status,
		Readings:    n,
		RequestedAt: msg.RequestedAt,
	}
	if importErr != nil {
		run.Error = importErr.Error()
	}
	if err := w.runs.RecordImport(ctx, run); err != nil {
		logger.ErrorContext(ctx, "Failed to record import run", applog.FieldError, err)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, services.ErrOutsideRoot) ||
		errors.Is(err, services.ErrNotDirectory) ||
		errors.Is(err, services.ErrImportsDisabled) ||
		errors.Is(err, fs.ErrNotExist)
}
