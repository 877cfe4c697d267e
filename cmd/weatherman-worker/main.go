package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"weatherman/internal/amqp"
	"weatherman/internal/cli"
	applog "weatherman/internal/log"
	"weatherman/internal/services"
	"weatherman/internal/storage"
	"weatherman/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(applog.New(applog.DefaultConfig()))
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting weatherman-worker", applog.FieldOperation, applog.OpStartup)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the import worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldError, err,
			"path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	svc := services.NewImportService(cfg.ImportRoot, repo, nil)
	w := worker.NewImportWorker(svc, repo)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()
	ctx = applog.NewContext(ctx, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeImportRequests(gctx, w.HandleImportRequest)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
}
