package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"weatherman/internal/amqp"
	"weatherman/internal/backend"
	"weatherman/internal/cli"
	apphttp "weatherman/internal/http"
	applog "weatherman/internal/log"
	"weatherman/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(applog.New(applog.DefaultConfig()))
	logger := cli.SetupLogger(cfg, applog.ComponentApp)
	logger.Info("Starting weatherman-web",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()
	ctx = applog.NewContext(ctx, logger)

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize reading backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer result.Close()

	// Readings are loaded once; the server never reloads them.
	rs, err := result.Source.Load(ctx)
	if err != nil {
		logger.Error("Failed to load readings",
			applog.FieldBackend, result.Name,
			applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Readings loaded", applog.FieldReadings, len(rs))

	opts := apphttp.Options{
		Logger:             logger,
		Backend:            result.Name,
		Ready:              result.Ping,
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		opts.Imports = services.NewImportService(cfg.ImportRoot, nil, client)
	} else {
		logger.Info("AMQP_URL not set, import requests disabled")
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, rs, opts)
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return srv.RunCacheCleanup(gctx) })
	g.Go(func() error { return srv.RunRateLimitCleanup(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped", applog.FieldOperation, applog.OpShutdown)
}
