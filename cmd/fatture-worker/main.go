package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"fatture/internal/amqp"
	"fatture/internal/cli"
	"fatture/internal/log"
	"fatture/internal/sheets/google"
	"fatture/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateWorkerConfig(logger)

	logger.Info("Starting fatture-worker")

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	ledger, err := google.New(ctx, google.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	}, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewLedgerWorker(result.Backend, ledger, logger)

	// Catch up on anything missed while the worker was down.
	if err := w.Rebuild(ctx); err != nil {
		logger.Error("Startup ledger rebuild failed", log.FieldError, err)
	}

	sched, err := w.Schedule(ctx, worker.EverySpec(cfg.SyncInterval))
	if err != nil {
		logger.Error("Failed to schedule ledger rebuild", log.FieldError, err)
		os.Exit(1)
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeInvoiceEvents(gctx, w.HandleInvoiceEvent)
	})

	logger.Info("Ledger worker running", "sync_interval", cfg.SyncInterval.String())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Invoice event consumption failed", log.FieldError, err)
	}
	logger.Info("Worker stopped gracefully")
}
