package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/config"
	gsheet "ledger/internal/export/google"
	"ledger/internal/storage"
	"ledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting ledger-export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	exportWorker := worker.NewExportWorker(store, sheetsClient, cfg.ExportBatchSize)

	// Recover anything missed while the worker was down.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Don't exit, the periodic sweep retries.
	}

	// Consume created events; the loop re-dials the broker on connection loss.
	go func() {
		err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			func(msg *amqp.TransactionCreatedMessage) error {
				return exportWorker.HandleCreatedMessage(ctx, msg)
			})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption failed", "error", err)
		}
	}()

	// Periodic sweep for anything the event path missed.
	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down export worker")
			return
		case <-ticker.C:
			if err := exportWorker.ProcessPending(ctx); err != nil {
				logger.Error("Periodic export sweep failed", "error", err)
			}
		}
	}
}
