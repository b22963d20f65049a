package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/storage"
)

// ExportWorker copies newly created transactions to an external sheet.
// It consumes created events from AMQP and sweeps the pending backlog as a
// backup in case messages are lost.
type ExportWorker struct {
	store     *storage.Store
	appender  export.Appender
	batchSize int
}

func NewExportWorker(store *storage.Store, appender export.Appender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleCreatedMessage processes a single created event from AMQP.
func (w *ExportWorker) HandleCreatedMessage(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	slog.InfoContext(ctx, "Processing created event",
		"id", msg.ID,
		"account_id", msg.AccountID)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, t.ID, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPending sweeps transactions whose export never completed.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, t := range pending {
		if err := w.exportTransaction(ctx, t.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck recovers exports missed while the worker was down. It uses a
// larger batch than the periodic sweep.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.PendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, t := range pending {
		if err := w.exportTransaction(ctx, t.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export during startup", "id", t.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id int64, t core.Transaction) error {
	ref, err := w.appender.Append(ctx, t)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkExported(ctx, id); err != nil {
		// The export itself succeeded, so don't surface this as a failure.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", id,
		"ref", ref,
		"description", t.Description,
		"amount_cents", t.Amount.Cents)

	return nil
}
