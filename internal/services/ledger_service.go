// Package services orchestrates ledger writes across the store and the
// event broker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// LedgerService performs ledger writes: persist first, then announce.
// A missing or failing broker never fails the write.
type LedgerService struct {
	store      *storage.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store *storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// CreateTransaction appends the entry to the store and publishes a
// transaction-created event. Exactly one store write per call; retries by the
// caller create duplicate rows.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishCreated(ctx, created.ID, created.AccountID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction created event",
			"id", created.ID, "error", err)
		// The entry is saved; the export worker's pending scan will pick it up.
	}

	return created, nil
}

// ListTransactions returns all ledger entries in store order.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// ListAccounts returns all accounts.
func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

// LookupUser returns the user for a mock sign-in attempt.
func (s *LedgerService) LookupUser(ctx context.Context, email string) (core.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

func (s *LedgerService) publishCreated(ctx context.Context, id, accountID int64) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event")
		return nil
	}
	return s.amqpClient.PublishTransactionCreated(ctx, id, accountID)
}

// Close closes the store and broker connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
