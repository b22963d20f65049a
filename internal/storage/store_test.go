package storage

import (
	"context"
	"path/filepath"
	"testing"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedAccount(t *testing.T, s *Store) core.Account {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "john.doe@example.com", "hash")
	require.NoError(t, err)
	a, err := s.CreateAccount(ctx, u.ID, "Main Checking", core.AccountChecking)
	require.NoError(t, err)
	return a
}

func TestCreateAccountUnknownUser(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateAccount(context.Background(), 99, "Orphan", core.AccountChecking)
	require.Error(t, err)
	assert.True(t, core.IsReference(err), "expected ReferenceError, got %v", err)
}

func TestCreateTransaction(t *testing.T) {
	s := openTestStore(t)
	a := seedAccount(t, s)
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, core.Transaction{
		AccountID:   a.ID,
		Date:        core.NewDate(2024, 1, 16),
		Description: "Grocery Store",
		Category:    "Food",
		Amount:      core.Money{Cents: -8532},
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID, "id must be server-assigned")

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grocery Store", got.Description)
	assert.Equal(t, int64(-8532), got.Amount.Cents)
	assert.Equal(t, "2024-01-16", got.Date.ISO())
}

func TestCreateTransactionUnknownAccount(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s)
	ctx := context.Background()

	_, err := s.CreateTransaction(ctx, core.Transaction{
		AccountID:   4242,
		Date:        core.NewDate(2024, 1, 16),
		Description: "Orphan write",
		Category:    "Food",
		Amount:      core.Money{Cents: -100},
	})
	require.Error(t, err)
	assert.True(t, core.IsReference(err))

	// The failed write must not leave a row behind.
	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateTransactionValidation(t *testing.T) {
	s := openTestStore(t)
	a := seedAccount(t, s)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		AccountID: a.ID,
		Date:      core.NewDate(2024, 1, 16),
		Category:  "Food",
		Amount:    core.Money{Cents: -100},
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err), "empty description must be a ValidationError")
}

func TestListTransactionsInsertOrder(t *testing.T) {
	s := openTestStore(t)
	a := seedAccount(t, s)
	ctx := context.Background()

	descriptions := []string{"Direct Deposit - Salary", "Grocery Store", "Gas Station"}
	for i, d := range descriptions {
		_, err := s.CreateTransaction(ctx, core.Transaction{
			AccountID:   a.ID,
			Date:        core.NewDate(2024, 1, 15+i),
			Description: d,
			Category:    "Misc",
			Amount:      core.Money{Cents: int64(100 * (i + 1))},
		})
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i, tx := range txs {
		assert.Equal(t, descriptions[i], tx.Description)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "jane.smith@example.com", "hash")
	require.NoError(t, err)

	u, err := s.GetUserByEmail(ctx, "jane.smith@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane.smith@example.com", u.Email)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportBookkeeping(t *testing.T) {
	s := openTestStore(t)
	a := seedAccount(t, s)
	ctx := context.Background()

	tx1, err := s.CreateTransaction(ctx, core.Transaction{
		AccountID: a.ID, Date: core.NewDate(2024, 1, 15),
		Description: "Direct Deposit - Salary", Category: "Income",
		Amount: core.Money{Cents: 350000},
	})
	require.NoError(t, err)
	tx2, err := s.CreateTransaction(ctx, core.Transaction{
		AccountID: a.ID, Date: core.NewDate(2024, 1, 16),
		Description: "Grocery Store", Category: "Food",
		Amount: core.Money{Cents: -8532},
	})
	require.NoError(t, err)

	pending, err := s.PendingExports(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, s.MarkExported(ctx, tx1.ID))
	pending, err = s.PendingExports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tx2.ID, pending[0].ID)

	// An errored export stays in the sweep set so the next scan retries it.
	require.NoError(t, s.MarkExportError(ctx, tx2.ID))
	pending, err = s.PendingExports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tx2.ID, pending[0].ID)

	// Only a successful export removes it.
	require.NoError(t, s.MarkExported(ctx, tx2.ID))
	pending, err = s.PendingExports(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUserCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.UserCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.CreateUser(ctx, "john.doe@example.com", "hash")
	require.NoError(t, err)

	n, err = s.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
