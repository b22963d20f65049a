// Package storage implements the ledger store on SQLite.
//
// The store is an explicitly constructed handle: opened once at process
// start, passed to whoever needs it, closed at shutdown. Referential
// integrity is enforced here so a bad write surfaces as a typed error
// instead of a driver failure.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Export states for the Sheets export pipeline.
const (
	ExportPending = "pending"
	ExportSynced  = "synced"
	ExportError   = "error"
)

// Store is the durable ledger store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUser inserts a user with a pre-hashed credential.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (core.User, error) {
	u := core.User{Email: email, PasswordHash: passwordHash}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return u, nil
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UserCount returns the number of users. The seed uses it to stay idempotent.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateAccount inserts an account owned by userID.
// Returns a ReferenceError if the user does not exist.
func (s *Store) CreateAccount(ctx context.Context, userID int64, name, accountType string) (core.Account, error) {
	a := core.Account{UserID: userID, Name: name, Type: accountType}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Account{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := rowExists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, &core.ReferenceError{Entity: "user", ID: userID}
		}
		return core.Account{}, fmt.Errorf("check user: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type) VALUES (?, ?, ?)`,
		userID, name, accountType)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Account{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", a.ID, "user_id", userID, "name", name, "type", accountType)
	return a, nil
}

// ListAccounts returns all accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateTransaction appends a ledger entry. Returns a ReferenceError if the
// account does not exist and a ValidationError if the entry is malformed.
// The id is server-assigned and the entry is immutable once written.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := rowExists(ctx, tx, `SELECT 1 FROM accounts WHERE id = ?`, t.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, &core.ReferenceError{Entity: "account", ID: t.AccountID}
		}
		return core.Transaction{}, fmt.Errorf("check account: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, date, description, category, amount_cents, export_status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.Date.ISO(), t.Description, t.Category, t.Amount.Cents, ExportPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"account_id", t.AccountID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.ISO())
	return t, nil
}

// GetTransaction returns a single transaction by id, or ErrNotFound.
func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, date, description, category, amount_cents
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns every ledger entry, fully materialized, in insert
// order. Ordering for display is a presentation concern, not the store's.
func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, date, description, category, amount_cents
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// PendingExports returns up to limit transactions not yet exported. Rows
// whose last attempt failed are included so the sweep retries them.
func (s *Store) PendingExports(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, date, description, category, amount_cents
		 FROM transactions WHERE export_status IN (?, ?) ORDER BY id LIMIT ?`,
		ExportPending, ExportError, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// MarkExported records a successful export.
func (s *Store) MarkExported(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = ?, exported_at = ? WHERE id = ?`,
		ExportSynced, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkExportError records a failed export so the pending scan retries it.
func (s *Store) MarkExportError(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = ? WHERE id = ?`,
		ExportError, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
	)
	if err := row.Scan(&t.ID, &t.AccountID, &dateStr, &t.Description, &t.Category, &t.Amount.Cents); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	t.Date = core.Date{Time: parsed}
	return t, nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	var one int
	return tx.QueryRowContext(ctx, query, args...).Scan(&one)
}
