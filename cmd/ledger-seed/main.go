package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// ledger-seed loads a small test corpus: two users, three accounts, ten
// transactions. It refuses to run against a database that already has users.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	count, err := store.UserCount(ctx)
	if err != nil {
		logger.Error("Failed to check existing users", "error", err)
		os.Exit(1)
	}
	if count > 0 {
		logger.Info("Database already seeded, nothing to do", "users", count)
		return
	}

	if err := seed(ctx, store); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, store *storage.Store) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	john, err := store.CreateUser(ctx, "john.doe@example.com", string(hash))
	if err != nil {
		return err
	}
	jane, err := store.CreateUser(ctx, "jane.smith@example.com", string(hash))
	if err != nil {
		return err
	}

	checking, err := store.CreateAccount(ctx, john.ID, "Main Checking", core.AccountChecking)
	if err != nil {
		return err
	}
	savings, err := store.CreateAccount(ctx, john.ID, "Emergency Savings", core.AccountSavings)
	if err != nil {
		return err
	}
	credit, err := store.CreateAccount(ctx, jane.ID, "Credit Card", core.AccountCredit)
	if err != nil {
		return err
	}

	transactions := []core.Transaction{
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 15), Description: "Direct Deposit - Salary", Category: "Income", Amount: core.Money{Cents: 350000}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 16), Description: "Grocery Store", Category: "Food", Amount: core.Money{Cents: -8532}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 17), Description: "Gas Station", Category: "Transportation", Amount: core.Money{Cents: -4567}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 18), Description: "Electric Bill", Category: "Utilities", Amount: core.Money{Cents: -12000}},
		{AccountID: savings.ID, Date: core.NewDate(2024, 1, 18), Description: "Transfer from Checking", Category: "Transfer", Amount: core.Money{Cents: 50000}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 18), Description: "Transfer to Savings", Category: "Transfer", Amount: core.Money{Cents: -50000}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 20), Description: "Coffee Shop", Category: "Food", Amount: core.Money{Cents: -475}},
		{AccountID: credit.ID, Date: core.NewDate(2024, 1, 21), Description: "Online Shopping", Category: "Shopping", Amount: core.Money{Cents: -8999}},
		{AccountID: credit.ID, Date: core.NewDate(2024, 1, 22), Description: "Restaurant Dinner", Category: "Food", Amount: core.Money{Cents: -6540}},
		{AccountID: checking.ID, Date: core.NewDate(2024, 1, 25), Description: "Freelance Payment", Category: "Income", Amount: core.Money{Cents: 75000}},
	}
	for _, t := range transactions {
		if _, err := store.CreateTransaction(ctx, t); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Test data seeded",
		"users", 2,
		"accounts", 3,
		"transactions", len(transactions))

	return nil
}
