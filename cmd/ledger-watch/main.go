package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/view"
)

// ledger-watch is a terminal viewer for the transaction table. It polls the
// API on the view's refresh interval, refreshes immediately when the broker
// announces a new transaction, and takes sort/filter commands on stdin.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	email := os.Getenv("LEDGER_EMAIL")
	if email == "" {
		email = "john.doe@example.com"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := view.NewClient(cfg.APIBaseURL)

	// Sign in before showing anything; the table stays gated behind a session.
	if _, err := client.Login(ctx, email); err != nil {
		fmt.Fprintln(os.Stderr, "login failed:", err)
		os.Exit(1)
	}

	table := view.NewTable(client, cfg.RefreshInterval)
	table.Start(ctx)
	defer table.Stop()

	// A created event from the broker means new data is available now; no
	// need to wait for the next poll tick.
	if cfg.AMQPURL != "" {
		go func() {
			err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
				func(*amqp.TransactionCreatedMessage) error {
					table.Refresh(ctx)
					return nil
				})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("broker watch stopped", "error", err)
			}
		}()
	}

	fmt.Println("commands: sort date|description|category|amount, filter <text>, clear, add <accountId> <date> <amount> <category> <description>, show, quit")
	render(table)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			render(table)
			continue
		}

		switch fields[0] {
		case "sort":
			if len(fields) != 2 {
				fmt.Println("usage: sort date|description|category|amount")
				continue
			}
			key, ok := sortKeyFromName(fields[1])
			if !ok {
				fmt.Println("unknown column:", fields[1])
				continue
			}
			table.Sort(key)
		case "filter":
			table.SetFilterText(strings.TrimSpace(strings.TrimPrefix(line, "filter")))
			table.ApplyFilter()
		case "clear":
			table.ClearFilter()
		case "add":
			created, err := addTransaction(ctx, client, fields[1:])
			if err != nil {
				fmt.Println("add failed:", err)
				continue
			}
			fmt.Printf("created transaction %d\n", created.ID)
			// The write went through the API; refetch so the table shows it.
			table.Refresh(ctx)
		case "show":
			// fall through to render
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
			continue
		}
		render(table)
	}
}

// addTransaction posts a new ledger entry from command arguments:
// <accountId> <date> <amount> <category> <description...>.
func addTransaction(ctx context.Context, client *view.Client, args []string) (core.Transaction, error) {
	if len(args) < 5 {
		return core.Transaction{}, errors.New("usage: add <accountId> <date> <amount> <category> <description>")
	}

	accountID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad account id %q", args[0])
	}
	date, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad date %q, want YYYY-MM-DD", args[1])
	}
	cents, err := core.ParseCents(args[2])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad amount %q", args[2])
	}

	return client.CreateTransaction(ctx, core.Transaction{
		AccountID:   accountID,
		Date:        core.Date{Time: date},
		Description: strings.Join(args[4:], " "),
		Category:    args[3],
		Amount:      core.Money{Cents: cents},
	})
}

func sortKeyFromName(name string) (view.SortKey, bool) {
	switch name {
	case "date":
		return view.SortByDate, true
	case "description":
		return view.SortByDescription, true
	case "category":
		return view.SortByCategory, true
	case "amount":
		return view.SortByAmount, true
	default:
		return view.SortByDate, false
	}
}

func render(table *view.Table) {
	snap := table.Snapshot()

	header := fmt.Sprintf("%d transactions, %s by %s %s", len(snap.Rows), snap.Phase, snap.SortKey, snap.Direction)
	if snap.AppliedFilter != "" {
		header += fmt.Sprintf(", filter %q", snap.AppliedFilter)
	}
	fmt.Println(header)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, t := range snap.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Date.ISO(), t.Description, t.Category, t.Amount)
	}
	w.Flush()
}
