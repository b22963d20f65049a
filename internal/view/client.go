package view

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ledger/internal/core"
)

// Client fetches the ledger over the JSON API. It implements Fetcher.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// wireTransaction mirrors the API's JSON shape. Amount is kept as
// json.Number so the decimal survives the trip into cents intact.
type wireTransaction struct {
	ID          int64       `json:"id"`
	AccountID   int64       `json:"accountId"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
}

// FetchTransactions loads the full transaction set.
func (c *Client) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch transactions: unexpected status %d", resp.StatusCode)
	}

	var wire []wireTransaction
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(wire))
	for _, w := range wire {
		date, err := time.Parse("2006-01-02", w.Date)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d date %q: %w", w.ID, w.Date, err)
		}
		cents, err := core.ParseCents(w.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d amount %q: %w", w.ID, w.Amount, err)
		}
		txs = append(txs, core.Transaction{
			ID:          w.ID,
			AccountID:   w.AccountID,
			Date:        core.Date{Time: date},
			Description: w.Description,
			Category:    w.Category,
			Amount:      core.Money{Cents: cents},
		})
	}
	return txs, nil
}

// CreateTransaction posts a new ledger entry and returns the created record.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	payload := map[string]any{
		"accountId":   t.AccountID,
		"date":        t.Date.ISO(),
		"description": t.Description,
		"category":    t.Category,
		"amount":      json.RawMessage(t.Amount.String()),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("post transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Transaction{}, fmt.Errorf("post transaction: unexpected status %d", resp.StatusCode)
	}

	var w wireTransaction
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return core.Transaction{}, fmt.Errorf("decode created transaction: %w", err)
	}
	cents, err := core.ParseCents(w.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode created amount: %w", err)
	}
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode created date: %w", err)
	}
	return core.Transaction{
		ID:          w.ID,
		AccountID:   w.AccountID,
		Date:        core.Date{Time: date},
		Description: w.Description,
		Category:    w.Category,
		Amount:      core.Money{Cents: cents},
	}, nil
}

// Login performs the mock sign-in and returns the opaque session token.
// The caller renders a sign-in affordance until it holds one.
func (c *Client) Login(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return "", fmt.Errorf("marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	return session.Token, nil
}
