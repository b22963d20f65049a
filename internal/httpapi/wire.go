package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"ledger/internal/core"
)

// TransactionJSON is the wire shape of a ledger entry. Amounts travel as
// decimal numbers (positive = credit, negative = debit), dates as ISO-8601.
type TransactionJSON struct {
	ID          int64   `json:"id"`
	AccountID   int64   `json:"accountId"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
}

// AccountJSON is the wire shape of an account.
type AccountJSON struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// createTransactionRequest is the validated input record for POST
// /transactions. Amount is decoded as json.Number so a malformed value is
// rejected before it can reach the store.
type createTransactionRequest struct {
	AccountID   int64       `json:"accountId"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
}

// toTransaction parses and validates the request into a domain transaction.
func (req createTransactionRequest) toTransaction() (core.Transaction, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}

	cents, err := core.ParseCents(req.Amount.String())
	if err != nil {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	t := core.Transaction{
		AccountID:   req.AccountID,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
		Amount:      core.Money{Cents: cents},
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp; the
// time-of-day part carries no meaning for the ledger.
func parseDate(s string) (core.Date, error) {
	if parsed, err := time.Parse("2006-01-02", s); err == nil {
		return core.Date{Time: parsed}, nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsed}, nil
}

func toTransactionJSON(t core.Transaction) TransactionJSON {
	return TransactionJSON{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Date:        t.Date.ISO(),
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount.Units(),
	}
}

func toAccountJSON(a core.Account) AccountJSON {
	return AccountJSON{ID: a.ID, UserID: a.UserID, Name: a.Name, Type: a.Type}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// writeStoreError maps domain failures onto stable 4xx codes. Reference
// failures are client errors, never a 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case core.IsReference(err):
		writeError(w, http.StatusUnprocessableEntity, "reference_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "store unavailable")
	}
}
