package core

import (
	"errors"
	"strings"
	"time"
)

// Well-known account types. The type tag is an open enumeration: anything the
// caller sends is stored as-is, these are just the values the seed data uses.
const (
	AccountChecking = "checking"
	AccountSavings  = "savings"
	AccountCredit   = "credit"
)

type (
	// Date is a calendar date. Time-of-day is carried along if the caller
	// supplied one but has no meaning for the ledger.
	Date struct {
		time.Time
	}

	// Money is a signed amount in minor currency units (cents).
	// Positive is a credit, negative is a debit.
	Money struct {
		Cents int64
	}

	// User anchors account ownership. Created by the seed or registration
	// flow and never mutated by the ledger.
	User struct {
		ID           int64
		Email        string
		PasswordHash string
	}

	// Account is a named bucket of transactions owned by exactly one user.
	Account struct {
		ID     int64
		UserID int64
		Name   string
		Type   string
	}

	// Transaction is an atomic ledger entry. Entries are append-only: once
	// written they are never updated or deleted.
	Transaction struct {
		ID          int64
		AccountID   int64
		Date        Date
		Description string
		Category    string
		Amount      Money
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyEmail       = errors.New("empty email")
	ErrEmptyName        = errors.New("empty name")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date in ISO-8601 calendar form, the ledger wire format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if len(t.Description) > 200 {
		return &ValidationError{Field: "description", Err: errors.New("description too long (max 200 characters)")}
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if len(strings.TrimSpace(a.Type)) == 0 {
		return &ValidationError{Field: "type", Err: errors.New("empty type")}
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Email)) == 0 {
		return &ValidationError{Field: "email", Err: ErrEmptyEmail}
	}
	return nil
}
