package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		AccountID:   1,
		Date:        NewDate(2024, 1, 16),
		Description: "Grocery Store",
		Category:    "Food",
		Amount:      Money{Cents: -8532},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Zero amounts are finite and therefore valid.
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}},
		{Date: NewDate(2024, 1, 1), Description: "", Amount: Money{Cents: 1}},
		{Date: NewDate(2024, 1, 1), Description: "   ", Amount: Money{Cents: 1}},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected ValidationError, got %T", i, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{UserID: 1, Name: "Main Checking", Type: AccountChecking}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{UserID: 1, Name: "", Type: AccountChecking}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Account{UserID: 1, Name: "x", Type: " "}).Validate(); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	ve := &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	if !IsValidation(ve) {
		t.Fatalf("IsValidation should match ValidationError")
	}
	if IsReference(ve) {
		t.Fatalf("IsReference should not match ValidationError")
	}

	re := &ReferenceError{Entity: "account", ID: 42}
	if !IsReference(re) {
		t.Fatalf("IsReference should match ReferenceError")
	}
	if re.Error() != "account 42 does not exist" {
		t.Fatalf("unexpected message: %s", re.Error())
	}
}

func TestDateISO(t *testing.T) {
	if got := NewDate(2024, 1, 15).ISO(); got != "2024-01-15" {
		t.Fatalf("ISO() = %q", got)
	}
}
