package core

import "testing"

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"-85.32", -8532, true},
		{"+3500.00", 350000, true},
		{"3500", 350000, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-4.75", -475, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"3.5e2", 35000, true}, // exponent form from JSON encoders
		{"", 0, false},
		{"not-a-number", 0, false},
		{"12.3.4", 0, false},
		{"12a", 0, false},
		{"--5", 0, false},
		{".", 0, false},
		{"-", 0, false},
		{"-.", 0, false},
		// Amounts whose cents exceed int64 must error, never wrap.
		{"1e300", 0, false},
		{"9e18", 0, false},
		{"-1e300", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseCents(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseCents(%q) expected error, got %d", tc.in, got)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{350000, "3500.00"},
		{-8532, "-85.32"},
		{-475, "-4.75"},
		{0, "0.00"},
		{5, "0.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: -8532}).Units(); got != -85.32 {
		t.Fatalf("Units() = %v, want -85.32", got)
	}
}
