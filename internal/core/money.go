// Package core provides the ledger domain model.
//
// This file contains functions for parsing signed monetary amounts from
// decimal strings and converting between cents and display representations.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// maxSafeCentsUnits is the largest whole-unit magnitude that still fits in
// int64 once multiplied into cents.
const maxSafeCentsUnits = (1<<63 - 1) / 100

// ParseCents converts a signed decimal string to cents with half-up rounding
// on the third decimal place. It accepts an optional leading sign and both
// dot (12.34) and comma (12,34) decimal separators. Exponent forms that JSON
// encoders may emit (3.5e2) are accepted as long as the value is finite and
// representable in cents.
//
// Examples:
//
//	ParseCents("12.34")  -> 1234, nil
//	ParseCents("-85.32") -> -8532, nil
//	ParseCents("12.346") -> 1235, nil (rounds up)
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	cents, err := parseUnsignedCents(s)
	if err != nil {
		// Fall back to float parsing for exponent notation. The magnitude
		// check matters: converting an oversized float to int64 silently
		// yields int64 min, not an error.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, ErrInvalidAmount
		}
		// The sign was consumed above, so a negative here is a second sign.
		if f < 0 || f > maxSafeCentsUnits {
			return 0, ErrInvalidAmount
		}
		cents = int64(math.Round(f * 100))
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

func parseUnsignedCents(s string) (int64, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	// A bare separator or sign carries no digits and is not a number.
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" {
		return 0, nil
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	if iv > maxSafeCentsUnits {
		return 0, ErrInvalidAmount
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Units returns the major currency value as a float64 for display and for the
// JSON wire format. Use cents for comparisons and arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with a sign and two decimals, e.g. "-85.32".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
