// Package core provides the wallet domain types and pure view derivations.
//
// This file contains parsing and formatting of monetary amounts. The wallet
// backend speaks decimal numbers; internally everything is cents to keep
// arithmetic exact.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Currency is the display currency suffix used across the UI and exports.
const Currency = "RWF"

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
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

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := whole * 100
	switch {
	case len(fracPart) == 0:
	case len(fracPart) == 1:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		cents += d * 10
	default:
		d, _ := strconv.ParseInt(fracPart[:2], 10, 64)
		cents += d
		// Half-up rounding on the third decimal
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	}

	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// MoneyFromFloat converts a backend decimal amount into cents.
func MoneyFromFloat(amount float64) Money {
	return Money{Cents: int64(math.Round(amount * 100))}
}

// Float returns the decimal representation used on the wire.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Format renders cents as a plain decimal string (e.g. "12.34").
func (m Money) Format() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatWithCurrency renders cents for display (e.g. "12.34 RWF").
func (m Money) FormatWithCurrency() string {
	return m.Format() + " " + Currency
}
