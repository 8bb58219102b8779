// Package core holds the plain record types shared by the privacy,
// approval, analytics and export packages.
//
// Monetary amounts are kept in paise (hundredths of a rupee) to avoid
// floating-point drift; rupees exist only at the formatting edge.
package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimalToPaise converts a decimal rupee string to paise.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Negative values
// are rejected; zero is allowed (a zero-amount expense is valid).
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
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
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	return iv*100 + fracPaise, nil
}

// RupeesToMoney builds a Money from a whole-rupee amount.
func RupeesToMoney(rupees int64) Money {
	return Money{Paise: rupees * 100}
}

// Rupees returns the rupee value as float64 for display purposes.
// Use paise for arithmetic.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// DivideBy splits the amount over n units with half-up rounding.
// n <= 0 yields zero rather than a division error.
func (m Money) DivideBy(n int) Money {
	if n <= 0 {
		return Money{}
	}
	d := int64(n)
	half := d / 2
	return Money{Paise: (m.Paise + half) / d}
}

// DecimalString renders the amount as a plain decimal number: whole-rupee
// amounts print without a fraction ("500"), others with two digits
// ("12.34"). This is the form used in export cells.
func (m Money) DecimalString() string {
	if m.Paise%100 == 0 {
		return strconv.FormatInt(m.Paise/100, 10)
	}
	return strconv.FormatFloat(m.Rupees(), 'f', 2, 64)
}

// FormatINR renders the amount with the currency tag, e.g. "INR 1250.50".
func (m Money) FormatINR() string {
	return "INR " + m.DecimalString()
}

func (m Money) Validate() error {
	if m.Paise < 0 {
		return ErrInvalidAmount
	}
	return nil
}
