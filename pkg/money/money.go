// Package money holds the decimal helpers used for fares and costs.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimals kept for amounts
const Places = 2

// ErrInvalidAmount is returned for anything Parse cannot read without guessing.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads user-formatted amounts such as "45,50", "€ 45.50", "1 234.50"
// or "1.234,50".
//
// When both separators appear the last one is the decimal mark and the other
// groups thousands. A lone separator is the decimal mark. A separator repeated
// with no other mark groups thousands. Groups must be three digits and at most
// two decimals are accepted; nothing is rounded.
func Parse(s string) (decimal.Decimal, error) {
	raw := s
	s = spaces.Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimPrefix(s, "EUR")
	s = strings.TrimSuffix(s, "EUR")
	s = strings.TrimSpace(s)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, fracPart, err := splitAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", err, raw)
	}
	norm := sign + intPart
	if fracPart != "" {
		norm += "." + fracPart
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidAmount, raw, err)
	}
	return d, nil
}

var spaces = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// splitAmount returns the integer digits with grouping removed and the decimals.
func splitAmount(s string) (string, string, error) {
	if s == "" {
		return "", "", ErrInvalidAmount
	}
	blanks, commas, dots := strings.Count(s, " "), strings.Count(s, ","), strings.Count(s, ".")

	var group, mark string
	switch {
	case blanks > 0:
		if commas+dots > 1 {
			return "", "", ErrInvalidAmount
		}
		group = " "
		if commas == 1 {
			mark = ","
		} else if dots == 1 {
			mark = "."
		}
	case commas > 0 && dots > 0:
		last := strings.LastIndexAny(s, ",.")
		mark = s[last : last+1]
		group = ","
		if mark == "," {
			group = "."
		}
		if strings.Count(s, mark) != 1 {
			return "", "", ErrInvalidAmount
		}
	case commas == 1:
		mark = ","
	case dots == 1:
		mark = "."
	case commas > 1:
		group = ","
	case dots > 1:
		group = "."
	}

	intPart, fracPart := s, ""
	if mark != "" {
		i := strings.Index(s, mark)
		intPart, fracPart = s[:i], s[i+1:]
		if fracPart == "" || len(fracPart) > Places || !allDigits(fracPart) {
			return "", "", ErrInvalidAmount
		}
	}
	if group != "" {
		groups := strings.Split(intPart, group)
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return "", "", ErrInvalidAmount
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", "", ErrInvalidAmount
			}
		}
		intPart = strings.Join(groups, "")
	}
	if intPart == "" || !allDigits(intPart) {
		return "", "", ErrInvalidAmount
	}
	return intPart, fracPart, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Format renders d with two decimals
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Avg divides total by n rounded to two decimals, zero when n is zero
func Avg(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), Places)
}
