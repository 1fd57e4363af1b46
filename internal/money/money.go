package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimals bounds what the API accepts before currency-specific checks.
const MaxDecimals = 8

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// Parse reads a plain decimal string such as "-12.50". Exponents, thousand
// separators and currency symbols are rejected.
func Parse(input string, maxDecimals int) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	unsigned := trimmed
	if unsigned[0] == '-' || unsigned[0] == '+' {
		unsigned = unsigned[1:]
	}
	parts := strings.SplitN(unsigned, ".", 2)
	wholePart := parts[0]
	if wholePart == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	if !isDigits(wholePart) {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(parts) == 2 {
		fracPart := parts[1]
		if !isDigits(fracPart) {
			return decimal.Zero, ErrInvalidAmount
		}
		if len(fracPart) > maxDecimals {
			return decimal.Zero, ErrTooManyDecimals
		}
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return value, nil
}

func ParsePositive(input string) (decimal.Decimal, error) {
	value, err := Parse(input, MaxDecimals)
	if err != nil {
		return decimal.Zero, err
	}
	if !value.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return value, nil
}

// Format renders amount with exactly places decimals.
func Format(amount decimal.Decimal, places int32) string {
	return amount.StringFixedBank(places)
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
