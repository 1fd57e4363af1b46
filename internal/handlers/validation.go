package handlers

import (
	"strconv"
	"strings"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/money"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	errInvalidAmount = apperr.New(apperr.InvalidInput, "invalid amount")
	errInvalidRate   = apperr.New(apperr.InvalidInput, "invalid rate")
	errInvalidDate   = apperr.New(apperr.InvalidInput, "dates must look like 2006-01-02")
	errInvalidNumber = apperr.New(apperr.InvalidInput, "invalid number")
)

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := money.Parse(raw, money.MaxDecimals)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	return amount, nil
}

func parseOptionalAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	amount, err := parseAmount(*raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errInvalidRate
	}
	if rate.Exponent() < -10 {
		return decimal.Zero, errInvalidRate
	}
	return rate, nil
}

func parseOptionalRate(raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	rate, err := parseRate(*raw)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func parseDate(raw string) (time.Time, error) {
	value, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return value, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// parseInt returns fallback for an empty value.
func parseInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidNumber
	}
	return value, nil
}

func optionalString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
