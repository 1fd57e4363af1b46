// Package currency is the static directory of currency metadata used for
// rounding and display.
package currency

import (
	"fmt"
	"regexp"
	"strings"

	"fintrack/internal/apperr"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrUnknownCurrency = apperr.New(apperr.InvalidInput, "unknown currency code")

var codeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

type Currency struct {
	Code     string `yaml:"code" json:"code"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Name     string `yaml:"name" json:"name"`
	Decimals int32  `yaml:"decimals" json:"decimals"`
}

var displayNames = map[string]string{
	"AUD": "Australian Dollar",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"EUR": "Euro",
	"GBP": "British Pound",
	"HKD": "Hong Kong Dollar",
	"IDR": "Indonesian Rupiah",
	"INR": "Indian Rupee",
	"JPY": "Japanese Yen",
	"KRW": "South Korean Won",
	"KWD": "Kuwaiti Dinar",
	"MXN": "Mexican Peso",
	"NOK": "Norwegian Krone",
	"NZD": "New Zealand Dollar",
	"PLN": "Polish Zloty",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"TRY": "Turkish Lira",
	"TWD": "New Taiwan Dollar",
	"USD": "US Dollar",
	"VND": "Vietnamese Dong",
	"ZAR": "South African Rand",
}

// Directory resolves ISO codes against the go-money table. Extra entries
// registered at construction take precedence.
type Directory struct {
	extra map[string]Currency
}

func NewDirectory(extra ...Currency) *Directory {
	d := &Directory{extra: make(map[string]Currency, len(extra))}
	for _, c := range extra {
		c.Code = Normalize(c.Code)
		if c.Name == "" {
			c.Name = c.Code
		}
		d.extra[c.Code] = c
	}
	return d
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (d *Directory) Lookup(code string) (Currency, error) {
	code = Normalize(code)
	if !codeRegex.MatchString(code) {
		return Currency{}, ErrUnknownCurrency
	}
	if c, ok := d.extra[code]; ok {
		return c, nil
	}
	mc := money.GetCurrency(code)
	if mc == nil {
		return Currency{}, ErrUnknownCurrency
	}
	name := displayNames[code]
	if name == "" {
		name = code
	}
	return Currency{
		Code:     mc.Code,
		Symbol:   mc.Grapheme,
		Name:     name,
		Decimals: int32(mc.Fraction),
	}, nil
}

func (d *Directory) Known(code string) bool {
	_, err := d.Lookup(code)
	return err == nil
}

// Round rounds to the currency's minor unit using banker's rounding.
func (d *Directory) Round(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	c, err := d.Lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.RoundBank(c.Decimals), nil
}

// Fits reports whether amount is representable without rounding.
func (d *Directory) Fits(amount decimal.Decimal, code string) (bool, error) {
	c, err := d.Lookup(code)
	if err != nil {
		return false, err
	}
	return amount.Equal(amount.Truncate(c.Decimals)), nil
}

func (d *Directory) Format(amount decimal.Decimal, code string) string {
	c, err := d.Lookup(code)
	if err != nil {
		return amount.String() + " " + Normalize(code)
	}
	if _, custom := d.extra[c.Code]; !custom {
		if mc := money.GetCurrency(c.Code); mc != nil {
			minor := amount.Shift(c.Decimals).RoundBank(0).IntPart()
			return mc.Formatter().Format(minor)
		}
	}
	return fmt.Sprintf("%s%s", c.Symbol, amount.StringFixedBank(c.Decimals))
}
