// Package rates loads a static exchange-rate table from a YAML file.
package rates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("rate not in table")

const dateLayout = "2006-01-02"

type fileRate struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Date string `yaml:"date"`
	Rate string `yaml:"rate"`
}

type file struct {
	Rates []fileRate `yaml:"rates"`
}

// Table holds rates per pair ordered by date ascending.
type Table struct {
	pairs map[string][]models.ExchangeRate
}

func pairKey(from, to string) string {
	return from + "/" + to
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rates file: %w", err)
	}
	table := &Table{pairs: make(map[string][]models.ExchangeRate)}
	for i, raw := range f.Rates {
		rate, err := raw.toModel()
		if err != nil {
			return nil, fmt.Errorf("rates[%d]: %w", i, err)
		}
		key := pairKey(rate.FromCurrency, rate.ToCurrency)
		table.pairs[key] = append(table.pairs[key], rate)
	}
	for _, list := range table.pairs {
		sort.Slice(list, func(i, j int) bool { return list[i].RateDate.Before(list[j].RateDate) })
	}
	return table, nil
}

func (r fileRate) toModel() (models.ExchangeRate, error) {
	from := strings.ToUpper(strings.TrimSpace(r.From))
	to := strings.ToUpper(strings.TrimSpace(r.To))
	if len(from) != 3 || len(to) != 3 {
		return models.ExchangeRate{}, fmt.Errorf("invalid pair %q/%q", r.From, r.To)
	}
	if from == to {
		return models.ExchangeRate{}, fmt.Errorf("identity pair %s", from)
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return models.ExchangeRate{}, fmt.Errorf("invalid date %q", r.Date)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
	if err != nil || !rate.IsPositive() {
		return models.ExchangeRate{}, fmt.Errorf("invalid rate %q", r.Rate)
	}
	return models.ExchangeRate{FromCurrency: from, ToCurrency: to, RateDate: date, Rate: rate}, nil
}

// Rate returns the latest rate for the pair dated on or before date.
func (t *Table) Rate(_ context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	list := t.pairs[pairKey(from, to)]
	day := truncateDay(date)
	idx := sort.Search(len(list), func(i int) bool { return list[i].RateDate.After(day) })
	if idx == 0 {
		return decimal.Zero, ErrNotFound
	}
	return list[idx-1].Rate, nil
}

// All returns every rate in the table, pairs in lexical order.
func (t *Table) All() []models.ExchangeRate {
	keys := make([]string, 0, len(t.pairs))
	for key := range t.pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var out []models.ExchangeRate
	for _, key := range keys {
		out = append(out, t.pairs[key]...)
	}
	return out
}

func truncateDay(value time.Time) time.Time {
	y, m, d := value.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
