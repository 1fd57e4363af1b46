package store

import (
	"context"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

type ExchangeStore struct {
	db DB
}

func NewExchangeStore(db DB) *ExchangeStore {
	return &ExchangeStore{db: db}
}

// Rate returns the rate for the pair effective on date: the latest stored
// rate dated on or before it. sql.ErrNoRows when there is none.
func (s *ExchangeStore) Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.db.GetContext(ctx, &rate, `
		SELECT rate
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND rate_date <= $3
		ORDER BY rate_date DESC
		LIMIT 1
	`, from, to, date)
	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

func (s *ExchangeStore) SetRate(ctx context.Context, tx Execer, rate models.ExchangeRate) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate_date, rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_currency, to_currency, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate, created_at = NOW()
	`, rate.FromCurrency, rate.ToCurrency, rate.RateDate, rate.Rate)
	return err
}

func (s *ExchangeStore) List(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT from_currency, to_currency, rate_date, rate
		FROM exchange_rates
		ORDER BY rate_date DESC, from_currency, to_currency
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
