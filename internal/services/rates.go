package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/rates"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// reciprocalPlaces is the precision of a rate derived from the reverse pair.
const reciprocalPlaces = 10

type RateSource interface {
	Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

// Resolver consults sources in order for the direct pair, then for the
// reverse pair.
type Resolver struct {
	directory *currency.Directory
	sources   []RateSource
}

func NewResolver(directory *currency.Directory, sources ...RateSource) *Resolver {
	return &Resolver{directory: directory, sources: sources}
}

func (r *Resolver) Resolve(ctx context.Context, from, to string, date time.Time, manual *decimal.Decimal) (decimal.Decimal, error) {
	from, to = currency.Normalize(from), currency.Normalize(to)
	if _, err := r.directory.Lookup(from); err != nil {
		return decimal.Zero, err
	}
	if _, err := r.directory.Lookup(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if manual != nil {
		if !manual.IsPositive() {
			return decimal.Zero, ErrInvalidRate
		}
		return *manual, nil
	}
	date = day(date)
	rate, found, err := r.lookup(ctx, from, to, date)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return rate, nil
	}
	reverse, found, err := r.lookup(ctx, to, from, date)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return decimal.NewFromInt(1).DivRound(reverse, reciprocalPlaces), nil
	}
	return decimal.Zero, apperr.With(ErrRateNotFound, map[string]string{
		"from": from,
		"to":   to,
		"date": date.Format("2006-01-02"),
	})
}

func (r *Resolver) lookup(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, bool, error) {
	for _, source := range r.sources {
		rate, err := source.Rate(ctx, from, to, date)
		if err == nil && rate.IsPositive() {
			return rate, true, nil
		}
		if err != nil && !missingRate(err) {
			return decimal.Zero, false, apperr.FromStore(err)
		}
	}
	return decimal.Zero, false, nil
}

func missingRate(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, rates.ErrNotFound)
}

// Convert rounds the converted amount to the target currency.
func (r *Resolver) Convert(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (models.Conversion, error) {
	rate, err := r.Resolve(ctx, from, to, date, nil)
	if err != nil {
		return models.Conversion{}, err
	}
	converted, err := r.directory.Round(amount.Mul(rate), to)
	if err != nil {
		return models.Conversion{}, err
	}
	return models.Conversion{
		From:      currency.Normalize(from),
		To:        currency.Normalize(to),
		Amount:    amount,
		Converted: converted,
		Rate:      rate,
		AsOf:      day(date),
	}, nil
}

type RateService struct {
	txRunner  db.TxRunner
	rates     ExchangeStore
	directory *currency.Directory
}

func NewRateService(d Deps) *RateService {
	return &RateService{txRunner: d.TxRunner, rates: d.Rates, directory: d.Directory}
}

// SetRate stores the rate for the pair effective from its date until a later
// rate supersedes it. An existing rate for the same date is replaced.
func (s *RateService) SetRate(ctx context.Context, rate models.ExchangeRate) (models.ExchangeRate, error) {
	from, err := s.directory.Lookup(rate.FromCurrency)
	if err != nil {
		return models.ExchangeRate{}, err
	}
	to, err := s.directory.Lookup(rate.ToCurrency)
	if err != nil {
		return models.ExchangeRate{}, err
	}
	if from.Code == to.Code {
		return models.ExchangeRate{}, ErrIdentityPair
	}
	if !rate.Rate.IsPositive() {
		return models.ExchangeRate{}, ErrInvalidRate
	}
	if rate.RateDate.IsZero() {
		return models.ExchangeRate{}, ErrDateRequired
	}
	stored := models.ExchangeRate{
		FromCurrency: from.Code,
		ToCurrency:   to.Code,
		RateDate:     day(rate.RateDate),
		Rate:         rate.Rate.Round(reciprocalPlaces),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return apperr.FromStore(s.rates.SetRate(ctx, tx, stored))
	})
	if err != nil {
		return models.ExchangeRate{}, err
	}
	return stored, nil
}

func (s *RateService) List(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error) {
	limit, offset, err := pageBounds(limit, offset)
	if err != nil {
		return nil, err
	}
	list, err := s.rates.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return list, nil
}
