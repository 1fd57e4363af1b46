package services

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

type BalanceService struct {
	accounts  AccountStore
	ledger    LedgerStore
	directory *currency.Directory
	resolver  *Resolver
	bases     baseCurrencies
	now       func() time.Time
}

func NewBalanceService(d Deps) *BalanceService {
	return &BalanceService{
		accounts:  d.Accounts,
		ledger:    d.Ledger,
		directory: d.Directory,
		resolver:  d.Resolver,
		bases:     d.baseCurrencies(),
		now:       d.clock(),
	}
}

// AccountBalance is the native-currency sum of every entry on the account,
// transfers included. The conversion to base is filled when a rate is known.
func (s *BalanceService) AccountBalance(ctx context.Context, ownerID, accountID string) (models.AccountBalance, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.AccountBalance{}, notFound(err, ErrAccountNotFound)
	}
	if account.OwnerID != ownerID {
		return models.AccountBalance{}, ErrForbidden
	}
	balance, err := s.ledger.AccountBalance(ctx, accountID)
	if err != nil {
		return models.AccountBalance{}, apperr.FromStore(err)
	}
	base, err := s.bases.For(ctx, ownerID)
	if err != nil {
		return models.AccountBalance{}, err
	}
	result := models.AccountBalance{
		AccountID: account.ID,
		Name:      account.Name,
		Currency:  account.Currency,
		Balance:   balance,
		Archived:  account.Archived,
	}
	conversion, err := s.resolver.Convert(ctx, balance, account.Currency, base, s.now())
	switch {
	case err == nil:
		result.Rate, result.Converted = &conversion.Rate, &conversion.Converted
	case !errors.Is(err, ErrRateNotFound):
		return models.AccountBalance{}, err
	}
	return result, nil
}

// AggregateBalance converts every account balance to the base currency at
// the current rate and adds legacy entries, which are already in base. All
// contributions come from one query.
func (s *BalanceService) AggregateBalance(ctx context.Context, ownerID string) (models.AggregateBalance, error) {
	base, err := s.bases.For(ctx, ownerID)
	if err != nil {
		return models.AggregateBalance{}, err
	}
	totals, legacy, err := s.ledger.OwnerTotals(ctx, ownerID)
	if err != nil {
		return models.AggregateBalance{}, apperr.FromStore(err)
	}
	now := s.now()
	total := legacy
	breakdown := make([]models.AccountBalance, 0, len(totals))
	for _, t := range totals {
		line := models.AccountBalance{
			AccountID: t.AccountID,
			Name:      t.Name,
			Currency:  t.Currency,
			Balance:   t.Balance,
			Archived:  t.Archived,
		}
		conversion, err := s.resolver.Convert(ctx, t.Balance, t.Currency, base, now)
		if err != nil {
			if t.Balance.IsZero() && errors.Is(err, ErrRateNotFound) {
				breakdown = append(breakdown, line)
				continue
			}
			return models.AggregateBalance{}, err
		}
		line.Rate, line.Converted = &conversion.Rate, &conversion.Converted
		total = total.Add(conversion.Converted)
		breakdown = append(breakdown, line)
	}
	total, err = s.directory.Round(total, base)
	if err != nil {
		return models.AggregateBalance{}, err
	}
	return models.AggregateBalance{
		OwnerID:      ownerID,
		Total:        total,
		BaseCurrency: base,
		Breakdown:    breakdown,
		Unassigned:   legacy,
		AsOf:         now.UTC(),
	}, nil
}

// Convert is for display and always uses the current rate. An empty to
// means the owner's base currency.
func (s *BalanceService) Convert(ctx context.Context, ownerID string, amount decimal.Decimal, from, to string) (models.Conversion, error) {
	if to == "" {
		base, err := s.bases.For(ctx, ownerID)
		if err != nil {
			return models.Conversion{}, err
		}
		to = base
	}
	return s.resolver.Convert(ctx, amount, from, to, s.now())
}

// SelfCheck reports how far the canonical aggregate is from the sum of
// income and expense base amounts.
func (s *BalanceService) SelfCheck(ctx context.Context, ownerID string) (models.SelfCheck, error) {
	aggregate, err := s.AggregateBalance(ctx, ownerID)
	if err != nil {
		return models.SelfCheck{}, err
	}
	derived, err := s.ledger.EntryDerivedTotal(ctx, ownerID)
	if err != nil {
		return models.SelfCheck{}, apperr.FromStore(err)
	}
	return models.SelfCheck{
		OwnerID:      ownerID,
		BaseCurrency: aggregate.BaseCurrency,
		Canonical:    aggregate.Total,
		EntryDerived: derived,
		Drift:        aggregate.Total.Sub(derived),
	}, nil
}
