package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// progressWorkers bounds concurrent spend queries when listing budgets.
const progressWorkers = 4

type BudgetService struct {
	txRunner   db.TxRunner
	budgets    BudgetStore
	ledger     LedgerStore
	categories CategoryStore
	tags       TagStore
	directory  *currency.Directory
	bases      baseCurrencies
	now        func() time.Time
}

func NewBudgetService(d Deps) *BudgetService {
	return &BudgetService{
		txRunner:   d.TxRunner,
		budgets:    d.Budgets,
		ledger:     d.Ledger,
		categories: d.Categories,
		tags:       d.Tags,
		directory:  d.Directory,
		bases:      d.baseCurrencies(),
		now:        d.clock(),
	}
}

type BudgetInput struct {
	OwnerID     string
	Limit       decimal.Decimal
	PeriodStart time.Time
	CategoryID  *string
	TagID       *string
}

func (s *BudgetService) Create(ctx context.Context, in BudgetInput) (models.Budget, error) {
	if !in.Limit.IsPositive() {
		return models.Budget{}, ErrInvalidAmount
	}
	if in.PeriodStart.IsZero() {
		return models.Budget{}, ErrDateRequired
	}
	if (in.CategoryID == nil) == (in.TagID == nil) {
		return models.Budget{}, ErrBudgetTarget
	}
	if in.CategoryID != nil {
		if err := checkCategory(ctx, s.categories, in.OwnerID, *in.CategoryID); err != nil {
			return models.Budget{}, err
		}
	} else if _, err := checkTags(ctx, s.tags, in.OwnerID, []string{*in.TagID}); err != nil {
		return models.Budget{}, err
	}
	base, err := s.bases.For(ctx, in.OwnerID)
	if err != nil {
		return models.Budget{}, err
	}
	fits, err := s.directory.Fits(in.Limit, base)
	if err != nil {
		return models.Budget{}, err
	}
	if !fits {
		return models.Budget{}, ErrAmountPrecision
	}
	budget := models.Budget{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Limit:       in.Limit,
		PeriodStart: monthStart(in.PeriodStart),
		CategoryID:  in.CategoryID,
		TagID:       in.TagID,
		CreatedAt:   s.now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return apperr.FromStore(s.budgets.Create(ctx, tx, budget))
	})
	if err != nil {
		return models.Budget{}, err
	}
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, budgetID string) error {
	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return notFound(err, ErrBudgetNotFound)
	}
	if budget.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.budgets.Delete(ctx, tx, budgetID)
		if err != nil {
			return apperr.FromStore(err)
		}
		if rows == 0 {
			return ErrBudgetNotFound
		}
		return nil
	})
}

func (s *BudgetService) Progress(ctx context.Context, ownerID, budgetID string) (models.BudgetProgress, error) {
	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return models.BudgetProgress{}, notFound(err, ErrBudgetNotFound)
	}
	if budget.OwnerID != ownerID {
		return models.BudgetProgress{}, ErrForbidden
	}
	base, err := s.bases.For(ctx, ownerID)
	if err != nil {
		return models.BudgetProgress{}, err
	}
	return s.progress(ctx, budget, base, day(s.now()))
}

// ListProgress computes every budget of the owner concurrently. Results keep
// the store's order.
func (s *BudgetService) ListProgress(ctx context.Context, ownerID string) ([]models.BudgetProgress, error) {
	budgets, err := s.budgets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	base, err := s.bases.For(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := day(s.now())
	results := make([]models.BudgetProgress, len(budgets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(progressWorkers)
	for i, budget := range budgets {
		group.Go(func() error {
			progress, err := s.progress(groupCtx, budget, base, today)
			if err != nil {
				return err
			}
			results[i] = progress
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// progress sums expense base amounts from the period start through today.
func (s *BudgetService) progress(ctx context.Context, budget models.Budget, base string, today time.Time) (models.BudgetProgress, error) {
	spent := decimal.Zero
	if !today.Before(budget.PeriodStart) {
		sum, err := s.ledger.SumSpending(ctx, store.SpendFilter{
			OwnerID:    budget.OwnerID,
			CategoryID: budget.CategoryID,
			TagID:      budget.TagID,
			From:       budget.PeriodStart,
			To:         today,
		})
		if err != nil {
			return models.BudgetProgress{}, apperr.FromStore(err)
		}
		spent = sum
	}
	percentage := spent.Div(budget.Limit).Mul(decimal.NewFromInt(100)).Round(2)
	return models.BudgetProgress{
		BudgetID:     budget.ID,
		Limit:        budget.Limit,
		Spent:        spent,
		Percentage:   percentage,
		IsOverspent:  spent.GreaterThan(budget.Limit),
		BaseCurrency: base,
		PeriodStart:  budget.PeriodStart,
	}, nil
}

func monthStart(value time.Time) time.Time {
	y, m, _ := value.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
