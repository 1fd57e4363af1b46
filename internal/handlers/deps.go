package handlers

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/shopspring/decimal"
)

type AccountService interface {
	Create(ctx context.Context, in services.AccountInput) (models.Account, error)
	Update(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error)
	Get(ctx context.Context, ownerID, accountID string) (models.Account, error)
	List(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error)
	Delete(ctx context.Context, ownerID, accountID string) error
}

type EntryService interface {
	Create(ctx context.Context, in services.CreateEntryInput) (models.Entry, error)
	Update(ctx context.Context, ownerID, entryID string, patch services.EntryPatch) (models.Entry, error)
	Delete(ctx context.Context, ownerID, entryID string) error
	Get(ctx context.Context, ownerID, entryID string) (models.Entry, error)
	List(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error)
}

type TransferService interface {
	CreateTransfer(ctx context.Context, req services.TransferRequest) (models.TransferPair, error)
	DeleteTransfer(ctx context.Context, ownerID, legID string) error
}

type BalanceService interface {
	AccountBalance(ctx context.Context, ownerID, accountID string) (models.AccountBalance, error)
	AggregateBalance(ctx context.Context, ownerID string) (models.AggregateBalance, error)
	Convert(ctx context.Context, ownerID string, amount decimal.Decimal, from, to string) (models.Conversion, error)
	SelfCheck(ctx context.Context, ownerID string) (models.SelfCheck, error)
}

type TemplateService interface {
	Create(ctx context.Context, in services.TemplateInput) (models.Template, error)
	List(ctx context.Context, ownerID string) ([]models.Template, error)
	SetFavorite(ctx context.Context, ownerID, templateID string, favorite bool) (models.Template, error)
	Delete(ctx context.Context, ownerID, templateID string) error
	Materialize(ctx context.Context, ownerID, templateID string, overrides services.Overrides) (models.Entry, error)
}

type BudgetService interface {
	Create(ctx context.Context, in services.BudgetInput) (models.Budget, error)
	Delete(ctx context.Context, ownerID, budgetID string) error
	Progress(ctx context.Context, ownerID, budgetID string) (models.BudgetProgress, error)
	ListProgress(ctx context.Context, ownerID string) ([]models.BudgetProgress, error)
}

type RateService interface {
	SetRate(ctx context.Context, rate models.ExchangeRate) (models.ExchangeRate, error)
	List(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error)
}

type ProfileService interface {
	Get(ctx context.Context, ownerID string) (models.Profile, error)
	SetBaseCurrency(ctx context.Context, ownerID, code string) (models.Profile, error)
}

type ReferenceService interface {
	CreateCategory(ctx context.Context, ownerID, name, color string) (models.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	CreateTag(ctx context.Context, ownerID, name string) (models.Tag, error)
	ListTags(ctx context.Context, ownerID string) ([]models.Tag, error)
}

type AuditStore interface {
	List(ctx context.Context, ownerID string, limit, offset int) ([]map[string]any, error)
}

// Services groups everything the router dispatches to.
type Services struct {
	Accounts   AccountService
	Entries    EntryService
	Transfers  TransferService
	Balances   BalanceService
	Templates  TemplateService
	Budgets    BudgetService
	Rates      RateService
	Profiles   ProfileService
	References ReferenceService
	Audit      AuditStore
}
