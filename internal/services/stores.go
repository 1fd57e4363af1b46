package services

import (
	"context"
	"time"

	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/websocket"

	"github.com/shopspring/decimal"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error)
	Update(ctx context.Context, tx store.Execer, account models.Account) error
	ClearDefault(ctx context.Context, tx store.Execer, ownerID string) error
	CountEntries(ctx context.Context, tx store.Getter, accountID string) (int64, error)
	Delete(ctx context.Context, tx store.Execer, accountID string) (int64, error)
}

type LedgerStore interface {
	Insert(ctx context.Context, tx store.Execer, entry models.Entry) error
	Update(ctx context.Context, tx store.Execer, entry models.Entry) error
	ReplaceTags(ctx context.Context, tx store.Execer, entryID string, tagIDs []string) error
	GetByID(ctx context.Context, entryID string) (models.Entry, error)
	GetForUpdate(ctx context.Context, tx store.Getter, entryID string) (models.Entry, error)
	Delete(ctx context.Context, tx store.Execer, entryID string) (int64, error)
	DeleteByTransfer(ctx context.Context, tx store.Execer, transferID string) (int64, error)
	List(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error)
	AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	OwnerTotals(ctx context.Context, ownerID string) ([]store.AccountTotal, decimal.Decimal, error)
	EntryDerivedTotal(ctx context.Context, ownerID string) (decimal.Decimal, error)
	SumSpending(ctx context.Context, filter store.SpendFilter) (decimal.Decimal, error)
}

type TransferStore interface {
	Create(ctx context.Context, tx store.Execer, pair models.TransferPair) error
	GetForUpdate(ctx context.Context, tx store.Getter, transferID string) (models.TransferPair, error)
	Delete(ctx context.Context, tx store.Execer, transferID string) (int64, error)
}

type ExchangeStore interface {
	Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
	SetRate(ctx context.Context, tx store.Execer, rate models.ExchangeRate) error
	List(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error)
}

type ProfileStore interface {
	Get(ctx context.Context, ownerID string) (models.Profile, error)
	Upsert(ctx context.Context, tx store.Execer, profile models.Profile) error
}

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, category models.Category) error
	GetByID(ctx context.Context, categoryID string) (models.Category, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Category, error)
}

type TagStore interface {
	Create(ctx context.Context, tx store.Execer, tag models.Tag) error
	GetByID(ctx context.Context, tagID string) (models.Tag, error)
	GetMany(ctx context.Context, tagIDs []string) ([]models.Tag, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tag, error)
}

type TemplateStore interface {
	Create(ctx context.Context, tx store.Execer, template models.Template) error
	ReplaceTags(ctx context.Context, tx store.Execer, templateID string, tagIDs []string) error
	GetByID(ctx context.Context, templateID string) (models.Template, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Template, error)
	SetFavorite(ctx context.Context, tx store.Execer, templateID string, favorite bool) (int64, error)
	Delete(ctx context.Context, tx store.Execer, templateID string) (int64, error)
}

type BudgetStore interface {
	Create(ctx context.Context, tx store.Execer, budget models.Budget) error
	GetByID(ctx context.Context, budgetID string) (models.Budget, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Budget, error)
	Delete(ctx context.Context, tx store.Execer, budgetID string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, ownerID, action, entityType, entityID, data string) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type BalanceHub interface {
	BroadcastBalance(ownerID string, update websocket.BalanceUpdate)
}
