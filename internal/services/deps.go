package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/events"
	"fintrack/internal/logging"
	"fintrack/internal/websocket"
)

// Deps is the shared wiring handed to every service constructor.
type Deps struct {
	TxRunner            db.TxRunner
	Accounts            AccountStore
	Ledger              LedgerStore
	Transfers           TransferStore
	Rates               ExchangeStore
	Profiles            ProfileStore
	Categories          CategoryStore
	Tags                TagStore
	Templates           TemplateStore
	Budgets             BudgetStore
	Audit               AuditStore
	Directory           *currency.Directory
	Resolver            *Resolver
	Publisher           Publisher
	Hub                 BalanceHub
	Logger              *slog.Logger
	DefaultBaseCurrency string
	Now                 func() time.Time
}

func (d Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d Deps) baseCurrencies() baseCurrencies {
	return baseCurrencies{profiles: d.Profiles, fallback: d.DefaultBaseCurrency}
}

func (d Deps) notifier(component string) notifier {
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return notifier{
		publisher: publisher,
		hub:       d.Hub,
		accounts:  d.Accounts,
		ledger:    d.Ledger,
		directory: d.Directory,
		logger:    logging.Component(d.Logger, component),
	}
}

type baseCurrencies struct {
	profiles ProfileStore
	fallback string
}

// For returns the owner's base currency, or the configured default when the
// owner has no profile yet.
func (b baseCurrencies) For(ctx context.Context, ownerID string) (string, error) {
	profile, err := b.profiles.Get(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return currency.Normalize(b.fallback), nil
	}
	if err != nil {
		return "", apperr.FromStore(err)
	}
	return currency.Normalize(profile.BaseCurrency), nil
}

// notifier runs side effects after commit. Failures are logged and never
// reach the caller.
type notifier struct {
	publisher Publisher
	hub       BalanceHub
	accounts  AccountStore
	ledger    LedgerStore
	directory *currency.Directory
	logger    *slog.Logger
}

func (n notifier) publish(ctx context.Context, event events.Event) {
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "publish ledger event failed",
			"type", event.Type,
			"entity_id", event.EntityID,
			logging.FieldError, err)
	}
}

func (n notifier) pushBalances(ctx context.Context, ownerID string, accountIDs ...string) {
	if n.hub == nil {
		return
	}
	seen := map[string]bool{}
	for _, accountID := range accountIDs {
		if accountID == "" || seen[accountID] {
			continue
		}
		seen[accountID] = true
		account, err := n.accounts.GetByID(ctx, accountID)
		if err != nil {
			n.logger.WarnContext(ctx, "load account for balance push failed", "account_id", accountID, logging.FieldError, err)
			continue
		}
		balance, err := n.ledger.AccountBalance(ctx, accountID)
		if err != nil {
			n.logger.WarnContext(ctx, "load balance for push failed", "account_id", accountID, logging.FieldError, err)
			continue
		}
		places := int32(2)
		if c, err := n.directory.Lookup(account.Currency); err == nil {
			places = c.Decimals
		}
		n.hub.BroadcastBalance(ownerID, websocket.BalanceUpdate{
			AccountID: accountID,
			Balance:   balance.StringFixedBank(places),
			Currency:  account.Currency,
			Display:   n.directory.Format(balance, account.Currency),
		})
	}
}

func auditData(values map[string]string) string {
	data, _ := json.Marshal(values)
	return string(data)
}

// notFound maps a missing row to the given sentinel and classifies anything else.
func notFound(err error, sentinel *apperr.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return apperr.FromStore(err)
}

func day(value time.Time) time.Time {
	y, m, d := value.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
