package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type EntryService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	ledger     LedgerStore
	transfers  TransferStore
	categories CategoryStore
	tags       TagStore
	audit      AuditStore
	directory  *currency.Directory
	resolver   *Resolver
	bases      baseCurrencies
	notify     notifier
	now        func() time.Time
}

func NewEntryService(d Deps) *EntryService {
	return &EntryService{
		txRunner:   d.TxRunner,
		accounts:   d.Accounts,
		ledger:     d.Ledger,
		transfers:  d.Transfers,
		categories: d.Categories,
		tags:       d.Tags,
		audit:      d.Audit,
		directory:  d.Directory,
		resolver:   d.Resolver,
		bases:      d.baseCurrencies(),
		notify:     d.notifier("entries"),
		now:        d.clock(),
	}
}

// CreateEntryInput carries Amount in the account's currency when AccountID is
// set, and in the owner's base currency otherwise.
type CreateEntryInput struct {
	OwnerID     string
	Kind        models.Kind
	Amount      decimal.Decimal
	AccountID   *string
	CategoryID  *string
	OccurredOn  time.Time
	Description string
	TagIDs      []string
	ManualRate  *decimal.Decimal
}

func (in CreateEntryInput) validate() error {
	if in.Kind != models.KindIncome && in.Kind != models.KindExpense {
		return ErrInvalidKind
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if in.CategoryID == nil || *in.CategoryID == "" {
		return ErrCategoryRequired
	}
	if in.OccurredOn.IsZero() {
		return ErrDateRequired
	}
	if in.ManualRate != nil && !in.ManualRate.IsPositive() {
		return ErrInvalidRate
	}
	return validator.ValidateDescription(in.Description)
}

func (s *EntryService) Create(ctx context.Context, in CreateEntryInput) (models.Entry, error) {
	if err := in.validate(); err != nil {
		return models.Entry{}, err
	}
	var entry models.Entry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.createInTx(ctx, tx, in, "entry.create")
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}
	s.notify.publish(ctx, events.New(events.EntryCreated, entry.OwnerID, entry.ID, map[string]string{
		"kind":   string(entry.Kind),
		"amount": entry.Amount.String(),
	}))
	s.notify.pushBalances(ctx, entry.OwnerID, entry.AccountID())
	return entry, nil
}

func (s *EntryService) createInTx(ctx context.Context, tx store.Tx, in CreateEntryInput, action string) (models.Entry, error) {
	if err := checkCategory(ctx, s.categories, in.OwnerID, *in.CategoryID); err != nil {
		return models.Entry{}, err
	}
	tagIDs, err := checkTags(ctx, s.tags, in.OwnerID, in.TagIDs)
	if err != nil {
		return models.Entry{}, err
	}
	base, err := s.bases.For(ctx, in.OwnerID)
	if err != nil {
		return models.Entry{}, err
	}
	var account *models.Account
	if in.AccountID != nil && *in.AccountID != "" {
		locked, err := lockAccount(ctx, s.accounts, tx, in.OwnerID, *in.AccountID)
		if err != nil {
			return models.Entry{}, err
		}
		if locked.Archived {
			return models.Entry{}, ErrAccountArchived
		}
		account = &locked
	}
	occurredOn := day(in.OccurredOn)
	amount, converted, err := s.price(ctx, base, occurredOn, account, in.Amount, in.ManualRate)
	if err != nil {
		return models.Entry{}, err
	}
	now := s.now().UTC()
	categoryID := *in.CategoryID
	entry := models.Entry{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Kind:        in.Kind,
		CategoryID:  &categoryID,
		Amount:      amount,
		Converted:   converted,
		OccurredOn:  occurredOn,
		Description: in.Description,
		TagIDs:      tagIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ledger.Insert(ctx, tx, entry); err != nil {
		return models.Entry{}, apperr.FromStore(err)
	}
	if err := s.ledger.ReplaceTags(ctx, tx, entry.ID, tagIDs); err != nil {
		return models.Entry{}, apperr.FromStore(err)
	}
	data := auditData(map[string]string{"kind": string(entry.Kind), "amount": entry.Amount.String()})
	if err := s.audit.Log(ctx, tx, in.OwnerID, action, "entry", entry.ID, data); err != nil {
		return models.Entry{}, apperr.FromStore(err)
	}
	return entry, nil
}

// price derives the base amount and currency context of an income or expense.
// Without an account the amount is already in base currency. A non-nil rate
// is used as given.
func (s *EntryService) price(ctx context.Context, base string, date time.Time, account *models.Account, amount decimal.Decimal, rate *decimal.Decimal) (decimal.Decimal, *models.CurrencyContext, error) {
	if account == nil {
		if err := s.checkFits(amount, base); err != nil {
			return decimal.Zero, nil, err
		}
		return amount, nil, nil
	}
	if err := s.checkFits(amount, account.Currency); err != nil {
		return decimal.Zero, nil, err
	}
	applied, err := s.resolver.Resolve(ctx, account.Currency, base, date, rate)
	if err != nil {
		return decimal.Zero, nil, err
	}
	baseAmount, err := s.directory.Round(amount.Mul(applied), base)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if !baseAmount.IsPositive() {
		return decimal.Zero, nil, ErrConvertedToZero
	}
	return baseAmount, &models.CurrencyContext{
		AccountID:    account.ID,
		NativeAmount: amount,
		ExchangeRate: applied,
		BaseCurrency: base,
	}, nil
}

func (s *EntryService) checkFits(amount decimal.Decimal, code string) error {
	fits, err := s.directory.Fits(amount, code)
	if err != nil {
		return err
	}
	if !fits {
		return ErrAmountPrecision
	}
	return nil
}

// EntryPatch leaves nil fields unchanged. ClearAccount turns the entry into a
// base-currency entry without an account.
type EntryPatch struct {
	Kind         *models.Kind
	Amount       *decimal.Decimal
	AccountID    *string
	ClearAccount bool
	CategoryID   *string
	OccurredOn   *time.Time
	Description  *string
	TagIDs       *[]string
	ManualRate   *decimal.Decimal
}

func (p EntryPatch) validate() error {
	if p.Kind != nil && *p.Kind != models.KindIncome && *p.Kind != models.KindExpense {
		return ErrInvalidKind
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.ClearAccount && p.AccountID != nil {
		return ErrAccountConflict
	}
	if p.AccountID != nil && *p.AccountID == "" {
		return ErrAccountConflict
	}
	if p.CategoryID != nil && *p.CategoryID == "" {
		return ErrCategoryRequired
	}
	if p.OccurredOn != nil && p.OccurredOn.IsZero() {
		return ErrDateRequired
	}
	if p.ManualRate != nil && !p.ManualRate.IsPositive() {
		return ErrInvalidRate
	}
	if p.Description != nil {
		return validator.ValidateDescription(*p.Description)
	}
	return nil
}

func (p EntryPatch) reprices() bool {
	return p.Amount != nil || p.AccountID != nil || p.ClearAccount || p.ManualRate != nil
}

func (s *EntryService) Update(ctx context.Context, ownerID, entryID string, patch EntryPatch) (models.Entry, error) {
	if err := patch.validate(); err != nil {
		return models.Entry{}, err
	}
	var before, after models.Entry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.ledger.GetForUpdate(ctx, tx, entryID)
		if err != nil {
			return notFound(err, ErrEntryNotFound)
		}
		if current.OwnerID != ownerID {
			return ErrForbidden
		}
		if current.Kind == models.KindTransfer {
			return ErrTransferLegReadOnly
		}
		next := current
		if patch.Kind != nil {
			next.Kind = *patch.Kind
		}
		if patch.CategoryID != nil {
			if err := checkCategory(ctx, s.categories, ownerID, *patch.CategoryID); err != nil {
				return err
			}
			categoryID := *patch.CategoryID
			next.CategoryID = &categoryID
		}
		if patch.OccurredOn != nil {
			next.OccurredOn = day(*patch.OccurredOn)
		}
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		if patch.TagIDs != nil {
			tagIDs, err := checkTags(ctx, s.tags, ownerID, *patch.TagIDs)
			if err != nil {
				return err
			}
			next.TagIDs = tagIDs
		}
		if patch.reprices() {
			if err := s.reprice(ctx, tx, current, &next, patch); err != nil {
				return err
			}
		}
		next.UpdatedAt = s.now().UTC()
		if err := s.ledger.Update(ctx, tx, next); err != nil {
			return apperr.FromStore(err)
		}
		if patch.TagIDs != nil {
			if err := s.ledger.ReplaceTags(ctx, tx, next.ID, next.TagIDs); err != nil {
				return apperr.FromStore(err)
			}
		}
		data := auditData(map[string]string{"amount_before": current.Amount.String(), "amount_after": next.Amount.String()})
		if err := s.audit.Log(ctx, tx, ownerID, "entry.update", "entry", next.ID, data); err != nil {
			return apperr.FromStore(err)
		}
		before, after = current, next
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}
	s.notify.publish(ctx, events.New(events.EntryUpdated, ownerID, after.ID, map[string]string{
		"amount": after.Amount.String(),
	}))
	s.notify.pushBalances(ctx, ownerID, before.AccountID(), after.AccountID())
	return after, nil
}

// reprice re-derives the amount and the whole currency context. The stored
// rate is kept only while account, base currency and date are unchanged.
func (s *EntryService) reprice(ctx context.Context, tx store.Getter, current models.Entry, next *models.Entry, patch EntryPatch) error {
	base, err := s.bases.For(ctx, current.OwnerID)
	if err != nil {
		return err
	}
	accountID := current.AccountID()
	switch {
	case patch.ClearAccount:
		accountID = ""
	case patch.AccountID != nil:
		accountID = *patch.AccountID
	}
	var account *models.Account
	if accountID != "" {
		locked, err := lockAccount(ctx, s.accounts, tx, current.OwnerID, accountID)
		if err != nil {
			return err
		}
		if locked.Archived && accountID != current.AccountID() {
			return ErrAccountArchived
		}
		account = &locked
	}

	amount := current.Amount
	if account != nil && current.Converted != nil {
		amount = current.Converted.NativeAmount
	}
	if patch.Amount != nil {
		amount = *patch.Amount
	}

	rate := patch.ManualRate
	if rate == nil && account != nil && current.Converted != nil &&
		current.Converted.AccountID == account.ID &&
		current.Converted.BaseCurrency == base &&
		current.OccurredOn.Equal(next.OccurredOn) {
		stored := current.Converted.ExchangeRate
		rate = &stored
	}

	next.Amount, next.Converted, err = s.price(ctx, base, next.OccurredOn, account, amount, rate)
	return err
}

// Delete removes an income or expense entry. A transfer leg takes its whole
// pair with it.
func (s *EntryService) Delete(ctx context.Context, ownerID, entryID string) error {
	var deleted models.Entry
	var pair *models.TransferPair
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.ledger.GetForUpdate(ctx, tx, entryID)
		if err != nil {
			return notFound(err, ErrEntryNotFound)
		}
		if entry.OwnerID != ownerID {
			return ErrForbidden
		}
		deleted, pair = entry, nil
		if entry.TransferID != nil {
			removed, err := deletePair(ctx, tx, s.ledger, s.transfers, *entry.TransferID)
			if err != nil {
				return err
			}
			pair = &removed
			data := auditData(map[string]string{"leg": entry.ID})
			return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "transfer.delete", "transfer", removed.ID, data))
		}
		if _, err := s.ledger.Delete(ctx, tx, entry.ID); err != nil {
			return apperr.FromStore(err)
		}
		return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "entry.delete", "entry", entry.ID, "{}"))
	})
	if err != nil {
		return err
	}
	if pair != nil {
		s.notify.publish(ctx, events.New(events.TransferDeleted, ownerID, pair.ID, nil))
		s.notify.pushBalances(ctx, ownerID, pair.SourceAccountID, pair.DestinationAccountID)
		return nil
	}
	s.notify.publish(ctx, events.New(events.EntryDeleted, ownerID, deleted.ID, nil))
	s.notify.pushBalances(ctx, ownerID, deleted.AccountID())
	return nil
}

func (s *EntryService) Get(ctx context.Context, ownerID, entryID string) (models.Entry, error) {
	entry, err := s.ledger.GetByID(ctx, entryID)
	if err != nil {
		return models.Entry{}, notFound(err, ErrEntryNotFound)
	}
	if entry.OwnerID != ownerID {
		return models.Entry{}, ErrForbidden
	}
	return entry, nil
}

func (s *EntryService) List(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error) {
	limit, offset, err := pageBounds(filter.Limit, filter.Offset)
	if err != nil {
		return models.EntryPage{}, err
	}
	filter.Limit, filter.Offset = limit, offset
	if filter.Kind != nil && !filter.Kind.Valid() {
		return models.EntryPage{}, apperr.New(apperr.InvalidInput, "unknown entry kind")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return models.EntryPage{}, ErrInvalidDateRange
	}
	page, err := s.ledger.List(ctx, filter)
	if err != nil {
		return models.EntryPage{}, apperr.FromStore(err)
	}
	return page, nil
}

// pageBounds applies the default page size and caps it.
func pageBounds(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, ErrInvalidPaging
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, offset, nil
}
