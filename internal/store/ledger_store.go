package store

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type entryRow struct {
	ID            string              `db:"id"`
	OwnerID       string              `db:"owner_id"`
	Kind          string              `db:"kind"`
	AccountID     *string             `db:"account_id"`
	CategoryID    *string             `db:"category_id"`
	Amount        decimal.Decimal     `db:"amount"`
	NativeAmount  decimal.NullDecimal `db:"native_amount"`
	ExchangeRate  decimal.NullDecimal `db:"exchange_rate"`
	BaseCurrency  *string             `db:"base_currency"`
	OccurredOn    time.Time           `db:"occurred_on"`
	Description   string              `db:"description"`
	TransferID    *string             `db:"transfer_id"`
	Leg           *string             `db:"leg"`
	LinkedEntryID *string             `db:"linked_entry_id"`
	TagIDs        pq.StringArray      `db:"tag_ids"`
	CreatedAt     time.Time           `db:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at"`
}

const entrySelect = `
		SELECT e.id, e.owner_id, e.kind, e.account_id, e.category_id, e.amount,
		       e.native_amount, e.exchange_rate, e.base_currency, e.occurred_on,
		       e.description, e.transfer_id, e.leg,
		       (SELECT o.id FROM entries o WHERE o.transfer_id = e.transfer_id AND o.id <> e.id) AS linked_entry_id,
		       COALESCE((SELECT array_agg(et.tag_id ORDER BY et.tag_id) FROM entry_tags et WHERE et.entry_id = e.id), '{}') AS tag_ids,
		       e.created_at, e.updated_at
		FROM entries e
`

// signedNative is the contribution of an entry to its account's balance.
const signedNative = `CASE WHEN e.kind = 'expense' THEN -e.native_amount ELSE e.native_amount END`

func (r entryRow) toModel() models.Entry {
	entry := models.Entry{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Kind:          models.Kind(r.Kind),
		CategoryID:    r.CategoryID,
		Amount:        r.Amount,
		OccurredOn:    r.OccurredOn,
		Description:   r.Description,
		TagIDs:        []string(r.TagIDs),
		TransferID:    r.TransferID,
		LinkedEntryID: r.LinkedEntryID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if entry.TagIDs == nil {
		entry.TagIDs = []string{}
	}
	if r.Leg != nil {
		leg := models.Leg(*r.Leg)
		entry.Leg = &leg
	}
	if r.AccountID != nil && r.NativeAmount.Valid && r.ExchangeRate.Valid && r.BaseCurrency != nil {
		entry.Converted = &models.CurrencyContext{
			AccountID:    *r.AccountID,
			NativeAmount: r.NativeAmount.Decimal,
			ExchangeRate: r.ExchangeRate.Decimal,
			BaseCurrency: strings.TrimSpace(*r.BaseCurrency),
		}
	}
	return entry
}

// currencyColumns flattens the currency context into nullable column values.
func currencyColumns(entry models.Entry) (accountID *string, native, rate decimal.NullDecimal, base *string) {
	if entry.Converted == nil {
		return nil, decimal.NullDecimal{}, decimal.NullDecimal{}, nil
	}
	c := entry.Converted
	return &c.AccountID, decimal.NewNullDecimal(c.NativeAmount), decimal.NewNullDecimal(c.ExchangeRate), &c.BaseCurrency
}

func (s *LedgerStore) Insert(ctx context.Context, tx Execer, entry models.Entry) error {
	accountID, native, rate, base := currencyColumns(entry)
	var leg *string
	if entry.Leg != nil {
		value := string(*entry.Leg)
		leg = &value
	}
	query := `
		INSERT INTO entries (id, owner_id, kind, account_id, category_id, amount, native_amount,
		                     exchange_rate, base_currency, occurred_on, description, transfer_id, leg)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		entry.ID, entry.OwnerID, string(entry.Kind), accountID, entry.CategoryID, entry.Amount, native,
		rate, base, entry.OccurredOn, entry.Description, entry.TransferID, leg,
	)
	return err
}

func (s *LedgerStore) Update(ctx context.Context, tx Execer, entry models.Entry) error {
	accountID, native, rate, base := currencyColumns(entry)
	_, err := tx.ExecContext(ctx, `
		UPDATE entries
		SET kind = $1, account_id = $2, category_id = $3, amount = $4, native_amount = $5,
		    exchange_rate = $6, base_currency = $7, occurred_on = $8, description = $9, updated_at = NOW()
		WHERE id = $10
	`, string(entry.Kind), accountID, entry.CategoryID, entry.Amount, native,
		rate, base, entry.OccurredOn, entry.Description, entry.ID)
	return err
}

func (s *LedgerStore) ReplaceTags(ctx context.Context, tx Execer, entryID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = $1`, entryID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entry_tags (entry_id, tag_id)
		SELECT $1, unnest($2::text[])
	`, entryID, pq.Array(tagIDs))
	return err
}

func (s *LedgerStore) GetByID(ctx context.Context, entryID string) (models.Entry, error) {
	var row entryRow
	if err := s.db.GetContext(ctx, &row, entrySelect+` WHERE e.id = $1`, entryID); err != nil {
		return models.Entry{}, err
	}
	return row.toModel(), nil
}

func (s *LedgerStore) GetForUpdate(ctx context.Context, tx Getter, entryID string) (models.Entry, error) {
	var row entryRow
	if err := tx.GetContext(ctx, &row, entrySelect+` WHERE e.id = $1 FOR UPDATE OF e`, entryID); err != nil {
		return models.Entry{}, err
	}
	return row.toModel(), nil
}

// Delete removes one entry; its tag links cascade.
func (s *LedgerStore) Delete(ctx context.Context, tx Execer, entryID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *LedgerStore) DeleteByTransfer(ctx context.Context, tx Execer, transferID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE transfer_id = $1`, transferID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *LedgerStore) List(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error) {
	where, args := entryFilterClause(filter)
	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM entries e`+where, args...); err != nil {
		return models.EntryPage{}, err
	}
	query := entrySelect + where + ` ORDER BY e.occurred_on DESC, e.created_at DESC` +
		` LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return models.EntryPage{}, err
	}
	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return models.EntryPage{Entries: entries, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func entryFilterClause(filter models.EntryFilter) (string, []any) {
	clauses := []string{"e.owner_id = $1"}
	args := []any{filter.OwnerID}
	next := func(value any) string {
		args = append(args, value)
		return placeholder(len(args))
	}
	if filter.Kind != nil {
		clauses = append(clauses, "e.kind = "+next(string(*filter.Kind)))
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, "e.category_id = "+next(*filter.CategoryID))
	}
	if filter.AccountID != nil {
		clauses = append(clauses, "e.account_id = "+next(*filter.AccountID))
	}
	if len(filter.TagIDs) > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM entry_tags ft WHERE ft.entry_id = e.id AND ft.tag_id = ANY("+next(pq.Array(filter.TagIDs))+"))")
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "e.occurred_on >= "+next(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "e.occurred_on <= "+next(*filter.DateTo))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *LedgerStore) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(`+signedNative+`), 0)
		FROM entries e
		WHERE e.account_id = $1
	`, accountID)
	return sum, err
}

type AccountTotal struct {
	AccountID string          `db:"account_id"`
	Name      string          `db:"name"`
	Currency  string          `db:"currency"`
	Archived  bool            `db:"archived"`
	Legacy    bool            `db:"legacy"`
	Balance   decimal.Decimal `db:"balance"`
}

// OwnerTotals returns every account balance of the owner in native currency
// plus one legacy row holding the base-currency sum of entries without an
// account. A single statement keeps all rows on one snapshot.
func (s *LedgerStore) OwnerTotals(ctx context.Context, ownerID string) ([]AccountTotal, decimal.Decimal, error) {
	var rows []AccountTotal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.id AS account_id, a.name, a.currency, a.archived, FALSE AS legacy,
		       COALESCE(SUM(`+signedNative+`), 0) AS balance
		FROM accounts a
		LEFT JOIN entries e ON e.account_id = a.id
		WHERE a.owner_id = $1
		GROUP BY a.id, a.name, a.currency, a.archived
		UNION ALL
		SELECT '' AS account_id, '' AS name, '' AS currency, FALSE AS archived, TRUE AS legacy,
		       COALESCE(SUM(CASE WHEN e.kind = 'expense' THEN -e.amount ELSE e.amount END), 0) AS balance
		FROM entries e
		WHERE e.owner_id = $1 AND e.account_id IS NULL
	`, ownerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	legacy := decimal.Zero
	totals := make([]AccountTotal, 0, len(rows))
	for _, row := range rows {
		if row.Legacy {
			legacy = legacy.Add(row.Balance)
			continue
		}
		row.Currency = strings.TrimSpace(row.Currency)
		totals = append(totals, row)
	}
	return totals, legacy, nil
}

// EntryDerivedTotal sums Income/Expense base amounts, ignoring transfers.
func (s *LedgerStore) EntryDerivedTotal(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(CASE e.kind WHEN 'income' THEN e.amount WHEN 'expense' THEN -e.amount ELSE 0 END), 0)
		FROM entries e
		WHERE e.owner_id = $1
	`, ownerID)
	return sum, err
}

type SpendFilter struct {
	OwnerID    string
	CategoryID *string
	TagID      *string
	From       time.Time
	To         time.Time
}

// SumSpending totals Expense base amounts in [From, To] for one category or tag.
func (s *LedgerStore) SumSpending(ctx context.Context, filter SpendFilter) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM entries e
		WHERE e.owner_id = $1 AND e.kind = 'expense' AND e.occurred_on >= $2 AND e.occurred_on <= $3
	`
	args := []any{filter.OwnerID, filter.From, filter.To}
	switch {
	case filter.CategoryID != nil:
		query += ` AND e.category_id = $4`
		args = append(args, *filter.CategoryID)
	case filter.TagID != nil:
		query += ` AND EXISTS (SELECT 1 FROM entry_tags et WHERE et.entry_id = e.id AND et.tag_id = $4)`
		args = append(args, *filter.TagID)
	}
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, query, args...)
	return sum, err
}
