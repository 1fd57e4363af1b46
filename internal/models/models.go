package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindTransfer Kind = "transfer"
)

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Sign is the direction an Income/Expense amount contributes to a balance.
// Transfer amounts already carry their sign.
func (k Kind) Sign() decimal.Decimal {
	if k == KindExpense {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

type Leg string

const (
	LegWithdrawal Leg = "withdrawal"
	LegDeposit    Leg = "deposit"
)

type Account struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Currency  string    `db:"currency" json:"currency"`
	Color     string    `db:"color" json:"color"`
	Archived  bool      `db:"archived" json:"archived"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CurrencyContext is present on every entry written against an account.
// Legacy entries predating accounts have none and their Amount is already in
// the base currency.
type CurrencyContext struct {
	AccountID    string          `json:"account_id"`
	NativeAmount decimal.Decimal `json:"native_amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseCurrency string          `json:"base_currency"`
}

type Entry struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Kind        Kind             `json:"kind"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Converted   *CurrencyContext `json:"currency_context,omitempty"`
	OccurredOn  time.Time        `json:"occurred_on"`
	Description string           `json:"description"`
	TagIDs      []string         `json:"tag_ids"`
	TransferID  *string          `json:"transfer_id,omitempty"`
	Leg         *Leg             `json:"leg,omitempty"`
	// LinkedEntryID is the counterpart leg, projected from the transfer pair.
	LinkedEntryID *string   `json:"linked_entry_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e Entry) AccountID() string {
	if e.Converted == nil {
		return ""
	}
	return e.Converted.AccountID
}

func (e Entry) IsLegacy() bool {
	return e.Converted == nil
}

// TransferPair is the unit of creation and deletion for transfers.
type TransferPair struct {
	ID                   string          `json:"id"`
	OwnerID              string          `json:"owner_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Rate                 decimal.Decimal `json:"rate"`
	OccurredOn           time.Time       `json:"occurred_on"`
	Withdrawal           Entry           `json:"withdrawal"`
	Deposit              Entry           `json:"deposit"`
}

type EntryFilter struct {
	OwnerID    string
	Kind       *Kind
	CategoryID *string
	AccountID  *string
	TagIDs     []string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

type EntryPage struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type ExchangeRate struct {
	FromCurrency string          `db:"from_currency" json:"from_currency"`
	ToCurrency   string          `db:"to_currency" json:"to_currency"`
	RateDate     time.Time       `db:"rate_date" json:"rate_date"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
}

type Profile struct {
	OwnerID      string    `db:"owner_id" json:"owner_id"`
	BaseCurrency string    `db:"base_currency" json:"base_currency"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Template struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Name        string           `json:"name"`
	Kind        Kind             `json:"kind"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
	AccountID   *string          `json:"account_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	Favorite    bool             `json:"favorite"`
	TagIDs      []string         `json:"tag_ids"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (t Template) IsVariable() bool {
	return t.Amount == nil
}

type Budget struct {
	ID          string          `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	Limit       decimal.Decimal `db:"limit_amount" json:"limit"`
	PeriodStart time.Time       `db:"period_start" json:"period_start"`
	CategoryID  *string         `db:"category_id" json:"category_id,omitempty"`
	TagID       *string         `db:"tag_id" json:"tag_id,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type BudgetProgress struct {
	BudgetID     string          `json:"budget_id"`
	Limit        decimal.Decimal `json:"limit"`
	Spent        decimal.Decimal `json:"spent"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsOverspent  bool            `json:"is_overspent"`
	BaseCurrency string          `json:"base_currency"`
	PeriodStart  time.Time       `json:"period_start"`
}

type Category struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Tag struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type AccountBalance struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Archived  bool            `json:"archived"`
	// Rate and Converted use the rate current at query time. They are nil
	// when no rate to the base currency is known.
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Converted *decimal.Decimal `json:"converted,omitempty"`
}

type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
	AsOf      time.Time       `json:"as_of"`
}

// SelfCheck compares the canonical aggregate with the sum of non-transfer
// base amounts. Drift is expected when foreign-currency rates move.
type SelfCheck struct {
	OwnerID      string          `json:"owner_id"`
	BaseCurrency string          `json:"base_currency"`
	Canonical    decimal.Decimal `json:"canonical"`
	EntryDerived decimal.Decimal `json:"entry_derived"`
	Drift        decimal.Decimal `json:"drift"`
}

type AggregateBalance struct {
	OwnerID      string           `json:"owner_id"`
	Total        decimal.Decimal  `json:"total"`
	BaseCurrency string           `json:"base_currency"`
	Breakdown    []AccountBalance `json:"breakdown"`
	// Unassigned is the base-currency sum of legacy entries without an account.
	Unassigned decimal.Decimal `json:"unassigned"`
	AsOf       time.Time       `json:"as_of"`
}
