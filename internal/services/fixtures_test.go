package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"testing"
	"time"

	"fintrack/internal/currency"
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

// memory is an in-process stand-in for the database. memTxRunner snapshots
// it on begin and restores the snapshot when the callback fails.
type memory struct {
	mu         sync.Mutex
	accounts   map[string]models.Account
	entries    map[string]models.Entry
	transfers  map[string]models.TransferPair
	rates      []models.ExchangeRate
	profiles   map[string]models.Profile
	categories map[string]models.Category
	tags       map[string]models.Tag
	templates  map[string]models.Template
	budgets    map[string]models.Budget
	audit      []string

	faultOp   string
	faultCall int
	calls     int
}

func newMemory() *memory {
	return &memory{
		accounts:   map[string]models.Account{},
		entries:    map[string]models.Entry{},
		transfers:  map[string]models.TransferPair{},
		profiles:   map[string]models.Profile{},
		categories: map[string]models.Category{},
		tags:       map[string]models.Tag{},
		templates:  map[string]models.Template{},
		budgets:    map[string]models.Budget{},
	}
}

func (m *memory) snapshot() *memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memory{
		accounts:   maps.Clone(m.accounts),
		entries:    maps.Clone(m.entries),
		transfers:  maps.Clone(m.transfers),
		rates:      append([]models.ExchangeRate(nil), m.rates...),
		profiles:   maps.Clone(m.profiles),
		categories: maps.Clone(m.categories),
		tags:       maps.Clone(m.tags),
		templates:  maps.Clone(m.templates),
		budgets:    maps.Clone(m.budgets),
		audit:      append([]string(nil), m.audit...),
	}
}

func (m *memory) restore(s *memory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts, m.entries, m.transfers, m.rates = s.accounts, s.entries, s.transfers, s.rates
	m.profiles, m.categories, m.tags = s.profiles, s.categories, s.tags
	m.templates, m.budgets, m.audit = s.templates, s.budgets, s.audit
}

// failOn makes the nth call of op fail with errInjected.
func (m *memory) failOn(op string, call int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faultOp, m.faultCall, m.calls = op, call, 0
}

// fault must be called with mu held.
func (m *memory) fault(op string) error {
	if op != m.faultOp {
		return nil
	}
	m.calls++
	if m.calls == m.faultCall {
		return errInjected
	}
	return nil
}

type memTxRunner struct {
	m *memory
}

func (r memTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	saved := r.m.snapshot()
	if err := fn(nil); err != nil {
		r.m.restore(saved)
		return err
	}
	return nil
}

type memAccounts struct{ m *memory }

func (s memAccounts) Create(_ context.Context, _ store.Execer, account models.Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("accounts.create"); err != nil {
		return err
	}
	s.m.accounts[account.ID] = account
	return nil
}

func (s memAccounts) GetByID(_ context.Context, accountID string) (models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	account, ok := s.m.accounts[accountID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (s memAccounts) GetForUpdate(ctx context.Context, _ store.Getter, accountID string) (models.Account, error) {
	return s.GetByID(ctx, accountID)
}

func (s memAccounts) ListByOwner(_ context.Context, ownerID string, includeArchived bool) ([]models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Account
	for _, account := range s.m.accounts {
		if account.OwnerID == ownerID && (includeArchived || !account.Archived) {
			out = append(out, account)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s memAccounts) Update(_ context.Context, _ store.Execer, account models.Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	current, ok := s.m.accounts[account.ID]
	if !ok {
		return sql.ErrNoRows
	}
	account.Currency = current.Currency
	s.m.accounts[account.ID] = account
	return nil
}

func (s memAccounts) ClearDefault(_ context.Context, _ store.Execer, ownerID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, account := range s.m.accounts {
		if account.OwnerID == ownerID && account.IsDefault {
			account.IsDefault = false
			s.m.accounts[id] = account
		}
	}
	return nil
}

func (s memAccounts) CountEntries(_ context.Context, _ store.Getter, accountID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var count int64
	for _, entry := range s.m.entries {
		if entry.AccountID() == accountID {
			count++
		}
	}
	return count, nil
}

func (s memAccounts) Delete(_ context.Context, _ store.Execer, accountID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.accounts[accountID]; !ok {
		return 0, nil
	}
	delete(s.m.accounts, accountID)
	return 1, nil
}

type memLedger struct{ m *memory }

func (s memLedger) Insert(_ context.Context, _ store.Execer, entry models.Entry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("ledger.insert"); err != nil {
		return err
	}
	if entry.TagIDs == nil {
		entry.TagIDs = []string{}
	}
	s.m.entries[entry.ID] = entry
	return nil
}

func (s memLedger) Update(_ context.Context, _ store.Execer, entry models.Entry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("ledger.update"); err != nil {
		return err
	}
	if _, ok := s.m.entries[entry.ID]; !ok {
		return sql.ErrNoRows
	}
	s.m.entries[entry.ID] = entry
	return nil
}

func (s memLedger) ReplaceTags(_ context.Context, _ store.Execer, entryID string, tagIDs []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("ledger.tags"); err != nil {
		return err
	}
	entry, ok := s.m.entries[entryID]
	if !ok {
		return sql.ErrNoRows
	}
	entry.TagIDs = append([]string{}, tagIDs...)
	s.m.entries[entryID] = entry
	return nil
}

func (s memLedger) GetByID(_ context.Context, entryID string) (models.Entry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	entry, ok := s.m.entries[entryID]
	if !ok {
		return models.Entry{}, sql.ErrNoRows
	}
	return entry, nil
}

func (s memLedger) GetForUpdate(ctx context.Context, _ store.Getter, entryID string) (models.Entry, error) {
	return s.GetByID(ctx, entryID)
}

func (s memLedger) Delete(_ context.Context, _ store.Execer, entryID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.entries[entryID]; !ok {
		return 0, nil
	}
	delete(s.m.entries, entryID)
	return 1, nil
}

func (s memLedger) DeleteByTransfer(_ context.Context, _ store.Execer, transferID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("ledger.delete_transfer"); err != nil {
		return 0, err
	}
	var removed int64
	for id, entry := range s.m.entries {
		if entry.TransferID != nil && *entry.TransferID == transferID {
			delete(s.m.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s memLedger) List(_ context.Context, filter models.EntryFilter) (models.EntryPage, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var matched []models.Entry
	for _, entry := range s.m.entries {
		if entry.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Kind != nil && entry.Kind != *filter.Kind {
			continue
		}
		if filter.AccountID != nil && entry.AccountID() != *filter.AccountID {
			continue
		}
		if filter.CategoryID != nil && (entry.CategoryID == nil || *entry.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.DateFrom != nil && entry.OccurredOn.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && entry.OccurredOn.After(*filter.DateTo) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredOn.Equal(matched[j].OccurredOn) {
			return matched[i].OccurredOn.After(matched[j].OccurredOn)
		}
		return matched[i].ID < matched[j].ID
	})
	page := models.EntryPage{Entries: []models.Entry{}, Total: int64(len(matched)), Limit: filter.Limit, Offset: filter.Offset}
	for i := filter.Offset; i < len(matched) && i < filter.Offset+filter.Limit; i++ {
		page.Entries = append(page.Entries, matched[i])
	}
	return page, nil
}

func signedNative(entry models.Entry) decimal.Decimal {
	if entry.Converted == nil {
		return decimal.Zero
	}
	if entry.Kind == models.KindExpense {
		return entry.Converted.NativeAmount.Neg()
	}
	return entry.Converted.NativeAmount
}

func (s memLedger) AccountBalance(_ context.Context, accountID string) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sum := decimal.Zero
	for _, entry := range s.m.entries {
		if entry.AccountID() == accountID {
			sum = sum.Add(signedNative(entry))
		}
	}
	return sum, nil
}

func (s memLedger) OwnerTotals(_ context.Context, ownerID string) ([]store.AccountTotal, decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var totals []store.AccountTotal
	for _, account := range s.m.accounts {
		if account.OwnerID != ownerID {
			continue
		}
		balance := decimal.Zero
		for _, entry := range s.m.entries {
			if entry.AccountID() == account.ID {
				balance = balance.Add(signedNative(entry))
			}
		}
		totals = append(totals, store.AccountTotal{
			AccountID: account.ID,
			Name:      account.Name,
			Currency:  account.Currency,
			Archived:  account.Archived,
			Balance:   balance,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Name < totals[j].Name })
	legacy := decimal.Zero
	for _, entry := range s.m.entries {
		if entry.OwnerID == ownerID && entry.IsLegacy() {
			legacy = legacy.Add(entry.Amount.Mul(entry.Kind.Sign()))
		}
	}
	return totals, legacy, nil
}

func (s memLedger) EntryDerivedTotal(_ context.Context, ownerID string) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sum := decimal.Zero
	for _, entry := range s.m.entries {
		if entry.OwnerID == ownerID && entry.Kind != models.KindTransfer {
			sum = sum.Add(entry.Amount.Mul(entry.Kind.Sign()))
		}
	}
	return sum, nil
}

func (s memLedger) SumSpending(_ context.Context, filter store.SpendFilter) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sum := decimal.Zero
	for _, entry := range s.m.entries {
		if entry.OwnerID != filter.OwnerID || entry.Kind != models.KindExpense {
			continue
		}
		if entry.OccurredOn.Before(filter.From) || entry.OccurredOn.After(filter.To) {
			continue
		}
		switch {
		case filter.CategoryID != nil:
			if entry.CategoryID == nil || *entry.CategoryID != *filter.CategoryID {
				continue
			}
		case filter.TagID != nil:
			found := false
			for _, id := range entry.TagIDs {
				found = found || id == *filter.TagID
			}
			if !found {
				continue
			}
		}
		sum = sum.Add(entry.Amount)
	}
	return sum, nil
}

type memTransfers struct{ m *memory }

func (s memTransfers) Create(_ context.Context, _ store.Execer, pair models.TransferPair) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.transfers[pair.ID] = models.TransferPair{
		ID:                   pair.ID,
		OwnerID:              pair.OwnerID,
		SourceAccountID:      pair.SourceAccountID,
		DestinationAccountID: pair.DestinationAccountID,
		Rate:                 pair.Rate,
		OccurredOn:           pair.OccurredOn,
	}
	return nil
}

func (s memTransfers) GetForUpdate(_ context.Context, _ store.Getter, transferID string) (models.TransferPair, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	pair, ok := s.m.transfers[transferID]
	if !ok {
		return models.TransferPair{}, sql.ErrNoRows
	}
	return pair, nil
}

func (s memTransfers) Delete(_ context.Context, _ store.Execer, transferID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.transfers[transferID]; !ok {
		return 0, nil
	}
	delete(s.m.transfers, transferID)
	return 1, nil
}

type memRates struct{ m *memory }

func (s memRates) Rate(_ context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var best *models.ExchangeRate
	for i, rate := range s.m.rates {
		if rate.FromCurrency != from || rate.ToCurrency != to || rate.RateDate.After(date) {
			continue
		}
		if best == nil || rate.RateDate.After(best.RateDate) {
			best = &s.m.rates[i]
		}
	}
	if best == nil {
		return decimal.Zero, sql.ErrNoRows
	}
	return best.Rate, nil
}

func (s memRates) SetRate(_ context.Context, _ store.Execer, rate models.ExchangeRate) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for i, existing := range s.m.rates {
		if existing.FromCurrency == rate.FromCurrency && existing.ToCurrency == rate.ToCurrency && existing.RateDate.Equal(rate.RateDate) {
			s.m.rates[i] = rate
			return nil
		}
	}
	s.m.rates = append(s.m.rates, rate)
	return nil
}

func (s memRates) List(_ context.Context, limit, offset int) ([]models.ExchangeRate, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.ExchangeRate
	for i := offset; i < len(s.m.rates) && i < offset+limit; i++ {
		out = append(out, s.m.rates[i])
	}
	return out, nil
}

type memProfiles struct{ m *memory }

func (s memProfiles) Get(_ context.Context, ownerID string) (models.Profile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	profile, ok := s.m.profiles[ownerID]
	if !ok {
		return models.Profile{}, sql.ErrNoRows
	}
	return profile, nil
}

func (s memProfiles) Upsert(_ context.Context, _ store.Execer, profile models.Profile) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.profiles[profile.OwnerID] = profile
	return nil
}

type memCategories struct{ m *memory }

func (s memCategories) Create(_ context.Context, _ store.Execer, category models.Category) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.categories[category.ID] = category
	return nil
}

func (s memCategories) GetByID(_ context.Context, categoryID string) (models.Category, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	category, ok := s.m.categories[categoryID]
	if !ok {
		return models.Category{}, sql.ErrNoRows
	}
	return category, nil
}

func (s memCategories) ListByOwner(_ context.Context, ownerID string) ([]models.Category, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Category
	for _, category := range s.m.categories {
		if category.OwnerID == ownerID {
			out = append(out, category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memTags struct{ m *memory }

func (s memTags) Create(_ context.Context, _ store.Execer, tag models.Tag) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.tags[tag.ID] = tag
	return nil
}

func (s memTags) GetByID(_ context.Context, tagID string) (models.Tag, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	tag, ok := s.m.tags[tagID]
	if !ok {
		return models.Tag{}, sql.ErrNoRows
	}
	return tag, nil
}

func (s memTags) GetMany(_ context.Context, tagIDs []string) ([]models.Tag, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Tag
	for _, id := range tagIDs {
		if tag, ok := s.m.tags[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (s memTags) ListByOwner(_ context.Context, ownerID string) ([]models.Tag, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Tag
	for _, tag := range s.m.tags {
		if tag.OwnerID == ownerID {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memTemplates struct{ m *memory }

func (s memTemplates) Create(_ context.Context, _ store.Execer, template models.Template) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.templates[template.ID] = template
	return nil
}

func (s memTemplates) ReplaceTags(_ context.Context, _ store.Execer, templateID string, tagIDs []string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	template, ok := s.m.templates[templateID]
	if !ok {
		return sql.ErrNoRows
	}
	template.TagIDs = append([]string{}, tagIDs...)
	s.m.templates[templateID] = template
	return nil
}

func (s memTemplates) GetByID(_ context.Context, templateID string) (models.Template, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	template, ok := s.m.templates[templateID]
	if !ok {
		return models.Template{}, sql.ErrNoRows
	}
	return template, nil
}

func (s memTemplates) ListByOwner(_ context.Context, ownerID string) ([]models.Template, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Template
	for _, template := range s.m.templates {
		if template.OwnerID == ownerID {
			out = append(out, template)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s memTemplates) SetFavorite(_ context.Context, _ store.Execer, templateID string, favorite bool) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	template, ok := s.m.templates[templateID]
	if !ok {
		return 0, nil
	}
	template.Favorite = favorite
	s.m.templates[templateID] = template
	return 1, nil
}

func (s memTemplates) Delete(_ context.Context, _ store.Execer, templateID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.templates[templateID]; !ok {
		return 0, nil
	}
	delete(s.m.templates, templateID)
	return 1, nil
}

type memBudgets struct{ m *memory }

func (s memBudgets) Create(_ context.Context, _ store.Execer, budget models.Budget) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.budgets[budget.ID] = budget
	return nil
}

func (s memBudgets) GetByID(_ context.Context, budgetID string) (models.Budget, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	budget, ok := s.m.budgets[budgetID]
	if !ok {
		return models.Budget{}, sql.ErrNoRows
	}
	return budget, nil
}

func (s memBudgets) ListByOwner(_ context.Context, ownerID string) ([]models.Budget, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Budget
	for _, budget := range s.m.budgets {
		if budget.OwnerID == ownerID {
			out = append(out, budget)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Limit.LessThan(out[j].Limit) })
	return out, nil
}

func (s memBudgets) Delete(_ context.Context, _ store.Execer, budgetID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.budgets[budgetID]; !ok {
		return 0, nil
	}
	delete(s.m.budgets, budgetID)
	return 1, nil
}

type memAudit struct{ m *memory }

func (s memAudit) Log(_ context.Context, _ store.Execer, _, action, _, _, _ string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fault("audit.log"); err != nil {
		return err
	}
	s.m.audit = append(s.m.audit, action)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}

const owner = "owner-1"

var fixedNow = time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC)

type world struct {
	t         *testing.T
	mem       *memory
	deps      Deps
	hub       *stubHub
	publisher *recordingPublisher

	accounts  *AccountService
	entries   *EntryService
	transfers *TransferService
	balances  *BalanceService
	templates *TemplateService
	budgets   *BudgetService
	rates     *RateService
	profiles  *ProfileService
	refs      *ReferenceService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	mem := newMemory()
	directory := currency.NewDirectory()
	w := &world{t: t, mem: mem, hub: &stubHub{}, publisher: &recordingPublisher{}}
	w.deps = Deps{
		TxRunner:            memTxRunner{m: mem},
		Accounts:            memAccounts{m: mem},
		Ledger:              memLedger{m: mem},
		Transfers:           memTransfers{m: mem},
		Rates:               memRates{m: mem},
		Profiles:            memProfiles{m: mem},
		Categories:          memCategories{m: mem},
		Tags:                memTags{m: mem},
		Templates:           memTemplates{m: mem},
		Budgets:             memBudgets{m: mem},
		Audit:               memAudit{m: mem},
		Directory:           directory,
		Resolver:            NewResolver(directory, memRates{m: mem}),
		Publisher:           w.publisher,
		Hub:                 w.hub,
		Logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultBaseCurrency: "USD",
		Now:                 func() time.Time { return fixedNow },
	}
	w.accounts = NewAccountService(w.deps)
	w.entries = NewEntryService(w.deps)
	w.transfers = NewTransferService(w.deps)
	w.balances = NewBalanceService(w.deps)
	w.templates = NewTemplateService(w.deps, w.entries)
	w.budgets = NewBudgetService(w.deps)
	w.rates = NewRateService(w.deps)
	w.profiles = NewProfileService(w.deps)
	w.refs = NewReferenceService(w.deps)
	return w
}

func (w *world) account(name, code string) models.Account {
	w.t.Helper()
	account, err := w.accounts.Create(context.Background(), AccountInput{OwnerID: owner, Name: name, Currency: code})
	if err != nil {
		w.t.Fatalf("create account %s: %v", name, err)
	}
	return account
}

func (w *world) category(name string) string {
	w.t.Helper()
	category, err := w.refs.CreateCategory(context.Background(), owner, name, "")
	if err != nil {
		w.t.Fatalf("create category %s: %v", name, err)
	}
	return category.ID
}

func (w *world) tag(name string) string {
	w.t.Helper()
	tag, err := w.refs.CreateTag(context.Background(), owner, name)
	if err != nil {
		w.t.Fatalf("create tag %s: %v", name, err)
	}
	return tag.ID
}

func (w *world) setRate(from, to string, date time.Time, rate string) {
	w.t.Helper()
	if _, err := w.rates.SetRate(context.Background(), models.ExchangeRate{
		FromCurrency: from, ToCurrency: to, RateDate: date, Rate: dec(rate),
	}); err != nil {
		w.t.Fatalf("set rate %s/%s: %v", from, to, err)
	}
}

func (w *world) entry(kind models.Kind, amount string, accountID, categoryID string) models.Entry {
	w.t.Helper()
	in := CreateEntryInput{
		OwnerID:    owner,
		Kind:       kind,
		Amount:     dec(amount),
		CategoryID: &categoryID,
		OccurredOn: fixedNow,
	}
	if accountID != "" {
		in.AccountID = &accountID
	}
	entry, err := w.entries.Create(context.Background(), in)
	if err != nil {
		w.t.Fatalf("create %s %s: %v", kind, amount, err)
	}
	return entry
}

func (w *world) transfer(sourceID, destinationID, amount string) models.TransferPair {
	w.t.Helper()
	pair, err := w.transfers.CreateTransfer(context.Background(), TransferRequest{
		OwnerID:              owner,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               dec(amount),
		OccurredOn:           fixedNow,
	})
	if err != nil {
		w.t.Fatalf("transfer %s: %v", amount, err)
	}
	return pair
}

func (w *world) balance(accountID string) decimal.Decimal {
	w.t.Helper()
	balance, err := w.balances.AccountBalance(context.Background(), owner, accountID)
	if err != nil {
		w.t.Fatalf("balance %s: %v", accountID, err)
	}
	return balance.Balance
}

func (w *world) entryCount() int {
	w.mem.mu.Lock()
	defer w.mem.mu.Unlock()
	return len(w.mem.entries)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("unexpected %s: got %s want %s", label, got, want)
	}
}
