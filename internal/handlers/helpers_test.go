package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/websocket"

	"github.com/shopspring/decimal"
)

type stubAccounts struct {
	createFn func(ctx context.Context, in services.AccountInput) (models.Account, error)
	updateFn func(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error)
	getFn    func(ctx context.Context, ownerID, accountID string) (models.Account, error)
	listFn   func(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error)
	deleteFn func(ctx context.Context, ownerID, accountID string) error
}

func (s stubAccounts) Create(ctx context.Context, in services.AccountInput) (models.Account, error) {
	if s.createFn == nil {
		return models.Account{}, nil
	}
	return s.createFn(ctx, in)
}

func (s stubAccounts) Update(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error) {
	if s.updateFn == nil {
		return models.Account{}, nil
	}
	return s.updateFn(ctx, ownerID, accountID, patch)
}

func (s stubAccounts) Get(ctx context.Context, ownerID, accountID string) (models.Account, error) {
	if s.getFn == nil {
		return models.Account{}, nil
	}
	return s.getFn(ctx, ownerID, accountID)
}

func (s stubAccounts) List(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, ownerID, includeArchived)
}

func (s stubAccounts) Delete(ctx context.Context, ownerID, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, ownerID, accountID)
}

type stubEntries struct {
	createFn func(ctx context.Context, in services.CreateEntryInput) (models.Entry, error)
	updateFn func(ctx context.Context, ownerID, entryID string, patch services.EntryPatch) (models.Entry, error)
	deleteFn func(ctx context.Context, ownerID, entryID string) error
	getFn    func(ctx context.Context, ownerID, entryID string) (models.Entry, error)
	listFn   func(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error)
}

func (s stubEntries) Create(ctx context.Context, in services.CreateEntryInput) (models.Entry, error) {
	if s.createFn == nil {
		return models.Entry{}, nil
	}
	return s.createFn(ctx, in)
}

func (s stubEntries) Update(ctx context.Context, ownerID, entryID string, patch services.EntryPatch) (models.Entry, error) {
	if s.updateFn == nil {
		return models.Entry{}, nil
	}
	return s.updateFn(ctx, ownerID, entryID, patch)
}

func (s stubEntries) Delete(ctx context.Context, ownerID, entryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, ownerID, entryID)
}

func (s stubEntries) Get(ctx context.Context, ownerID, entryID string) (models.Entry, error) {
	if s.getFn == nil {
		return models.Entry{}, nil
	}
	return s.getFn(ctx, ownerID, entryID)
}

func (s stubEntries) List(ctx context.Context, filter models.EntryFilter) (models.EntryPage, error) {
	if s.listFn == nil {
		return models.EntryPage{}, nil
	}
	return s.listFn(ctx, filter)
}

type stubTransfers struct {
	createFn func(ctx context.Context, req services.TransferRequest) (models.TransferPair, error)
	deleteFn func(ctx context.Context, ownerID, legID string) error
}

func (s stubTransfers) CreateTransfer(ctx context.Context, req services.TransferRequest) (models.TransferPair, error) {
	if s.createFn == nil {
		return models.TransferPair{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubTransfers) DeleteTransfer(ctx context.Context, ownerID, legID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, ownerID, legID)
}

type stubBalances struct {
	accountFn   func(ctx context.Context, ownerID, accountID string) (models.AccountBalance, error)
	aggregateFn func(ctx context.Context, ownerID string) (models.AggregateBalance, error)
	convertFn   func(ctx context.Context, ownerID string, amount decimal.Decimal, from, to string) (models.Conversion, error)
	selfCheckFn func(ctx context.Context, ownerID string) (models.SelfCheck, error)
}

func (s stubBalances) AccountBalance(ctx context.Context, ownerID, accountID string) (models.AccountBalance, error) {
	if s.accountFn == nil {
		return models.AccountBalance{}, nil
	}
	return s.accountFn(ctx, ownerID, accountID)
}

func (s stubBalances) AggregateBalance(ctx context.Context, ownerID string) (models.AggregateBalance, error) {
	if s.aggregateFn == nil {
		return models.AggregateBalance{}, nil
	}
	return s.aggregateFn(ctx, ownerID)
}

func (s stubBalances) Convert(ctx context.Context, ownerID string, amount decimal.Decimal, from, to string) (models.Conversion, error) {
	if s.convertFn == nil {
		return models.Conversion{}, nil
	}
	return s.convertFn(ctx, ownerID, amount, from, to)
}

func (s stubBalances) SelfCheck(ctx context.Context, ownerID string) (models.SelfCheck, error) {
	if s.selfCheckFn == nil {
		return models.SelfCheck{}, nil
	}
	return s.selfCheckFn(ctx, ownerID)
}

type stubTemplates struct {
	createFn      func(ctx context.Context, in services.TemplateInput) (models.Template, error)
	materializeFn func(ctx context.Context, ownerID, templateID string, overrides services.Overrides) (models.Entry, error)
	favoriteFn    func(ctx context.Context, ownerID, templateID string, favorite bool) (models.Template, error)
}

func (s stubTemplates) Create(ctx context.Context, in services.TemplateInput) (models.Template, error) {
	if s.createFn == nil {
		return models.Template{}, nil
	}
	return s.createFn(ctx, in)
}

func (s stubTemplates) List(context.Context, string) ([]models.Template, error) {
	return nil, nil
}

func (s stubTemplates) SetFavorite(ctx context.Context, ownerID, templateID string, favorite bool) (models.Template, error) {
	if s.favoriteFn == nil {
		return models.Template{}, nil
	}
	return s.favoriteFn(ctx, ownerID, templateID, favorite)
}

func (s stubTemplates) Delete(context.Context, string, string) error {
	return nil
}

func (s stubTemplates) Materialize(ctx context.Context, ownerID, templateID string, overrides services.Overrides) (models.Entry, error) {
	if s.materializeFn == nil {
		return models.Entry{}, nil
	}
	return s.materializeFn(ctx, ownerID, templateID, overrides)
}

type stubBudgets struct {
	createFn   func(ctx context.Context, in services.BudgetInput) (models.Budget, error)
	progressFn func(ctx context.Context, ownerID, budgetID string) (models.BudgetProgress, error)
	listFn     func(ctx context.Context, ownerID string) ([]models.BudgetProgress, error)
}

func (s stubBudgets) Create(ctx context.Context, in services.BudgetInput) (models.Budget, error) {
	if s.createFn == nil {
		return models.Budget{}, nil
	}
	return s.createFn(ctx, in)
}

func (s stubBudgets) Delete(context.Context, string, string) error {
	return nil
}

func (s stubBudgets) Progress(ctx context.Context, ownerID, budgetID string) (models.BudgetProgress, error) {
	if s.progressFn == nil {
		return models.BudgetProgress{}, nil
	}
	return s.progressFn(ctx, ownerID, budgetID)
}

func (s stubBudgets) ListProgress(ctx context.Context, ownerID string) ([]models.BudgetProgress, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, ownerID)
}

type stubRates struct {
	setFn  func(ctx context.Context, rate models.ExchangeRate) (models.ExchangeRate, error)
	listFn func(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error)
}

func (s stubRates) SetRate(ctx context.Context, rate models.ExchangeRate) (models.ExchangeRate, error) {
	if s.setFn == nil {
		return rate, nil
	}
	return s.setFn(ctx, rate)
}

func (s stubRates) List(ctx context.Context, limit, offset int) ([]models.ExchangeRate, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubProfiles struct {
	setFn func(ctx context.Context, ownerID, code string) (models.Profile, error)
}

func (s stubProfiles) Get(_ context.Context, ownerID string) (models.Profile, error) {
	return models.Profile{OwnerID: ownerID, BaseCurrency: "USD"}, nil
}

func (s stubProfiles) SetBaseCurrency(ctx context.Context, ownerID, code string) (models.Profile, error) {
	if s.setFn == nil {
		return models.Profile{OwnerID: ownerID, BaseCurrency: code}, nil
	}
	return s.setFn(ctx, ownerID, code)
}

type stubReferences struct{}

func (stubReferences) CreateCategory(_ context.Context, ownerID, name, color string) (models.Category, error) {
	return models.Category{ID: "cat-1", OwnerID: ownerID, Name: name, Color: color}, nil
}

func (stubReferences) ListCategories(context.Context, string) ([]models.Category, error) {
	return nil, nil
}

func (stubReferences) CreateTag(_ context.Context, ownerID, name string) (models.Tag, error) {
	return models.Tag{ID: "tag-1", OwnerID: ownerID, Name: name}, nil
}

func (stubReferences) ListTags(context.Context, string) ([]models.Tag, error) {
	return nil, nil
}

type stubAudit struct {
	listFn func(ctx context.Context, ownerID string, limit, offset int) ([]map[string]any, error)
}

func (s stubAudit) List(ctx context.Context, ownerID string, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, ownerID, limit, offset)
}

// defaultServices fills every slot so a test only overrides what it exercises.
func defaultServices(svc Services) Services {
	if svc.Accounts == nil {
		svc.Accounts = stubAccounts{}
	}
	if svc.Entries == nil {
		svc.Entries = stubEntries{}
	}
	if svc.Transfers == nil {
		svc.Transfers = stubTransfers{}
	}
	if svc.Balances == nil {
		svc.Balances = stubBalances{}
	}
	if svc.Templates == nil {
		svc.Templates = stubTemplates{}
	}
	if svc.Budgets == nil {
		svc.Budgets = stubBudgets{}
	}
	if svc.Rates == nil {
		svc.Rates = stubRates{}
	}
	if svc.Profiles == nil {
		svc.Profiles = stubProfiles{}
	}
	if svc.References == nil {
		svc.References = stubReferences{}
	}
	if svc.Audit == nil {
		svc.Audit = stubAudit{}
	}
	return svc
}

func newTestHandler(svc Services) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		BaseCurrency:   "USD",
	}
	return New(cfg, nil, defaultServices(svc), websocket.NewHub())
}

// serveWithAuth sends the request through the full router as ownerID.
func serveWithAuth(t *testing.T, handler *Handler, method, target, body, ownerID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", ownerID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
