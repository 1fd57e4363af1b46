package services

import (
	"context"
	"errors"
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

type TransferService struct {
	txRunner  db.TxRunner
	accounts  AccountStore
	ledger    LedgerStore
	transfers TransferStore
	audit     AuditStore
	directory *currency.Directory
	resolver  *Resolver
	bases     baseCurrencies
	notify    notifier
	now       func() time.Time
}

func NewTransferService(d Deps) *TransferService {
	return &TransferService{
		txRunner:  d.TxRunner,
		accounts:  d.Accounts,
		ledger:    d.Ledger,
		transfers: d.Transfers,
		audit:     d.Audit,
		directory: d.Directory,
		resolver:  d.Resolver,
		bases:     d.baseCurrencies(),
		notify:    d.notifier("transfers"),
		now:       d.clock(),
	}
}

// TransferRequest carries Amount in the source account's currency.
type TransferRequest struct {
	OwnerID              string
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	OccurredOn           time.Time
	Description          string
	ManualRate           *decimal.Decimal
}

func (s *TransferService) CreateTransfer(ctx context.Context, req TransferRequest) (models.TransferPair, error) {
	if !req.Amount.IsPositive() {
		return models.TransferPair{}, ErrInvalidAmount
	}
	if req.SourceAccountID == req.DestinationAccountID {
		return models.TransferPair{}, ErrSameAccountTransfer
	}
	if req.OccurredOn.IsZero() {
		return models.TransferPair{}, ErrDateRequired
	}
	if req.ManualRate != nil && !req.ManualRate.IsPositive() {
		return models.TransferPair{}, ErrInvalidRate
	}
	if err := validator.ValidateDescription(req.Description); err != nil {
		return models.TransferPair{}, err
	}
	var pair models.TransferPair
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.createInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		pair = created
		return nil
	})
	if err != nil {
		return models.TransferPair{}, err
	}
	s.notify.publish(ctx, events.New(events.TransferCreated, req.OwnerID, pair.ID, map[string]string{
		"withdrawal_id": pair.Withdrawal.ID,
		"deposit_id":    pair.Deposit.ID,
		"rate":          pair.Rate.String(),
	}))
	s.notify.pushBalances(ctx, req.OwnerID, pair.SourceAccountID, pair.DestinationAccountID)
	return pair, nil
}

func (s *TransferService) createInTx(ctx context.Context, tx store.Tx, req TransferRequest) (models.TransferPair, error) {
	source, destination, err := lockTwoAccounts(ctx, tx, s.accounts, req.OwnerID, req.SourceAccountID, req.DestinationAccountID)
	if err != nil {
		return models.TransferPair{}, err
	}
	if source.Archived || destination.Archived {
		return models.TransferPair{}, ErrAccountArchived
	}
	fits, err := s.directory.Fits(req.Amount, source.Currency)
	if err != nil {
		return models.TransferPair{}, err
	}
	if !fits {
		return models.TransferPair{}, ErrAmountPrecision
	}
	date := day(req.OccurredOn)
	rate, err := s.resolver.Resolve(ctx, source.Currency, destination.Currency, date, req.ManualRate)
	if err != nil {
		return models.TransferPair{}, err
	}
	received, err := s.directory.Round(req.Amount.Mul(rate), destination.Currency)
	if err != nil {
		return models.TransferPair{}, err
	}
	if !received.IsPositive() {
		return models.TransferPair{}, ErrConvertedToZero
	}
	base, err := s.bases.For(ctx, req.OwnerID)
	if err != nil {
		return models.TransferPair{}, err
	}
	sourceRate, destinationRate, err := s.legRates(ctx, source.Currency, destination.Currency, base, date, rate)
	if err != nil {
		return models.TransferPair{}, err
	}
	withdrawnBase, err := s.directory.Round(req.Amount.Mul(sourceRate), base)
	if err != nil {
		return models.TransferPair{}, err
	}
	receivedBase, err := s.directory.Round(received.Mul(destinationRate), base)
	if err != nil {
		return models.TransferPair{}, err
	}
	if withdrawnBase.IsZero() || receivedBase.IsZero() {
		return models.TransferPair{}, ErrConvertedToZero
	}

	now := s.now().UTC()
	pairID := uuid.NewString()
	withdrawalID, depositID := uuid.NewString(), uuid.NewString()
	withdrawalLeg, depositLeg := models.LegWithdrawal, models.LegDeposit
	withdrawal := models.Entry{
		ID:      withdrawalID,
		OwnerID: req.OwnerID,
		Kind:    models.KindTransfer,
		Amount:  withdrawnBase.Neg(),
		Converted: &models.CurrencyContext{
			AccountID:    source.ID,
			NativeAmount: req.Amount.Neg(),
			ExchangeRate: sourceRate,
			BaseCurrency: base,
		},
		OccurredOn:    date,
		Description:   legDescription(req.Description, "Transfer to "+destination.Name),
		TagIDs:        []string{},
		TransferID:    &pairID,
		Leg:           &withdrawalLeg,
		LinkedEntryID: &depositID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	deposit := models.Entry{
		ID:      depositID,
		OwnerID: req.OwnerID,
		Kind:    models.KindTransfer,
		Amount:  receivedBase,
		Converted: &models.CurrencyContext{
			AccountID:    destination.ID,
			NativeAmount: received,
			ExchangeRate: destinationRate,
			BaseCurrency: base,
		},
		OccurredOn:    date,
		Description:   legDescription(req.Description, "Transfer from "+source.Name),
		TagIDs:        []string{},
		TransferID:    &pairID,
		Leg:           &depositLeg,
		LinkedEntryID: &withdrawalID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	pair := models.TransferPair{
		ID:                   pairID,
		OwnerID:              req.OwnerID,
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Rate:                 rate,
		OccurredOn:           date,
		Withdrawal:           withdrawal,
		Deposit:              deposit,
	}
	if err := ensureBalanced(pair, destination.Currency, s.directory); err != nil {
		return models.TransferPair{}, err
	}
	if err := s.transfers.Create(ctx, tx, pair); err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	if err := s.ledger.Insert(ctx, tx, withdrawal); err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	if err := s.ledger.Insert(ctx, tx, deposit); err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	data := auditData(map[string]string{
		"withdrawal_id": withdrawalID,
		"deposit_id":    depositID,
		"rate":          rate.String(),
	})
	if err := s.audit.Log(ctx, tx, req.OwnerID, "transfer.create", "transfer", pairID, data); err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	return pair, nil
}

// legRates returns each leg's rate to the base currency. When only one side
// has a known rate the other is derived through the transfer rate, so a
// transfer never needs more rates than the one between its two accounts plus
// one to base.
func (s *TransferService) legRates(ctx context.Context, sourceCurrency, destinationCurrency, base string, date time.Time, rate decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	sourceRate, sourceErr := s.resolver.Resolve(ctx, sourceCurrency, base, date, nil)
	if sourceErr != nil && !errors.Is(sourceErr, ErrRateNotFound) {
		return decimal.Zero, decimal.Zero, sourceErr
	}
	destinationRate, destinationErr := s.resolver.Resolve(ctx, destinationCurrency, base, date, nil)
	if destinationErr != nil && !errors.Is(destinationErr, ErrRateNotFound) {
		return decimal.Zero, decimal.Zero, destinationErr
	}
	switch {
	case sourceErr == nil && destinationErr == nil:
		return sourceRate, destinationRate, nil
	case sourceErr == nil:
		return sourceRate, sourceRate.DivRound(rate, reciprocalPlaces), nil
	case destinationErr == nil:
		return rate.Mul(destinationRate).Round(reciprocalPlaces), destinationRate, nil
	}
	return decimal.Zero, decimal.Zero, sourceErr
}

func legDescription(given, fallback string) string {
	if given != "" {
		return given
	}
	return fallback
}

// ensureBalanced checks that the two legs move the same value in opposite
// directions between two different accounts.
func ensureBalanced(pair models.TransferPair, destinationCurrency string, directory *currency.Directory) error {
	w, d := pair.Withdrawal.Converted, pair.Deposit.Converted
	if w == nil || d == nil || w.AccountID == d.AccountID {
		return ErrUnbalancedTransfer
	}
	if !w.NativeAmount.IsNegative() || !d.NativeAmount.IsPositive() {
		return ErrUnbalancedTransfer
	}
	if !pair.Withdrawal.Amount.IsNegative() || !pair.Deposit.Amount.IsPositive() {
		return ErrUnbalancedTransfer
	}
	expected, err := directory.Round(w.NativeAmount.Neg().Mul(pair.Rate), destinationCurrency)
	if err != nil {
		return err
	}
	if !expected.Equal(d.NativeAmount) {
		return ErrUnbalancedTransfer
	}
	return nil
}

// DeleteTransfer removes both legs of the pair that legID belongs to.
func (s *TransferService) DeleteTransfer(ctx context.Context, ownerID, legID string) error {
	var pair models.TransferPair
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		leg, err := s.ledger.GetForUpdate(ctx, tx, legID)
		if err != nil {
			return notFound(err, ErrEntryNotFound)
		}
		if leg.OwnerID != ownerID {
			return ErrForbidden
		}
		if leg.TransferID == nil {
			return ErrNotTransfer
		}
		removed, err := deletePair(ctx, tx, s.ledger, s.transfers, *leg.TransferID)
		if err != nil {
			return err
		}
		pair = removed
		data := auditData(map[string]string{"leg": legID})
		return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "transfer.delete", "transfer", removed.ID, data))
	})
	if err != nil {
		return err
	}
	s.notify.publish(ctx, events.New(events.TransferDeleted, ownerID, pair.ID, nil))
	s.notify.pushBalances(ctx, ownerID, pair.SourceAccountID, pair.DestinationAccountID)
	return nil
}

// deletePair deletes both legs and the pair header inside tx.
func deletePair(ctx context.Context, tx store.Tx, ledger LedgerStore, transfers TransferStore, transferID string) (models.TransferPair, error) {
	pair, err := transfers.GetForUpdate(ctx, tx, transferID)
	if err != nil {
		return models.TransferPair{}, notFound(err, ErrTransferNotFound)
	}
	removed, err := ledger.DeleteByTransfer(ctx, tx, transferID)
	if err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	if removed != 2 {
		return models.TransferPair{}, ErrIncompleteTransfer
	}
	if _, err := transfers.Delete(ctx, tx, transferID); err != nil {
		return models.TransferPair{}, apperr.FromStore(err)
	}
	return pair, nil
}
