package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const defaultAccountColor = "#607D8B"

type AccountService struct {
	txRunner  db.TxRunner
	accounts  AccountStore
	audit     AuditStore
	directory *currency.Directory
	now       func() time.Time
}

func NewAccountService(d Deps) *AccountService {
	return &AccountService{
		txRunner:  d.TxRunner,
		accounts:  d.Accounts,
		audit:     d.Audit,
		directory: d.Directory,
		now:       d.clock(),
	}
}

type AccountInput struct {
	OwnerID   string
	Name      string
	Currency  string
	Color     string
	IsDefault bool
}

// Create opens an account. The owner's first account becomes the default.
func (s *AccountService) Create(ctx context.Context, in AccountInput) (models.Account, error) {
	name, err := validator.ValidateName(in.Name)
	if err != nil {
		return models.Account{}, err
	}
	color := in.Color
	if color == "" {
		color = defaultAccountColor
	}
	if err := validator.ValidateColor(color); err != nil {
		return models.Account{}, err
	}
	code, err := s.directory.Lookup(in.Currency)
	if err != nil {
		return models.Account{}, err
	}
	account := models.Account{
		ID:        uuid.NewString(),
		OwnerID:   in.OwnerID,
		Name:      name,
		Currency:  code.Code,
		Color:     color,
		IsDefault: in.IsDefault,
		CreatedAt: s.now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.accounts.ListByOwner(ctx, in.OwnerID, true)
		if err != nil {
			return apperr.FromStore(err)
		}
		if len(existing) == 0 {
			account.IsDefault = true
		}
		if account.IsDefault && len(existing) > 0 {
			if err := s.accounts.ClearDefault(ctx, tx, in.OwnerID); err != nil {
				return apperr.FromStore(err)
			}
		}
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return apperr.FromStore(err)
		}
		data := auditData(map[string]string{"currency": account.Currency})
		return apperr.FromStore(s.audit.Log(ctx, tx, in.OwnerID, "account.create", "account", account.ID, data))
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// AccountPatch leaves nil fields unchanged. Currency is only accepted when it
// matches the current one.
type AccountPatch struct {
	Name      *string
	Color     *string
	Currency  *string
	Archived  *bool
	IsDefault *bool
}

func (s *AccountService) Update(ctx context.Context, ownerID, accountID string, patch AccountPatch) (models.Account, error) {
	var updated models.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, ErrAccountNotFound)
		}
		if account.OwnerID != ownerID {
			return ErrForbidden
		}
		if patch.Currency != nil && currency.Normalize(*patch.Currency) != account.Currency {
			return ErrCurrencyImmutable
		}
		if patch.Name != nil {
			name, err := validator.ValidateName(*patch.Name)
			if err != nil {
				return err
			}
			account.Name = name
		}
		if patch.Color != nil {
			if err := validator.ValidateColor(*patch.Color); err != nil {
				return err
			}
			account.Color = *patch.Color
		}
		if patch.Archived != nil {
			account.Archived = *patch.Archived
			if account.Archived {
				account.IsDefault = false
			}
		}
		if patch.IsDefault != nil {
			if *patch.IsDefault && account.Archived {
				return ErrDefaultArchived
			}
			if *patch.IsDefault && !account.IsDefault {
				if err := s.accounts.ClearDefault(ctx, tx, ownerID); err != nil {
					return apperr.FromStore(err)
				}
			}
			account.IsDefault = *patch.IsDefault
		}
		if err := s.accounts.Update(ctx, tx, account); err != nil {
			return apperr.FromStore(err)
		}
		updated = account
		return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "account.update", "account", account.ID, "{}"))
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

func (s *AccountService) Get(ctx context.Context, ownerID, accountID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, notFound(err, ErrAccountNotFound)
	}
	if account.OwnerID != ownerID {
		return models.Account{}, ErrForbidden
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return accounts, nil
}

// Delete removes an account with no entries. Accounts with history are
// archived instead.
func (s *AccountService) Delete(ctx context.Context, ownerID, accountID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, ErrAccountNotFound)
		}
		if account.OwnerID != ownerID {
			return ErrForbidden
		}
		count, err := s.accounts.CountEntries(ctx, tx, accountID)
		if err != nil {
			return apperr.FromStore(err)
		}
		if count > 0 {
			return ErrAccountHasEntries
		}
		rows, err := s.accounts.Delete(ctx, tx, accountID)
		if err != nil {
			return apperr.FromStore(err)
		}
		if rows == 0 {
			return ErrAccountNotFound
		}
		return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "account.delete", "account", accountID, "{}"))
	})
}
