package store

import (
	"context"

	"fintrack/internal/models"
)

type AccountStore struct {
	db DB
}

const accountColumns = `id, owner_id, name, currency, color, archived, is_default, created_at`

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, account models.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, name, currency, color, archived, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query, account.ID, account.OwnerID, account.Name, account.Currency, account.Color, account.Archived, account.IsDefault)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE owner_id = $1 AND ($2 OR NOT archived)
		ORDER BY is_default DESC, name
	`, ownerID, includeArchived)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update writes the mutable fields. Currency is fixed at creation.
func (s *AccountStore) Update(ctx context.Context, tx Execer, account models.Account) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, color = $2, archived = $3, is_default = $4, updated_at = NOW()
		WHERE id = $5
	`, account.Name, account.Color, account.Archived, account.IsDefault, account.ID)
	return err
}

func (s *AccountStore) ClearDefault(ctx context.Context, tx Execer, ownerID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET is_default = FALSE, updated_at = NOW()
		WHERE owner_id = $1 AND is_default
	`, ownerID)
	return err
}

func (s *AccountStore) CountEntries(ctx context.Context, tx Getter, accountID string) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM entries
		WHERE account_id = $1
	`, accountID)
	return count, err
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
