package store

import (
	"context"

	"fintrack/internal/models"
)

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, ownerID string) (models.Profile, error) {
	var row models.Profile
	err := s.db.GetContext(ctx, &row, `
		SELECT owner_id, base_currency, updated_at
		FROM profiles
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return models.Profile{}, err
	}
	return row, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, tx Execer, profile models.Profile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (owner_id, base_currency)
		VALUES ($1, $2)
		ON CONFLICT (owner_id)
		DO UPDATE SET base_currency = EXCLUDED.base_currency, updated_at = NOW()
	`, profile.OwnerID, profile.BaseCurrency)
	return err
}
