package store

import (
	"context"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

type TransferStore struct {
	db DB
}

type transferRow struct {
	ID                   string          `db:"id"`
	OwnerID              string          `db:"owner_id"`
	SourceAccountID      string          `db:"source_account_id"`
	DestinationAccountID string          `db:"destination_account_id"`
	Rate                 decimal.Decimal `db:"rate"`
	OccurredOn           time.Time       `db:"occurred_on"`
}

func NewTransferStore(db DB) *TransferStore {
	return &TransferStore{db: db}
}

// Create stores the pair header. The legs reference it through transfer_id.
func (s *TransferStore) Create(ctx context.Context, tx Execer, pair models.TransferPair) error {
	query := `
		INSERT INTO transfers (id, owner_id, source_account_id, destination_account_id, rate, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		pair.ID, pair.OwnerID, pair.SourceAccountID, pair.DestinationAccountID, pair.Rate, pair.OccurredOn,
	)
	return err
}

func (s *TransferStore) GetForUpdate(ctx context.Context, tx Getter, transferID string) (models.TransferPair, error) {
	var row transferRow
	err := tx.GetContext(ctx, &row, `
		SELECT id, owner_id, source_account_id, destination_account_id, rate, occurred_on
		FROM transfers
		WHERE id = $1
		FOR UPDATE
	`, transferID)
	if err != nil {
		return models.TransferPair{}, err
	}
	return models.TransferPair{
		ID:                   row.ID,
		OwnerID:              row.OwnerID,
		SourceAccountID:      row.SourceAccountID,
		DestinationAccountID: row.DestinationAccountID,
		Rate:                 row.Rate,
		OccurredOn:           row.OccurredOn,
	}, nil
}

func (s *TransferStore) Delete(ctx context.Context, tx Execer, transferID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transfers WHERE id = $1`, transferID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
