package store

import (
	"context"

	"fintrack/internal/models"
)

type BudgetStore struct {
	db DB
}

const budgetColumns = `id, owner_id, limit_amount, period_start, category_id, tag_id, created_at`

func NewBudgetStore(db DB) *BudgetStore {
	return &BudgetStore{db: db}
}

func (s *BudgetStore) Create(ctx context.Context, tx Execer, budget models.Budget) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (id, owner_id, limit_amount, period_start, category_id, tag_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, budget.ID, budget.OwnerID, budget.Limit, budget.PeriodStart, budget.CategoryID, budget.TagID)
	return err
}

func (s *BudgetStore) GetByID(ctx context.Context, budgetID string) (models.Budget, error) {
	var row models.Budget
	err := s.db.GetContext(ctx, &row, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, budgetID)
	return row, err
}

func (s *BudgetStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Budget, error) {
	var rows []models.Budget
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE owner_id = $1
		ORDER BY period_start DESC, created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BudgetStore) Delete(ctx context.Context, tx Execer, budgetID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, budgetID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
