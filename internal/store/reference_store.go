package store

import (
	"context"

	"fintrack/internal/models"

	"github.com/lib/pq"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, category models.Category) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, color)
		VALUES ($1, $2, $3, $4)
	`, category.ID, category.OwnerID, category.Name, category.Color)
	return err
}

func (s *CategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	var row models.Category
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, color, created_at
		FROM categories
		WHERE id = $1
	`, categoryID)
	return row, err
}

func (s *CategoryStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, color, created_at
		FROM categories
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type TagStore struct {
	db DB
}

func NewTagStore(db DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) Create(ctx context.Context, tx Execer, tag models.Tag) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tags (id, owner_id, name)
		VALUES ($1, $2, $3)
	`, tag.ID, tag.OwnerID, tag.Name)
	return err
}

func (s *TagStore) GetByID(ctx context.Context, tagID string) (models.Tag, error) {
	var row models.Tag
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, created_at
		FROM tags
		WHERE id = $1
	`, tagID)
	return row, err
}

// GetMany returns the tags that exist among tagIDs; missing ids are omitted.
func (s *TagStore) GetMany(ctx context.Context, tagIDs []string) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var rows []models.Tag
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, created_at
		FROM tags
		WHERE id = ANY($1)
	`, pq.Array(tagIDs))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TagStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Tag, error) {
	var rows []models.Tag
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, created_at
		FROM tags
		WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
