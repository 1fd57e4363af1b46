package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/db"
	"fintrack/internal/models"
	"fintrack/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReferenceService manages the owner's categories and tags.
type ReferenceService struct {
	txRunner   db.TxRunner
	categories CategoryStore
	tags       TagStore
	now        func() time.Time
}

func NewReferenceService(d Deps) *ReferenceService {
	return &ReferenceService{
		txRunner:   d.TxRunner,
		categories: d.Categories,
		tags:       d.Tags,
		now:        d.clock(),
	}
}

func (s *ReferenceService) CreateCategory(ctx context.Context, ownerID, name, color string) (models.Category, error) {
	name, err := validator.ValidateName(name)
	if err != nil {
		return models.Category{}, err
	}
	if err := validator.ValidateColor(color); err != nil {
		return models.Category{}, err
	}
	category := models.Category{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return apperr.FromStore(s.categories.Create(ctx, tx, category))
	})
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *ReferenceService) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	categories, err := s.categories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return categories, nil
}

func (s *ReferenceService) CreateTag(ctx context.Context, ownerID, name string) (models.Tag, error) {
	name, err := validator.ValidateName(name)
	if err != nil {
		return models.Tag{}, err
	}
	tag := models.Tag{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return apperr.FromStore(s.tags.Create(ctx, tx, tag))
	})
	if err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func (s *ReferenceService) ListTags(ctx context.Context, ownerID string) ([]models.Tag, error) {
	tags, err := s.tags.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return tags, nil
}
