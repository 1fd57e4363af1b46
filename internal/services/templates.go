package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/db"
	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type TemplateService struct {
	txRunner   db.TxRunner
	templates  TemplateStore
	accounts   AccountStore
	categories CategoryStore
	tags       TagStore
	entries    *EntryService
	notify     notifier
	now        func() time.Time
}

func NewTemplateService(d Deps, entries *EntryService) *TemplateService {
	return &TemplateService{
		txRunner:   d.TxRunner,
		templates:  d.Templates,
		accounts:   d.Accounts,
		categories: d.Categories,
		tags:       d.Tags,
		entries:    entries,
		notify:     d.notifier("templates"),
		now:        d.clock(),
	}
}

type TemplateInput struct {
	OwnerID     string
	Name        string
	Kind        models.Kind
	Amount      *decimal.Decimal
	CategoryID  *string
	AccountID   *string
	Description *string
	Favorite    bool
	TagIDs      []string
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (models.Template, error) {
	name, err := validator.ValidateName(in.Name)
	if err != nil {
		return models.Template{}, err
	}
	kind := in.Kind
	if kind == "" {
		kind = models.KindExpense
	}
	if kind != models.KindIncome && kind != models.KindExpense {
		return models.Template{}, ErrInvalidKind
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return models.Template{}, ErrInvalidAmount
	}
	if in.Description != nil {
		if err := validator.ValidateDescription(*in.Description); err != nil {
			return models.Template{}, err
		}
	}
	if in.CategoryID != nil {
		if err := checkCategory(ctx, s.categories, in.OwnerID, *in.CategoryID); err != nil {
			return models.Template{}, err
		}
	}
	if in.AccountID != nil {
		account, err := s.accounts.GetByID(ctx, *in.AccountID)
		if err != nil {
			return models.Template{}, notFound(err, ErrAccountNotFound)
		}
		if account.OwnerID != in.OwnerID {
			return models.Template{}, ErrForeignReference
		}
	}
	tagIDs, err := checkTags(ctx, s.tags, in.OwnerID, in.TagIDs)
	if err != nil {
		return models.Template{}, err
	}
	template := models.Template{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Name:        name,
		Kind:        kind,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		AccountID:   in.AccountID,
		Description: in.Description,
		Favorite:    in.Favorite,
		TagIDs:      tagIDs,
		CreatedAt:   s.now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.templates.Create(ctx, tx, template); err != nil {
			return apperr.FromStore(err)
		}
		return apperr.FromStore(s.templates.ReplaceTags(ctx, tx, template.ID, tagIDs))
	})
	if err != nil {
		return models.Template{}, err
	}
	return template, nil
}

func (s *TemplateService) List(ctx context.Context, ownerID string) ([]models.Template, error) {
	templates, err := s.templates.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return templates, nil
}

func (s *TemplateService) owned(ctx context.Context, ownerID, templateID string) (models.Template, error) {
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return models.Template{}, notFound(err, ErrTemplateNotFound)
	}
	if template.OwnerID != ownerID {
		return models.Template{}, ErrForbidden
	}
	return template, nil
}

func (s *TemplateService) SetFavorite(ctx context.Context, ownerID, templateID string, favorite bool) (models.Template, error) {
	template, err := s.owned(ctx, ownerID, templateID)
	if err != nil {
		return models.Template{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.templates.SetFavorite(ctx, tx, templateID, favorite)
		if err != nil {
			return apperr.FromStore(err)
		}
		if rows == 0 {
			return ErrTemplateNotFound
		}
		return nil
	})
	if err != nil {
		return models.Template{}, err
	}
	template.Favorite = favorite
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, ownerID, templateID string) error {
	if _, err := s.owned(ctx, ownerID, templateID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.templates.Delete(ctx, tx, templateID)
		if err != nil {
			return apperr.FromStore(err)
		}
		if rows == 0 {
			return ErrTemplateNotFound
		}
		return nil
	})
}

// Overrides replace template defaults at materialization. Amount only
// applies to variable-price templates; tags and account always come from
// the template.
type Overrides struct {
	Amount      *decimal.Decimal
	OccurredOn  *time.Time
	Description *string
	ManualRate  *decimal.Decimal
}

func (s *TemplateService) Materialize(ctx context.Context, ownerID, templateID string, overrides Overrides) (models.Entry, error) {
	template, err := s.owned(ctx, ownerID, templateID)
	if err != nil {
		return models.Entry{}, err
	}
	if template.CategoryID == nil {
		return models.Entry{}, ErrTemplateNoCategory
	}
	var amount decimal.Decimal
	switch {
	case template.Amount != nil:
		amount = *template.Amount
	case overrides.Amount != nil:
		amount = *overrides.Amount
	default:
		return models.Entry{}, ErrAmountRequired
	}
	occurredOn := s.now()
	if overrides.OccurredOn != nil {
		occurredOn = *overrides.OccurredOn
	}
	description := ""
	if template.Description != nil {
		description = *template.Description
	}
	if overrides.Description != nil {
		description = *overrides.Description
	}
	in := CreateEntryInput{
		OwnerID:     ownerID,
		Kind:        template.Kind,
		Amount:      amount,
		AccountID:   template.AccountID,
		CategoryID:  template.CategoryID,
		OccurredOn:  occurredOn,
		Description: description,
		TagIDs:      template.TagIDs,
		ManualRate:  overrides.ManualRate,
	}
	if err := in.validate(); err != nil {
		return models.Entry{}, err
	}
	var entry models.Entry
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.entries.createInTx(ctx, tx, in, "template.materialize")
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}
	s.notify.publish(ctx, events.New(events.TemplateMaterialized, ownerID, entry.ID, map[string]string{
		"template_id": templateID,
	}))
	s.notify.pushBalances(ctx, ownerID, entry.AccountID())
	return entry, nil
}
