package store

import (
	"context"
	"time"

	"fintrack/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type TemplateStore struct {
	db DB
}

type templateRow struct {
	ID          string              `db:"id"`
	OwnerID     string              `db:"owner_id"`
	Name        string              `db:"name"`
	Kind        string              `db:"kind"`
	Amount      decimal.NullDecimal `db:"amount"`
	CategoryID  *string             `db:"category_id"`
	AccountID   *string             `db:"account_id"`
	Description *string             `db:"description"`
	Favorite    bool                `db:"favorite"`
	TagIDs      pq.StringArray      `db:"tag_ids"`
	CreatedAt   time.Time           `db:"created_at"`
}

const templateSelect = `
		SELECT t.id, t.owner_id, t.name, t.kind, t.amount, t.category_id, t.account_id,
		       t.description, t.favorite,
		       COALESCE((SELECT array_agg(tt.tag_id ORDER BY tt.tag_id) FROM template_tags tt WHERE tt.template_id = t.id), '{}') AS tag_ids,
		       t.created_at
		FROM templates t
`

func (r templateRow) toModel() models.Template {
	template := models.Template{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Kind:        models.Kind(r.Kind),
		CategoryID:  r.CategoryID,
		AccountID:   r.AccountID,
		Description: r.Description,
		Favorite:    r.Favorite,
		TagIDs:      []string(r.TagIDs),
		CreatedAt:   r.CreatedAt,
	}
	if template.TagIDs == nil {
		template.TagIDs = []string{}
	}
	if r.Amount.Valid {
		amount := r.Amount.Decimal
		template.Amount = &amount
	}
	return template
}

func NewTemplateStore(db DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) Create(ctx context.Context, tx Execer, template models.Template) error {
	var amount decimal.NullDecimal
	if template.Amount != nil {
		amount = decimal.NewNullDecimal(*template.Amount)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO templates (id, owner_id, name, kind, amount, category_id, account_id, description, favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, template.ID, template.OwnerID, template.Name, string(template.Kind), amount,
		template.CategoryID, template.AccountID, template.Description, template.Favorite)
	return err
}

func (s *TemplateStore) ReplaceTags(ctx context.Context, tx Execer, templateID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_tags WHERE template_id = $1`, templateID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO template_tags (template_id, tag_id)
		SELECT $1, unnest($2::text[])
	`, templateID, pq.Array(tagIDs))
	return err
}

func (s *TemplateStore) GetByID(ctx context.Context, templateID string) (models.Template, error) {
	var row templateRow
	if err := s.db.GetContext(ctx, &row, templateSelect+` WHERE t.id = $1`, templateID); err != nil {
		return models.Template{}, err
	}
	return row.toModel(), nil
}

func (s *TemplateStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Template, error) {
	var rows []templateRow
	if err := s.db.SelectContext(ctx, &rows, templateSelect+` WHERE t.owner_id = $1 ORDER BY t.favorite DESC, t.name`, ownerID); err != nil {
		return nil, err
	}
	templates := make([]models.Template, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, row.toModel())
	}
	return templates, nil
}

func (s *TemplateStore) SetFavorite(ctx context.Context, tx Execer, templateID string, favorite bool) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE templates SET favorite = $1 WHERE id = $2`, favorite, templateID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TemplateStore) Delete(ctx context.Context, tx Execer, templateID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, templateID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
