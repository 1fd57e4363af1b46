package services

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProfileService struct {
	txRunner  db.TxRunner
	profiles  ProfileStore
	audit     AuditStore
	directory *currency.Directory
	bases     baseCurrencies
	now       func() time.Time
}

func NewProfileService(d Deps) *ProfileService {
	return &ProfileService{
		txRunner:  d.TxRunner,
		profiles:  d.Profiles,
		audit:     d.Audit,
		directory: d.Directory,
		bases:     d.baseCurrencies(),
		now:       d.clock(),
	}
}

func (s *ProfileService) Get(ctx context.Context, ownerID string) (models.Profile, error) {
	base, err := s.bases.For(ctx, ownerID)
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{OwnerID: ownerID, BaseCurrency: base}, nil
}

// SetBaseCurrency changes the currency used for new conversions. Stored base
// amounts keep the snapshot they were written with.
func (s *ProfileService) SetBaseCurrency(ctx context.Context, ownerID, code string) (models.Profile, error) {
	c, err := s.directory.Lookup(code)
	if err != nil {
		return models.Profile{}, err
	}
	profile := models.Profile{OwnerID: ownerID, BaseCurrency: c.Code, UpdatedAt: s.now().UTC()}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.profiles.Upsert(ctx, tx, profile); err != nil {
			return apperr.FromStore(err)
		}
		data := auditData(map[string]string{"base_currency": profile.BaseCurrency})
		return apperr.FromStore(s.audit.Log(ctx, tx, ownerID, "profile.base_currency", "profile", ownerID, data))
	})
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
