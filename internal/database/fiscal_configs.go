package database

import (
	"context"
	"errors"

	"go-pdv/internal/fiscal"
	"go-pdv/internal/models"

	"gorm.io/gorm"
)

type FiscalConfigRepository struct {
	db *gorm.DB
}

func NewFiscalConfigRepository(db *gorm.DB) *FiscalConfigRepository {
	return &FiscalConfigRepository{db: db}
}

// Get loads the configuration of a model, creating it with the initial
// defaults when the company has none yet.
func (r *FiscalConfigRepository) Get(ctx context.Context, companyID uint, model fiscal.Model) (*models.FiscalConfig, error) {
	d := fiscal.InitialDefaults()
	cfg := models.FiscalConfig{
		CompanyID:     companyID,
		Model:         int(model),
		Environment:   d.Environment,
		Version:       d.Version,
		Series:        d.Series,
		CurrentNumber: d.CurrentNumber,
	}
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND model = ?", companyID, int(model)).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save upserts by (company, model).
func (r *FiscalConfigRepository) Save(ctx context.Context, cfg *models.FiscalConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FiscalConfig
		err := tx.Where("company_id = ? AND model = ?", cfg.CompanyID, cfg.Model).First(&existing).Error
		switch {
		case err == nil:
			cfg.ID = existing.ID
			cfg.CreatedAt = existing.CreatedAt
			return tx.Save(cfg).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			cfg.ID = 0
			return tx.Create(cfg).Error
		default:
			return err
		}
	})
}

// ReserveNumber hands out the current document number and advances the
// counter in the same transaction.
func (r *FiscalConfigRepository) ReserveNumber(ctx context.Context, companyID uint, model fiscal.Model) (*models.FiscalConfig, int, error) {
	if _, err := r.Get(ctx, companyID, model); err != nil {
		return nil, 0, err
	}
	var cfg models.FiscalConfig
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FiscalConfig{}).
			Where("company_id = ? AND model = ?", companyID, int(model)).
			Update("current_number", gorm.Expr("current_number + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("company_id = ? AND model = ?", companyID, int(model)).First(&cfg).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &cfg, cfg.CurrentNumber - 1, nil
}
