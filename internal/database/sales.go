package database

import (
	"context"
	"errors"
	"fmt"

	"go-pdv/internal/models"

	"gorm.io/gorm"
)

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// NextNumber is the next sequential sale number of a company. Two tills can
// read the same value; Create detects that through the unique index.
func (r *SaleRepository) NextNumber(ctx context.Context, companyID uint) (int, error) {
	var row struct{ NextNumber int }
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(MAX(number), 0) + 1 AS next_number").
		Where("company_id = ?", companyID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.NextNumber, nil
}

// Create persists the sale with its items and payments and deducts stock,
// all in one transaction. A taken number yields ErrSaleNumberConflict and
// stock that moved underneath yields ErrInsufficientStock.
func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Header, items and payments (GORM inserts the associations)
		if err := tx.Create(sale).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSaleNumberConflict
			}
			return err
		}

		// 2. Deduct stock only where enough is left
		for _, item := range sale.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND company_id = ? AND stock_quantity >= ?", item.ProductID, sale.CompanyID, item.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, item.Name)
			}
		}
		return nil
	})
}

func (r *SaleRepository) FindByNumber(ctx context.Context, companyID uint, number int) (*models.Sale, error) {
	var s models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("company_id = ? AND number = ?", companyID, number).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
