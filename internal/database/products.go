package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pdv/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const searchLimit = 20

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, companyID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name").
		Find(&products).Error
	return products, err
}

// Search matches active products by name or code, case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, companyID uint, term string) ([]models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like).
		Order("name").
		Limit(searchLimit).
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) FindByCode(ctx context.Context, companyID uint, code string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) Get(ctx context.Context, companyID, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return duplicate(r.db.WithContext(ctx).Create(p).Error)
}

// Update writes the given columns only (partial update).
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, fields map[string]interface{}) error {
	return duplicate(r.db.WithContext(ctx).Model(p).Updates(fields).Error)
}

// Deactivate hides a product from the till. Past sale items keep pointing at it.
func (r *ProductRepository) Deactivate(ctx context.Context, companyID, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveStock applies a manual entry or exit to a product and records it in
// the product's history, both in one transaction. An exit larger than the
// stock on hand fails with ErrInsufficientStock and changes nothing.
func (r *ProductRepository) MoveStock(ctx context.Context, companyID, productID, userID uint, kind string, qty decimal.Decimal, observation string) (*models.StockMovement, error) {
	qty = qty.Round(3)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidStockMove)
	}
	var delta interface{}
	var guard string
	switch kind {
	case models.StockIn:
		delta = gorm.Expr("stock_quantity + ?", qty)
	case models.StockOut:
		delta = gorm.Expr("stock_quantity - ?", qty)
		guard = "stock_quantity >= ?"
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidStockMove, kind)
	}

	m := &models.StockMovement{
		ProductID:   productID,
		CompanyID:   companyID,
		UserID:      userID,
		Type:        kind,
		Quantity:    qty,
		Observation: observation,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Where("company_id = ?", companyID).First(&p, productID).Error; err != nil {
			return notFound(err)
		}

		// 1. Stock first, an exit only where enough is left
		q := tx.Model(&models.Product{}).Where("id = ? AND company_id = ?", productID, companyID)
		if guard != "" {
			q = q.Where(guard, qty)
		}
		res := q.Update("stock_quantity", delta)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s has %s %s", ErrInsufficientStock, p.Name, p.StockQuantity, p.Unit)
		}

		// 2. History row with the resulting stock
		if err := tx.Select("stock_quantity").First(&p, productID).Error; err != nil {
			return err
		}
		m.StockAfter = p.StockQuantity
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// StockMovements lists a product's manual movements, newest first.
func (r *ProductRepository) StockMovements(ctx context.Context, companyID, productID uint) ([]models.StockMovement, error) {
	var out []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND product_id = ?", companyID, productID).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
