package database

import (
	"context"
	"strings"

	"go-pdv/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Search matches by name or document. An empty term lists the first page.
func (r *CustomerRepository) Search(ctx context.Context, companyID uint, term string) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR document LIKE ?", like, like)
	}
	var customers []models.Customer
	err := q.Order("name").Limit(searchLimit).Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Get(ctx context.Context, companyID, id uint) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}
