package database

import (
	"context"

	"go-pdv/internal/fiscal"
	"go-pdv/internal/models"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Register creates a company together with its first admin user.
func (r *CompanyRepository) Register(ctx context.Context, c *models.Company, owner *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return duplicate(err)
		}
		if err := seedFiscalConfigs(tx, c.ID); err != nil {
			return err
		}
		owner.CompanyID = c.ID
		return duplicate(tx.Create(owner).Error)
	})
}

func (r *CompanyRepository) Get(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func seedFiscalConfigs(tx *gorm.DB, companyID uint) error {
	d := fiscal.InitialDefaults()
	for _, m := range []fiscal.Model{fiscal.ModelNFe, fiscal.ModelNFCe} {
		cfg := models.FiscalConfig{
			CompanyID:     companyID,
			Model:         int(m),
			Environment:   d.Environment,
			Version:       d.Version,
			Series:        d.Series,
			CurrentNumber: d.CurrentNumber,
		}
		if err := tx.Create(&cfg).Error; err != nil {
			return err
		}
	}
	return nil
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return duplicate(r.db.WithContext(ctx).Create(u).Error)
}
