package database

import (
	"context"
	"testing"
	"time"

	"go-pdv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

type fixture struct {
	db      *gorm.DB
	company models.Company
	user    models.User
	coke    models.Product
	rice    models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()
	f := &fixture{db: db}

	f.company = models.Company{Name: "Mercadinho", CNPJ: "12345678000123", UFCode: 27}
	f.user = models.User{Username: "caixa1", PasswordHash: "x", Role: "cashier"}
	require.NoError(t, NewCompanyRepository(db).Register(ctx, &f.company, &f.user))

	products := NewProductRepository(db)
	f.coke = models.Product{CompanyID: f.company.ID, Code: "7891000100103", Name: "Coca-Cola 2L", Price: d("8.99"), CostPrice: d("5.50"), Category: "Bebidas", StockQuantity: d("3"), Unit: "UN", Active: true}
	f.rice = models.Product{CompanyID: f.company.ID, Code: "7896006711117", Name: "Arroz 5kg", Price: d("100.00"), CostPrice: d("70.00"), Category: "Mercearia", StockQuantity: d("10"), Unit: "UN", Active: true}
	require.NoError(t, products.Create(ctx, &f.coke))
	require.NoError(t, products.Create(ctx, &f.rice))
	return f
}

// sale builds a completed sale of qty rice paid in cash.
func (f *fixture) sale(number int, qty string, cashierID *uint) *models.Sale {
	q := d(qty)
	total := f.rice.Price.Mul(q).Round(2)
	return &models.Sale{
		CompanyID:   f.company.ID,
		Number:      number,
		UserID:      f.user.ID,
		CashierID:   cashierID,
		Terminal:    "PDV-TEST",
		Subtotal:    total,
		TotalAmount: total,
		TotalPaid:   total.Add(d("10")),
		ChangeDue:   d("10"),
		Status:      models.SaleCompleted,
		SaleTime:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.SaleItem{{
			ProductID:   f.rice.ID,
			Code:        f.rice.Code,
			Name:        f.rice.Name,
			Unit:        f.rice.Unit,
			Quantity:    q,
			PriceAtSale: f.rice.Price,
			LineTotal:   total,
		}},
		Payments: []models.SalePayment{{Method: "cash", Label: "Dinheiro", Amount: total.Add(d("10"))}},
	}
}

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"", "mysql", "postgres", "sqlite"} {
		_, err := dialectorFor(driver, "dsn")
		assert.NoError(t, err, driver)
	}
	_, err := dialectorFor("oracle", "dsn")
	assert.Error(t, err)

	_, err = Connect("sqlite", "", false)
	assert.Error(t, err)
}

func TestRegisterSeedsFiscalConfigs(t *testing.T) {
	f := newFixture(t)
	assert.NotZero(t, f.company.ID)
	assert.Equal(t, f.company.ID, f.user.CompanyID)

	var count int64
	require.NoError(t, f.db.Model(&models.FiscalConfig{}).Where("company_id = ?", f.company.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	users := NewUserRepository(f.db)
	got, err := users.FindByUsername(context.Background(), "caixa1")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, got.ID)

	_, err = users.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	err = users.Create(context.Background(), &models.User{Username: "caixa1", Role: "cashier"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
