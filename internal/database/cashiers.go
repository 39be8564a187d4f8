package database

import (
	"context"
	"errors"
	"time"

	"go-pdv/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashierRepository struct {
	db *gorm.DB
}

func NewCashierRepository(db *gorm.DB) *CashierRepository {
	return &CashierRepository{db: db}
}

// Open starts a drawer for the operator. Only one drawer per operator can be open.
func (r *CashierRepository) Open(ctx context.Context, companyID, userID uint, initial decimal.Decimal) (*models.Cashier, error) {
	if initial.IsNegative() {
		return nil, ErrInvalidMovement
	}
	c := &models.Cashier{
		CompanyID:     companyID,
		UserID:        userID,
		InitialAmount: initial.Round(2),
		Status:        models.CashierOpen,
		OpenedAt:      time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Model(&models.Cashier{}).
			Where("company_id = ? AND user_id = ? AND status = ?", companyID, userID, models.CashierOpen).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrCashierAlreadyOpen
		}
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Current is the operator's open drawer, or ErrCashierNotOpen.
func (r *CashierRepository) Current(ctx context.Context, companyID, userID uint) (*models.Cashier, error) {
	var c models.Cashier
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ? AND status = ?", companyID, userID, models.CashierOpen).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCashierNotOpen
		}
		return nil, err
	}
	return &c, nil
}

func (r *CashierRepository) Get(ctx context.Context, companyID, id uint) (*models.Cashier, error) {
	var c models.Cashier
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Close records the counted amount. Only an open drawer can be closed.
func (r *CashierRepository) Close(ctx context.Context, companyID, id uint, final decimal.Decimal) (*models.Cashier, error) {
	if final.IsNegative() {
		return nil, ErrInvalidMovement
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Cashier{}).
		Where("company_id = ? AND id = ? AND status = ?", companyID, id, models.CashierOpen).
		Updates(map[string]interface{}{
			"status":       models.CashierClosed,
			"final_amount": decimal.NewNullDecimal(final.Round(2)),
			"closed_at":    now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, companyID, id); err != nil {
			return nil, err
		}
		return nil, ErrCashierNotOpen
	}
	return r.Get(ctx, companyID, id)
}

// AddMovement records a supply (stored positive) or a withdrawal (stored
// negative). The amount given is always the positive magnitude.
func (r *CashierRepository) AddMovement(ctx context.Context, companyID, cashierID, userID uint, kind string, amount decimal.Decimal, description string) (*models.CashierMovement, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidMovement
	}
	switch kind {
	case models.MovementSupply:
	case models.MovementWithdraw:
		amount = amount.Neg()
	default:
		return nil, ErrInvalidMovement
	}

	m := &models.CashierMovement{
		CashierID:   cashierID,
		UserID:      userID,
		CompanyID:   companyID,
		Amount:      amount,
		Type:        kind,
		Description: description,
		Timestamp:   time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Cashier
		if err := tx.Where("company_id = ?", companyID).First(&c, cashierID).Error; err != nil {
			return notFound(err)
		}
		if c.Status != models.CashierOpen {
			return ErrCashierNotOpen
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

type CashierSummary struct {
	Cashier        models.Cashier           `json:"cashier"`
	Movements      []models.CashierMovement `json:"movements"`
	MovementsTotal decimal.Decimal          `json:"movements_total"`
	SalesCount     int64                    `json:"sales_count"`
	SalesTotal     decimal.Decimal          `json:"sales_total"`
	CashReceived   decimal.Decimal          `json:"cash_received"`
	ChangeGiven    decimal.Decimal          `json:"change_given"`
	// initial + movements + cash received - change
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	// counted - expected, once closed
	Difference decimal.NullDecimal `json:"difference"`
}

func (r *CashierRepository) Summary(ctx context.Context, companyID, id uint) (*CashierSummary, error) {
	c, err := r.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	sum := &CashierSummary{Cashier: *c}

	// 1. Supplies and withdrawals
	if err := db.Where("cashier_id = ?", id).Order("id").Find(&sum.Movements).Error; err != nil {
		return nil, err
	}
	for _, m := range sum.Movements {
		sum.MovementsTotal = sum.MovementsTotal.Add(m.Amount)
	}

	// 2. Sales rung up on this drawer
	var sales struct {
		Count       int64
		Total       decimal.Decimal
		ChangeTotal decimal.Decimal
	}
	err = db.Model(&models.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total, COALESCE(SUM(change_due), 0) AS change_total").
		Where("cashier_id = ? AND status = ?", id, models.SaleCompleted).
		Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	sum.SalesCount = sales.Count
	sum.SalesTotal = sales.Total.Round(2)
	sum.ChangeGiven = sales.ChangeTotal.Round(2)

	// 3. Cash tendered on those sales
	var cash struct{ Total decimal.Decimal }
	err = db.Table("sale_payments").
		Select("COALESCE(SUM(sale_payments.amount), 0) AS total").
		Joins("JOIN sales ON sales.id = sale_payments.sale_id").
		Where("sales.cashier_id = ? AND sales.status = ? AND sale_payments.method = ?", id, models.SaleCompleted, "cash").
		Scan(&cash).Error
	if err != nil {
		return nil, err
	}
	sum.CashReceived = cash.Total.Round(2)

	sum.ExpectedCash = c.InitialAmount.
		Add(sum.MovementsTotal).
		Add(sum.CashReceived).
		Sub(sum.ChangeGiven).
		Round(2)
	if c.FinalAmount.Valid {
		sum.Difference = decimal.NewNullDecimal(c.FinalAmount.Decimal.Sub(sum.ExpectedCash).Round(2))
	}
	return sum, nil
}
