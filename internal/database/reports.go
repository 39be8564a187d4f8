package database

import (
	"context"
	"sort"
	"time"

	"go-pdv/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Period is a closed time range. A zero Period means all time.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) apply(q *gorm.DB, column string) *gorm.DB {
	if p.Start.IsZero() && p.End.IsZero() {
		return q
	}
	return q.Where(column+" BETWEEN ? AND ?", p.Start, p.End)
}

// SalesReportResult holds revenue and count of completed sales
type SalesReportResult struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCount   int64           `json:"total_orders"`
}

func (r *ReportRepository) SalesReport(ctx context.Context, companyID uint, p Period) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	q := r.db.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS total_count").
		Where("company_id = ? AND status = ?", companyID, models.SaleCompleted)
	if err := p.apply(q, "sale_time").Scan(&result).Error; err != nil {
		return nil, err
	}
	result.TotalRevenue = result.TotalRevenue.Round(2)
	return &result, nil
}

type TopSeller struct {
	ProductName string          `json:"product_name"`
	Sold        decimal.Decimal `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func (r *ReportRepository) TopSelling(ctx context.Context, companyID uint, p Period, limit int) ([]TopSeller, error) {
	var rows []TopSeller
	q := r.db.WithContext(ctx).Table("sale_items").
		Select("sale_items.name AS product_name, SUM(sale_items.quantity) AS sold, SUM(sale_items.line_total) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.company_id = ? AND sales.status = ?", companyID, models.SaleCompleted)
	err := p.apply(q, "sales.sale_time").
		Group("sale_items.name").
		Order("sold desc").
		Limit(limit).
		Scan(&rows).Error
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

type MethodTotal struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentBreakdown sums tendered amounts per payment method.
func (r *ReportRepository) PaymentBreakdown(ctx context.Context, companyID uint, p Period) ([]MethodTotal, error) {
	var rows []MethodTotal
	q := r.db.WithContext(ctx).Table("sale_payments").
		Select("sale_payments.method AS method, COUNT(*) AS count, SUM(sale_payments.amount) AS total").
		Joins("JOIN sales ON sales.id = sale_payments.sale_id").
		Where("sales.company_id = ? AND sales.status = ?", companyID, models.SaleCompleted)
	err := p.apply(q, "sales.sale_time").
		Group("sale_payments.method").
		Order("method").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}

func (r *ReportRepository) RecentSales(ctx context.Context, companyID uint, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("sale_time desc").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

// Sales loads every completed sale of the period with items and payments.
func (r *ReportRepository) Sales(ctx context.Context, companyID uint, p Period) ([]models.Sale, error) {
	var sales []models.Sale
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("company_id = ? AND status = ?", companyID, models.SaleCompleted)
	err := p.apply(q, "sale_time").Order("number").Find(&sales).Error
	return sales, err
}

// --- STOCK VALUATION ---

// ValuationItem represents a single row of a category table
type ValuationItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is one category with its items (e.g. "DRINKS")
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// StockValuation is the cost value of the physical inventory, grouped by category.
func (r *ReportRepository) StockValuation(ctx context.Context, companyID uint) (*ValuationResponse, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}

	resp := &ValuationResponse{}
	grouped := make(map[string]*CategoryGroup)
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		g, ok := grouped[cat]
		if !ok {
			g = &CategoryGroup{CategoryName: cat, Items: []ValuationItem{}}
			grouped[cat] = g
		}

		total := p.StockQuantity.Mul(p.CostPrice).Round(2)
		g.Items = append(g.Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.StockQuantity,
			CostPrice: p.CostPrice,
			TotalCost: total,
		})
		g.Subtotal = g.Subtotal.Add(total)
		resp.GrandTotal = resp.GrandTotal.Add(total)
	}

	for _, g := range grouped {
		resp.Categories = append(resp.Categories, *g)
	}
	sort.Slice(resp.Categories, func(i, j int) bool {
		return resp.Categories[i].CategoryName < resp.Categories[j].CategoryName
	})
	return resp, nil
}
