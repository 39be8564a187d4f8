package database

import (
	"context"
	"testing"
	"time"

	"go-pdv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesReports(t *testing.T) {
	f := newFixture(t)
	sales := NewSaleRepository(f.db)
	repo := NewReportRepository(f.db)
	ctx := context.Background()

	require.NoError(t, sales.Create(ctx, f.sale(1, "1", nil)))
	second := f.sale(2, "2", nil)
	second.Payments = []models.SalePayment{{Method: "pix", Label: "PIX", Amount: d("200")}}
	second.TotalPaid = d("200")
	second.ChangeDue = d("0")
	second.SaleTime = time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sales.Create(ctx, second))

	all, err := repo.SalesReport(ctx, f.company.ID, Period{})
	require.NoError(t, err)
	assertDecimal(t, "300", all.TotalRevenue)
	assert.EqualValues(t, 2, all.TotalCount)

	window := Period{
		Start: time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
	}
	part, err := repo.SalesReport(ctx, f.company.ID, window)
	require.NoError(t, err)
	assertDecimal(t, "200", part.TotalRevenue)
	assert.EqualValues(t, 1, part.TotalCount)

	top, err := repo.TopSelling(ctx, f.company.ID, Period{}, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Arroz 5kg", top[0].ProductName)
	assertDecimal(t, "3", top[0].Sold)
	assertDecimal(t, "300", top[0].Revenue)

	methods, err := repo.PaymentBreakdown(ctx, f.company.ID, Period{})
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "cash", methods[0].Method)
	assertDecimal(t, "110", methods[0].Total)
	assert.Equal(t, "pix", methods[1].Method)
	assertDecimal(t, "200", methods[1].Total)

	recent, err := repo.RecentSales(ctx, f.company.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].Number)

	full, err := repo.Sales(ctx, f.company.ID, Period{})
	require.NoError(t, err)
	require.Len(t, full, 2)
	assert.Len(t, full[0].Items, 1)
	assert.Len(t, full[1].Payments, 1)
}

func TestStockValuation(t *testing.T) {
	f := newFixture(t)
	val, err := NewReportRepository(f.db).StockValuation(context.Background(), f.company.ID)
	require.NoError(t, err)

	require.Len(t, val.Categories, 2)
	assert.Equal(t, "Bebidas", val.Categories[0].CategoryName)
	assertDecimal(t, "16.5", val.Categories[0].Subtotal) // 3 x 5.50
	assertDecimal(t, "700", val.Categories[1].Subtotal)  // 10 x 70.00
	assertDecimal(t, "716.5", val.GrandTotal)
}
