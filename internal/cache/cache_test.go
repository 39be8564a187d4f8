package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"go-pdv/internal/sale"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() sale.Session {
	return sale.Session{
		Items: []sale.LineItem{{
			ID:             "row-1",
			ProductID:      7,
			ProductCode:    "789",
			Name:           "Arroz 5kg",
			UnitPrice:      decimal.RequireFromString("100.00"),
			Quantity:       decimal.RequireFromString("1.5"),
			StockAvailable: decimal.RequireFromString("10"),
			Unit:           "KG",
			Discount:       &sale.Discount{Kind: sale.DiscountPercentage, Amount: decimal.NewFromInt(10)},
		}},
		SaleDiscount: &sale.Discount{Kind: sale.DiscountFixed, Amount: decimal.RequireFromString("5.00")},
		Payments: []sale.Payment{{
			ID: "pay-1", Label: "Dinheiro", Method: sale.MethodCash, Partial: true, Amount: decimal.RequireFromString("50.00"),
		}},
		Customer: &sale.Customer{ID: 3, Name: "Maria"},
	}
}

// exerciseCache runs the contract every SessionCache must honour.
func exerciseCache(t *testing.T, c SessionCache) {
	ctx := context.Background()
	key := Key(1, 2)

	got, err := c.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleSession()
	require.NoError(t, c.Save(ctx, key, want))

	got, err = c.Load(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.Total().Equal(got.Total()))
	assert.True(t, want.TotalPaid().Equal(got.TotalPaid()))
	assert.Equal(t, want.Customer, got.Customer)
	assert.Equal(t, "row-1", got.Items[0].ID)
	assert.Equal(t, sale.DiscountPercentage, got.Items[0].Discount.Kind)

	// last write wins
	want.Customer = nil
	require.NoError(t, c.Save(ctx, key, want))
	got, err = c.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got.Customer)

	// keys are independent
	other, err := c.Load(ctx, Key(1, 3))
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, c.Clear(ctx, key))
	got, err = c.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionCache(t *testing.T) {
	exerciseCache(t, NewMemorySessionCache())
}

func TestMemorySessionCacheDoesNotAlias(t *testing.T) {
	c := NewMemorySessionCache()
	ctx := context.Background()
	s := sampleSession()
	require.NoError(t, c.Save(ctx, "k", s))

	s.Items[0].Name = "changed"
	got, err := c.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Arroz 5kg", got.Items[0].Name)
}

func TestRedisSessionCache(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	rdb, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	exerciseCache(t, NewRedisSessionCache(rdb, time.Minute))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "pdv:session:4:9", Key(4, 9))
}
