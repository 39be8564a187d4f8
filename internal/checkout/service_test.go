package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-pdv/internal/cache"
	"go-pdv/internal/database"
	"go-pdv/internal/models"
	"go-pdv/internal/sale"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- stubs ---

type stubProducts struct {
	byID map[uint]models.Product
	// searchHook, when set, runs inside Search before it returns.
	searchHook func(term string)
}

func (s *stubProducts) Search(_ context.Context, _ uint, term string) ([]models.Product, error) {
	if s.searchHook != nil {
		s.searchHook(term)
	}
	var out []models.Product
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProducts) FindByCode(_ context.Context, _ uint, code string) (*models.Product, error) {
	for _, p := range s.byID {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *stubProducts) Get(_ context.Context, _ uint, id uint) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

type stubCustomers struct{}

func (stubCustomers) Search(context.Context, uint, string) ([]models.Customer, error) {
	return []models.Customer{{ID: 3, Name: "Maria", Document: "12345678901"}}, nil
}

func (stubCustomers) Get(_ context.Context, _ uint, id uint) (*models.Customer, error) {
	if id != 3 {
		return nil, database.ErrNotFound
	}
	return &models.Customer{ID: 3, Name: "Maria", Document: "12345678901"}, nil
}

type stubSales struct {
	mu        sync.Mutex
	next      int
	conflicts int   // Create fails with a number conflict this many times
	createErr error // returned by Create when set
	created   []*models.Sale
}

func (s *stubSales) NextNumber(context.Context, uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next, nil
}

func (s *stubSales) Create(_ context.Context, rec *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.conflicts > 0 {
		s.conflicts--
		return database.ErrSaleNumberConflict
	}
	s.created = append(s.created, rec)
	return nil
}

type stubCashiers struct {
	open *models.Cashier
	err  error
}

func (s stubCashiers) Current(context.Context, uint, uint) (*models.Cashier, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.open == nil {
		return nil, database.ErrCashierNotOpen
	}
	return s.open, nil
}

// flakyCache fails Save while failSave is set.
type flakyCache struct {
	*cache.MemorySessionCache
	failSave bool
}

func (c *flakyCache) Save(ctx context.Context, key string, s sale.Session) error {
	if c.failSave {
		return errors.New("redis: connection refused")
	}
	return c.MemorySessionCache.Save(ctx, key, s)
}

// --- helpers ---

var (
	rice = models.Product{ID: 1, Code: "789001", Name: "Arroz 5kg", Price: d("100.00"), StockQuantity: d("10"), Unit: "UN", Active: true}
	coke = models.Product{ID: 2, Code: "789002", Name: "Coca-Cola 2L", Price: d("8.99"), StockQuantity: d("3"), Unit: "UN", Active: true}
	gone = models.Product{ID: 3, Code: "789003", Name: "Feijao 1kg", Price: d("7.50"), StockQuantity: d("0"), Unit: "UN", Active: true}
)

var op = Operator{UserID: 7, CompanyID: 1}

type harness struct {
	svc      *Service
	products *stubProducts
	sales    *stubSales
	cache    *flakyCache
}

func newHarness(t *testing.T, cashiers stubCashiers) *harness {
	t.Helper()
	h := &harness{
		products: &stubProducts{byID: map[uint]models.Product{1: rice, 2: coke, 3: gone}},
		sales:    &stubSales{},
		cache:    &flakyCache{MemorySessionCache: cache.NewMemorySessionCache()},
	}
	h.svc = NewService(sale.NewEngine(), h.products, stubCustomers{}, h.sales, cashiers, h.cache,
		Options{Terminal: "PDV-01", FinalizeRetries: 3})
	h.svc.now = func() time.Time { return time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC) }
	return h
}

// settle builds the reference sale: 100.00 with 10% off the line, 5.00 off
// the sale, 50.00 cash and the rest by pix.
func (h *harness) settle(t *testing.T) View {
	t.Helper()
	ctx := context.Background()
	v, err := h.svc.AddProduct(ctx, op, rice.ID)
	require.NoError(t, err)
	row := v.Session.Items[0].ID
	_, err = h.svc.ApplyItemDiscount(ctx, op, row, sale.DiscountPercentage, d("10"))
	require.NoError(t, err)
	_, err = h.svc.ApplySaleDiscount(ctx, op, sale.DiscountFixed, d("5"))
	require.NoError(t, err)
	v, err = h.svc.PayPartial(ctx, op, sale.MethodCash, d("50"))
	require.NoError(t, err)
	assert.True(t, v.Remaining.Equal(d("35")))
	v, err = h.svc.PayFull(ctx, op, sale.MethodPix)
	require.NoError(t, err)
	return v
}

// --- tests ---

func TestCheckoutFlow(t *testing.T) {
	drawer := &models.Cashier{ID: 12, Status: models.CashierOpen}
	h := newHarness(t, stubCashiers{open: drawer})
	ctx := context.Background()

	v := h.settle(t)
	assert.True(t, v.Total.Equal(d("85")))
	assert.Equal(t, sale.StateSettled, v.State)
	assert.True(t, v.CanFinalize)
	assert.True(t, v.ChangeDue.IsZero())

	// survives a reload
	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.True(t, cur.Total.Equal(d("85")))
	assert.Len(t, cur.Session.Payments, 2)

	rec, err := h.svc.Finalize(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Number)
	assert.Equal(t, "PDV-01", rec.Terminal)
	require.NotNil(t, rec.CashierID)
	assert.EqualValues(t, 12, *rec.CashierID)
	assert.True(t, rec.Subtotal.Equal(d("100")))
	assert.True(t, rec.ItemsDiscount.Equal(d("10")))
	assert.True(t, rec.SaleDiscount.Equal(d("5")))
	assert.True(t, rec.TotalAmount.Equal(d("85")))
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "percentage", rec.Items[0].DiscountKind)
	assert.True(t, rec.Items[0].LineTotal.Equal(d("90")))
	require.Len(t, rec.Payments, 2)
	assert.Equal(t, "pix", rec.Payments[1].Method)
	assert.True(t, rec.Payments[1].Amount.Equal(d("35")))
	assert.False(t, rec.Payments[1].Partial)

	cur, err = h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.Empty(t, cur.Session.Items, "finalized session is cleared")
	stored, err := h.cache.Load(ctx, op.key())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestFinalizeRequiresSettledCart(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	_, err := h.svc.Finalize(ctx, op)
	assert.ErrorIs(t, err, sale.ErrEmptyCart)

	_, err = h.svc.AddProduct(ctx, op, rice.ID)
	require.NoError(t, err)
	_, err = h.svc.Finalize(ctx, op)
	assert.ErrorIs(t, err, sale.ErrBalanceOpen)

	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.Len(t, cur.Session.Items, 1)
	assert.Empty(t, h.sales.created)
}

func TestFinalizeWithoutOpenCashier(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	h.settle(t)
	rec, err := h.svc.Finalize(context.Background(), op)
	require.NoError(t, err)
	assert.Nil(t, rec.CashierID)
}

func TestFinalizeCashierLookupFailure(t *testing.T) {
	h := newHarness(t, stubCashiers{err: errors.New("db down")})
	h.settle(t)
	_, err := h.svc.Finalize(context.Background(), op)
	assert.Error(t, err)
	assert.Empty(t, h.sales.created)
}

func TestFinalizeRenumbersOnConflict(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	h.sales.conflicts = 2
	h.settle(t)

	rec, err := h.svc.Finalize(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Number)
	assert.Len(t, h.sales.created, 1)
}

func TestFinalizeGivesUpAfterRetries(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	h.sales.conflicts = 3
	h.settle(t)
	ctx := context.Background()

	_, err := h.svc.Finalize(ctx, op)
	assert.ErrorIs(t, err, database.ErrSaleNumberConflict)

	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.True(t, cur.CanFinalize, "session is kept for another try")

	rec, err := h.svc.Finalize(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Number)
}

func TestFinalizeStockMovedUnderneath(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	h.sales.createErr = fmt.Errorf("%w for Arroz 5kg", database.ErrInsufficientStock)
	h.settle(t)

	_, err := h.svc.Finalize(context.Background(), op)
	assert.ErrorIs(t, err, sale.ErrStockExceeded)
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
	assert.Equal(t, sale.LevelWarning, sale.LevelOf(err))

	cur, err := h.svc.Current(context.Background(), op)
	require.NoError(t, err)
	assert.Len(t, cur.Session.Items, 1)
}

func TestRejectedTransitionKeepsCachedSession(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	v, err := h.svc.AddProduct(ctx, op, coke.ID)
	require.NoError(t, err)
	row := v.Session.Items[0].ID

	_, err = h.svc.ChangeQuantity(ctx, op, row, d("5"))
	assert.ErrorIs(t, err, sale.ErrStockExceeded)

	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.True(t, cur.Session.Items[0].Quantity.Equal(d("1")))
}

func TestCacheFailureKeepsPreviousSession(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	_, err := h.svc.AddProduct(ctx, op, rice.ID)
	require.NoError(t, err)

	h.cache.failSave = true
	_, err = h.svc.AddProduct(ctx, op, coke.ID)
	assert.Error(t, err)
	assert.False(t, sale.IsValidation(err))

	h.cache.failSave = false
	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.Len(t, cur.Session.Items, 1)
}

func TestAddUnknownOrUnavailableProduct(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	_, err := h.svc.AddProduct(ctx, op, 99)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = h.svc.AddByCode(ctx, op, gone.Code)
	assert.ErrorIs(t, err, sale.ErrProductUnavailable)

	v, err := h.svc.AddByCode(ctx, op, coke.Code)
	require.NoError(t, err)
	assert.Equal(t, "Coca-Cola 2L", v.Session.Items[0].Name)
}

func TestRemovingLastItemClearsCache(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	v, err := h.svc.AddProduct(ctx, op, rice.ID)
	require.NoError(t, err)
	_, err = h.svc.PayPartial(ctx, op, sale.MethodCash, d("20"))
	require.NoError(t, err)

	v, err = h.svc.RemoveItem(ctx, op, v.Session.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, v.Session.Payments)

	stored, err := h.cache.Load(ctx, op.key())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCustomerSelection(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	v, err := h.svc.SelectCustomer(ctx, op, 3)
	require.NoError(t, err)
	assert.Equal(t, &sale.Customer{ID: 3, Name: "Maria"}, v.Session.Customer)

	_, err = h.svc.SelectCustomer(ctx, op, 4)
	assert.ErrorIs(t, err, database.ErrNotFound)

	v, err = h.svc.ClearCustomer(ctx, op)
	require.NoError(t, err)
	assert.Nil(t, v.Session.Customer)

	found, err := h.svc.SearchCustomers(ctx, op, "mar")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCancel(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()
	h.settle(t)

	require.NoError(t, h.svc.Cancel(ctx, op))
	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.Empty(t, cur.Session.Items)
	assert.Equal(t, sale.StateSettled, cur.State)
	assert.False(t, cur.CanFinalize)
}

func TestSearchProductsFiltersUnsellable(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	found, err := h.svc.SearchProducts(context.Background(), op, "")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, p := range found {
		assert.NotEqual(t, gone.ID, p.ID)
	}
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	entered := make(chan struct{})
	release := make(chan struct{})
	h.products.searchHook = func(term string) {
		if term == "slow" {
			close(entered)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() {
		_, err := h.svc.SearchProducts(context.Background(), op, "slow")
		errc <- err
	}()
	<-entered

	found, err := h.svc.SearchProducts(context.Background(), op, "fast")
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	close(release)
	assert.ErrorIs(t, <-errc, ErrStaleResult)

	// another operator's searches do not interfere
	other := Operator{UserID: 8, CompanyID: 1}
	_, err = h.svc.SearchProducts(context.Background(), other, "fast")
	assert.NoError(t, err)
}

func TestConcurrentMutationsAreSerialised(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	h.products.byID[1] = models.Product{ID: 1, Code: "789001", Name: "Arroz 5kg", Price: d("1"), StockQuantity: d("100"), Unit: "UN", Active: true}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.AddProduct(ctx, op, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cur, err := h.svc.Current(ctx, op)
	require.NoError(t, err)
	assert.Len(t, cur.Session.Items, 20)
	assert.True(t, cur.Total.Equal(d("20")))
}

func TestKeyedMutexForgetsReleasedKeys(t *testing.T) {
	var k keyedMutex
	unlock := k.lock("a")
	unlock()
	assert.Empty(t, k.locks)
}

func TestSearchGenerationsForgottenWhenSaleEnds(t *testing.T) {
	h := newHarness(t, stubCashiers{})
	ctx := context.Background()

	_, err := h.svc.SearchProducts(ctx, op, "arroz")
	require.NoError(t, err)
	assert.Len(t, h.svc.searches.m, 1)
	require.NoError(t, h.svc.Cancel(ctx, op))
	assert.Empty(t, h.svc.searches.m)

	_, err = h.svc.SearchProducts(ctx, op, "arroz")
	require.NoError(t, err)
	h.settle(t)
	_, err = h.svc.Finalize(ctx, op)
	require.NoError(t, err)
	assert.Empty(t, h.svc.searches.m)
}

func TestGenerationIdsAreNotReused(t *testing.T) {
	var g generations
	first := g.next("a")
	g.forget("a")
	assert.Zero(t, g.current("a"))
	assert.NotEqual(t, first, g.next("a"))
}
