// Package checkout runs the till: it loads an operator's session from the
// cache, applies engine transitions, talks to the product, customer and sale
// stores, and finalizes paid sales with sequential numbering.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pdv/internal/cache"
	"go-pdv/internal/database"
	"go-pdv/internal/models"
	"go-pdv/internal/sale"

	"github.com/shopspring/decimal"
)

// ErrStaleResult marks a product search overtaken by a newer one from the same till.
var ErrStaleResult = errors.New("search superseded by a newer request")

type ProductLookup interface {
	Search(ctx context.Context, companyID uint, term string) ([]models.Product, error)
	FindByCode(ctx context.Context, companyID uint, code string) (*models.Product, error)
	Get(ctx context.Context, companyID, id uint) (*models.Product, error)
}

type CustomerLookup interface {
	Search(ctx context.Context, companyID uint, term string) ([]models.Customer, error)
	Get(ctx context.Context, companyID, id uint) (*models.Customer, error)
}

type SaleStore interface {
	NextNumber(ctx context.Context, companyID uint) (int, error)
	Create(ctx context.Context, s *models.Sale) error
}

type CashierLookup interface {
	Current(ctx context.Context, companyID, userID uint) (*models.Cashier, error)
}

var (
	_ ProductLookup  = (*database.ProductRepository)(nil)
	_ CustomerLookup = (*database.CustomerRepository)(nil)
	_ SaleStore      = (*database.SaleRepository)(nil)
	_ CashierLookup  = (*database.CashierRepository)(nil)
)

// Operator identifies whose session a call works on.
type Operator struct {
	UserID    uint
	CompanyID uint
}

func (o Operator) key() string { return cache.Key(o.UserID, o.CompanyID) }

type Options struct {
	Terminal string
	// Attempts at finalizing when another till took the sale number first.
	FinalizeRetries int
}

type Service struct {
	engine    *sale.Engine
	products  ProductLookup
	customers CustomerLookup
	sales     SaleStore
	cashiers  CashierLookup
	sessions  cache.SessionCache
	opts      Options

	locks    keyedMutex
	searches generations
	now      func() time.Time
}

func NewService(engine *sale.Engine, products ProductLookup, customers CustomerLookup, sales SaleStore, cashiers CashierLookup, sessions cache.SessionCache, opts Options) *Service {
	if opts.FinalizeRetries < 1 {
		opts.FinalizeRetries = 1
	}
	return &Service{
		engine:    engine,
		products:  products,
		customers: customers,
		sales:     sales,
		cashiers:  cashiers,
		sessions:  sessions,
		opts:      opts,
		now:       time.Now,
	}
}

// View is a session plus everything derived from it, as the till shows it.
type View struct {
	Session       sale.Session    `json:"session"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ItemsDiscount decimal.Decimal `json:"items_discount"`
	SaleDiscount  decimal.Decimal `json:"sale_discount"`
	Total         decimal.Decimal `json:"total"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Remaining     decimal.Decimal `json:"remaining"`
	ChangeDue     decimal.Decimal `json:"change_due"`
	State         sale.State      `json:"state"`
	CanFinalize   bool            `json:"can_finalize"`
}

func (s *Service) view(sess sale.Session) View {
	if sess.Items == nil {
		sess.Items = []sale.LineItem{}
	}
	if sess.Payments == nil {
		sess.Payments = []sale.Payment{}
	}
	return View{
		Session:       sess,
		Subtotal:      sess.Subtotal(),
		ItemsDiscount: sess.ItemsDiscountTotal(),
		SaleDiscount:  sess.SaleDiscountValue(),
		Total:         sess.Total(),
		TotalPaid:     sess.TotalPaid(),
		Remaining:     sess.RemainingBalance(),
		ChangeDue:     sess.ChangeDue(),
		State:         s.engine.State(sess),
		CanFinalize:   s.engine.CanFinalize(sess),
	}
}

func (s *Service) load(ctx context.Context, op Operator) (sale.Session, error) {
	cached, err := s.sessions.Load(ctx, op.key())
	if err != nil {
		return sale.Session{}, fmt.Errorf("load session: %w", err)
	}
	if cached == nil {
		return sale.Session{}, nil
	}
	return *cached, nil
}

func (s *Service) store(ctx context.Context, op Operator, sess sale.Session) error {
	if sess.IsBlank() {
		if err := s.sessions.Clear(ctx, op.key()); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if err := s.sessions.Save(ctx, op.key(), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// mutate serialises one transition on the operator's session. On any error
// the cached session is left as it was.
func (s *Service) mutate(ctx context.Context, op Operator, fn func(sale.Session) (sale.Session, error)) (View, error) {
	unlock := s.locks.lock(op.key())
	defer unlock()

	cur, err := s.load(ctx, op)
	if err != nil {
		return View{}, err
	}
	next, err := fn(cur)
	if err != nil {
		return View{}, err
	}
	if err := s.store(ctx, op, next); err != nil {
		return View{}, err
	}
	return s.view(next), nil
}

func (s *Service) Current(ctx context.Context, op Operator) (View, error) {
	cur, err := s.load(ctx, op)
	if err != nil {
		return View{}, err
	}
	return s.view(cur), nil
}

func toSaleProduct(p models.Product) sale.Product {
	return sale.Product{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		UnitPrice:      p.Price,
		StockAvailable: p.StockQuantity,
		Unit:           p.Unit,
		Active:         p.Active,
	}
}

// AddProduct adds one unit of a product picked from the search results.
func (s *Service) AddProduct(ctx context.Context, op Operator, productID uint) (View, error) {
	p, err := s.products.Get(ctx, op.CompanyID, productID)
	if err != nil {
		return View{}, err
	}
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.AddItem(cur, toSaleProduct(*p))
	})
}

// AddByCode adds one unit of the product behind a scanned barcode.
func (s *Service) AddByCode(ctx context.Context, op Operator, code string) (View, error) {
	p, err := s.products.FindByCode(ctx, op.CompanyID, code)
	if err != nil {
		return View{}, err
	}
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.AddItem(cur, toSaleProduct(*p))
	})
}

func (s *Service) ChangeQuantity(ctx context.Context, op Operator, rowID string, delta decimal.Decimal) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ChangeQuantity(cur, rowID, delta)
	})
}

func (s *Service) RemoveItem(ctx context.Context, op Operator, rowID string) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.RemoveItem(cur, rowID)
	})
}

func (s *Service) ApplyItemDiscount(ctx context.Context, op Operator, rowID string, kind sale.DiscountKind, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ApplyItemDiscount(cur, rowID, kind, amount)
	})
}

func (s *Service) RemoveItemDiscount(ctx context.Context, op Operator, rowID string) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.RemoveItemDiscount(cur, rowID)
	})
}

func (s *Service) ApplySaleDiscount(ctx context.Context, op Operator, kind sale.DiscountKind, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ApplySaleDiscount(cur, kind, amount)
	})
}

func (s *Service) RemoveSaleDiscount(ctx context.Context, op Operator) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.RemoveSaleDiscount(cur), nil
	})
}

func (s *Service) PayFull(ctx context.Context, op Operator, m sale.Method) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ApplyFullPayment(cur, m)
	})
}

func (s *Service) PayPartial(ctx context.Context, op Operator, m sale.Method, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ApplyPartialPayment(cur, m, amount)
	})
}

func (s *Service) RemovePayment(ctx context.Context, op Operator, paymentID string) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.RemovePayment(cur, paymentID)
	})
}

// SelectCustomer attaches a registered customer. Only id and name are kept.
func (s *Service) SelectCustomer(ctx context.Context, op Operator, customerID uint) (View, error) {
	c, err := s.customers.Get(ctx, op.CompanyID, customerID)
	if err != nil {
		return View{}, err
	}
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.SelectCustomer(cur, sale.Customer{ID: c.ID, Name: c.Name}), nil
	})
}

func (s *Service) ClearCustomer(ctx context.Context, op Operator) (View, error) {
	return s.mutate(ctx, op, func(cur sale.Session) (sale.Session, error) {
		return s.engine.ClearCustomer(cur), nil
	})
}

// Cancel abandons the sale in progress.
func (s *Service) Cancel(ctx context.Context, op Operator) error {
	unlock := s.locks.lock(op.key())
	defer unlock()
	s.searches.forget(op.key())
	if err := s.sessions.Clear(ctx, op.key()); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SearchProducts returns sellable matches for term. When a newer search from
// the same till started while this one ran, ErrStaleResult is returned and
// the results are dropped.
func (s *Service) SearchProducts(ctx context.Context, op Operator, term string) ([]sale.Product, error) {
	gen := s.searches.next(op.key())
	found, err := s.products.Search(ctx, op.CompanyID, term)
	if err != nil {
		return nil, err
	}
	if s.searches.current(op.key()) != gen {
		return nil, ErrStaleResult
	}

	out := make([]sale.Product, 0, len(found))
	for _, p := range found {
		if sp := toSaleProduct(p); sp.Sellable() {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *Service) SearchCustomers(ctx context.Context, op Operator, term string) ([]models.Customer, error) {
	return s.customers.Search(ctx, op.CompanyID, term)
}
