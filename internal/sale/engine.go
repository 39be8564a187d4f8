// Package sale is the sale composition and settlement engine of the till.
//
// A Session is plain data. Every operation on Engine takes the current
// session and returns either the next session or a validation error; the
// input is never modified, so a rejected operation needs no rollback.
package sale

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the equality margin for BRL-style two-decimal money.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// State of the settlement tracker.
type State string

const (
	StateOpen    State = "open"
	StateSettled State = "settled"
)

type Engine struct {
	tolerance      decimal.Decimal
	groupIdentical bool
	newID          func() string
}

type Option func(*Engine)

// WithTolerance overrides the balance tolerance. Non-positive values are ignored.
func WithTolerance(t decimal.Decimal) Option {
	return func(e *Engine) {
		if t.IsPositive() {
			e.tolerance = t
		}
	}
}

// WithGroupIdentical makes AddItem bump an existing row of the same product
// instead of appending a new one.
func WithGroupIdentical(group bool) Option {
	return func(e *Engine) { e.groupIdentical = group }
}

// WithIDGenerator replaces the row/payment id source (uuid by default).
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tolerance: DefaultTolerance,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Tolerance() decimal.Decimal { return e.tolerance }

// State derives the settlement state from the remaining balance.
func (e *Engine) State(s Session) State {
	if s.RemainingBalance().GreaterThan(e.tolerance) {
		return StateOpen
	}
	return StateSettled
}

// CanFinalize is false for an empty cart regardless of payments.
func (e *Engine) CanFinalize(s Session) bool {
	return !s.IsEmpty() && e.State(s) == StateSettled
}

// CheckFinalize tells why a session cannot be finalized yet, or returns nil.
func (e *Engine) CheckFinalize(s Session) error {
	if s.IsEmpty() {
		return ErrEmptyCart
	}
	if e.State(s) != StateSettled {
		return fmt.Errorf("%w: %s remaining", ErrBalanceOpen, s.RemainingBalance())
	}
	return nil
}

// SelectCustomer attaches a customer to the sale, replacing any previous one.
func (e *Engine) SelectCustomer(s Session, c Customer) Session {
	next := s.clone()
	next.Customer = &c
	return next
}

func (e *Engine) ClearCustomer(s Session) Session {
	next := s.clone()
	next.Customer = nil
	return next
}

// reconcile restores cross-component invariants after the cart or a discount
// changed. An empty cart is a hard reset of payments and the sale discount.
// Discounts whose base shrank below them are dropped, and non-cash payments are
// dropped when together they would now exceed the total. Cash payments are kept;
// any excess becomes change.
func (e *Engine) reconcile(s Session) Session {
	if s.IsEmpty() {
		s.Payments = nil
		s.SaleDiscount = nil
		return s
	}
	for i := range s.Items {
		if d := s.Items[i].Discount; d != nil && !itemDiscountFits(*d, s.Items[i].Gross()) {
			s.Items[i].Discount = nil
		}
	}
	if s.SaleDiscount != nil && !e.saleDiscountFits(s, *s.SaleDiscount) {
		s.SaleDiscount = nil
	}
	if s.NonCashPaid().GreaterThan(s.Total().Add(e.tolerance)) {
		var cash []Payment
		for _, p := range s.Payments {
			if p.Method.IsCash() {
				cash = append(cash, p)
			}
		}
		s.Payments = cash
	}
	return s
}
