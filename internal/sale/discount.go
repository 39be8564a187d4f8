package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// itemDiscountFits: percentage in [0,100], fixed in [0, gross).
func itemDiscountFits(d Discount, gross decimal.Decimal) bool {
	if d.Amount.IsNegative() {
		return false
	}
	switch d.Kind {
	case DiscountPercentage:
		return d.Amount.LessThanOrEqual(hundred)
	case DiscountFixed:
		return d.Amount.LessThan(gross)
	}
	return false
}

// saleDiscountFits: percentage in [0,100), fixed in [0, subtotal), and the
// resulting total may not go negative once line discounts are taken off.
func (e *Engine) saleDiscountFits(s Session, d Discount) bool {
	if d.Amount.IsNegative() {
		return false
	}
	subtotal := s.Subtotal()
	switch d.Kind {
	case DiscountPercentage:
		if !d.Amount.LessThan(hundred) {
			return false
		}
	case DiscountFixed:
		if !d.Amount.LessThan(subtotal) {
			return false
		}
	default:
		return false
	}
	net := subtotal.Sub(s.ItemsDiscountTotal()).Sub(d.valueOn(subtotal))
	return !net.IsNegative()
}

// ApplyItemDiscount replaces the discount on one row.
func (e *Engine) ApplyItemDiscount(s Session, rowID string, kind DiscountKind, amount decimal.Decimal) (Session, error) {
	i := s.findItem(rowID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrItemNotFound, rowID)
	}
	d := Discount{Kind: kind, Amount: amount}
	if !itemDiscountFits(d, s.Items[i].Gross()) {
		return s, fmt.Errorf("%w: %s %s on line total %s", ErrInvalidDiscount, kind, amount, s.Items[i].Gross())
	}

	next := s.clone()
	next.Items[i].Discount = &d
	if next.SaleDiscount != nil && !e.saleDiscountFits(next, *next.SaleDiscount) {
		return s, fmt.Errorf("%w: sale total would go negative", ErrInvalidDiscount)
	}
	return e.reconcile(next), nil
}

func (e *Engine) RemoveItemDiscount(s Session, rowID string) (Session, error) {
	i := s.findItem(rowID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrItemNotFound, rowID)
	}
	next := s.clone()
	next.Items[i].Discount = nil
	return e.reconcile(next), nil
}

// ApplySaleDiscount replaces the whole-sale discount.
func (e *Engine) ApplySaleDiscount(s Session, kind DiscountKind, amount decimal.Decimal) (Session, error) {
	if s.IsEmpty() {
		return s, ErrEmptyCart
	}
	d := Discount{Kind: kind, Amount: amount}
	if !e.saleDiscountFits(s, d) {
		return s, fmt.Errorf("%w: %s %s on subtotal %s", ErrInvalidDiscount, kind, amount, s.Subtotal())
	}
	next := s.clone()
	next.SaleDiscount = &d
	return e.reconcile(next), nil
}

func (e *Engine) RemoveSaleDiscount(s Session) Session {
	next := s.clone()
	next.SaleDiscount = nil
	return e.reconcile(next)
}
