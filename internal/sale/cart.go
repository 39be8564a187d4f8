package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AddItem puts one unit of p in the cart. With grouping enabled an existing
// row for the same product is incremented instead.
func (e *Engine) AddItem(s Session, p Product) (Session, error) {
	if !p.Sellable() {
		return s, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Code)
	}

	next := s.clone()
	if e.groupIdentical {
		for i, it := range next.Items {
			if it.ProductID != p.ID {
				continue
			}
			qty := it.Quantity.Add(decimal.NewFromInt(1))
			if s.productQuantity(p.ID, it.ID).Add(qty).GreaterThan(it.StockAvailable) {
				return s, fmt.Errorf("%w: %s has %s %s", ErrStockExceeded, it.Name, it.StockAvailable, it.Unit)
			}
			next.Items[i].Quantity = qty
			return e.reconcile(next), nil
		}
	}

	one := decimal.NewFromInt(1)
	if s.productQuantity(p.ID, "").Add(one).GreaterThan(p.StockAvailable) {
		return s, fmt.Errorf("%w: %s has %s %s", ErrStockExceeded, p.Name, p.StockAvailable, p.Unit)
	}
	next.Items = append(next.Items, LineItem{
		ID:             e.newID(),
		ProductID:      p.ID,
		ProductCode:    p.Code,
		Name:           p.Name,
		UnitPrice:      p.UnitPrice,
		Quantity:       one,
		StockAvailable: p.StockAvailable,
		Unit:           p.Unit,
	})
	return e.reconcile(next), nil
}

// ChangeQuantity moves a row's quantity by delta, never below 1. Rows of the
// same product share its stock.
func (e *Engine) ChangeQuantity(s Session, rowID string, delta decimal.Decimal) (Session, error) {
	i := s.findItem(rowID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrItemNotFound, rowID)
	}
	it := s.Items[i]
	qty := decimal.Max(decimal.NewFromInt(1), it.Quantity.Add(delta))
	if s.productQuantity(it.ProductID, it.ID).Add(qty).GreaterThan(it.StockAvailable) {
		return s, fmt.Errorf("%w: %s has %s %s", ErrStockExceeded, it.Name, it.StockAvailable, it.Unit)
	}

	next := s.clone()
	next.Items[i].Quantity = qty
	return e.reconcile(next), nil
}

// RemoveItem drops a row. Removing the last one resets the settlement and the
// sale discount.
func (e *Engine) RemoveItem(s Session, rowID string) (Session, error) {
	i := s.findItem(rowID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrItemNotFound, rowID)
	}
	next := s.clone()
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	return e.reconcile(next), nil
}

// productQuantity sums the quantity of productID across the cart, leaving out
// the row skip.
func (s Session) productQuantity(productID uint, skip string) decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		if it.ProductID == productID && it.ID != skip {
			total = total.Add(it.Quantity)
		}
	}
	return total
}
