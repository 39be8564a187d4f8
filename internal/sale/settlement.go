package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApplyFullPayment settles whatever is left with a single method. A settled
// sale takes no further payments until one of them is removed.
func (e *Engine) ApplyFullPayment(s Session, m Method) (Session, error) {
	if !m.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
	}
	if s.IsEmpty() {
		return s, ErrEmptyCart
	}
	if e.State(s) == StateSettled {
		return s, ErrSaleAlreadySettled
	}

	next := s.clone()
	next.Payments = append(next.Payments, Payment{
		ID:     e.newID(),
		Label:  m.Label(),
		Method: m,
		Amount: s.RemainingBalance(),
	})
	return next, nil
}

// ApplyPartialPayment records part of the balance. Only cash may go above the
// remaining balance; the excess becomes change.
func (e *Engine) ApplyPartialPayment(s Session, m Method, amount decimal.Decimal) (Session, error) {
	if !m.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return s, fmt.Errorf("%w: must be greater than zero", ErrInvalidPaymentAmount)
	}
	if s.IsEmpty() {
		return s, ErrEmptyCart
	}
	if e.State(s) == StateSettled {
		return s, ErrSaleAlreadySettled
	}
	remaining := s.RemainingBalance()
	if !m.IsCash() && amount.GreaterThan(remaining.Add(e.tolerance)) {
		return s, fmt.Errorf("%w: %s exceeds remaining balance %s", ErrInvalidPaymentAmount, amount, remaining)
	}

	next := s.clone()
	next.Payments = append(next.Payments, Payment{
		ID:      e.newID(),
		Label:   m.Label(),
		Method:  m,
		Partial: true,
		Amount:  amount,
	})
	return next, nil
}

func (e *Engine) RemovePayment(s Session, paymentID string) (Session, error) {
	i := s.findPayment(paymentID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	next := s.clone()
	next.Payments = append(next.Payments[:i], next.Payments[i+1:]...)
	return next, nil
}
