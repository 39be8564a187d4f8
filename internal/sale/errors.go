package sale

import "errors"

// Validation failures raised by the engine. Every one of them leaves the
// session exactly as it was before the attempted transition.
var (
	ErrStockExceeded        = errors.New("quantity exceeds available stock")
	ErrInvalidDiscount      = errors.New("discount outside allowed bounds")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrSaleAlreadySettled   = errors.New("sale is already settled")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrItemNotFound         = errors.New("item not in cart")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrProductUnavailable   = errors.New("product is inactive or out of stock")
	ErrBalanceOpen          = errors.New("sale still has a balance to pay")
)

// Level tells the operator how loud a failure should be.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// LevelOf maps an engine error to the level it is surfaced with.
func LevelOf(err error) Level {
	switch {
	case errors.Is(err, ErrStockExceeded), errors.Is(err, ErrProductUnavailable), errors.Is(err, ErrBalanceOpen):
		return LevelWarning
	case errors.Is(err, ErrSaleAlreadySettled), errors.Is(err, ErrEmptyCart):
		return LevelInfo
	default:
		return LevelError
	}
}

// IsValidation reports whether err is one of the engine's own rejections,
// as opposed to an infrastructure failure bubbling up from a collaborator.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrStockExceeded, ErrInvalidDiscount, ErrInvalidPaymentAmount,
		ErrInvalidPaymentMethod, ErrSaleAlreadySettled, ErrEmptyCart,
		ErrItemNotFound, ErrPaymentNotFound, ErrProductUnavailable,
		ErrBalanceOpen,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
