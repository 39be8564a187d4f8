package database

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrSaleNumberConflict = errors.New("sale number already taken")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCashierAlreadyOpen = errors.New("operator already has an open cashier")
	ErrCashierNotOpen     = errors.New("cashier is not open")
	ErrInvalidMovement    = errors.New("invalid cashier movement")
	ErrInvalidStockMove   = errors.New("invalid stock movement")
	ErrDuplicate          = errors.New("record already exists")
)
