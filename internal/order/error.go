package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// InsufficientStockError names the product and the shortfall so the
// response can say what could not be fulfilled.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s (requested %d, available %d)",
		e.ProductName, e.Requested, e.Available)
}
