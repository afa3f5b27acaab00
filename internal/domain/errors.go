package domain

import "errors"

var (
	ErrInvalidProductID     = errors.New("product id is required")
	ErrInvalidProductPrice  = errors.New("product price must not be negative")
	ErrInvalidStockQuantity = errors.New("product stock quantity must not be negative")
	ErrInvalidOrderBounds   = errors.New("product order quantity bounds are invalid")

	// Policy rejections. The cart state is left unchanged when one of
	// these is returned.
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrBelowMinimumOrder = errors.New("requested quantity is below the minimum order quantity")
	ErrAboveMaximumOrder = errors.New("requested quantity is above the maximum order quantity")
)
