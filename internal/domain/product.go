package domain

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog read model the cart snapshots at add time.
// The catalog service owns the authoritative copy; the cart keeps only
// the fields its stock and order-bound checks need.
type Product struct {
	ID               string
	Price            decimal.Decimal
	StockQuantity    int
	MinOrderQuantity int
	MaxOrderQuantity *int
}

// Validate performs business validation on the product snapshot
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProductID
	}
	if p.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	if p.StockQuantity < 0 {
		return ErrInvalidStockQuantity
	}
	if p.MinOrderQuantity < 0 {
		return ErrInvalidOrderBounds
	}
	if p.MaxOrderQuantity != nil && *p.MaxOrderQuantity < 1 {
		return ErrInvalidOrderBounds
	}
	return nil
}

// MinOrder returns the minimum order quantity, defaulting to 1 when the
// catalog did not set one.
func (p *Product) MinOrder() int {
	if p.MinOrderQuantity < 1 {
		return 1
	}
	return p.MinOrderQuantity
}
