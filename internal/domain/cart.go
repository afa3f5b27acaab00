package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart: the product snapshot taken at add
// time plus the selected quantity. A cart holds at most one item per
// product id. Quantity is always >= 1; a transition that would drop it
// to zero or below removes the line instead.
type CartItem struct {
	ID       string
	Product  Product
	Quantity int
	AddedAt  time.Time
}

// CartState is the full cart. TotalItems and TotalPrice are derived from
// Items by ComputeTotals after every transition; they are never stored
// or patched independently.
type CartState struct {
	Items      []CartItem
	TotalItems int
	TotalPrice decimal.Decimal
}

// EmptyCart returns the initial cart state.
func EmptyCart() CartState {
	return newCartState(nil)
}

// Find returns the item for the given product id, if present.
func (s CartState) Find(productID string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Quantity returns the quantity for the given product id, 0 if absent.
func (s CartState) Quantity(productID string) int {
	item, ok := s.Find(productID)
	if !ok {
		return 0
	}
	return item.Quantity
}

// IsEmpty reports whether the cart holds no items.
func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

// ComputeTotals folds the item sequence into its derived totals: the
// integer sum of quantities and the decimal sum of price * quantity.
// An empty sequence yields zeros.
func ComputeTotals(items []CartItem) (int, decimal.Decimal) {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totalPrice = totalPrice.Add(line)
	}
	return totalItems, totalPrice
}

func newCartState(items []CartItem) CartState {
	totalItems, totalPrice := ComputeTotals(items)
	return CartState{
		Items:      items,
		TotalItems: totalItems,
		TotalPrice: totalPrice,
	}
}

func cloneItems(items []CartItem) []CartItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
