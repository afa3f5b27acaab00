package domain

import "time"

// Action is a cart state transition. The set is closed: AddToCart,
// RemoveFromCart, UpdateQuantity, ClearCart, LoadCart.
type Action interface {
	isAction()
}

// AddToCart merges the given quantity into an existing line for the
// product or appends a new line stamped with Now. The caller supplies
// Now so that Apply stays a pure function of (state, action).
type AddToCart struct {
	Product  Product
	Quantity int
	Now      time.Time
}

// RemoveFromCart drops the line for the given product id. Removing an
// absent id is a no-op, not an error.
type RemoveFromCart struct {
	ProductID string
}

// UpdateQuantity sets the line's quantity. A value <= 0 behaves exactly
// as RemoveFromCart for that id, so no line with a non-positive quantity
// can ever persist.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart resets to the empty initial state.
type ClearCart struct{}

// LoadCart replaces the item sequence wholesale. It is used only at
// hydration and overwrites, never merges.
type LoadCart struct {
	Items []CartItem
}

func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (UpdateQuantity) isAction() {}
func (ClearCart) isAction()      {}
func (LoadCart) isAction()       {}

// Apply is the cart reducer: a pure transition from one CartState to the
// next. It never mutates its input; item slices are cloned before any
// modification. Totals are recomputed from the item sequence after every
// transition rather than patched incrementally, so they cannot drift.
//
// Apply enforces no stock or order-bound policy; that is the caller's
// responsibility before dispatch.
func Apply(state CartState, action Action) CartState {
	switch a := action.(type) {
	case AddToCart:
		items := cloneItems(state.Items)
		for i := range items {
			if items[i].ID == a.Product.ID {
				// AddedAt keeps the first insertion time.
				items[i].Quantity += a.Quantity
				return newCartState(items)
			}
		}
		items = append(items, CartItem{
			ID:       a.Product.ID,
			Product:  a.Product,
			Quantity: a.Quantity,
			AddedAt:  a.Now,
		})
		return newCartState(items)

	case RemoveFromCart:
		return removeItem(state, a.ProductID)

	case UpdateQuantity:
		if a.Quantity <= 0 {
			return removeItem(state, a.ProductID)
		}
		items := cloneItems(state.Items)
		for i := range items {
			if items[i].ID == a.ProductID {
				items[i].Quantity = a.Quantity
				return newCartState(items)
			}
		}
		return state

	case ClearCart:
		return EmptyCart()

	case LoadCart:
		return newCartState(cloneItems(a.Items))
	}

	return state
}

func removeItem(state CartState, productID string) CartState {
	found := false
	for _, item := range state.Items {
		if item.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return state
	}

	items := make([]CartItem, 0, len(state.Items)-1)
	for _, item := range state.Items {
		if item.ID != productID {
			items = append(items, item)
		}
	}
	return newCartState(items)
}
