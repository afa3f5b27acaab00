package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
)

// ProductPayload is the catalog snapshot the caller supplies when adding
// an item; the cart stores it verbatim.
type ProductPayload struct {
	ID               string          `json:"id"`
	Price            decimal.Decimal `json:"price"`
	StockQuantity    int             `json:"stock_quantity"`
	MinOrderQuantity int             `json:"min_order_quantity"`
	MaxOrderQuantity *int            `json:"max_order_quantity,omitempty"`
}

// AddItemRequest represents the request to add an item to the cart
type AddItemRequest struct {
	Product  ProductPayload `json:"product"`
	Quantity int            `json:"quantity"`
}

// UpdateItemRequest represents the request to change a line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// OpenSessionRequest marks the session authenticated for the given user
type OpenSessionRequest struct {
	UserID string `json:"user_id"`
}

// CartItemResponse represents one cart line
type CartItemResponse struct {
	ID       string         `json:"id"`
	Product  ProductPayload `json:"product"`
	Quantity int            `json:"quantity"`
	AddedAt  time.Time      `json:"added_at"`
}

// CartResponse represents the full cart state
type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

// OrderLine is the cart's sole export format, consumed by the order
// submission flow. It is recomputed fresh from the items on every call,
// never persisted.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ToProduct converts a ProductPayload to the domain snapshot
func ToProduct(p ProductPayload) domain.Product {
	return domain.Product{
		ID:               p.ID,
		Price:            p.Price,
		StockQuantity:    p.StockQuantity,
		MinOrderQuantity: p.MinOrderQuantity,
		MaxOrderQuantity: p.MaxOrderQuantity,
	}
}

// ToProductPayload converts a domain snapshot to its wire shape
func ToProductPayload(p domain.Product) ProductPayload {
	return ProductPayload{
		ID:               p.ID,
		Price:            p.Price,
		StockQuantity:    p.StockQuantity,
		MinOrderQuantity: p.MinOrderQuantity,
		MaxOrderQuantity: p.MaxOrderQuantity,
	}
}

// ToCartResponse converts a domain CartState to CartResponse
func ToCartResponse(state domain.CartState) *CartResponse {
	items := make([]CartItemResponse, len(state.Items))
	for i, item := range state.Items {
		items[i] = CartItemResponse{
			ID:       item.ID,
			Product:  ToProductPayload(item.Product),
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		}
	}
	return &CartResponse{
		Items:      items,
		TotalItems: state.TotalItems,
		TotalPrice: state.TotalPrice,
	}
}

// ToOrderLines derives the order-submission payload from the items
func ToOrderLines(items []domain.CartItem) []OrderLine {
	lines := make([]OrderLine, len(items))
	for i, item := range items {
		lines[i] = OrderLine{
			ProductID: item.ID,
			Quantity:  item.Quantity,
		}
	}
	return lines
}
