package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/dto"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/service"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/http/response"
)

var errMissingUserID = errors.New("user_id is required")

// CartHandler handles HTTP requests for the cart
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.service.State()))
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	// An omitted quantity means one unit.
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product := dto.ToProduct(req.Product)
	if err := product.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.AddToCart(r.Context(), product, req.Quantity); err != nil {
		if isPolicyRejection(err) {
			response.Error(w, http.StatusConflict, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusCreated, dto.ToCartResponse(h.service.State()))
}

// UpdateItem handles PUT /cart/items/{id}. An id that is not in the
// cart is a no-op, not a 404.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		if isPolicyRejection(err) {
			response.Error(w, http.StatusConflict, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.service.State()))
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.service.RemoveFromCart(r.Context(), id)
	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.service.State()))
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCart(r.Context())
	response.JSON(w, http.StatusOK, dto.ToCartResponse(h.service.State()))
}

// Checkout handles GET /cart/checkout: the order-submission export.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.OrderLines())
}

// SyncCart handles POST /cart/sync: a manual backend sync trigger.
func (h *CartHandler) SyncCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SyncToBackend(r.Context()); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthenticated), errors.Is(err, service.ErrSyncInFlight):
			response.Error(w, http.StatusConflict, err)
		default:
			response.Error(w, http.StatusBadGateway, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

// OpenSession handles POST /session: the authenticated signal.
func (h *CartHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == "" {
		response.Error(w, http.StatusBadRequest, errMissingUserID)
		return
	}

	h.service.SetAuthenticated(r.Context(), req.UserID, true)
	response.JSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

// CloseSession handles DELETE /session
func (h *CartHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.service.SetAuthenticated(r.Context(), "", false)
	response.JSON(w, http.StatusOK, map[string]string{"status": "unauthenticated"})
}

func isPolicyRejection(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrBelowMinimumOrder) ||
		errors.Is(err, domain.ErrAboveMaximumOrder)
}
