package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/dto"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/service"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/storage/memory"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewCartStore(tracer, logger)
	svc := service.NewCartService(store, nil, tracer, meter, logger)
	h := NewCartHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/checkout", h.Checkout)
		r.Route("/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Put("/{id}", h.UpdateItem)
			r.Delete("/{id}", h.RemoveItem)
		})
	})
	r.Post("/session", h.OpenSession)
	r.Delete("/session", h.CloseSession)

	return r
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) dto.CartResponse {
	t.Helper()
	var cart dto.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	return cart
}

const addCrackers = `{"product":{"id":"p1","price":100,"stock_quantity":10},"quantity":2}`

func TestAddItemEndpoint(t *testing.T) {
	t.Run("adds an item", func(t *testing.T) {
		router := newTestRouter(t)

		rec := do(t, router, http.MethodPost, "/cart/items", addCrackers)

		require.Equal(t, http.StatusCreated, rec.Code)
		cart := decodeCart(t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.TotalItems)
	})

	t.Run("policy rejection returns 409 and leaves the cart alone", func(t *testing.T) {
		router := newTestRouter(t)

		rec := do(t, router, http.MethodPost, "/cart/items",
			`{"product":{"id":"p1","price":100,"stock_quantity":3},"quantity":5}`)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "rejected")

		rec = do(t, router, http.MethodGet, "/cart", "")
		cart := decodeCart(t, rec)
		assert.Empty(t, cart.Items)
	})

	t.Run("omitted quantity defaults to one unit", func(t *testing.T) {
		router := newTestRouter(t)

		rec := do(t, router, http.MethodPost, "/cart/items",
			`{"product":{"id":"p1","price":100,"stock_quantity":10}}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		cart := decodeCart(t, rec)
		assert.Equal(t, 1, cart.TotalItems)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router := newTestRouter(t)
		rec := do(t, router, http.MethodPost, "/cart/items", "{nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid product snapshot returns 400", func(t *testing.T) {
		router := newTestRouter(t)
		rec := do(t, router, http.MethodPost, "/cart/items",
			`{"product":{"id":"","price":100,"stock_quantity":3},"quantity":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateItemEndpoint(t *testing.T) {
	t.Run("updates the quantity", func(t *testing.T) {
		router := newTestRouter(t)
		do(t, router, http.MethodPost, "/cart/items", addCrackers)

		rec := do(t, router, http.MethodPut, "/cart/items/p1", `{"quantity":7}`)

		require.Equal(t, http.StatusOK, rec.Code)
		cart := decodeCart(t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 7, cart.Items[0].Quantity)
	})

	t.Run("absent id is a no-op, not a 404", func(t *testing.T) {
		router := newTestRouter(t)

		rec := do(t, router, http.MethodPut, "/cart/items/ghost", `{"quantity":3}`)

		require.Equal(t, http.StatusOK, rec.Code)
		cart := decodeCart(t, rec)
		assert.Empty(t, cart.Items)
	})

	t.Run("over-stock update returns 409", func(t *testing.T) {
		router := newTestRouter(t)
		do(t, router, http.MethodPost, "/cart/items", addCrackers)

		rec := do(t, router, http.MethodPut, "/cart/items/p1", `{"quantity":99}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRemoveAndClearEndpoints(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/cart/items", addCrackers)
	do(t, router, http.MethodPost, "/cart/items",
		`{"product":{"id":"p2","price":50,"stock_quantity":5},"quantity":1}`)

	rec := do(t, router, http.MethodDelete, "/cart/items/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ID)

	rec = do(t, router, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, rec)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)
}

func TestCheckoutEndpoint(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/cart/items", addCrackers)
	do(t, router, http.MethodPost, "/cart/items",
		`{"product":{"id":"p2","price":50,"stock_quantity":5},"quantity":1}`)

	rec := do(t, router, http.MethodGet, "/cart/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var lines []dto.OrderLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 2)
	assert.Equal(t, dto.OrderLine{ProductID: "p1", Quantity: 2}, lines[0])
	assert.Equal(t, dto.OrderLine{ProductID: "p2", Quantity: 1}, lines[1])
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("missing user_id returns 400", func(t *testing.T) {
		router := newTestRouter(t)
		rec := do(t, router, http.MethodPost, "/session", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("open and close session", func(t *testing.T) {
		router := newTestRouter(t)

		rec := do(t, router, http.MethodPost, "/session", `{"user_id":"user-1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "authenticated")

		rec = do(t, router, http.MethodDelete, "/session", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthenticated")
	})
}
