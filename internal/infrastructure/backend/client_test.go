package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/config"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.BackendConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, tracer, logger)
}

func cartItems() []domain.CartItem {
	return []domain.CartItem{
		{
			ID:       "p1",
			Product:  domain.Product{ID: "p1", Price: decimal.NewFromInt(100), StockQuantity: 10},
			Quantity: 2,
			AddedAt:  time.Now(),
		},
		{
			ID:       "p2",
			Product:  domain.Product{ID: "p2", Price: decimal.NewFromInt(50), StockQuantity: 5},
			Quantity: 1,
			AddedAt:  time.Now(),
		},
	}
}

func TestMergeCart(t *testing.T) {
	t.Run("posts the line set with a merge token", func(t *testing.T) {
		var got mergeRequest
		var gotPath, gotAuth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.MergeCart(context.Background(), "user-1", cartItems())

		require.NoError(t, err)
		assert.Equal(t, "/api/cart/merge", gotPath)
		assert.Equal(t, "Bearer test-token", gotAuth)
		assert.Equal(t, "user-1", got.UserID)
		assert.NotEmpty(t, got.MergeToken)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "p1", got.Items[0].ProductID)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("each attempt carries a fresh merge token", func(t *testing.T) {
		var tokens []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req mergeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			tokens = append(tokens, req.MergeToken)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		require.NoError(t, client.MergeCart(context.Background(), "user-1", cartItems()))
		require.NoError(t, client.MergeCart(context.Background(), "user-1", cartItems()))

		require.Len(t, tokens, 2)
		assert.NotEqual(t, tokens[0], tokens[1])
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.MergeCart(context.Background(), "user-1", cartItems())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("unreachable backend is an error", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:0")
		err := client.MergeCart(context.Background(), "user-1", cartItems())
		assert.Error(t, err)
	})
}
