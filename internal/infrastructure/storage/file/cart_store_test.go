package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
)

func newTestStore(t *testing.T) (*CartStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.json")
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCartStore(path, tracer, logger), path
}

func sampleItems() []domain.CartItem {
	max := 10
	return []domain.CartItem{
		{
			ID: "p1",
			Product: domain.Product{
				ID:               "p1",
				Price:            decimal.RequireFromString("149.99"),
				StockQuantity:    25,
				MinOrderQuantity: 2,
				MaxOrderQuantity: &max,
			},
			Quantity: 3,
			AddedAt:  time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			ID: "p2",
			Product: domain.Product{
				ID:            "p2",
				Price:         decimal.NewFromInt(50),
				StockQuantity: 5,
			},
			Quantity: 1,
			AddedAt:  time.Date(2026, 4, 2, 9, 31, 0, 0, time.UTC),
		},
	}
}

func TestCartStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	items := sampleItems()

	require.NoError(t, store.Save(ctx, items))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "p1", loaded[0].ID)
	assert.Equal(t, 3, loaded[0].Quantity)
	assert.True(t, loaded[0].AddedAt.Equal(items[0].AddedAt))
	assert.True(t, loaded[0].Product.Price.Equal(items[0].Product.Price))
	assert.Equal(t, 2, loaded[0].Product.MinOrderQuantity)
	require.NotNil(t, loaded[0].Product.MaxOrderQuantity)
	assert.Equal(t, 10, *loaded[0].Product.MaxOrderQuantity)

	assert.Equal(t, "p2", loaded[1].ID)
	assert.Nil(t, loaded[1].Product.MaxOrderQuantity)
}

func TestCartStoreLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file yields an empty sequence", func(t *testing.T) {
		store, _ := newTestStore(t)

		items, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("corrupt data yields an empty sequence without failing", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json at all"), 0o600))

		items, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("wrong shape yields an empty sequence", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, os.WriteFile(path, []byte(`{"items": true}`), 0o600))

		items, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("lines with non-positive quantity are dropped", func(t *testing.T) {
		store, path := newTestStore(t)
		payload := `[
			{"id":"p1","product":{"id":"p1","price":"10","stockQuantity":5},"quantity":0,"addedAt":"2026-04-02T09:30:00Z"},
			{"id":"p2","product":{"id":"p2","price":"20","stockQuantity":5},"quantity":2,"addedAt":"2026-04-02T09:31:00Z"}
		]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

		items, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "p2", items[0].ID)
	})
}

func TestCartStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	items := sampleItems()

	require.NoError(t, store.Save(ctx, items))
	require.NoError(t, store.Save(ctx, items[:1]))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "p1", loaded[0].ID)
}

func TestCartStoreSaveEmpty(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(ctx, sampleItems()))
	require.NoError(t, store.Save(ctx, nil))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
