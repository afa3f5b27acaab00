package memory

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
)

// CartStore is a volatile implementation of domain.CartStore. It is used
// when no cart storage file is configured; the cart then lives only for
// the process lifetime.
type CartStore struct {
	mu     sync.RWMutex
	items  []domain.CartItem
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCartStore creates a new in-memory cart store
func NewCartStore(tracer trace.Tracer, logger *slog.Logger) *CartStore {
	return &CartStore{
		tracer: tracer,
		logger: logger,
	}
}

// Load returns the current item sequence
func (s *CartStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.Load")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)

	span.SetAttributes(attribute.Int("cart.items", len(items)))
	s.logger.DebugContext(ctx, "Cart loaded from memory",
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart loaded")
	return items, nil
}

// Save overwrites the stored item sequence
func (s *CartStore) Save(ctx context.Context, items []domain.CartItem) error {
	ctx, span := s.tracer.Start(ctx, "CartStore.Save")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]domain.CartItem, len(items))
	copy(s.items, items)

	span.SetAttributes(attribute.Int("cart.items", len(items)))
	s.logger.DebugContext(ctx, "Cart saved to memory",
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}
