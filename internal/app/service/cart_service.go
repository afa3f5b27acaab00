package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/app/dto"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
)

var (
	ErrNotAuthenticated = errors.New("cart sync requires an authenticated session")
	ErrSyncInFlight     = errors.New("a cart sync is already in flight")
)

// CartService owns the cart state for the lifetime of the session. It
// wraps the pure reducer with the policy checks and side effects the
// reducer does not perform: stock and order-bound validation before
// dispatch, a persistence write after every successful mutation, and a
// once-per-login-transition backend sync.
//
// It is constructed explicitly at startup and passed to its consumers;
// there is no package-level instance.
type CartService struct {
	store   domain.CartStore
	backend domain.BackendCart
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.Mutex
	state         domain.CartState
	authenticated bool
	userID        string

	syncInFlight atomic.Bool

	itemsAdded metric.Int64Counter
	operations metric.Int64Counter
	syncTotal  metric.Int64Counter
}

// NewCartService creates a new cart service. backend may be nil, in
// which case sync is disabled and login transitions are local-only.
func NewCartService(
	store domain.CartStore,
	backend domain.BackendCart,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartService {
	itemsAdded, _ := meter.Int64Counter(
		"cart.items.added.total",
		metric.WithDescription("Total number of items added to the cart"),
	)

	operations, _ := meter.Int64Counter(
		"cart.operations",
		metric.WithDescription("Total number of cart operations"),
	)

	syncTotal, _ := meter.Int64Counter(
		"cart.sync.total",
		metric.WithDescription("Total number of backend cart sync attempts"),
	)

	return &CartService{
		store:      store,
		backend:    backend,
		tracer:     tracer,
		logger:     logger,
		now:        time.Now,
		state:      domain.EmptyCart(),
		itemsAdded: itemsAdded,
		operations: operations,
		syncTotal:  syncTotal,
	}
}

// Hydrate loads the persisted item sequence into the cart. It is called
// once at startup. A store failure degrades to the empty cart with a
// warning; bad persisted data must never block the application.
func (s *CartService) Hydrate(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CartService.Hydrate")
	defer span.End()

	items, err := s.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Failed to load persisted cart, starting empty",
			slog.String("error", err.Error()),
		)
		items = nil
	}

	s.mu.Lock()
	s.state = domain.Apply(s.state, domain.LoadCart{Items: items})
	count := len(s.state.Items)
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("cart.items", count))
	s.logger.InfoContext(ctx, "Cart hydrated",
		slog.Int("items", count),
	)
}

// AddToCart validates the requested quantity against the product's stock
// and order bounds, then merges it into the cart. On rejection the state
// is left unchanged and a policy error is returned.
func (s *CartService) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "CartService.AddToCart")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.Int("cart.quantity", quantity),
	)

	if err := s.checkAddPolicy(product, quantity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Policy rejection")
		s.logger.WarnContext(ctx, "Add to cart rejected",
			slog.String("product_id", product.ID),
			slog.Int("quantity", quantity),
			slog.String("reason", err.Error()),
		)
		s.operations.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "add"),
				attribute.String("result", "rejected"),
			),
		)
		return err
	}

	s.mu.Lock()
	s.state = domain.Apply(s.state, domain.AddToCart{
		Product:  product,
		Quantity: quantity,
		Now:      s.now(),
	})
	items := s.state.Items
	s.mu.Unlock()

	s.persist(ctx, items)

	s.itemsAdded.Add(ctx, int64(quantity))
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "add"),
			attribute.String("result", "success"),
		),
	)

	s.logger.InfoContext(ctx, "Item added to cart",
		slog.String("product_id", product.ID),
		slog.Int("quantity", quantity),
	)

	span.SetStatus(codes.Ok, "Item added")
	return nil
}

// UpdateQuantity sets the quantity of an existing line. An absent id is
// a no-op. A quantity above the snapshot's stock is rejected; a quantity
// of zero or below removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)

	s.mu.Lock()
	item, ok := s.state.Find(productID)
	if !ok {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Update for product not in cart ignored",
			slog.String("product_id", productID),
		)
		span.SetStatus(codes.Ok, "No such item")
		return nil
	}

	if quantity > item.Product.StockQuantity {
		s.mu.Unlock()
		span.RecordError(domain.ErrInsufficientStock)
		span.SetStatus(codes.Error, "Policy rejection")
		s.logger.WarnContext(ctx, "Quantity update rejected",
			slog.String("product_id", productID),
			slog.Int("quantity", quantity),
			slog.Int("stock", item.Product.StockQuantity),
		)
		s.operations.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "update"),
				attribute.String("result", "rejected"),
			),
		)
		return domain.ErrInsufficientStock
	}

	s.state = domain.Apply(s.state, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
	items := s.state.Items
	s.mu.Unlock()

	s.persist(ctx, items)

	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "update"),
			attribute.String("result", "success"),
		),
	)

	s.logger.InfoContext(ctx, "Cart quantity updated",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	span.SetStatus(codes.Ok, "Quantity updated")
	return nil
}

// RemoveFromCart drops the line for the given product id. It always
// succeeds; removing an absent id is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, productID string) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveFromCart")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", productID))

	s.mu.Lock()
	s.state = domain.Apply(s.state, domain.RemoveFromCart{ProductID: productID})
	items := s.state.Items
	s.mu.Unlock()

	s.persist(ctx, items)

	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "remove"),
			attribute.String("result", "success"),
		),
	)

	s.logger.InfoContext(ctx, "Item removed from cart",
		slog.String("product_id", productID),
	)

	span.SetStatus(codes.Ok, "Item removed")
}

// ClearCart resets the cart to its empty state.
func (s *CartService) ClearCart(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart")
	defer span.End()

	s.mu.Lock()
	s.state = domain.Apply(s.state, domain.ClearCart{})
	items := s.state.Items
	s.mu.Unlock()

	s.persist(ctx, items)

	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "clear"),
			attribute.String("result", "success"),
		),
	)

	s.logger.InfoContext(ctx, "Cart cleared")
	span.SetStatus(codes.Ok, "Cart cleared")
}

// State returns a snapshot of the current cart state. The reducer never
// mutates published slices in place, so the snapshot is safe to read.
func (s *CartService) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetItemQuantity returns the quantity for the product id, 0 if absent.
func (s *CartService) GetItemQuantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Quantity(productID)
}

// IsInCart reports whether the product id has a line in the cart.
func (s *CartService) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Find(productID)
	return ok
}

// OrderLines derives the order-submission payload from the current
// items. It is recomputed fresh on every call.
func (s *CartService) OrderLines() []dto.OrderLine {
	s.mu.Lock()
	items := s.state.Items
	s.mu.Unlock()
	return dto.ToOrderLines(items)
}

// SetAuthenticated records the session's authentication signal. On the
// transition from unauthenticated to authenticated with a non-empty
// cart, a backend sync fires exactly once; a failed sync only warns and
// is retried on the next qualifying transition.
func (s *CartService) SetAuthenticated(ctx context.Context, userID string, authenticated bool) {
	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.authenticated = authenticated
	if authenticated {
		s.userID = userID
	} else {
		s.userID = ""
	}
	hasItems := !s.state.IsEmpty()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Authentication signal received",
		slog.Bool("authenticated", authenticated),
	)

	if authenticated && !wasAuthenticated && hasItems {
		if err := s.SyncToBackend(ctx); err != nil {
			s.logger.WarnContext(ctx, "Login cart sync failed, keeping local cart",
				slog.String("error", err.Error()),
			)
		}
	}
}

// SyncToBackend merges the local cart into the authenticated user's
// server-side cart. Concurrent calls are deduped: a second trigger while
// one is outstanding returns ErrSyncInFlight. Failure leaves the local
// cart untouched; local state stays the durable source of truth until a
// sync succeeds.
func (s *CartService) SyncToBackend(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "CartService.SyncToBackend")
	defer span.End()

	if s.backend == nil {
		span.SetStatus(codes.Ok, "Sync disabled")
		return nil
	}

	s.mu.Lock()
	authenticated := s.authenticated
	userID := s.userID
	items := s.state.Items
	s.mu.Unlock()

	if !authenticated {
		span.SetStatus(codes.Error, "Not authenticated")
		return ErrNotAuthenticated
	}
	if len(items) == 0 {
		span.SetStatus(codes.Ok, "Nothing to sync")
		return nil
	}

	if !s.syncInFlight.CompareAndSwap(false, true) {
		span.SetStatus(codes.Error, "Sync already in flight")
		return ErrSyncInFlight
	}
	defer s.syncInFlight.Store(false)

	span.SetAttributes(attribute.Int("cart.items", len(items)))

	if err := s.backend.MergeCart(ctx, userID, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Cart sync failed")
		s.logger.WarnContext(ctx, "Cart sync failed, local cart retained",
			slog.String("error", err.Error()),
		)
		s.syncTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("result", "failure")),
		)
		return fmt.Errorf("sync cart to backend: %w", err)
	}

	s.syncTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", "success")),
	)
	s.logger.InfoContext(ctx, "Cart synced to backend",
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart synced")
	return nil
}

func (s *CartService) checkAddPolicy(product domain.Product, quantity int) error {
	if quantity > product.StockQuantity {
		return domain.ErrInsufficientStock
	}
	if quantity < product.MinOrder() {
		return domain.ErrBelowMinimumOrder
	}
	if product.MaxOrderQuantity != nil && quantity > *product.MaxOrderQuantity {
		return domain.ErrAboveMaximumOrder
	}
	return nil
}

// persist writes the full item sequence through the store. A write
// failure is logged and swallowed; the in-memory transition is not
// rolled back and the cart degrades to session-local.
func (s *CartService) persist(ctx context.Context, items []domain.CartItem) {
	if err := s.store.Save(ctx, items); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist cart",
			slog.String("error", err.Error()),
		)
	}
}
