package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
)

// CartStore persists the cart as a JSON array of item records in a
// single file, the server-side analog of a browser local-storage key.
// Load never fails the application: a missing, unreadable or corrupt
// file degrades to the empty sequence with a warning.
type CartStore struct {
	path   string
	tracer trace.Tracer
	logger *slog.Logger
}

// itemRecord is the persisted layout: the full product snapshot plus
// quantity and the first-insertion timestamp. The payload carries no
// version field; anything that does not parse is discarded wholesale.
type itemRecord struct {
	ID       string        `json:"id"`
	Product  productRecord `json:"product"`
	Quantity int           `json:"quantity"`
	AddedAt  time.Time     `json:"addedAt"`
}

type productRecord struct {
	ID               string          `json:"id"`
	Price            decimal.Decimal `json:"price"`
	StockQuantity    int             `json:"stockQuantity"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
	MaxOrderQuantity *int            `json:"maxOrderQuantity,omitempty"`
}

// NewCartStore creates a file-backed cart store at the given path
func NewCartStore(path string, tracer trace.Tracer, logger *slog.Logger) *CartStore {
	return &CartStore{
		path:   path,
		tracer: tracer,
		logger: logger,
	}
}

// Load reads the persisted item sequence. Missing or corrupt data yields
// an empty sequence, never an error.
func (s *CartStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.Load")
	defer span.End()

	span.SetAttributes(attribute.String("cart.file", s.path))

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.DebugContext(ctx, "No persisted cart file, starting empty",
				slog.String("path", s.path),
			)
			span.SetStatus(codes.Ok, "No persisted cart")
			return nil, nil
		}
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Failed to read persisted cart, starting empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		span.SetStatus(codes.Ok, "Unreadable cart discarded")
		return nil, nil
	}

	var records []itemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Discarding corrupt persisted cart",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		span.SetStatus(codes.Ok, "Corrupt cart discarded")
		return nil, nil
	}

	items := make([]domain.CartItem, 0, len(records))
	for _, rec := range records {
		// A line with a non-positive quantity must not exist in the
		// cart; drop it rather than resurrect it.
		if rec.ID == "" || rec.Quantity < 1 {
			s.logger.WarnContext(ctx, "Dropping invalid persisted cart line",
				slog.String("product_id", rec.ID),
				slog.Int("quantity", rec.Quantity),
			)
			continue
		}
		items = append(items, domain.CartItem{
			ID: rec.ID,
			Product: domain.Product{
				ID:               rec.Product.ID,
				Price:            rec.Product.Price,
				StockQuantity:    rec.Product.StockQuantity,
				MinOrderQuantity: rec.Product.MinOrderQuantity,
				MaxOrderQuantity: rec.Product.MaxOrderQuantity,
			},
			Quantity: rec.Quantity,
			AddedAt:  rec.AddedAt,
		})
	}

	span.SetAttributes(attribute.Int("cart.items", len(items)))
	s.logger.InfoContext(ctx, "Cart loaded from file",
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart loaded")
	return items, nil
}

// Save serializes the full item sequence and overwrites the previous
// file contents.
func (s *CartStore) Save(ctx context.Context, items []domain.CartItem) error {
	ctx, span := s.tracer.Start(ctx, "CartStore.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("cart.file", s.path),
		attribute.Int("cart.items", len(items)),
	)

	records := make([]itemRecord, len(items))
	for i, item := range items {
		records[i] = itemRecord{
			ID: item.ID,
			Product: productRecord{
				ID:               item.Product.ID,
				Price:            item.Product.Price,
				StockQuantity:    item.Product.StockQuantity,
				MinOrderQuantity: item.Product.MinOrderQuantity,
				MaxOrderQuantity: item.Product.MaxOrderQuantity,
			},
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to serialize cart")
		return fmt.Errorf("serialize cart: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to write cart file")
		return fmt.Errorf("write cart file: %w", err)
	}

	s.logger.DebugContext(ctx, "Cart saved to file",
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}
