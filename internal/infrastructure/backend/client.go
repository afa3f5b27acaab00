package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/domain"
	"github.com/Vignesh-772/crackers-bazaar-sub000/internal/infrastructure/config"
)

// Client merges a local cart into the user's server-side cart. The merge
// algorithm is the backend's business; the client only reports success
// or failure and never touches local state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

type mergeRequest struct {
	UserID string `json:"user_id"`
	// MergeToken is fresh per attempt so the backend can discard a
	// replayed merge.
	MergeToken string      `json:"merge_token"`
	Items      []mergeItem `json:"items"`
}

type mergeItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// NewClient creates a backend cart client
func NewClient(cfg *config.BackendConfig, tracer trace.Tracer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: tracer,
		logger: logger,
	}
}

// MergeCart posts the local line set to the backend cart-merge endpoint.
// Any non-2xx status is a failure.
func (c *Client) MergeCart(ctx context.Context, userID string, items []domain.CartItem) error {
	ctx, span := c.tracer.Start(ctx, "BackendClient.MergeCart")
	defer span.End()

	req := mergeRequest{
		UserID:     userID,
		MergeToken: uuid.New().String(),
		Items:      make([]mergeItem, len(items)),
	}
	for i, item := range items {
		req.Items[i] = mergeItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
		}
	}

	span.SetAttributes(
		attribute.Int("cart.items", len(items)),
		attribute.String("cart.merge_token", req.MergeToken),
	)

	body, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to serialize merge request")
		return fmt.Errorf("serialize merge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cart/merge", bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build merge request")
		return fmt.Errorf("build merge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Merge request failed")
		return fmt.Errorf("merge cart: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		span.SetStatus(codes.Error, "Merge rejected by backend")
		c.logger.WarnContext(ctx, "Backend rejected cart merge",
			slog.Int("status", resp.StatusCode),
			slog.String("merge_token", req.MergeToken),
		)
		return fmt.Errorf("merge cart: backend returned status %d", resp.StatusCode)
	}

	c.logger.InfoContext(ctx, "Cart merged into backend cart",
		slog.String("user_id", userID),
		slog.Int("items", len(items)),
	)

	span.SetStatus(codes.Ok, "Cart merged")
	return nil
}
