package domain

import "context"

// CartStore persists the item sequence between sessions. Load must
// degrade to an empty sequence on missing or unreadable data instead of
// failing the application; Save overwrites the previous value wholesale.
type CartStore interface {
	Load(ctx context.Context) ([]CartItem, error)
	Save(ctx context.Context, items []CartItem) error
}

// BackendCart merges the local items into the authenticated user's
// server-side cart. The merge algorithm is server-authoritative; the
// caller only learns success or failure.
type BackendCart interface {
	MergeCart(ctx context.Context, userID string, items []CartItem) error
}
