package repository

import (
	"context"

	"shopfront-backend/internal/cart/domain"
)

// Repository defines persistence for carts and their line items.
type Repository interface {
	// GetOrCreateByUser returns the user's cart, creating it on first use.
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// GetByUser returns the user's cart with its items, or nil when the user
	// has no cart yet.
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// UpsertItem atomically inserts the orderable or, when a row already
	// exists for (cart_id, product_id), replaces its quantity. Returns the
	// resulting row. Serialized per key by the unique constraint.
	UpsertItem(ctx context.Context, o *domain.Orderable) (*domain.Orderable, error)
	// DeleteItemByProduct removes the line item for (cartID, productID).
	// Returns false when no such row existed.
	DeleteItemByProduct(ctx context.Context, cartID, productID string) (bool, error)
	// DeleteItemByID removes the line item by id, scoped to the given cart so
	// callers can only touch their own rows. Returns false when no row matched.
	DeleteItemByID(ctx context.Context, cartID, orderableID string) (bool, error)
}
