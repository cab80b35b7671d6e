package cache

import (
	"context"
	"errors"

	"shopfront-backend/internal/cart/domain"
)

// ErrCacheMiss is returned when the cart is not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// CartCache caches a user's cart between reads. Mutations invalidate; a miss
// falls through to the repository.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// Noop is a CartCache that stores nothing. Used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, userID string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (Noop) Set(ctx context.Context, userID string, cart *domain.Cart) error { return nil }
func (Noop) Delete(ctx context.Context, userID string) error                 { return nil }
