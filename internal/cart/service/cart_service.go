package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"shopfront-backend/internal/cart/cache"
	"shopfront-backend/internal/cart/domain"
	"shopfront-backend/internal/cart/repository"
	"shopfront-backend/internal/logging"
	productdomain "shopfront-backend/internal/product/domain"
)

// Sentinel errors for the cart service; the handler maps them to HTTP statuses.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
)

// ProductGetter is the minimal product lookup needed to snapshot price,
// discount, and marketing statement onto a line item.
type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*productdomain.Product, error)
}

// CartService enforces the cart consistency rules: at most one line item per
// (cart, product), replace-not-increment on repeated adds, and removal when
// the quantity drops to zero or below.
type CartService struct {
	repo     repository.Repository
	products ProductGetter
	cache    cache.CartCache
	log      logging.Logger
	sfg      singleflight.Group // collapses concurrent cache misses per user
}

// NewCartService returns a CartService with the given dependencies.
func NewCartService(repo repository.Repository, products ProductGetter, c cache.CartCache, log logging.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    c,
		log:      log,
	}
}

// GetCart returns the user's cart with items. Reads go through the cache;
// a user without a cart gets an empty one without persisting anything.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn(ctx, "cart cache get failed", "error", err)
		}

		cart, err = s.repo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			now := time.Now().UTC()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, userID, cart); err != nil {
				s.log.Warn(setCtx, "cart cache set failed", "error", err)
			}
		}()
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem adds productID to the user's cart. An existing line item has its
// quantity replaced; quantity <= 0 deletes the line item instead of leaving a
// zero-quantity row. Returns the resulting orderable, or nil when the call
// removed the item. The write is a single upsert keyed on
// (cart_id, product_id), so concurrent adds never create duplicate rows.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int, image string) (*domain.Orderable, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if _, err := s.repo.DeleteItemByProduct(ctx, cart.ID, productID); err != nil {
			return nil, err
		}
		s.invalidateCache(userID)
		return nil, nil
	}

	now := time.Now().UTC()
	o := &domain.Orderable{
		ID:                 uuid.New().String(),
		CartID:             cart.ID,
		ProductID:          productID,
		Quantity:           quantity,
		Image:              image,
		MarketingStatement: product.MarketingStatement,
		ProductPrice:       product.ProductPrice,
		ProductDiscount:    product.ProductDiscount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	res, err := s.repo.UpsertItem(ctx, o)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(userID)
	return res, nil
}

// RemoveItem deletes the orderable by id, scoped to the caller's own cart.
// Returns ErrItemNotFound when the id does not exist in that cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, orderableID string) error {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrItemNotFound
	}
	ok, err := s.repo.DeleteItemByID(ctx, cart.ID, orderableID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn(ctx, "cart cache invalidate failed", "error", err)
	}
}
