package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"shopfront-backend/internal/cart/cache"
	"shopfront-backend/internal/cart/domain"
	"shopfront-backend/internal/logging"
	productdomain "shopfront-backend/internal/product/domain"
	"shopfront-backend/internal/validation"
)

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart // by userID
	items map[string][]domain.Orderable // by cartID
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{
		carts: map[string]*domain.Cart{},
		items: map[string][]domain.Orderable{},
	}
}

func (r *memCartRepo) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return r.withItemsLocked(c), nil
	}
	now := time.Now().UTC()
	c := &domain.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.carts[userID] = c
	return r.withItemsLocked(c), nil
}

func (r *memCartRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	return r.withItemsLocked(c), nil
}

func (r *memCartRepo) withItemsLocked(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.Orderable(nil), r.items[c.ID]...)
	return &out
}

func (r *memCartRepo) UpsertItem(ctx context.Context, o *domain.Orderable) (*domain.Orderable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[o.CartID]
	for i := range items {
		if items[i].ProductID == o.ProductID {
			items[i].Quantity = o.Quantity
			items[i].UpdatedAt = o.UpdatedAt
			res := items[i]
			return &res, nil
		}
	}
	r.items[o.CartID] = append(items, *o)
	res := *o
	return &res, nil
}

func (r *memCartRepo) DeleteItemByProduct(ctx context.Context, cartID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memCartRepo) DeleteItemByID(ctx context.Context, cartID, orderableID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[cartID]
	for i := range items {
		if items[i].ID == orderableID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memProducts struct {
	m map[string]*productdomain.Product
}

func (p *memProducts) GetByID(ctx context.Context, id string) (*productdomain.Product, error) {
	return p.m[id], nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService() (*CartService, *memCartRepo, *productdomain.Product) {
	repo := newMemCartRepo()
	product := &productdomain.Product{
		ID:                 uuid.New().String(),
		CompanyID:          uuid.New().String(),
		Name:               "Nike air",
		MarketingStatement: "lorem ipsum",
		ProductPrice:       1000,
		ProductDiscount:    20,
	}
	products := &memProducts{m: map[string]*productdomain.Product{product.ID: product}}
	svc := NewCartService(repo, products, cache.Noop{}, testLogger())
	return svc, repo, product
}

func TestAddItem_RepeatedAddReplacesQuantity(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	o1, err := svc.AddItem(ctx, "u1", product.ID, 2, "image_url")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if o1.Quantity != 2 {
		t.Fatalf("quantity: got %d, want 2", o1.Quantity)
	}

	o2, err := svc.AddItem(ctx, "u1", product.ID, 5, "image_url")
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if o2.Quantity != 5 {
		t.Errorf("quantity after second add: got %d, want 5 (replace, not increment)", o2.Quantity)
	}
	if o2.ID != o1.ID {
		t.Errorf("second add created a new row: %q vs %q", o2.ID, o1.ID)
	}

	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart items: got %d, want 1", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("cart item quantity: got %d, want 5", cart.Items[0].Quantity)
	}
}

func TestAddItem_SnapshotsProductFields(t *testing.T) {
	svc, _, product := newTestService()
	o, err := svc.AddItem(context.Background(), "u1", product.ID, 1, "image_url")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if o.MarketingStatement != product.MarketingStatement {
		t.Errorf("marketing statement not snapshotted: %q", o.MarketingStatement)
	}
	if o.ProductPrice != product.ProductPrice || o.ProductDiscount != product.ProductDiscount {
		t.Errorf("price/discount not snapshotted: %v/%v", o.ProductPrice, o.ProductDiscount)
	}
}

func TestAddItem_ZeroQuantityRemovesExisting(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", product.ID, 3, "image_url"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	o, err := svc.AddItem(ctx, "u1", product.ID, 0, "image_url")
	if err != nil {
		t.Fatalf("AddItem qty 0: %v", err)
	}
	if o != nil {
		t.Errorf("qty 0: got orderable %+v, want nil", o)
	}
	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("cart items after zero-quantity add: got %d, want 0", len(cart.Items))
	}
}

func TestAddItem_MissingImageFailsValidation(t *testing.T) {
	svc, _, product := newTestService()
	_, err := svc.AddItem(context.Background(), "u1", product.ID, 2, "")
	v := validation.AsError(err)
	if v == nil {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, ok := v.Fields["image"]; !ok {
		t.Errorf("validation fields: got %v, want image", v.Fields)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.AddItem(context.Background(), "u1", uuid.New().String(), 2, "image_url")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("want ErrProductNotFound, got %v", err)
	}
}

func TestAddItem_ConcurrentAddsNeverDuplicate(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			if _, err := svc.AddItem(ctx, "u1", product.ID, q+1, "image_url"); err != nil {
				t.Errorf("AddItem: %v", err)
			}
		}(i)
	}
	wg.Wait()

	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Errorf("cart items after concurrent adds: got %d, want 1", len(cart.Items))
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	o, err := svc.AddItem(ctx, "u1", product.ID, 2, "image_url")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.RemoveItem(ctx, "u1", o.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("cart items after remove: got %d, want 0", len(cart.Items))
	}

	if err := svc.RemoveItem(ctx, "u1", o.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("second remove: want ErrItemNotFound, got %v", err)
	}
}

func TestRemoveItem_OtherUsersCart(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	o, err := svc.AddItem(ctx, "u1", product.ID, 2, "image_url")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// u2 cannot remove a line item from u1's cart.
	if err := svc.RemoveItem(ctx, "u2", o.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("cross-user remove: want ErrItemNotFound, got %v", err)
	}
	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Errorf("u1 cart items: got %d, want 1", len(cart.Items))
	}
}

func TestCartLifecycleScenario(t *testing.T) {
	svc, _, product := newTestService()
	ctx := context.Background()

	cart, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("fresh cart not empty: %d items", len(cart.Items))
	}

	if _, err := svc.AddItem(ctx, "u1", product.ID, 2, "image_url"); err != nil {
		t.Fatalf("AddItem qty 2: %v", err)
	}
	cart, _ = svc.GetCart(ctx, "u1")
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("after first add: %+v", cart.Items)
	}

	if _, err := svc.AddItem(ctx, "u1", product.ID, 5, "image_url"); err != nil {
		t.Fatalf("AddItem qty 5: %v", err)
	}
	cart, _ = svc.GetCart(ctx, "u1")
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("after second add: %+v", cart.Items)
	}

	if err := svc.RemoveItem(ctx, "u1", cart.Items[0].ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	cart, _ = svc.GetCart(ctx, "u1")
	if len(cart.Items) != 0 {
		t.Fatalf("after remove: %+v", cart.Items)
	}
}
