package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"shopfront-backend/internal/cart/domain"
	"shopfront-backend/internal/cart/service"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
)

type fakeCartService struct {
	cart       *domain.Cart
	added      *domain.Orderable
	addErr     error
	removeErr  error
	gotUserID  string
	gotProduct string
	gotQty     int
}

func (f *fakeCartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	f.gotUserID = userID
	return f.cart, nil
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, productID string, quantity int, image string) (*domain.Orderable, error) {
	f.gotUserID, f.gotProduct, f.gotQty = userID, productID, quantity
	return f.added, f.addErr
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, orderableID string) error {
	f.gotUserID = userID
	return f.removeErr
}

func newRouter(svc CartService) *chi.Mux {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewCartHandler(svc, nil, log)

	r := chi.NewRouter()
	// Stand-in for the auth gate: bind a fixed identity.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), "u1", "")))
		})
	})
	r.Get("/cart", h.Get)
	r.Post("/cart/{id}/add", h.AddItem)
	r.Delete("/cart/{id}/remove", h.RemoveItem)
	return r
}

func TestCartGet(t *testing.T) {
	svc := &fakeCartService{cart: &domain.Cart{
		ID:     "c1",
		UserID: "u1",
		Items:  []domain.Orderable{{ID: "o1", CartID: "c1", ProductID: "p1", Quantity: 3}},
	}}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}
	if svc.gotUserID != "u1" {
		t.Errorf("user id passed to service: %q", svc.gotUserID)
	}
	var resp cartDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "c1" || len(resp.Items) != 1 || resp.Items[0].Quantity != 3 {
		t.Errorf("body: %+v", resp)
	}
}

func TestCartGet_EmptyCartHasItemsArray(t *testing.T) {
	svc := &fakeCartService{cart: &domain.Cart{UserID: "u1"}}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	// items must serialize as [] rather than null.
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestCartAddItem(t *testing.T) {
	svc := &fakeCartService{added: &domain.Orderable{
		ID: "o1", CartID: "c1", ProductID: "p1", Quantity: 2, ProductPrice: 100,
	}}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/cart/p1/add", strings.NewReader(`{"quantity":2,"image":"url"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}
	if svc.gotProduct != "p1" || svc.gotQty != 2 {
		t.Errorf("service args: product=%q qty=%d", svc.gotProduct, svc.gotQty)
	}
	var resp orderableDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "o1" || resp.Quantity != 2 {
		t.Errorf("body: %+v", resp)
	}
}

func TestCartAddItem_ZeroQuantityIsNoContent(t *testing.T) {
	// Service returns (nil, nil) when the add removed the item.
	svc := &fakeCartService{added: nil}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/cart/p1/add", strings.NewReader(`{"quantity":0}`)))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCartAddItem_UnknownProduct(t *testing.T) {
	svc := &fakeCartService{addErr: service.ErrProductNotFound}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/cart/nope/add", strings.NewReader(`{"quantity":1}`)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	var resp httpjson.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != httpjson.CodeNotFound {
		t.Errorf("code: %q", resp.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	svc := &fakeCartService{}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/cart/o1/remove", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", w.Code)
	}
}

func TestCartRemoveItem_NotFound(t *testing.T) {
	svc := &fakeCartService{removeErr: service.ErrItemNotFound}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/cart/ghost/remove", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
}
