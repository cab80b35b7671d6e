// Package handler exposes the authenticated user's cart over HTTP. Every
// route operates on the caller's own cart; the cart id never appears in a URL.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopfront-backend/internal/cart/domain"
	"shopfront-backend/internal/cart/service"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
	"shopfront-backend/internal/telemetry"
	"shopfront-backend/internal/validation"
)

// CartService is the service surface the handler needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int, image string) (*domain.Orderable, error)
	RemoveItem(ctx context.Context, userID, orderableID string) error
}

// CartHandler handles /cart.
type CartHandler struct {
	carts   CartService
	emitter telemetry.EventEmitter
	log     logging.Logger
}

// NewCartHandler returns a CartHandler.
func NewCartHandler(carts CartService, emitter telemetry.EventEmitter, log logging.Logger) *CartHandler {
	return &CartHandler{carts: carts, emitter: emitter, log: log}
}

type addItemRequestDTO struct {
	Quantity int    `json:"quantity"`
	Image    string `json:"image"`
}

type orderableDTO struct {
	ID                 string  `json:"id"`
	CartID             string  `json:"cart_id"`
	ProductID          string  `json:"product_id"`
	Quantity           int     `json:"quantity"`
	Image              string  `json:"image"`
	MarketingStatement string  `json:"marketing_statement"`
	ProductPrice       float64 `json:"product_price"`
	ProductDiscount    float64 `json:"product_discount"`
}

type cartDTO struct {
	ID     string         `json:"id"`
	UserID string         `json:"user_id"`
	Items  []orderableDTO `json:"items"`
}

func toOrderableDTO(o *domain.Orderable) orderableDTO {
	return orderableDTO{
		ID:                 o.ID,
		CartID:             o.CartID,
		ProductID:          o.ProductID,
		Quantity:           o.Quantity,
		Image:              o.Image,
		MarketingStatement: o.MarketingStatement,
		ProductPrice:       o.ProductPrice,
		ProductDiscount:    o.ProductDiscount,
	}
}

func toCartDTO(c *domain.Cart) cartDTO {
	items := make([]orderableDTO, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toOrderableDTO(&c.Items[i]))
	}
	return cartDTO{ID: c.ID, UserID: c.UserID, Items: items}
}

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.log.Error(r.Context(), "cart get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	httpjson.Respond(w, http.StatusOK, toCartDTO(cart))
}

// AddItem handles POST /cart/{id}/add, where {id} is the product id. A
// repeated add replaces the line item's quantity; quantity <= 0 removes it
// and returns 204.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "id")

	var req addItemRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}

	o, err := h.carts.AddItem(r.Context(), userID, productID, req.Quantity, req.Image)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
			return
		}
		if v := validation.AsError(err); v != nil {
			httpjson.ValidationError(w, v)
			return
		}
		h.log.Error(r.Context(), "cart add failed", "error", err)
		httpjson.Internal(w)
		return
	}

	if o == nil {
		// Zero or negative quantity removed the line item.
		telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(userID, telemetry.EventCartItemRemove, map[string]string{"product_id": productID}))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(userID, telemetry.EventCartItemAdded, map[string]string{"product_id": productID}))
	httpjson.Respond(w, http.StatusOK, toOrderableDTO(o))
}

// RemoveItem handles DELETE /cart/{id}/remove, where {id} is the line item id.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderableID := chi.URLParam(r, "id")

	if err := h.carts.RemoveItem(r.Context(), userID, orderableID); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "cart item not found")
			return
		}
		h.log.Error(r.Context(), "cart remove failed", "error", err)
		httpjson.Internal(w)
		return
	}

	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(userID, telemetry.EventCartItemRemove, map[string]string{"orderable_id": orderableID}))
	w.WriteHeader(http.StatusNoContent)
}
