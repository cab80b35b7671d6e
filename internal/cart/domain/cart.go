package domain

import (
	"time"

	"shopfront-backend/internal/validation"
)

// Cart is the per-user collection of orderables. Exactly one cart exists per
// user; it is created lazily on first use.
type Cart struct {
	ID        string
	UserID    string
	Items     []Orderable
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Orderable is a cart line item binding a product, a quantity, and a
// cart-specific snapshot of image, price, discount, and marketing statement.
// At most one orderable exists per (cart, product); repeated adds replace the
// quantity on the existing row.
type Orderable struct {
	ID                 string
	CartID             string
	ProductID          string
	Quantity           int
	Image              string
	MarketingStatement string
	ProductPrice       float64
	ProductDiscount    float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate validates the orderable for persistence. product_id, cart_id,
// quantity, and image must all be present.
func (o *Orderable) Validate() error {
	v := validation.NewError()
	if o.ProductID == "" {
		v.Add("product_id", "is required")
	}
	if o.CartID == "" {
		v.Add("cart_id", "is required")
	}
	if o.Quantity <= 0 {
		v.Add("quantity", "must be positive")
	}
	if o.Image == "" {
		v.Add("image", "is required")
	}
	return v.Err()
}
