package domain

import (
	"time"

	"shopfront-backend/internal/validation"
)

// Product is a sellable item owned by a company. Price and discount are
// snapshotted onto cart line items at add-to-cart time.
type Product struct {
	ID                 string
	CompanyID          string
	Name               string
	MarketingStatement string
	ProductPrice       float64
	ProductDiscount    float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate validates the product for persistence. All descriptive fields are
// required; a zero price is allowed but a negative one is not.
func (p *Product) Validate() error {
	v := validation.NewError()
	if p.Name == "" {
		v.Add("name", "is required")
	}
	if p.CompanyID == "" {
		v.Add("company_id", "is required")
	}
	if p.MarketingStatement == "" {
		v.Add("marketing_statement", "is required")
	}
	if p.ProductPrice < 0 {
		v.Add("product_price", "must not be negative")
	}
	if p.ProductDiscount < 0 {
		v.Add("product_discount", "must not be negative")
	}
	return v.Err()
}
