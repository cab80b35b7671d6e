package domain

import (
	"time"

	"shopfront-backend/internal/validation"
)

// Company owns products.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the company for persistence.
func (c *Company) Validate() error {
	v := validation.NewError()
	if c.Name == "" {
		v.Add("name", "is required")
	}
	return v.Err()
}
