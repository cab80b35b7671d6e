package domain

import (
	"time"

	"shopfront-backend/internal/validation"
)

// Attachment is the stored-image reference held by a sample. It points into
// the blob store; the bytes themselves never live in the database.
type Attachment struct {
	StorageKey  string
	ContentType string
	ByteSize    int64
}

// Sample is an uploaded image attached to a product.
type Sample struct {
	ID        string
	ProductID string
	Image     Attachment
	CreatedAt time.Time
}

// Validate validates the sample for persistence. The attachment must already
// be uploaded: a sample row without a storage key is never written.
func (s *Sample) Validate() error {
	v := validation.NewError()
	if s.ProductID == "" {
		v.Add("product_id", "is required")
	}
	if s.Image.StorageKey == "" {
		v.Add("image", "is required")
	}
	return v.Err()
}
