package repository

import (
	"context"

	"shopfront-backend/internal/sample/domain"
)

// Repository defines persistence for samples. Image bytes live in the blob
// store; rows hold the attachment reference only.
type Repository interface {
	ListByProduct(ctx context.Context, productID string) ([]*domain.Sample, error)
	GetByID(ctx context.Context, id string) (*domain.Sample, error)
	Create(ctx context.Context, s *domain.Sample) error
	Delete(ctx context.Context, id string) (bool, error)
}
