package repository

import (
	"context"

	"shopfront-backend/internal/product/domain"
)

// Repository defines persistence for products.
type Repository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) (bool, error)
}
