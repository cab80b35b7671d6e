package repository

import (
	"context"

	"shopfront-backend/internal/company/domain"
)

// Repository defines persistence for companies.
type Repository interface {
	List(ctx context.Context) ([]*domain.Company, error)
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, c *domain.Company) error
	Update(ctx context.Context, c *domain.Company) error
	Delete(ctx context.Context, id string) (bool, error)
}
