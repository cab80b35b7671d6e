package repository

import (
	"context"
	"time"

	"shopfront-backend/internal/session/domain"
)

// Repository defines persistence for cookie sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}
