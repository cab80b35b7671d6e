package repository

import (
	"context"
	"database/sql"
	"errors"

	"shopfront-backend/internal/sample/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a sample repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sampleColumns = `id, product_id, storage_key, content_type, byte_size, created_at`

// ListByProduct returns all samples for the given product.
func (r *PostgresRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Sample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sampleColumns+` FROM samples WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Sample
	for rows.Next() {
		var s domain.Sample
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Image.StorageKey, &s.Image.ContentType, &s.Image.ByteSize, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// GetByID returns the sample for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Sample, error) {
	var s domain.Sample
	err := r.db.QueryRowContext(ctx,
		`SELECT `+sampleColumns+` FROM samples WHERE id = $1`, id).
		Scan(&s.ID, &s.ProductID, &s.Image.StorageKey, &s.Image.ContentType, &s.Image.ByteSize, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create persists the sample. The sample must have ID set and its attachment uploaded.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Sample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO samples (id, product_id, storage_key, content_type, byte_size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.ProductID, s.Image.StorageKey, s.Image.ContentType, s.Image.ByteSize, s.CreatedAt)
	return err
}

// Delete removes the sample row. Returns false when no row matched. The caller
// is responsible for deleting the blob.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM samples WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
