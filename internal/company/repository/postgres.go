package repository

import (
	"context"
	"database/sql"
	"errors"

	"shopfront-backend/internal/company/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a company repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all companies ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetByID returns the company for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create persists the company. The company must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	return err
}

// Update updates the existing company record.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Company) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Name, c.UpdatedAt)
	return err
}

// Delete removes the company. Returns false when no row matched. Dependent
// products cascade at the schema level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
