package repository

import (
	"context"
	"database/sql"
	"errors"

	"shopfront-backend/internal/product/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a product repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, company_id, name, marketing_statement, product_price, product_discount, created_at, updated_at`

// List returns all products ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID returns the product for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProduct(rows)
}

// Create persists the product. The product must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, company_id, name, marketing_statement, product_price, product_discount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CompanyID, p.Name, p.MarketingStatement, p.ProductPrice, p.ProductDiscount, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update updates the existing product record. Company ownership is fixed at creation.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $2, marketing_statement = $3, product_price = $4, product_discount = $5, updated_at = $6
		 WHERE id = $1`,
		p.ID, p.Name, p.MarketingStatement, p.ProductPrice, p.ProductDiscount, p.UpdatedAt)
	return err
}

// Delete removes the product. Returns false when no row matched. Dependent
// samples and orderables cascade at the schema level, so no dangling
// references survive the delete.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	var p domain.Product
	err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.MarketingStatement,
		&p.ProductPrice, &p.ProductDiscount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
