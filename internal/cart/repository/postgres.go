package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shopfront-backend/internal/cart/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a cart repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateByUser returns the user's cart, creating it when absent. The
// insert is keyed on the carts.user_id unique constraint so two concurrent
// first requests converge on a single cart.
func (r *PostgresRepository) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (id, user_id, created_at, updated_at)
		 VALUES (gen_random_uuid(), $1, $2, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, now)
	if err != nil {
		return nil, err
	}
	return r.GetByUser(ctx, userID)
}

// GetByUser returns the user's cart with its items, or nil when no cart exists.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.listItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

const orderableColumns = `id, cart_id, product_id, quantity, image, marketing_statement, product_price, product_discount, created_at, updated_at`

func (r *PostgresRepository) listItems(ctx context.Context, cartID string) ([]domain.Orderable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderableColumns+` FROM orderables WHERE cart_id = $1 ORDER BY created_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Orderable
	for rows.Next() {
		var o domain.Orderable
		if err := rows.Scan(&o.ID, &o.CartID, &o.ProductID, &o.Quantity, &o.Image,
			&o.MarketingStatement, &o.ProductPrice, &o.ProductDiscount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertItem inserts the orderable or replaces the quantity of the existing
// row for the same (cart_id, product_id). A single statement keyed on the
// unique constraint, so concurrent adds of the same product cannot produce
// duplicate rows: one insert wins and the other becomes the quantity update.
func (r *PostgresRepository) UpsertItem(ctx context.Context, o *domain.Orderable) (*domain.Orderable, error) {
	var res domain.Orderable
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO orderables (id, cart_id, product_id, quantity, image, marketing_statement, product_price, product_discount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		 RETURNING `+orderableColumns,
		o.ID, o.CartID, o.ProductID, o.Quantity, o.Image,
		o.MarketingStatement, o.ProductPrice, o.ProductDiscount, time.Now().UTC()).
		Scan(&res.ID, &res.CartID, &res.ProductID, &res.Quantity, &res.Image,
			&res.MarketingStatement, &res.ProductPrice, &res.ProductDiscount, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteItemByProduct removes the line item for (cartID, productID).
func (r *PostgresRepository) DeleteItemByProduct(ctx context.Context, cartID, productID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM orderables WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteItemByID removes the line item by id within the given cart.
func (r *PostgresRepository) DeleteItemByID(ctx context.Context, cartID, orderableID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM orderables WHERE id = $1 AND cart_id = $2`, orderableID, cartID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
