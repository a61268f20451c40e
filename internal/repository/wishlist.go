package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hollowbeak/storefront/internal/domain/wishlist"
)

const (
	listWishlistSQL = `SELECT product_id FROM wishlist_items
		WHERE user_id = $1 ORDER BY added_at DESC`

	addWishlistSQL = `INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	removeWishlistSQL = `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// List returns the product IDs on the user's wishlist, most recent first.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

// Add puts a product on the user's wishlist. Already-present is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, addWishlistSQL, userID, productID); err != nil {
		return fmt.Errorf("adding product %q to wishlist: %w", productID, err)
	}
	return nil
}

// Remove takes a product off the user's wishlist. Absent is a no-op.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, removeWishlistSQL, userID, productID); err != nil {
		return fmt.Errorf("removing product %q from wishlist: %w", productID, err)
	}
	return nil
}
