// Package wishlist tracks the set of products a user has saved for later.
package wishlist

import "context"

// Repository defines persistence for per-user wishlists. Adding a product
// already on the list and removing one that is absent are both no-ops.
type Repository interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}
