// Package redisstore persists cart state in Redis. The cart is the one piece
// of session-scoped mutable state in the storefront; storing it here keeps it
// durable across API restarts and out of the relational schema, where only
// placed orders belong.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/hollowbeak/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository on a Redis client. Carts are
// stored as one JSON value per user with no TTL: a cart lives until the
// order that consumes it is placed.
type CartRepository struct {
	client *redis.Client
}

// NewCartRepository returns a CartRepository using the given client.
func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client}
}

// Get loads the cart for userID. A missing key yields a new empty cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.State, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.NewState(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return &state, nil
}

// Set stores the full cart state for userID.
func (r *CartRepository) Set(ctx context.Context, userID string, state *cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}
	if err := r.client.Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Delete removes the stored cart for userID.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
