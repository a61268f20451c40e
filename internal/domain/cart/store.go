package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// Store is the single owner of a user's cart state. Every mutation loads the
// current state, applies the change, and writes the full state back, so the
// stored cart is always a complete snapshot. There are no partial writes and
// no concurrent writers per user: each session mutates only its own cart.
type Store struct {
	repo Repository
}

// NewStore creates a Store backed by the given repository.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Get returns the current cart state for userID, rehydrating from storage.
func (s *Store) Get(ctx context.Context, userID string) (*State, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return state, nil
}

// AddOrUpdateItem applies the add-or-update operation and persists the result.
func (s *Store) AddOrUpdateItem(ctx context.Context, userID string, item LineItem) (*State, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		state.AddOrUpdateItem(item)
		return nil
	})
}

// RemoveItem removes a line item and persists the result.
func (s *Store) RemoveItem(ctx context.Context, userID, productID string) (*State, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		state.RemoveItem(productID)
		return nil
	})
}

// SetShippingAddress validates and records the shipping address.
func (s *Store) SetShippingAddress(ctx context.Context, userID string, addr Address) (*State, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		return state.SetShippingAddress(addr)
	})
}

// SetPaymentMethod records the payment method, requiring an address first.
func (s *Store) SetPaymentMethod(ctx context.Context, userID string, method PaymentMethod) (*State, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		return state.SetPaymentMethod(method)
	})
}

// Clear empties the cart and removes it from storage. Called once, after a
// successful order submission.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// mutate loads, applies fn, and persists. Validation failures from fn leave
// the stored state untouched.
func (s *Store) mutate(ctx context.Context, userID string, fn func(*State) error) (*State, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	if err := fn(state); err != nil {
		return nil, err
	}

	if err := s.repo.Set(ctx, userID, state); err != nil {
		return nil, errors.Wrap(err, "persist cart")
	}
	return state, nil
}
