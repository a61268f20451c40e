package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo keeps carts in memory and counts writes so tests can assert that
// failed validations never persist.
type mockRepo struct {
	states  map[string]*State
	sets    int
	deletes int
	getErr  error
	setErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{states: make(map[string]*State)}
}

func (m *mockRepo) Get(_ context.Context, userID string) (*State, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.states[userID]; ok {
		return s, nil
	}
	return NewState(), nil
}

func (m *mockRepo) Set(_ context.Context, userID string, state *State) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.states[userID] = state
	return nil
}

func (m *mockRepo) Delete(_ context.Context, userID string) error {
	m.deletes++
	delete(m.states, userID)
	return nil
}

func TestStore_GetReturnsEmptyForNewUser(t *testing.T) {
	store := NewStore(newMockRepo())

	state, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, state.Items)
	assert.Nil(t, state.ShippingAddress)
}

func TestStore_AddOrUpdateItemPersists(t *testing.T) {
	repo := newMockRepo()
	store := NewStore(repo)

	state, err := store.AddOrUpdateItem(context.Background(), "u1", newTestItem("p1", 2, 10, "5.00"))
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, repo.sets)

	reloaded, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
}

func TestStore_MutationsAreIsolatedPerUser(t *testing.T) {
	store := NewStore(newMockRepo())

	_, err := store.AddOrUpdateItem(context.Background(), "u1", newTestItem("p1", 1, 10, "5.00"))
	require.NoError(t, err)

	other, err := store.Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestStore_ValidationFailureDoesNotPersist(t *testing.T) {
	repo := newMockRepo()
	store := NewStore(repo)

	_, err := store.SetShippingAddress(context.Background(), "u1", Address{City: "only"})
	require.ErrorIs(t, err, ErrIncompleteAddress)
	assert.Zero(t, repo.sets)

	_, err = store.SetPaymentMethod(context.Background(), "u1", PaymentStripe)
	require.ErrorIs(t, err, ErrNoShippingAddress)
	assert.Zero(t, repo.sets)
}

func TestStore_SetPaymentMethodAfterAddress(t *testing.T) {
	store := NewStore(newMockRepo())
	ctx := context.Background()

	_, err := store.SetShippingAddress(ctx, "u1", completeAddress())
	require.NoError(t, err)

	state, err := store.SetPaymentMethod(ctx, "u1", PaymentPayPal)
	require.NoError(t, err)
	assert.Equal(t, PaymentPayPal, state.PaymentMethod)
}

func TestStore_ClearDeletesStoredCart(t *testing.T) {
	repo := newMockRepo()
	store := NewStore(repo)
	ctx := context.Background()

	_, err := store.AddOrUpdateItem(ctx, "u1", newTestItem("p1", 1, 10, "5.00"))
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "u1"))
	assert.Equal(t, 1, repo.deletes)

	state, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, state.Items)
}

func TestStore_RepositoryErrorsAreWrapped(t *testing.T) {
	repo := newMockRepo()
	repo.getErr = errors.New("redis down")
	store := NewStore(repo)

	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart")

	repo.getErr = nil
	repo.setErr = errors.New("redis down")
	_, err = store.AddOrUpdateItem(context.Background(), "u1", newTestItem("p1", 1, 10, "5.00"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist cart")
}
