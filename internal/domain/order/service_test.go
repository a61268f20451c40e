package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context, _ product.ListFilter) (*product.ListResult, error) {
	return &product.ListResult{}, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

type mockOrderRepo struct {
	created  []*Order
	byKey    map[string]*Order
	err      error
	byID     map[string]*Order
	paid     []string
	delivers []string
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		byKey: make(map[string]*Order),
		byID:  make(map[string]*Order),
	}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order, key string) (*Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	if existing, ok := m.byKey[key]; ok {
		return existing, ErrDuplicateSubmission
	}
	m.created = append(m.created, o)
	m.byKey[key] = o
	m.byID[o.ID] = o
	return o, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.created))
	for _, o := range m.created {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id string, _ time.Time) error {
	m.paid = append(m.paid, id)
	return nil
}

func (m *mockOrderRepo) MarkDelivered(_ context.Context, id string, _ time.Time) error {
	m.delivers = append(m.delivers, id)
	return nil
}

type mockCartRepo struct {
	states  map[string]*cart.State
	deletes int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{states: make(map[string]*cart.State)}
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.State, error) {
	if s, ok := m.states[userID]; ok {
		return s, nil
	}
	return cart.NewState(), nil
}

func (m *mockCartRepo) Set(_ context.Context, userID string, s *cart.State) error {
	m.states[userID] = s
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, userID string) error {
	m.deletes++
	delete(m.states, userID)
	return nil
}

// --- Helpers ---

func newTestProduct(id, name string, price decimal.Decimal) product.Product {
	return product.Product{
		ID:           id,
		Name:         name,
		Image:        "/images/" + id + ".jpg",
		Category:     "test",
		Price:        price,
		CountInStock: 10,
	}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func testAddress() cart.Address {
	return cart.Address{
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func lineItem(productID string, qty int, price string) cart.LineItem {
	return cart.LineItem{
		ProductID:     productID,
		Name:          "Item " + productID,
		Image:         "/images/" + productID + ".jpg",
		UnitPrice:     decimal.RequireFromString(price),
		Quantity:      qty,
		StockSnapshot: 10,
	}
}

// validRequest builds a request whose client totals agree with the server's
// arithmetic: 2 x 40 + 1 x 30 = 110 subtotal, free shipping, 16.50 tax.
func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		Items: []cart.LineItem{
			lineItem("p1", 2, "40.00"),
			lineItem("p2", 1, "30.00"),
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   cart.PaymentPayPal,
		Subtotal:        decimal.RequireFromString("110"),
		ShippingFee:     decimal.Zero,
		Tax:             decimal.RequireFromString("16.50"),
		GrandTotal:      decimal.RequireFromString("126.50"),
		IdempotencyKey:  "key-1",
	}
}

func newTestService(products *mockProductRepo, orders *mockOrderRepo, carts *mockCartRepo) *Service {
	svc := NewService(products, orders, cart.NewStore(carts))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// --- Tests ---

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := newTestService(newProductRepo(), newMockOrderRepo(), newMockCartRepo())

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderRequest{})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlaceOrder_MissingAddress(t *testing.T) {
	svc := newTestService(newProductRepo(), newMockOrderRepo(), newMockCartRepo())

	req := validRequest()
	req.ShippingAddress = cart.Address{City: "Springfield"}
	_, err := svc.PlaceOrder(context.Background(), "u1", req)
	require.ErrorIs(t, err, ErrMissingAddress)
}

func TestPlaceOrder_MissingPayment(t *testing.T) {
	svc := newTestService(newProductRepo(), newMockOrderRepo(), newMockCartRepo())

	req := validRequest()
	req.PaymentMethod = ""
	_, err := svc.PlaceOrder(context.Background(), "u1", req)
	require.ErrorIs(t, err, ErrMissingPayment)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(10))
	svc := newTestService(newProductRepo(p1), newMockOrderRepo(), newMockCartRepo())

	req := validRequest()
	req.Items[0].Quantity = 0
	_, err := svc.PlaceOrder(context.Background(), "u1", req)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(40))
	svc := newTestService(newProductRepo(p1), newMockOrderRepo(), newMockCartRepo())

	_, err := svc.PlaceOrder(context.Background(), "u1", validRequest())

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "p2", pnfErr.ProductID)
}

func TestPlaceOrder_PricingMismatch(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(40))
	p2 := newTestProduct("p2", "Gadget", decimal.NewFromInt(30))
	orders := newMockOrderRepo()
	svc := newTestService(newProductRepo(p1, p2), orders, newMockCartRepo())

	req := validRequest()
	req.GrandTotal = decimal.RequireFromString("1.00")
	_, err := svc.PlaceOrder(context.Background(), "u1", req)

	require.ErrorIs(t, err, ErrPricingMismatch)
	assert.Empty(t, orders.created, "mismatched submission must not create an order")
}

func TestPlaceOrder_Success(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(40))
	p2 := newTestProduct("p2", "Gadget", decimal.NewFromInt(30))
	orders := newMockOrderRepo()
	carts := newMockCartRepo()
	carts.states["u1"] = cart.NewState()
	svc := newTestService(newProductRepo(p1, p2), orders, carts)

	o, err := svc.PlaceOrder(context.Background(), "u1", validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	require.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("110").Equal(o.Subtotal))
	assert.True(t, decimal.Zero.Equal(o.ShippingFee))
	assert.True(t, decimal.RequireFromString("16.50").Equal(o.Tax))
	assert.True(t, decimal.RequireFromString("126.50").Equal(o.GrandTotal))
	assert.Equal(t, 1, carts.deletes, "cart is cleared after the order exists")
}

func TestPlaceOrder_DuplicateKeyReturnsOriginal(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(40))
	p2 := newTestProduct("p2", "Gadget", decimal.NewFromInt(30))
	orders := newMockOrderRepo()
	svc := newTestService(newProductRepo(p1, p2), orders, newMockCartRepo())

	first, err := svc.PlaceOrder(context.Background(), "u1", validRequest())
	require.NoError(t, err)

	second, err := svc.PlaceOrder(context.Background(), "u1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "replayed key returns the original order")
	assert.Len(t, orders.created, 1)
}

func TestPlaceOrder_RepoErrorLeavesCartUntouched(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(40))
	p2 := newTestProduct("p2", "Gadget", decimal.NewFromInt(30))
	orders := newMockOrderRepo()
	orders.err = errors.New("db write failed")
	carts := newMockCartRepo()
	svc := newTestService(newProductRepo(p1, p2), orders, carts)

	_, err := svc.PlaceOrder(context.Background(), "u1", validRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Zero(t, carts.deletes, "failed submission must not clear the cart")
}

func TestGet_OwnerAndAdmin(t *testing.T) {
	orders := newMockOrderRepo()
	orders.byID["o1"] = &Order{ID: "o1", UserID: "u1"}
	svc := newTestService(newProductRepo(), orders, newMockCartRepo())
	ctx := context.Background()

	o, err := svc.Get(ctx, "o1", "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = svc.Get(ctx, "o1", "u2", false)
	require.ErrorIs(t, err, ErrNotOwner)

	o, err = svc.Get(ctx, "o1", "u2", true)
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(newProductRepo(), newMockOrderRepo(), newMockCartRepo())

	_, err := svc.Get(context.Background(), "missing", "u1", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPaid(t *testing.T) {
	orders := newMockOrderRepo()
	orders.byID["o1"] = &Order{ID: "o1", UserID: "u1"}
	svc := newTestService(newProductRepo(), orders, newMockCartRepo())

	o, err := svc.MarkPaid(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)

	_, err = svc.MarkPaid(context.Background(), "o1")
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestMarkDelivered(t *testing.T) {
	orders := newMockOrderRepo()
	orders.byID["o1"] = &Order{ID: "o1", UserID: "u1"}
	svc := newTestService(newProductRepo(), orders, newMockCartRepo())

	o, err := svc.MarkDelivered(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, o.IsDelivered)
	require.NotNil(t, o.DeliveredAt)

	_, err = svc.MarkDelivered(context.Background(), "o1")
	require.ErrorIs(t, err, ErrAlreadyDelivered)
}
