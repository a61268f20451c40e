package handler

import (
	"github.com/shopspring/decimal"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/checkout"
	"github.com/hollowbeak/storefront/internal/domain/order"
	"github.com/hollowbeak/storefront/internal/domain/product"
	"github.com/hollowbeak/storefront/internal/domain/user"
)

// --- Products ---

type productResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Rating       float64 `json:"rating"`
	NumReviews   int     `json:"numReviews"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
}

type productRequest struct {
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
}

type categoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		CountInStock: p.CountInStock,
		Rating:       p.Rating.InexactFloat64(),
		NumReviews:   p.NumReviews,
	}
}

// --- Users ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin *bool  `json:"isAdmin"`
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token,omitempty"`
}

func toUserResponse(u *user.User, token string) userResponse {
	return userResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		Token:   token,
	}
}

// --- Cart ---

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

type shippingAddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type cartItemResponse struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	UnitPrice     float64 `json:"price"`
	Quantity      int     `json:"qty"`
	StockSnapshot int     `json:"countInStock"`
}

type addressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type pricingResponse struct {
	Subtotal    float64 `json:"itemsPrice"`
	ShippingFee float64 `json:"shippingPrice"`
	Tax         float64 `json:"taxPrice"`
	GrandTotal  float64 `json:"totalPrice"`
}

type cartResponse struct {
	Items           []cartItemResponse `json:"items"`
	ShippingAddress *addressResponse   `json:"shippingAddress,omitempty"`
	PaymentMethod   string             `json:"paymentMethod,omitempty"`
	Pricing         pricingResponse    `json:"pricing"`
	Stage           string             `json:"stage"`
}

type gateResponse struct {
	Stage      string `json:"stage"`
	Redirected bool   `json:"redirected"`
}

func toCartResponse(state *cart.State, authenticated bool) cartResponse {
	items := make([]cartItemResponse, len(state.Items))
	for i, item := range state.Items {
		items[i] = cartItemResponse{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Image:         item.Image,
			UnitPrice:     item.UnitPrice.InexactFloat64(),
			Quantity:      item.Quantity,
			StockSnapshot: item.StockSnapshot,
		}
	}

	var addr *addressResponse
	if state.ShippingAddress != nil {
		addr = &addressResponse{
			Street:     state.ShippingAddress.Street,
			City:       state.ShippingAddress.City,
			PostalCode: state.ShippingAddress.PostalCode,
			Country:    state.ShippingAddress.Country,
		}
	}

	stage, _ := checkout.Gate(state, authenticated, checkout.StageReview)

	return cartResponse{
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   string(state.PaymentMethod),
		Pricing:         toPricingResponse(cart.Price(state.Items)),
		Stage:           string(stage),
	}
}

func toPricingResponse(b cart.Breakdown) pricingResponse {
	return pricingResponse{
		Subtotal:    b.Subtotal.InexactFloat64(),
		ShippingFee: b.ShippingFee.InexactFloat64(),
		Tax:         b.Tax.InexactFloat64(),
		GrandTotal:  b.GrandTotal.InexactFloat64(),
	}
}

// --- Orders ---

type orderItemRequest struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
}

type placeOrderRequest struct {
	OrderItems      []orderItemRequest     `json:"orderItems"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal        `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal        `json:"shippingPrice"`
	TaxPrice        decimal.Decimal        `json:"taxPrice"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
}

type orderItemResponse struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"qty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user"`
	OrderItems      []orderItemResponse `json:"orderItems"`
	ShippingAddress addressResponse     `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	ItemsPrice      float64             `json:"itemsPrice"`
	ShippingPrice   float64             `json:"shippingPrice"`
	TaxPrice        float64             `json:"taxPrice"`
	TotalPrice      float64             `json:"totalPrice"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *string             `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *string             `json:"deliveredAt,omitempty"`
	CreatedAt       string              `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.UnitPrice.InexactFloat64(),
			Quantity:  item.Quantity,
		}
	}

	resp := orderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		OrderItems: items,
		ShippingAddress: addressResponse{
			Street:     o.ShippingAddress.Street,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: string(o.PaymentMethod),
		ItemsPrice:    o.Subtotal.InexactFloat64(),
		ShippingPrice: o.ShippingFee.InexactFloat64(),
		TaxPrice:      o.Tax.InexactFloat64(),
		TotalPrice:    o.GrandTotal.InexactFloat64(),
		IsPaid:        o.IsPaid,
		IsDelivered:   o.IsDelivered,
		CreatedAt:     o.CreatedAt.UTC().Format(timeFormat),
	}
	if o.PaidAt != nil {
		s := o.PaidAt.UTC().Format(timeFormat)
		resp.PaidAt = &s
	}
	if o.DeliveredAt != nil {
		s := o.DeliveredAt.UTC().Format(timeFormat)
		resp.DeliveredAt = &s
	}
	return resp
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// --- Wishlist ---

type wishlistResponse struct {
	Products []productResponse `json:"products"`
}
