package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID           string
	Name         string
	Image        string
	Brand        string
	Category     string
	Description  string
	Price        decimal.Decimal
	CountInStock int
	Rating       decimal.Decimal
	NumReviews   int
}

// ListFilter narrows and pages a catalog listing. Keyword matches product
// names case-insensitively; Category matches the exact category slug.
// Page is 1-based.
type ListFilter struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
}

// ListResult is one page of catalog results.
type ListResult struct {
	Products []Product
	Page     int
	Pages    int
	Total    int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Category is a named grouping of products.
type Category struct {
	Name string
	Slug string
}

// CategoryRepository lists the available product categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
}
