package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hollowbeak/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`

	countProductsSQL = `SELECT count(*) FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products
		(id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateProductSQL = `UPDATE products SET
		name = $2, image = $3, brand = $4, category = $5, description = $6,
		price = $7, count_in_stock = $8, rating = $9, num_reviews = $10, updated_at = $11
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products
		(id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, image = EXCLUDED.image, brand = EXCLUDED.brand,
			category = EXCLUDED.category, description = EXCLUDED.description,
			price = EXCLUDED.price, count_in_stock = EXCLUDED.count_in_stock,
			rating = EXCLUDED.rating, num_reviews = EXCLUDED.num_reviews,
			updated_at = now()`

	listCategoriesSQL = `SELECT slug, name FROM categories ORDER BY name`

	upsertCategorySQL = `INSERT INTO categories (slug, name) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name`
)

var (
	_ product.Repository         = (*ProductRepository)(nil)
	_ product.CategoryRepository = (*ProductRepository)(nil)
)

// ProductRepository implements the product repositories backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one page of the catalog matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) (*product.ListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 12
	}

	var total int
	if err := r.pool.QueryRow(ctx, countProductsSQL, f.Keyword, f.Category).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	offset := (f.Page - 1) * f.PageSize
	rows, err := r.pool.Query(ctx, listProductsSQL, f.Keyword, f.Category, f.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	pages := (total + f.PageSize - 1) / f.PageSize
	if pages < 1 {
		pages = 1
	}
	return &product.ListResult{
		Products: products,
		Page:     f.Page,
		Pages:    pages,
		Total:    total,
	}, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Image, p.Brand, p.Category, p.Description,
		p.Price, p.CountInStock, p.Rating, p.NumReviews,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts a product or rewrites it when the ID already exists.
// Used by the seeding tool.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Image, p.Brand, p.Category, p.Description,
		p.Price, p.CountInStock, p.Rating, p.NumReviews,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// UpsertCategory inserts a category or renames it when the slug already exists.
func (r *ProductRepository) UpsertCategory(ctx context.Context, c product.Category) error {
	if _, err := r.pool.Exec(ctx, upsertCategorySQL, c.Slug, c.Name); err != nil {
		return fmt.Errorf("upserting category %q: %w", c.Slug, err)
	}
	return nil
}

// Update rewrites all mutable columns of a product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Image, p.Brand, p.Category, p.Description,
		p.Price, p.CountInStock, p.Rating, p.NumReviews, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.Slug, &c.Name)
		return c, err
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Image, &p.Brand, &p.Category, &p.Description,
		&p.Price, &p.CountInStock, &p.Rating, &p.NumReviews,
	)
	return p, err
}
