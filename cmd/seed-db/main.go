package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/hollowbeak/storefront/internal/domain/product"
	"github.com/hollowbeak/storefront/internal/domain/user"
	"github.com/hollowbeak/storefront/internal/repository"
)

const upsertConcurrency = 8

type productJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	Rating       float64         `json:"rating"`
	NumReviews   int             `json:"numReviews"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.gz supported)")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or SHOP_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("SHOP_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or SHOP_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := repository.NewProductRepository(pool)
	users := repository.NewUserRepository(pool)

	if err := seedProducts(ctx, products, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedAdmin(ctx, users, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	items, err := readProductsFile(path)
	if err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(items)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertConcurrency)
	for _, item := range items {
		p := product.Product{
			ID:           item.ID,
			Name:         item.Name,
			Image:        item.Image,
			Brand:        item.Brand,
			Category:     item.Category,
			Description:  item.Description,
			Price:        item.Price,
			CountInStock: item.CountInStock,
			Rating:       decimal.NewFromFloat(item.Rating),
			NumReviews:   item.NumReviews,
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		g.Go(func() error {
			if err := repo.Upsert(ctx, &p); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return seedCategories(ctx, repo, items)
}

// seedCategories derives the category set from the seeded products.
func seedCategories(ctx context.Context, repo *repository.ProductRepository, items []productJSON) error {
	seen := make(map[string]struct{})
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		slug := slugify(item.Category)
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		if err := repo.UpsertCategory(ctx, product.Category{Slug: slug, Name: item.Category}); err != nil {
			return errors.Wrapf(err, "upsert category %s", slug)
		}
		slog.Info("upserted category", slog.String("slug", slug))
	}
	return nil
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, email, password string) error {
	slog.Info("seeding admin user", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	err = repo.Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Name:         "Admin",
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, user.ErrEmailTaken) {
		slog.Info("admin user already exists, skipping")
		return nil
	}
	return err
}

// readProductsFile reads and parses the seed file, transparently decompressing
// gzip when the path ends in .gz.
func readProductsFile(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var items []productJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return items, nil
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), "-")
	return s
}
