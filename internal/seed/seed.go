package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Brand       string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Stock       int
	Category    string
}

// Apply inserts basic seed data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, adminPassword string) error {
	if err := ensureAdmin(ctx, pool, adminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	categories := []string{"Electronics", "Clothing", "Home"}
	categoryIDs := make(map[string]string, len(categories))
	for _, name := range categories {
		id, err := ensureCategory(ctx, pool, name)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", name, err)
		}
		categoryIDs[name] = id
	}

	products := []productSeed{
		{
			Name:        "Wireless Headphones",
			Brand:       "Soundline",
			Description: "Over-ear bluetooth headphones with 30h battery",
			Price:       decimal.NewFromFloat(89.99),
			Quantity:    50,
			Stock:       50,
			Category:    "Electronics",
		},
		{
			Name:        "Cotton T-Shirt",
			Brand:       "Plainwear",
			Description: "Soft cotton tee in classic fit",
			Price:       decimal.NewFromFloat(19.99),
			Quantity:    200,
			Stock:       200,
			Category:    "Clothing",
		},
		{
			Name:        "Ceramic Mug",
			Brand:       "Kiln & Co",
			Description: "Stoneware mug, dishwasher safe",
			Price:       decimal.NewFromFloat(12.50),
			Quantity:    120,
			Stock:       120,
			Category:    "Home",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (username, email, password_hash, is_admin)
VALUES ('admin', 'admin@lymora.local', $1, TRUE)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, string(hashed))
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (name, brand, category_id, description, price, quantity, count_in_stock)
SELECT $1, $2, $3::uuid, $4, $5, $6, $7
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1 AND brand = $2)
`
	_, err := pool.Exec(ctx, q, p.Name, p.Brand, categoryID, p.Description, p.Price, p.Quantity, p.Stock)
	return err
}
