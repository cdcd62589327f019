package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/M-ahmad144/Lymora-Backend/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_FindByIDs(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	lamp := createProduct(ctx, t, repo, "Desk Lamp", "29.99")
	mug := createProduct(ctx, t, repo, "Mug", "7.50")

	found, err := repo.FindByIDs(ctx, []string{lamp.ID, mug.ID, "00000000-0000-0000-0000-000000000000"})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	// Unknown ids are simply absent, not an error.
	if len(found) != 2 {
		t.Fatalf("found %d products, want 2", len(found))
	}
	prices := map[string]string{}
	for _, p := range found {
		prices[p.Name] = p.Price.StringFixed(2)
	}
	if prices["Desk Lamp"] != "29.99" || prices["Mug"] != "7.50" {
		t.Fatalf("unexpected catalog prices %v", prices)
	}
}

func TestPostgres_Search(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	createProduct(ctx, t, repo, "Desk Lamp", "29.99")
	createProduct(ctx, t, repo, "Floor Lamp", "89.99")
	createProduct(ctx, t, repo, "Mug", "7.50")

	products, total, err := repo.Search(ctx, SearchInput{Keyword: "lamp", Page: 1, PageSize: 9})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("search lamp: total=%d len=%d, want 2/2", total, len(products))
	}

	products, total, err = repo.Search(ctx, SearchInput{Keyword: "", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 3 || len(products) != 2 {
		t.Fatalf("empty keyword: total=%d len=%d, want 3/2", total, len(products))
	}
}

func TestPostgres_AddReviewUpdatesAggregates(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	lamp := createProduct(ctx, t, repo, "Desk Lamp", "29.99")
	alice := insertUser(ctx, t, pool, "alice@example.com")
	bob := insertUser(ctx, t, pool, "bob@example.com")

	if err := repo.AddReview(ctx, domain.Review{ProductID: lamp.ID, UserID: alice, Name: "alice", Rating: 5}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if err := repo.AddReview(ctx, domain.Review{ProductID: lamp.ID, UserID: bob, Name: "bob", Rating: 2}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	err := repo.AddReview(ctx, domain.Review{ProductID: lamp.ID, UserID: alice, Name: "alice", Rating: 1})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate review: expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, lamp.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NumReviews != 2 {
		t.Fatalf("numReviews = %d, want 2", got.NumReviews)
	}
	if got.Rating.StringFixed(2) != "3.50" {
		t.Fatalf("rating = %s, want 3.50", got.Rating)
	}
}

func createProduct(ctx context.Context, t *testing.T, repo Repository, name, price string) *domain.Product {
	t.Helper()
	created, err := repo.Create(ctx, domain.Product{
		Name:  name,
		Brand: "Acme",
		Price: decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return created
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ('tester', $1, 'x') RETURNING id::text`,
		email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, reviews, products, categories, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
