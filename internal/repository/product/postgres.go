package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, name, COALESCE(image, ''), brand, COALESCE(category_id::text, ''), COALESCE(description, ''), price, quantity, count_in_stock, rating, num_reviews, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Brand, &p.CategoryID, &p.Description,
		&p.Price, &p.Quantity, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) collect(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, image, brand, category_id, description, price, quantity, count_in_stock)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, '')::uuid, NULLIF($5, ''), $6, $7, $8)
RETURNING ` + productColumns + `
`
	out, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Name, p.Image, p.Brand, p.CategoryID, p.Description, p.Price, p.Quantity, p.CountInStock))
	if err != nil {
		r.logger.Printf("product repo: create name=%s error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%s", out.ID, out.Name)
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2,
    image = NULLIF($3, ''),
    brand = $4,
    category_id = NULLIF($5, '')::uuid,
    description = NULLIF($6, ''),
    price = $7,
    quantity = $8,
    count_in_stock = $9
WHERE id = $1
RETURNING ` + productColumns + `
`
	out, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Image, p.Brand, p.CategoryID, p.Description, p.Price, p.Quantity, p.CountInStock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM products WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: find by ids count=%d error=%v", len(ids), err)
		return nil, err
	}
	result, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: find by ids requested=%d found=%d", len(ids), len(result))
	return result, nil
}

func (r *postgresRepo) Search(ctx context.Context, in SearchInput) ([]domain.Product, int, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = 9
	}
	keyword := "%" + in.Keyword + "%"

	const countQ = `SELECT count(*) FROM products WHERE ($1 = '%%' OR name ILIKE $1)`
	var total int
	if err := r.pool.QueryRow(ctx, countQ, keyword).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	// Without a keyword the listing surfaces the best rated, most reviewed
	// products first.
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '%%' OR name ILIKE $1)
ORDER BY CASE WHEN $1 = '%%' THEN rating END DESC NULLS LAST,
         CASE WHEN $1 = '%%' THEN num_reviews END DESC NULLS LAST,
         created_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.pool.Query(ctx, q, keyword, in.PageSize, in.PageSize*(in.Page-1))
	if err != nil {
		r.logger.Printf("product repo: search keyword=%q error=%v", in.Keyword, err)
		return nil, 0, err
	}
	result, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) ListTop(ctx context.Context, limit int) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY rating DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) ListNew(ctx context.Context, limit int) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) Filter(ctx context.Context, in FilterInput) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE (cardinality($1::uuid[]) = 0 OR category_id = ANY($1::uuid[]))
  AND ($2::numeric IS NULL OR price >= $2)
  AND ($3::numeric IS NULL OR price <= $3)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, in.CategoryIDs, in.MinPrice, in.MaxPrice)
	if err != nil {
		r.logger.Printf("product repo: filter categories=%d error=%v", len(in.CategoryIDs), err)
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) AddReview(ctx context.Context, rv domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertQ = `
INSERT INTO reviews (product_id, user_id, name, rating, comment)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
`
	if _, err := tx.Exec(ctx, insertQ, rv.ProductID, rv.UserID, rv.Name, rv.Rating, rv.Comment); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	// Keep the denormalized rating in step with the review rows.
	const rollupQ = `
UPDATE products p
SET num_reviews = agg.cnt,
    rating = agg.avg
FROM (SELECT count(*) AS cnt, COALESCE(avg(rating), 0) AS avg FROM reviews WHERE product_id = $1) agg
WHERE p.id = $1
`
	if _, err := tx.Exec(ctx, rollupQ, rv.ProductID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("product repo: review added product_id=%s user_id=%s", rv.ProductID, rv.UserID)
	return nil
}

func (r *postgresRepo) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	const q = `
SELECT id::text, product_id::text, user_id::text, name, rating, COALESCE(comment, ''), created_at
FROM reviews
WHERE product_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
