package category

import (
	"context"
	"errors"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, name string) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
RETURNING id::text, name, created_at
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const q = `SELECT id::text, name, created_at FROM categories WHERE id = $1`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id::text, name, created_at FROM categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) UpdateName(ctx context.Context, id, name string) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $2
WHERE id = $1
RETURNING id::text, name, created_at
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM categories WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
