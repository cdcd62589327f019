package user

import (
	"context"
	"errors"
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

const userColumns = `id::text, username, email, password_hash, is_admin, created_at`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (username, email, password_hash, is_admin)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `
`
	var out domain.User
	err := r.pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, u.IsAdmin).
		Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.IsAdmin, &out.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create email=%s error=%v", u.Email, err)
		return nil, err
	}
	r.logger.Printf("user repo: created id=%s email=%s", out.ID, out.Email)
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, q, email)
}

func (r *postgresRepo) getOne(ctx context.Context, q, arg string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("user repo: get arg=%s error=%v", arg, err)
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("user repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("user repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	const q = `
UPDATE users
SET username = COALESCE($2, username),
    email = COALESCE($3, email),
    password_hash = COALESCE($4, password_hash),
    is_admin = COALESCE($5, is_admin)
WHERE id = $1
RETURNING ` + userColumns + `
`
	var u domain.User
	err := r.pool.QueryRow(ctx, q, id, in.Username, in.Email, in.PasswordHash, in.IsAdmin).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: update id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("user repo: updated id=%s", id)
	return &u, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		r.logger.Printf("user repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: deleted id=%s", id)
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
