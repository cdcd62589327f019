package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
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

const orderColumns = `o.id::text, o.user_id::text, o.shipping_address, o.payment_method,
o.items_price, o.shipping_price, o.tax_price, o.total_price,
o.is_paid, o.paid_at, o.payment_id, o.payment_status, o.payment_update_time, o.payer_email,
o.is_delivered, o.delivered_at, o.created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                               domain.Order
		paymentID, status, updT, payerE *string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &paymentID, &status, &updT, &payerE,
		&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if paymentID != nil || status != nil || updT != nil || payerE != nil {
		o.PaymentResult = &domain.PaymentResult{
			TransactionID: lo.FromPtr(paymentID),
			Status:        lo.FromPtr(status),
			UpdateTime:    lo.FromPtr(updT),
			PayerEmail:    lo.FromPtr(payerE),
		}
	}
	return &o, nil
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertQ = `
INSERT INTO orders (user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, is_paid, is_delivered, created_at
`
	out := o
	err = tx.QueryRow(ctx, insertQ, o.UserID, o.ShippingAddress, o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice).
		Scan(&out.ID, &out.IsPaid, &out.IsDelivered, &out.CreatedAt)
	if err != nil {
		r.logger.Printf("order repo: insert user_id=%s error=%v", o.UserID, err)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	const itemQ = `
INSERT INTO order_items (order_id, product_id, name, image, qty, price)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
RETURNING id::text
`
	items := make([]domain.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		saved := item
		if err := tx.QueryRow(ctx, itemQ, out.ID, item.ProductID, item.Name, item.Image, item.Quantity, item.Price).Scan(&saved.ID); err != nil {
			return nil, fmt.Errorf("insert order item product_id=%s: %w", item.ProductID, err)
		}
		items = append(items, saved)
	}
	out.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	r.logger.Printf("order repo: created id=%s user_id=%s items=%d total=%s", out.ID, out.UserID, len(out.Items), out.TotalPrice.StringFixed(2))
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `, u.username, u.email
FROM orders o
JOIN users u ON u.id = o.user_id
WHERE o.id = $1
`
	row := r.pool.QueryRow(ctx, q, id)

	var (
		o                               domain.Order
		paymentID, status, updT, payerE *string
		username, email                 string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &paymentID, &status, &updT, &payerE,
		&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt, &username, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("order repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	if paymentID != nil || status != nil || updT != nil || payerE != nil {
		o.PaymentResult = &domain.PaymentResult{
			TransactionID: lo.FromPtr(paymentID),
			Status:        lo.FromPtr(status),
			UpdateTime:    lo.FromPtr(updT),
			PayerEmail:    lo.FromPtr(payerE),
		}
	}
	o.Owner = &domain.OrderOwner{ID: o.UserID, Username: username, Email: email}

	items, err := r.listItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `, u.username
FROM orders o
JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var (
			o                               domain.Order
			paymentID, status, updT, payerE *string
			username                        string
		)
		err := rows.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod,
			&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
			&o.IsPaid, &o.PaidAt, &paymentID, &status, &updT, &payerE,
			&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt, &username)
		if err != nil {
			return nil, err
		}
		if paymentID != nil || status != nil || updT != nil || payerE != nil {
			o.PaymentResult = &domain.PaymentResult{
				TransactionID: lo.FromPtr(paymentID),
				Status:        lo.FromPtr(status),
				UpdateTime:    lo.FromPtr(updT),
				PayerEmail:    lo.FromPtr(payerE),
			}
		}
		o.Owner = &domain.OrderOwner{ID: o.UserID, Username: username}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachItems(ctx, result)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachItems(ctx, result)
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) ([]domain.Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}
	ids := lo.Map(orders, func(o domain.Order, _ int) string { return o.ID })
	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, name, COALESCE(image, ''), qty, price
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			item    domain.OrderItem
			orderID string
		)
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Name, &item.Image, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}
	return result, rows.Err()
}

func (r *postgresRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time, pr domain.PaymentResult) (*domain.Order, error) {
	const q = `
UPDATE orders
SET is_paid = TRUE,
    paid_at = $2,
    payment_id = $3,
    payment_status = $4,
    payment_update_time = $5,
    payer_email = $6
WHERE id = $1 AND is_paid = FALSE
`
	tag, err := r.pool.Exec(ctx, q, id, paidAt, pr.TransactionID, pr.Status, pr.UpdateTime, pr.PayerEmail)
	if err != nil {
		r.logger.Printf("order repo: mark paid id=%s error=%v", id, err)
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if err := r.explainNoTransition(ctx, id, "is_paid"); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyPaid
	}
	r.logger.Printf("order repo: marked paid id=%s txn=%s", id, pr.TransactionID)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error) {
	const q = `
UPDATE orders
SET is_delivered = TRUE,
    delivered_at = $2
WHERE id = $1 AND is_delivered = FALSE
`
	tag, err := r.pool.Exec(ctx, q, id, deliveredAt)
	if err != nil {
		r.logger.Printf("order repo: mark delivered id=%s error=%v", id, err)
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if err := r.explainNoTransition(ctx, id, "is_delivered"); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDelivered
	}
	r.logger.Printf("order repo: marked delivered id=%s", id)
	return r.GetByID(ctx, id)
}

// explainNoTransition distinguishes a missing order from one whose flag was
// already set when a conditional update touched no rows.
func (r *postgresRepo) explainNoTransition(ctx context.Context, id, flag string) error {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, flag)
	var set bool
	if err := r.pool.QueryRow(ctx, q, id).Scan(&set); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	const q = `SELECT count(*) FROM orders`
	var n int64
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(sum(total_price), 0) FROM orders`
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, q).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *postgresRepo) SalesByDate(ctx context.Context) ([]domain.DailySales, error) {
	const q = `
SELECT to_char(paid_at, 'YYYY-MM-DD') AS day, sum(total_price)
FROM orders
WHERE is_paid = TRUE
GROUP BY day
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DailySales
	for rows.Next() {
		var bucket domain.DailySales
		if err := rows.Scan(&bucket.Date, &bucket.TotalSales); err != nil {
			return nil, err
		}
		result = append(result, bucket)
	}
	return result, rows.Err()
}
