package order

import (
	"context"
	"errors"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrAlreadyPaid signals a mark-paid on an order whose paid flag is
	// already set. The paid transition happens at most once.
	ErrAlreadyPaid = errors.New("order already paid")
	// ErrAlreadyDelivered is the delivered-side equivalent.
	ErrAlreadyDelivered = errors.New("order already delivered")
)

type Repository interface {
	// Create persists the order and its items atomically.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// MarkPaid flips is_paid false->true with a conditional update.
	// Returns ErrAlreadyPaid when the flag was already set.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, pr domain.PaymentResult) (*domain.Order, error)
	// MarkDelivered flips is_delivered false->true, same contract.
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error)

	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesByDate(ctx context.Context) ([]domain.DailySales, error)
}
