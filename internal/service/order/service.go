package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	orderrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/order"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoItems is returned when a creation request carries no line items.
	ErrNoItems = errors.New("no order items")
)

// ValidationError reports a malformed creation request. The reason is safe
// to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundProductError names the catalog reference that broke order creation.
type NotFoundProductError struct {
	ProductID string
}

func (e *NotFoundProductError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

func (e *NotFoundProductError) Unwrap() error { return domain.ErrNotFound }

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time, pr domain.PaymentResult) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error)
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesByDate(ctx context.Context) ([]domain.DailySales, error)
}

// catalog is the read-only Catalog Store dependency; order creation never
// trusts prices from anywhere else.
type catalog interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type Service struct {
	repo    orderRepo
	catalog catalog
	now     func() time.Time
}

func New(repo orderrepo.Repository, catalog catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// ItemInput is one client-submitted cart line. Price is display-only and is
// replaced by the catalog price during creation.
type ItemInput struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type CreateInput struct {
	Items           []ItemInput    `json:"orderItems"`
	ShippingAddress map[string]any `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// Create validates the submitted cart against the catalog, recomputes all
// prices server-side and persists the order. Any missing product rejects
// the whole order; nothing is written in that case.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	if len(in.ShippingAddress) == 0 {
		return nil, &ValidationError{Reason: "shipping address is required"}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, &ValidationError{Reason: "payment method is required"}
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid quantity %d for product %s", item.Quantity, item.ProductID)}
		}
	}

	ids := lo.Uniq(lo.Map(in.Items, func(i ItemInput, _ int) string { return i.ProductID }))
	catalogProducts, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	byID := lo.KeyBy(catalogProducts, func(p domain.Product) string { return p.ID })

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, &NotFoundProductError{ProductID: item.ProductID}
		}
		name := item.Name
		if name == "" {
			name = product.Name
		}
		image := item.Image
		if image == "" {
			image = product.Image
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      name,
			Image:     image,
			Quantity:  item.Quantity,
			// The client-supplied price is discarded here.
			Price: product.Price,
		})
	}

	prices := CalcPrices(items)

	return s.repo.Create(ctx, domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      prices.ItemsPrice,
		ShippingPrice:   prices.ShippingPrice,
		TaxPrice:        prices.TaxPrice,
		TotalPrice:      prices.TotalPrice,
	})
}

// PaymentInput mirrors the gateway confirmation payload.
type PaymentInput struct {
	TransactionID string
	Status        string
	UpdateTime    string
	PayerEmail    string
}

// MarkPaid applies the one-way paid transition. A second call fails with
// orderrepo.ErrAlreadyPaid rather than overwriting the settlement record.
func (s *Service) MarkPaid(ctx context.Context, id string, in PaymentInput) (*domain.Order, error) {
	return s.repo.MarkPaid(ctx, id, s.now().UTC(), domain.PaymentResult{
		TransactionID: in.TransactionID,
		Status:        in.Status,
		UpdateTime:    in.UpdateTime,
		PayerEmail:    in.PayerEmail,
	})
}

// MarkDelivered applies the one-way delivered transition. It does not care
// whether the order has been paid.
func (s *Service) MarkDelivered(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.MarkDelivered(ctx, id, s.now().UTC())
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalSales(ctx)
}

func (s *Service) SalesByDate(ctx context.Context) ([]domain.DailySales, error) {
	return s.repo.SalesByDate(ctx)
}
