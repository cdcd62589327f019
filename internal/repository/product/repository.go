package product

import (
	"context"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SearchInput narrows the paginated listing.
type SearchInput struct {
	Keyword  string
	Page     int
	PageSize int
}

// FilterInput mirrors the filtered-products endpoint: any of the category
// ids, price within [MinPrice, MaxPrice] when set.
type FilterInput struct {
	CategoryIDs []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDs is the batched catalog lookup used by order creation.
	// Unknown ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	Search(ctx context.Context, in SearchInput) ([]domain.Product, int, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListTop(ctx context.Context, limit int) ([]domain.Product, error)
	ListNew(ctx context.Context, limit int) ([]domain.Product, error)
	Filter(ctx context.Context, in FilterInput) ([]domain.Product, error)

	AddReview(ctx context.Context, rv domain.Review) error
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
}
