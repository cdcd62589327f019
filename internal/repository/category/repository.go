package category

import (
	"context"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}
