package user

import (
	"context"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
)

type UpdateInput struct {
	Username     *string
	Email        *string
	PasswordHash *string
	IsAdmin      *bool
}

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
