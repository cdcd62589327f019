package category

import (
	"context"
	"errors"
	"strings"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/M-ahmad144/Lymora-Backend/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	return s.repo.Create(ctx, name)
}

func (s *Service) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	return s.repo.UpdateName(ctx, id, name)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}
