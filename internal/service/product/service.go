package product

import (
	"context"
	"errors"
	"strings"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	productrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/product"
	"github.com/shopspring/decimal"
)

// ErrAlreadyReviewed is returned when a user reviews the same product twice.
var ErrAlreadyReviewed = errors.New("product already reviewed")

const (
	defaultPageSize = 9
	topLimit        = 4
	newLimit        = 5
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	CategoryID   string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CountInStock int             `json:"countInStock"`
}

func validate(in Input) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(in.Brand) == "":
		return errors.New("brand is required")
	case strings.TrimSpace(in.Description) == "":
		return errors.New("description is required")
	case in.Price.IsZero():
		return errors.New("price is required")
	case strings.TrimSpace(in.CategoryID) == "":
		return errors.New("category is required")
	case in.Quantity == 0:
		return errors.New("quantity is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Product{
		Name:         in.Name,
		Image:        in.Image,
		Brand:        in.Brand,
		CategoryID:   in.CategoryID,
		Description:  in.Description,
		Price:        in.Price,
		Quantity:     in.Quantity,
		CountInStock: in.CountInStock,
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, domain.Product{
		ID:           id,
		Name:         in.Name,
		Image:        in.Image,
		Brand:        in.Brand,
		CategoryID:   in.CategoryID,
		Description:  in.Description,
		Price:        in.Price,
		Quantity:     in.Quantity,
		CountInStock: in.CountInStock,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Get returns one product with its reviews attached.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews
	return p, nil
}

// SearchPage is one page of the keyword listing.
type SearchPage struct {
	Products []domain.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

func (s *Service) Search(ctx context.Context, keyword string, page int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}
	products, total, err := s.repo.Search(ctx, productrepo.SearchInput{
		Keyword:  strings.TrimSpace(keyword),
		Page:     page,
		PageSize: defaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	pages := (total + defaultPageSize - 1) / defaultPageSize
	return &SearchPage{Products: products, Page: page, Pages: pages}, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListTop(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListTop(ctx, topLimit)
}

func (s *Service) ListNew(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListNew(ctx, newLimit)
}

type FilterInput struct {
	Checked []string          `json:"checked"`
	Radio   []decimal.Decimal `json:"radio"`
}

func (s *Service) Filter(ctx context.Context, in FilterInput) ([]domain.Product, error) {
	filter := productrepo.FilterInput{CategoryIDs: in.Checked}
	if len(in.Radio) == 2 {
		filter.MinPrice = &in.Radio[0]
		filter.MaxPrice = &in.Radio[1]
	}
	return s.repo.Filter(ctx, filter)
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview records one review per user per product and refreshes the
// product's aggregate rating.
func (s *Service) AddReview(ctx context.Context, productID string, user domain.User, in ReviewInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	err := s.repo.AddReview(ctx, domain.Review{
		ProductID: productID,
		UserID:    user.ID,
		Name:      user.Username,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return ErrAlreadyReviewed
	}
	return err
}
