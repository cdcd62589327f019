package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	userrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAdminDelete refuses deletion of admin accounts.
	ErrAdminDelete = errors.New("cannot delete admin user")
	// ErrWrongPassword is returned when the current password check fails
	// during a password change.
	ErrWrongPassword = errors.New("incorrect current password")
)

// Service handles signup/login and profile management.
type Service struct {
	repo   userrepo.Repository
	tokens *tokenManager
}

func New(repo userrepo.Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:   repo,
		tokens: newTokenManager(jwtSecret, tokenTTL),
	}
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user and issues an access token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	password := strings.TrimSpace(in.Password)
	if username == "" || email == "" || password == "" {
		return nil, "", errors.New("please fill all the inputs")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login validates credentials and returns the user plus a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

type UpdateProfileInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

// UpdateProfile lets a user change their own username/email, and their
// password after re-proving the current one.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := userrepo.UpdateInput{}
	if v := strings.TrimSpace(in.Username); v != "" {
		update.Username = &v
	}
	if v := strings.TrimSpace(strings.ToLower(in.Email)); v != "" {
		update.Email = &v
	}
	if password := strings.TrimSpace(in.Password); password != "" {
		if strings.TrimSpace(in.CurrentPassword) == "" {
			return nil, errors.New("current password is required to update password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		update.PasswordHash = &hash
	}

	return s.repo.Update(ctx, userID, update)
}

type AdminUpdateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  *bool  `json:"isAdmin"`
}

// AdminUpdate lets an admin edit any account, including the admin flag.
func (s *Service) AdminUpdate(ctx context.Context, id string, in AdminUpdateInput) (*domain.User, error) {
	update := userrepo.UpdateInput{IsAdmin: in.IsAdmin}
	if v := strings.TrimSpace(in.Username); v != "" {
		update.Username = &v
	}
	if v := strings.TrimSpace(strings.ToLower(in.Email)); v != "" {
		update.Email = &v
	}
	return s.repo.Update(ctx, id, update)
}

// Delete removes a non-admin account.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		return ErrAdminDelete
	}
	return s.repo.Delete(ctx, id)
}
