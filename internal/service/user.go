package service

import (
	"context"
	"time"

	"querygate/internal/domain"
)

// UserService manages user accounts.
type UserService struct {
	repo domain.UserRepository
	now  func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// CreateUserInput carries the fields for a new user.
type CreateUserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
}

// Create registers a new user. Requires admin privileges.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	user, err := domain.NewUser(in.Email, in.DisplayName, in.IsAdmin, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a paginated list of users.
func (s *UserService) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}
