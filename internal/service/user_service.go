package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"devinventory/internal/auth"
	"devinventory/internal/errors"
	"devinventory/internal/model"
	"devinventory/internal/repository"
)

// UserService handles user registration.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register creates a user with a derived credential hash. A duplicate email
// is rejected and the existing record is left untouched.
func (s *userService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the read above and lose
		// the insert race at the unique email index.
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
