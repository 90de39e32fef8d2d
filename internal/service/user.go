package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/repository"
)

var (
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrUserEmailExists    = repository.ErrUserEmailExists
	ErrUserUsernameExists = repository.ErrUserUsernameExists
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// UpdateUser applies patch to the user's own record. A new password is
// hashed before it is stored.
func (s *UserService) UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if patch.Password != nil {
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hashPassword -> %w", err)
		}
		patch.Password = &hashed
	}
	patch.Apply(&user)

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteUser removes the user together with every item they own and all
// change log rows tied to them.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
