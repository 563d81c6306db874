package service

import (
	"context"

	"locallisting/internal/models"
	"locallisting/internal/repository"
)

type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, req repository.UpdateUserRequest) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateUser applies the non-nil fields; email is read-only.
func (s *userService) UpdateUser(ctx context.Context, req repository.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Street != nil {
		user.Street = *req.Street
	}
	if req.Zip != nil {
		user.Zip = *req.Zip
	}
	if req.City != nil {
		user.City = *req.City
	}

	if err = s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, duplicateToValidation(err)
	}

	return user, nil
}
