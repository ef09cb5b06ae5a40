package services

import (
	"context"
	"errors"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"
)

type ModerateUserInput struct {
	IsBanned *bool `json:"is_banned"`
	IsAdmin  *bool `json:"is_admin"`
}

type AdminService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ModerateUser(ctx context.Context, userID string, input ModerateUserInput) (*models.User, error)
}

type adminService struct {
	userRepo repositories.UserRepository
	notifier NotificationService
}

func NewAdminService(userRepo repositories.UserRepository, notifier NotificationService) AdminService {
	return &adminService{userRepo: userRepo, notifier: notifier}
}

func (s *adminService) ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetUser returns the moderation view of an account: unlike the public
// profile it keeps email, ban state and admin flag visible.
func (s *adminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminService) ModerateUser(ctx context.Context, userID string, input ModerateUserInput) (*models.User, error) {
	if input.IsBanned == nil && input.IsAdmin == nil {
		return nil, ErrValidationFailed
	}

	if input.IsBanned != nil {
		if err := s.userRepo.SetBanned(ctx, userID, *input.IsBanned); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if *input.IsBanned {
			s.notifier.Notify(ctx, userID, models.NotificationTypeSystem,
				"Account suspended", "Your account has been suspended by a moderator.")
		}
	}
	if input.IsAdmin != nil {
		if err := s.userRepo.SetAdmin(ctx, userID, *input.IsAdmin); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
