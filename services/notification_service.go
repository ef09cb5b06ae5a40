package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"
	"github.com/google/uuid"
)

// NotificationService persists notifications and pushes them to the user's
// room on the hub. Persistence failure is an error; push failure is not, the
// row is still there for the next poll.
type NotificationService interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, body string)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo   repositories.NotificationRepository
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, hub *realtime.Hub, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, hub: hub, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, title, body string) {
	n := &models.Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(realtime.UserRoom(userID), realtime.Envelope{
		Type: realtime.EventNotification,
		Data: n,
	})
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
