package service

import (
	"context"

	"madrasa-backend/internal/repository"
)

type notificationService struct {
	repos repository.Repositories
}

func NewNotificationService(repos repository.Repositories) NotificationService {
	return &notificationService{repos: repos}
}

func (s *notificationService) List(ctx context.Context, userID int32, limit, offset int32) (*NotificationList, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notes, unread, err := s.repos.Notification.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Notifications: notes, UnreadCount: unread}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID int32) error {
	return s.repos.Notification.MarkAsRead(ctx, id, userID)
}
