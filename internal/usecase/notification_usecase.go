package usecase

import (
	"context"

	"orderflow-backend/internal/domain"
)

const defaultNotificationLimit = 50

type NotificationUsecase struct {
	repo domain.NotificationRepository
}

func NewNotificationUsecase(repo domain.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{repo: repo}
}

type Inbox struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return defaultNotificationLimit
	}
	return limit
}

func (u *NotificationUsecase) Inbox(ctx context.Context, userID string, limit int) (*Inbox, error) {
	items, err := u.repo.ListForUser(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	unread, err := u.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: items, UnreadCount: unread}, nil
}

func (u *NotificationUsecase) ListAdmin(ctx context.Context, limit int) ([]domain.Notification, error) {
	return u.repo.ListAdmin(ctx, clampLimit(limit))
}

// MarkRead only touches notifications owned by userID.
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, id string) error {
	return u.repo.MarkRead(ctx, id, userID)
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return u.repo.MarkAllRead(ctx, userID)
}
