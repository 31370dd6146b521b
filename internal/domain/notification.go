package domain

import (
	"context"
	"time"
)

type NotificationScope string

const (
	NotificationScopeUser  NotificationScope = "user"
	NotificationScopeAdmin NotificationScope = "admin"
)

type NotificationType string

const (
	NotificationTypeOrder     NotificationType = "order"
	NotificationTypeSystem    NotificationType = "system"
	NotificationTypePromotion NotificationType = "promotion"
	NotificationTypeAdmin     NotificationType = "admin"
)

type Notification struct {
	ID          string            `json:"id"`
	Scope       NotificationScope `json:"scope"`
	UserID      *string           `json:"userId,omitempty"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Type        NotificationType  `json:"type"`
	ReferenceID string            `json:"referenceId,omitempty"`
	IsRead      bool              `json:"isRead"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func UserNotification(userID, title, message, referenceID string) Notification {
	return Notification{
		Scope:       NotificationScopeUser,
		UserID:      &userID,
		Title:       title,
		Message:     message,
		Type:        NotificationTypeOrder,
		ReferenceID: referenceID,
	}
}

func AdminNotification(title, message, referenceID string) Notification {
	return Notification{
		Scope:       NotificationScopeAdmin,
		Title:       title,
		Message:     message,
		Type:        NotificationTypeOrder,
		ReferenceID: referenceID,
	}
}

// NotificationPort is the outbound side the core publishes through. Delivery
// is best effort; callers log failures and carry on.
type NotificationPort interface {
	Publish(ctx context.Context, n Notification) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	ListAdmin(ctx context.Context, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
