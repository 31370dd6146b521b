package notify

import (
	"context"

	"orderflow-backend/internal/domain"
)

// StoreSink persists notifications so they show up in the user and admin
// inboxes.
type StoreSink struct {
	repo domain.NotificationRepository
}

func NewStoreSink(repo domain.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Publish(ctx context.Context, n domain.Notification) error {
	return s.repo.Create(ctx, &n)
}
