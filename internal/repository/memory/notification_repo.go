package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	items []domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return r.filter(limit, func(n domain.Notification) bool {
		return n.Scope == domain.NotificationScopeUser && n.UserID != nil && *n.UserID == userID
	}), nil
}

func (r *NotificationRepository) ListAdmin(ctx context.Context, limit int) ([]domain.Notification, error) {
	return r.filter(limit, func(n domain.Notification) bool {
		return n.Scope == domain.NotificationScopeAdmin
	}), nil
}

func (r *NotificationRepository) filter(limit int, keep func(domain.Notification) bool) []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Notification, 0)
	for _, n := range r.items {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, item := range r.items {
		if !item.IsRead && item.UserID != nil && *item.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		n := &r.items[i]
		if n.ID == id && n.UserID != nil && *n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return errs.NewObjectNotFoundError("Notification", id)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.items {
		item := &r.items[i]
		if !item.IsRead && item.UserID != nil && *item.UserID == userID {
			item.IsRead = true
			n++
		}
	}
	return n, nil
}
