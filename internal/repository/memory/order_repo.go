package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/google/uuid"
)

type OrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	history map[string][]domain.OrderHistory
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:  make(map[string]*domain.Order),
		history: make(map[string][]domain.OrderHistory),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, ok := r.orders[order.ID]; ok {
		return errs.NewValidationError("id", "Order already exists")
	}
	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber {
			return errs.NewValidationError("orderNumber", "Order number already exists")
		}
	}
	order.Version = 1
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("Order", id)
	}
	return o.Clone(), nil
}

// GetByIDForUpdate relies on TxManager for exclusion.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, _, err := r.List(ctx, domain.OrderFilter{UserID: userID})
	return orders, err
}

func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.RLock()
	matched := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if matchesFilter(o, filter) {
			matched = append(matched, *o.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start >= len(matched) {
			return []domain.Order{}, total, nil
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matchesFilter(o *domain.Order, f domain.OrderFilter) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(f.Search)) {
		return false
	}
	switch f.View {
	case domain.OrderViewCancelRequests:
		return o.Cancellation.IsPending()
	case domain.OrderViewReturnRequests:
		return o.Return.IsPending()
	case domain.OrderViewPendingRefunds:
		return o.Refund.Status == domain.RefundStatusPending || o.Refund.Status == domain.RefundStatusProcessing
	}
	return true
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return errs.NewObjectNotFoundError("Order", order.ID)
	}
	if stored.Version != order.Version {
		return domain.ErrConcurrentUpdate
	}
	order.Version++
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) CountStaleRefunds(ctx context.Context, initiatedBefore time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, o := range r.orders {
		open := o.Refund.Status == domain.RefundStatusPending || o.Refund.Status == domain.RefundStatusProcessing
		if open && o.Refund.InitiatedAt != nil && o.Refund.InitiatedAt.Before(initiatedBefore) {
			n++
		}
	}
	return n, nil
}

func (r *OrderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	r.history[history.OrderID] = append(r.history[history.OrderID], *history)
	return nil
}

func (r *OrderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := r.history[orderID]
	out := make([]domain.OrderHistory, len(h))
	copy(out, h)
	return out, nil
}

// snapshot returns clones of every order; used by the stats repository.
func (r *OrderRepository) snapshot() []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Clone())
	}
	return out
}
