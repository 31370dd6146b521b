package usecase

import (
	"context"
	"errors"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"

	"github.com/google/uuid"
)

// transition describes what a domain mutation did to an order.
type transition struct {
	changed bool
	note    string
	// restock is the inventory log reason when stock must be put back.
	restock string
}

// orderStore is the shared write path of the order usecases: lock, mutate,
// versioned update, compensations and audit trail in one transaction.
type orderStore struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	txManager domain.TransactionManager
	notifier  domain.NotificationPort
	metrics   *metrics.Metrics
	now       func() time.Time

	// statsCache holds aggregates derived from orders. Optional.
	statsCache cache.CacheService
}

func newOrderStore(orders domain.OrderRepository, products domain.ProductRepository, txManager domain.TransactionManager, notifier domain.NotificationPort, m *metrics.Metrics) orderStore {
	return orderStore{
		orders:    orders,
		products:  products,
		txManager: txManager,
		notifier:  notifier,
		metrics:   m,
		now:       time.Now,
	}
}

// mutate applies fn to the locked order identified by id. Nothing is written
// when fn fails or reports no change. The returned order is the committed
// state.
func (s *orderStore) mutate(ctx context.Context, id, action, actorID string, fn func(o *domain.Order, now time.Time) (transition, error)) (*domain.Order, transition, error) {
	var (
		order *domain.Order
		tr    transition
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		previous := o.Status
		now := s.now()

		tr, err = fn(o, now)
		if err != nil {
			return err
		}
		order = o
		if !tr.changed {
			return nil
		}

		o.UpdatedAt = now
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}
		if tr.restock != "" {
			if err := s.restoreStock(txCtx, o, tr.restock); err != nil {
				return err
			}
		}
		return s.orders.CreateOrderHistory(txCtx, newHistory(o.ID, action, previous, o.Status, tr.note, actorID, now))
	})

	s.metrics.OrderTransition(action, transitionResult(err))
	if err != nil {
		return nil, transition{}, err
	}
	if tr.changed {
		s.ordersChanged()
	}
	if tr.restock != "" {
		s.metrics.StockRestored(tr.restock)
	}
	return order, tr, nil
}

// ordersChanged drops cached aggregates after a committed order write.
func (s *orderStore) ordersChanged() {
	if s.statsCache == nil {
		return
	}
	for _, key := range cache.OrderDerivedKeys {
		s.statsCache.Delete(key)
	}
}

func (s *orderStore) restoreStock(ctx context.Context, o *domain.Order, reason string) error {
	for _, item := range o.Items {
		if err := s.products.UpdateStock(ctx, item.ProductID, item.Quantity, reason, o.ID); err != nil {
			var notFound *errs.ObjectNotFoundError
			if errors.As(err, &notFound) {
				// Product removed from the catalog since the order was placed.
				logger.WithContext(ctx).Warn().
					Str("order_id", o.ID).
					Str("product_id", item.ProductID).
					Msg("skipping stock restoration for missing product")
				continue
			}
			return err
		}
	}
	return nil
}

// publish delivers notifications after commit. Failures never reach the caller.
func (s *orderStore) publish(ctx context.Context, notifications ...domain.Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notifications {
		if err := s.notifier.Publish(ctx, n); err != nil {
			logger.WithContext(ctx).Warn().
				Err(err).
				Str("title", n.Title).
				Str("reference_id", n.ReferenceID).
				Msg("notification delivery failed")
		}
	}
}

func newHistory(orderID, action string, previous, next domain.OrderStatus, note, actorID string, at time.Time) *domain.OrderHistory {
	h := &domain.OrderHistory{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Action:    action,
		NewStatus: string(next),
		CreatedAt: at,
	}
	if previous != "" {
		p := string(previous)
		h.PreviousStatus = &p
	}
	if note != "" {
		h.Reason = &note
	}
	if actorID != "" {
		h.CreatedBy = &actorID
	}
	return h
}

func transitionResult(err error) string {
	switch errs.KindOf(err) {
	case errs.KindNone:
		return metrics.ResultOK
	case errs.KindValidation, errs.KindInvalidState, errs.KindNotFound:
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
