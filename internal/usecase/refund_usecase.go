package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"
)

// RefundUsecase advances the refund ledger of cancelled and returned orders.
type RefundUsecase struct {
	orderStore
}

func NewRefundUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, txManager domain.TransactionManager, notifier domain.NotificationPort, m *metrics.Metrics) *RefundUsecase {
	return &RefundUsecase{orderStore: newOrderStore(orderRepo, productRepo, txManager, notifier, m)}
}

func (u *RefundUsecase) WithClock(now func() time.Time) *RefundUsecase {
	u.now = now
	return u
}

// WithStatsCache clears the cached dashboard and analytics after each write.
func (u *RefundUsecase) WithStatsCache(c cache.CacheService) *RefundUsecase {
	u.statsCache = c
	return u
}

func (u *RefundUsecase) StartRefund(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "refund_started", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := o.StartRefund(); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: "Refund processing started"}, nil
	})
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info().Str("order_id", o.ID).Msg("refund processing started")
	u.publish(ctx, domain.UserNotification(o.UserID, "Refund Processing",
		fmt.Sprintf("Refund of %s for order %s is being processed.", formatAmount(o.Refund.Amount), o.OrderNumber), o.ID))
	return o, nil
}

// CompleteRefund records the payout. It succeeds at most once per order.
func (u *RefundUsecase) CompleteRefund(ctx context.Context, actorID, orderID, transactionID string) (*domain.Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	o, _, err := u.mutate(ctx, orderID, "refund_completed", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := o.CompleteRefund(transactionID, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: "Refund completed"}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", o.ID).
		Float64("amount", o.Refund.Amount).
		Str("transaction_id", o.Refund.TransactionID).
		Msg("refund completed")
	u.publish(ctx, domain.UserNotification(o.UserID, "Refund Completed",
		fmt.Sprintf("Refund of %s for order %s has been processed.", formatAmount(o.Refund.Amount), o.OrderNumber), o.ID))
	return o, nil
}

func (u *RefundUsecase) RejectRefund(ctx context.Context, actorID, orderID, note string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "refund_rejected", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := o.RejectRefund(note, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: o.Refund.AdminNote}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Msg("refund rejected")
	message := fmt.Sprintf("Refund for order %s was rejected.", o.OrderNumber)
	if o.Refund.AdminNote != "" {
		message += " Note: " + o.Refund.AdminNote
	}
	u.publish(ctx, domain.UserNotification(o.UserID, "Refund Rejected", message, o.ID))
	return o, nil
}
