package usecase

import (
	"context"
	"fmt"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"
)

const DefaultReturnWindow = 7 * 24 * time.Hour

// WorkflowUsecase runs the customer cancel and return requests and their
// admin decisions.
type WorkflowUsecase struct {
	orderStore
	returnWindow time.Duration
}

func NewWorkflowUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, txManager domain.TransactionManager, notifier domain.NotificationPort, m *metrics.Metrics, returnWindow time.Duration) *WorkflowUsecase {
	if returnWindow < 0 {
		returnWindow = DefaultReturnWindow
	}
	return &WorkflowUsecase{
		orderStore:   newOrderStore(orderRepo, productRepo, txManager, notifier, m),
		returnWindow: returnWindow,
	}
}

func (u *WorkflowUsecase) WithClock(now func() time.Time) *WorkflowUsecase {
	u.now = now
	return u
}

// WithStatsCache clears the cached dashboard and analytics after each write.
func (u *WorkflowUsecase) WithStatsCache(c cache.CacheService) *WorkflowUsecase {
	u.statsCache = c
	return u
}

// owned hides orders of other users behind a not found error.
func owned(o *domain.Order, userID string) error {
	if o.UserID != userID {
		return errs.NewObjectNotFoundError("Order", o.ID)
	}
	return nil
}

func (u *WorkflowUsecase) RequestCancel(ctx context.Context, userID, orderID, reason string, details *domain.RefundDetails) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "cancel_requested", userID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := owned(o, userID); err != nil {
			return transition{}, err
		}
		if err := o.RequestCancel(reason, details, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: o.Cancellation.Reason}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Msg("cancel requested")
	u.publish(ctx, domain.AdminNotification("Cancel Request Received",
		fmt.Sprintf("Order %s cancel requested by user. Reason: %s", o.OrderNumber, o.Cancellation.Reason), o.ID))
	return o, nil
}

func (u *WorkflowUsecase) RequestReturn(ctx context.Context, userID, orderID string, reason domain.ReturnReason, details *domain.RefundDetails) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "return_requested", userID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := owned(o, userID); err != nil {
			return transition{}, err
		}
		if err := o.RequestReturn(reason, details, u.returnWindow, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: string(reason)}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Str("reason", string(reason)).Msg("return requested")
	u.publish(ctx, domain.AdminNotification("Return Request Received",
		fmt.Sprintf("Order %s return requested. Reason: %s", o.OrderNumber, reason), o.ID))
	return o, nil
}

// ApproveCancel cancels the order, puts its stock back unless that already
// happened, and opens a refund for paid orders.
func (u *WorkflowUsecase) ApproveCancel(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "cancel_approved", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		restore, err := o.ApproveCancel(now)
		if err != nil {
			return transition{}, err
		}
		tr := transition{changed: true, note: "Cancel request approved"}
		if restore {
			tr.restock = domain.StockReasonCancelRestock
		}
		return tr, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", o.ID).
		Str("refund_status", string(o.Refund.Status)).
		Msg("cancel approved")
	u.publish(ctx, domain.UserNotification(o.UserID, "Cancel Request Approved",
		fmt.Sprintf("Your cancel request for order %s has been approved.", o.OrderNumber), o.ID))
	return o, nil
}

func (u *WorkflowUsecase) RejectCancel(ctx context.Context, actorID, orderID, response string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "cancel_rejected", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := o.RejectCancel(response, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: o.Cancellation.AdminResponse}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Msg("cancel rejected")
	u.publish(ctx, domain.UserNotification(o.UserID, "Cancel Request Rejected",
		fmt.Sprintf("Your cancel request for order %s has been rejected. Reason: %s", o.OrderNumber, o.Cancellation.AdminResponse), o.ID))
	return o, nil
}

func (u *WorkflowUsecase) ApproveReturn(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "return_approved", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		restore, err := o.ApproveReturn(now)
		if err != nil {
			return transition{}, err
		}
		tr := transition{changed: true, note: "Return request approved"}
		if restore {
			tr.restock = domain.StockReasonReturnRestock
		}
		return tr, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", o.ID).
		Str("refund_status", string(o.Refund.Status)).
		Msg("return approved")
	message := fmt.Sprintf("Your return request for order %s has been approved.", o.OrderNumber)
	if o.Refund.Status == domain.RefundStatusPending {
		message += " Refund will be processed soon."
	}
	u.publish(ctx, domain.UserNotification(o.UserID, "Return Request Approved", message, o.ID))
	return o, nil
}

func (u *WorkflowUsecase) RejectReturn(ctx context.Context, actorID, orderID, response string) (*domain.Order, error) {
	o, _, err := u.mutate(ctx, orderID, "return_rejected", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		if err := o.RejectReturn(response, now); err != nil {
			return transition{}, err
		}
		return transition{changed: true, note: o.Return.AdminResponse}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Msg("return rejected")
	u.publish(ctx, domain.UserNotification(o.UserID, "Return Request Rejected",
		fmt.Sprintf("Your return request for order %s has been rejected. Reason: %s", o.OrderNumber, o.Return.AdminResponse), o.ID))
	return o, nil
}
