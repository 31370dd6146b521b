package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaidOrderCancelRefundFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.placePaid(t)
	require.Equal(t, 8, f.stock(t, "p1"))

	details := &domain.RefundDetails{RefundMethod: domain.RefundMethodUPI, UPIID: "asha@upi"}
	_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "ordered by mistake", details)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cancel Request Received"}, f.notes.titles())

	f.now = t0.Add(time.Hour)
	got, err := f.workflow.ApproveCancel(ctx, "admin", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, f.now, got.StatusTimestamps[domain.OrderStatusCancelled])
	assert.Equal(t, domain.DecisionApproved, got.Cancellation.Decision)
	assert.Equal(t, domain.RefundStatusPending, got.Refund.Status)
	assert.Equal(t, 350.0, got.Refund.Amount)
	assert.True(t, got.StockRestored)
	assert.Equal(t, 10, f.stock(t, "p1"))
	assert.Equal(t, "Cancel Request Approved", f.notes.last().Title)

	_, err = f.refund.CompleteRefund(ctx, "admin", o.ID, "rf-1")
	assert.Equal(t, "Order not eligible for refund completion", errs.PublicMessage(err))

	_, err = f.refund.StartRefund(ctx, "admin", o.ID)
	require.NoError(t, err)
	got, err = f.refund.CompleteRefund(ctx, "admin", o.ID, "rf-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusCompleted, got.Refund.Status)
	assert.Equal(t, "rf-1", got.Refund.TransactionID)
	assert.Equal(t, "Refund of ₹350.00 for order "+o.OrderNumber+" has been processed.", f.notes.last().Message)

	_, err = f.refund.CompleteRefund(ctx, "admin", o.ID, "rf-2")
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "rf-1", stored.Refund.TransactionID)

	history, err := f.order.GetOrderHistory(ctx, o.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{
		"order_placed", "payment_update", "cancel_requested", "cancel_approved", "refund_started", "refund_completed",
	}, actions)
}

func TestUnpaidCancelNeedsNoRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.place(t, "COD")

	_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "changed plans", nil)
	require.NoError(t, err)
	got, err := f.workflow.ApproveCancel(ctx, "admin", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusNotRequired, got.Refund.Status)

	_, err = f.refund.StartRefund(ctx, "admin", o.ID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestDoubleApproveRestoresStockOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.placePaid(t)
	_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "duplicate", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.workflow.ApproveCancel(ctx, "admin", o.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, f.stock(t, "p1"))
	assert.Equal(t, 1, f.restockLogs(t, "p1", domain.StockReasonCancelRestock))

	_, err = f.workflow.RejectCancel(ctx, "admin", o.ID, "too late")
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestCancelRequestRules(t *testing.T) {
	ctx := context.Background()

	t.Run("other users cannot see the order", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t, "COD")
		_, err := f.workflow.RequestCancel(ctx, "u2", o.ID, "not mine", nil)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("shipped orders cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t, "COD")
		_, err := f.order.UpdateOrderStatus(ctx, "admin", o.ID, "shipped")
		require.NoError(t, err)
		f.notes.reset()

		_, err = f.workflow.RequestCancel(ctx, "u1", o.ID, "too slow", nil)
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
		assert.Empty(t, f.notes.titles())
	})

	t.Run("rejection keeps the order and allows a new request", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t, "COD")
		_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "first try", nil)
		require.NoError(t, err)

		got, err := f.workflow.RejectCancel(ctx, "admin", o.ID, "")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
		assert.Equal(t, domain.DecisionRejected, got.Cancellation.Decision)
		assert.Equal(t, "Your cancel request for order "+o.OrderNumber+" has been rejected. Reason: Request rejected by admin", f.notes.last().Message)
		assert.Equal(t, 8, f.stock(t, "p1"))

		_, err = f.workflow.RequestCancel(ctx, "u1", o.ID, "second try", nil)
		require.NoError(t, err)
	})

	t.Run("pending request blocks lifecycle progress", func(t *testing.T) {
		f := newFixture(t)
		o := f.place(t, "COD")
		_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "hold on", nil)
		require.NoError(t, err)

		_, err = f.order.UpdateOrderStatus(ctx, "admin", o.ID, "shipped")
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
	})
}

func TestReturnFlow(t *testing.T) {
	ctx := context.Background()

	deliver := func(t *testing.T, f *fixture, o *domain.Order) {
		t.Helper()
		_, err := f.order.UpdateOrderStatus(ctx, "admin", o.ID, "delivered")
		require.NoError(t, err)
		f.notes.reset()
	}

	t.Run("approved return restores stock and opens refund", func(t *testing.T) {
		f := newFixture(t)
		o := f.placePaid(t)
		deliver(t, f, o)

		f.now = t0.Add(3 * 24 * time.Hour)
		_, err := f.workflow.RequestReturn(ctx, "u1", o.ID, domain.ReturnReasonDefective, nil)
		require.NoError(t, err)
		assert.Equal(t, "Return Request Received", f.notes.last().Title)

		got, err := f.workflow.ApproveReturn(ctx, "admin", o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusDelivered, got.Status)
		assert.Equal(t, domain.RefundStatusPending, got.Refund.Status)
		assert.Equal(t, 10, f.stock(t, "p1"))
		assert.Equal(t, 1, f.restockLogs(t, "p1", domain.StockReasonReturnRestock))
		assert.Contains(t, f.notes.last().Message, "Refund will be processed soon.")

		_, err = f.workflow.ApproveReturn(ctx, "admin", o.ID)
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
		assert.Equal(t, 10, f.stock(t, "p1"))
	})

	t.Run("window expired", func(t *testing.T) {
		f := newFixture(t)
		o := f.placePaid(t)
		deliver(t, f, o)

		f.now = t0.Add(8 * 24 * time.Hour)
		_, err := f.workflow.RequestReturn(ctx, "u1", o.ID, domain.ReturnReasonWrongProduct, nil)
		assert.Equal(t, "Return window of 7 days has expired", errs.PublicMessage(err))
	})

	t.Run("not delivered yet", func(t *testing.T) {
		f := newFixture(t)
		o := f.placePaid(t)
		_, err := f.workflow.RequestReturn(ctx, "u1", o.ID, domain.ReturnReasonWrongProduct, nil)
		assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
	})

	t.Run("rejected return", func(t *testing.T) {
		f := newFixture(t)
		o := f.placePaid(t)
		deliver(t, f, o)
		_, err := f.workflow.RequestReturn(ctx, "u1", o.ID, domain.ReturnReasonWrongProduct, nil)
		require.NoError(t, err)

		got, err := f.workflow.RejectReturn(ctx, "admin", o.ID, "photos show no damage")
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionRejected, got.Return.Decision)
		assert.Equal(t, domain.RefundStatusNotRequired, got.Refund.Status)
		assert.Equal(t, "Return Request Rejected", f.notes.last().Title)
	})
}

func TestRejectRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.placePaid(t)
	_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "x", nil)
	require.NoError(t, err)
	_, err = f.workflow.ApproveCancel(ctx, "admin", o.ID)
	require.NoError(t, err)

	got, err := f.refund.RejectRefund(ctx, "admin", o.ID, " chargeback already issued ")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRejected, got.Refund.Status)
	assert.Equal(t, "chargeback already issued", got.Refund.AdminNote)
	assert.Equal(t, "Refund Rejected", f.notes.last().Title)

	_, err = f.refund.CompleteRefund(ctx, "admin", o.ID, "rf")
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestStartRefundNotifiesCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.placePaid(t)
	_, err := f.workflow.RequestCancel(ctx, "u1", o.ID, "changed my mind", nil)
	require.NoError(t, err)
	_, err = f.workflow.ApproveCancel(ctx, "admin", o.ID)
	require.NoError(t, err)
	f.notes.reset()

	got, err := f.refund.StartRefund(ctx, "admin", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusProcessing, got.Refund.Status)

	assert.Equal(t, []string{"Refund Processing"}, f.notes.titles())
	sent := f.notes.last()
	require.NotNil(t, sent.UserID)
	assert.Equal(t, "u1", *sent.UserID)
	assert.Equal(t, o.ID, sent.ReferenceID)
	assert.Equal(t, "Refund of ₹350.00 for order "+o.OrderNumber+" is being processed.", sent.Message)
}
