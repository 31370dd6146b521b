package domain

import (
	"fmt"
	"strings"
	"time"

	"orderflow-backend/pkg/errs"
)

// StartRefund marks the refund as handed to the payment channel.
func (o *Order) StartRefund() error {
	if o.Refund.Status != RefundStatusPending {
		return errs.NewInvalidStateError(fmt.Sprintf("Refund is %s, only Pending refunds can be started", o.Refund.Status))
	}
	o.Refund.Status = RefundStatusProcessing
	return nil
}

// CompleteRefund records the payout. Only Processing refunds qualify, so a
// second call on a Completed refund fails.
func (o *Order) CompleteRefund(transactionID string, now time.Time) error {
	switch o.Refund.Status {
	case RefundStatusCompleted:
		return errs.NewInvalidStateError("Refund already completed for this order")
	case RefundStatusProcessing:
	default:
		return errs.NewInvalidStateError("Order not eligible for refund completion")
	}
	o.Refund.Status = RefundStatusCompleted
	o.Refund.ProcessedAt = &now
	o.Refund.TransactionID = strings.TrimSpace(transactionID)
	return nil
}

// RejectRefund closes an open refund without paying out.
func (o *Order) RejectRefund(note string, now time.Time) error {
	if o.Refund.Status != RefundStatusPending && o.Refund.Status != RefundStatusProcessing {
		return errs.NewInvalidStateError(fmt.Sprintf("Refund is %s and cannot be rejected", o.Refund.Status))
	}
	o.Refund.Status = RefundStatusRejected
	o.Refund.ProcessedAt = &now
	o.Refund.AdminNote = strings.TrimSpace(note)
	return nil
}
