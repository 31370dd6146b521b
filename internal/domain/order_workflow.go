package domain

import (
	"fmt"
	"strings"
	"time"

	"orderflow-backend/pkg/errs"
)

const DefaultRejectionResponse = "Request rejected by admin"

// RequestCancel opens a cancel request. Allowed only before shipment and when
// no request is pending; a rejected request may be re-submitted.
func (o *Order) RequestCancel(reason string, details *RefundDetails, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValidationError("reason", "Cancel reason is required")
	}
	if details != nil {
		if err := details.Validate(); err != nil {
			return err
		}
	}

	if o.Status == OrderStatusCancelled || o.Cancellation.Decision == DecisionApproved {
		return errs.NewInvalidStateError("Order is already cancelled")
	}
	if !o.isCancellable() {
		return errs.NewInvalidStateError(fmt.Sprintf("Order cannot be cancelled once it is %s", o.Status))
	}
	if o.Cancellation.IsPending() {
		return errs.NewInvalidStateError("A cancel request is already pending for this order")
	}

	o.Cancellation = Request{
		Decision:    DecisionPending,
		Reason:      reason,
		RequestedAt: &now,
	}
	if details != nil {
		d := *details
		o.Refund.Details = &d
	}
	return nil
}

// RequestReturn opens a return request on a delivered order. window bounds
// how long after delivery a return is accepted; zero disables the check.
func (o *Order) RequestReturn(reason ReturnReason, details *RefundDetails, window time.Duration, now time.Time) error {
	if !reason.IsValid() {
		return errs.NewValidationError("reason", "Return reason must be one of: Wrong Product Delivered, Defective / Damaged Product")
	}
	if details != nil {
		if err := details.Validate(); err != nil {
			return err
		}
	}

	if o.Status != OrderStatusDelivered {
		return errs.NewInvalidStateError("Only delivered orders can be returned")
	}
	if o.Return.Decision == DecisionApproved {
		return errs.NewInvalidStateError("Return already approved for this order")
	}
	if o.Return.IsPending() {
		return errs.NewInvalidStateError("A return request is already pending for this order")
	}
	if deliveredAt, ok := o.StatusTimestamps[OrderStatusDelivered]; ok && window > 0 {
		if now.Sub(deliveredAt) > window {
			return errs.NewInvalidStateError(fmt.Sprintf("Return window of %d days has expired", int(window.Hours()/24)))
		}
	}

	o.Return = Request{
		Decision:    DecisionPending,
		Reason:      string(reason),
		RequestedAt: &now,
	}
	if details != nil {
		d := *details
		o.Refund.Details = &d
	}
	return nil
}

// ApproveCancel resolves a pending cancel request. It reports whether the
// caller must restore stock; that is true at most once per order.
func (o *Order) ApproveCancel(now time.Time) (restoreStock bool, err error) {
	if !o.Cancellation.IsPending() {
		return false, errs.NewInvalidStateError("No pending cancel request for this order")
	}
	if !o.isCancellable() {
		return false, errs.NewInvalidStateError(fmt.Sprintf("Order cannot be cancelled once it is %s", o.Status))
	}

	o.Cancellation.Decision = DecisionApproved
	o.Cancellation.ProcessedAt = &now
	o.Status = OrderStatusCancelled
	o.stamp(OrderStatusCancelled, now)

	restoreStock = o.claimStockRestoration()
	o.initiateRefund(now)
	return restoreStock, nil
}

// ApproveReturn resolves a pending return request. The order stays delivered;
// the terminal effect of a return is the refund.
func (o *Order) ApproveReturn(now time.Time) (restoreStock bool, err error) {
	if !o.Return.IsPending() {
		return false, errs.NewInvalidStateError("No pending return request for this order")
	}
	if o.Status != OrderStatusDelivered {
		return false, errs.NewInvalidStateError("Only delivered orders can be returned")
	}

	o.Return.Decision = DecisionApproved
	o.Return.ProcessedAt = &now

	restoreStock = o.claimStockRestoration()
	o.initiateRefund(now)
	return restoreStock, nil
}

func (o *Order) RejectCancel(response string, now time.Time) error {
	if !o.Cancellation.IsPending() {
		return errs.NewInvalidStateError("No pending cancel request for this order")
	}
	o.Cancellation.reject(response, now)
	return nil
}

func (o *Order) RejectReturn(response string, now time.Time) error {
	if !o.Return.IsPending() {
		return errs.NewInvalidStateError("No pending return request for this order")
	}
	o.Return.reject(response, now)
	return nil
}

func (r *Request) reject(response string, now time.Time) {
	response = strings.TrimSpace(response)
	if response == "" {
		response = DefaultRejectionResponse
	}
	r.Decision = DecisionRejected
	r.AdminResponse = response
	r.ProcessedAt = &now
}

// claimStockRestoration flips StockRestored and reports whether this call
// won it.
func (o *Order) claimStockRestoration() bool {
	if o.StockRestored {
		return false
	}
	o.StockRestored = true
	return true
}

// initiateRefund opens a full refund of GrandTotal when money was collected.
func (o *Order) initiateRefund(now time.Time) {
	if o.PaymentStatus != PaymentStatusPaid {
		o.Refund.Status = RefundStatusNotRequired
		return
	}
	o.Refund.Status = RefundStatusPending
	o.Refund.Amount = o.GrandTotal
	o.Refund.InitiatedAt = &now
}
