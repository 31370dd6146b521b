package domain

import (
	"fmt"
	"time"

	"orderflow-backend/pkg/errs"
)

// Forward-only progress weights. Cancelled has no weight; it is reached
// only through an approved cancel request.
var orderStatusWeights = map[OrderStatus]int{
	OrderStatusPending:    10,
	OrderStatusProcessing: 20,
	OrderStatusShipped:    30,
	OrderStatusDelivered:  40,
}

// Advance moves the order to target. Forward jumps are allowed, backward moves
// are not, and nothing leaves cancelled. Repeating the current status is a
// no-op and returns false.
func (o *Order) Advance(target OrderStatus, now time.Time) (bool, error) {
	if !target.IsValid() {
		return false, errs.NewValidationError("status", fmt.Sprintf("Invalid order status '%s'", target))
	}
	if target == o.Status {
		return false, nil
	}
	if o.Status == OrderStatusCancelled {
		return false, errs.NewInvalidStateError("Cannot change status of a cancelled order")
	}
	if target == OrderStatusCancelled {
		return false, errs.NewInvalidStateError("Orders are cancelled by approving a cancel request")
	}
	if o.Cancellation.IsPending() {
		return false, errs.NewInvalidStateError("Resolve the pending cancel request before changing status")
	}

	current, next := orderStatusWeights[o.Status], orderStatusWeights[target]
	if next < current {
		return false, errs.NewInvalidStateError(fmt.Sprintf("Cannot move order from '%s' back to '%s'", o.Status, target))
	}

	o.Status = target
	o.stamp(target, now)
	return true, nil
}

// stamp records the first entry time of s and never overwrites it.
func (o *Order) stamp(s OrderStatus, now time.Time) {
	if o.StatusTimestamps == nil {
		o.StatusTimestamps = StatusTimestamps{}
	}
	if _, ok := o.StatusTimestamps[s]; !ok {
		o.StatusTimestamps[s] = now
	}
}

func (o *Order) isCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
