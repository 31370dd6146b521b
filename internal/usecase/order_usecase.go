package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"

	"github.com/google/uuid"
)

const DefaultMaxItemQuantity = 1000

type PlaceOrderItem struct {
	ProductID string
	Quantity  int
	Color     string
}

type PlaceOrderInput struct {
	Items           []PlaceOrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

type OrderUsecase struct {
	orderStore
	shipping        *ShippingUsecase
	maxItemQuantity int
}

func NewOrderUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, shipping *ShippingUsecase, txManager domain.TransactionManager, notifier domain.NotificationPort, m *metrics.Metrics, maxItemQuantity int) *OrderUsecase {
	if maxItemQuantity <= 0 {
		maxItemQuantity = DefaultMaxItemQuantity
	}
	return &OrderUsecase{
		orderStore:      newOrderStore(orderRepo, productRepo, txManager, notifier, m),
		shipping:        shipping,
		maxItemQuantity: maxItemQuantity,
	}
}

// WithClock replaces the time source. Used by tests.
func (u *OrderUsecase) WithClock(now func() time.Time) *OrderUsecase {
	u.now = now
	return u
}

// WithStatsCache clears the cached dashboard and analytics after each write.
func (u *OrderUsecase) WithStatsCache(c cache.CacheService) *OrderUsecase {
	u.statsCache = c
	return u
}

// --- Placement ---

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, errs.NewValidationError("items", "Order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, errs.NewValidationError("items.productId", "Product id is required")
		}
		if item.Quantity <= 0 || item.Quantity > u.maxItemQuantity {
			return nil, errs.NewValidationError("items.quantity", fmt.Sprintf("Quantity must be between 1 and %d", u.maxItemQuantity))
		}
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	method := domain.NormalizePaymentMethod(in.PaymentMethod)
	if !slices.Contains(domain.PaymentMethods, method) {
		return nil, errs.NewValidationError("paymentMethod", "Payment method must be one of "+strings.Join(domain.PaymentMethods, ", "))
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		items, subtotal, err := u.priceItems(txCtx, in.Items)
		if err != nil {
			return err
		}

		quote, err := u.shipping.quoteFresh(txCtx, subtotal, method)
		if err != nil {
			return err
		}

		now := u.now()
		order = domain.NewOrder(uuid.NewString(), orderNumber(now), userID, items, in.ShippingAddress, method, quote, now)

		for _, item := range items {
			if err := u.products.UpdateStock(txCtx, item.ProductID, -item.Quantity, domain.StockReasonOrderPlaced, order.ID); err != nil {
				return err
			}
		}
		if err := u.orders.Create(txCtx, order); err != nil {
			return err
		}
		return u.orders.CreateOrderHistory(txCtx, newHistory(order.ID, "order_placed", "", order.Status, "", userID, now))
	})
	u.metrics.OrderTransition("order_placed", transitionResult(err))
	if err != nil {
		return nil, err
	}
	u.ordersChanged()

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Float64("grand_total", order.GrandTotal).
		Msg("order placed")

	u.publish(ctx,
		domain.AdminNotification("New Order Placed", fmt.Sprintf("Order %s placed for %s", order.OrderNumber, formatAmount(order.GrandTotal)), order.ID),
		domain.UserNotification(userID, "Order Placed Successfully", fmt.Sprintf("Your order %s has been placed.", order.OrderNumber), order.ID),
	)
	return order, nil
}

// priceItems snapshots product name, price and image and checks stock up
// front so no deduction runs for an order that cannot be filled.
func (u *OrderUsecase) priceItems(ctx context.Context, in []PlaceOrderItem) ([]domain.OrderItem, float64, error) {
	requested := make(map[string]int, len(in))
	items := make([]domain.OrderItem, 0, len(in))
	var subtotal float64

	for _, req := range in {
		p, err := u.products.GetProductByID(ctx, req.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !p.IsActive {
			return nil, 0, errs.NewValidationError("items.productId", p.Name+" is not available")
		}
		price := p.EffectivePrice()
		if price <= 0 {
			return nil, 0, errs.NewValidationError("items.productId", p.Name+" has no valid price")
		}
		requested[p.ID] += req.Quantity
		if requested[p.ID] > p.Stock {
			return nil, 0, errs.NewValidationError("items.quantity", "Insufficient stock for "+p.Name)
		}

		total := price * float64(req.Quantity)
		subtotal += total
		items = append(items, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  req.Quantity,
			Price:     price,
			Total:     total,
			Color:     req.Color,
			Image:     p.PrimaryImage(),
		})
	}
	return items, subtotal, nil
}

func orderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%04d", now.UnixMilli(), rand.IntN(10000))
}

func formatAmount(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

// --- Reads ---

// GetOrder returns the order for an admin, or for its owner. Other callers
// see a not found error.
func (u *OrderUsecase) GetOrder(ctx context.Context, user *domain.User, id string) (*domain.Order, error) {
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && (user == nil || o.UserID != user.ID) {
		return nil, errs.NewObjectNotFoundError("Order", id)
	}
	return o, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

func (u *OrderUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, domain.Pagination, error) {
	if !filter.View.IsValid() {
		return nil, domain.Pagination{}, errs.NewValidationError("view", "View must be one of cancel-requests, return-requests, pending-refunds")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.Pagination{}, errs.NewValidationError("status", "Invalid order status")
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
		return nil, domain.Pagination{}, errs.NewValidationError("payment_status", "Invalid payment status")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	orders, total, err := u.orders.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return orders, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orders.GetOrderHistory(ctx, orderID)
}

// --- Admin transitions ---

// UpdateOrderStatus drives the forward lifecycle. Repeating the current
// status succeeds without a write or a notification.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, actorID, id, status string) (*domain.Order, error) {
	target := domain.NormalizeOrderStatus(status)

	o, tr, err := u.mutate(ctx, id, "status_update", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		from := o.Status
		changed, err := o.Advance(target, now)
		if err != nil {
			return transition{}, err
		}
		return transition{changed: changed, note: fmt.Sprintf("Order status updated from '%s' to '%s'", from, target)}, nil
	})
	if err != nil {
		return nil, err
	}
	if !tr.changed {
		return o, nil
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Str("status", string(o.Status)).Msg("order status updated")
	u.publish(ctx, domain.UserNotification(o.UserID, "Order Status Update",
		fmt.Sprintf("Your order %s is now %s.", o.OrderNumber, o.Status), o.ID))
	return o, nil
}

func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, actorID, id string, status domain.PaymentStatus, transactionID string) (*domain.Order, error) {
	o, tr, err := u.mutate(ctx, id, "payment_update", actorID, func(o *domain.Order, now time.Time) (transition, error) {
		from := o.PaymentStatus
		changed, err := o.UpdatePaymentStatus(status, strings.TrimSpace(transactionID))
		if err != nil {
			return transition{}, err
		}
		return transition{changed: changed, note: fmt.Sprintf("Payment status updated from '%s' to '%s'", from, status)}, nil
	})
	if err != nil {
		return nil, err
	}
	if !tr.changed {
		return o, nil
	}

	logger.WithContext(ctx).Info().Str("order_id", o.ID).Str("payment_status", string(o.PaymentStatus)).Msg("payment status updated")
	switch o.PaymentStatus {
	case domain.PaymentStatusPaid:
		u.publish(ctx,
			domain.AdminNotification("Payment Received", fmt.Sprintf("Payment received for order %s", o.OrderNumber), o.ID),
			domain.UserNotification(o.UserID, "Payment Successful",
				fmt.Sprintf("We received your payment for order %s. We are processing it now!", o.OrderNumber), o.ID),
		)
	case domain.PaymentStatusFailed:
		u.publish(ctx, domain.UserNotification(o.UserID, "Payment Failed",
			fmt.Sprintf("Payment for order %s did not go through.", o.OrderNumber), o.ID))
	}
	return o, nil
}
