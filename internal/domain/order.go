package domain

import (
	"context"
	"strings"
	"time"

	"orderflow-backend/pkg/errs"
)

// OrderView selects one of the admin work queues.
type OrderView string

const (
	OrderViewAll            OrderView = ""
	OrderViewCancelRequests OrderView = "cancel-requests"
	OrderViewReturnRequests OrderView = "return-requests"
	OrderViewPendingRefunds OrderView = "pending-refunds"
)

func (v OrderView) IsValid() bool {
	switch v {
	case OrderViewAll, OrderViewCancelRequests, OrderViewReturnRequests, OrderViewPendingRefunds:
		return true
	}
	return false
}

type OrderFilter struct {
	Page          int
	Limit         int
	UserID        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	View          OrderView
	Search        string
}

// --- Order Entities ---

type ShippingAddress struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Zip          string `json:"zip"`
}

func (a ShippingAddress) Validate() error {
	required := []struct{ name, value string }{
		{"name", a.Name},
		{"phone", a.Phone},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"zip", a.Zip},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errs.NewValidationError("shippingAddress."+f.name, "Shipping address "+f.name+" is required")
		}
	}
	return nil
}

type OrderItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at time of purchase
	Total     float64 `json:"total"`
	Color     string  `json:"color,omitempty"`
	Image     string  `json:"image,omitempty"`
}

type RefundDetails struct {
	RefundMethod      RefundMethod `json:"refundMethod"`
	BankName          string       `json:"bankName,omitempty"`
	AccountNumber     string       `json:"accountNumber,omitempty"`
	IFSCCode          string       `json:"ifscCode,omitempty"`
	AccountHolderName string       `json:"accountHolderName,omitempty"`
	UPIID             string       `json:"upiId,omitempty"`
}

func (d RefundDetails) Validate() error {
	if !d.RefundMethod.IsValid() {
		return errs.NewValidationError("refundDetails.refundMethod", "Refund method must be one of Bank Transfer, UPI, Original Payment Method")
	}
	switch d.RefundMethod {
	case RefundMethodBankTransfer:
		if d.AccountNumber == "" || d.IFSCCode == "" || d.AccountHolderName == "" {
			return errs.NewValidationError("refundDetails", "Bank transfer refunds need account number, IFSC code and account holder name")
		}
	case RefundMethodUPI:
		if d.UPIID == "" {
			return errs.NewValidationError("refundDetails.upiId", "UPI refunds need a UPI id")
		}
	}
	return nil
}

// Request is one cancel or return sub-protocol instance.
type Request struct {
	Decision      RequestDecision `json:"decision"`
	Reason        string          `json:"reason,omitempty"`
	RequestedAt   *time.Time      `json:"requestedAt,omitempty"`
	AdminResponse string          `json:"adminResponse,omitempty"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
}

func (r Request) IsPending() bool { return r.Decision == DecisionPending }

type Refund struct {
	Status        RefundStatus   `json:"status"`
	Details       *RefundDetails `json:"details,omitempty"`
	Amount        float64        `json:"amount"`
	InitiatedAt   *time.Time     `json:"initiatedAt,omitempty"`
	ProcessedAt   *time.Time     `json:"processedAt,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	AdminNote     string         `json:"adminNote,omitempty"`
}

type StatusTimestamps map[OrderStatus]time.Time

type Order struct {
	ID               string           `json:"id"`
	OrderNumber      string           `json:"orderNumber"`
	UserID           string           `json:"userId"`
	Items            []OrderItem      `json:"items"`
	ShippingAddress  ShippingAddress  `json:"shippingAddress"`
	TotalAmount      float64          `json:"totalAmount"`
	ShippingAmount   float64          `json:"shippingAmount"`
	CODCharge        float64          `json:"codCharge"`
	GrandTotal       float64          `json:"grandTotal"`
	PaymentMethod    string           `json:"paymentMethod"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus"`
	TransactionID    string           `json:"transactionId,omitempty"`
	Status           OrderStatus      `json:"orderStatus"`
	StatusTimestamps StatusTimestamps `json:"statusTimestamps"`
	Cancellation     Request          `json:"cancellation"`
	Return           Request          `json:"return"`
	Refund           Refund           `json:"refund"`
	StockRestored    bool             `json:"stockRestored"`
	Version          int              `json:"-"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewOrder builds a pending order with totals frozen from quote.
func NewOrder(id, number, userID string, items []OrderItem, addr ShippingAddress, paymentMethod string, quote ShippingQuote, now time.Time) *Order {
	return &Order{
		ID:               id,
		OrderNumber:      number,
		UserID:           userID,
		Items:            items,
		ShippingAddress:  addr,
		TotalAmount:      quote.Subtotal,
		ShippingAmount:   quote.ShippingAmount,
		CODCharge:        quote.CODCharge,
		GrandTotal:       quote.GrandTotal,
		PaymentMethod:    paymentMethod,
		PaymentStatus:    PaymentStatusPending,
		Status:           OrderStatusPending,
		StatusTimestamps: StatusTimestamps{OrderStatusPending: now},
		Cancellation:     Request{Decision: DecisionNotRequested},
		Return:           Request{Decision: DecisionNotRequested},
		Refund:           Refund{Status: RefundStatusNotRequired},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy so callers cannot alias stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.StatusTimestamps = make(StatusTimestamps, len(o.StatusTimestamps))
	for k, v := range o.StatusTimestamps {
		c.StatusTimestamps[k] = v
	}
	c.Cancellation = o.Cancellation.clone()
	c.Return = o.Return.clone()
	c.Refund = o.Refund
	if o.Refund.Details != nil {
		d := *o.Refund.Details
		c.Refund.Details = &d
	}
	c.Refund.InitiatedAt = cloneTime(o.Refund.InitiatedAt)
	c.Refund.ProcessedAt = cloneTime(o.Refund.ProcessedAt)
	return &c
}

func (r Request) clone() Request {
	r.RequestedAt = cloneTime(r.RequestedAt)
	r.ProcessedAt = cloneTime(r.ProcessedAt)
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// UpdatePaymentStatus moves the payment track. Paid is final, and a cancelled
// order cannot start collecting money. Returns false when nothing changed.
func (o *Order) UpdatePaymentStatus(target PaymentStatus, transactionID string) (bool, error) {
	if !target.IsValid() {
		return false, errs.NewValidationError("paymentStatus", "Payment status must be one of Paid, Pending, Failed")
	}
	if target == o.PaymentStatus {
		return false, nil
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return false, errs.NewInvalidStateError("Payment status of a paid order cannot change")
	}
	if o.Status == OrderStatusCancelled && target == PaymentStatusPaid {
		return false, errs.NewInvalidStateError("Cannot record payment for a cancelled order")
	}
	o.PaymentStatus = target
	if target == PaymentStatusPaid && transactionID != "" {
		o.TransactionID = transactionID
	}
	return true, nil
}

// OrderHistory is the audit trail row written for every transition.
type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Action         string    `json:"action"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"` // UserID
	CreatedAt      time.Time `json:"createdAt"`
}

// --- Interfaces ---

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetByIDForUpdate locks the order row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// Update persists the mutable fields only if the stored version still
	// equals order.Version, then bumps order.Version.
	Update(ctx context.Context, order *Order) error
	CountStaleRefunds(ctx context.Context, initiatedBefore time.Time) (int64, error)

	// History
	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}

// ErrConcurrentUpdate is returned by OrderRepository.Update when the version
// check fails.
var ErrConcurrentUpdate = errs.NewInvalidStateError("Order was modified concurrently, please retry")
