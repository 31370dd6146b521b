package domain

import "strings"

type OrderStatus string

// Order Statuses
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// NormalizeOrderStatus lower-cases and trims admin input ("Shipped " -> "shipped").
func NormalizeOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

type PaymentStatus string

// Payment Statuses
const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPending || s == PaymentStatusFailed
}

type RefundStatus string

// Refund Statuses
const (
	RefundStatusNotRequired RefundStatus = "NotRequired"
	RefundStatusPending     RefundStatus = "Pending"
	RefundStatusProcessing  RefundStatus = "Processing"
	RefundStatusCompleted   RefundStatus = "Completed"
	RefundStatusRejected    RefundStatus = "Rejected"
)

// RequestDecision tracks a cancel or return request. NotRequested and Pending
// are distinct states: Pending means a request is waiting for an admin.
type RequestDecision string

const (
	DecisionNotRequested RequestDecision = "NotRequested"
	DecisionPending      RequestDecision = "Pending"
	DecisionApproved     RequestDecision = "Approved"
	DecisionRejected     RequestDecision = "Rejected"
)

type ReturnReason string

// Return Reasons
const (
	ReturnReasonWrongProduct ReturnReason = "Wrong Product Delivered"
	ReturnReasonDefective    ReturnReason = "Defective / Damaged Product"
)

func (r ReturnReason) IsValid() bool {
	return r == ReturnReasonWrongProduct || r == ReturnReasonDefective
}

type RefundMethod string

// Refund Methods
const (
	RefundMethodBankTransfer    RefundMethod = "Bank Transfer"
	RefundMethodUPI             RefundMethod = "UPI"
	RefundMethodOriginalPayment RefundMethod = "Original Payment Method"
)

func (m RefundMethod) IsValid() bool {
	return m == RefundMethodBankTransfer || m == RefundMethodUPI || m == RefundMethodOriginalPayment
}

// Payment Methods
const (
	PaymentMethodCOD      = "COD"
	PaymentMethodRazorpay = "RAZORPAY"
	PaymentMethodCard     = "CARD"
	PaymentMethodOnline   = "ONLINE"
)

// NormalizePaymentMethod upper-cases the method and falls back to RAZORPAY.
func NormalizePaymentMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		return PaymentMethodRazorpay
	}
	return m
}

func IsCODPayment(method string) bool {
	return strings.ToUpper(strings.TrimSpace(method)) == PaymentMethodCOD
}

func IsOnlinePayment(method string) bool {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case PaymentMethodRazorpay, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// List Exports for API
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusPending,
	PaymentStatusFailed,
}

var RefundStatuses = []RefundStatus{
	RefundStatusNotRequired,
	RefundStatusPending,
	RefundStatusProcessing,
	RefundStatusCompleted,
	RefundStatusRejected,
}

var ReturnReasons = []ReturnReason{
	ReturnReasonWrongProduct,
	ReturnReasonDefective,
}

var RefundMethods = []RefundMethod{
	RefundMethodBankTransfer,
	RefundMethodUPI,
	RefundMethodOriginalPayment,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodRazorpay,
	PaymentMethodCard,
	PaymentMethodOnline,
}
