package domain_test

import (
	"testing"

	"orderflow-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeFinance(t *testing.T) {
	rows := []domain.FinanceRow{
		// delivered COD, collected
		{PaymentMethod: "COD", PaymentStatus: domain.PaymentStatusPending, Status: domain.OrderStatusDelivered,
			ReturnDecision: domain.DecisionNotRequested, GrandTotal: 590, ShippingAmount: 50, CODCharge: 40},
		// COD still in transit
		{PaymentMethod: "COD", PaymentStatus: domain.PaymentStatusPending, Status: domain.OrderStatusShipped,
			ReturnDecision: domain.DecisionNotRequested, GrandTotal: 200},
		// paid online, delivered
		{PaymentMethod: "RAZORPAY", PaymentStatus: domain.PaymentStatusPaid, Status: domain.OrderStatusDelivered,
			ReturnDecision: domain.DecisionNotRequested, GrandTotal: 1000, ShippingAmount: 0},
		// paid online, cancelled, refund open
		{PaymentMethod: "ONLINE", PaymentStatus: domain.PaymentStatusPaid, Status: domain.OrderStatusCancelled,
			CancelDecision: domain.DecisionApproved, ReturnDecision: domain.DecisionNotRequested,
			GrandTotal: 350, ShippingAmount: 50, RefundStatus: domain.RefundStatusPending, RefundAmount: 350},
		// paid online, returned, refund done
		{PaymentMethod: "CARD", PaymentStatus: domain.PaymentStatusPaid, Status: domain.OrderStatusDelivered,
			ReturnDecision: domain.DecisionApproved, GrandTotal: 400, RefundStatus: domain.RefundStatusCompleted, RefundAmount: 400},
		// online awaiting payment
		{PaymentMethod: "RAZORPAY", PaymentStatus: domain.PaymentStatusPending, Status: domain.OrderStatusPending,
			ReturnDecision: domain.DecisionNotRequested, GrandTotal: 120},
		// cancelled COD never counts as income
		{PaymentMethod: "COD", PaymentStatus: domain.PaymentStatusPending, Status: domain.OrderStatusCancelled,
			CancelDecision: domain.DecisionApproved, ReturnDecision: domain.DecisionNotRequested, GrandTotal: 80},
	}

	s := domain.SummarizeFinance(rows)

	assert.Equal(t, int64(7), s.TotalOrders)
	assert.Equal(t, 590.0, s.TotalIncomeCOD)
	assert.Equal(t, 1000.0, s.TotalIncomeOnline)
	assert.Equal(t, 1590.0, s.TotalIncome)
	assert.Equal(t, 320.0, s.PendingIncome)
	assert.Equal(t, int64(2), s.PendingCount)
	assert.Equal(t, 750.0, s.TotalRefundAmount)
	assert.Equal(t, 430.0, s.CancelledOrdersAmount)
	assert.Equal(t, int64(2), s.CancelledCount)
	assert.Equal(t, 400.0, s.ReturnedOrdersAmount)
	assert.Equal(t, int64(1), s.ReturnedCount)
	assert.Equal(t, int64(2), s.DeliveredCount)
	assert.Equal(t, 50.0, s.TotalShippingCollected)
	assert.Equal(t, 40.0, s.TotalCODChargesCollected)
	assert.Equal(t, int64(1), s.PendingRefundsCount)
	assert.Equal(t, int64(1), s.CompletedRefundsCount)
}

func TestSummarizeFinanceEmpty(t *testing.T) {
	assert.Equal(t, domain.FinanceSummary{}, domain.SummarizeFinance(nil))
}
