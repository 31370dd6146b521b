package domain

import (
	"context"
	"time"
)

type DashboardStats struct {
	TotalRevenue          float64               `json:"totalRevenue"`
	TotalOrders           int64                 `json:"totalOrders"`
	PendingCancelRequests int64                 `json:"pendingCancelRequests"`
	PendingReturnRequests int64                 `json:"pendingReturnRequests"`
	PendingRefunds        int64                 `json:"pendingRefunds"`
	StatusCounts          map[OrderStatus]int64 `json:"statusCounts"`
}

type FinanceFilter struct {
	From *time.Time
	To   *time.Time
}

// FinanceRow is the per-order projection used by the finance summary and the
// CSV export.
type FinanceRow struct {
	OrderID        string          `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	CreatedAt      time.Time       `json:"createdAt"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	Status         OrderStatus     `json:"orderStatus"`
	CancelDecision RequestDecision `json:"cancelDecision"`
	ReturnDecision RequestDecision `json:"returnDecision"`
	TotalAmount    float64         `json:"totalAmount"`
	ShippingAmount float64         `json:"shippingAmount"`
	CODCharge      float64         `json:"codCharge"`
	GrandTotal     float64         `json:"grandTotal"`
	RefundStatus   RefundStatus    `json:"refundStatus"`
	RefundAmount   float64         `json:"refundAmount"`
}

func FinanceRowFromOrder(o *Order) FinanceRow {
	return FinanceRow{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CreatedAt:      o.CreatedAt,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		Status:         o.Status,
		CancelDecision: o.Cancellation.Decision,
		ReturnDecision: o.Return.Decision,
		TotalAmount:    o.TotalAmount,
		ShippingAmount: o.ShippingAmount,
		CODCharge:      o.CODCharge,
		GrandTotal:     o.GrandTotal,
		RefundStatus:   o.Refund.Status,
		RefundAmount:   o.Refund.Amount,
	}
}

type FinanceSummary struct {
	TotalIncome              float64 `json:"totalIncome"`
	TotalIncomeCOD           float64 `json:"totalIncomeCOD"`
	TotalIncomeOnline        float64 `json:"totalIncomeOnline"`
	PendingIncome            float64 `json:"pendingIncome"`
	TotalRefundAmount        float64 `json:"totalRefundAmount"`
	CancelledOrdersAmount    float64 `json:"cancelledOrdersAmount"`
	ReturnedOrdersAmount     float64 `json:"returnedOrdersAmount"`
	TotalShippingCollected   float64 `json:"totalShippingCollected"`
	TotalCODChargesCollected float64 `json:"totalCodChargesCollected"`
	TotalOrders              int64   `json:"totalOrders"`
	DeliveredCount           int64   `json:"deliveredCount"`
	CancelledCount           int64   `json:"cancelledCount"`
	ReturnedCount            int64   `json:"returnedCount"`
	PendingCount             int64   `json:"pendingCount"`
	PendingRefundsCount      int64   `json:"pendingRefundsCount"`
	CompletedRefundsCount    int64   `json:"completedRefundsCount"`
}

// SummarizeFinance folds order rows into income and refund totals.
// COD money counts once the order is delivered and not returned; online
// money counts once paid, and moves to refunds if the order was cancelled or
// returned.
func SummarizeFinance(rows []FinanceRow) FinanceSummary {
	var s FinanceSummary
	s.TotalOrders = int64(len(rows))

	for _, r := range rows {
		cancelled := r.Status == OrderStatusCancelled
		returned := r.ReturnDecision == DecisionApproved

		switch {
		case returned:
			s.ReturnedCount++
			s.ReturnedOrdersAmount += r.GrandTotal
		case cancelled:
			s.CancelledCount++
			s.CancelledOrdersAmount += r.GrandTotal
		}

		switch {
		case IsCODPayment(r.PaymentMethod):
			if r.Status == OrderStatusDelivered && !returned {
				s.TotalIncomeCOD += r.GrandTotal
				s.TotalShippingCollected += r.ShippingAmount
				s.TotalCODChargesCollected += r.CODCharge
				s.DeliveredCount++
			} else if !cancelled && !returned {
				s.PendingIncome += r.GrandTotal
				s.PendingCount++
			}
		case IsOnlinePayment(r.PaymentMethod):
			if r.PaymentStatus == PaymentStatusPaid {
				if cancelled || returned {
					amount := r.RefundAmount
					if amount == 0 {
						amount = r.GrandTotal
					}
					s.TotalRefundAmount += amount
				} else {
					s.TotalIncomeOnline += r.GrandTotal
					s.TotalShippingCollected += r.ShippingAmount
					if r.Status == OrderStatusDelivered {
						s.DeliveredCount++
					}
				}
			} else if r.PaymentStatus == PaymentStatusPending && !cancelled {
				s.PendingIncome += r.GrandTotal
				s.PendingCount++
			}
		}

		switch r.RefundStatus {
		case RefundStatusPending, RefundStatusProcessing:
			s.PendingRefundsCount++
		case RefundStatusCompleted:
			s.CompletedRefundsCount++
		}
	}

	s.TotalIncome = s.TotalIncomeCOD + s.TotalIncomeOnline
	return s
}

// FinanceTransactionFilter narrows the paginated finance ledger. Empty
// fields match everything.
type FinanceTransactionFilter struct {
	FinanceFilter
	PaymentMethod string
	Status        OrderStatus
	// Search matches the order number or the shipping name.
	Search string
	Page   int
	Limit  int
}

// FinanceTransaction is one order as the finance ledger lists it.
type FinanceTransaction struct {
	FinanceRow
	UserID       string `json:"userId"`
	CustomerName string `json:"customerName"`
	IsCancelled  bool   `json:"isCancelled"`
	IsReturned   bool   `json:"isReturned"`
	// IsRefundable marks paid online orders whose cancel or return was approved.
	IsRefundable bool `json:"isRefundable"`
}

func NewFinanceTransaction(row FinanceRow, userID, customerName string) FinanceTransaction {
	tx := FinanceTransaction{
		FinanceRow:   row,
		UserID:       userID,
		CustomerName: customerName,
		IsCancelled:  row.CancelDecision == DecisionApproved,
		IsReturned:   row.ReturnDecision == DecisionApproved,
	}
	tx.IsRefundable = IsOnlinePayment(row.PaymentMethod) &&
		row.PaymentStatus == PaymentStatusPaid &&
		(tx.IsCancelled || tx.IsReturned)
	return tx
}

// TopCustomersLimit is how many customers the analytics report ranks.
const TopCustomersLimit = 5

// MonthlyRevenue sums item totals of non-cancelled orders per UTC month.
type MonthlyRevenue struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalOrders  int64   `json:"totalOrders"`
}

type CustomerSpend struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	TotalSpent  float64 `json:"totalSpent"`
	TotalOrders int64   `json:"totalOrders"`
}

type AnalyticsReport struct {
	MonthlyRevenue []MonthlyRevenue `json:"monthlyRevenue"`
	TopCustomers   []CustomerSpend  `json:"topCustomers"`
}

type StatsRepository interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	FinanceRows(ctx context.Context, filter FinanceFilter) ([]FinanceRow, error)
	FinanceTransactions(ctx context.Context, filter FinanceTransactionFilter) ([]FinanceTransaction, int64, error)
	// Analytics ranks at most topCustomers customers by spend.
	Analytics(ctx context.Context, topCustomers int) (*AnalyticsReport, error)
}
