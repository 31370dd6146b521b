package memory

import (
	"context"
	"sort"
	"strings"

	"orderflow-backend/internal/domain"
)

// StatsRepository aggregates over an in-memory OrderRepository.
type StatsRepository struct {
	orders *OrderRepository
}

func NewStatsRepository(orders *OrderRepository) *StatsRepository {
	return &StatsRepository{orders: orders}
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{StatusCounts: make(map[domain.OrderStatus]int64)}
	for _, o := range r.orders.snapshot() {
		stats.TotalOrders++
		stats.StatusCounts[o.Status]++
		if o.Status == domain.OrderStatusDelivered && o.Return.Decision != domain.DecisionApproved {
			stats.TotalRevenue += o.GrandTotal
		}
		if o.Cancellation.IsPending() {
			stats.PendingCancelRequests++
		}
		if o.Return.IsPending() {
			stats.PendingReturnRequests++
		}
		if o.Refund.Status == domain.RefundStatusPending || o.Refund.Status == domain.RefundStatusProcessing {
			stats.PendingRefunds++
		}
	}
	return stats, nil
}

func inRange(o *domain.Order, f domain.FinanceFilter) bool {
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	return f.To == nil || !o.CreatedAt.After(*f.To)
}

// newestFirst returns the orders matching keep, latest first.
func (r *StatsRepository) newestFirst(keep func(o *domain.Order) bool) []*domain.Order {
	out := make([]*domain.Order, 0)
	for _, o := range r.orders.snapshot() {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *StatsRepository) FinanceRows(ctx context.Context, filter domain.FinanceFilter) ([]domain.FinanceRow, error) {
	orders := r.newestFirst(func(o *domain.Order) bool { return inRange(o, filter) })
	rows := make([]domain.FinanceRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, domain.FinanceRowFromOrder(o))
	}
	return rows, nil
}

func (r *StatsRepository) FinanceTransactions(ctx context.Context, filter domain.FinanceTransactionFilter) ([]domain.FinanceTransaction, int64, error) {
	search := strings.ToLower(filter.Search)
	orders := r.newestFirst(func(o *domain.Order) bool {
		if !inRange(o, filter.FinanceFilter) {
			return false
		}
		if filter.PaymentMethod != "" && o.PaymentMethod != filter.PaymentMethod {
			return false
		}
		if filter.Status != "" && o.Status != filter.Status {
			return false
		}
		return search == "" ||
			strings.Contains(strings.ToLower(o.OrderNumber), search) ||
			strings.Contains(strings.ToLower(o.ShippingAddress.Name), search)
	})

	total := int64(len(orders))
	if filter.Limit > 0 {
		start := max(filter.Page-1, 0) * filter.Limit
		orders = orders[min(start, len(orders)):min(start+filter.Limit, len(orders))]
	}

	out := make([]domain.FinanceTransaction, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.NewFinanceTransaction(domain.FinanceRowFromOrder(o), o.UserID, o.ShippingAddress.Name))
	}
	return out, total, nil
}

func (r *StatsRepository) Analytics(ctx context.Context, topCustomers int) (*domain.AnalyticsReport, error) {
	type month struct{ year, month int }
	months := make(map[month]*domain.MonthlyRevenue)
	customers := make(map[string]*domain.CustomerSpend)

	// Oldest first so the latest shipping name wins.
	orders := r.newestFirst(func(o *domain.Order) bool { return o.Status != domain.OrderStatusCancelled })
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		created := o.CreatedAt.UTC()
		key := month{created.Year(), int(created.Month())}
		m, ok := months[key]
		if !ok {
			m = &domain.MonthlyRevenue{Year: key.year, Month: key.month}
			months[key] = m
		}
		m.TotalRevenue += o.TotalAmount
		m.TotalOrders++

		c, ok := customers[o.UserID]
		if !ok {
			c = &domain.CustomerSpend{UserID: o.UserID}
			customers[o.UserID] = c
		}
		c.Name = o.ShippingAddress.Name
		c.TotalSpent += o.TotalAmount
		c.TotalOrders++
	}

	report := &domain.AnalyticsReport{
		MonthlyRevenue: make([]domain.MonthlyRevenue, 0, len(months)),
		TopCustomers:   make([]domain.CustomerSpend, 0, len(customers)),
	}
	for _, m := range months {
		report.MonthlyRevenue = append(report.MonthlyRevenue, *m)
	}
	sort.Slice(report.MonthlyRevenue, func(i, j int) bool {
		a, b := report.MonthlyRevenue[i], report.MonthlyRevenue[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	for _, c := range customers {
		report.TopCustomers = append(report.TopCustomers, *c)
	}
	sort.Slice(report.TopCustomers, func(i, j int) bool {
		a, b := report.TopCustomers[i], report.TopCustomers[j]
		if a.TotalSpent != b.TotalSpent {
			return a.TotalSpent > b.TotalSpent
		}
		return a.UserID < b.UserID
	})
	if topCustomers > 0 && len(report.TopCustomers) > topCustomers {
		report.TopCustomers = report.TopCustomers[:topCustomers]
	}
	return report, nil
}
