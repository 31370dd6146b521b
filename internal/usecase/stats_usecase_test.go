package usecase_test

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/infrastructure/cache"
	"orderflow-backend/internal/repository/memory"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	name        string
	contentType string
	data        []byte
	err         error
}

func (s *fakeStorage) UploadBuffer(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.name, s.data, s.contentType = name, data, contentType
	return "https://files.example.test/reports/" + name, nil
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	delivered := f.place(t, "COD")
	_, err := f.order.UpdateOrderStatus(ctx, "admin", delivered.ID, "delivered")
	require.NoError(t, err)

	pending := f.place(t, "ONLINE")
	_, err = f.workflow.RequestCancel(ctx, "u1", pending.ID, "mistake", nil)
	require.NoError(t, err)

	stats := usecase.NewStatsUsecase(memory.NewStatsRepository(f.orders), nil, time.Minute, nil)
	d, err := stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalOrders)
	assert.Equal(t, 390.0, d.TotalRevenue)
	assert.Equal(t, int64(1), d.PendingCancelRequests)
	assert.Equal(t, int64(1), d.StatusCounts[domain.OrderStatusDelivered])
}

func TestFinanceSummaryAndExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.placePaid(t)
	f.now = t0.Add(48 * time.Hour)
	f.place(t, "COD")

	storage := &fakeStorage{}
	stats := usecase.NewStatsUsecase(memory.NewStatsRepository(f.orders), nil, time.Minute, storage)

	summary, err := stats.FinanceSummary(ctx, domain.FinanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalOrders)
	assert.Equal(t, 350.0, summary.TotalIncomeOnline)
	assert.Equal(t, 390.0, summary.PendingIncome)

	to := t0.Add(time.Hour)
	summary, err = stats.FinanceSummary(ctx, domain.FinanceFilter{To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalOrders)

	report, err := stats.ExportFinance(ctx, domain.FinanceFilter{To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows)
	assert.True(t, strings.HasSuffix(report.URL, ".csv"))
	assert.Equal(t, "text/csv", storage.contentType)

	records, err := csv.NewReader(strings.NewReader(string(storage.data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Order Number", records[0][0])
	assert.Equal(t, o.OrderNumber, records[1][0])
	assert.Equal(t, "350.00", records[1][10])

	from := t0.Add(time.Hour)
	_, err = stats.FinanceSummary(ctx, domain.FinanceFilter{From: &from, To: &t0})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestExportFinanceErrors(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStatsRepository(memory.NewOrderRepository())

	_, err := usecase.NewStatsUsecase(repo, nil, time.Minute, nil).ExportFinance(ctx, domain.FinanceFilter{})
	assert.ErrorIs(t, err, usecase.ErrReportStorageDisabled)

	_, err = usecase.NewStatsUsecase(repo, nil, time.Minute, &fakeStorage{err: errors.New("bucket gone")}).
		ExportFinance(ctx, domain.FinanceFilter{})
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

func TestCachedStatsFollowOrderWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	f.order.WithStatsCache(c)
	f.workflow.WithStatsCache(c)
	f.refund.WithStatsCache(c)
	stats := usecase.NewStatsUsecase(memory.NewStatsRepository(f.orders), c, time.Hour, nil)

	o := f.place(t, "ONLINE")
	d, err := stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.TotalOrders)
	assert.Zero(t, d.PendingCancelRequests)
	report, err := stats.Analytics(ctx)
	require.NoError(t, err)
	require.Len(t, report.MonthlyRevenue, 1)

	_, err = f.workflow.RequestCancel(ctx, "u1", o.ID, "mistake", nil)
	require.NoError(t, err)
	d, err = stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.PendingCancelRequests)

	_, err = f.workflow.ApproveCancel(ctx, "admin", o.ID)
	require.NoError(t, err)
	d, err = stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.PendingCancelRequests)
	report, err = stats.Analytics(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.MonthlyRevenue)

	f.place(t, "COD")
	d, err = stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalOrders)
}

func TestFinanceTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	paid := f.placePaid(t)
	_, err := f.workflow.RequestCancel(ctx, "u1", paid.ID, "mistake", nil)
	require.NoError(t, err)
	_, err = f.workflow.ApproveCancel(ctx, "admin", paid.ID)
	require.NoError(t, err)
	f.now = t0.Add(48 * time.Hour)
	cod := f.place(t, "COD")

	stats := usecase.NewStatsUsecase(memory.NewStatsRepository(f.orders), nil, time.Minute, nil)

	rows, page, err := stats.FinanceTransactions(ctx, domain.FinanceTransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 20, TotalItems: 2, TotalPages: 1}, page)
	assert.Equal(t, cod.OrderNumber, rows[0].OrderNumber)
	assert.False(t, rows[0].IsRefundable)
	assert.Equal(t, paid.OrderNumber, rows[1].OrderNumber)
	assert.True(t, rows[1].IsCancelled)
	assert.False(t, rows[1].IsReturned)
	assert.True(t, rows[1].IsRefundable)
	assert.Equal(t, "u1", rows[1].UserID)
	assert.Equal(t, "Asha", rows[1].CustomerName)

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			name   string
			filter domain.FinanceTransactionFilter
			want   []string
		}{
			{"payment method", domain.FinanceTransactionFilter{PaymentMethod: "cod"}, []string{cod.OrderNumber}},
			{"all methods by status", domain.FinanceTransactionFilter{PaymentMethod: "all", Status: domain.OrderStatusCancelled}, []string{paid.OrderNumber}},
			{"search by name", domain.FinanceTransactionFilter{Search: "asha"}, []string{cod.OrderNumber, paid.OrderNumber}},
			{"search by number", domain.FinanceTransactionFilter{Search: cod.OrderNumber}, []string{cod.OrderNumber}},
			{"date range", domain.FinanceTransactionFilter{FinanceFilter: domain.FinanceFilter{To: ptr(t0.Add(time.Hour))}}, []string{paid.OrderNumber}},
			{"second page", domain.FinanceTransactionFilter{Page: 2, Limit: 1}, []string{paid.OrderNumber}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rows, _, err := stats.FinanceTransactions(ctx, tt.filter)
				require.NoError(t, err)
				got := make([]string, 0, len(rows))
				for _, r := range rows {
					got = append(got, r.OrderNumber)
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})

	_, page, err = stats.FinanceTransactions(ctx, domain.FinanceTransactionFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)

	_, _, err = stats.FinanceTransactions(ctx, domain.FinanceTransactionFilter{PaymentMethod: "BITCOIN"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	_, _, err = stats.FinanceTransactions(ctx, domain.FinanceTransactionFilter{Status: "lost"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.place(t, "COD")

	f.now = t0.AddDate(0, 1, 0)
	addr := testAddress()
	addr.Name = "Ravi"
	_, err := f.order.PlaceOrder(ctx, "u2", usecase.PlaceOrderInput{
		Items:           []usecase.PlaceOrderItem{{ProductID: "p2", Quantity: 1}},
		ShippingAddress: addr,
		PaymentMethod:   "COD",
	})
	require.NoError(t, err)

	cancelled := f.place(t, "COD")
	_, err = f.workflow.RequestCancel(ctx, "u1", cancelled.ID, "mistake", nil)
	require.NoError(t, err)
	_, err = f.workflow.ApproveCancel(ctx, "admin", cancelled.ID)
	require.NoError(t, err)

	report, err := usecase.NewStatsUsecase(memory.NewStatsRepository(f.orders), nil, time.Minute, nil).Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.MonthlyRevenue{
		{Year: 2026, Month: 3, TotalRevenue: 300, TotalOrders: 1},
		{Year: 2026, Month: 4, TotalRevenue: 800, TotalOrders: 1},
	}, report.MonthlyRevenue)
	assert.Equal(t, []domain.CustomerSpend{
		{UserID: "u2", Name: "Ravi", TotalSpent: 800, TotalOrders: 1},
		{UserID: "u1", Name: "Asha", TotalSpent: 300, TotalOrders: 1},
	}, report.TopCustomers)
}
