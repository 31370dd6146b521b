package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"
)

// ErrReportStorageDisabled is returned by exports when no bucket is configured.
var ErrReportStorageDisabled = errors.New("report storage is not configured")

// ReportStorage stores generated report files and returns where they live.
type ReportStorage interface {
	UploadBuffer(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type FinanceReport struct {
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

type StatsUsecase struct {
	repo     domain.StatsRepository
	cache    cache.CacheService
	cacheTTL time.Duration
	storage  ReportStorage
	now      func() time.Time
}

// NewStatsUsecase wires reporting. storage may be nil, which disables exports.
func NewStatsUsecase(repo domain.StatsRepository, c cache.CacheService, cacheTTL time.Duration, storage ReportStorage) *StatsUsecase {
	return &StatsUsecase{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		storage:  storage,
		now:      time.Now,
	}
}

func (uc *StatsUsecase) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, _, err := cache.Remember(uc.cache, cache.KeyDashboardStats, uc.cacheTTL, func() (*domain.DashboardStats, error) {
		return uc.repo.Dashboard(ctx)
	})
	return stats, err
}

// Analytics reports monthly revenue and the top customers by spend. The
// report is cached like the dashboard and cleared by order writes.
func (uc *StatsUsecase) Analytics(ctx context.Context) (*domain.AnalyticsReport, error) {
	report, _, err := cache.Remember(uc.cache, cache.KeyAnalytics, uc.cacheTTL, func() (*domain.AnalyticsReport, error) {
		return uc.repo.Analytics(ctx, domain.TopCustomersLimit)
	})
	return report, err
}

// FinanceTransactions lists orders for the finance ledger. "all" or an empty
// value disables the payment method and status filters.
func (uc *StatsUsecase) FinanceTransactions(ctx context.Context, filter domain.FinanceTransactionFilter) ([]domain.FinanceTransaction, domain.Pagination, error) {
	if err := validateRange(filter.FinanceFilter); err != nil {
		return nil, domain.Pagination{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(filter.PaymentMethod))
	switch {
	case method == "" || method == "ALL":
		filter.PaymentMethod = ""
	case slices.Contains(domain.PaymentMethods, method):
		filter.PaymentMethod = method
	default:
		return nil, domain.Pagination{}, errs.NewValidationError("paymentMethod", "Payment method must be one of "+strings.Join(domain.PaymentMethods, ", "))
	}

	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.Pagination{}, errs.NewValidationError("orderStatus", "Invalid order status")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	rows, total, err := uc.repo.FinanceTransactions(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return rows, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func validateRange(filter domain.FinanceFilter) error {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return errs.NewValidationError("to", "End date must be after start date")
	}
	return nil
}

func (uc *StatsUsecase) FinanceSummary(ctx context.Context, filter domain.FinanceFilter) (*domain.FinanceSummary, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	rows, err := uc.repo.FinanceRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeFinance(rows)
	return &summary, nil
}

var financeHeader = []string{
	"Order Number", "Created At", "Payment Method", "Payment Status", "Order Status",
	"Cancel Decision", "Return Decision", "Subtotal", "Shipping", "COD Charge",
	"Grand Total", "Refund Status", "Refund Amount",
}

// ExportFinance writes the orders in range as CSV and uploads the file.
func (uc *StatsUsecase) ExportFinance(ctx context.Context, filter domain.FinanceFilter) (*FinanceReport, error) {
	if uc.storage == nil {
		return nil, ErrReportStorageDisabled
	}
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	rows, err := uc.repo.FinanceRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := encodeFinanceCSV(rows)
	if err != nil {
		return nil, errs.NewInternalError("encode finance csv", err)
	}

	name := fmt.Sprintf("finance-%s.csv", uc.now().UTC().Format("20060102-150405"))
	url, err := uc.storage.UploadBuffer(ctx, name, data, "text/csv")
	if err != nil {
		return nil, errs.NewInternalError("upload finance report", err)
	}

	logger.WithContext(ctx).Info().Str("url", url).Int("rows", len(rows)).Msg("finance report exported")
	return &FinanceReport{URL: url, Rows: len(rows)}, nil
}

func encodeFinanceCSV(rows []domain.FinanceRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(financeHeader); err != nil {
		return nil, err
	}

	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	for _, r := range rows {
		record := []string{
			r.OrderNumber,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.PaymentMethod,
			string(r.PaymentStatus),
			string(r.Status),
			string(r.CancelDecision),
			string(r.ReturnDecision),
			money(r.TotalAmount),
			money(r.ShippingAmount),
			money(r.CODCharge),
			money(r.GrandTotal),
			string(r.RefundStatus),
			money(r.RefundAmount),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
