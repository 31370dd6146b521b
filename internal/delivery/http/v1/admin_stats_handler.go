package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/utils"
)

type AdminStatsHandler struct {
	statsUC *usecase.StatsUsecase
}

func NewAdminStatsHandler(uc *usecase.StatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{statsUC: uc}
}

// GET /api/v1/admin/stats/dashboard
func (h *AdminStatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.Dashboard(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// GET /api/v1/admin/stats/analytics
func (h *AdminStatsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.statsUC.Analytics(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

// financeFilter reads from/to. A date-only "to" covers that whole day.
func financeFilter(r *http.Request) (domain.FinanceFilter, error) {
	from, err := utils.QueryDate(r, "from")
	if err != nil {
		return domain.FinanceFilter{}, errs.NewValidationErrorWithCause("from", "from must be YYYY-MM-DD or RFC 3339", err)
	}
	to, err := utils.QueryDate(r, "to")
	if err != nil {
		return domain.FinanceFilter{}, errs.NewValidationErrorWithCause("to", "to must be YYYY-MM-DD or RFC 3339", err)
	}
	if to != nil && len(r.URL.Query().Get("to")) == len(time.DateOnly) {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return domain.FinanceFilter{From: from, To: to}, nil
}

// GET /api/v1/admin/stats/finance?from=2026-01-01&to=2026-01-31
func (h *AdminStatsHandler) GetFinance(w http.ResponseWriter, r *http.Request) {
	filter, err := financeFilter(r)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	summary, err := h.statsUC.FinanceSummary(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// GET /api/v1/admin/stats/finance/transactions?page=1&limit=20&paymentMethod=COD&orderStatus=delivered&search=
func (h *AdminStatsHandler) ListFinanceTransactions(w http.ResponseWriter, r *http.Request) {
	dates, err := financeFilter(r)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := domain.FinanceTransactionFilter{
		FinanceFilter: dates,
		PaymentMethod: q.Get("paymentMethod"),
		Status:        domain.NormalizeOrderStatus(q.Get("orderStatus")),
		Search:        strings.TrimSpace(q.Get("search")),
		Page:          utils.QueryInt(r, "page", 1, 1, 0),
		Limit:         utils.QueryInt(r, "limit", 20, 1, 100),
	}

	transactions, pagination, err := h.statsUC.FinanceTransactions(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"pagination":   pagination,
	})
}

// POST /api/v1/admin/stats/finance/export?from=&to=
func (h *AdminStatsHandler) ExportFinance(w http.ResponseWriter, r *http.Request) {
	filter, err := financeFilter(r)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	report, err := h.statsUC.ExportFinance(r.Context(), filter)
	if errors.Is(err, usecase.ErrReportStorageDisabled) {
		utils.WriteError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}
