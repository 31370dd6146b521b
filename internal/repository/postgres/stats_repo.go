package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) domain.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT
			status,
			COUNT(*),
			COALESCE(SUM(grand_total) FILTER (WHERE status = 'delivered' AND return_decision <> 'Approved'), 0),
			COUNT(*) FILTER (WHERE cancel_decision = 'Pending'),
			COUNT(*) FILTER (WHERE return_decision = 'Pending'),
			COUNT(*) FILTER (WHERE refund_status IN ('Pending', 'Processing'))
		FROM orders
		GROUP BY status`)
	if err != nil {
		return nil, errs.NewInternalError("stats.dashboard", err)
	}
	defer rows.Close()

	stats := &domain.DashboardStats{StatusCounts: make(map[domain.OrderStatus]int64)}
	for rows.Next() {
		var (
			status                        string
			count, cancels, returns, refs int64
			revenue                       pgtype.Numeric
		)
		if err := rows.Scan(&status, &count, &revenue, &cancels, &returns, &refs); err != nil {
			return nil, errs.NewInternalError("stats.dashboard.scan", err)
		}
		stats.StatusCounts[domain.OrderStatus(status)] = count
		stats.TotalOrders += count
		stats.TotalRevenue += numericToFloat64(revenue)
		stats.PendingCancelRequests += cancels
		stats.PendingReturnRequests += returns
		stats.PendingRefunds += refs
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewInternalError("stats.dashboard", err)
	}
	return stats, nil
}

const financeColumns = `
	id, order_number, created_at, payment_method, payment_status, status,
	cancel_decision, return_decision,
	total_amount, shipping_amount, cod_charge, grand_total,
	refund_status, COALESCE((refund->>'amount')::numeric, 0)`

// scanFinanceRow reads financeColumns followed by any extra destinations.
func scanFinanceRow(rows pgx.Rows, extra ...any) (domain.FinanceRow, error) {
	var (
		row                                   domain.FinanceRow
		id                                    pgtype.UUID
		createdAt                             pgtype.Timestamptz
		payStatus, status, cancel, ret, refSt string
		total, shipping, cod, grand, refund   pgtype.Numeric
	)
	dest := append([]any{&id, &row.OrderNumber, &createdAt, &row.PaymentMethod, &payStatus, &status,
		&cancel, &ret, &total, &shipping, &cod, &grand, &refSt, &refund}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return row, err
	}
	row.OrderID = uuidToString(id)
	row.CreatedAt = pgtimeToTime(createdAt)
	row.PaymentStatus = domain.PaymentStatus(payStatus)
	row.Status = domain.OrderStatus(status)
	row.CancelDecision = domain.RequestDecision(cancel)
	row.ReturnDecision = domain.RequestDecision(ret)
	row.TotalAmount = numericToFloat64(total)
	row.ShippingAmount = numericToFloat64(shipping)
	row.CODCharge = numericToFloat64(cod)
	row.GrandTotal = numericToFloat64(grand)
	row.RefundStatus = domain.RefundStatus(refSt)
	row.RefundAmount = numericToFloat64(refund)
	return row, nil
}

func (r *statsRepository) FinanceRows(ctx context.Context, filter domain.FinanceFilter) ([]domain.FinanceRow, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+financeColumns+`
		FROM orders
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at DESC`, filter.From, filter.To)
	if err != nil {
		return nil, errs.NewInternalError("stats.finance", err)
	}
	defer rows.Close()

	result := make([]domain.FinanceRow, 0)
	for rows.Next() {
		row, err := scanFinanceRow(rows)
		if err != nil {
			return nil, errs.NewInternalError("stats.finance.scan", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *statsRepository) FinanceTransactions(ctx context.Context, filter domain.FinanceTransactionFilter) ([]domain.FinanceTransaction, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "$?", fmt.Sprintf("$%d", len(args))))
	}
	if filter.From != nil {
		add("created_at >= $?", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $?", *filter.To)
	}
	if filter.PaymentMethod != "" {
		add("payment_method = $?", filter.PaymentMethod)
	}
	if filter.Status != "" {
		add("status = $?", string(filter.Status))
	}
	if filter.Search != "" {
		add("(order_number ILIKE $? OR shipping_address->>'name' ILIKE $?)", "%"+filter.Search+"%")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+clause, args...).Scan(&total); err != nil {
		return nil, 0, errs.NewInternalError("stats.transactions.count", err)
	}

	query := `SELECT ` + financeColumns + `, user_id, COALESCE(shipping_address->>'name', '')
		FROM orders` + clause + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, max(filter.Page-1, 0)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errs.NewInternalError("stats.transactions", err)
	}
	defer rows.Close()

	result := make([]domain.FinanceTransaction, 0)
	for rows.Next() {
		var (
			userID pgtype.UUID
			name   string
		)
		row, err := scanFinanceRow(rows, &userID, &name)
		if err != nil {
			return nil, 0, errs.NewInternalError("stats.transactions.scan", err)
		}
		result = append(result, domain.NewFinanceTransaction(row, uuidToString(userID), name))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.NewInternalError("stats.transactions", err)
	}
	return result, total, nil
}

func (r *statsRepository) Analytics(ctx context.Context, topCustomers int) (*domain.AnalyticsReport, error) {
	db := conn(ctx, r.db)
	report := &domain.AnalyticsReport{
		MonthlyRevenue: make([]domain.MonthlyRevenue, 0),
		TopCustomers:   make([]domain.CustomerSpend, 0),
	}

	rows, err := db.Query(ctx, `
		SELECT
			EXTRACT(YEAR FROM month)::int,
			EXTRACT(MONTH FROM month)::int,
			revenue,
			orders
		FROM (
			SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month,
			       SUM(total_amount) AS revenue,
			       COUNT(*) AS orders
			FROM orders
			WHERE status <> 'cancelled'
			GROUP BY 1
		) m
		ORDER BY month`)
	if err != nil {
		return nil, errs.NewInternalError("stats.analytics.monthly", err)
	}
	for rows.Next() {
		var (
			m       domain.MonthlyRevenue
			revenue pgtype.Numeric
		)
		if err := rows.Scan(&m.Year, &m.Month, &revenue, &m.TotalOrders); err != nil {
			rows.Close()
			return nil, errs.NewInternalError("stats.analytics.monthly.scan", err)
		}
		m.TotalRevenue = numericToFloat64(revenue)
		report.MonthlyRevenue = append(report.MonthlyRevenue, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errs.NewInternalError("stats.analytics.monthly", err)
	}

	rows, err = db.Query(ctx, `
		SELECT
			user_id,
			COALESCE((array_agg(shipping_address->>'name' ORDER BY created_at DESC))[1], ''),
			SUM(total_amount),
			COUNT(*)
		FROM orders
		WHERE status <> 'cancelled'
		GROUP BY user_id
		ORDER BY SUM(total_amount) DESC, user_id
		LIMIT $1`, topCustomers)
	if err != nil {
		return nil, errs.NewInternalError("stats.analytics.customers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c      domain.CustomerSpend
			userID pgtype.UUID
			spent  pgtype.Numeric
		)
		if err := rows.Scan(&userID, &c.Name, &spent, &c.TotalOrders); err != nil {
			return nil, errs.NewInternalError("stats.analytics.customers.scan", err)
		}
		c.UserID = uuidToString(userID)
		c.TotalSpent = numericToFloat64(spent)
		report.TopCustomers = append(report.TopCustomers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewInternalError("stats.analytics.customers", err)
	}
	return report, nil
}
