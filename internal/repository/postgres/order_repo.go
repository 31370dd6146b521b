package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, items, shipping_address,
	total_amount, shipping_amount, cod_charge, grand_total,
	payment_method, payment_status, transaction_id, status, status_timestamps,
	cancellation, return_request, refund, stock_restored, version, created_at, updated_at`

// --- Mappers ---

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                                       domain.Order
		id, userID                              pgtype.UUID
		items, addr, stamps, cancel, ret, refnd []byte
		total, shipping, cod, grand             pgtype.Numeric
		paymentStatus, status                   string
		txID                                    *string
		createdAt, updatedAt                    pgtype.Timestamptz
	)
	err := row.Scan(&id, &o.OrderNumber, &userID, &items, &addr,
		&total, &shipping, &cod, &grand,
		&o.PaymentMethod, &paymentStatus, &txID, &status, &stamps,
		&cancel, &ret, &refnd, &o.StockRestored, &o.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	o.ID = uuidToString(id)
	o.UserID = uuidToString(userID)
	o.TotalAmount = numericToFloat64(total)
	o.ShippingAmount = numericToFloat64(shipping)
	o.CODCharge = numericToFloat64(cod)
	o.GrandTotal = numericToFloat64(grand)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	o.TransactionID = ptrString(txID)
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = pgtimeToTime(createdAt)
	o.UpdatedAt = pgtimeToTime(updatedAt)

	docs := []struct {
		raw []byte
		dst any
	}{
		{items, &o.Items},
		{addr, &o.ShippingAddress},
		{stamps, &o.StatusTimestamps},
		{cancel, &o.Cancellation},
		{ret, &o.Return},
		{refnd, &o.Refund},
	}
	for _, d := range docs {
		if len(d.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", o.ID, err)
		}
	}
	if o.StatusTimestamps == nil {
		o.StatusTimestamps = domain.StatusTimestamps{}
	}
	return &o, nil
}

type orderDocs struct {
	items, addr, stamps, cancel, ret, refund []byte
}

func encodeOrderDocs(o *domain.Order) (orderDocs, error) {
	var (
		d   orderDocs
		err error
	)
	if d.items, err = json.Marshal(o.Items); err != nil {
		return d, err
	}
	if d.addr, err = json.Marshal(o.ShippingAddress); err != nil {
		return d, err
	}
	if d.stamps, err = json.Marshal(o.StatusTimestamps); err != nil {
		return d, err
	}
	if d.cancel, err = json.Marshal(o.Cancellation); err != nil {
		return d, err
	}
	if d.ret, err = json.Marshal(o.Return); err != nil {
		return d, err
	}
	if d.refund, err = json.Marshal(o.Refund); err != nil {
		return d, err
	}
	return d, nil
}

// --- Order Methods ---

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	docs, err := encodeOrderDocs(order)
	if err != nil {
		return errs.NewInternalError("orders.create.encode", err)
	}

	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, $19, $19)
		RETURNING version`,
		stringToUUID(order.ID), order.OrderNumber, stringToUUID(order.UserID), docs.items, docs.addr,
		float64ToNumeric(order.TotalAmount), float64ToNumeric(order.ShippingAmount),
		float64ToNumeric(order.CODCharge), float64ToNumeric(order.GrandTotal),
		order.PaymentMethod, string(order.PaymentStatus), strPtr(order.TransactionID), string(order.Status), docs.stamps,
		docs.cancel, docs.ret, docs.refund, order.StockRestored, order.CreatedAt,
	).Scan(&order.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.NewInvalidStateErrorWithCause("Order number already exists, please retry", err)
		}
		return errs.NewInternalError("orders.create", err)
	}
	order.UpdatedAt = order.CreatedAt
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, stringToUUID(id))
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err, "Order", id, "orders.get")
	}
	return o, nil
}

func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, stringToUUID(id))
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err, "Order", id, "orders.get_for_update")
	}
	return o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, _, err := r.List(ctx, domain.OrderFilter{UserID: userID})
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", stringToUUID(filter.UserID))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.PaymentStatus != "" {
		add("payment_status = $%d", string(filter.PaymentStatus))
	}
	if filter.Search != "" {
		add("order_number ILIKE $%d", "%"+filter.Search+"%")
	}
	switch filter.View {
	case domain.OrderViewCancelRequests:
		where = append(where, "cancel_decision = 'Pending'")
	case domain.OrderViewReturnRequests:
		where = append(where, "return_decision = 'Pending'")
	case domain.OrderViewPendingRefunds:
		where = append(where, "refund_status IN ('Pending', 'Processing')")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+clause, args...).Scan(&total); err != nil {
		return nil, 0, errs.NewInternalError("orders.count", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + clause + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.Limit, (page-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errs.NewInternalError("orders.list", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, errs.NewInternalError("orders.list.scan", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.NewInternalError("orders.list", err)
	}
	return orders, total, nil
}

// Update writes the mutable part of the order guarded by its version.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	docs, err := encodeOrderDocs(order)
	if err != nil {
		return errs.NewInternalError("orders.update.encode", err)
	}

	var updatedAt pgtype.Timestamptz
	err = conn(ctx, r.db).QueryRow(ctx, `
		UPDATE orders SET
			payment_status = $3,
			transaction_id = $4,
			status = $5,
			status_timestamps = $6,
			cancellation = $7,
			return_request = $8,
			refund = $9,
			stock_restored = $10,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`,
		stringToUUID(order.ID), order.Version,
		string(order.PaymentStatus), strPtr(order.TransactionID), string(order.Status), docs.stamps,
		docs.cancel, docs.ret, docs.refund, order.StockRestored,
	).Scan(&order.Version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrentUpdate
		}
		return errs.NewInternalError("orders.update", err)
	}
	order.UpdatedAt = pgtimeToTime(updatedAt)
	return nil
}

func (r *orderRepository) CountStaleRefunds(ctx context.Context, initiatedBefore time.Time) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE refund_status IN ('Pending', 'Processing')
		  AND (refund->>'initiatedAt')::timestamptz < $1`, initiatedBefore).Scan(&n)
	if err != nil {
		return 0, errs.NewInternalError("orders.count_stale_refunds", err)
	}
	return n, nil
}

// --- History ---

func (r *orderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	var createdBy pgtype.UUID
	if history.CreatedBy != nil {
		createdBy = stringToUUID(*history.CreatedBy)
	}

	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_history (order_id, action, previous_status, new_status, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		stringToUUID(history.OrderID), history.Action, history.PreviousStatus, history.NewStatus,
		history.Reason, createdBy,
	).Scan(&id, &createdAt)
	if err != nil {
		return errs.NewInternalError("order_history.create", err)
	}
	history.ID = uuidToString(id)
	history.CreatedAt = pgtimeToTime(createdAt)
	return nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, order_id, action, previous_status, new_status, reason, created_by, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at`, stringToUUID(orderID))
	if err != nil {
		return nil, errs.NewInternalError("order_history.list", err)
	}
	defer rows.Close()

	result := make([]domain.OrderHistory, 0)
	for rows.Next() {
		var (
			h                  domain.OrderHistory
			id, oid, createdBy pgtype.UUID
			createdAt          pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &oid, &h.Action, &h.PreviousStatus, &h.NewStatus, &h.Reason, &createdBy, &createdAt); err != nil {
			return nil, errs.NewInternalError("order_history.scan", err)
		}
		h.ID = uuidToString(id)
		h.OrderID = uuidToString(oid)
		h.CreatedBy = strPtr(uuidToString(createdBy))
		h.CreatedAt = pgtimeToTime(createdAt)
		result = append(result, h)
	}
	return result, rows.Err()
}
