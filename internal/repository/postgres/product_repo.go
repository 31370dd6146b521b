package pgrepo

import (
	"context"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var (
		p          domain.Product
		pid        pgtype.UUID
		base, sale pgtype.Numeric
		updatedAt  pgtype.Timestamptz
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, base_price, sale_price, stock, is_active, images, updated_at
		FROM products WHERE id = $1`, stringToUUID(id),
	).Scan(&pid, &p.Name, &base, &sale, &p.Stock, &p.IsActive, &p.Images, &updatedAt)
	if err != nil {
		return nil, notFound(err, "Product", id, "products.get")
	}
	p.ID = uuidToString(pid)
	p.BasePrice = numericToFloat64(base)
	p.SalePrice = numericToFloat64Ptr(sale)
	p.UpdatedAt = pgtimeToTime(updatedAt)
	return &p, nil
}

// UpdateStock applies the delta and logs it atomically. Inside a caller's
// transaction it runs as a savepoint.
func (r *productRepository) UpdateStock(ctx context.Context, productID string, quantity int, reason, referenceID string) error {
	return pgx.BeginFunc(ctx, conn(ctx, r.db), func(tx pgx.Tx) error {
		id := stringToUUID(productID)

		tag, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock + $2, updated_at = NOW()
			WHERE id = $1 AND stock + $2 >= 0`, id, quantity)
		if err != nil {
			return errs.NewInternalError("products.update_stock", err)
		}
		if tag.RowsAffected() == 0 {
			var name string
			if err := tx.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, id).Scan(&name); err != nil {
				return notFound(err, "Product", productID, "products.update_stock")
			}
			return errs.NewValidationError("quantity", "Insufficient stock for "+name)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_logs (product_id, change_amount, reason, reference_id)
			VALUES ($1, $2, $3, $4)`, id, quantity, reason, referenceID)
		if err != nil {
			return errs.NewInternalError("inventory_logs.create", err)
		}
		return nil
	})
}

func (r *productRepository) GetInventoryLogs(ctx context.Context, productID string, limit, offset int) ([]domain.InventoryLog, int64, error) {
	var prodUUID pgtype.UUID
	if productID != "" {
		prodUUID = stringToUUID(productID)
	}

	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_logs
		WHERE ($1::uuid IS NULL OR product_id = $1)`, prodUUID).Scan(&total); err != nil {
		return nil, 0, errs.NewInternalError("inventory_logs.count", err)
	}

	rows, err := db.Query(ctx, `
		SELECT id, product_id, change_amount, reason, reference_id, created_at
		FROM inventory_logs
		WHERE ($1::uuid IS NULL OR product_id = $1)
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, prodUUID, limit, offset)
	if err != nil {
		return nil, 0, errs.NewInternalError("inventory_logs.list", err)
	}
	defer rows.Close()

	logs := make([]domain.InventoryLog, 0)
	for rows.Next() {
		var (
			l         domain.InventoryLog
			pid       pgtype.UUID
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&l.ID, &pid, &l.ChangeAmount, &l.Reason, &l.ReferenceID, &createdAt); err != nil {
			return nil, 0, errs.NewInternalError("inventory_logs.scan", err)
		}
		l.ProductID = uuidToString(pid)
		l.CreatedAt = pgtimeToTime(createdAt)
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
