package pgrepo

import (
	"context"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type shippingRepository struct {
	db *pgxpool.Pool
}

func NewShippingRepository(db *pgxpool.Pool) domain.ShippingRepository {
	return &shippingRepository{db: db}
}

// --- Settings ---

func (r *shippingRepository) EnsureSettings(ctx context.Context, defaults domain.ShippingSettings) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO shipping_settings (id, free_shipping_enabled, cod_enabled, cod_charge)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		defaults.FreeShippingEnabled, defaults.CODEnabled, float64ToNumeric(defaults.CODCharge))
	if err != nil {
		return errs.NewInternalError("shipping_settings.ensure", err)
	}
	return nil
}

func (r *shippingRepository) GetSettings(ctx context.Context) (*domain.ShippingSettings, error) {
	var (
		s         domain.ShippingSettings
		codCharge pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT free_shipping_enabled, cod_enabled, cod_charge, updated_at
		FROM shipping_settings WHERE id = 1`,
	).Scan(&s.FreeShippingEnabled, &s.CODEnabled, &codCharge, &updatedAt)
	if err != nil {
		return nil, notFound(err, "Shipping settings", 1, "shipping_settings.get")
	}
	s.CODCharge = numericToFloat64(codCharge)
	s.UpdatedAt = pgtimeToTime(updatedAt)
	return &s, nil
}

func (r *shippingRepository) SaveSettings(ctx context.Context, settings *domain.ShippingSettings) error {
	var updatedAt pgtype.Timestamptz
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO shipping_settings (id, free_shipping_enabled, cod_enabled, cod_charge, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			free_shipping_enabled = EXCLUDED.free_shipping_enabled,
			cod_enabled = EXCLUDED.cod_enabled,
			cod_charge = EXCLUDED.cod_charge,
			updated_at = NOW()
		RETURNING updated_at`,
		settings.FreeShippingEnabled, settings.CODEnabled, float64ToNumeric(settings.CODCharge),
	).Scan(&updatedAt)
	if err != nil {
		return errs.NewInternalError("shipping_settings.save", err)
	}
	settings.UpdatedAt = pgtimeToTime(updatedAt)
	return nil
}

// --- Slabs ---

// LockSlabs blocks other slab writers (and itself) until the transaction
// ends; plain readers are not blocked.
func (r *shippingRepository) LockSlabs(ctx context.Context) error {
	if _, err := conn(ctx, r.db).Exec(ctx, `LOCK TABLE shipping_slabs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return errs.NewInternalError("shipping_slabs.lock", err)
	}
	return nil
}

const slabColumns = `id, min_amount, max_amount, shipping_charge, status, created_at, updated_at`

func scanSlab(row pgx.Row) (*domain.ShippingSlab, error) {
	var (
		s                    domain.ShippingSlab
		id                   pgtype.UUID
		minAmt, maxAmt, chg  pgtype.Numeric
		status               string
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &minAmt, &maxAmt, &chg, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.ID = uuidToString(id)
	s.MinAmount = numericToFloat64(minAmt)
	s.MaxAmount = numericToFloat64Ptr(maxAmt)
	s.ShippingCharge = numericToFloat64(chg)
	s.Status = domain.SlabStatus(status)
	s.CreatedAt = pgtimeToTime(createdAt)
	s.UpdatedAt = pgtimeToTime(updatedAt)
	return &s, nil
}

func (r *shippingRepository) ListSlabs(ctx context.Context) ([]domain.ShippingSlab, error) {
	return r.listSlabs(ctx, `SELECT `+slabColumns+` FROM shipping_slabs ORDER BY min_amount`)
}

func (r *shippingRepository) ListActiveSlabs(ctx context.Context) ([]domain.ShippingSlab, error) {
	return r.listSlabs(ctx, `SELECT `+slabColumns+` FROM shipping_slabs WHERE status = 'active' ORDER BY min_amount`)
}

func (r *shippingRepository) listSlabs(ctx context.Context, query string) ([]domain.ShippingSlab, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, errs.NewInternalError("shipping_slabs.list", err)
	}
	defer rows.Close()

	result := make([]domain.ShippingSlab, 0)
	for rows.Next() {
		s, err := scanSlab(rows)
		if err != nil {
			return nil, errs.NewInternalError("shipping_slabs.scan", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *shippingRepository) GetSlab(ctx context.Context, id string) (*domain.ShippingSlab, error) {
	s, err := scanSlab(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+slabColumns+` FROM shipping_slabs WHERE id = $1`, stringToUUID(id)))
	if err != nil {
		return nil, notFound(err, "Shipping slab", id, "shipping_slabs.get")
	}
	return s, nil
}

func (r *shippingRepository) CreateSlab(ctx context.Context, slab *domain.ShippingSlab) error {
	created, err := scanSlab(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO shipping_slabs (min_amount, max_amount, shipping_charge, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+slabColumns,
		float64ToNumeric(slab.MinAmount), float64PtrToNumeric(slab.MaxAmount),
		float64ToNumeric(slab.ShippingCharge), string(slab.Status)))
	if err != nil {
		return errs.NewInternalError("shipping_slabs.create", err)
	}
	*slab = *created
	return nil
}

func (r *shippingRepository) UpdateSlab(ctx context.Context, slab *domain.ShippingSlab) error {
	updated, err := scanSlab(conn(ctx, r.db).QueryRow(ctx, `
		UPDATE shipping_slabs SET
			min_amount = $2,
			max_amount = $3,
			shipping_charge = $4,
			status = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+slabColumns,
		stringToUUID(slab.ID), float64ToNumeric(slab.MinAmount), float64PtrToNumeric(slab.MaxAmount),
		float64ToNumeric(slab.ShippingCharge), string(slab.Status)))
	if err != nil {
		return notFound(err, "Shipping slab", slab.ID, "shipping_slabs.update")
	}
	*slab = *updated
	return nil
}

func (r *shippingRepository) DeleteSlab(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM shipping_slabs WHERE id = $1`, stringToUUID(id))
	if err != nil {
		return errs.NewInternalError("shipping_slabs.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewObjectNotFoundError("Shipping slab", id)
	}
	return nil
}
