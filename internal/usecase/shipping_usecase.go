package usecase

import (
	"context"
	"math"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"
)

// CheckoutInfo is the public shipping configuration shown at checkout.
type CheckoutInfo struct {
	Settings domain.ShippingSettings `json:"settings"`
	Slabs    []domain.ShippingSlab   `json:"slabs"`
}

type SettingsPatch struct {
	FreeShippingEnabled *bool
	CODEnabled          *bool
	CODCharge           *float64
}

type SlabInput struct {
	MinAmount      float64
	MaxAmount      *float64
	ShippingCharge float64
	Status         domain.SlabStatus
}

// SlabPatch carries a partial slab update. ClearMaxAmount makes the slab
// unbounded; a nil MaxAmount alone keeps the stored bound.
type SlabPatch struct {
	MinAmount      *float64
	MaxAmount      *float64
	ClearMaxAmount bool
	ShippingCharge *float64
	Status         *domain.SlabStatus
}

const errSlabOverlap = "Slab range overlaps with an existing active slab"

type ShippingUsecase struct {
	repo      domain.ShippingRepository
	txManager domain.TransactionManager
	cache     cache.CacheService
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
}

func NewShippingUsecase(repo domain.ShippingRepository, txManager domain.TransactionManager, c cache.CacheService, cacheTTL time.Duration, m *metrics.Metrics) *ShippingUsecase {
	return &ShippingUsecase{
		repo:      repo,
		txManager: txManager,
		cache:     c,
		cacheTTL:  cacheTTL,
		metrics:   m,
	}
}

// EnsureSettings makes sure the settings singleton exists.
func (u *ShippingUsecase) EnsureSettings(ctx context.Context) error {
	return u.repo.EnsureSettings(ctx, domain.DefaultShippingSettings())
}

func (u *ShippingUsecase) CheckoutInfo(ctx context.Context) (*CheckoutInfo, error) {
	info, hit, err := cache.Remember(u.cache, cache.KeyShippingConfig, u.cacheTTL, func() (*CheckoutInfo, error) {
		settings, err := u.repo.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		slabs, err := u.repo.ListActiveSlabs(ctx)
		if err != nil {
			return nil, err
		}
		return &CheckoutInfo{Settings: *settings, Slabs: slabs}, nil
	})
	if err != nil {
		return nil, err
	}
	u.metrics.ShippingConfigCache(hit)
	return info, nil
}

// Calculate prices shipping for cartTotal against the current configuration.
func (u *ShippingUsecase) Calculate(ctx context.Context, cartTotal float64, paymentMethod string) (*domain.ShippingQuote, error) {
	if cartTotal < 0 || math.IsNaN(cartTotal) || math.IsInf(cartTotal, 0) {
		return nil, errs.NewValidationError("cartTotal", "Cart total is required")
	}
	info, err := u.CheckoutInfo(ctx)
	if err != nil {
		return nil, err
	}
	q := domain.ComputeCharges(cartTotal, domain.NormalizePaymentMethod(paymentMethod), info.Settings, info.Slabs)
	return &q, nil
}

// quoteFresh bypasses the cache; order placement prices against the live
// configuration.
func (u *ShippingUsecase) quoteFresh(ctx context.Context, cartTotal float64, paymentMethod string) (domain.ShippingQuote, error) {
	settings, err := u.repo.GetSettings(ctx)
	if err != nil {
		return domain.ShippingQuote{}, err
	}
	slabs, err := u.repo.ListActiveSlabs(ctx)
	if err != nil {
		return domain.ShippingQuote{}, err
	}
	return domain.ComputeCharges(cartTotal, paymentMethod, *settings, slabs), nil
}

// --- Settings ---

func (u *ShippingUsecase) GetSettings(ctx context.Context) (*domain.ShippingSettings, error) {
	return u.repo.GetSettings(ctx)
}

func (u *ShippingUsecase) UpdateSettings(ctx context.Context, patch SettingsPatch) (*domain.ShippingSettings, error) {
	if patch.CODCharge != nil && (*patch.CODCharge < 0 || math.IsNaN(*patch.CODCharge)) {
		return nil, errs.NewValidationError("codCharge", "COD charge must be >= 0")
	}

	var settings *domain.ShippingSettings
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := u.repo.GetSettings(txCtx)
		if err != nil {
			return err
		}
		if patch.FreeShippingEnabled != nil {
			current.FreeShippingEnabled = *patch.FreeShippingEnabled
		}
		if patch.CODEnabled != nil {
			current.CODEnabled = *patch.CODEnabled
		}
		if patch.CODCharge != nil {
			current.CODCharge = *patch.CODCharge
		}
		if err := u.repo.SaveSettings(txCtx, current); err != nil {
			return err
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.invalidate()
	logger.WithContext(ctx).Info().
		Bool("free_shipping", settings.FreeShippingEnabled).
		Bool("cod_enabled", settings.CODEnabled).
		Float64("cod_charge", settings.CODCharge).
		Msg("shipping settings updated")
	return settings, nil
}

// --- Slabs ---

func (u *ShippingUsecase) ListSlabs(ctx context.Context) ([]domain.ShippingSlab, error) {
	return u.repo.ListSlabs(ctx)
}

func (u *ShippingUsecase) CreateSlab(ctx context.Context, in SlabInput) (*domain.ShippingSlab, error) {
	if in.Status == "" {
		in.Status = domain.SlabStatusActive
	}
	slab := &domain.ShippingSlab{
		MinAmount:      in.MinAmount,
		MaxAmount:      in.MaxAmount,
		ShippingCharge: in.ShippingCharge,
		Status:         in.Status,
	}
	if err := slab.Validate(); err != nil {
		return nil, err
	}

	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.checkOverlap(txCtx, *slab); err != nil {
			return err
		}
		return u.repo.CreateSlab(txCtx, slab)
	})
	if err != nil {
		return nil, err
	}

	u.invalidate()
	logger.WithContext(ctx).Info().Str("slab_id", slab.ID).Msg("shipping slab created")
	return slab, nil
}

func (u *ShippingUsecase) UpdateSlab(ctx context.Context, id string, patch SlabPatch) (*domain.ShippingSlab, error) {
	var slab *domain.ShippingSlab
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := u.repo.GetSlab(txCtx, id)
		if err != nil {
			return err
		}

		if patch.MinAmount != nil {
			existing.MinAmount = *patch.MinAmount
		}
		switch {
		case patch.ClearMaxAmount:
			existing.MaxAmount = nil
		case patch.MaxAmount != nil:
			existing.MaxAmount = patch.MaxAmount
		}
		if patch.ShippingCharge != nil {
			existing.ShippingCharge = *patch.ShippingCharge
		}
		if patch.Status != nil {
			existing.Status = *patch.Status
		}
		if err := existing.Validate(); err != nil {
			return err
		}

		if err := u.checkOverlap(txCtx, *existing); err != nil {
			return err
		}
		if err := u.repo.UpdateSlab(txCtx, existing); err != nil {
			return err
		}
		slab = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.invalidate()
	logger.WithContext(ctx).Info().Str("slab_id", id).Msg("shipping slab updated")
	return slab, nil
}

func (u *ShippingUsecase) DeleteSlab(ctx context.Context, id string) error {
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.repo.LockSlabs(txCtx); err != nil {
			return err
		}
		return u.repo.DeleteSlab(txCtx, id)
	})
	if err != nil {
		return err
	}
	u.invalidate()
	logger.WithContext(ctx).Info().Str("slab_id", id).Msg("shipping slab deleted")
	return nil
}

// checkOverlap locks the slab set and rejects candidate if it collides with
// another active slab. Must run inside a transaction.
func (u *ShippingUsecase) checkOverlap(ctx context.Context, candidate domain.ShippingSlab) error {
	if err := u.repo.LockSlabs(ctx); err != nil {
		return err
	}
	existing, err := u.repo.ListSlabs(ctx)
	if err != nil {
		return err
	}
	if other := domain.FindOverlap(candidate, existing, candidate.ID); other != nil {
		return errs.NewValidationError("slab", errSlabOverlap)
	}
	return nil
}

func (u *ShippingUsecase) invalidate() {
	if u.cache != nil {
		u.cache.Delete(cache.KeyShippingConfig)
	}
}
