package domain

import (
	"context"
	"time"

	"orderflow-backend/pkg/errs"
)

type SlabStatus string

const (
	SlabStatusActive   SlabStatus = "active"
	SlabStatusInactive SlabStatus = "inactive"
)

func (s SlabStatus) IsValid() bool {
	return s == SlabStatusActive || s == SlabStatusInactive
}

// ShippingSlab maps the cart total range [MinAmount, MaxAmount] to a flat
// charge. A nil MaxAmount is unbounded.
type ShippingSlab struct {
	ID             string     `json:"id"`
	MinAmount      float64    `json:"minAmount"`
	MaxAmount      *float64   `json:"maxAmount"`
	ShippingCharge float64    `json:"shippingCharge"`
	Status         SlabStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (s ShippingSlab) IsActive() bool { return s.Status == SlabStatusActive }

// Contains reports whether total falls inside the slab's closed interval.
func (s ShippingSlab) Contains(total float64) bool {
	return s.MinAmount <= total && (s.MaxAmount == nil || *s.MaxAmount >= total)
}

// Validate checks the slab's own fields. Overlap with other slabs is checked
// by the shipping usecase against the stored set.
func (s ShippingSlab) Validate() error {
	if s.MinAmount < 0 {
		return errs.NewValidationError("minAmount", "Min amount is required and must be >= 0")
	}
	if s.ShippingCharge < 0 {
		return errs.NewValidationError("shippingCharge", "Shipping charge is required and must be >= 0")
	}
	if s.MaxAmount != nil && *s.MaxAmount <= s.MinAmount {
		return errs.NewValidationError("maxAmount", "Max amount must be greater than min amount")
	}
	if !s.Status.IsValid() {
		return errs.NewValidationError("status", "Status must be active or inactive")
	}
	return nil
}

// ShippingSettings is the singleton global shipping configuration.
type ShippingSettings struct {
	FreeShippingEnabled bool      `json:"freeShippingEnabled"`
	CODEnabled          bool      `json:"codEnabled"`
	CODCharge           float64   `json:"codCharge"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultShippingSettings is what the bootstrap step inserts when no row exists.
func DefaultShippingSettings() ShippingSettings {
	return ShippingSettings{
		FreeShippingEnabled: false,
		CODEnabled:          true,
		CODCharge:           0,
	}
}

type ShippingRepository interface {
	// EnsureSettings inserts the default settings row unless it already exists.
	EnsureSettings(ctx context.Context, defaults ShippingSettings) error
	GetSettings(ctx context.Context) (*ShippingSettings, error)
	SaveSettings(ctx context.Context, settings *ShippingSettings) error

	// LockSlabs serialises slab writers for the rest of the current transaction.
	LockSlabs(ctx context.Context) error
	ListSlabs(ctx context.Context) ([]ShippingSlab, error)
	ListActiveSlabs(ctx context.Context) ([]ShippingSlab, error)
	GetSlab(ctx context.Context, id string) (*ShippingSlab, error)
	CreateSlab(ctx context.Context, slab *ShippingSlab) error
	UpdateSlab(ctx context.Context, slab *ShippingSlab) error
	DeleteSlab(ctx context.Context, id string) error
}
