package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/google/uuid"
)

type ShippingRepository struct {
	mu       sync.RWMutex
	settings *domain.ShippingSettings
	slabs    map[string]domain.ShippingSlab
}

func NewShippingRepository() *ShippingRepository {
	return &ShippingRepository{slabs: make(map[string]domain.ShippingSlab)}
}

func (r *ShippingRepository) EnsureSettings(ctx context.Context, defaults domain.ShippingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		defaults.UpdatedAt = time.Now()
		r.settings = &defaults
	}
	return nil
}

func (r *ShippingRepository) GetSettings(ctx context.Context) (*domain.ShippingSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, errs.NewObjectNotFoundError("Shipping settings", 1)
	}
	s := *r.settings
	return &s, nil
}

func (r *ShippingRepository) SaveSettings(ctx context.Context, settings *domain.ShippingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings.UpdatedAt = time.Now()
	s := *settings
	r.settings = &s
	return nil
}

// LockSlabs is a no-op; TxManager already serialises writers.
func (r *ShippingRepository) LockSlabs(ctx context.Context) error {
	return nil
}

func (r *ShippingRepository) ListSlabs(ctx context.Context) ([]domain.ShippingSlab, error) {
	return r.list(false), nil
}

func (r *ShippingRepository) ListActiveSlabs(ctx context.Context) ([]domain.ShippingSlab, error) {
	return r.list(true), nil
}

func (r *ShippingRepository) list(activeOnly bool) []domain.ShippingSlab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ShippingSlab, 0, len(r.slabs))
	for _, s := range r.slabs {
		if activeOnly && !s.IsActive() {
			continue
		}
		out = append(out, cloneSlab(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinAmount < out[j].MinAmount })
	return out
}

func (r *ShippingRepository) GetSlab(ctx context.Context, id string) (*domain.ShippingSlab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slabs[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("Shipping slab", id)
	}
	s = cloneSlab(s)
	return &s, nil
}

func (r *ShippingRepository) CreateSlab(ctx context.Context, slab *domain.ShippingSlab) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slab.ID == "" {
		slab.ID = uuid.NewString()
	}
	now := time.Now()
	slab.CreatedAt, slab.UpdatedAt = now, now
	r.slabs[slab.ID] = cloneSlab(*slab)
	return nil
}

func (r *ShippingRepository) UpdateSlab(ctx context.Context, slab *domain.ShippingSlab) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.slabs[slab.ID]
	if !ok {
		return errs.NewObjectNotFoundError("Shipping slab", slab.ID)
	}
	slab.CreatedAt = existing.CreatedAt
	slab.UpdatedAt = time.Now()
	r.slabs[slab.ID] = cloneSlab(*slab)
	return nil
}

func (r *ShippingRepository) DeleteSlab(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slabs[id]; !ok {
		return errs.NewObjectNotFoundError("Shipping slab", id)
	}
	delete(r.slabs, id)
	return nil
}

func cloneSlab(s domain.ShippingSlab) domain.ShippingSlab {
	if s.MaxAmount != nil {
		m := *s.MaxAmount
		s.MaxAmount = &m
	}
	return s
}
