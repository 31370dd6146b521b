package usecase_test

import (
	"context"
	"sync"
	"testing"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingCalculate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	q, err := f.shipping.Calculate(ctx, 300, "cod")
	require.NoError(t, err)
	assert.Equal(t, 50.0, q.ShippingAmount)
	assert.Equal(t, 40.0, q.CODCharge)
	assert.Equal(t, 390.0, q.GrandTotal)
	require.NotNil(t, q.AppliedSlab)
	assert.Equal(t, 499.0, *q.AppliedSlab.MaxAmount)

	q, err = f.shipping.Calculate(ctx, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 50.0, q.GrandTotal)

	_, err = f.shipping.Calculate(ctx, -1, "ONLINE")
	assert.Equal(t, "Cart total is required", errs.PublicMessage(err))
}

func TestCheckoutInfoFollowsWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	info, err := f.shipping.CheckoutInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, info.Slabs, 2)
	assert.False(t, info.Settings.FreeShippingEnabled)

	_, err = f.shipping.UpdateSettings(ctx, usecase.SettingsPatch{FreeShippingEnabled: ptr(true)})
	require.NoError(t, err)
	info, err = f.shipping.CheckoutInfo(ctx)
	require.NoError(t, err)
	assert.True(t, info.Settings.FreeShippingEnabled)
	assert.Equal(t, 40.0, info.Settings.CODCharge)

	slabs, err := f.shipping.ListSlabs(ctx)
	require.NoError(t, err)
	_, err = f.shipping.UpdateSlab(ctx, slabs[1].ID, usecase.SlabPatch{Status: ptr(domain.SlabStatusInactive)})
	require.NoError(t, err)
	info, err = f.shipping.CheckoutInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, info.Slabs, 1)
}

func TestUpdateSettingsRejectsNegativeCOD(t *testing.T) {
	f := newFixture(t)
	_, err := f.shipping.UpdateSettings(context.Background(), usecase.SettingsPatch{CODCharge: ptr(-1.0)})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	s, err := f.shipping.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40.0, s.CODCharge)
}

func TestSlabWrites(t *testing.T) {
	ctx := context.Background()
	const overlap = "Slab range overlaps with an existing active slab"

	t.Run("create rejects overlap with an active slab", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: 400, MaxAmount: ptr(450.0), ShippingCharge: 10})
		assert.Equal(t, overlap, errs.PublicMessage(err))
	})

	t.Run("inactive slab may overlap", func(t *testing.T) {
		f := newFixture(t)
		s, err := f.shipping.CreateSlab(ctx, usecase.SlabInput{
			MinAmount: 400, MaxAmount: ptr(450.0), ShippingCharge: 10, Status: domain.SlabStatusInactive,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)

		_, err = f.shipping.UpdateSlab(ctx, s.ID, usecase.SlabPatch{Status: ptr(domain.SlabStatusActive)})
		assert.Equal(t, overlap, errs.PublicMessage(err))
	})

	t.Run("update merges and excludes itself", func(t *testing.T) {
		f := newFixture(t)
		slabs, err := f.shipping.ListSlabs(ctx)
		require.NoError(t, err)
		low := slabs[0]
		require.Equal(t, 0.0, low.MinAmount)

		got, err := f.shipping.UpdateSlab(ctx, low.ID, usecase.SlabPatch{MaxAmount: ptr(450.0), ShippingCharge: ptr(60.0)})
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.MinAmount)
		assert.Equal(t, 450.0, *got.MaxAmount)
		assert.Equal(t, 60.0, got.ShippingCharge)

		_, err = f.shipping.UpdateSlab(ctx, low.ID, usecase.SlabPatch{ClearMaxAmount: true})
		assert.Equal(t, overlap, errs.PublicMessage(err))

		_, err = f.shipping.UpdateSlab(ctx, low.ID, usecase.SlabPatch{MinAmount: ptr(500.0)})
		assert.Equal(t, "Max amount must be greater than min amount", errs.PublicMessage(err))
	})

	t.Run("field validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: -5, ShippingCharge: 1})
		assert.Equal(t, "Min amount is required and must be >= 0", errs.PublicMessage(err))
	})

	t.Run("missing slab", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.shipping.UpdateSlab(ctx, "missing", usecase.SlabPatch{ShippingCharge: ptr(1.0)})
		assert.Equal(t, "Shipping slab not found", errs.PublicMessage(err))
		err = f.shipping.DeleteSlab(ctx, "missing")
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("delete frees the range", func(t *testing.T) {
		f := newFixture(t)
		slabs, err := f.shipping.ListSlabs(ctx)
		require.NoError(t, err)
		require.NoError(t, f.shipping.DeleteSlab(ctx, slabs[1].ID))

		_, err = f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: 500, MaxAmount: ptr(999.0), ShippingCharge: 20})
		require.NoError(t, err)
	})
}

func TestConcurrentOverlappingCreates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slabs, err := f.shipping.ListSlabs(ctx)
	require.NoError(t, err)
	require.NoError(t, f.shipping.DeleteSlab(ctx, slabs[1].ID))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: 500 + float64(i), ShippingCharge: 0})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	active, err := f.shipRepo.ListActiveSlabs(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
