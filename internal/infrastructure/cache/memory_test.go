package cache_test

import (
	"errors"
	"testing"
	"time"

	infracache "orderflow-backend/internal/infrastructure/cache"
	"orderflow-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberLoadsOnceUntilDeleted(t *testing.T) {
	c := infracache.NewMemoryCache(time.Minute, time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := cache.Remember(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = cache.Remember(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	c.Delete("k")
	_, hit, _ = cache.Remember(c, "k", time.Minute, load)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	c := infracache.NewMemoryCache(time.Minute, time.Minute)
	boom := errors.New("boom")

	_, _, err := cache.Remember(c, "k", time.Minute, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRememberWithoutCache(t *testing.T) {
	v, hit, err := cache.Remember[string](nil, "k", time.Minute, func() (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "x", v)
}
