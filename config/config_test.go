package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_DSN", "postgres://localhost/orders")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.ReturnWindow)
	assert.Equal(t, 1000, cfg.MaxOrderItemQuantity)
	assert.Equal(t, 10*time.Minute, cfg.CacheCheckoutTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheStatsTTL)
	assert.Equal(t, float64(50), cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
	assert.Equal(t, "@every 1h", cfg.RefundReminderSchedule)
	assert.Equal(t, 48*time.Hour, cfg.RefundReminderAge)
	assert.Empty(t, cfg.NotifyWebhookURL)
	assert.Equal(t, 256, cfg.NotifyWebhookQueueSize)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DB_DSN=postgres://db/orders\nRETURN_WINDOW=0s\nMAX_ORDER_ITEM_QUANTITY=5\nRATE_LIMIT_RPS=2.5\nDB_MAX_CONNS=7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)

	// godotenv does not override variables that are already set.
	for _, k := range []string{"DB_DSN", "RETURN_WINDOW", "MAX_ORDER_ITEM_QUANTITY", "RATE_LIMIT_RPS", "DB_MAX_CONNS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := LoadConfig()

	assert.Equal(t, "postgres://db/orders", cfg.DBUrl)
	assert.Equal(t, time.Duration(0), cfg.ReturnWindow)
	assert.Equal(t, 5, cfg.MaxOrderItemQuantity)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, int32(7), cfg.DBMaxConns)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_DURATION", "soon")
	t.Setenv("X_INT", "many")
	t.Setenv("X_FLOAT", "-3")

	assert.Equal(t, time.Minute, getDurationEnv("X_DURATION", time.Minute))
	assert.Equal(t, 4, getIntEnv("X_INT", 4))
	assert.Equal(t, int32(9), getInt32Env("X_INT", 9))
	assert.Equal(t, 1.5, getFloatEnv("X_FLOAT", 1.5))
}
