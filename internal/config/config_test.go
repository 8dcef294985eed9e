package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgres://localhost/checkout")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3, cfg.MaxPurchaseAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryDelayMin)
	assert.Equal(t, 2500*time.Millisecond, cfg.RetryDelayMax)
}

func TestLoad_RequiresDBSource(t *testing.T) {
	t.Setenv("DB_SOURCE", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgres://localhost/checkout")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_PURCHASE_ATTEMPTS", "5")
	t.Setenv("RETRY_DELAY_MIN_MS", "10")
	t.Setenv("RETRY_DELAY_MAX_MS", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.MaxPurchaseAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryDelayMin)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryDelayMax)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgres://localhost/checkout")

	t.Run("non-integer attempts", func(t *testing.T) {
		t.Setenv("MAX_PURCHASE_ATTEMPTS", "lots")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("zero attempts", func(t *testing.T) {
		t.Setenv("MAX_PURCHASE_ATTEMPTS", "0")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("inverted delay bounds", func(t *testing.T) {
		t.Setenv("RETRY_DELAY_MIN_MS", "500")
		t.Setenv("RETRY_DELAY_MAX_MS", "100")
		_, err := Load()
		require.Error(t, err)
	})
}
