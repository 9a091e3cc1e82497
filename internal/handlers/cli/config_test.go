package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.TelemetryEnabled)
		assert.Equal(t, "ergowatch", cfg.ServiceName)
		assert.Equal(t, "https://api.ergoplatform.com/api/v1", cfg.ExplorerURL)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 5*time.Second, cfg.RetryDelay)
		assert.Equal(t, 1*time.Second, cfg.MinRequestInterval)
		assert.Equal(t, 60*time.Second, cfg.CheckInterval)
		assert.Equal(t, 12, cfg.DailyReportHour)
		assert.Empty(t, cfg.RedisAddr)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("EXPLORER_URL", "http://localhost:9053/api/v1")
		t.Setenv("EXPLORER_MAX_RETRIES", "5")
		t.Setenv("EXPLORER_RETRY_DELAY", "2s")
		t.Setenv("CHECK_INTERVAL", "30s")
		t.Setenv("DAILY_REPORT_HOUR", "8")
		t.Setenv("REDIS_ADDR", "localhost:6379")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "http://localhost:9053/api/v1", cfg.ExplorerURL)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, 2*time.Second, cfg.RetryDelay)
		assert.Equal(t, 30*time.Second, cfg.CheckInterval)
		assert.Equal(t, 8, cfg.DailyReportHour)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	})

	t.Run("invalid duration fails", func(t *testing.T) {
		t.Setenv("CHECK_INTERVAL", "not-a-duration")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
