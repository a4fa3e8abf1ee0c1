package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_PORT", "KV_BACKEND", "FEED_LIMIT", "METRICS_ADDR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, 50, cfg.Feed.Limit)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KV_BACKEND", BackendRedis)
	t.Setenv("FEED_LIMIT", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, 12, cfg.Feed.Limit)
}

func TestLoadInvalidFeedLimitFallsBack(t *testing.T) {
	t.Setenv("FEED_LIMIT", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Feed.Limit)
}

func TestLoadInvalidDBPort(t *testing.T) {
	for _, v := range []string{"54x2", "0", "70000"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("DB_PORT", v)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "DB_PORT")
		})
	}
}
