package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 90, cfg.Analyzer.PeriodDays)
	assert.Equal(t, "http://localhost:8000/api", cfg.Client.BaseURL())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_URL", "https://qc.example.com/")
	t.Setenv("CLIENT_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://qc.example.com/api", cfg.Client.BaseURL())
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}
