package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FILE", "MAX_UPLOAD_MB",
		"DEFAULT_THRESHOLD", "MATCH_WORKERS", "SHUTDOWN_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxUploadMB)
	assert.Equal(t, 0.6, cfg.DefaultThreshold)
	assert.Equal(t, runtime.NumCPU(), cfg.MatchWorkers)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("DEFAULT_THRESHOLD", "1.5")
	t.Setenv("MATCH_WORKERS", "0")
	t.Setenv("SHUTDOWN_TIMEOUT", "nope")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("MAX_UPLOAD_MB", "x")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowOrigins)
	assert.Equal(t, 0.6, cfg.DefaultThreshold)
	assert.Equal(t, 1, cfg.MatchWorkers)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0.0, cfg.RateLimitRPS)
	assert.Equal(t, 64, cfg.MaxUploadMB)
}
