package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test. An empty value would
// count as set and suppress defaults.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "HTTP_ADDR", "REDIS_ADDR", "SERVICE_ID", "CACHE_TTL",
		"CACHE_MAX_ENTRIES", "UPLOAD_MAX_BYTES", "EVENTS_EXCHANGE",
		"SERVICE_NAME", "SERVICE_PORT", "ELECTRIC_CATEGORY_ID", "ACOUSTIC_CATEGORY_ID")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", c.HTTPAddr)
	assert.Equal(t, 5*time.Second, c.Cache.TTL)
	assert.Equal(t, 100, c.Cache.MaxEntries)
	assert.Equal(t, int64(5*1024*1024), c.Upload.MaxBytes)
	assert.Equal(t, "catalog.events", c.Events.Exchange)
	assert.Equal(t, "catalog-service-3000", c.Consul.ServiceID)
	assert.Empty(t, c.Cache.RedisAddr)
	assert.Equal(t, Shelves{ElectricCategory: 1, AcousticCategory: 2}, c.Shelves)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, time.Minute, c.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.Contains(t, c.DB.DSN(), "host=db.internal port=6543")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := &Config{LogLevel: tt.in}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestS3Enabled(t *testing.T) {
	assert.False(t, S3{}.Enabled())
	assert.True(t, S3{Bucket: "b", AccessKey: "a", SecretKey: "s"}.Enabled())
}
