package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envNames {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "sqlite://data/albumshare.db", cfg.DatabaseURL)
	assert.Equal(t, "albumshare", cfg.DatabaseName)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DatabaseURLSet)
	assert.False(t, cfg.DatabaseNameSet)
	assert.False(t, cfg.Gzip)
	assert.False(t, cfg.UniqueSlugs)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "albums")
	t.Setenv("ALBUMSHARE_LOG_LEVEL", "debug")
	t.Setenv("ALBUMSHARE_LOG_FORMAT", "JSON")
	t.Setenv("ALBUMSHARE_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ALBUMSHARE_GZIP", "true")
	t.Setenv("ALBUMSHARE_UNIQUE_SLUGS", "1")
	t.Setenv("ALBUMSHARE_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, "albums", cfg.DatabaseName)
	assert.True(t, cfg.DatabaseURLSet)
	assert.True(t, cfg.DatabaseNameSet)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Gzip)
	assert.True(t, cfg.UniqueSlugs)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"PORT":                        "eighty",
		"ALBUMSHARE_GZIP":             "maybe",
		"ALBUMSHARE_UNIQUE_SLUGS":     "sometimes",
		"ALBUMSHARE_SHUTDOWN_TIMEOUT": "soon",
	}

	for env, value := range tests {
		t.Run(env, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(env, value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), env)
		})
	}
}

func TestFromEnvRejectsMalformedOrigin(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALBUMSHARE_CORS_ORIGINS", "https://ok.example,ftp://nope.example")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp://nope.example")
}

func TestFromEnvPortOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "70000")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoadReadsDotenvWithoutOverriding(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=6000\nDATABASE_NAME=from_dotenv\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "from_dotenv", cfg.DatabaseName)
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
