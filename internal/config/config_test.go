package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "querygate.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.ReviewsRequired)
	assert.True(t, cfg.AuthorCanExecute)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.Warnings, "missing JWT secret should warn")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/gate.sqlite")
	t.Setenv("REVIEWS_REQUIRED", "2")
	t.Setenv("AUTHOR_CAN_EXECUTE", "false")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gate.sqlite", cfg.DBPath)
	assert.Equal(t, 2, cfg.ReviewsRequired)
	assert.False(t, cfg.AuthorCanExecute)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_InvalidReviewsRequired(t *testing.T) {
	t.Setenv("REVIEWS_REQUIRED", "zero")

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("REVIEWS_REQUIRED", "0")
	_, err = LoadFromEnv()
	require.Error(t, err)
}

func TestLoadFromEnv_ProductionChecks(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err, "missing JWT secret must be fatal in production")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = LoadFromEnv()
	require.Error(t, err, "CORS wildcard must be fatal in production")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://gate.example.com")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\n\nDB_PATH=\"/tmp/from-dotenv.sqlite\"\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn") // real env wins over .env
	t.Setenv("DB_PATH", "")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "/tmp/from-dotenv.sqlite", os.Getenv("DB_PATH"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
