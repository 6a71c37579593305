package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/outlate/internal/money"
)

var keys = []string{
	"APP_ENV", "PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "CURRENCY",
	"TOTAL_TOLERANCE_CENTS", "ID_SOURCE", "OCR_ENABLED", "GEMINI_MODEL", "GEMINI_API_KEY",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.True(t, cfg.Dev())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/outlate.db", cfg.DBPath)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, money.Zero, cfg.TotalTolerance)
	assert.Equal(t, "uuid", cfg.IDSource)
	assert.False(t, cfg.OCREnabled)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOTAL_TOLERANCE_CENTS", "5")
	t.Setenv("OCR_ENABLED", "true")
	t.Setenv("ID_SOURCE", "counter")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.False(t, cfg.Dev())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, money.Cents(5), cfg.TotalTolerance)
	assert.True(t, cfg.OCREnabled)
	assert.Equal(t, "counter", cfg.IDSource)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	os.Unsetenv("CURRENCY")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("CURRENCY")
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nCURRENCY=EUR\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad ttl", map[string]string{"TOKEN_TTL": "a day"}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"negative tolerance", map[string]string{"TOTAL_TOLERANCE_CENTS": "-1"}},
		{"fractional tolerance", map[string]string{"TOTAL_TOLERANCE_CENTS": "0.5"}},
		{"bad bool", map[string]string{"OCR_ENABLED": "maybe"}},
		{"production without secret", map[string]string{"APP_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}
