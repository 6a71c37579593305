// Package config loads server and CLI settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/outlate/internal/money"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/pkg/logging"
)

const devJWTSecret = "outlate-dev-secret"

// Config holds all application configuration.
type Config struct {
	Env       string // APP_ENV: development or production
	Port      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  slog.Level
	Currency  string
	// TotalTolerance is how far subtotal+tax+tip may drift from a receipt's
	// total before it is rejected.
	TotalTolerance money.Money
	IDSource       string // uuid or counter
	OCREnabled     bool
	GeminiModel    string
	GeminiAPIKey   string
}

// Dev reports whether the server runs with development defaults.
func (c *Config) Dev() bool { return c.Env == "development" }

// Load reads the given .env files (".env" when none are named; missing files
// are ignored) and then the environment. Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "./data/outlate.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		Currency:     getEnv("CURRENCY", money.DefaultCurrency),
		IDSource:     getEnv("ID_SOURCE", "uuid"),
		GeminiModel:  getEnv("GEMINI_MODEL", ocr.DefaultModel),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.LogLevel, err = logging.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	tolerance, err := strconv.ParseInt(getEnv("TOTAL_TOLERANCE_CENTS", "0"), 10, 64)
	if err != nil || tolerance < 0 {
		return nil, fmt.Errorf("TOTAL_TOLERANCE_CENTS: want a non-negative integer, got %q", os.Getenv("TOTAL_TOLERANCE_CENTS"))
	}
	cfg.TotalTolerance = money.Cents(tolerance)
	if cfg.OCREnabled, err = strconv.ParseBool(getEnv("OCR_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("OCR_ENABLED: %w", err)
	}

	if cfg.JWTSecret == "" {
		if !cfg.Dev() {
			return nil, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
