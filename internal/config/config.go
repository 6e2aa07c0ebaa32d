// Package config loads server and CLI settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const minSecretLength = 16

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Storage
	StoreDriver string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Computed-view cache; size 0 disables it
	CacheSize int
	CacheTTL  time.Duration

	// Display
	CurrencyExponent int32
	CurrencySymbol   string
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreDriver: getEnv("STORE_DRIVER", DriverSQLite),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		CacheSize: getEnvInt("CACHE_SIZE", 1024),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),

		CurrencyExponent: int32(getEnvInt("CURRENCY_EXPONENT", 2)),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "₹"),
	}
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validDrivers := []string{DriverSQLite, DriverPostgres, DriverMemory}
	if !slices.Contains(validDrivers, c.StoreDriver) {
		errors = append(errors, fmt.Sprintf("invalid store driver '%s': must be one of %v", c.StoreDriver, validDrivers))
	}

	switch c.StoreDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using the postgres driver")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if len(c.JWTSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}

	if c.CurrencyExponent < 0 || c.CurrencyExponent > 4 {
		errors = append(errors, fmt.Sprintf("invalid currency exponent %d: must be between 0 and 4", c.CurrencyExponent))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
