package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tropicaldog17/irpf/internal/db"
	"github.com/tropicaldog17/irpf/internal/services"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	PTAX   services.PTAXConfig
	Rates  RatesConfig
	Cache  db.Config
	LogEnv string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           string
	MaxUploadBytes int64
}

// RatesConfig holds the rate lookup window settings
type RatesConfig struct {
	LookbackDays int
	FetchTimeout time.Duration
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		PTAX: services.PTAXConfig{
			BaseURL:    getEnv("PTAX_BASE_URL", services.DefaultPTAXBaseURL),
			Series:     getEnvAsInt("PTAX_SERIES", services.DefaultPTAXSeries),
			Timeout:    getEnvAsDuration("PTAX_TIMEOUT", 10*time.Second),
			MaxRetries: uint64(getEnvAsInt("PTAX_RETRIES", 3)),
		},
		Rates: RatesConfig{
			LookbackDays: getEnvAsInt("RATE_LOOKBACK_DAYS", services.DefaultLookbackDays),
			FetchTimeout: getEnvAsDuration("RATE_FETCH_TIMEOUT", services.DefaultFetchTimeout),
		},
		Cache: db.Config{
			Driver:   getEnv("RATE_CACHE_DRIVER", db.DriverSQLite),
			Path:     getEnv("RATE_CACHE_PATH", "file::memory:?cache=shared"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "irpf"),
			Password: getEnv("DB_PASSWORD", "irpf"),
			Name:     getEnv("DB_NAME", "irpf"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		LogEnv: getEnv("LOG_ENV", getEnv("APP_ENV", "development")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have no usable fallback
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case db.DriverSQLite, db.DriverPostgres, db.DriverNone:
	default:
		return fmt.Errorf("RATE_CACHE_DRIVER must be one of sqlite, postgres, none; got %q", c.Cache.Driver)
	}
	if c.Rates.LookbackDays <= 0 {
		return fmt.Errorf("RATE_LOOKBACK_DAYS must be positive")
	}
	if c.PTAX.Series <= 0 {
		return fmt.Errorf("PTAX_SERIES must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HoldingsConfig returns the pipeline settings derived from the environment
func (c *Config) HoldingsConfig() services.HoldingsConfig {
	return services.HoldingsConfig{
		LookbackDays: c.Rates.LookbackDays,
		FetchTimeout: c.Rates.FetchTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
