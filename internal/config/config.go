package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AppConfig holds everything the ETL needs from the environment.
type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`

	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string

	// CityFile is the static city reference list.
	CityFile string `validate:"required"`

	// FallbackDir is where failed batches are written as CSV.
	FallbackDir string `validate:"required"`

	// ReferenceTZ is the zone observation timestamps are expressed in
	// before conversion to site-local time.
	ReferenceTZ string `validate:"required"`

	// RequestInterval is the minimum spacing between provider requests.
	RequestInterval time.Duration `validate:"gt=0"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchInterval controls how often a scheduled run starts (serve mode).
	FetchInterval time.Duration `validate:"gt=0"`

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OW_API_KEY"),

		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),

		CityFile:    getenvDefault("CITY_FILE", "Final_city_data.json"),
		FallbackDir: getenvDefault("FALLBACK_DIR", "data/failed_to_upload"),
		ReferenceTZ: getenvDefault("REFERENCE_TZ", "Europe/London"),

		Port:     getenvDefault("PORT", "8080"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RequestInterval, err = getenvDuration("REQUEST_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DSN builds the Postgres connection string for pgx.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
