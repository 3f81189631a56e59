package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSQLite    = "sqlite"
	DriverSurrealDB = "surrealdb"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	CSRF      CSRFConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	FollowUp  FollowUpConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	AllowedOrigins  []string
	WelcomeVideoURL string
}

// StoreConfig selects and configures the lead store
type StoreConfig struct {
	Driver     string
	SQLitePath string
	Surreal    SurrealConfig
}

// SurrealConfig holds SurrealDB connection settings
type SurrealConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// CSRFConfig holds CSRF token settings
type CSRFConfig struct {
	// Secret takes precedence over SecretFile
	Secret       string
	SecretFile   string
	TTL          time.Duration
	Issuer       string
	CookieName   string
	SecureCookie bool
}

// RateLimitConfig holds per-client request budgets
type RateLimitConfig struct {
	Window       time.Duration
	DefaultLimit int
	SubmitLimit  int
}

// TelemetryConfig holds metrics and tracing settings
type TelemetryConfig struct {
	OTLPEndpoint   string
	ServiceName    string
	MetricsEnabled bool
}

// FollowUpConfig holds waiting-list follow-up job settings
type FollowUpConfig struct {
	Enabled    bool
	Interval   time.Duration
	BatchSize  int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := getEnv("SERVER_ENV", "development")
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             env,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins:  getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			WelcomeVideoURL: getEnv("WELCOME_VIDEO_URL", ""),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", DriverSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "./data/assessment.db"),
			Surreal: SurrealConfig{
				Host:      getEnv("DB_HOST", "localhost"),
				Port:      getEnv("DB_PORT", "8000"),
				Namespace: getEnv("DB_NAMESPACE", "primarycell"),
				Database:  getEnv("DB_DATABASE", "assessment"),
				User:      getEnv("DB_USER", "root"),
				Password:  getEnv("DB_PASSWORD", "root"),
			},
		},
		CSRF: CSRFConfig{
			Secret:       getEnv("CSRF_SECRET", ""),
			SecretFile:   getEnv("CSRF_SECRET_FILE", ""),
			TTL:          getDurationEnv("CSRF_TTL", time.Hour),
			Issuer:       getEnv("CSRF_ISSUER", "assessment.primarycell.health"),
			CookieName:   getEnv("CSRF_COOKIE_NAME", "csrf_token"),
			SecureCookie: getBoolEnv("CSRF_COOKIE_SECURE", env == "production"),
		},
		RateLimit: RateLimitConfig{
			Window:       getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			DefaultLimit: getIntEnv("RATE_LIMIT_DEFAULT", 100),
			SubmitLimit:  getIntEnv("RATE_LIMIT_SUBMIT", 10),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "assessment"),
			MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
		},
		FollowUp: FollowUpConfig{
			Enabled:    getBoolEnv("FOLLOWUP_ENABLED", true),
			Interval:   getDurationEnv("FOLLOWUP_INTERVAL", time.Hour),
			BatchSize:  getIntEnv("FOLLOWUP_BATCH_SIZE", 100),
			RetryDelay: getDurationEnv("FOLLOWUP_RETRY_DELAY", time.Hour),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Store validation
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverSurrealDB:
		if err := c.Store.Surreal.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("SurrealDB: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be '%s' or '%s', got '%s'", DriverSQLite, DriverSurrealDB, c.Store.Driver))
	}

	// CSRF validation - a stable secret is critical in production
	if c.IsProduction() && c.CSRF.Secret == "" && c.CSRF.SecretFile == "" {
		errs = append(errs, errors.New("CSRF_SECRET or CSRF_SECRET_FILE is required in production"))
	}
	if c.CSRF.TTL <= 0 {
		errs = append(errs, errors.New("CSRF_TTL must be positive"))
	}
	if c.CSRF.CookieName == "" {
		errs = append(errs, errors.New("CSRF_COOKIE_NAME is required"))
	}

	// Rate limit validation
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.DefaultLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_DEFAULT must be positive"))
	}
	if c.RateLimit.SubmitLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_SUBMIT must be positive"))
	}

	// Follow-up validation
	if c.FollowUp.Enabled {
		if c.FollowUp.Interval <= 0 {
			errs = append(errs, errors.New("FOLLOWUP_INTERVAL must be positive"))
		}
		if c.FollowUp.BatchSize <= 0 {
			errs = append(errs, errors.New("FOLLOWUP_BATCH_SIZE must be positive"))
		}
		if c.FollowUp.RetryDelay <= 0 {
			errs = append(errs, errors.New("FOLLOWUP_RETRY_DELAY must be positive"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks that all required SurrealDB fields are present
func (s SurrealConfig) Validate() error {
	var missing []string
	if s.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if s.Port == "" {
		missing = append(missing, "DB_PORT")
	}
	if s.Namespace == "" {
		missing = append(missing, "DB_NAMESPACE")
	}
	if s.Database == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
