package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid SERVER_ENV")
	}
	if !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected error to mention SERVER_ENV, got: %v", err)
	}
}

func TestConfig_Validate_MissingPort(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_EmptyAllowedOrigins(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.AllowedOrigins = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty CORS_ALLOWED_ORIGINS")
	}
	if !strings.Contains(err.Error(), "CORS_ALLOWED_ORIGINS") {
		t.Errorf("expected error to mention CORS_ALLOWED_ORIGINS, got: %v", err)
	}
}

func TestConfig_Validate_UnknownDriver(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown STORE_DRIVER")
	}
	if !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Errorf("expected error to mention STORE_DRIVER, got: %v", err)
	}
}

func TestConfig_Validate_SurrealRequiresHost(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Store.Driver = DriverSurrealDB
	cfg.Store.Surreal.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
}

func TestConfig_Validate_SQLiteIgnoresSurreal(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Store.Surreal = SurrealConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error for sqlite without surreal settings, got: %v", err)
	}
}

func TestConfig_Validate_ProductionRequiresCSRFSecret(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "production"
	cfg.CSRF.Secret = ""
	cfg.CSRF.SecretFile = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing CSRF secret in production")
	}
	if !strings.Contains(err.Error(), "CSRF_SECRET") {
		t.Errorf("expected error to mention CSRF_SECRET, got: %v", err)
	}

	cfg.CSRF.SecretFile = "/run/secrets/csrf"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected secret file to satisfy production, got: %v", err)
	}
}

func TestConfig_Validate_FollowUpDisabledSkipsChecks(t *testing.T) {
	cfg := validBaseConfig()
	cfg.FollowUp = FollowUpConfig{Enabled: false}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error when follow-up disabled, got: %v", err)
	}

	cfg.FollowUp.Enabled = true
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "FOLLOWUP_INTERVAL") {
		t.Errorf("expected FOLLOWUP_INTERVAL error, got: %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "FOLLOWUP_RETRY_DELAY") {
		t.Errorf("expected FOLLOWUP_RETRY_DELAY error, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           "",
			Env:            "invalid",
			AllowedOrigins: []string{},
		},
		Store: StoreConfig{Driver: "bogus"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	errStr := err.Error()
	expectedFields := []string{"SERVER_PORT", "SERVER_ENV", "CORS_ALLOWED_ORIGINS", "STORE_DRIVER", "CSRF_TTL", "RATE_LIMIT_WINDOW", "RATE_LIMIT_SUBMIT"}
	for _, field := range expectedFields {
		if !strings.Contains(errStr, field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestSurrealConfig_Validate_MissingFields(t *testing.T) {
	err := SurrealConfig{Host: "localhost"}.Validate()
	if err == nil {
		t.Fatal("expected error for incomplete SurrealDB config")
	}
	for _, field := range []string{"DB_PORT", "DB_NAMESPACE", "DB_DATABASE"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_SUBMIT", "5")
	t.Setenv("FOLLOWUP_INTERVAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q, want sqlite", cfg.Store.Driver)
	}
	if !cfg.CSRF.SecureCookie {
		t.Error("secure cookie should default on in production")
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("origins = %v", got)
	}
	if cfg.RateLimit.SubmitLimit != 5 || cfg.RateLimit.DefaultLimit != 100 {
		t.Errorf("rate limits = %+v", cfg.RateLimit)
	}
	if cfg.FollowUp.Interval != time.Hour {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.FollowUp.Interval)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Env: "development"}}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	cfg.Server.Env = "production"
	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false in production")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Env: "production"}}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	cfg.Server.Env = "development"
	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false in development")
	}
}

// validBaseConfig returns a minimal valid configuration for testing
func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "./data/assessment.db",
			Surreal: SurrealConfig{
				Host:      "localhost",
				Port:      "8000",
				Namespace: "primarycell",
				Database:  "assessment",
			},
		},
		CSRF: CSRFConfig{
			TTL:        time.Hour,
			Issuer:     "assessment.primarycell.health",
			CookieName: "csrf_token",
		},
		RateLimit: RateLimitConfig{
			Window:       15 * time.Minute,
			DefaultLimit: 100,
			SubmitLimit:  10,
		},
		FollowUp: FollowUpConfig{
			Enabled:    true,
			Interval:   time.Hour,
			BatchSize:  100,
			RetryDelay: time.Hour,
		},
	}
}
