// Package logging configures structured logging for the assessment binaries.
//
// Production builds log JSON to stdout; development builds use tint's
// coloured handler on stderr. The level comes from LOG_LEVEL
// (debug, info, warn, error; default info).
//
// Usage:
//
//	logger := logging.Setup("production")
//	logger.Info("started", "email", logging.HashPII(email))
package logging

import (
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/crypto/blake2b"
)

// Setup builds a logger for env, installs it as the slog default and returns it
func Setup(env string) *slog.Logger {
	return SetupWithLevel(env, LevelFromEnv())
}

// SetupWithLevel is Setup with an explicit level
func SetupWithLevel(env string, level slog.Level) *slog.Logger {
	var w io.Writer = os.Stdout
	if env == "development" {
		w = os.Stderr
	}
	logger := slog.New(NewHandler(w, env, level))
	slog.SetDefault(logger)
	return logger
}

// NewHandler returns the handler used for env
func NewHandler(w io.Writer, env string, level slog.Level) slog.Handler {
	if env == "development" {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// LevelFromEnv reads LOG_LEVEL
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HashPII returns a short stable fingerprint of an email or phone number so
// log lines can be correlated without carrying the raw value.
func HashPII(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}

// PII returns a slog attribute carrying the hashed value
func PII(key, value string) slog.Attr {
	return slog.String(key+"_hash", HashPII(value))
}
