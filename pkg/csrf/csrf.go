package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMissing = errors.New("csrf token missing")
	ErrTokenExpired = errors.New("csrf token expired")
	ErrTokenInvalid = errors.New("csrf token invalid")
	ErrInvalidKey   = errors.New("invalid csrf secret")
)

// DefaultTTL is used when Config.TTL is zero
const DefaultTTL = time.Hour

// MinSecretBytes is the shortest secret accepted by NewService
const MinSecretBytes = 16

// Claims are the registered claims carried by a CSRF token
type Claims struct {
	jwt.RegisteredClaims
}

// Config holds CSRF service configuration
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Service handles CSRF token operations
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewService creates a new CSRF token service
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrInvalidKey, MinSecretBytes)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: cfg.Secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// NewTestService creates a service with a fixed clock.
// This should only be used in tests.
func NewTestService(secret []byte, ttl time.Duration, now func() time.Time) *Service {
	return &Service{secret: secret, ttl: ttl, issuer: "test-issuer", now: now}
}

// TTL returns the token lifetime
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token and returns it with its expiry
func (s *Service) Issue() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token, returning its claims
func (s *Service) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GenerateSecret returns 32 random bytes, hex encoded
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// WriteSecretFile stores a secret readable only by the owner
func WriteSecretFile(path, secret string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// LoadSecretFile reads a secret written by WriteSecretFile
func LoadSecretFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return nil, ErrInvalidKey
	}
	return []byte(secret), nil
}
