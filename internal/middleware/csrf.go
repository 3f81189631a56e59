package middleware

import (
	"errors"
	"net/http"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/pkg/csrf"
)

// CSRFHeader carries the token on state-changing requests
const CSRFHeader = "X-CSRF-Token"

// TokenValidator verifies CSRF tokens
type TokenValidator interface {
	Validate(token string) (*csrf.Claims, error)
}

// CSRFConfig configures the CSRF middleware
type CSRFConfig struct {
	Tokens     TokenValidator
	CookieName string
	// Exempt paths skip the check entirely
	Exempt []string
	// OnReject is called with the rejection reason, if set
	OnReject func(reason string)
}

// CSRF rejects unsafe requests whose X-CSRF-Token header is missing, fails
// validation, or differs from the token cookie
func CSRF(cfg CSRFConfig) Middleware {
	exempt := make(map[string]bool, len(cfg.Exempt))
	for _, p := range cfg.Exempt {
		exempt[p] = true
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "csrf_token"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !unsafeMethod(r.Method) || exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			reject := func(reason, detail string) {
				if cfg.OnReject != nil {
					cfg.OnReject(reason)
				}
				model.NewCSRFError(detail).WriteJSON(w)
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" {
				reject("missing", "CSRF token missing")
				return
			}

			if _, err := cfg.Tokens.Validate(token); err != nil {
				if errors.Is(err, csrf.ErrTokenExpired) {
					reject("expired", "CSRF token expired")
					return
				}
				reject("invalid", "CSRF token invalid")
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value != token {
				reject("mismatch", "CSRF token does not match cookie")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
