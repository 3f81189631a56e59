package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/primarycell/assessment/internal/middleware"
	"github.com/primarycell/assessment/internal/model"
)

// TokenIssuer mints CSRF tokens
type TokenIssuer interface {
	Issue() (token string, expiresAt time.Time, err error)
}

// CSRFTokenResponse is the body of GET /api/csrf-token
type CSRFTokenResponse struct {
	Token     string `json:"csrf_token"`
	ExpiresIn int    `json:"expires_in"`
}

// CSRFHandler issues CSRF tokens
type CSRFHandler struct {
	issuer       TokenIssuer
	cookieName   string
	secureCookie bool
	now          func() time.Time
}

// NewCSRFHandler creates a new CSRF handler. secure marks the cookie Secure.
func NewCSRFHandler(issuer TokenIssuer, cookieName string, secure bool) *CSRFHandler {
	if cookieName == "" {
		cookieName = "csrf_token"
	}
	return &CSRFHandler{
		issuer:       issuer,
		cookieName:   cookieName,
		secureCookie: secure,
		now:          time.Now,
	}
}

// RegisterRoutes registers the token route on the mux
func (h *CSRFHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/csrf-token", h.Token)
}

// Token handles GET /api/csrf-token - issue a token, cookie and header
func (h *CSRFHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, err := h.issuer.Issue()
	if err != nil {
		slog.ErrorContext(r.Context(), "csrf token issue failed", slog.String("error", err.Error()))
		WriteError(w, model.NewInternalError("failed to issue csrf token"))
		return
	}

	expiresIn := int(expiresAt.Sub(h.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   expiresIn,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set(middleware.CSRFHeader, token)
	w.Header().Set("Cache-Control", "no-store")

	WriteJSON(w, http.StatusOK, CSRFTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}
