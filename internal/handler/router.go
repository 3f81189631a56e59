package handler

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/primarycell/assessment/internal/middleware"
	"github.com/primarycell/assessment/internal/telemetry"
)

// SubmitPaths are the state-changing endpoints held to the stricter rate limit
var SubmitPaths = []string{
	"/api/quiz/submit-quiz",
	"/api/quiz/submit-contact",
	"/api/quiz/disqualified-waiting-list",
	"/api/quiz/disqualified-notify-me",
	"/api/quiz/send-welcome-email",
	"/api/quiz/send-welcome-sms",
}

// RouterConfig carries everything NewRouter wires together
type RouterConfig struct {
	Quiz   QuizService
	Store  Pinger
	Tokens interface {
		TokenIssuer
		middleware.TokenValidator
	}
	Version string

	AllowedOrigins []string
	CookieName     string
	SecureCookie   bool

	// DefaultLimiter applies to every path without a dedicated limiter
	DefaultLimiter *middleware.RateLimiter
	// SubmitLimiter applies to SubmitPaths; nil falls back to DefaultLimiter
	SubmitLimiter *middleware.RateLimiter
	Idempotency   *middleware.IdempotencyStore

	// Metrics and Tracer are optional
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler: routes, /metrics and the middleware chain
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	NewHealthHandler(cfg.Store, cfg.Version).RegisterRoutes(mux)
	NewCSRFHandler(cfg.Tokens, cfg.CookieName, cfg.SecureCookie).RegisterRoutes(mux)
	NewQuizHandler(cfg.Quiz, cfg.Metrics, cfg.Logger).RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	var middlewares []middleware.Middleware
	middlewares = append(middlewares, middleware.RequestID)
	if cfg.Tracer != nil {
		middlewares = append(middlewares, middleware.Tracing(cfg.Tracer))
	}
	middlewares = append(middlewares,
		middleware.Logger,
		middleware.Recovery,
	)
	if cfg.Metrics != nil {
		middlewares = append(middlewares, middleware.Metrics(cfg.Metrics))
	}
	middlewares = append(middlewares, middleware.CORS(cfg.AllowedOrigins))

	if cfg.DefaultLimiter != nil {
		routes := make(map[string]*middleware.RateLimiter, len(SubmitPaths))
		if cfg.SubmitLimiter != nil {
			for _, p := range SubmitPaths {
				routes[p] = cfg.SubmitLimiter
			}
		}
		middlewares = append(middlewares, middleware.RateLimitRoutes(cfg.DefaultLimiter, routes))
	}

	middlewares = append(middlewares, middleware.CSRF(middleware.CSRFConfig{
		Tokens:     cfg.Tokens,
		CookieName: cfg.CookieName,
		Exempt:     []string{"/api/csrf-token"},
		OnReject:   cfg.Metrics.CSRFRejected,
	}))
	if cfg.Idempotency != nil {
		middlewares = append(middlewares, middleware.Idempotency(cfg.Idempotency))
	}
	middlewares = append(middlewares, middleware.Compress)

	return middleware.Chain(mux, middlewares...)
}
