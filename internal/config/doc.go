// Package config manages application configuration for the assessment API.
//
// Load reads environment variables, after loading an optional .env file from
// the working directory, and fills every group with a development default.
// Validate reports every problem at once via errors.Join.
//
// # Configuration Groups
//
//   - ServerConfig: port, environment, timeouts, CORS origins
//   - StoreConfig: STORE_DRIVER (sqlite or surrealdb) and its connection settings
//   - CSRFConfig: token secret, TTL, issuer and cookie settings
//   - RateLimitConfig: window plus default and submit budgets
//   - TelemetryConfig: OTLP endpoint and metrics toggle
//   - FollowUpConfig: waiting-list follow-up job interval and batch size
//
// # Environment Variables
//
//	SERVER_PORT                 - HTTP server port (default: 8080)
//	SERVER_ENV                  - development, production or test
//	STORE_DRIVER                - sqlite (default) or surrealdb
//	SQLITE_PATH                 - sqlite database file
//	DB_HOST, DB_PORT            - SurrealDB endpoint
//	CSRF_SECRET                 - HMAC secret for CSRF tokens
//	CSRF_SECRET_FILE            - file holding the secret (see cmd/csrf-key)
//	CSRF_TTL                    - token lifetime (default: 1h)
//	RATE_LIMIT_SUBMIT           - per-endpoint submit budget per window (default: 10)
//	OTEL_EXPORTER_OTLP_ENDPOINT - enables tracing when set
//	FOLLOWUP_INTERVAL           - follow-up job interval (default: 1h)
//	FOLLOWUP_RETRY_DELAY        - first retry delay after a failed follow-up (default: 1h)
package config
