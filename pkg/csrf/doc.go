// Package csrf issues and verifies the anti-forgery tokens used by the quiz API.
//
// Tokens are HS256-signed JWTs carrying a random ID, issue time, expiry and
// issuer. The server hands one out from GET /api/csrf-token and expects it
// back on every state-changing request in the X-CSRF-Token header, matching
// the csrf_token cookie.
//
// # Issuing
//
//	svc, err := csrf.NewService(csrf.Config{
//	    Secret: []byte(secret),
//	    TTL:    time.Hour,
//	    Issuer: "primarycell-assessment",
//	})
//
//	token, expiresAt, err := svc.Issue()
//
// # Validating
//
//	claims, err := svc.Validate(token)
//	switch {
//	case errors.Is(err, csrf.ErrTokenMissing):
//	case errors.Is(err, csrf.ErrTokenExpired):
//	case errors.Is(err, csrf.ErrTokenInvalid):
//	}
//
// # Secrets
//
// GenerateSecret returns a random hex secret; WriteSecretFile and
// LoadSecretFile persist it for deployments that mount the key as a file.
package csrf
