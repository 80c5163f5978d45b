// Package auth turns a bearer token from the identity provider into actor
// claims on the request context. A missing or invalid token is not an error
// here: the request continues anonymously and the forensic checks record
// the missing session.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pigate/pkg/requestcontext"
)

// JWTValidator validates a raw bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the actor record carried by the token.
type JWTClaims struct {
	UserID     string
	Email      string
	ExternalID string
	Verified   bool
	Tier       string
	CreatedAt  *time.Time
}

type contextKeyClaims struct{}

// ContextKeyClaims is exported for tests that build contexts by hand.
var ContextKeyClaims = contextKeyClaims{}

// ClaimsFromContext returns the authenticated actor, if any.
func ClaimsFromContext(ctx context.Context) (*JWTClaims, bool) {
	c, ok := ctx.Value(ContextKeyClaims).(*JWTClaims)
	return c, ok && c != nil
}

// WithClaims injects claims the way Authenticate does.
func WithClaims(ctx context.Context, claims *JWTClaims) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClaims, claims)
	return requestcontext.WithUserID(ctx, claims.UserID)
}

// Authenticate attaches claims for a valid bearer token and passes every
// request through.
func Authenticate(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "bearer token rejected, continuing without session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}
