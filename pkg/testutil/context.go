package testutil

import (
	"context"
	"net/http"

	authmw "pigate/pkg/platform/middleware/auth"
	"pigate/pkg/requestcontext"
)

// WithActor attaches claims to the request the way the auth middleware does
// for a valid bearer token.
func WithActor(req *http.Request, claims *authmw.JWTClaims) *http.Request {
	return req.WithContext(authmw.WithClaims(req.Context(), claims))
}

// WithVerifiedActor is WithActor for a verified actor with an email.
func WithVerifiedActor(req *http.Request, userID string) *http.Request {
	return WithActor(req, &authmw.JWTClaims{
		UserID:   userID,
		Email:    userID + "@example.com",
		Verified: true,
	})
}

// WithClient sets the client metadata the metadata middleware would derive.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, userAgent, "")
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
