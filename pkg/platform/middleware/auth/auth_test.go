package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigate/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func serve(t *testing.T, v JWTValidator, header string) (*JWTClaims, bool, string) {
	t.Helper()
	var (
		claims *JWTClaims
		ok     bool
		userID string
		called bool
	)
	h := Authenticate(v, slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok = ClaimsFromContext(r.Context())
		userID = requestcontext.UserID(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.True(t, called, "requests always pass through")
	return claims, ok, userID
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid token attaches claims", func(t *testing.T) {
		v := &stubValidator{claims: &JWTClaims{UserID: "alice", Email: "alice@example.com", Verified: true}}
		claims, ok, userID := serve(t, v, "Bearer abc.def.ghi")
		require.True(t, ok)
		assert.Equal(t, "abc.def.ghi", v.seen)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "alice", userID)
	})

	t.Run("missing header is anonymous", func(t *testing.T) {
		_, ok, userID := serve(t, &stubValidator{}, "")
		assert.False(t, ok)
		assert.Empty(t, userID)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		_, ok, _ := serve(t, &stubValidator{err: errors.New("expired")}, "Bearer nope")
		assert.False(t, ok)
	})

	t.Run("non bearer scheme is ignored", func(t *testing.T) {
		v := &stubValidator{}
		_, ok, _ := serve(t, v, "Basic dXNlcjpwYXNz")
		assert.False(t, ok)
		assert.Empty(t, v.seen)
	})
}
