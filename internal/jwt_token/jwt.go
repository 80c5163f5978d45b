// Package jwttoken validates actor tokens minted by the Pi identity
// provider. pigate never issues tokens in production; GenerateActorToken
// exists for tests and local development.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "pigate/pkg/domain-errors"
)

// Claims is the actor record carried by an identity token.
type Claims struct {
	Email      string     `json:"email,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	Verified   bool       `json:"verified"`
	Tier       string     `json:"tier,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	jwt.RegisteredClaims
}

// ActorClaims are the inputs to GenerateActorToken.
type ActorClaims struct {
	UserID     string
	Email      string
	ExternalID string
	Verified   bool
	Tier       string
	CreatedAt  *time.Time
}

// JWTService validates HMAC-signed actor tokens for a single issuer.
type JWTService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

func (s *JWTService) GenerateActorToken(actor ActorClaims, expiresIn time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:      actor.Email,
		ExternalID: actor.ExternalID,
		Verified:   actor.Verified,
		Tier:       actor.Tier,
		CreatedAt:  actor.CreatedAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	return claims, nil
}
