// Package identity judges the shape of the actor record handed over by the
// external identity layer. It never authenticates.
package identity

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"pigate/internal/forensic/models"
)

const maxIDLength = 128

// Verification reasons surfaced in IdentityCheck.Reasons.
const (
	ReasonNoSession             = "no session"
	ReasonInvalidIDFormat       = "invalid id format"
	ReasonMissingIdentification = "missing identification"
	ReasonBlacklistedIP         = "blacklisted IP"
	ReasonDenylistUnavailable   = "denylist unavailable"
)

// Denylist answers whether an IP is blocked.
type Denylist interface {
	Contains(ctx context.Context, ip string) (bool, error)
}

// Verifier checks actor records against simple structural rules and the IP denylist.
type Verifier struct {
	denylist Denylist
	logger   *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for denylist failures.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New creates a Verifier. A nil denylist disables the IP rule.
func New(denylist Denylist, opts ...Option) *Verifier {
	v := &Verifier{
		denylist: denylist,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify never fails: every problem becomes a reason on the returned check.
func (v *Verifier) Verify(ctx context.Context, user *models.Actor, meta models.RequestMeta) models.IdentityCheck {
	if user == nil {
		return models.IdentityCheck{
			Verified:  false,
			RiskLevel: models.RiskCritical,
			Reasons:   []string{ReasonNoSession},
		}
	}

	var reasons []string
	if !validID(user.ID) {
		reasons = append(reasons, ReasonInvalidIDFormat)
	}
	if strings.TrimSpace(user.Email) == "" && strings.TrimSpace(user.ExternalID) == "" {
		reasons = append(reasons, ReasonMissingIdentification)
	}
	if reason := v.checkIP(ctx, meta.IP); reason != "" {
		reasons = append(reasons, reason)
	}

	if len(reasons) > 0 {
		return models.IdentityCheck{
			Verified:  false,
			RiskLevel: models.RiskHigh,
			Reasons:   reasons,
		}
	}
	return models.IdentityCheck{
		Verified:  true,
		RiskLevel: models.RiskLow,
		Reasons:   []string{},
	}
}

func (v *Verifier) checkIP(ctx context.Context, ip string) string {
	if v.denylist == nil || ip == "" {
		return ""
	}
	blocked, err := v.denylist.Contains(ctx, ip)
	if err != nil {
		v.logger.WarnContext(ctx, "ip denylist lookup failed",
			"error", err,
			"ip", ip,
		)
		return ReasonDenylistUnavailable
	}
	if blocked {
		return ReasonBlacklistedIP
	}
	return ""
}

func validID(id string) bool {
	if strings.TrimSpace(id) == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
