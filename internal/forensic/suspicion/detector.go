// Package suspicion flags heuristically suspicious operations. Every rule is
// evaluated independently; the threat level is the worst triggered rule.
package suspicion

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
)

// Indicators surfaced in SuspicionResult.Indicators.
const (
	IndicatorRapidOperations       = "rapid repeated operations"
	IndicatorLargeAmount           = "unusually large transaction amount"
	IndicatorNewAccountLargeAmount = "new account large transaction"
	IndicatorUnverifiedUser        = "unverified user attempting operation"
)

// Config holds the heuristic thresholds.
type Config struct {
	// RapidOperationCount is the number of recent operations tolerated inside RapidWindow.
	RapidOperationCount int
	RapidWindow         time.Duration
	// LargeTransactionThreshold is the only blocking threshold; amounts strictly above it block.
	LargeTransactionThreshold decimal.Decimal
	NewAccountThreshold       decimal.Decimal
	NewAccountAge             time.Duration
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		RapidOperationCount:       5,
		RapidWindow:               60 * time.Second,
		LargeTransactionThreshold: decimal.NewFromInt(50_000),
		NewAccountThreshold:       decimal.NewFromInt(1_000),
		NewAccountAge:             24 * time.Hour,
	}
}

// Detector evaluates the suspicion heuristics.
type Detector struct {
	cfg Config
}

// New fills zero config fields with defaults.
func New(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.RapidOperationCount <= 0 {
		cfg.RapidOperationCount = def.RapidOperationCount
	}
	if cfg.RapidWindow <= 0 {
		cfg.RapidWindow = def.RapidWindow
	}
	if !cfg.LargeTransactionThreshold.IsPositive() {
		cfg.LargeTransactionThreshold = def.LargeTransactionThreshold
	}
	if !cfg.NewAccountThreshold.IsPositive() {
		cfg.NewAccountThreshold = def.NewAccountThreshold
	}
	if cfg.NewAccountAge <= 0 {
		cfg.NewAccountAge = def.NewAccountAge
	}
	return &Detector{cfg: cfg}
}

// Detect never fails. Missing amount or context simply leaves the amount and
// history rules untriggered.
func (d *Detector) Detect(ctx context.Context, user *models.Actor, _ models.OperationType, data models.OperationData, opCtx *models.OperationContext) models.SuspicionResult {
	now := requestcontext.Now(ctx)
	amount, hasAmount := data.AmountValue()

	result := models.SuspicionResult{
		Indicators:  []string{},
		ThreatLevel: models.RiskLow,
	}
	flag := func(indicator string, level models.RiskLevel) {
		result.Suspicious = true
		result.Indicators = append(result.Indicators, indicator)
		result.ThreatLevel = models.MaxRisk(result.ThreatLevel, level)
	}

	if opCtx != nil && d.recentCount(opCtx.RecentOperations, now) > d.cfg.RapidOperationCount {
		flag(IndicatorRapidOperations, models.RiskHigh)
	}

	if hasAmount && amount.GreaterThan(d.cfg.LargeTransactionThreshold) {
		flag(IndicatorLargeAmount, models.RiskCritical)
		result.ShouldBlock = true
	}

	if hasAmount && amount.GreaterThan(d.cfg.NewAccountThreshold) {
		if created := accountCreatedAt(user, opCtx); created != nil && now.Sub(*created) < d.cfg.NewAccountAge {
			flag(IndicatorNewAccountLargeAmount, models.RiskHigh)
		}
	}

	if user == nil || !user.Verified || strings.TrimSpace(user.Email) == "" {
		flag(IndicatorUnverifiedUser, models.RiskHigh)
	}

	return result
}

func (d *Detector) recentCount(ops []models.RecentOperation, now time.Time) int {
	n := 0
	for _, op := range ops {
		if age := now.Sub(op.Timestamp); age >= 0 && age <= d.cfg.RapidWindow {
			n++
		}
	}
	return n
}

// accountCreatedAt prefers the caller-supplied history over the actor record.
func accountCreatedAt(user *models.Actor, opCtx *models.OperationContext) *time.Time {
	if opCtx != nil && opCtx.UserCreatedAt != nil {
		return opCtx.UserCreatedAt
	}
	if user != nil {
		return user.CreatedAt
	}
	return nil
}
