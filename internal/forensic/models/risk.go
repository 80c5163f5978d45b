package models

import "strings"

// RiskLevel is the four-step severity ladder shared by identity, validation
// and suspicion results.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Severity orders risk levels; unknown values rank as critical.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 3
	}
}

// ParseRiskLevel accepts case-insensitive level names.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch level := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); level {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return level, true
	default:
		return "", false
	}
}

// MaxRisk returns the most severe of the given levels, or LOW if none.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	highest := RiskLow
	for _, l := range levels {
		if l == "" {
			continue
		}
		if l.Severity() > highest.Severity() {
			highest = l
		}
	}
	return highest
}
