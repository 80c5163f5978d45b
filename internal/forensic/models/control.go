package models

import (
	"net/http"
	"time"
)

// IntegrityLevel describes overall system trustworthiness.
type IntegrityLevel string

const (
	IntegrityNormal   IntegrityLevel = "NORMAL"
	IntegrityWarning  IntegrityLevel = "WARNING"
	IntegrityCritical IntegrityLevel = "CRITICAL"
	IntegrityLocked   IntegrityLevel = "LOCKED"
)

// Rank orders integrity levels; unknown values rank as locked.
func (l IntegrityLevel) Rank() int {
	switch l {
	case IntegrityNormal:
		return 0
	case IntegrityWarning:
		return 1
	case IntegrityCritical:
		return 2
	default:
		return 3
	}
}

// SystemLockMessage is the only text untrusted callers see when the gate blocks.
const SystemLockMessage = "System Lock: Integrity Breach Detected"

// SystemControl is the process-wide safety posture of the transfer subsystem.
type SystemControl struct {
	IntegrityLevel       IntegrityLevel `json:"integrity_level"`
	CircuitBreakerActive bool           `json:"circuit_breaker_active"`
	LockReason           string         `json:"lock_reason,omitempty"`
	LockedBy             string         `json:"locked_by,omitempty"`
	LockedAt             *time.Time     `json:"locked_at,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
	// Synthetic marks a fail-closed snapshot that was not read from storage.
	Synthetic bool `json:"synthetic,omitempty"`
}

// DefaultSystemControl is the lazily-created initial row.
func DefaultSystemControl(now time.Time) SystemControl {
	return SystemControl{
		IntegrityLevel: IntegrityNormal,
		UpdatedAt:      now,
	}
}

// FailClosedSystemControl is returned whenever the real state cannot be read.
func FailClosedSystemControl(now time.Time, reason string) SystemControl {
	return SystemControl{
		IntegrityLevel:       IntegrityCritical,
		CircuitBreakerActive: true,
		LockReason:           reason,
		UpdatedAt:            now,
		Synthetic:            true,
	}
}

// BlocksTransfers reports whether the posture rejects all transfers.
func (c SystemControl) BlocksTransfers() bool {
	return c.CircuitBreakerActive || c.IntegrityLevel == IntegrityLocked
}

// GateResult is the emergency gate verdict.
type GateResult struct {
	Blocked        bool           `json:"blocked"`
	HTTPStatus     int            `json:"http_status,omitempty"`
	Message        string         `json:"message,omitempty"`
	IntegrityLevel IntegrityLevel `json:"integrity_level"`
	LockReason     string         `json:"lock_reason,omitempty"`
}

// GateFor derives the gate verdict from a control snapshot.
func GateFor(c SystemControl) GateResult {
	if c.BlocksTransfers() {
		return GateResult{
			Blocked:        true,
			HTTPStatus:     http.StatusForbidden,
			Message:        SystemLockMessage,
			IntegrityLevel: c.IntegrityLevel,
			LockReason:     c.LockReason,
		}
	}
	return GateResult{IntegrityLevel: c.IntegrityLevel}
}
