package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a Transfer.
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
	TransferFrozen   TransferStatus = "FROZEN"
)

// IsTerminal reports whether no further transition is possible.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferApproved || s == TransferRejected || s == TransferFrozen
}

// Transfer is a proposed, approved, rejected or frozen movement of value
// between two domains.
type Transfer struct {
	ID            string          `json:"id"`
	SourceUserID  string          `json:"source_user_id"`
	TargetUserID  string          `json:"target_user_id"`
	SourceDomain  string          `json:"source_domain"`
	TargetDomain  string          `json:"target_domain"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        TransferStatus  `json:"status"`
	SourceAuditID string          `json:"source_audit_id,omitempty"`
	TargetAuditID string          `json:"target_audit_id,omitempty"`
	RiskLevel     RiskLevel       `json:"risk_level,omitempty"`
	Suspicious    bool            `json:"suspicious"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	FrozenAt      *time.Time      `json:"frozen_at,omitempty"`
}

// TransferOutcome is the decision applied to a PENDING transfer.
type TransferOutcome struct {
	Status        TransferStatus
	SourceAuditID string
	TargetAuditID string
	RiskLevel     RiskLevel
	Suspicious    bool
	Reason        string
	DecidedAt     time.Time
}

// LiquidityAggregate is the raw read used by the liquidity reporter.
type LiquidityAggregate struct {
	InFlightCount  int
	InFlightTotal  decimal.Decimal
	FrozenCount    int
	FrozenTotal    decimal.Decimal
	Volume24hCount int
}

// LiquidityReport is the dashboard projection of in-flight value and safety posture.
type LiquidityReport struct {
	InFlightCount  int             `json:"in_flight_count"`
	InFlightTotal  decimal.Decimal `json:"in_flight_total"`
	FrozenCount    int             `json:"frozen_count"`
	FrozenTotal    decimal.Decimal `json:"frozen_total"`
	Volume24hCount int             `json:"volume_24h_count"`
	Control        SystemControl   `json:"system_control"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Degraded       bool            `json:"degraded"`
}
