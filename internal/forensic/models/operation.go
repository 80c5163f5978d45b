package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the closed set of sensitive operations the core judges.
type OperationType string

const (
	OperationPaymentCreate  OperationType = "payment_create"
	OperationPaymentApprove OperationType = "payment_approve"
	OperationNFTMint        OperationType = "nft_mint"
	OperationWithdrawal     OperationType = "withdrawal"
	OperationTransfer       OperationType = "transfer"
	OperationDomainPurchase OperationType = "domain_purchase"
)

// OperationTypes lists every known operation type.
var OperationTypes = []OperationType{
	OperationPaymentCreate,
	OperationPaymentApprove,
	OperationNFTMint,
	OperationWithdrawal,
	OperationTransfer,
	OperationDomainPurchase,
}

// IsKnown reports whether t is one of OperationTypes.
func (t OperationType) IsKnown() bool {
	for _, known := range OperationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseOperationType normalizes s. Unknown types are returned as-is so the
// validator can reject (and the audit trail record) them.
func ParseOperationType(s string) OperationType {
	return OperationType(strings.ToLower(strings.TrimSpace(s)))
}

// Actor is the verified actor record handed over by the external identity layer.
// The core judges its shape; it never authenticates.
type Actor struct {
	ID         string     `json:"id"`
	Email      string     `json:"email,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	Verified   bool       `json:"verified"`
	Tier       string     `json:"tier,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// RequestMeta is advisory request metadata. Only IP takes part in decisions.
type RequestMeta struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Origin    string `json:"origin,omitempty"`
	// Client is a parsed "browser/os" summary of UserAgent.
	Client string `json:"client,omitempty"`
}

// RecentOperation is one element of the caller-supplied activity history.
type RecentOperation struct {
	Timestamp     time.Time     `json:"timestamp"`
	OperationType OperationType `json:"operation_type,omitempty"`
}

// OperationContext is optional caller history used by suspicion heuristics.
type OperationContext struct {
	RecentOperations []RecentOperation `json:"recent_operations,omitempty"`
	UserCreatedAt    *time.Time        `json:"user_created_at,omitempty"`
}

// OperationData is the structured payload of an operation. Field requirements
// depend on the operation type; Extra carries caller data that is recorded
// but not interpreted.
type OperationData struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	Domain       string           `json:"domain,omitempty"`
	DomainName   string           `json:"domain_name,omitempty"`
	Destination  string           `json:"destination,omitempty"`
	SourceDomain string           `json:"source_domain,omitempty"`
	TargetDomain string           `json:"target_domain,omitempty"`
	Extra        map[string]any   `json:"extra,omitempty"`
}

// AmountValue returns the amount and whether one was supplied.
func (d OperationData) AmountValue() (decimal.Decimal, bool) {
	if d.Amount == nil {
		return decimal.Zero, false
	}
	return *d.Amount, true
}

// IdentityCheck is the IdentityVerifier verdict.
type IdentityCheck struct {
	Verified  bool      `json:"verified"`
	RiskLevel RiskLevel `json:"risk_level"`
	Reasons   []string  `json:"reasons"`
}

// ValidationResult is the OperationValidator verdict. Valid and RiskLevel are
// independent axes.
type ValidationResult struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// SuspicionResult is the SuspicionDetector verdict.
type SuspicionResult struct {
	Suspicious  bool      `json:"suspicious"`
	Indicators  []string  `json:"indicators"`
	ThreatLevel RiskLevel `json:"threat_level"`
	ShouldBlock bool      `json:"should_block"`
}
