package models

import "time"

// AuditLogEntry is the immutable record of one operation's forensic outcome.
// Hash covers every field except Hash and Sequence.
type AuditLogEntry struct {
	ID               string           `json:"id"`
	Sequence         int64            `json:"sequence,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	OperationType    OperationType    `json:"operation_type"`
	OperationData    OperationData    `json:"operation_data"`
	ActorUserID      string           `json:"actor_user_id,omitempty"`
	ActorEmail       string           `json:"actor_email,omitempty"`
	ActorExternalID  string           `json:"actor_external_id,omitempty"`
	IdentityCheck    IdentityCheck    `json:"identity_check"`
	ValidationResult ValidationResult `json:"validation_result"`
	SuspicionResult  SuspicionResult  `json:"suspicion_result"`
	Approved         bool             `json:"approved"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	RequestMetadata  RequestMeta      `json:"request_metadata"`
	PreviousHash     string           `json:"previous_hash"`
	Hash             string           `json:"hash"`
}

// PersistResult reports the durability outcome of an audit write. A failed
// write never changes the decision already taken.
type PersistResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuditFilter selects entries for the operator query endpoint.
type AuditFilter struct {
	Offset        int
	Limit         int
	OperationType OperationType
	Approved      *bool
	// Domain matches the operation's domain, source or target domain.
	Domain  string
	ActorID string
}

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 500
)

// Normalize clamps pagination values.
func (f AuditFilter) Normalize() AuditFilter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultAuditPageSize
	}
	if f.Limit > MaxAuditPageSize {
		f.Limit = MaxAuditPageSize
	}
	return f
}

// Matches reports whether entry satisfies the non-pagination criteria.
func (f AuditFilter) Matches(entry *AuditLogEntry) bool {
	if f.OperationType != "" && entry.OperationType != f.OperationType {
		return false
	}
	if f.Approved != nil && entry.Approved != *f.Approved {
		return false
	}
	if f.ActorID != "" && entry.ActorUserID != f.ActorID {
		return false
	}
	if f.Domain != "" {
		d := entry.OperationData
		if d.Domain != f.Domain && d.DomainName != f.Domain && d.SourceDomain != f.Domain && d.TargetDomain != f.Domain {
			return false
		}
	}
	return true
}

// AuditPage is one page of query results.
type AuditPage struct {
	Entries []*AuditLogEntry `json:"entries"`
	Total   int              `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}
