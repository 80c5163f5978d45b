// Package ledger builds content-addressed audit log entries and verifies
// hash chains of them. Everything here is pure: persistence and the chain
// head pointer belong to the store.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pigate/internal/forensic/models"
)

// GenesisHash is the previous hash of the first entry in a chain.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Draft carries everything the orchestrator decided about one operation.
type Draft struct {
	Timestamp        time.Time
	OperationType    models.OperationType
	OperationData    models.OperationData
	Actor            *models.Actor
	IdentityCheck    models.IdentityCheck
	ValidationResult models.ValidationResult
	SuspicionResult  models.SuspicionResult
	Approved         bool
	RiskLevel        models.RiskLevel
	RequestMetadata  models.RequestMeta
}

// Build produces an unsealed entry with a fresh id. The timestamp is taken
// from the draft (wall clock if zero), normalized to UTC and truncated to
// microseconds so it survives a round-trip through PostgreSQL unchanged.
// Invalid UTF-8 in any text field is replaced with U+FFFD for the same reason.
func Build(draft Draft) *models.AuditLogEntry {
	ts := draft.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := &models.AuditLogEntry{
		ID:               uuid.NewString(),
		Timestamp:        ts.UTC().Truncate(time.Microsecond),
		OperationType:    draft.OperationType,
		OperationData:    validOperationData(draft.OperationData),
		IdentityCheck:    draft.IdentityCheck,
		ValidationResult: draft.ValidationResult,
		SuspicionResult:  draft.SuspicionResult,
		Approved:         draft.Approved,
		RiskLevel:        draft.RiskLevel,
		RequestMetadata:  validRequestMeta(draft.RequestMetadata),
	}
	entry.IdentityCheck.Reasons = validTexts(draft.IdentityCheck.Reasons)
	entry.ValidationResult.Errors = validTexts(draft.ValidationResult.Errors)
	entry.SuspicionResult.Indicators = validTexts(draft.SuspicionResult.Indicators)
	if draft.Actor != nil {
		entry.ActorUserID = validText(draft.Actor.ID)
		entry.ActorEmail = validText(draft.Actor.Email)
		entry.ActorExternalID = validText(draft.Actor.ExternalID)
	}
	return entry
}

// Seal links entry to previousHash and stamps its digest.
func Seal(entry *models.AuditLogEntry, previousHash string) {
	if previousHash == "" {
		previousHash = GenesisHash
	}
	entry.PreviousHash = previousHash
	entry.Hash = ComputeHash(entry)
}

// canonicalEntry fixes the field order of the digest input. All fields are
// structs or sorted-key maps so json.Marshal output is reproducible.
type canonicalEntry struct {
	ID               string                  `json:"id"`
	Timestamp        string                  `json:"timestamp"`
	OperationType    models.OperationType    `json:"operation_type"`
	OperationData    models.OperationData    `json:"operation_data"`
	ActorUserID      string                  `json:"actor_user_id"`
	ActorEmail       string                  `json:"actor_email"`
	ActorExternalID  string                  `json:"actor_external_id"`
	IdentityCheck    models.IdentityCheck    `json:"identity_check"`
	ValidationResult models.ValidationResult `json:"validation_result"`
	SuspicionResult  models.SuspicionResult  `json:"suspicion_result"`
	Approved         bool                    `json:"approved"`
	RiskLevel        models.RiskLevel        `json:"risk_level"`
	RequestMetadata  models.RequestMeta      `json:"request_metadata"`
	PreviousHash     string                  `json:"previous_hash"`
}

// ComputeHash returns "sha256:<hex>" over the entry's canonical encoding.
// Hash and Sequence are never inputs.
func ComputeHash(entry *models.AuditLogEntry) string {
	identity := entry.IdentityCheck
	identity.Reasons = nonNil(identity.Reasons)
	validation := entry.ValidationResult
	validation.Errors = nonNil(validation.Errors)
	suspicion := entry.SuspicionResult
	suspicion.Indicators = nonNil(suspicion.Indicators)

	data := entry.OperationData
	if len(data.Extra) == 0 {
		data.Extra = nil
	}

	c := canonicalEntry{
		ID:               entry.ID,
		Timestamp:        entry.Timestamp.UTC().Format(time.RFC3339Nano),
		OperationType:    entry.OperationType,
		OperationData:    data,
		ActorUserID:      entry.ActorUserID,
		ActorEmail:       entry.ActorEmail,
		ActorExternalID:  entry.ActorExternalID,
		IdentityCheck:    identity,
		ValidationResult: validation,
		SuspicionResult:  suspicion,
		Approved:         entry.Approved,
		RiskLevel:        entry.RiskLevel,
		RequestMetadata:  entry.RequestMetadata,
		PreviousHash:     entry.PreviousHash,
	}

	// Marshal cannot fail: every field is a plain struct, string or
	// JSON-decoded map value.
	payload, _ := json.Marshal(c)
	sum := sha256.Sum256(payload)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
