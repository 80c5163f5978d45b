package httptransport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pigate/internal/forensic/models"
	dErrors "pigate/pkg/domain-errors"
)

// OperationRequest is the body of POST /v1/operations.
type OperationRequest struct {
	OperationType string               `json:"operation_type"`
	OperationData models.OperationData `json:"operation_data"`
}

func (r *OperationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.OperationType = strings.TrimSpace(r.OperationType)
	if r.OperationType == "" {
		return dErrors.New(dErrors.CodeValidation, "operation_type is required")
	}
	if len(r.OperationType) > 64 {
		return dErrors.New(dErrors.CodeValidation, "operation_type must be at most 64 characters")
	}
	return nil
}

// ActorRequest describes the receiving party of a transfer as the identity
// provider reported it to the caller.
type ActorRequest struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	ExternalID string     `json:"external_id"`
	Verified   bool       `json:"verified"`
	Tier       string     `json:"tier"`
	CreatedAt  *time.Time `json:"created_at"`
}

func (a *ActorRequest) toModel() *models.Actor {
	if a == nil {
		return nil
	}
	return &models.Actor{
		ID:         strings.TrimSpace(a.ID),
		Email:      strings.TrimSpace(a.Email),
		ExternalID: strings.TrimSpace(a.ExternalID),
		Verified:   a.Verified,
		Tier:       a.Tier,
		CreatedAt:  a.CreatedAt,
	}
}

// TransferRequest is the body of POST /v1/transfers. The source party is the
// authenticated caller.
type TransferRequest struct {
	Target       *ActorRequest   `json:"target"`
	SourceDomain string          `json:"source_domain"`
	TargetDomain string          `json:"target_domain"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Target == nil || strings.TrimSpace(r.Target.ID) == "" {
		return dErrors.New(dErrors.CodeValidation, "target.id is required")
	}
	r.SourceDomain = strings.TrimSpace(r.SourceDomain)
	r.TargetDomain = strings.TrimSpace(r.TargetDomain)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if len(r.Currency) > 8 {
		return dErrors.New(dErrors.CodeValidation, "currency must be at most 8 characters")
	}
	return nil
}

// ToggleRequest is the body of POST /v1/admin/circuit-breaker.
type ToggleRequest struct {
	Activate *bool  `json:"activate"`
	Reason   string `json:"reason"`
	ActorID  string `json:"actor_id"`
}

func (r *ToggleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Activate == nil {
		return dErrors.New(dErrors.CodeValidation, "activate is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	r.ActorID = strings.TrimSpace(r.ActorID)
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	return nil
}
