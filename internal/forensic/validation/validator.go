// Package validation checks operation payloads against per-type rules and
// assigns an operation risk level. Validity and risk are independent.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"pigate/internal/forensic/models"
)

// DefaultHighRiskThreshold marks payments above it as HIGH risk.
var DefaultHighRiskThreshold = decimal.NewFromInt(10_000)

// Error messages surfaced in ValidationResult.Errors.
const (
	ErrUnknownOperation    = "Unknown operation type"
	ErrAmountRequired      = "amount is required"
	ErrAmountNotPositive   = "amount must be greater than zero"
	ErrDomainRequired      = "domain is required"
	ErrDomainNameRequired  = "domainName is required"
	ErrDestinationRequired = "destination is required"
)

// Validator is the configurable form of Validate.
type Validator struct {
	HighRiskThreshold decimal.Decimal
}

// New returns a Validator using threshold; a non-positive threshold falls
// back to DefaultHighRiskThreshold.
func New(threshold decimal.Decimal) *Validator {
	if !threshold.IsPositive() {
		threshold = DefaultHighRiskThreshold
	}
	return &Validator{HighRiskThreshold: threshold}
}

// Validate uses the default thresholds.
func Validate(opType models.OperationType, data models.OperationData) models.ValidationResult {
	return New(DefaultHighRiskThreshold).Validate(opType, data)
}

// Validate applies the rules for opType to data.
func (v *Validator) Validate(opType models.OperationType, data models.OperationData) models.ValidationResult {
	var (
		errs []string
		risk = models.RiskLow
	)

	switch opType {
	case models.OperationPaymentCreate, models.OperationPaymentApprove:
		errs = append(errs, requireAmount(data)...)
		errs = append(errs, requireText(data.Domain, ErrDomainRequired)...)
		if amount, ok := data.AmountValue(); ok && amount.GreaterThan(v.HighRiskThreshold) {
			risk = models.RiskHigh
		}
	case models.OperationNFTMint:
		errs = append(errs, requireText(data.DomainName, ErrDomainNameRequired)...)
	case models.OperationWithdrawal, models.OperationTransfer:
		errs = append(errs, requireAmount(data)...)
		errs = append(errs, requireText(data.Destination, ErrDestinationRequired)...)
		risk = models.RiskMedium
	case models.OperationDomainPurchase:
		errs = append(errs, requireText(data.Domain, ErrDomainRequired)...)
		risk = models.RiskMedium
	default:
		errs = append(errs, ErrUnknownOperation)
		risk = models.RiskHigh
	}

	if errs == nil {
		errs = []string{}
	}
	return models.ValidationResult{
		Valid:     len(errs) == 0,
		Errors:    errs,
		RiskLevel: risk,
	}
}

func requireAmount(data models.OperationData) []string {
	amount, ok := data.AmountValue()
	if !ok {
		return []string{ErrAmountRequired}
	}
	if !amount.IsPositive() {
		return []string{ErrAmountNotPositive}
	}
	return nil
}

func requireText(value, msg string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{msg}
	}
	return nil
}
