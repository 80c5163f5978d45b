package transfer

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditService,Gate,Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pigate/internal/forensic/identity"
	"pigate/internal/forensic/models"
	forensic "pigate/internal/forensic/service"
	auditstore "pigate/internal/forensic/store"
	"pigate/internal/forensic/suspicion"
	"pigate/internal/forensic/validation"
	"pigate/internal/transfer/mocks"
	"pigate/internal/transfer/store"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/requestcontext"
)

// =============================================================================
// Dual Forensic Check Test Suite
// =============================================================================
// Both party audits run through the real orchestrator so the suite can
// assert on the entries that end up in the chain.

type TransferSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	ctrl      *gomock.Controller
	gate      *mocks.MockGate
	audits    *auditstore.InMemoryStore
	transfers *store.InMemoryStore
	forensic  *forensic.Service
	service   *Service
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(TransferSuite))
}

func (s *TransferSuite) SetupTest() {
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctrl = gomock.NewController(s.T())
	s.gate = mocks.NewMockGate(s.ctrl)
	s.audits = auditstore.NewInMemoryStore()
	s.transfers = store.NewInMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.forensic, err = forensic.New(
		s.audits,
		identity.New(nil),
		validation.New(validation.DefaultHighRiskThreshold),
		suspicion.New(suspicion.DefaultConfig()),
		s.gate,
		forensic.WithLogger(logger),
	)
	s.Require().NoError(err)

	s.service, err = New(s.forensic, s.gate, s.transfers, WithLogger(logger))
	s.Require().NoError(err)
}

func (s *TransferSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransferSuite) open(times int) {
	s.gate.EXPECT().EmergencyGate(gomock.Any()).Return(models.GateResult{IntegrityLevel: models.IntegrityNormal}).Times(times)
}

func (s *TransferSuite) locked() {
	s.gate.EXPECT().EmergencyGate(gomock.Any()).Return(models.GateResult{
		Blocked:        true,
		HTTPStatus:     http.StatusForbidden,
		Message:        models.SystemLockMessage,
		IntegrityLevel: models.IntegrityLocked,
		LockReason:     "manual",
	})
}

func alice() *models.Actor {
	return &models.Actor{ID: "alice", Email: "alice@example.com", Verified: true}
}

func bob() *models.Actor {
	return &models.Actor{ID: "bob", Email: "bob@example.com", Verified: true}
}

func transferData(amount int64) models.OperationData {
	d := decimal.NewFromInt(amount)
	return models.OperationData{Amount: &d, Destination: "finance", SourceDomain: "commerce", TargetDomain: "finance"}
}

func (s *TransferSuite) TestNew() {
	_, err := New(nil, s.gate, s.transfers)
	s.ErrorContains(err, "audit service is required")
	_, err = New(s.forensic, nil, s.transfers)
	s.ErrorContains(err, "emergency gate is required")
	_, err = New(s.forensic, s.gate, nil)
	s.ErrorContains(err, "transfer store is required")
}

func (s *TransferSuite) TestCheckApprovesWhenBothPartiesPass() {
	s.open(1)

	result := s.service.Check(s.ctx, CheckRequest{SourceUser: alice(), TargetUser: bob(), TransferData: transferData(500)})

	s.True(result.Approved)
	s.False(result.Blocked)
	s.Empty(result.Reasons)
	s.NotEmpty(result.SourceAuditID)
	s.NotEmpty(result.TargetAuditID)
	s.NotEqual(result.SourceAuditID, result.TargetAuditID)
	s.Equal(models.RiskMedium, result.RiskLevel)

	entries, err := s.audits.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	actors := []string{entries[0].ActorUserID, entries[1].ActorUserID}
	s.ElementsMatch([]string{"alice", "bob"}, actors)
	for _, e := range entries {
		s.Equal(models.OperationTransfer, e.OperationType)
	}
	s.Equal(entries[0].Hash, entries[1].PreviousHash)
}

func (s *TransferSuite) TestCheckRequiresBothGates() {
	s.open(1)
	target := &models.Actor{ID: "bob", Verified: true}

	result := s.service.Check(s.ctx, CheckRequest{SourceUser: alice(), TargetUser: target, TransferData: transferData(500)})

	s.False(result.Approved)
	s.True(result.SourceAudit.Approved)
	s.False(result.TargetAudit.Approved)
	s.Contains(result.Reasons, "target: "+identity.ReasonMissingIdentification)
	s.Contains(result.Reasons, "target: "+suspicion.IndicatorUnverifiedUser)
	for _, r := range result.Reasons {
		s.NotContains(r, "source:")
	}
	s.True(result.Suspicious)
	s.NotEmpty(result.SourceAuditID)
	s.NotEmpty(result.TargetAuditID)
}

func (s *TransferSuite) TestCheckBlockedCreatesNoEntries() {
	s.locked()

	result := s.service.Check(s.ctx, CheckRequest{SourceUser: alice(), TargetUser: bob(), TransferData: transferData(500)})

	s.True(result.Blocked)
	s.False(result.Approved)
	s.Equal(models.SystemLockMessage, result.Reason)
	s.Empty(result.SourceAuditID)
	entries, err := s.audits.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *TransferSuite) TestRequestApproved() {
	s.open(2)

	res, err := s.service.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.RequireFromString("250.50"),
		Currency:     "PI",
	})

	s.Require().NoError(err)
	s.Equal(models.TransferApproved, res.Transfer.Status)
	s.Equal(res.Check.SourceAuditID, res.Transfer.SourceAuditID)
	s.Equal(res.Check.TargetAuditID, res.Transfer.TargetAuditID)
	s.Require().NotNil(res.Transfer.ApprovedAt)
	s.Equal(s.now, *res.Transfer.ApprovedAt)

	stored, err := s.service.Get(s.ctx, res.Transfer.ID)
	s.Require().NoError(err)
	s.Equal(models.TransferApproved, stored.Status)
	s.True(decimal.RequireFromString("250.5").Equal(stored.Amount))
}

func (s *TransferSuite) TestRequestRejectedForLargeAmount() {
	s.open(2)

	res, err := s.service.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(60_000),
	})

	s.Require().NoError(err)
	s.Equal(models.TransferRejected, res.Transfer.Status)
	s.Nil(res.Transfer.ApprovedAt)
	s.Equal(models.RiskCritical, res.Transfer.RiskLevel)
	s.Contains(res.Transfer.Reason, "source: "+suspicion.IndicatorLargeAmount)
	s.Contains(res.Transfer.Reason, "target: "+suspicion.IndicatorLargeAmount)
}

func (s *TransferSuite) TestRequestFrozenDuringCheck() {
	audits := mocks.NewMockAuditService(s.ctrl)
	svc, err := New(audits, s.gate, s.transfers, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.open(2)

	approve := func(ctx context.Context, req forensic.EntryRequest) *forensic.EntryResult {
		return &forensic.EntryResult{
			Approved:  true,
			RiskLevel: models.RiskLow,
			LogEntry:  &models.AuditLogEntry{ID: req.User.ID + "-audit"},
		}
	}
	// The breaker trips while the source audit is running.
	audits.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, req forensic.EntryRequest) *forensic.EntryResult {
		if req.User.ID == "alice" {
			_, _ = s.transfers.FreezePending(ctx, s.now, "circuit breaker: incident")
		}
		return approve(ctx, req)
	}).Times(2)

	res, err := svc.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	})

	s.Require().NoError(err)
	s.True(res.Check.Approved)
	s.Equal(models.TransferFrozen, res.Transfer.Status)
	s.Equal("circuit breaker: incident", res.Transfer.Reason)
	s.Nil(res.Transfer.ApprovedAt)
}

func (s *TransferSuite) TestRequestBlockedByGate() {
	s.locked()

	_, err := s.service.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	})

	s.True(dErrors.HasCode(err, dErrors.CodeSystemLocked))
	list, err := s.service.List(s.ctx, store.Filter{})
	s.Require().NoError(err)
	s.Empty(list)
	entries, _ := s.audits.ListAll(s.ctx)
	s.Empty(entries)
}

func (s *TransferSuite) TestRequestLockedAfterCreationFreezesTransfer() {
	// Activation ran its freeze before the row existed.
	s.open(1)
	s.locked()

	_, err := s.service.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	})

	s.True(dErrors.HasCode(err, dErrors.CodeSystemLocked))
	pending, err := s.service.List(s.ctx, store.Filter{Status: models.TransferPending})
	s.Require().NoError(err)
	s.Empty(pending)

	frozen, err := s.service.List(s.ctx, store.Filter{Status: models.TransferFrozen})
	s.Require().NoError(err)
	s.Require().Len(frozen, 1)
	s.Equal(models.SystemLockMessage, frozen[0].Reason)
	s.Require().NotNil(frozen[0].FrozenAt)
	s.Equal(s.now, *frozen[0].FrozenAt)
	entries, _ := s.audits.ListAll(s.ctx)
	s.Empty(entries)
}

func (s *TransferSuite) TestRequestValidation() {
	valid := Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	}

	s.Run("missing source user", func() {
		req := valid
		req.SourceUser = nil
		_, err := s.service.Request(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("same party on both sides", func() {
		req := valid
		req.TargetUser = alice()
		_, err := s.service.Request(s.ctx, req)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.Contains(de.Details, "source and target users must differ")
	})

	s.Run("non positive amount and missing domains", func() {
		req := valid
		req.Amount = decimal.Zero
		req.TargetDomain = " "
		_, err := s.service.Request(s.ctx, req)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.ElementsMatch([]string{"amount must be positive", "target domain is required"}, de.Details)
	})

	s.Run("amount finer than the stored scale", func() {
		req := valid
		req.Amount = decimal.RequireFromString("1.000000001")
		_, err := s.service.Request(s.ctx, req)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.Equal([]string{"amount supports at most 8 decimal places"}, de.Details)
	})

	s.Run("trailing zeros beyond the stored scale are accepted", func() {
		s.open(2)
		req := valid
		req.Amount = decimal.RequireFromString("1.500000000000")
		res, err := s.service.Request(s.ctx, req)
		s.Require().NoError(err)
		s.True(decimal.RequireFromString("1.5").Equal(res.Transfer.Amount))
	})
}

func (s *TransferSuite) TestRequestDecideFailure() {
	transfers := mocks.NewMockStore(s.ctrl)
	svc, err := New(s.forensic, s.gate, transfers, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.open(2)
	transfers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	transfers.EXPECT().Decide(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, errors.New("connection reset"))

	_, err = svc.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	entries, _ := s.audits.ListAll(s.ctx)
	s.Len(entries, 2, "both audits are recorded even when the decision is lost")
}

func (s *TransferSuite) TestGetAndList() {
	_, err := s.service.Get(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.List(s.ctx, store.Filter{Status: "SHIPPED"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	s.open(2)
	res, err := s.service.Request(s.ctx, Request{
		SourceUser:   alice(),
		TargetUser:   bob(),
		SourceDomain: "commerce",
		TargetDomain: "finance",
		Amount:       decimal.NewFromInt(10),
	})
	s.Require().NoError(err)

	list, err := s.service.List(s.ctx, store.Filter{UserID: "bob", Status: models.TransferApproved})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(res.Transfer.ID, list[0].ID)
}
