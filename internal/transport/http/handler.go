// Package httptransport exposes the forensic core over HTTP. Handlers only
// translate between JSON and service calls; every decision is made by the
// services they wrap.
package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pigate/internal/forensic/ledger"
	"pigate/internal/forensic/models"
	forensic "pigate/internal/forensic/service"
	"pigate/internal/integrity"
	"pigate/internal/transfer"
	authmw "pigate/pkg/platform/middleware/auth"
	"pigate/pkg/requestcontext"
)

// ForensicService runs sensitive operations and serves the audit log.
type ForensicService interface {
	ProcessOperation(ctx context.Context, req forensic.EntryRequest) (*forensic.EntryResult, error)
	ListEntries(ctx context.Context, filter models.AuditFilter) (*models.AuditPage, error)
	GetEntry(ctx context.Context, id string) (*models.AuditLogEntry, error)
	VerifyChain(ctx context.Context) (ledger.VerifyResult, error)
	Export(ctx context.Context, w io.Writer) (int, error)
}

// TransferService runs the dual forensic check on transfer requests.
type TransferService interface {
	Request(ctx context.Context, req transfer.Request) (*transfer.RequestResult, error)
	Get(ctx context.Context, id string) (*models.Transfer, error)
}

// IntegrityService owns the circuit breaker.
type IntegrityService interface {
	Toggle(ctx context.Context, req integrity.ToggleRequest) (*integrity.ToggleResult, error)
}

// LiquidityReporter builds the system status projection.
type LiquidityReporter interface {
	Report(ctx context.Context) models.LiquidityReport
}

// Handler wires the public and operator endpoints to the services.
type Handler struct {
	forensic  ForensicService
	transfers TransferService
	integrity IntegrityService
	liquidity LiquidityReporter
	logger    *slog.Logger
}

func New(forensic ForensicService, transfers TransferService, integrity IntegrityService, liquidity LiquidityReporter, logger *slog.Logger) *Handler {
	return &Handler{
		forensic:  forensic,
		transfers: transfers,
		integrity: integrity,
		liquidity: liquidity,
		logger:    logger,
	}
}

// Register mounts the endpoints. Audit and breaker routes sit behind admin.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/v1/operations", h.HandleOperation)
	r.Post("/v1/transfers", h.HandleCreateTransfer)
	r.Get("/v1/transfers/{id}", h.HandleGetTransfer)
	r.Get("/v1/system/status", h.HandleSystemStatus)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/v1/audit/entries", h.HandleListEntries)
		r.Get("/v1/audit/entries/{id}", h.HandleGetEntry)
		r.Get("/v1/audit/verify", h.HandleVerifyChain)
		r.Get("/v1/audit/export", h.HandleExport)
		r.Post("/v1/admin/circuit-breaker", h.HandleToggleCircuitBreaker)
	})
}

// actorFromContext returns nil for anonymous requests; the forensic core
// records those as missing sessions.
func actorFromContext(ctx context.Context) *models.Actor {
	claims, ok := authmw.ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	return &models.Actor{
		ID:         claims.UserID,
		Email:      claims.Email,
		ExternalID: claims.ExternalID,
		Verified:   claims.Verified,
		Tier:       claims.Tier,
		CreatedAt:  claims.CreatedAt,
	}
}

func requestMeta(ctx context.Context) models.RequestMeta {
	return models.RequestMeta{
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Origin:    requestcontext.Origin(ctx),
		Client:    requestcontext.ClientSummary(ctx),
	}
}
