package httptransport

import (
	"net/http"

	"pigate/internal/integrity"
	"pigate/pkg/platform/httputil"
	"pigate/pkg/requestcontext"
)

// HandleSystemStatus handles GET /v1/system/status. The report fails closed
// on its own, so this endpoint always answers 200.
func (h *Handler) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.liquidity.Report(r.Context()))
}

// HandleToggleCircuitBreaker handles POST /v1/admin/circuit-breaker. The
// operator is the bearer token subject when present, else the body actor_id.
func (h *Handler) HandleToggleCircuitBreaker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ToggleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	actorID := req.ActorID
	if actor := actorFromContext(ctx); actor != nil {
		actorID = actor.ID
	}

	result, err := h.integrity.Toggle(ctx, integrity.ToggleRequest{
		ActorID:  actorID,
		Activate: *req.Activate,
		Reason:   req.Reason,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
