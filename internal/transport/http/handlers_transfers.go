package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pigate/internal/transfer"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/platform/httputil"
	"pigate/pkg/requestcontext"
)

// HandleCreateTransfer handles POST /v1/transfers. A rejected transfer is
// still created; the status in the body says what happened.
func (h *Handler) HandleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.transfers.Request(ctx, transfer.Request{
		SourceUser:   actorFromContext(ctx),
		TargetUser:   req.Target.toModel(),
		SourceDomain: req.SourceDomain,
		TargetDomain: req.TargetDomain,
		Amount:       req.Amount,
		Currency:     req.Currency,
		RequestMeta:  requestMeta(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer request failed",
			"request_id", requestID,
			"user_id", requestcontext.UserID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGetTransfer handles GET /v1/transfers/{id}. Only the two parties can
// read a transfer; anyone else gets not found.
func (h *Handler) HandleGetTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	if actor == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	t, err := h.transfers.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if t.SourceUserID != actor.ID && t.TargetUserID != actor.ID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "transfer not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}
