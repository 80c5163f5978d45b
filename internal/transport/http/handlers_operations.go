package httptransport

import (
	"net/http"
	"time"

	"pigate/internal/forensic/models"
	forensic "pigate/internal/forensic/service"
	"pigate/pkg/platform/httputil"
	"pigate/pkg/requestcontext"
)

// HandleOperation handles POST /v1/operations. The response carries the
// decision and its audit trail whether or not the operation was approved.
func (h *Handler) HandleOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[OperationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.forensic.ProcessOperation(ctx, forensic.EntryRequest{
		User:          actorFromContext(ctx),
		OperationType: models.OperationType(req.OperationType),
		OperationData: req.OperationData,
		RequestMeta:   requestMeta(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "operation not processed",
			"request_id", requestID,
			"operation_type", req.OperationType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "operation processed",
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx),
		"operation_type", req.OperationType,
		"approved", result.Approved,
		"risk_level", result.RiskLevel,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
