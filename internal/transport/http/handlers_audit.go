package httptransport

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pigate/internal/forensic/models"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/platform/httputil"
	"pigate/pkg/requestcontext"
)

// HandleListEntries handles GET /v1/audit/entries.
func (h *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseAuditFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.forensic.ListEntries(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleGetEntry handles GET /v1/audit/entries/{id}.
func (h *Handler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.forensic.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleVerifyChain handles GET /v1/audit/verify. A broken chain is a
// successful verification with valid=false.
func (h *Handler) HandleVerifyChain(w http.ResponseWriter, r *http.Request) {
	result, err := h.forensic.VerifyChain(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleExport handles GET /v1/audit/export as JSON lines.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := fmt.Sprintf("audit-%s.jsonl", requestcontext.Now(ctx).UTC().Format("20060102T150405Z"))

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	n, err := h.forensic.Export(ctx, w)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit export failed",
			"request_id", requestID,
			"exported", n,
			"error", err,
		)
		if n == 0 {
			w.Header().Del("Content-Disposition")
			httputil.WriteError(w, err)
		}
		return
	}
	h.logger.InfoContext(ctx, "audit log exported",
		"log_type", "audit",
		"request_id", requestID,
		"exported", n,
	)
}

func parseAuditFilter(q url.Values) (models.AuditFilter, error) {
	var filter models.AuditFilter
	var err error
	if filter.Offset, err = intParam(q, "offset"); err != nil {
		return filter, err
	}
	if filter.Limit, err = intParam(q, "limit"); err != nil {
		return filter, err
	}
	if v := q.Get("operation_type"); v != "" {
		op := models.OperationType(v)
		if !op.IsKnown() {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "unknown operation_type")
		}
		filter.OperationType = op
	}
	if v := q.Get("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "approved must be true or false")
		}
		filter.Approved = &approved
	}
	filter.Domain = q.Get("domain")
	filter.ActorID = q.Get("actor")
	return filter, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" must be a non-negative integer")
	}
	return n, nil
}
