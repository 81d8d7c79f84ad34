package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ports/primary"
)

func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Evaluations.ListEvaluations(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) SaveEvaluation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RiskLevel         int `json:"risk_level"`
		MonthsSinceAudit  int `json:"months_since_audit"`
		FindingsLastAudit int `json:"findings_last_audit"`
		FindingsResolved  int `json:"findings_resolved"`
		RotationCycle     int `json:"rotation_cycle"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	ev, err := h.svc.Evaluations.SaveEvaluation(r.Context(), primary.SaveEvaluationRequest{
		ProjectID:         chi.URLParam(r, "id"),
		RiskLevel:         body.RiskLevel,
		MonthsSinceAudit:  body.MonthsSinceAudit,
		FindingsLastAudit: body.FindingsLastAudit,
		FindingsResolved:  body.FindingsResolved,
		RotationCycle:     body.RotationCycle,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) SyncEvaluations(w http.ResponseWriter, r *http.Request) {
	synced, err := h.svc.Evaluations.SyncFromPlans(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"synced": synced})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Dashboard.Summary(r.Context(), r.URL.Query().Get("plan_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err)
		return
	}
	q := r.URL.Query()
	entries, err := h.svc.AuditLog.ListEntries(r.Context(), primary.AuditLogFilters{
		UserID: q.Get("user_id"),
		Module: q.Get("module"),
		Limit:  limit,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SweepOverdue runs the overdue sweep on demand.
func (h *Handler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	swept, err := h.svc.Findings.SweepOverdue(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"swept": swept})
}
