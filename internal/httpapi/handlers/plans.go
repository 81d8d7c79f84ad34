package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ports/primary"
)

type planBody struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Objective string `json:"objective"`
	Year      int    `json:"year"`
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		badRequest(w, err)
		return
	}
	plans, err := h.svc.Plans.ListPlans(r.Context(), primary.PlanFilters{
		Year:   year,
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var body planBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	plan, err := h.svc.Plans.CreatePlan(r.Context(), primary.CreatePlanRequest{
		Code:      body.Code,
		Name:      body.Name,
		Objective: body.Objective,
		Year:      body.Year,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Plans.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) SetPlanStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Plans.SetPlanStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Plans.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyProjects deep-copies the listed universe projects into the plan.
func (h *Handler) CopyProjects(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectIDs []string `json:"project_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	resp, err := h.svc.Plans.CopyProjectsToPlan(r.Context(), primary.CopyProjectsRequest{
		PlanID:     chi.URLParam(r, "id"),
		ProjectIDs: body.ProjectIDs,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListPlanProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := h.svc.Plans.ListPlanProjects(r.Context(), primary.PlanProjectFilters{
		PlanID:         q.Get("plan_id"),
		Status:         q.Get("status"),
		SupervisorID:   q.Get("supervisor_id"),
		FieldAuditorID: q.Get("field_auditor_id"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) GetPlanProject(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Plans.GetPlanProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlannedStart   string `json:"planned_start"`
		PlannedEnd     string `json:"planned_end"`
		SupervisorID   string `json:"supervisor_id"`
		FieldAuditorID string `json:"field_auditor_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	err := h.svc.Plans.UpdateSchedule(r.Context(), primary.UpdateScheduleRequest{
		PlanProjectID:  chi.URLParam(r, "id"),
		PlannedStart:   body.PlannedStart,
		PlannedEnd:     body.PlannedEnd,
		SupervisorID:   body.SupervisorID,
		FieldAuditorID: body.FieldAuditorID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransitionPlanProject handles the start, complete and reopen actions.
func (h *Handler) TransitionPlanProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		project *primary.PlanProject
		err     error
	)
	switch action := chi.URLParam(r, "action"); action {
	case "start":
		project, err = h.svc.Plans.StartProject(r.Context(), id)
	case "complete":
		project, err = h.svc.Plans.CompleteProject(r.Context(), id)
	case "reopen":
		project, err = h.svc.Plans.ReopenProject(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown action "+action, nil)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Plans.ListAssignments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AssignUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	assignment, err := h.svc.Plans.AssignUser(r.Context(), primary.AssignUserRequest{
		PlanProjectID: chi.URLParam(r, "id"),
		UserID:        body.UserID,
		Role:          body.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Plans.RemoveAssignment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
