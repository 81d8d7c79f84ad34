package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ports/primary"
)

type findingBody struct {
	Code             string `json:"code"`
	PlanID           string `json:"plan_id"`
	PlanProjectID    string `json:"plan_project_id"`
	PlanSubsectionID string `json:"plan_subsection_id"`
	Condition        string `json:"condition"`
	Criterion        string `json:"criterion"`
	Cause            string `json:"cause"`
	Effect           string `json:"effect"`
	Recommendation   string `json:"recommendation"`
	Probability      int    `json:"probability"`
	Impact           int    `json:"impact"`
	Area             string `json:"area"`
}

type assignBody struct {
	ResponsibleID  string `json:"responsible_id"`
	CommitmentDate string `json:"commitment_date"`
}

func findingFilters(r *http.Request) primary.FindingFilters {
	q := r.URL.Query()
	return primary.FindingFilters{
		PlanID:        q.Get("plan_id"),
		PlanProjectID: q.Get("plan_project_id"),
		Status:        q.Get("status"),
		RiskLevel:     q.Get("risk_level"),
		ResponsibleID: q.Get("responsible_id"),
		Search:        q.Get("q"),
	}
}

func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.Findings.ListFindings(r.Context(), findingFilters(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, findings)
}

func (h *Handler) MyFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.Findings.MyFindings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, findings)
}

func (h *Handler) FindingCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Findings.StatusCounts(r.Context(), findingFilters(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) CreateFinding(w http.ResponseWriter, r *http.Request) {
	var body findingBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	finding, err := h.svc.Findings.CreateFinding(r.Context(), primary.CreateFindingRequest{
		Code:             body.Code,
		PlanID:           body.PlanID,
		PlanProjectID:    body.PlanProjectID,
		PlanSubsectionID: body.PlanSubsectionID,
		Condition:        body.Condition,
		Criterion:        body.Criterion,
		Cause:            body.Cause,
		Effect:           body.Effect,
		Recommendation:   body.Recommendation,
		Probability:      body.Probability,
		Impact:           body.Impact,
		Area:             body.Area,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, finding)
}

func (h *Handler) GetFinding(w http.ResponseWriter, r *http.Request) {
	finding, err := h.svc.Findings.GetFinding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finding)
}

func (h *Handler) EditFinding(w http.ResponseWriter, r *http.Request) {
	var body findingBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	err := h.svc.Findings.EditFinding(r.Context(), primary.EditFindingRequest{
		FindingID:      chi.URLParam(r, "id"),
		Condition:      body.Condition,
		Criterion:      body.Criterion,
		Cause:          body.Cause,
		Effect:         body.Effect,
		Recommendation: body.Recommendation,
		Probability:    body.Probability,
		Impact:         body.Impact,
		Area:           body.Area,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteFinding(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Findings.DeleteFinding(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AssignFinding(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.svc.Findings.Assign)
}

func (h *Handler) ReassignFinding(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.svc.Findings.Reassign)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, req primary.AssignFindingRequest) error) {
	var body assignBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	err := op(r.Context(), primary.AssignFindingRequest{
		FindingID:      chi.URLParam(r, "id"),
		ResponsibleID:  body.ResponsibleID,
		CommitmentDate: body.CommitmentDate,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RespondFinding accepts either a JSON body or a multipart form carrying the
// response text and an optional evidence file.
func (h *Handler) RespondFinding(w http.ResponseWriter, r *http.Request) {
	req := primary.RespondRequest{FindingID: chi.URLParam(r, "id")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			badRequest(w, err)
			return
		}
		req.Response = r.FormValue("response")
		if len(r.MultipartForm.File["file"]) > 0 {
			evidence, err := h.readUpload(w, r)
			if err != nil {
				badRequest(w, err)
				return
			}
			evidence.ParentID = req.FindingID
			req.Evidence = evidence
		}
	} else {
		var body struct {
			Response string `json:"response"`
		}
		if err := decodeJSON(r, &body); err != nil {
			badRequest(w, err)
			return
		}
		req.Response = body.Response
	}
	if err := h.svc.Findings.Respond(r.Context(), req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AcceptFinding(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Findings.Accept(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectFinding(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Findings.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListFindingAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Findings.ListAttachments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) UploadFindingAttachment(w http.ResponseWriter, r *http.Request) {
	req, err := h.readUpload(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	req.ParentID = chi.URLParam(r, "id")
	att, err := h.svc.Findings.AddAttachment(r.Context(), *req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}
