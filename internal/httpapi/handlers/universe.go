package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ports/primary"
)

type projectBody struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Objective    string `json:"objective"`
	AuditType    string `json:"audit_type"`
	Process      string `json:"process"`
	PlannedStart string `json:"planned_start"`
	PlannedEnd   string `json:"planned_end"`
}

func (b projectBody) request() primary.CreateProjectRequest {
	return primary.CreateProjectRequest{
		Code:         b.Code,
		Name:         b.Name,
		Objective:    b.Objective,
		AuditType:    b.AuditType,
		Process:      b.Process,
		PlannedStart: b.PlannedStart,
		PlannedEnd:   b.PlannedEnd,
	}
}

type nodeBody struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (b nodeBody) request(parentID string) primary.AddNodeRequest {
	return primary.AddNodeRequest{
		ParentID:    parentID,
		Code:        b.Code,
		Name:        b.Name,
		Description: b.Description,
		Order:       b.Order,
	}
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := h.svc.Universe.ListProjects(r.Context(), primary.UniverseFilters{
		AuditType: q.Get("audit_type"),
		Process:   q.Get("process"),
		Search:    q.Get("q"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	project, err := h.svc.Universe.CreateProject(r.Context(), body.request())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// ImportProject accepts a YAML project template as the raw request body.
func (h *Handler) ImportProject(w http.ResponseWriter, r *http.Request) {
	template, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		badRequest(w, err)
		return
	}
	detail, err := h.svc.Universe.ImportProject(r.Context(), template)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Universe.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	err := h.svc.Universe.UpdateProject(r.Context(), primary.UpdateProjectRequest{
		ProjectID:            chi.URLParam(r, "id"),
		CreateProjectRequest: body.request(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Universe.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddSection(w http.ResponseWriter, r *http.Request) {
	var body nodeBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	section, err := h.svc.Universe.AddSection(r.Context(), body.request(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Universe.DeleteSection(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddSubsection(w http.ResponseWriter, r *http.Request) {
	var body nodeBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	sub, err := h.svc.Universe.AddSubsection(r.Context(), body.request(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) DeleteSubsection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Universe.DeleteSubsection(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProjectAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Universe.ListAttachments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) UploadProjectAttachment(w http.ResponseWriter, r *http.Request) {
	req, err := h.readUpload(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	req.ParentID = chi.URLParam(r, "id")
	att, err := h.svc.Universe.AddAttachment(r.Context(), *req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}

// DownloadAttachment streams any attachment with its stored content type.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	att, err := h.svc.Universe.GetAttachment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(att.Data)
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Universe.DeleteAttachment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload reads the multipart field "file", bounded by the upload cap.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*primary.AddAttachmentRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &primary.AddAttachmentRequest{
		Kind:        r.FormValue("kind"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
