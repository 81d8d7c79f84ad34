package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Reports are rendered into a buffer first so a failure can still be
// reported as a JSON error instead of a truncated download.
func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(ctx context.Context, out io.Writer) error) {
	var buf bytes.Buffer
	if err := render(r.Context(), &buf); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// sweep brings finding statuses up to date before a status-bearing export.
func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) bool {
	if _, err := h.svc.Findings.SweepOverdue(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return false
	}
	return true
}

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ExportUniverse(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, xlsxType, "universo.xlsx", h.svc.Reports.ExportUniverse)
}

func (h *Handler) ExportEvaluation(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, xlsxType, "evaluacion.xlsx", h.svc.Reports.ExportEvaluation)
}

func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	if !h.sweep(w, r) {
		return
	}
	h.serveReport(w, r, xlsxType, "auditoria.xlsx", h.svc.Reports.ExportWorkbook)
}

func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	if !h.sweep(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	h.serveReport(w, r, xlsxType, "plan-"+id+".xlsx", func(ctx context.Context, out io.Writer) error {
		return h.svc.Reports.ExportPlan(ctx, id, out)
	})
}

func (h *Handler) ExportFindings(w http.ResponseWriter, r *http.Request) {
	if !h.sweep(w, r) {
		return
	}
	filters := findingFilters(r)
	h.serveReport(w, r, xlsxType, "hallazgos.xlsx", func(ctx context.Context, out io.Writer) error {
		return h.svc.Reports.ExportFindings(ctx, filters, out)
	})
}

func (h *Handler) PlanDocument(w http.ResponseWriter, r *http.Request) {
	if !h.sweep(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	h.serveReport(w, r, "text/markdown; charset=utf-8", "plan-"+id+".md", func(ctx context.Context, out io.Writer) error {
		return h.svc.Reports.PlanDocument(ctx, id, out)
	})
}

func (h *Handler) PlanPDF(w http.ResponseWriter, r *http.Request) {
	if !h.sweep(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	h.serveReport(w, r, "application/pdf", "informe-"+id+".pdf", func(ctx context.Context, out io.Writer) error {
		return h.svc.Reports.PlanPDF(ctx, id, out)
	})
}
