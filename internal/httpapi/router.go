// Package httpapi exposes the application services as a JSON API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/example/auditplus/internal/httpapi/handlers"
	"github.com/example/auditplus/internal/httpapi/middleware"
	"github.com/example/auditplus/internal/metrics"
)

// RouterDeps defines router construction dependencies.
type RouterDeps struct {
	Handlers       *handlers.Handler
	Auth           *middleware.Auth
	Logger         *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	h := deps.Handlers

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handlers.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)

		r.Get("/me", h.Me)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/audit-log", h.ListAuditLog)
		r.Post("/sweep", h.SweepOverdue)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateProfile)
			r.Put("/{id}/role", h.ChangeRole)
			r.Put("/{id}/password", h.ResetPassword)
			r.Post("/{id}/deactivate", h.DeactivateUser)
			r.Post("/{id}/activate", h.ActivateUser)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.ListCatalog)
			r.Post("/", h.CreateCatalogEntry)
			r.Post("/{id}/deactivate", h.DeactivateCatalogEntry)
			r.Post("/{id}/activate", h.ActivateCatalogEntry)
		})

		r.Get("/weights", h.ListWeights)
		r.Put("/weights", h.UpdateWeights)

		r.Route("/universe", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Post("/import", h.ImportProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Post("/{id}/sections", h.AddSection)
			r.Get("/{id}/attachments", h.ListProjectAttachments)
			r.Post("/{id}/attachments", h.UploadProjectAttachment)
		})
		r.Delete("/sections/{id}", h.DeleteSection)
		r.Post("/sections/{id}/subsections", h.AddSubsection)
		r.Delete("/subsections/{id}", h.DeleteSubsection)

		r.Get("/attachments/{id}", h.DownloadAttachment)
		r.Delete("/attachments/{id}", h.DeleteAttachment)

		r.Route("/evaluations", func(r chi.Router) {
			r.Get("/", h.ListEvaluations)
			r.Post("/sync", h.SyncEvaluations)
			r.Put("/{id}", h.SaveEvaluation)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
			r.Delete("/{id}", h.DeletePlan)
			r.Put("/{id}/status", h.SetPlanStatus)
			r.Post("/{id}/copy", h.CopyProjects)
		})

		r.Route("/plan-projects", func(r chi.Router) {
			r.Get("/", h.ListPlanProjects)
			r.Get("/{id}", h.GetPlanProject)
			r.Put("/{id}/schedule", h.UpdateSchedule)
			r.Post("/{id}/{action}", h.TransitionPlanProject)
			r.Get("/{id}/assignments", h.ListAssignments)
			r.Post("/{id}/assignments", h.AssignUser)
		})
		r.Delete("/assignments/{id}", h.RemoveAssignment)

		r.Route("/findings", func(r chi.Router) {
			r.Get("/", h.ListFindings)
			r.Post("/", h.CreateFinding)
			r.Get("/mine", h.MyFindings)
			r.Get("/counts", h.FindingCounts)
			r.Get("/{id}", h.GetFinding)
			r.Put("/{id}", h.EditFinding)
			r.Delete("/{id}", h.DeleteFinding)
			r.Post("/{id}/assign", h.AssignFinding)
			r.Post("/{id}/reassign", h.ReassignFinding)
			r.Post("/{id}/respond", h.RespondFinding)
			r.Post("/{id}/accept", h.AcceptFinding)
			r.Post("/{id}/reject", h.RejectFinding)
			r.Get("/{id}/attachments", h.ListFindingAttachments)
			r.Post("/{id}/attachments", h.UploadFindingAttachment)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/universe.xlsx", h.ExportUniverse)
			r.Get("/evaluation.xlsx", h.ExportEvaluation)
			r.Get("/findings.xlsx", h.ExportFindings)
			r.Get("/workbook.xlsx", h.ExportWorkbook)
			r.Get("/plans/{id}/xlsx", h.ExportPlan)
			r.Get("/plans/{id}/document", h.PlanDocument)
			r.Get("/plans/{id}/pdf", h.PlanPDF)
		})
	})

	return r
}
