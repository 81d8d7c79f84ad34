// Package handlers translates HTTP requests into primary port calls.
package handlers

import (
	"go.uber.org/zap"

	"github.com/example/auditplus/internal/ports/primary"
)

// Services groups the primary ports the API exposes.
type Services struct {
	Users       primary.UserService
	Catalogs    primary.CatalogService
	Weights     primary.WeightService
	Universe    primary.UniverseService
	Plans       primary.PlanService
	Findings    primary.FindingService
	Evaluations primary.EvaluationService
	Dashboard   primary.DashboardService
	AuditLog    primary.AuditLogService
	Reports     primary.ReportService
}

// Handler holds the JSON API handlers.
type Handler struct {
	svc            Services
	logger         *zap.Logger
	maxUploadBytes int64
}

// New creates the API handlers.
func New(svc Services, logger *zap.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, maxUploadBytes: maxUploadBytes}
}
