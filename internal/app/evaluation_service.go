package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/evaluation"
	"github.com/example/auditplus/internal/core/scoring"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// EvaluationServiceImpl implements the EvaluationService interface.
type EvaluationServiceImpl struct {
	universeRepo    secondary.UniverseRepository
	evaluationRepo  secondary.EvaluationRepository
	weightRepo      secondary.WeightRepository
	planProjectRepo secondary.PlanProjectRepository
	findingRepo     secondary.FindingRepository
	activity        *Activity
	clock           Clock
}

// NewEvaluationService creates a new EvaluationService with injected dependencies.
func NewEvaluationService(
	universeRepo secondary.UniverseRepository,
	evaluationRepo secondary.EvaluationRepository,
	weightRepo secondary.WeightRepository,
	planProjectRepo secondary.PlanProjectRepository,
	findingRepo secondary.FindingRepository,
	activity *Activity,
	clock Clock,
) *EvaluationServiceImpl {
	return &EvaluationServiceImpl{
		universeRepo:    universeRepo,
		evaluationRepo:  evaluationRepo,
		weightRepo:      weightRepo,
		planProjectRepo: planProjectRepo,
		findingRepo:     findingRepo,
		activity:        activity,
		clock:           clock,
	}
}

// ListEvaluations returns every universe project ranked by criticality.
// Criticality is recomputed with the current weights rather than read back.
func (s *EvaluationServiceImpl) ListEvaluations(ctx context.Context) ([]*primary.Evaluation, error) {
	projects, err := s.universeRepo.ListProjects(ctx, secondary.UniverseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	stored, err := s.evaluationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	w, err := loadWeights(ctx, s.weightRepo)
	if err != nil {
		return nil, err
	}

	byProject := make(map[string]*secondary.EvaluationRecord, len(stored))
	for _, e := range stored {
		byProject[e.ProjectID] = e
	}

	result := make([]*primary.Evaluation, 0, len(projects))
	for _, p := range projects {
		record, ok := byProject[p.ID]
		if !ok {
			record = defaultEvaluation(p.ID)
		}
		ev := recordToEvaluation(record, p, w)
		ev.Stored = ok
		result = append(result, ev)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Criticality != result[j].Criticality {
			return result[i].Criticality > result[j].Criticality
		}
		return result[i].ProjectCode < result[j].ProjectCode
	})
	return result, nil
}

// SaveEvaluation stores the manual fields of an evaluation. The last audit
// status and date are kept from the stored row; only a sync changes them.
func (s *EvaluationServiceImpl) SaveEvaluation(ctx context.Context, req primary.SaveEvaluationRequest) (*primary.Evaluation, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return nil, err
	}

	project, err := s.universeRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	ev := scoring.Evaluation{
		RiskLevel:          req.RiskLevel,
		MonthsSinceAudit:   req.MonthsSinceAudit,
		FindingsLastAudit:  req.FindingsLastAudit,
		FindingsResolved:   req.FindingsResolved,
		RotationCycleMonth: req.RotationCycle,
	}
	if result := evaluation.Validate(ev); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	existing, err := s.evaluationRepo.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation: %w", err)
	}
	w, err := loadWeights(ctx, s.weightRepo)
	if err != nil {
		return nil, err
	}

	record := &secondary.EvaluationRecord{
		ProjectID:         req.ProjectID,
		RiskLevel:         req.RiskLevel,
		MonthsSinceAudit:  req.MonthsSinceAudit,
		FindingsLastAudit: req.FindingsLastAudit,
		FindingsResolved:  req.FindingsResolved,
		LastAuditStatus:   evaluation.NoAuditStatus,
		RotationCycle:     req.RotationCycle,
		Criticality:       scoring.CalculateCriticality(ev, w),
	}
	if existing != nil {
		record.LastAuditStatus = existing.LastAuditStatus
		record.LastAuditDate = existing.LastAuditDate
	}

	if err := s.evaluationRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save evaluation: %w", err)
	}

	result := recordToEvaluation(record, project, w)
	result.Stored = true
	s.activity.Record(ctx, actionEvaluate, moduleEvaluation, "%s: criticidad %.2f (%s)", project.Code, result.Criticality, result.CriticalityLevel)
	return result, nil
}

// SyncFromPlans refreshes the audit history fields of every universe project
// that appears in at least one plan. Risk level and rotation cycle are kept.
func (s *EvaluationServiceImpl) SyncFromPlans(ctx context.Context) (int, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return 0, err
	}

	projects, err := s.universeRepo.ListProjects(ctx, secondary.UniverseFilters{})
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}
	w, err := loadWeights(ctx, s.weightRepo)
	if err != nil {
		return 0, err
	}

	today := s.clock.now()
	synced := 0
	for _, p := range projects {
		latest, err := s.planProjectRepo.LatestForOrigin(ctx, p.ID)
		if err != nil {
			return synced, fmt.Errorf("failed to find latest audit of %s: %w", p.Code, err)
		}
		if latest == nil {
			continue
		}
		total, accepted, err := s.findingRepo.CountForPlanProject(ctx, latest.ID)
		if err != nil {
			return synced, fmt.Errorf("failed to count findings of %s: %w", latest.Code, err)
		}

		derived := evaluation.Derive(evaluation.LatestAudit{
			Status:        latest.Status,
			ActualEnd:     latest.ActualEnd,
			TotalFindings: total,
			Accepted:      accepted,
		}, today)

		record, err := s.evaluationRepo.Get(ctx, p.ID)
		if err != nil {
			return synced, fmt.Errorf("failed to load evaluation of %s: %w", p.Code, err)
		}
		if record == nil {
			record = defaultEvaluation(p.ID)
		}
		record.MonthsSinceAudit = derived.MonthsSinceAudit
		record.FindingsLastAudit = derived.FindingsLastAudit
		record.FindingsResolved = derived.FindingsResolved
		record.LastAuditStatus = derived.AuditStatus
		record.LastAuditDate = derived.AuditDate
		record.Criticality = scoring.CalculateCriticality(recordToScoring(record), w)

		if err := s.evaluationRepo.Upsert(ctx, record); err != nil {
			return synced, fmt.Errorf("failed to save evaluation of %s: %w", p.Code, err)
		}
		synced++
	}

	s.activity.Record(ctx, actionSync, moduleEvaluation, "%d proyectos sincronizados desde planes", synced)
	return synced, nil
}

func defaultEvaluation(projectID string) *secondary.EvaluationRecord {
	d := evaluation.Default()
	return &secondary.EvaluationRecord{
		ProjectID:         projectID,
		RiskLevel:         d.RiskLevel,
		MonthsSinceAudit:  d.MonthsSinceAudit,
		FindingsLastAudit: d.FindingsLastAudit,
		FindingsResolved:  d.FindingsResolved,
		LastAuditStatus:   evaluation.NoAuditStatus,
		RotationCycle:     d.RotationCycleMonth,
	}
}

func recordToEvaluation(r *secondary.EvaluationRecord, p *secondary.UniverseProjectRecord, w scoring.Weights) *primary.Evaluation {
	score, level := scoring.CriticalityLevel(recordToScoring(r), w)
	status := r.LastAuditStatus
	if status == "" {
		status = evaluation.NoAuditStatus
	}
	return &primary.Evaluation{
		ProjectID:         r.ProjectID,
		ProjectCode:       p.Code,
		ProjectName:       p.Name,
		RiskLevel:         r.RiskLevel,
		MonthsSinceAudit:  r.MonthsSinceAudit,
		FindingsLastAudit: r.FindingsLastAudit,
		FindingsResolved:  r.FindingsResolved,
		LastAuditStatus:   status,
		LastAuditDate:     r.LastAuditDate,
		RotationCycle:     r.RotationCycle,
		Criticality:       score,
		CriticalityLevel:  string(level),
		EvaluatedAt:       r.EvaluatedAt,
	}
}

// Ensure EvaluationServiceImpl implements the interface
var _ primary.EvaluationService = (*EvaluationServiceImpl)(nil)
