package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/plan"
	"github.com/example/auditplus/internal/core/universe"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// PlanServiceImpl implements the PlanService interface.
type PlanServiceImpl struct {
	planRepo        secondary.PlanRepository
	planProjectRepo secondary.PlanProjectRepository
	universeRepo    secondary.UniverseRepository
	findingRepo     secondary.FindingRepository
	userRepo        secondary.UserRepository
	assignmentRepo  secondary.AssignmentRepository
	activity        *Activity
	clock           Clock
}

// NewPlanService creates a new PlanService with injected dependencies.
func NewPlanService(
	planRepo secondary.PlanRepository,
	planProjectRepo secondary.PlanProjectRepository,
	universeRepo secondary.UniverseRepository,
	findingRepo secondary.FindingRepository,
	userRepo secondary.UserRepository,
	assignmentRepo secondary.AssignmentRepository,
	activity *Activity,
	clock Clock,
) *PlanServiceImpl {
	return &PlanServiceImpl{
		planRepo:        planRepo,
		planProjectRepo: planProjectRepo,
		universeRepo:    universeRepo,
		findingRepo:     findingRepo,
		userRepo:        userRepo,
		assignmentRepo:  assignmentRepo,
		activity:        activity,
		clock:           clock,
	}
}

// CreatePlan creates an annual plan in status Activo.
func (s *PlanServiceImpl) CreatePlan(ctx context.Context, req primary.CreatePlanRequest) (*primary.Plan, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	exists := false
	if code != "" {
		var err error
		exists, err = s.planRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check plan code: %w", err)
		}
	}

	guardCtx := plan.CreatePlanContext{
		ActorRole:  role,
		Code:       code,
		Name:       req.Name,
		Year:       req.Year,
		CodeExists: exists,
	}
	if result := plan.CanCreatePlan(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	id, err := s.planRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan ID: %w", err)
	}

	record := &secondary.PlanRecord{
		ID:        id,
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Objective: strings.TrimSpace(req.Objective),
		Year:      req.Year,
		Status:    plan.StatusActive,
		CreatedBy: ctxutil.ActorID(ctx),
	}
	if err := s.planRepo.Create(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("plan code %s already exists", code), "create plan")
	}

	s.activity.Record(ctx, actionCreate, modulePlan, "Plan %s - %s (%d)", record.Code, record.Name, record.Year)
	return recordToPlan(record), nil
}

// GetPlan retrieves a plan with its plan-projects grouped by status.
func (s *PlanServiceImpl) GetPlan(ctx context.Context, planID string) (*primary.PlanDetail, error) {
	record, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	projects, err := s.ListPlanProjects(ctx, primary.PlanProjectFilters{PlanID: planID})
	if err != nil {
		return nil, err
	}

	findings, err := s.findingRepo.CountForPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}

	byStatus := make(map[string]int)
	for _, p := range projects {
		byStatus[p.Status]++
	}

	return &primary.PlanDetail{
		Plan:          recordToPlan(record),
		Projects:      projects,
		ProjectStatus: byStatus,
		FindingCount:  findings,
	}, nil
}

// ListPlans lists plans, newest year first.
func (s *PlanServiceImpl) ListPlans(ctx context.Context, filters primary.PlanFilters) ([]*primary.Plan, error) {
	records, err := s.planRepo.List(ctx, secondary.PlanFilters{Year: filters.Year, Status: filters.Status})
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*primary.Plan, len(records))
	for i, r := range records {
		plans[i] = recordToPlan(r)
	}
	return plans, nil
}

// SetPlanStatus closes or reactivates a plan. Closed plans accept no new copies.
func (s *PlanServiceImpl) SetPlanStatus(ctx context.Context, planID, status string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}
	if status != plan.StatusActive && status != plan.StatusClosed {
		return invalid(fmt.Sprintf("unknown plan status %q (expected %s or %s)", status, plan.StatusActive, plan.StatusClosed))
	}

	record, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if record.Status == status {
		return invalid(fmt.Sprintf("plan %s is already %s", planID, status))
	}

	if err := s.planRepo.UpdateStatus(ctx, planID, status); err != nil {
		return err
	}
	s.activity.Record(ctx, actionChangeStatus, modulePlan, "Plan %s: %s -> %s", record.Code, record.Status, status)
	return nil
}

// DeletePlan deletes a plan with its plan-projects. Refused while findings exist.
func (s *PlanServiceImpl) DeletePlan(ctx context.Context, planID string) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return err
	}

	record, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	findings, err := s.findingRepo.CountForPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to count findings: %w", err)
	}

	guardCtx := plan.DeletePlanContext{ActorRole: role, PlanID: planID, FindingCount: findings}
	if result := plan.CanDeletePlan(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, modulePlan, "Plan %s - %s", record.Code, record.Name)
	return nil
}

// CopyProjectsToPlan deep-copies universe projects into a plan in one transaction.
// Projects already in the plan, or repeated in the selection, are skipped and reported.
func (s *PlanServiceImpl) CopyProjectsToPlan(ctx context.Context, req primary.CopyProjectsRequest) (*primary.CopyProjectsResponse, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	planRecord, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	guardCtx := plan.CopyProjectsContext{
		ActorRole:  role,
		PlanID:     req.PlanID,
		PlanStatus: planRecord.Status,
		Selected:   len(req.ProjectIDs),
	}
	if result := plan.CanCopyProjects(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	// 1. Fetch the selected projects with their trees
	snapshots := make([]universe.ProjectSnapshot, 0, len(req.ProjectIDs))
	for _, id := range req.ProjectIDs {
		snap, err := s.snapshotProject(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	existing, err := s.planRepo.ListOriginIDs(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan projects: %w", err)
	}

	// 2. Plan the copy (pure)
	batch := universe.GenerateCopyBatch(universe.CopyInput{
		PlanID:            req.PlanID,
		Projects:          snapshots,
		ExistingOriginIDs: existing,
	})

	resp := &primary.CopyProjectsResponse{
		PlanProjectIDs: []string{},
		Skipped:        batch.Skipped,
		Sections:       batch.SectionCount(),
		Subsections:    batch.SubsectionCount(),
	}
	if len(batch.Drafts) == 0 {
		return resp, nil
	}

	// 3. Insert everything or nothing
	ids, err := s.planRepo.InsertProjectTrees(ctx, draftsToTrees(batch.Drafts))
	if err != nil {
		return nil, fmt.Errorf("failed to copy projects into plan %s: %w", req.PlanID, err)
	}
	resp.PlanProjectIDs = ids

	s.activity.Record(ctx, actionCopy, modulePlan, "%d proyecto(s) copiados al plan %s (%d secciones, %d subsecciones)",
		len(ids), planRecord.Code, resp.Sections, resp.Subsections)
	return resp, nil
}

// snapshotProject reads a universe project with its full tree.
func (s *PlanServiceImpl) snapshotProject(ctx context.Context, projectID string) (universe.ProjectSnapshot, error) {
	p, err := s.universeRepo.GetProject(ctx, projectID)
	if err != nil {
		return universe.ProjectSnapshot{}, err
	}
	sections, err := s.universeRepo.ListSections(ctx, projectID)
	if err != nil {
		return universe.ProjectSnapshot{}, fmt.Errorf("failed to list sections of %s: %w", projectID, err)
	}
	subs, err := s.universeRepo.ListSubsections(ctx, projectID)
	if err != nil {
		return universe.ProjectSnapshot{}, fmt.Errorf("failed to list subsections of %s: %w", projectID, err)
	}

	snap := universe.ProjectSnapshot{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Objective:    p.Objective,
		AuditType:    p.AuditType,
		Process:      p.Process,
		PlannedStart: p.PlannedStart,
		PlannedEnd:   p.PlannedEnd,
	}
	index := make(map[string]int, len(sections))
	for _, sec := range sections {
		index[sec.ID] = len(snap.Sections)
		snap.Sections = append(snap.Sections, universe.SectionSnapshot{
			ID:          sec.ID,
			Code:        sec.Code,
			Name:        sec.Name,
			Description: sec.Description,
			Order:       sec.Order,
		})
	}
	for _, sub := range subs {
		i, ok := index[sub.SectionID]
		if !ok {
			continue
		}
		snap.Sections[i].Subsections = append(snap.Sections[i].Subsections, universe.SubsectionSnapshot{
			ID:          sub.ID,
			Code:        sub.Code,
			Name:        sub.Name,
			Description: sub.Description,
			Order:       sub.Order,
		})
	}
	return snap, nil
}

func draftsToTrees(drafts []universe.PlanProjectDraft) []secondary.PlanProjectTree {
	trees := make([]secondary.PlanProjectTree, len(drafts))
	for i, d := range drafts {
		tree := secondary.PlanProjectTree{
			Project: secondary.PlanProjectRecord{
				PlanID:          d.PlanID,
				OriginProjectID: d.OriginID,
				Code:            d.Code,
				Name:            d.Name,
				Objective:       d.Objective,
				AuditType:       d.AuditType,
				Process:         d.Process,
				PlannedStart:    d.PlannedStart,
				PlannedEnd:      d.PlannedEnd,
			},
		}
		for _, sec := range d.Sections {
			st := secondary.PlanSectionTree{
				Section: secondary.PlanSectionRecord{
					OriginSectionID: sec.OriginID,
					Code:            sec.Code,
					Name:            sec.Name,
					Description:     sec.Description,
					Order:           sec.Order,
				},
			}
			for _, sub := range sec.Subsections {
				st.Subsections = append(st.Subsections, secondary.PlanSubsectionRecord{
					OriginSubsectionID: sub.OriginID,
					Code:               sub.Code,
					Name:               sub.Name,
					Description:        sub.Description,
					Order:              sub.Order,
				})
			}
			tree.Sections = append(tree.Sections, st)
		}
		trees[i] = tree
	}
	return trees
}

func recordToPlan(r *secondary.PlanRecord) *primary.Plan {
	return &primary.Plan{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Objective:    r.Objective,
		Year:         r.Year,
		Status:       r.Status,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		ProjectCount: r.ProjectCount,
	}
}

// Ensure PlanServiceImpl implements the interface
var _ primary.PlanService = (*PlanServiceImpl)(nil)
