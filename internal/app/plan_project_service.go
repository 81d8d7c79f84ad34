package app

import (
	"context"
	"fmt"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/planproject"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// ListPlanProjects lists plan-projects with optional filters.
func (s *PlanServiceImpl) ListPlanProjects(ctx context.Context, filters primary.PlanProjectFilters) ([]*primary.PlanProject, error) {
	records, err := s.planProjectRepo.List(ctx, secondary.PlanProjectFilters{
		PlanID:         filters.PlanID,
		Status:         filters.Status,
		SupervisorID:   filters.SupervisorID,
		FieldAuditorID: filters.FieldAuditorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list plan-projects: %w", err)
	}

	projects := make([]*primary.PlanProject, len(records))
	for i, r := range records {
		projects[i] = recordToPlanProject(r)
	}
	return projects, nil
}

// GetPlanProject retrieves a plan-project with its copied tree and finding counts.
func (s *PlanServiceImpl) GetPlanProject(ctx context.Context, planProjectID string) (*primary.PlanProjectDetail, error) {
	record, err := s.planProjectRepo.GetByID(ctx, planProjectID)
	if err != nil {
		return nil, err
	}

	sectionRecords, err := s.planProjectRepo.ListSections(ctx, planProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan sections: %w", err)
	}
	subRecords, err := s.planProjectRepo.ListSubsections(ctx, planProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan subsections: %w", err)
	}

	sections := make([]*primary.PlanSection, len(sectionRecords))
	byID := make(map[string]*primary.PlanSection, len(sectionRecords))
	for i, r := range sectionRecords {
		sections[i] = &primary.PlanSection{
			ID:              r.ID,
			OriginSectionID: r.OriginSectionID,
			Code:            r.Code,
			Name:            r.Name,
			Description:     r.Description,
			Order:           r.Order,
			Subsections:     []*primary.PlanSubsection{},
		}
		byID[r.ID] = sections[i]
	}
	for _, r := range subRecords {
		if sec, ok := byID[r.PlanSectionID]; ok {
			sec.Subsections = append(sec.Subsections, &primary.PlanSubsection{
				ID:                 r.ID,
				OriginSubsectionID: r.OriginSubsectionID,
				Code:               r.Code,
				Name:               r.Name,
				Description:        r.Description,
				Order:              r.Order,
			})
		}
	}

	total, accepted, err := s.findingRepo.CountForPlanProject(ctx, planProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}

	return &primary.PlanProjectDetail{
		Project:          recordToPlanProject(record),
		Sections:         sections,
		TotalFindings:    total,
		AcceptedFindings: accepted,
	}, nil
}

// UpdateSchedule sets planned dates, supervisor and field auditor.
func (s *PlanServiceImpl) UpdateSchedule(ctx context.Context, req primary.UpdateScheduleRequest) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor, access.RoleSupervisor); err != nil {
		return err
	}

	record, err := s.planProjectRepo.GetByID(ctx, req.PlanProjectID)
	if err != nil {
		return err
	}

	guardCtx := planproject.ScheduleContext{
		ActorRole:    role,
		Status:       planproject.Status(record.Status),
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
	}
	if result := planproject.CanEditSchedule(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.checkAssignee(ctx, req.SupervisorID, access.RoleSupervisor); err != nil {
		return err
	}
	if err := s.checkAssignee(ctx, req.FieldAuditorID, access.RoleFieldAuditor); err != nil {
		return err
	}

	err = s.planProjectRepo.UpdateSchedule(ctx, req.PlanProjectID, secondary.ScheduleUpdate{
		PlannedStart:   req.PlannedStart,
		PlannedEnd:     req.PlannedEnd,
		SupervisorID:   req.SupervisorID,
		FieldAuditorID: req.FieldAuditorID,
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, actionEdit, modulePlan, "Programación de %s: %s a %s", record.Code, req.PlannedStart, req.PlannedEnd)
	return nil
}

// checkAssignee requires an empty ID or an active user holding role.
func (s *PlanServiceImpl) checkAssignee(ctx context.Context, userID string, role access.Role) error {
	if userID == "" {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if isNotFound(err) {
		return invalid(fmt.Sprintf("user %s not found", userID))
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return invalid(fmt.Sprintf("user %s is not active", userID))
	}
	if user.Role != string(role) {
		return invalid(fmt.Sprintf("user %s has role %s (requires %s)", userID, user.Role, role))
	}
	return nil
}

// StartProject moves a plan-project to En Proceso and stamps its actual start.
func (s *PlanServiceImpl) StartProject(ctx context.Context, planProjectID string) (*primary.PlanProject, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor, access.RoleSupervisor); err != nil {
		return nil, err
	}

	record, err := s.planProjectRepo.GetByID(ctx, planProjectID)
	if err != nil {
		return nil, err
	}

	guardCtx := planproject.StartContext{
		PlanProjectID:  planProjectID,
		Status:         planproject.Status(record.Status),
		PlannedStart:   record.PlannedStart,
		PlannedEnd:     record.PlannedEnd,
		SupervisorID:   record.SupervisorID,
		FieldAuditorID: record.FieldAuditorID,
	}
	if result := planproject.CanStart(guardCtx); !result.Allowed {
		return nil, preconditionFailed(result)
	}

	return s.transition(ctx, record, planproject.ApplyStart(s.clock.today()), actionStart)
}

// CompleteProject moves a plan-project to Completada once every finding is accepted.
func (s *PlanServiceImpl) CompleteProject(ctx context.Context, planProjectID string) (*primary.PlanProject, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor, access.RoleSupervisor); err != nil {
		return nil, err
	}

	record, err := s.planProjectRepo.GetByID(ctx, planProjectID)
	if err != nil {
		return nil, err
	}

	total, accepted, err := s.findingRepo.CountForPlanProject(ctx, planProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}

	guardCtx := planproject.CompleteContext{
		PlanProjectID: planProjectID,
		Status:        planproject.Status(record.Status),
		TotalFindings: total,
		Accepted:      accepted,
	}
	if result := planproject.CanComplete(guardCtx); !result.Allowed {
		return nil, preconditionFailed(result)
	}

	return s.transition(ctx, record, planproject.ApplyComplete(s.clock.today()), actionComplete)
}

// ReopenProject moves a completed plan-project back to En Proceso.
func (s *PlanServiceImpl) ReopenProject(ctx context.Context, planProjectID string) (*primary.PlanProject, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	record, err := s.planProjectRepo.GetByID(ctx, planProjectID)
	if err != nil {
		return nil, err
	}

	guardCtx := planproject.ReopenContext{
		PlanProjectID: planProjectID,
		Status:        planproject.Status(record.Status),
		ActorRole:     role,
	}
	if result := planproject.CanReopen(guardCtx); !result.Allowed {
		return nil, preconditionFailed(result)
	}

	return s.transition(ctx, record, planproject.ApplyReopen(), actionReopen)
}

// transition persists a status change and returns the reloaded plan-project.
func (s *PlanServiceImpl) transition(ctx context.Context, record *secondary.PlanProjectRecord, t planproject.TransitionResult, action string) (*primary.PlanProject, error) {
	err := s.planProjectRepo.ApplyTransition(ctx, record.ID, secondary.StatusTransition{
		Status:         string(t.NewStatus),
		ActualStart:    t.ActualStart,
		ActualEnd:      t.ActualEnd,
		ClearActualEnd: t.ClearActualEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update plan-project %s: %w", record.ID, err)
	}

	s.activity.Record(ctx, action, modulePlan, "Proyecto %s: %s -> %s", record.Code, record.Status, t.NewStatus)

	updated, err := s.planProjectRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return recordToPlanProject(updated), nil
}

// AssignUser grants a role on a plan-project.
func (s *PlanServiceImpl) AssignUser(ctx context.Context, req primary.AssignUserRequest) (*primary.ProjectAssignment, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor, access.RoleSupervisor); err != nil {
		return nil, err
	}
	if !access.IsValidRole(req.Role) {
		return nil, invalid(fmt.Sprintf("unknown role %q", req.Role))
	}

	pp, err := s.planProjectRepo.GetByID(ctx, req.PlanProjectID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, invalid(fmt.Sprintf("user %s is not active", req.UserID))
	}

	exists, err := s.assignmentRepo.Exists(ctx, req.PlanProjectID, req.UserID, req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if exists {
		return nil, invalid(fmt.Sprintf("user %s already holds role %s on %s", user.Username, req.Role, pp.Code))
	}

	id, err := s.assignmentRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignment ID: %w", err)
	}
	record := &secondary.AssignmentRecord{
		ID:            id,
		PlanProjectID: req.PlanProjectID,
		UserID:        req.UserID,
		Role:          req.Role,
	}
	if err := s.assignmentRepo.Create(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("user %s already holds role %s on %s", user.Username, req.Role, pp.Code), "create assignment")
	}

	s.activity.Record(ctx, actionAssign, modulePlan, "%s como %s en %s", user.Username, req.Role, pp.Code)
	return recordToAssignment(record), nil
}

// ListAssignments lists the role grants of a plan-project.
func (s *PlanServiceImpl) ListAssignments(ctx context.Context, planProjectID string) ([]*primary.ProjectAssignment, error) {
	records, err := s.assignmentRepo.List(ctx, planProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	result := make([]*primary.ProjectAssignment, len(records))
	for i, r := range records {
		result[i] = recordToAssignment(r)
	}
	return result, nil
}

// RemoveAssignment revokes a role grant.
func (s *PlanServiceImpl) RemoveAssignment(ctx context.Context, assignmentID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor, access.RoleSupervisor); err != nil {
		return err
	}
	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, modulePlan, "Asignación %s", assignmentID)
	return nil
}

func recordToPlanProject(r *secondary.PlanProjectRecord) *primary.PlanProject {
	return &primary.PlanProject{
		ID:              r.ID,
		PlanID:          r.PlanID,
		OriginProjectID: r.OriginProjectID,
		Code:            r.Code,
		Name:            r.Name,
		Objective:       r.Objective,
		AuditType:       r.AuditType,
		Process:         r.Process,
		Status:          r.Status,
		PlannedStart:    r.PlannedStart,
		PlannedEnd:      r.PlannedEnd,
		ActualStart:     r.ActualStart,
		ActualEnd:       r.ActualEnd,
		SupervisorID:    r.SupervisorID,
		FieldAuditorID:  r.FieldAuditorID,
	}
}

func recordToAssignment(r *secondary.AssignmentRecord) *primary.ProjectAssignment {
	return &primary.ProjectAssignment{
		ID:            r.ID,
		PlanProjectID: r.PlanProjectID,
		UserID:        r.UserID,
		Role:          r.Role,
		CreatedAt:     r.CreatedAt,
	}
}
