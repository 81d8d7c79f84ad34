package primary

import "context"

// PlanService defines the primary port for annual plans and their plan-projects.
type PlanService interface {
	// CreatePlan creates an active plan.
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error)

	// GetPlan retrieves a plan with its plan-projects and counts.
	GetPlan(ctx context.Context, planID string) (*PlanDetail, error)

	// ListPlans lists plans, newest year first.
	ListPlans(ctx context.Context, filters PlanFilters) ([]*Plan, error)

	// SetPlanStatus closes or reactivates a plan.
	SetPlanStatus(ctx context.Context, planID, status string) error

	// DeletePlan deletes a plan with its plan-projects. Refused while findings exist.
	DeletePlan(ctx context.Context, planID string) error

	// CopyProjectsToPlan deep-copies universe projects into a plan.
	// The batch is all-or-nothing; projects already in the plan are skipped.
	CopyProjectsToPlan(ctx context.Context, req CopyProjectsRequest) (*CopyProjectsResponse, error)

	// ListPlanProjects lists plan-projects with optional filters.
	ListPlanProjects(ctx context.Context, filters PlanProjectFilters) ([]*PlanProject, error)

	// GetPlanProject retrieves a plan-project with its tree and finding counts.
	GetPlanProject(ctx context.Context, planProjectID string) (*PlanProjectDetail, error)

	// UpdateSchedule sets planned dates, supervisor and field auditor.
	UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) error

	// StartProject moves a plan-project to En Proceso.
	StartProject(ctx context.Context, planProjectID string) (*PlanProject, error)

	// CompleteProject moves a plan-project to Completada.
	CompleteProject(ctx context.Context, planProjectID string) (*PlanProject, error)

	// ReopenProject moves a completed plan-project back to En Proceso.
	ReopenProject(ctx context.Context, planProjectID string) (*PlanProject, error)

	// AssignUser grants a user a role on a plan-project.
	AssignUser(ctx context.Context, req AssignUserRequest) (*ProjectAssignment, error)

	// ListAssignments lists the role grants of a plan-project.
	ListAssignments(ctx context.Context, planProjectID string) ([]*ProjectAssignment, error)

	// RemoveAssignment revokes a role grant.
	RemoveAssignment(ctx context.Context, assignmentID string) error
}

// CreatePlanRequest contains parameters for creating a plan.
type CreatePlanRequest struct {
	Code      string
	Name      string
	Objective string
	Year      int
}

// PlanFilters contains filter options for listing plans.
type PlanFilters struct {
	Year   int
	Status string
}

// CopyProjectsRequest contains parameters for copying universe projects into a plan.
type CopyProjectsRequest struct {
	PlanID     string
	ProjectIDs []string
}

// CopyProjectsResponse reports the outcome of a copy.
type CopyProjectsResponse struct {
	PlanProjectIDs []string `json:"plan_project_ids"`
	Skipped        []string `json:"skipped"`
	Sections       int      `json:"sections"`
	Subsections    int      `json:"subsections"`
}

// PlanProjectFilters contains filter options for listing plan-projects.
type PlanProjectFilters struct {
	PlanID         string
	Status         string
	SupervisorID   string
	FieldAuditorID string
}

// UpdateScheduleRequest contains the planning fields of a plan-project.
type UpdateScheduleRequest struct {
	PlanProjectID  string
	PlannedStart   string
	PlannedEnd     string
	SupervisorID   string
	FieldAuditorID string
}

// AssignUserRequest contains parameters for granting a role on a plan-project.
type AssignUserRequest struct {
	PlanProjectID string
	UserID        string
	Role          string
}

// Plan is an annual audit plan.
type Plan struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Objective    string `json:"objective,omitempty"`
	Year         int    `json:"year"`
	Status       string `json:"status"`
	CreatedBy    string `json:"created_by,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	ProjectCount int    `json:"project_count"`
}

// PlanDetail is a plan with its plan-projects and summary counts.
type PlanDetail struct {
	Plan          *Plan          `json:"plan"`
	Projects      []*PlanProject `json:"projects"`
	ProjectStatus map[string]int `json:"project_status"`
	FindingCount  int            `json:"finding_count"`
}

// PlanProject is a universe project copied into a plan.
type PlanProject struct {
	ID              string `json:"id"`
	PlanID          string `json:"plan_id"`
	OriginProjectID string `json:"origin_project_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Objective       string `json:"objective,omitempty"`
	AuditType       string `json:"audit_type,omitempty"`
	Process         string `json:"process,omitempty"`
	Status          string `json:"status"`
	PlannedStart    string `json:"planned_start,omitempty"`
	PlannedEnd      string `json:"planned_end,omitempty"`
	ActualStart     string `json:"actual_start,omitempty"`
	ActualEnd       string `json:"actual_end,omitempty"`
	SupervisorID    string `json:"supervisor_id,omitempty"`
	FieldAuditorID  string `json:"field_auditor_id,omitempty"`
}

// PlanSection is a copied section with its subsections.
type PlanSection struct {
	ID              string            `json:"id"`
	OriginSectionID string            `json:"origin_section_id,omitempty"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Order           int               `json:"order"`
	Subsections     []*PlanSubsection `json:"subsections"`
}

// PlanSubsection is a copied subsection.
type PlanSubsection struct {
	ID                 string `json:"id"`
	OriginSubsectionID string `json:"origin_subsection_id,omitempty"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Order              int    `json:"order"`
}

// PlanProjectDetail is a plan-project with its tree and finding counts.
type PlanProjectDetail struct {
	Project          *PlanProject   `json:"project"`
	Sections         []*PlanSection `json:"sections"`
	TotalFindings    int            `json:"total_findings"`
	AcceptedFindings int            `json:"accepted_findings"`
}

// ProjectAssignment is a role grant on a plan-project.
type ProjectAssignment struct {
	ID            string `json:"id"`
	PlanProjectID string `json:"plan_project_id"`
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at,omitempty"`
}
