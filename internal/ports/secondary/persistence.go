// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// UserRepository defines the secondary port for user persistence.
// Users are never deleted; SetActive is the only way to retire one.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *UserRecord) error

	// GetByID retrieves a user by its ID.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)

	// List retrieves users matching the given filters, ordered by full name.
	List(ctx context.Context, filters UserFilters) ([]*UserRecord, error)

	// UpdateRole changes a user's global role.
	UpdateRole(ctx context.Context, id, role string) error

	// UpdateProfile changes a user's full name and email.
	UpdateProfile(ctx context.Context, id, fullName, email string) error

	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetActive activates or deactivates a user.
	SetActive(ctx context.Context, id string, active bool) error

	// UsernameExists reports whether a username is taken.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// GetNextID returns the next available user ID.
	GetNextID(ctx context.Context) (string, error)
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Role         string
	IsActive     bool
	CreatedAt    string
}

// UserFilters contains filter options for querying users.
type UserFilters struct {
	Role            string
	IncludeInactive bool
}

// CatalogRepository defines the secondary port for catalog values.
type CatalogRepository interface {
	// Create persists a new catalog entry.
	Create(ctx context.Context, entry *CatalogRecord) error

	// GetByID retrieves a catalog entry by its ID.
	GetByID(ctx context.Context, id string) (*CatalogRecord, error)

	// List retrieves entries ordered by type, display order and value.
	List(ctx context.Context, filters CatalogFilters) ([]*CatalogRecord, error)

	// SetActive activates or deactivates an entry.
	SetActive(ctx context.Context, id string, active bool) error

	// ValueExists reports whether a value already exists for a type.
	ValueExists(ctx context.Context, catalogType, value string) (bool, error)

	// NextDisplayOrder returns one past the highest display order of a type.
	NextDisplayOrder(ctx context.Context, catalogType string) (int, error)

	// GetNextID returns the next available catalog entry ID.
	GetNextID(ctx context.Context) (string, error)
}

// CatalogRecord represents a catalog entry as stored in persistence.
type CatalogRecord struct {
	ID           string
	Type         string
	Value        string
	Description  string
	IsActive     bool
	DisplayOrder int
}

// CatalogFilters contains filter options for querying catalog entries.
type CatalogFilters struct {
	Type            string
	IncludeInactive bool
}

// WeightRepository defines the secondary port for criticality weights.
type WeightRepository interface {
	// List returns all weights ordered by factor.
	List(ctx context.Context) ([]*WeightRecord, error)

	// UpdateAll replaces the weight of every given factor in one transaction.
	UpdateAll(ctx context.Context, weights map[string]float64) error
}

// WeightRecord represents a weight row.
type WeightRecord struct {
	Factor      string
	Label       string
	Weight      float64
	Description string
	UpdatedAt   string
}

// UniverseRepository defines the secondary port for the auditable universe.
type UniverseRepository interface {
	// CreateProject persists a new universe project.
	CreateProject(ctx context.Context, project *UniverseProjectRecord) error

	// CreateProjectTree persists a project with its sections and subsections in one transaction.
	// IDs of the project, sections and subsections are assigned by the repository.
	CreateProjectTree(ctx context.Context, tree *UniverseTreeRecord) error

	// GetProject retrieves a project by its ID.
	GetProject(ctx context.Context, id string) (*UniverseProjectRecord, error)

	// ListProjects retrieves projects matching the given filters, ordered by code.
	ListProjects(ctx context.Context, filters UniverseFilters) ([]*UniverseProjectRecord, error)

	// UpdateProject overwrites the editable fields of a project.
	UpdateProject(ctx context.Context, project *UniverseProjectRecord) error

	// DeleteProject removes a project; sections, subsections, attachments and
	// its evaluation cascade.
	DeleteProject(ctx context.Context, id string) error

	// CodeExists reports whether a project code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// CreateSection persists a new section.
	CreateSection(ctx context.Context, section *UniverseSectionRecord) error

	// GetSection retrieves a section by its ID.
	GetSection(ctx context.Context, id string) (*UniverseSectionRecord, error)

	// ListSections returns the sections of a project ordered by sort order.
	ListSections(ctx context.Context, projectID string) ([]*UniverseSectionRecord, error)

	// DeleteSection removes a section and its subsections.
	DeleteSection(ctx context.Context, id string) error

	// CreateSubsection persists a new subsection.
	CreateSubsection(ctx context.Context, subsection *UniverseSubsectionRecord) error

	// ListSubsections returns every subsection of a project ordered by section then sort order.
	ListSubsections(ctx context.Context, projectID string) ([]*UniverseSubsectionRecord, error)

	// DeleteSubsection removes a subsection.
	DeleteSubsection(ctx context.Context, id string) error

	// GetNextProjectID returns the next available project ID.
	GetNextProjectID(ctx context.Context) (string, error)

	// GetNextSectionID returns the next available section ID.
	GetNextSectionID(ctx context.Context) (string, error)

	// GetNextSubsectionID returns the next available subsection ID.
	GetNextSubsectionID(ctx context.Context) (string, error)
}

// UniverseProjectRecord represents a universe project as stored in persistence.
type UniverseProjectRecord struct {
	ID           string
	Code         string
	Name         string
	Objective    string
	AuditType    string
	Process      string
	PlannedStart string
	PlannedEnd   string
	CreatedBy    string
	CreatedAt    string
	UpdatedAt    string
}

// UniverseSectionRecord represents a universe section.
type UniverseSectionRecord struct {
	ID          string
	ProjectID   string
	Code        string
	Name        string
	Description string
	Order       int
}

// UniverseSubsectionRecord represents a universe subsection.
type UniverseSubsectionRecord struct {
	ID          string
	SectionID   string
	Code        string
	Name        string
	Description string
	Order       int
}

// UniverseTreeRecord is a project with its nested sections for bulk insertion.
type UniverseTreeRecord struct {
	Project  UniverseProjectRecord
	Sections []UniverseSectionTree
}

// UniverseSectionTree is a section with its subsections.
type UniverseSectionTree struct {
	Section     UniverseSectionRecord
	Subsections []UniverseSubsectionRecord
}

// UniverseFilters contains filter options for querying universe projects.
type UniverseFilters struct {
	AuditType string
	Process   string
	Search    string
}

// AttachmentRepository defines the secondary port for attachment blobs.
type AttachmentRepository interface {
	// Create persists a new attachment.
	Create(ctx context.Context, attachment *AttachmentRecord) error

	// Get retrieves an attachment including its data.
	Get(ctx context.Context, id string) (*AttachmentRecord, error)

	// List returns attachment metadata (without data) for a parent.
	List(ctx context.Context, kind, parentID string) ([]*AttachmentRecord, error)

	// Delete removes an attachment.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available attachment ID.
	GetNextID(ctx context.Context) (string, error)
}

// Attachment kinds. Project attachments belong to universe projects; the
// other two belong to findings.
const (
	AttachmentKindProject  = "project"
	AttachmentKindFinding  = "finding"
	AttachmentKindResponse = "response"
)

// AttachmentRecord represents an attachment as stored in persistence.
type AttachmentRecord struct {
	ID          string
	Kind        string
	ParentID    string
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	UploadedBy  string
	UploadedAt  string
}

// PlanRepository defines the secondary port for annual plans.
type PlanRepository interface {
	// Create persists a new plan.
	Create(ctx context.Context, plan *PlanRecord) error

	// GetByID retrieves a plan by its ID.
	GetByID(ctx context.Context, id string) (*PlanRecord, error)

	// List retrieves plans matching the given filters, newest year first.
	List(ctx context.Context, filters PlanFilters) ([]*PlanRecord, error)

	// UpdateStatus changes a plan's status.
	UpdateStatus(ctx context.Context, id, status string) error

	// Delete removes a plan; plan-projects and their trees cascade.
	Delete(ctx context.Context, id string) error

	// CodeExists reports whether a plan code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// GetNextID returns the next available plan ID.
	GetNextID(ctx context.Context) (string, error)

	// ListOriginIDs returns the universe project IDs already copied into a plan.
	ListOriginIDs(ctx context.Context, planID string) ([]string, error)

	// InsertProjectTrees inserts every plan-project with its sections and
	// subsections in a single transaction. Any failure rolls back the whole
	// batch. IDs are assigned by the repository; the created plan-project IDs
	// are returned in input order.
	InsertProjectTrees(ctx context.Context, trees []PlanProjectTree) ([]string, error)
}

// PlanRecord represents a plan as stored in persistence.
type PlanRecord struct {
	ID           string
	Code         string
	Name         string
	Objective    string
	Year         int
	Status       string
	CreatedBy    string
	CreatedAt    string
	ProjectCount int
}

// PlanFilters contains filter options for querying plans.
type PlanFilters struct {
	Year   int
	Status string
}

// PlanProjectTree is a plan-project with its nested sections for bulk insertion.
type PlanProjectTree struct {
	Project  PlanProjectRecord
	Sections []PlanSectionTree
}

// PlanSectionTree is a plan section with its subsections.
type PlanSectionTree struct {
	Section     PlanSectionRecord
	Subsections []PlanSubsectionRecord
}

// PlanProjectRepository defines the secondary port for plan-projects and their trees.
type PlanProjectRepository interface {
	// GetByID retrieves a plan-project by its ID.
	GetByID(ctx context.Context, id string) (*PlanProjectRecord, error)

	// List retrieves plan-projects matching the given filters, ordered by code.
	List(ctx context.Context, filters PlanProjectFilters) ([]*PlanProjectRecord, error)

	// UpdateSchedule overwrites planned dates and assignees.
	UpdateSchedule(ctx context.Context, id string, schedule ScheduleUpdate) error

	// ApplyTransition stores a status change with its actual date effects.
	ApplyTransition(ctx context.Context, id string, transition StatusTransition) error

	// ListSections returns the sections of a plan-project ordered by sort order.
	ListSections(ctx context.Context, planProjectID string) ([]*PlanSectionRecord, error)

	// ListSubsections returns every subsection of a plan-project ordered by section then sort order.
	ListSubsections(ctx context.Context, planProjectID string) ([]*PlanSubsectionRecord, error)

	// GetSubsection retrieves a plan subsection together with its owning plan-project ID.
	GetSubsection(ctx context.Context, id string) (*PlanSubsectionRecord, error)

	// LatestForOrigin returns the plan-project copied from a universe project in
	// the most recent plan year, or nil if it was never planned.
	LatestForOrigin(ctx context.Context, originProjectID string) (*PlanProjectRecord, error)
}

// PlanProjectRecord represents a plan-project as stored in persistence.
type PlanProjectRecord struct {
	ID              string
	PlanID          string
	OriginProjectID string
	Code            string
	Name            string
	Objective       string
	AuditType       string
	Process         string
	Status          string
	PlannedStart    string
	PlannedEnd      string
	ActualStart     string
	ActualEnd       string
	SupervisorID    string
	FieldAuditorID  string
	CreatedAt       string
	UpdatedAt       string
}

// PlanSectionRecord represents a copied section.
type PlanSectionRecord struct {
	ID              string
	PlanProjectID   string
	OriginSectionID string
	Code            string
	Name            string
	Description     string
	Order           int
}

// PlanSubsectionRecord represents a copied subsection.
// PlanProjectID is resolved through the owning section on reads.
type PlanSubsectionRecord struct {
	ID                 string
	PlanSectionID      string
	PlanProjectID      string
	OriginSubsectionID string
	Code               string
	Name               string
	Description        string
	Order              int
}

// PlanProjectFilters contains filter options for querying plan-projects.
type PlanProjectFilters struct {
	PlanID         string
	Status         string
	SupervisorID   string
	FieldAuditorID string
}

// ScheduleUpdate holds the planning fields of a plan-project.
type ScheduleUpdate struct {
	PlannedStart   string
	PlannedEnd     string
	SupervisorID   string
	FieldAuditorID string
}

// StatusTransition holds the persisted effects of a plan-project transition.
// Empty actual dates are left unchanged unless ClearActualEnd is set.
type StatusTransition struct {
	Status         string
	ActualStart    string
	ActualEnd      string
	ClearActualEnd bool
}

// AssignmentRepository defines the secondary port for per-project role grants.
type AssignmentRepository interface {
	// Create persists a new assignment.
	Create(ctx context.Context, assignment *AssignmentRecord) error

	// List returns the assignments of a plan-project.
	List(ctx context.Context, planProjectID string) ([]*AssignmentRecord, error)

	// Exists reports whether the user already holds the role on the plan-project.
	Exists(ctx context.Context, planProjectID, userID, role string) (bool, error)

	// Delete removes an assignment.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available assignment ID.
	GetNextID(ctx context.Context) (string, error)
}

// AssignmentRecord represents a role grant on a plan-project.
type AssignmentRecord struct {
	ID            string
	PlanProjectID string
	UserID        string
	Role          string
	CreatedAt     string
}

// FindingRepository defines the secondary port for findings.
type FindingRepository interface {
	// Create persists a new finding.
	Create(ctx context.Context, finding *FindingRecord) error

	// GetByID retrieves a finding by its ID.
	GetByID(ctx context.Context, id string) (*FindingRecord, error)

	// List retrieves findings matching the given filters, ordered by code.
	List(ctx context.Context, filters FindingFilters) ([]*FindingRecord, error)

	// UpdateContent overwrites the descriptive and scoring fields of a finding.
	UpdateContent(ctx context.Context, finding *FindingRecord) error

	// UpdateAssignment stores responsible user, dates and status.
	UpdateAssignment(ctx context.Context, id string, update AssignmentUpdate) error

	// UpdateResponse stores the auditee response and its date with the new status.
	UpdateResponse(ctx context.Context, id, response, responseDate, status string) error

	// UpdateStatus changes only the status of a finding.
	UpdateStatus(ctx context.Context, id, status string) error

	// Delete removes a finding; its attachments cascade.
	Delete(ctx context.Context, id string) error

	// CodeExists reports whether a finding code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// GetNextID returns the next available finding ID.
	GetNextID(ctx context.Context) (string, error)

	// MarkOverdue moves every Assigned or Unassigned finding whose commitment
	// date is set and earlier than today to Overdue, in a single statement.
	MarkOverdue(ctx context.Context, today string) (int64, error)

	// CountForPlanProject returns total and accepted finding counts.
	CountForPlanProject(ctx context.Context, planProjectID string) (total, accepted int, err error)

	// CountForPlan returns the number of findings in a plan.
	CountForPlan(ctx context.Context, planID string) (int, error)

	// CountBy groups finding counts by a column: status, risk_level or area.
	CountBy(ctx context.Context, column string, filters FindingFilters) (map[string]int, error)
}

// FindingRecord represents a finding as stored in persistence.
type FindingRecord struct {
	ID               string
	Code             string
	PlanID           string
	PlanProjectID    string
	PlanSubsectionID string
	Condition        string
	Criterion        string
	Cause            string
	Effect           string
	Recommendation   string
	Probability      int
	Impact           int
	RiskLevel        string
	Area             string
	ResponsibleID    string
	Status           string
	AssignmentDate   string
	CommitmentDate   string
	ResponseDate     string
	Response         string
	CreatedBy        string
	CreatedAt        string
	UpdatedAt        string
}

// FindingFilters contains filter options for querying findings.
type FindingFilters struct {
	PlanID        string
	PlanProjectID string
	Status        string
	Statuses      []string
	RiskLevel     string
	ResponsibleID string
	Search        string
}

// AssignmentUpdate holds the fields written by assign and reassign.
// An empty AssignmentDate leaves the stored date unchanged.
type AssignmentUpdate struct {
	ResponsibleID  string
	CommitmentDate string
	AssignmentDate string
	Status         string
}

// EvaluationRepository defines the secondary port for universe evaluations.
type EvaluationRepository interface {
	// Get retrieves the evaluation of a universe project, or nil if none is stored.
	Get(ctx context.Context, projectID string) (*EvaluationRecord, error)

	// List returns every stored evaluation.
	List(ctx context.Context) ([]*EvaluationRecord, error)

	// Upsert inserts or replaces the evaluation of a project.
	Upsert(ctx context.Context, evaluation *EvaluationRecord) error

	// UpdateCriticality stores a recomputed criticality score.
	UpdateCriticality(ctx context.Context, projectID string, criticality float64) error
}

// EvaluationRecord represents a universe evaluation row.
type EvaluationRecord struct {
	ProjectID         string
	RiskLevel         int
	MonthsSinceAudit  int
	FindingsLastAudit int
	FindingsResolved  int
	LastAuditStatus   string
	LastAuditDate     string
	RotationCycle     int
	Criticality       float64
	EvaluatedAt       string
}

// AuditLogRepository defines the secondary port for the business audit trail.
type AuditLogRepository interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *AuditLogRecord) error

	// List retrieves entries matching the given filters, newest first.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)

	// GetNextID returns the next available entry ID.
	GetNextID(ctx context.Context) (string, error)
}

// AuditLogRecord represents an audit log entry.
type AuditLogRecord struct {
	ID        string
	UserID    string
	Username  string
	Action    string
	Module    string
	Detail    string
	CreatedAt string
}

// AuditLogFilters contains filter options for querying the audit log.
type AuditLogFilters struct {
	UserID string
	Module string
	Limit  int
}
