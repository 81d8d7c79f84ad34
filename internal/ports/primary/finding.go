package primary

import "context"

// FindingService defines the primary port for findings and their lifecycle.
// Every read that depends on status runs the overdue sweep first.
type FindingService interface {
	// SweepOverdue marks stale assigned and unassigned findings as overdue.
	SweepOverdue(ctx context.Context) (int64, error)

	// CreateFinding raises a finding under a plan subsection.
	CreateFinding(ctx context.Context, req CreateFindingRequest) (*Finding, error)

	// EditFinding updates a finding's content and recomputes its risk level.
	EditFinding(ctx context.Context, req EditFindingRequest) error

	// GetFinding retrieves a finding by ID.
	GetFinding(ctx context.Context, findingID string) (*Finding, error)

	// ListFindings lists findings with optional filters.
	ListFindings(ctx context.Context, filters FindingFilters) ([]*Finding, error)

	// MyFindings lists the assigned and overdue findings of the acting user.
	MyFindings(ctx context.Context) ([]*Finding, error)

	// Assign sets the responsible user and commitment date of an unassigned finding.
	Assign(ctx context.Context, req AssignFindingRequest) error

	// Reassign changes the responsible user or commitment date.
	Reassign(ctx context.Context, req AssignFindingRequest) error

	// Respond records the responsible user's answer, with optional evidence.
	Respond(ctx context.Context, req RespondRequest) error

	// Accept closes a finding whose response was accepted.
	Accept(ctx context.Context, findingID string) error

	// Reject returns a finding to Asignado for another response.
	Reject(ctx context.Context, findingID string) error

	// DeleteFinding hard-deletes a finding with its attachments.
	DeleteFinding(ctx context.Context, findingID string) error

	// AddAttachment uploads evidence to a finding.
	AddAttachment(ctx context.Context, req AddAttachmentRequest) (*Attachment, error)

	// ListAttachments lists a finding's attachments without their data.
	ListAttachments(ctx context.Context, findingID string) ([]*Attachment, error)

	// StatusCounts counts findings by status.
	StatusCounts(ctx context.Context, filters FindingFilters) (map[string]int, error)
}

// CreateFindingRequest contains parameters for raising a finding.
type CreateFindingRequest struct {
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
	Area             string
}

// EditFindingRequest contains the editable content of a finding.
type EditFindingRequest struct {
	FindingID      string
	Condition      string
	Criterion      string
	Cause          string
	Effect         string
	Recommendation string
	Probability    int
	Impact         int
	Area           string
}

// AssignFindingRequest contains parameters for assign and reassign.
type AssignFindingRequest struct {
	FindingID      string
	ResponsibleID  string
	CommitmentDate string
}

// RespondRequest contains the responsible user's answer.
type RespondRequest struct {
	FindingID string
	Response  string
	Evidence  *AddAttachmentRequest
}

// FindingFilters contains filter options for listing findings.
type FindingFilters struct {
	PlanID        string
	PlanProjectID string
	Status        string
	RiskLevel     string
	ResponsibleID string
	Search        string
}

// Finding is an audit exception tracked through its response workflow.
type Finding struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	PlanID           string `json:"plan_id"`
	PlanProjectID    string `json:"plan_project_id"`
	PlanSubsectionID string `json:"plan_subsection_id"`
	Condition        string `json:"condition"`
	Criterion        string `json:"criterion,omitempty"`
	Cause            string `json:"cause,omitempty"`
	Effect           string `json:"effect,omitempty"`
	Recommendation   string `json:"recommendation,omitempty"`
	Probability      int    `json:"probability"`
	Impact           int    `json:"impact"`
	RiskLevel        string `json:"risk_level"`
	Area             string `json:"area,omitempty"`
	ResponsibleID    string `json:"responsible_id,omitempty"`
	Status           string `json:"status"`
	AssignmentDate   string `json:"assignment_date,omitempty"`
	CommitmentDate   string `json:"commitment_date,omitempty"`
	ResponseDate     string `json:"response_date,omitempty"`
	Response         string `json:"response,omitempty"`
	CreatedBy        string `json:"created_by,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}
