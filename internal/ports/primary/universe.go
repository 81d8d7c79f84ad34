package primary

import "context"

// UniverseService defines the primary port for the auditable universe.
type UniverseService interface {
	// CreateProject creates a universe project without sections.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*UniverseProject, error)

	// UpdateProject overwrites a project's editable fields.
	UpdateProject(ctx context.Context, req UpdateProjectRequest) error

	// GetProject retrieves a project with its section tree and attachments.
	GetProject(ctx context.Context, projectID string) (*UniverseProjectDetail, error)

	// ListProjects lists projects with optional filters.
	ListProjects(ctx context.Context, filters UniverseFilters) ([]*UniverseProject, error)

	// DeleteProject deletes a project with its tree, attachments and evaluation.
	DeleteProject(ctx context.Context, projectID string) error

	// AddSection adds a section to a project.
	AddSection(ctx context.Context, req AddNodeRequest) (*UniverseSection, error)

	// DeleteSection deletes a section and its subsections.
	DeleteSection(ctx context.Context, sectionID string) error

	// AddSubsection adds a subsection to a section.
	AddSubsection(ctx context.Context, req AddNodeRequest) (*UniverseSubsection, error)

	// DeleteSubsection deletes a subsection.
	DeleteSubsection(ctx context.Context, subsectionID string) error

	// AddAttachment uploads a working paper to a project.
	AddAttachment(ctx context.Context, req AddAttachmentRequest) (*Attachment, error)

	// ListAttachments lists a project's attachments without their data.
	ListAttachments(ctx context.Context, projectID string) ([]*Attachment, error)

	// GetAttachment retrieves an attachment with its data.
	GetAttachment(ctx context.Context, attachmentID string) (*Attachment, error)

	// DeleteAttachment deletes an attachment.
	DeleteAttachment(ctx context.Context, attachmentID string) error

	// ImportProject creates a project and its full tree from a YAML template.
	ImportProject(ctx context.Context, template []byte) (*UniverseProjectDetail, error)
}

// CreateProjectRequest contains parameters for creating a universe project.
type CreateProjectRequest struct {
	Code         string
	Name         string
	Objective    string
	AuditType    string
	Process      string
	PlannedStart string
	PlannedEnd   string
}

// UpdateProjectRequest contains parameters for updating a universe project.
type UpdateProjectRequest struct {
	ProjectID string
	CreateProjectRequest
}

// AddNodeRequest contains parameters for adding a section or subsection.
// ParentID is the project ID for sections and the section ID for subsections.
type AddNodeRequest struct {
	ParentID    string
	Code        string
	Name        string
	Description string
	Order       int
}

// UniverseFilters contains filter options for listing universe projects.
type UniverseFilters struct {
	AuditType string
	Process   string
	Search    string
}

// UniverseProject is an auditable subject.
type UniverseProject struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Objective    string `json:"objective,omitempty"`
	AuditType    string `json:"audit_type,omitempty"`
	Process      string `json:"process,omitempty"`
	PlannedStart string `json:"planned_start,omitempty"`
	PlannedEnd   string `json:"planned_end,omitempty"`
	CreatedBy    string `json:"created_by,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// UniverseSection is a section with its subsections.
type UniverseSection struct {
	ID          string                `json:"id"`
	ProjectID   string                `json:"project_id"`
	Code        string                `json:"code"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Order       int                   `json:"order"`
	Subsections []*UniverseSubsection `json:"subsections"`
}

// UniverseSubsection is a leaf of a project's tree.
type UniverseSubsection struct {
	ID          string `json:"id"`
	SectionID   string `json:"section_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// UniverseProjectDetail is a project with its tree and attachments.
type UniverseProjectDetail struct {
	Project     *UniverseProject   `json:"project"`
	Sections    []*UniverseSection `json:"sections"`
	Attachments []*Attachment      `json:"attachments"`
}
