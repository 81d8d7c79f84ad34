package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/catalog"
	"github.com/example/auditplus/internal/core/universe"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// UniverseServiceImpl implements the UniverseService interface.
type UniverseServiceImpl struct {
	universeRepo   secondary.UniverseRepository
	catalogRepo    secondary.CatalogRepository
	attachmentRepo secondary.AttachmentRepository
	activity       *Activity
}

// NewUniverseService creates a new UniverseService with injected dependencies.
func NewUniverseService(
	universeRepo secondary.UniverseRepository,
	catalogRepo secondary.CatalogRepository,
	attachmentRepo secondary.AttachmentRepository,
	activity *Activity,
) *UniverseServiceImpl {
	return &UniverseServiceImpl{
		universeRepo:   universeRepo,
		catalogRepo:    catalogRepo,
		attachmentRepo: attachmentRepo,
		activity:       activity,
	}
}

// CreateProject adds a project to the auditable universe.
func (s *UniverseServiceImpl) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.UniverseProject, error) {
	record, err := s.prepareProject(ctx, req)
	if err != nil {
		return nil, err
	}

	id, err := s.universeRepo.GetNextProjectID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}
	record.ID = id

	if err := s.universeRepo.CreateProject(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("project code %s already exists", record.Code), "create project")
	}

	s.activity.Record(ctx, actionCreate, moduleUniverse, "Proyecto %s - %s", record.Code, record.Name)
	return recordToUniverseProject(record), nil
}

// prepareProject runs the creation guards and catalog checks.
func (s *UniverseServiceImpl) prepareProject(ctx context.Context, req primary.CreateProjectRequest) (*secondary.UniverseProjectRecord, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	exists := false
	if code != "" {
		var err error
		exists, err = s.universeRepo.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check project code: %w", err)
		}
	}

	guardCtx := universe.CreateProjectContext{
		ActorRole:  role,
		Code:       code,
		Name:       req.Name,
		CodeExists: exists,
	}
	if result := universe.CanCreateProject(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	record := &secondary.UniverseProjectRecord{
		Code:      code,
		CreatedBy: ctxutil.ActorID(ctx),
	}
	if err := s.applyProjectFields(ctx, record, req); err != nil {
		return nil, err
	}
	return record, nil
}

// applyProjectFields validates and copies the editable fields onto record.
func (s *UniverseServiceImpl) applyProjectFields(ctx context.Context, record *secondary.UniverseProjectRecord, req primary.CreateProjectRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("missing required fields: name")
	}
	if req.PlannedStart != "" && req.PlannedEnd != "" && req.PlannedEnd < req.PlannedStart {
		return invalid(fmt.Sprintf("planned end date %s is before planned start date %s", req.PlannedEnd, req.PlannedStart))
	}
	if err := s.checkCatalogValue(ctx, catalog.TypeAuditType, req.AuditType); err != nil {
		return err
	}
	if err := s.checkCatalogValue(ctx, catalog.TypeProcess, req.Process); err != nil {
		return err
	}

	record.Name = strings.TrimSpace(req.Name)
	record.Objective = strings.TrimSpace(req.Objective)
	record.AuditType = req.AuditType
	record.Process = req.Process
	record.PlannedStart = req.PlannedStart
	record.PlannedEnd = req.PlannedEnd
	return nil
}

// checkCatalogValue rejects values missing from a catalog. Empty values are allowed.
func (s *UniverseServiceImpl) checkCatalogValue(ctx context.Context, t catalog.Type, value string) error {
	if value == "" {
		return nil
	}
	ok, err := s.catalogRepo.ValueExists(ctx, string(t), value)
	if err != nil {
		return fmt.Errorf("failed to check catalog value: %w", err)
	}
	if !ok {
		return invalid(fmt.Sprintf("%s %q is not in the catalog", t, value))
	}
	return nil
}

// UpdateProject overwrites the editable fields of a project. The code is immutable.
func (s *UniverseServiceImpl) UpdateProject(ctx context.Context, req primary.UpdateProjectRequest) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}

	record, err := s.universeRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		return err
	}
	if err := s.applyProjectFields(ctx, record, req.CreateProjectRequest); err != nil {
		return err
	}
	if err := s.universeRepo.UpdateProject(ctx, record); err != nil {
		return err
	}

	s.activity.Record(ctx, actionEdit, moduleUniverse, "Proyecto %s - %s", record.Code, record.Name)
	return nil
}

// GetProject retrieves a project with its tree and attachment metadata.
func (s *UniverseServiceImpl) GetProject(ctx context.Context, projectID string) (*primary.UniverseProjectDetail, error) {
	record, err := s.universeRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sections, err := s.loadTree(ctx, projectID)
	if err != nil {
		return nil, err
	}

	attachments, err := listAttachments(ctx, s.attachmentRepo, secondary.AttachmentKindProject, projectID)
	if err != nil {
		return nil, err
	}

	return &primary.UniverseProjectDetail{
		Project:     recordToUniverseProject(record),
		Sections:    sections,
		Attachments: attachments,
	}, nil
}

// loadTree reads sections and subsections and nests them.
func (s *UniverseServiceImpl) loadTree(ctx context.Context, projectID string) ([]*primary.UniverseSection, error) {
	sectionRecords, err := s.universeRepo.ListSections(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	subRecords, err := s.universeRepo.ListSubsections(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subsections: %w", err)
	}

	sections := make([]*primary.UniverseSection, len(sectionRecords))
	byID := make(map[string]*primary.UniverseSection, len(sectionRecords))
	for i, r := range sectionRecords {
		sections[i] = &primary.UniverseSection{
			ID:          r.ID,
			ProjectID:   r.ProjectID,
			Code:        r.Code,
			Name:        r.Name,
			Description: r.Description,
			Order:       r.Order,
			Subsections: []*primary.UniverseSubsection{},
		}
		byID[r.ID] = sections[i]
	}
	for _, r := range subRecords {
		sec, ok := byID[r.SectionID]
		if !ok {
			continue
		}
		sec.Subsections = append(sec.Subsections, &primary.UniverseSubsection{
			ID:          r.ID,
			SectionID:   r.SectionID,
			Code:        r.Code,
			Name:        r.Name,
			Description: r.Description,
			Order:       r.Order,
		})
	}
	return sections, nil
}

// ListProjects lists universe projects with optional filters.
func (s *UniverseServiceImpl) ListProjects(ctx context.Context, filters primary.UniverseFilters) ([]*primary.UniverseProject, error) {
	records, err := s.universeRepo.ListProjects(ctx, secondary.UniverseFilters{
		AuditType: filters.AuditType,
		Process:   filters.Process,
		Search:    filters.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*primary.UniverseProject, len(records))
	for i, r := range records {
		projects[i] = recordToUniverseProject(r)
	}
	return projects, nil
}

// DeleteProject removes a project. Copies already made into plans are independent and survive.
func (s *UniverseServiceImpl) DeleteProject(ctx context.Context, projectID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}

	record, err := s.universeRepo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.universeRepo.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	s.activity.Record(ctx, actionDelete, moduleUniverse, "Proyecto %s - %s", record.Code, record.Name)
	return nil
}

// AddSection appends a section to a project.
func (s *UniverseServiceImpl) AddSection(ctx context.Context, req primary.AddNodeRequest) (*primary.UniverseSection, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	project, err := s.universeRepo.GetProject(ctx, req.ParentID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	guardCtx := universe.NodeContext{
		ActorRole:    role,
		ParentID:     req.ParentID,
		ParentExists: project != nil,
		Code:         req.Code,
		Name:         req.Name,
	}
	if result := universe.CanAddNode(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	order := req.Order
	if order <= 0 {
		existing, err := s.universeRepo.ListSections(ctx, req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list sections: %w", err)
		}
		order = len(existing) + 1
	}

	id, err := s.universeRepo.GetNextSectionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate section ID: %w", err)
	}

	record := &secondary.UniverseSectionRecord{
		ID:          id,
		ProjectID:   req.ParentID,
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Order:       order,
	}
	if err := s.universeRepo.CreateSection(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.activity.Record(ctx, actionCreate, moduleUniverse, "Sección %s en proyecto %s", record.Code, project.Code)
	return &primary.UniverseSection{
		ID:          record.ID,
		ProjectID:   record.ProjectID,
		Code:        record.Code,
		Name:        record.Name,
		Description: record.Description,
		Order:       record.Order,
		Subsections: []*primary.UniverseSubsection{},
	}, nil
}

// DeleteSection removes a section with its subsections.
func (s *UniverseServiceImpl) DeleteSection(ctx context.Context, sectionID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}
	if err := s.universeRepo.DeleteSection(ctx, sectionID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, moduleUniverse, "Sección %s", sectionID)
	return nil
}

// AddSubsection appends a subsection to a section.
func (s *UniverseServiceImpl) AddSubsection(ctx context.Context, req primary.AddNodeRequest) (*primary.UniverseSubsection, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return nil, err
	}

	section, err := s.universeRepo.GetSection(ctx, req.ParentID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	guardCtx := universe.NodeContext{
		ActorRole:    role,
		ParentID:     req.ParentID,
		ParentExists: section != nil,
		Code:         req.Code,
		Name:         req.Name,
	}
	if result := universe.CanAddNode(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	order := req.Order
	if order <= 0 {
		siblings, err := s.universeRepo.ListSubsections(ctx, section.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to list subsections: %w", err)
		}
		order = 1
		for _, sub := range siblings {
			if sub.SectionID == section.ID {
				order++
			}
		}
	}

	id, err := s.universeRepo.GetNextSubsectionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subsection ID: %w", err)
	}

	record := &secondary.UniverseSubsectionRecord{
		ID:          id,
		SectionID:   section.ID,
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Order:       order,
	}
	if err := s.universeRepo.CreateSubsection(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create subsection: %w", err)
	}

	s.activity.Record(ctx, actionCreate, moduleUniverse, "Subsección %s en sección %s", record.Code, section.Code)
	return &primary.UniverseSubsection{
		ID:          record.ID,
		SectionID:   record.SectionID,
		Code:        record.Code,
		Name:        record.Name,
		Description: record.Description,
		Order:       record.Order,
	}, nil
}

// DeleteSubsection removes a subsection.
func (s *UniverseServiceImpl) DeleteSubsection(ctx context.Context, subsectionID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}
	if err := s.universeRepo.DeleteSubsection(ctx, subsectionID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, moduleUniverse, "Subsección %s", subsectionID)
	return nil
}

// AddAttachment stores a working paper on a project.
func (s *UniverseServiceImpl) AddAttachment(ctx context.Context, req primary.AddAttachmentRequest) (*primary.Attachment, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return nil, err
	}
	if _, err := s.universeRepo.GetProject(ctx, req.ParentID); err != nil {
		return nil, err
	}

	record, err := storeAttachment(ctx, s.attachmentRepo, secondary.AttachmentKindProject, req)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actionUpload, moduleAttachment, "%s en proyecto %s", record.Filename, req.ParentID)
	return recordToAttachment(record), nil
}

// ListAttachments lists a project's attachments without their data.
func (s *UniverseServiceImpl) ListAttachments(ctx context.Context, projectID string) ([]*primary.Attachment, error) {
	return listAttachments(ctx, s.attachmentRepo, secondary.AttachmentKindProject, projectID)
}

// GetAttachment retrieves any attachment including its data.
func (s *UniverseServiceImpl) GetAttachment(ctx context.Context, attachmentID string) (*primary.Attachment, error) {
	record, err := s.attachmentRepo.Get(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	return recordToAttachment(record), nil
}

// DeleteAttachment removes an attachment.
func (s *UniverseServiceImpl) DeleteAttachment(ctx context.Context, attachmentID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}
	record, err := s.attachmentRepo.Get(ctx, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, moduleAttachment, "%s de %s", record.Filename, record.ParentID)
	return nil
}

// projectTemplate is the YAML layout accepted by ImportProject.
type projectTemplate struct {
	Code         string            `yaml:"code"`
	Name         string            `yaml:"name"`
	Objective    string            `yaml:"objective"`
	AuditType    string            `yaml:"audit_type"`
	Process      string            `yaml:"process"`
	PlannedStart string            `yaml:"planned_start"`
	PlannedEnd   string            `yaml:"planned_end"`
	Sections     []sectionTemplate `yaml:"sections"`
}

type sectionTemplate struct {
	Code        string         `yaml:"code"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Subsections []nodeTemplate `yaml:"subsections"`
}

type nodeTemplate struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ImportProject creates a project with its whole tree from a YAML template,
// in one transaction. Sort orders follow the template's list order.
func (s *UniverseServiceImpl) ImportProject(ctx context.Context, template []byte) (*primary.UniverseProjectDetail, error) {
	var tpl projectTemplate
	dec := yaml.NewDecoder(bytes.NewReader(template))
	dec.KnownFields(true)
	if err := dec.Decode(&tpl); err != nil {
		return nil, invalid(fmt.Sprintf("invalid project template: %v", err))
	}

	record, err := s.prepareProject(ctx, primary.CreateProjectRequest{
		Code:         tpl.Code,
		Name:         tpl.Name,
		Objective:    tpl.Objective,
		AuditType:    tpl.AuditType,
		Process:      tpl.Process,
		PlannedStart: tpl.PlannedStart,
		PlannedEnd:   tpl.PlannedEnd,
	})
	if err != nil {
		return nil, err
	}

	tree := &secondary.UniverseTreeRecord{Project: *record}
	for i, sec := range tpl.Sections {
		if result := universe.CanAddNode(universe.NodeContext{
			ActorRole: string(access.RoleAuditor), ParentID: record.Code, ParentExists: true, Code: sec.Code, Name: sec.Name,
		}); !result.Allowed {
			return nil, invalid(fmt.Sprintf("section %d: %s", i+1, result.Reason))
		}
		node := secondary.UniverseSectionTree{
			Section: secondary.UniverseSectionRecord{
				Code: strings.TrimSpace(sec.Code), Name: strings.TrimSpace(sec.Name),
				Description: strings.TrimSpace(sec.Description), Order: i + 1,
			},
		}
		for j, sub := range sec.Subsections {
			if result := universe.CanAddNode(universe.NodeContext{
				ActorRole: string(access.RoleAuditor), ParentID: sec.Code, ParentExists: true, Code: sub.Code, Name: sub.Name,
			}); !result.Allowed {
				return nil, invalid(fmt.Sprintf("section %d subsection %d: %s", i+1, j+1, result.Reason))
			}
			node.Subsections = append(node.Subsections, secondary.UniverseSubsectionRecord{
				Code: strings.TrimSpace(sub.Code), Name: strings.TrimSpace(sub.Name),
				Description: strings.TrimSpace(sub.Description), Order: j + 1,
			})
		}
		tree.Sections = append(tree.Sections, node)
	}

	if err := s.universeRepo.CreateProjectTree(ctx, tree); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("project code %s already exists", record.Code), "import project")
	}

	s.activity.Record(ctx, actionImport, moduleUniverse, "Proyecto %s - %s (%d secciones)", tree.Project.Code, tree.Project.Name, len(tree.Sections))
	return s.GetProject(ctx, tree.Project.ID)
}

func recordToUniverseProject(r *secondary.UniverseProjectRecord) *primary.UniverseProject {
	return &primary.UniverseProject{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Objective:    r.Objective,
		AuditType:    r.AuditType,
		Process:      r.Process,
		PlannedStart: r.PlannedStart,
		PlannedEnd:   r.PlannedEnd,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Ensure UniverseServiceImpl implements the interface
var _ primary.UniverseService = (*UniverseServiceImpl)(nil)
