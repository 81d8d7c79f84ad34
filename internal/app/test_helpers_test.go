package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/scoring"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/secondary"
)

// ============================================================================
// Shared fixtures
// ============================================================================

// fixedToday pins the service clock in tests.
var fixedToday = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return func() time.Time { return fixedToday }
}

func actorCtx(id string, role access.Role) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{UserID: id, Username: strings.ToLower(id), Role: string(role)})
}

func auditorCtx() context.Context {
	return actorCtx("USR-001", access.RoleAuditor)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, secondary.ErrNotFound)
}

func nextID(prefix string, n *int) string {
	*n++
	return fmt.Sprintf("%s-%03d", prefix, *n)
}

// ============================================================================
// mockAuditLogWriter
// ============================================================================

// Ensure mockAuditLogWriter implements the interface
var _ secondary.AuditLogWriter = (*mockAuditLogWriter)(nil)

type loggedAction struct {
	Action, Module, Detail, Actor string
}

type mockAuditLogWriter struct {
	entries   []loggedAction
	recordErr error
}

func newMockAuditLogWriter() *mockAuditLogWriter {
	return &mockAuditLogWriter{}
}

func (m *mockAuditLogWriter) Record(ctx context.Context, action, module, detail string) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.entries = append(m.entries, loggedAction{Action: action, Module: module, Detail: detail, Actor: ctxutil.ActorID(ctx)})
	return nil
}

// ============================================================================
// mockUserRepository
// ============================================================================

// Ensure mockUserRepository implements the interface
var _ secondary.UserRepository = (*mockUserRepository)(nil)

type mockUserRepository struct {
	users     map[string]*secondary.UserRecord
	seq       int
	createErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*secondary.UserRecord)}
}

func (m *mockUserRepository) add(id, username string, role access.Role, active bool) *secondary.UserRecord {
	u := &secondary.UserRecord{ID: id, Username: username, FullName: strings.ToUpper(username), Role: string(role), IsActive: active}
	m.users[id] = u
	return u
}

func (m *mockUserRepository) Create(ctx context.Context, user *secondary.UserRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, notFound("user", id)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, notFound("user", username)
}

func (m *mockUserRepository) List(ctx context.Context, filters secondary.UserFilters) ([]*secondary.UserRecord, error) {
	var result []*secondary.UserRecord
	for _, u := range m.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if !filters.IncludeInactive && !u.IsActive {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id, fullName, email string) error {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.FullName = fullName
	u.Email = email
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}

func (m *mockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *mockUserRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("USR", &m.seq), nil
}

// ============================================================================
// mockCatalogRepository
// ============================================================================

// Ensure mockCatalogRepository implements the interface
var _ secondary.CatalogRepository = (*mockCatalogRepository)(nil)

type mockCatalogRepository struct {
	entries map[string]*secondary.CatalogRecord
	seq     int
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{entries: make(map[string]*secondary.CatalogRecord)}
}

func (m *mockCatalogRepository) add(catalogType, value string) *secondary.CatalogRecord {
	id := nextID("CAT", &m.seq)
	e := &secondary.CatalogRecord{ID: id, Type: catalogType, Value: value, IsActive: true, DisplayOrder: m.seq}
	m.entries[id] = e
	return e
}

func (m *mockCatalogRepository) Create(ctx context.Context, entry *secondary.CatalogRecord) error {
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCatalogRepository) GetByID(ctx context.Context, id string) (*secondary.CatalogRecord, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, notFound("catalog entry", id)
}

func (m *mockCatalogRepository) List(ctx context.Context, filters secondary.CatalogFilters) ([]*secondary.CatalogRecord, error) {
	var result []*secondary.CatalogRecord
	for _, e := range m.entries {
		if filters.Type != "" && e.Type != filters.Type {
			continue
		}
		if !filters.IncludeInactive && !e.IsActive {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayOrder < result[j].DisplayOrder })
	return result, nil
}

func (m *mockCatalogRepository) SetActive(ctx context.Context, id string, active bool) error {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	e.IsActive = active
	return nil
}

func (m *mockCatalogRepository) ValueExists(ctx context.Context, catalogType, value string) (bool, error) {
	for _, e := range m.entries {
		if e.Type == catalogType && e.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCatalogRepository) NextDisplayOrder(ctx context.Context, catalogType string) (int, error) {
	max := 0
	for _, e := range m.entries {
		if e.Type == catalogType && e.DisplayOrder > max {
			max = e.DisplayOrder
		}
	}
	return max + 1, nil
}

func (m *mockCatalogRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("CAT", &m.seq), nil
}

// ============================================================================
// mockWeightRepository
// ============================================================================

// Ensure mockWeightRepository implements the interface
var _ secondary.WeightRepository = (*mockWeightRepository)(nil)

type mockWeightRepository struct {
	weights   map[string]float64
	updateErr error
}

func newMockWeightRepository() *mockWeightRepository {
	m := &mockWeightRepository{weights: make(map[string]float64)}
	for f, w := range scoring.DefaultWeights() {
		m.weights[string(f)] = w
	}
	return m
}

func (m *mockWeightRepository) List(ctx context.Context) ([]*secondary.WeightRecord, error) {
	result := make([]*secondary.WeightRecord, 0, len(m.weights))
	for f, w := range m.weights {
		result = append(result, &secondary.WeightRecord{Factor: f, Label: f, Weight: w})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Factor < result[j].Factor })
	return result, nil
}

func (m *mockWeightRepository) UpdateAll(ctx context.Context, weights map[string]float64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for f, w := range weights {
		m.weights[f] = w
	}
	return nil
}

// ============================================================================
// mockUniverseRepository
// ============================================================================

// Ensure mockUniverseRepository implements the interface
var _ secondary.UniverseRepository = (*mockUniverseRepository)(nil)

type mockUniverseRepository struct {
	projects    map[string]*secondary.UniverseProjectRecord
	sections    map[string]*secondary.UniverseSectionRecord
	subsections map[string]*secondary.UniverseSubsectionRecord
	projectSeq  int
	sectionSeq  int
	subSeq      int
	treeErr     error
}

func newMockUniverseRepository() *mockUniverseRepository {
	return &mockUniverseRepository{
		projects:    make(map[string]*secondary.UniverseProjectRecord),
		sections:    make(map[string]*secondary.UniverseSectionRecord),
		subsections: make(map[string]*secondary.UniverseSubsectionRecord),
	}
}

// addProject stores a project with one section holding the given number of subsections.
func (m *mockUniverseRepository) addProject(code string, subsections int) *secondary.UniverseProjectRecord {
	p := &secondary.UniverseProjectRecord{ID: nextID("UNI", &m.projectSeq), Code: code, Name: "Proyecto " + code}
	m.projects[p.ID] = p
	sec := &secondary.UniverseSectionRecord{ID: nextID("SEC", &m.sectionSeq), ProjectID: p.ID, Code: code + ".1", Name: "Sección", Order: 1}
	m.sections[sec.ID] = sec
	for i := 1; i <= subsections; i++ {
		sub := &secondary.UniverseSubsectionRecord{ID: nextID("SUB", &m.subSeq), SectionID: sec.ID, Code: fmt.Sprintf("%s.1.%d", code, i), Name: "Subsección", Order: i}
		m.subsections[sub.ID] = sub
	}
	return p
}

func (m *mockUniverseRepository) CreateProject(ctx context.Context, project *secondary.UniverseProjectRecord) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockUniverseRepository) CreateProjectTree(ctx context.Context, tree *secondary.UniverseTreeRecord) error {
	if m.treeErr != nil {
		return m.treeErr
	}
	tree.Project.ID = nextID("UNI", &m.projectSeq)
	p := tree.Project
	m.projects[p.ID] = &p
	for i := range tree.Sections {
		st := &tree.Sections[i]
		st.Section.ID = nextID("SEC", &m.sectionSeq)
		st.Section.ProjectID = p.ID
		sec := st.Section
		m.sections[sec.ID] = &sec
		for j := range st.Subsections {
			st.Subsections[j].ID = nextID("SUB", &m.subSeq)
			st.Subsections[j].SectionID = sec.ID
			sub := st.Subsections[j]
			m.subsections[sub.ID] = &sub
		}
	}
	return nil
}

func (m *mockUniverseRepository) GetProject(ctx context.Context, id string) (*secondary.UniverseProjectRecord, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, notFound("universe project", id)
}

func (m *mockUniverseRepository) ListProjects(ctx context.Context, filters secondary.UniverseFilters) ([]*secondary.UniverseProjectRecord, error) {
	var result []*secondary.UniverseProjectRecord
	for _, p := range m.projects {
		if filters.AuditType != "" && p.AuditType != filters.AuditType {
			continue
		}
		if filters.Process != "" && p.Process != filters.Process {
			continue
		}
		if filters.Search != "" && !strings.Contains(p.Code+p.Name, filters.Search) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockUniverseRepository) UpdateProject(ctx context.Context, project *secondary.UniverseProjectRecord) error {
	if _, ok := m.projects[project.ID]; !ok {
		return notFound("universe project", project.ID)
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockUniverseRepository) DeleteProject(ctx context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return notFound("universe project", id)
	}
	delete(m.projects, id)
	for sid, sec := range m.sections {
		if sec.ProjectID == id {
			delete(m.sections, sid)
		}
	}
	return nil
}

func (m *mockUniverseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, p := range m.projects {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUniverseRepository) CreateSection(ctx context.Context, section *secondary.UniverseSectionRecord) error {
	m.sections[section.ID] = section
	return nil
}

func (m *mockUniverseRepository) GetSection(ctx context.Context, id string) (*secondary.UniverseSectionRecord, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, notFound("section", id)
}

func (m *mockUniverseRepository) ListSections(ctx context.Context, projectID string) ([]*secondary.UniverseSectionRecord, error) {
	var result []*secondary.UniverseSectionRecord
	for _, s := range m.sections {
		if s.ProjectID == projectID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

func (m *mockUniverseRepository) DeleteSection(ctx context.Context, id string) error {
	if _, ok := m.sections[id]; !ok {
		return notFound("section", id)
	}
	delete(m.sections, id)
	for sid, sub := range m.subsections {
		if sub.SectionID == id {
			delete(m.subsections, sid)
		}
	}
	return nil
}

func (m *mockUniverseRepository) CreateSubsection(ctx context.Context, subsection *secondary.UniverseSubsectionRecord) error {
	m.subsections[subsection.ID] = subsection
	return nil
}

func (m *mockUniverseRepository) ListSubsections(ctx context.Context, projectID string) ([]*secondary.UniverseSubsectionRecord, error) {
	var result []*secondary.UniverseSubsectionRecord
	for _, sub := range m.subsections {
		if sec, ok := m.sections[sub.SectionID]; ok && sec.ProjectID == projectID {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockUniverseRepository) DeleteSubsection(ctx context.Context, id string) error {
	if _, ok := m.subsections[id]; !ok {
		return notFound("subsection", id)
	}
	delete(m.subsections, id)
	return nil
}

func (m *mockUniverseRepository) GetNextProjectID(ctx context.Context) (string, error) {
	return nextID("UNI", &m.projectSeq), nil
}

func (m *mockUniverseRepository) GetNextSectionID(ctx context.Context) (string, error) {
	return nextID("SEC", &m.sectionSeq), nil
}

func (m *mockUniverseRepository) GetNextSubsectionID(ctx context.Context) (string, error) {
	return nextID("SUB", &m.subSeq), nil
}

// ============================================================================
// mockAttachmentRepository
// ============================================================================

// Ensure mockAttachmentRepository implements the interface
var _ secondary.AttachmentRepository = (*mockAttachmentRepository)(nil)

type mockAttachmentRepository struct {
	attachments map[string]*secondary.AttachmentRecord
	seq         int
	createErr   error
}

func newMockAttachmentRepository() *mockAttachmentRepository {
	return &mockAttachmentRepository{attachments: make(map[string]*secondary.AttachmentRecord)}
}

func (m *mockAttachmentRepository) Create(ctx context.Context, a *secondary.AttachmentRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.attachments[a.ID] = a
	return nil
}

func (m *mockAttachmentRepository) Get(ctx context.Context, id string) (*secondary.AttachmentRecord, error) {
	if a, ok := m.attachments[id]; ok {
		return a, nil
	}
	return nil, notFound("attachment", id)
}

func (m *mockAttachmentRepository) List(ctx context.Context, kind, parentID string) ([]*secondary.AttachmentRecord, error) {
	var result []*secondary.AttachmentRecord
	for _, a := range m.attachments {
		if a.ParentID != parentID {
			continue
		}
		if kind == "" && a.Kind == secondary.AttachmentKindProject {
			continue
		}
		if kind != "" && a.Kind != kind {
			continue
		}
		meta := *a
		meta.Data = nil
		result = append(result, &meta)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAttachmentRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.attachments[id]; !ok {
		return notFound("attachment", id)
	}
	delete(m.attachments, id)
	return nil
}

func (m *mockAttachmentRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("ATT", &m.seq), nil
}

// ============================================================================
// mockPlanRepository
// ============================================================================

// Ensure mockPlanRepository implements the interface
var _ secondary.PlanRepository = (*mockPlanRepository)(nil)

type mockPlanRepository struct {
	plans     map[string]*secondary.PlanRecord
	projects  *mockPlanProjectRepository
	seq       int
	insertErr error
	inserted  [][]secondary.PlanProjectTree
}

func newMockPlanRepository(projects *mockPlanProjectRepository) *mockPlanRepository {
	return &mockPlanRepository{plans: make(map[string]*secondary.PlanRecord), projects: projects}
}

func (m *mockPlanRepository) add(code string, year int, status string) *secondary.PlanRecord {
	p := &secondary.PlanRecord{ID: nextID("PLAN", &m.seq), Code: code, Name: "Plan " + code, Year: year, Status: status}
	m.plans[p.ID] = p
	return p
}

func (m *mockPlanRepository) Create(ctx context.Context, plan *secondary.PlanRecord) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanRepository) GetByID(ctx context.Context, id string) (*secondary.PlanRecord, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, notFound("plan", id)
}

func (m *mockPlanRepository) List(ctx context.Context, filters secondary.PlanFilters) ([]*secondary.PlanRecord, error) {
	var result []*secondary.PlanRecord
	for _, p := range m.plans {
		if filters.Year != 0 && p.Year != filters.Year {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year > result[j].Year })
	return result, nil
}

func (m *mockPlanRepository) UpdateStatus(ctx context.Context, id, status string) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Status = status
	return nil
}

func (m *mockPlanRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.plans[id]; !ok {
		return notFound("plan", id)
	}
	delete(m.plans, id)
	return nil
}

func (m *mockPlanRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, p := range m.plans {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPlanRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("PLAN", &m.seq), nil
}

func (m *mockPlanRepository) ListOriginIDs(ctx context.Context, planID string) ([]string, error) {
	var ids []string
	for _, p := range m.projects.projects {
		if p.PlanID == planID {
			ids = append(ids, p.OriginProjectID)
		}
	}
	return ids, nil
}

func (m *mockPlanRepository) InsertProjectTrees(ctx context.Context, trees []secondary.PlanProjectTree) ([]string, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.inserted = append(m.inserted, trees)
	ids := make([]string, 0, len(trees))
	for _, tree := range trees {
		ids = append(ids, m.projects.insertTree(tree))
	}
	return ids, nil
}

// ============================================================================
// mockPlanProjectRepository
// ============================================================================

// Ensure mockPlanProjectRepository implements the interface
var _ secondary.PlanProjectRepository = (*mockPlanProjectRepository)(nil)

type mockPlanProjectRepository struct {
	projects    map[string]*secondary.PlanProjectRecord
	sections    map[string]*secondary.PlanSectionRecord
	subsections map[string]*secondary.PlanSubsectionRecord
	planYears   map[string]int
	seq         int
	sectionSeq  int
	subSeq      int
}

func newMockPlanProjectRepository() *mockPlanProjectRepository {
	return &mockPlanProjectRepository{
		projects:    make(map[string]*secondary.PlanProjectRecord),
		sections:    make(map[string]*secondary.PlanSectionRecord),
		subsections: make(map[string]*secondary.PlanSubsectionRecord),
		planYears:   make(map[string]int),
	}
}

// add stores a plan-project with one section and one subsection, returning both.
func (m *mockPlanProjectRepository) add(planID, code string, status string) (*secondary.PlanProjectRecord, *secondary.PlanSubsectionRecord) {
	pp := &secondary.PlanProjectRecord{ID: nextID("PPRJ", &m.seq), PlanID: planID, Code: code, Name: "Proyecto " + code, Status: status}
	m.projects[pp.ID] = pp
	sec := &secondary.PlanSectionRecord{ID: nextID("PSEC", &m.sectionSeq), PlanProjectID: pp.ID, Code: code + ".1", Name: "Sección", Order: 1}
	m.sections[sec.ID] = sec
	sub := &secondary.PlanSubsectionRecord{ID: nextID("PSUB", &m.subSeq), PlanSectionID: sec.ID, PlanProjectID: pp.ID, Code: code + ".1.1", Name: "Subsección", Order: 1}
	m.subsections[sub.ID] = sub
	return pp, sub
}

func (m *mockPlanProjectRepository) insertTree(tree secondary.PlanProjectTree) string {
	p := tree.Project
	p.ID = nextID("PPRJ", &m.seq)
	p.Status = "Sin Iniciar"
	m.projects[p.ID] = &p
	for _, st := range tree.Sections {
		sec := st.Section
		sec.ID = nextID("PSEC", &m.sectionSeq)
		sec.PlanProjectID = p.ID
		m.sections[sec.ID] = &sec
		for _, sub := range st.Subsections {
			sub.ID = nextID("PSUB", &m.subSeq)
			sub.PlanSectionID = sec.ID
			sub.PlanProjectID = p.ID
			m.subsections[sub.ID] = &sub
		}
	}
	return p.ID
}

func (m *mockPlanProjectRepository) GetByID(ctx context.Context, id string) (*secondary.PlanProjectRecord, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, notFound("plan-project", id)
}

func (m *mockPlanProjectRepository) List(ctx context.Context, filters secondary.PlanProjectFilters) ([]*secondary.PlanProjectRecord, error) {
	var result []*secondary.PlanProjectRecord
	for _, p := range m.projects {
		if filters.PlanID != "" && p.PlanID != filters.PlanID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		if filters.SupervisorID != "" && p.SupervisorID != filters.SupervisorID {
			continue
		}
		if filters.FieldAuditorID != "" && p.FieldAuditorID != filters.FieldAuditorID {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockPlanProjectRepository) UpdateSchedule(ctx context.Context, id string, s secondary.ScheduleUpdate) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.PlannedStart, p.PlannedEnd = s.PlannedStart, s.PlannedEnd
	p.SupervisorID, p.FieldAuditorID = s.SupervisorID, s.FieldAuditorID
	return nil
}

func (m *mockPlanProjectRepository) ApplyTransition(ctx context.Context, id string, t secondary.StatusTransition) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Status = t.Status
	if t.ActualStart != "" {
		p.ActualStart = t.ActualStart
	}
	if t.ActualEnd != "" {
		p.ActualEnd = t.ActualEnd
	}
	if t.ClearActualEnd {
		p.ActualEnd = ""
	}
	return nil
}

func (m *mockPlanProjectRepository) ListSections(ctx context.Context, planProjectID string) ([]*secondary.PlanSectionRecord, error) {
	var result []*secondary.PlanSectionRecord
	for _, s := range m.sections {
		if s.PlanProjectID == planProjectID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

func (m *mockPlanProjectRepository) ListSubsections(ctx context.Context, planProjectID string) ([]*secondary.PlanSubsectionRecord, error) {
	var result []*secondary.PlanSubsectionRecord
	for _, s := range m.subsections {
		if s.PlanProjectID == planProjectID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockPlanProjectRepository) GetSubsection(ctx context.Context, id string) (*secondary.PlanSubsectionRecord, error) {
	if s, ok := m.subsections[id]; ok {
		return s, nil
	}
	return nil, notFound("plan subsection", id)
}

func (m *mockPlanProjectRepository) LatestForOrigin(ctx context.Context, originProjectID string) (*secondary.PlanProjectRecord, error) {
	var latest *secondary.PlanProjectRecord
	for _, p := range m.projects {
		if p.OriginProjectID != originProjectID {
			continue
		}
		if latest == nil || m.planYears[p.PlanID] > m.planYears[latest.PlanID] {
			latest = p
		}
	}
	return latest, nil
}

// ============================================================================
// mockAssignmentRepository
// ============================================================================

// Ensure mockAssignmentRepository implements the interface
var _ secondary.AssignmentRepository = (*mockAssignmentRepository)(nil)

type mockAssignmentRepository struct {
	assignments map[string]*secondary.AssignmentRecord
	seq         int
}

func newMockAssignmentRepository() *mockAssignmentRepository {
	return &mockAssignmentRepository{assignments: make(map[string]*secondary.AssignmentRecord)}
}

func (m *mockAssignmentRepository) Create(ctx context.Context, a *secondary.AssignmentRecord) error {
	m.assignments[a.ID] = a
	return nil
}

func (m *mockAssignmentRepository) List(ctx context.Context, planProjectID string) ([]*secondary.AssignmentRecord, error) {
	var result []*secondary.AssignmentRecord
	for _, a := range m.assignments {
		if a.PlanProjectID == planProjectID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAssignmentRepository) Exists(ctx context.Context, planProjectID, userID, role string) (bool, error) {
	for _, a := range m.assignments {
		if a.PlanProjectID == planProjectID && a.UserID == userID && a.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return notFound("assignment", id)
	}
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("ASG", &m.seq), nil
}

// ============================================================================
// mockFindingRepository
// ============================================================================

// Ensure mockFindingRepository implements the interface
var _ secondary.FindingRepository = (*mockFindingRepository)(nil)

type mockFindingRepository struct {
	findings       map[string]*secondary.FindingRecord
	seq            int
	markOverdueErr error
	responseErr    error
	sweeps         int
}

func newMockFindingRepository() *mockFindingRepository {
	return &mockFindingRepository{findings: make(map[string]*secondary.FindingRecord)}
}

func (m *mockFindingRepository) add(f *secondary.FindingRecord) *secondary.FindingRecord {
	if f.ID == "" {
		f.ID = nextID("FIND", &m.seq)
	}
	m.findings[f.ID] = f
	return f
}

func (m *mockFindingRepository) Create(ctx context.Context, f *secondary.FindingRecord) error {
	m.findings[f.ID] = f
	return nil
}

func (m *mockFindingRepository) GetByID(ctx context.Context, id string) (*secondary.FindingRecord, error) {
	if f, ok := m.findings[id]; ok {
		return f, nil
	}
	return nil, notFound("finding", id)
}

func (m *mockFindingRepository) matches(f *secondary.FindingRecord, filters secondary.FindingFilters) bool {
	if filters.PlanID != "" && f.PlanID != filters.PlanID {
		return false
	}
	if filters.PlanProjectID != "" && f.PlanProjectID != filters.PlanProjectID {
		return false
	}
	if filters.Status != "" && f.Status != filters.Status {
		return false
	}
	if len(filters.Statuses) > 0 {
		found := false
		for _, s := range filters.Statuses {
			if f.Status == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if filters.RiskLevel != "" && f.RiskLevel != filters.RiskLevel {
		return false
	}
	if filters.ResponsibleID != "" && f.ResponsibleID != filters.ResponsibleID {
		return false
	}
	if filters.Search != "" && !strings.Contains(f.Code+f.Condition, filters.Search) {
		return false
	}
	return true
}

func (m *mockFindingRepository) List(ctx context.Context, filters secondary.FindingFilters) ([]*secondary.FindingRecord, error) {
	var result []*secondary.FindingRecord
	for _, f := range m.findings {
		if m.matches(f, filters) {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockFindingRepository) UpdateContent(ctx context.Context, f *secondary.FindingRecord) error {
	if _, ok := m.findings[f.ID]; !ok {
		return notFound("finding", f.ID)
	}
	m.findings[f.ID] = f
	return nil
}

func (m *mockFindingRepository) UpdateAssignment(ctx context.Context, id string, u secondary.AssignmentUpdate) error {
	f, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f.ResponsibleID = u.ResponsibleID
	f.CommitmentDate = u.CommitmentDate
	if u.AssignmentDate != "" {
		f.AssignmentDate = u.AssignmentDate
	}
	f.Status = u.Status
	return nil
}

func (m *mockFindingRepository) UpdateResponse(ctx context.Context, id, response, responseDate, status string) error {
	if m.responseErr != nil {
		return m.responseErr
	}
	f, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f.Response, f.ResponseDate, f.Status = response, responseDate, status
	return nil
}

func (m *mockFindingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	f, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f.Status = status
	return nil
}

func (m *mockFindingRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.findings[id]; !ok {
		return notFound("finding", id)
	}
	delete(m.findings, id)
	return nil
}

func (m *mockFindingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, f := range m.findings {
		if f.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFindingRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("FIND", &m.seq), nil
}

func (m *mockFindingRepository) MarkOverdue(ctx context.Context, today string) (int64, error) {
	if m.markOverdueErr != nil {
		return 0, m.markOverdueErr
	}
	m.sweeps++
	var n int64
	for _, f := range m.findings {
		if f.CommitmentDate == "" || f.CommitmentDate >= today {
			continue
		}
		if f.Status == "Asignado" || f.Status == "Sin Asignar" {
			f.Status = "Vencida"
			n++
		}
	}
	return n, nil
}

func (m *mockFindingRepository) CountForPlanProject(ctx context.Context, planProjectID string) (int, int, error) {
	total, accepted := 0, 0
	for _, f := range m.findings {
		if f.PlanProjectID != planProjectID {
			continue
		}
		total++
		if f.Status == "Aceptada" {
			accepted++
		}
	}
	return total, accepted, nil
}

func (m *mockFindingRepository) CountForPlan(ctx context.Context, planID string) (int, error) {
	n := 0
	for _, f := range m.findings {
		if f.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (m *mockFindingRepository) CountBy(ctx context.Context, column string, filters secondary.FindingFilters) (map[string]int, error) {
	counts := make(map[string]int)
	for _, f := range m.findings {
		if !m.matches(f, filters) {
			continue
		}
		switch column {
		case "status":
			counts[f.Status]++
		case "risk_level":
			counts[f.RiskLevel]++
		case "area":
			counts[f.Area]++
		default:
			return nil, fmt.Errorf("unsupported column %q", column)
		}
	}
	return counts, nil
}

// ============================================================================
// mockEvaluationRepository
// ============================================================================

// Ensure mockEvaluationRepository implements the interface
var _ secondary.EvaluationRepository = (*mockEvaluationRepository)(nil)

type mockEvaluationRepository struct {
	evaluations map[string]*secondary.EvaluationRecord
}

func newMockEvaluationRepository() *mockEvaluationRepository {
	return &mockEvaluationRepository{evaluations: make(map[string]*secondary.EvaluationRecord)}
}

func (m *mockEvaluationRepository) Get(ctx context.Context, projectID string) (*secondary.EvaluationRecord, error) {
	if e, ok := m.evaluations[projectID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (m *mockEvaluationRepository) List(ctx context.Context) ([]*secondary.EvaluationRecord, error) {
	result := make([]*secondary.EvaluationRecord, 0, len(m.evaluations))
	for _, e := range m.evaluations {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProjectID < result[j].ProjectID })
	return result, nil
}

func (m *mockEvaluationRepository) Upsert(ctx context.Context, e *secondary.EvaluationRecord) error {
	cp := *e
	m.evaluations[e.ProjectID] = &cp
	return nil
}

func (m *mockEvaluationRepository) UpdateCriticality(ctx context.Context, projectID string, criticality float64) error {
	e, ok := m.evaluations[projectID]
	if !ok {
		return notFound("evaluation", projectID)
	}
	e.Criticality = criticality
	return nil
}

// ============================================================================
// mockAuditLogRepository
// ============================================================================

// Ensure mockAuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*mockAuditLogRepository)(nil)

type mockAuditLogRepository struct {
	entries    []*secondary.AuditLogRecord
	seq        int
	lastFilter secondary.AuditLogFilters
}

func newMockAuditLogRepository() *mockAuditLogRepository {
	return &mockAuditLogRepository{}
}

func (m *mockAuditLogRepository) Create(ctx context.Context, e *secondary.AuditLogRecord) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	m.lastFilter = filters
	var result []*secondary.AuditLogRecord
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filters.UserID != "" && e.UserID != filters.UserID {
			continue
		}
		if filters.Module != "" && e.Module != filters.Module {
			continue
		}
		result = append(result, e)
		if filters.Limit > 0 && len(result) == filters.Limit {
			break
		}
	}
	return result, nil
}

func (m *mockAuditLogRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID("LOG", &m.seq), nil
}
