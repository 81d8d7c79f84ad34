package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/catalog"
	"github.com/example/auditplus/internal/core/finding"
	"github.com/example/auditplus/internal/core/scoring"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/metrics"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// FindingServiceImpl implements the FindingService interface.
//
// Every read runs the overdue sweep first so callers never see an Asignado
// finding whose commitment date has passed.
type FindingServiceImpl struct {
	findingRepo     secondary.FindingRepository
	planProjectRepo secondary.PlanProjectRepository
	userRepo        secondary.UserRepository
	catalogRepo     secondary.CatalogRepository
	attachmentRepo  secondary.AttachmentRepository
	activity        *Activity
	logger          *zap.Logger
	clock           Clock
}

// NewFindingService creates a new FindingService with injected dependencies.
func NewFindingService(
	findingRepo secondary.FindingRepository,
	planProjectRepo secondary.PlanProjectRepository,
	userRepo secondary.UserRepository,
	catalogRepo secondary.CatalogRepository,
	attachmentRepo secondary.AttachmentRepository,
	activity *Activity,
	logger *zap.Logger,
	clock Clock,
) *FindingServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FindingServiceImpl{
		findingRepo:     findingRepo,
		planProjectRepo: planProjectRepo,
		userRepo:        userRepo,
		catalogRepo:     catalogRepo,
		attachmentRepo:  attachmentRepo,
		activity:        activity,
		logger:          logger,
		clock:           clock,
	}
}

// SweepOverdue moves every Asignado or Sin Asignar finding whose commitment
// date is before today to Vencida. Idempotent.
func (s *FindingServiceImpl) SweepOverdue(ctx context.Context) (int64, error) {
	today := s.clock.today()
	n, err := s.findingRepo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep overdue findings: %w", err)
	}
	if n > 0 {
		metrics.FindingsSwept.Add(float64(n))
		metrics.FindingTransitions.WithLabelValues(string(finding.StatusOverdue)).Add(float64(n))
		s.logger.Info("findings marked overdue", zap.Int64("count", n), zap.String("today", today))
	}
	return n, nil
}

// CreateFinding raises a finding on a subsection of an in-progress plan-project.
func (s *FindingServiceImpl) CreateFinding(ctx context.Context, req primary.CreateFindingRequest) (*primary.Finding, error) {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.Reviewers...); err != nil {
		return nil, err
	}

	pp, err := s.planProjectRepo.GetByID(ctx, req.PlanProjectID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	guardCtx := finding.CreateFindingContext{
		ActorRole:     role,
		Code:          strings.TrimSpace(req.Code),
		Condition:     req.Condition,
		Probability:   req.Probability,
		Impact:        req.Impact,
		PlanProjectID: req.PlanProjectID,
		PlanID:        req.PlanID,
		SubsectionID:  req.PlanSubsectionID,
	}
	if pp != nil {
		guardCtx.PlanProjectStatus = pp.Status
		guardCtx.PlanProjectPlanID = pp.PlanID
		if guardCtx.PlanID == "" {
			guardCtx.PlanID = pp.PlanID
		}
	}

	sub, err := s.planProjectRepo.GetSubsection(ctx, req.PlanSubsectionID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if sub != nil {
		guardCtx.SubsectionProjectID = sub.PlanProjectID
	}

	if guardCtx.Code != "" {
		guardCtx.CodeExists, err = s.findingRepo.CodeExists(ctx, guardCtx.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to check finding code: %w", err)
		}
	}

	if result := finding.CanCreateFinding(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}
	if err := s.checkArea(ctx, req.Area); err != nil {
		return nil, err
	}

	id, err := s.findingRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate finding ID: %w", err)
	}

	record := &secondary.FindingRecord{
		ID:               id,
		Code:             guardCtx.Code,
		PlanID:           guardCtx.PlanID,
		PlanProjectID:    req.PlanProjectID,
		PlanSubsectionID: req.PlanSubsectionID,
		Condition:        strings.TrimSpace(req.Condition),
		Criterion:        strings.TrimSpace(req.Criterion),
		Cause:            strings.TrimSpace(req.Cause),
		Effect:           strings.TrimSpace(req.Effect),
		Recommendation:   strings.TrimSpace(req.Recommendation),
		Probability:      req.Probability,
		Impact:           req.Impact,
		RiskLevel:        string(scoring.CalculateRiskLevel(req.Probability, req.Impact)),
		Area:             req.Area,
		Status:           string(finding.InitialStatus()),
		CreatedBy:        ctxutil.ActorID(ctx),
	}
	if err := s.findingRepo.Create(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("finding code %s already exists", record.Code), "create finding")
	}

	s.activity.Record(ctx, actionCreate, moduleFindings, "Hallazgo %s (%s) en %s", record.Code, record.RiskLevel, pp.Code)
	return recordToFinding(record), nil
}

func (s *FindingServiceImpl) checkArea(ctx context.Context, area string) error {
	if area == "" {
		return nil
	}
	ok, err := s.catalogRepo.ValueExists(ctx, string(catalog.TypeArea), area)
	if err != nil {
		return fmt.Errorf("failed to check area: %w", err)
	}
	if !ok {
		return invalid(fmt.Sprintf("area %q is not in the catalog", area))
	}
	return nil
}

// EditFinding overwrites the content of a finding and recomputes its risk level.
func (s *FindingServiceImpl) EditFinding(ctx context.Context, req primary.EditFindingRequest) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.Reviewers...); err != nil {
		return err
	}

	record, err := s.findingRepo.GetByID(ctx, req.FindingID)
	if err != nil {
		return err
	}

	guardCtx := finding.EditFindingContext{
		ActorRole:   role,
		Condition:   req.Condition,
		Probability: req.Probability,
		Impact:      req.Impact,
	}
	if result := finding.CanEditFinding(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}
	if err := s.checkArea(ctx, req.Area); err != nil {
		return err
	}

	record.Condition = strings.TrimSpace(req.Condition)
	record.Criterion = strings.TrimSpace(req.Criterion)
	record.Cause = strings.TrimSpace(req.Cause)
	record.Effect = strings.TrimSpace(req.Effect)
	record.Recommendation = strings.TrimSpace(req.Recommendation)
	record.Probability = req.Probability
	record.Impact = req.Impact
	record.RiskLevel = string(scoring.CalculateRiskLevel(req.Probability, req.Impact))
	record.Area = req.Area

	if err := s.findingRepo.UpdateContent(ctx, record); err != nil {
		return err
	}
	s.activity.Record(ctx, actionEdit, moduleFindings, "Hallazgo %s (%s)", record.Code, record.RiskLevel)
	return nil
}

// GetFinding retrieves a finding.
func (s *FindingServiceImpl) GetFinding(ctx context.Context, findingID string) (*primary.Finding, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	record, err := s.findingRepo.GetByID(ctx, findingID)
	if err != nil {
		return nil, err
	}
	return recordToFinding(record), nil
}

// ListFindings lists findings with optional filters.
func (s *FindingServiceImpl) ListFindings(ctx context.Context, filters primary.FindingFilters) ([]*primary.Finding, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.list(ctx, toSecondaryFindingFilters(filters))
}

// MyFindings lists the findings awaiting the actor's response.
func (s *FindingServiceImpl) MyFindings(ctx context.Context) ([]*primary.Finding, error) {
	actorID := ctxutil.ActorID(ctx)
	if actorID == "" {
		return nil, fmt.Errorf("%w: no acting user", ErrForbidden)
	}
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	statuses := make([]string, 0, len(finding.AwaitingResponse()))
	for _, st := range finding.AwaitingResponse() {
		statuses = append(statuses, string(st))
	}
	return s.list(ctx, secondary.FindingFilters{ResponsibleID: actorID, Statuses: statuses})
}

func (s *FindingServiceImpl) list(ctx context.Context, filters secondary.FindingFilters) ([]*primary.Finding, error) {
	records, err := s.findingRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	result := make([]*primary.Finding, len(records))
	for i, r := range records {
		result[i] = recordToFinding(r)
	}
	return result, nil
}

// Assign sets the responsible user and commitment date of an unassigned finding.
func (s *FindingServiceImpl) Assign(ctx context.Context, req primary.AssignFindingRequest) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.Reviewers...); err != nil {
		return err
	}

	record, guardCtx, err := s.assignContext(ctx, role, req)
	if err != nil {
		return err
	}
	if result := finding.CanAssign(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	t := finding.ApplyAssign(s.clock.today())
	err = s.findingRepo.UpdateAssignment(ctx, record.ID, secondary.AssignmentUpdate{
		ResponsibleID:  req.ResponsibleID,
		CommitmentDate: req.CommitmentDate,
		AssignmentDate: t.AssignmentDate,
		Status:         string(t.NewStatus),
	})
	if err != nil {
		return err
	}

	metrics.FindingTransitions.WithLabelValues(string(t.NewStatus)).Inc()
	s.activity.Record(ctx, actionAssign, moduleFindings, "Hallazgo %s asignado a %s (compromiso %s)", record.Code, req.ResponsibleID, req.CommitmentDate)
	return nil
}

// Reassign changes the responsible user or commitment date of an Asignado or
// Vencida finding. A commitment date on or after today clears Vencida.
func (s *FindingServiceImpl) Reassign(ctx context.Context, req primary.AssignFindingRequest) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.Reviewers...); err != nil {
		return err
	}

	record, guardCtx, err := s.assignContext(ctx, role, req)
	if err != nil {
		return err
	}
	if result := finding.CanReassign(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	status := finding.ReassignStatus(finding.Status(record.Status), req.CommitmentDate, s.clock.today())
	err = s.findingRepo.UpdateAssignment(ctx, record.ID, secondary.AssignmentUpdate{
		ResponsibleID:  req.ResponsibleID,
		CommitmentDate: req.CommitmentDate,
		Status:         string(status),
	})
	if err != nil {
		return err
	}

	if string(status) != record.Status {
		metrics.FindingTransitions.WithLabelValues(string(status)).Inc()
	}
	s.activity.Record(ctx, actionReassign, moduleFindings, "Hallazgo %s reasignado a %s (compromiso %s)", record.Code, req.ResponsibleID, req.CommitmentDate)
	return nil
}

// assignContext loads the finding and responsible user for assignment guards.
func (s *FindingServiceImpl) assignContext(ctx context.Context, role string, req primary.AssignFindingRequest) (*secondary.FindingRecord, finding.AssignContext, error) {
	// Sweep first so a stale Asignado is seen as Vencida.
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, finding.AssignContext{}, err
	}

	record, err := s.findingRepo.GetByID(ctx, req.FindingID)
	if err != nil {
		return nil, finding.AssignContext{}, err
	}

	guardCtx := finding.AssignContext{
		ActorRole:      role,
		FindingID:      req.FindingID,
		Status:         finding.Status(record.Status),
		ResponsibleID:  req.ResponsibleID,
		CommitmentDate: req.CommitmentDate,
	}
	if req.ResponsibleID != "" {
		user, err := s.userRepo.GetByID(ctx, req.ResponsibleID)
		if err != nil && !isNotFound(err) {
			return nil, finding.AssignContext{}, err
		}
		guardCtx.ResponsibleActive = user != nil && user.IsActive
	}
	return record, guardCtx, nil
}

// Respond stores the responsible user's answer, with optional evidence.
func (s *FindingServiceImpl) Respond(ctx context.Context, req primary.RespondRequest) error {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return err
	}

	record, err := s.findingRepo.GetByID(ctx, req.FindingID)
	if err != nil {
		return err
	}

	guardCtx := finding.RespondContext{
		ActorID:       ctxutil.ActorID(ctx),
		FindingID:     req.FindingID,
		Status:        finding.Status(record.Status),
		ResponsibleID: record.ResponsibleID,
		Response:      req.Response,
	}
	if result := finding.CanRespond(guardCtx); !result.Allowed {
		if guardCtx.ActorID != record.ResponsibleID {
			return fmt.Errorf("%w: %s", ErrForbidden, result.Reason)
		}
		return invalid(result.Reason)
	}
	// Evidence is stored before the status changes and removed again if the
	// response cannot be saved, so a failed respond leaves the finding as it was.
	var evidence *secondary.AttachmentRecord
	if req.Evidence != nil {
		upload := *req.Evidence
		upload.ParentID = record.ID
		if err := validateAttachment(upload); err != nil {
			return err
		}
		evidence, err = storeAttachment(ctx, s.attachmentRepo, secondary.AttachmentKindResponse, upload)
		if err != nil {
			return err
		}
	}

	t := finding.ApplyRespond(s.clock.today())
	if err := s.findingRepo.UpdateResponse(ctx, record.ID, strings.TrimSpace(req.Response), t.ResponseDate, string(t.NewStatus)); err != nil {
		if evidence != nil {
			if delErr := s.attachmentRepo.Delete(ctx, evidence.ID); delErr != nil {
				return fmt.Errorf("%w (evidence %s left behind: %v)", err, evidence.ID, delErr)
			}
		}
		return err
	}
	metrics.FindingTransitions.WithLabelValues(string(t.NewStatus)).Inc()
	s.activity.Record(ctx, actionRespond, moduleFindings, "Respuesta al hallazgo %s", record.Code)
	if evidence != nil {
		s.activity.Record(ctx, actionUpload, moduleAttachment, "%s en respuesta a %s", evidence.Filename, record.Code)
	}
	return nil
}

// Accept closes a finding whose response is satisfactory.
func (s *FindingServiceImpl) Accept(ctx context.Context, findingID string) error {
	return s.review(ctx, findingID, true)
}

// Reject returns a finding to Asignado so the responsible user answers again.
func (s *FindingServiceImpl) Reject(ctx context.Context, findingID string) error {
	return s.review(ctx, findingID, false)
}

func (s *FindingServiceImpl) review(ctx context.Context, findingID string, accept bool) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.Reviewers...); err != nil {
		return err
	}

	record, err := s.findingRepo.GetByID(ctx, findingID)
	if err != nil {
		return err
	}

	guardCtx := finding.ReviewContext{ActorRole: role, FindingID: findingID, Status: finding.Status(record.Status)}
	result := finding.CanReject(guardCtx)
	t := finding.ApplyReject()
	if accept {
		result = finding.CanAccept(guardCtx)
		t = finding.ApplyAccept()
	}
	if !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.findingRepo.UpdateStatus(ctx, findingID, string(t.NewStatus)); err != nil {
		return err
	}

	metrics.FindingTransitions.WithLabelValues(string(t.NewStatus)).Inc()
	s.activity.Record(ctx, actionChangeStatus, moduleFindings, "Hallazgo %s: %s -> %s", record.Code, record.Status, t.NewStatus)
	return nil
}

// DeleteFinding hard-deletes a finding with its attachments.
func (s *FindingServiceImpl) DeleteFinding(ctx context.Context, findingID string) error {
	role := ctxutil.ActorRole(ctx)
	if err := requireRole(role, access.RoleAuditor); err != nil {
		return err
	}
	if result := finding.CanDelete(finding.DeleteContext{ActorRole: role, FindingID: findingID}); !result.Allowed {
		return invalid(result.Reason)
	}

	record, err := s.findingRepo.GetByID(ctx, findingID)
	if err != nil {
		return err
	}
	if err := s.findingRepo.Delete(ctx, findingID); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDelete, moduleFindings, "Hallazgo %s", record.Code)
	return nil
}

// AddAttachment stores an evidence file on a finding. Reviewers attach
// finding evidence; the responsible user attaches response evidence.
func (s *FindingServiceImpl) AddAttachment(ctx context.Context, req primary.AddAttachmentRequest) (*primary.Attachment, error) {
	record, err := s.findingRepo.GetByID(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = secondary.AttachmentKindFinding
	}
	switch kind {
	case secondary.AttachmentKindFinding:
		if err := requireRole(ctxutil.ActorRole(ctx), access.Reviewers...); err != nil {
			return nil, err
		}
	case secondary.AttachmentKindResponse:
		if ctxutil.ActorID(ctx) != record.ResponsibleID {
			return nil, fmt.Errorf("%w: only the responsible user can attach response evidence", ErrForbidden)
		}
	default:
		return nil, invalid(fmt.Sprintf("unknown attachment kind %q", kind))
	}

	att, err := storeAttachment(ctx, s.attachmentRepo, kind, req)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actionUpload, moduleAttachment, "%s en hallazgo %s", att.Filename, record.Code)
	return recordToAttachment(att), nil
}

// ListAttachments lists both finding and response evidence of a finding.
func (s *FindingServiceImpl) ListAttachments(ctx context.Context, findingID string) ([]*primary.Attachment, error) {
	return listAttachments(ctx, s.attachmentRepo, "", findingID)
}

// StatusCounts counts findings by status.
func (s *FindingServiceImpl) StatusCounts(ctx context.Context, filters primary.FindingFilters) (map[string]int, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	counts, err := s.findingRepo.CountBy(ctx, "status", toSecondaryFindingFilters(filters))
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}
	return counts, nil
}

func toSecondaryFindingFilters(f primary.FindingFilters) secondary.FindingFilters {
	return secondary.FindingFilters{
		PlanID:        f.PlanID,
		PlanProjectID: f.PlanProjectID,
		Status:        f.Status,
		RiskLevel:     f.RiskLevel,
		ResponsibleID: f.ResponsibleID,
		Search:        f.Search,
	}
}

func recordToFinding(r *secondary.FindingRecord) *primary.Finding {
	return &primary.Finding{
		ID:               r.ID,
		Code:             r.Code,
		PlanID:           r.PlanID,
		PlanProjectID:    r.PlanProjectID,
		PlanSubsectionID: r.PlanSubsectionID,
		Condition:        r.Condition,
		Criterion:        r.Criterion,
		Cause:            r.Cause,
		Effect:           r.Effect,
		Recommendation:   r.Recommendation,
		Probability:      r.Probability,
		Impact:           r.Impact,
		RiskLevel:        r.RiskLevel,
		Area:             r.Area,
		ResponsibleID:    r.ResponsibleID,
		Status:           r.Status,
		AssignmentDate:   r.AssignmentDate,
		CommitmentDate:   r.CommitmentDate,
		ResponseDate:     r.ResponseDate,
		Response:         r.Response,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
	}
}

// Ensure FindingServiceImpl implements the interface
var _ primary.FindingService = (*FindingServiceImpl)(nil)
