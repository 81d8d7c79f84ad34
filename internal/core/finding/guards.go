package finding

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/planproject"
)

// DateLayout is the calendar date format used for every finding date.
const DateLayout = planproject.DateLayout

// Probability and impact bounds.
const (
	MinScale = 1
	MaxScale = 5
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

func allowed() GuardResult {
	return GuardResult{Allowed: true}
}

// CreateFindingContext provides context for finding creation guards.
type CreateFindingContext struct {
	ActorRole           string
	Code                string
	Condition           string
	Probability         int
	Impact              int
	PlanProjectID       string
	PlanProjectStatus   string // plan-project status as stored
	PlanProjectPlanID   string // plan the plan-project belongs to
	PlanID              string // plan referenced by the request
	SubsectionID        string
	SubsectionProjectID string // plan-project the subsection belongs to; empty if not found
	CodeExists          bool
}

// CanCreateFinding evaluates whether a finding can be raised.
// Rules:
// - Actor must be an auditor or field auditor
// - Code and condition are required
// - Probability and impact within 1-5
// - Plan-project must be En Proceso
// - Subsection must belong to the plan-project, which must belong to the plan
// - Code must be unique
func CanCreateFinding(ctx CreateFindingContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.Reviewers...); !res.Allowed {
		return GuardResult(res)
	}

	var missing []string
	if strings.TrimSpace(ctx.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(ctx.Condition) == "" {
		missing = append(missing, "condition")
	}
	if len(missing) > 0 {
		return deny("missing required fields: %s", strings.Join(missing, ", "))
	}

	if res := checkScale(ctx.Probability, ctx.Impact); !res.Allowed {
		return res
	}

	if ctx.PlanProjectStatus != string(planproject.StatusInProgress) {
		return deny("findings can only be created while plan-project %s is %s (current status: %s)", ctx.PlanProjectID, planproject.StatusInProgress, ctx.PlanProjectStatus)
	}

	if ctx.SubsectionProjectID != ctx.PlanProjectID {
		return deny("subsection %s does not belong to plan-project %s", ctx.SubsectionID, ctx.PlanProjectID)
	}
	if ctx.PlanProjectPlanID != ctx.PlanID {
		return deny("plan-project %s does not belong to plan %s", ctx.PlanProjectID, ctx.PlanID)
	}

	if ctx.CodeExists {
		return deny("finding code %s already exists", ctx.Code)
	}

	return allowed()
}

// EditFindingContext provides context for finding edit guards.
type EditFindingContext struct {
	ActorRole   string
	Condition   string
	Probability int
	Impact      int
}

// CanEditFinding evaluates whether a finding's content can be edited.
func CanEditFinding(ctx EditFindingContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.Reviewers...); !res.Allowed {
		return GuardResult(res)
	}
	if strings.TrimSpace(ctx.Condition) == "" {
		return deny("missing required fields: condition")
	}
	return checkScale(ctx.Probability, ctx.Impact)
}

func checkScale(probability, impact int) GuardResult {
	if probability < MinScale || probability > MaxScale {
		return deny("probability must be between %d and %d (got %d)", MinScale, MaxScale, probability)
	}
	if impact < MinScale || impact > MaxScale {
		return deny("impact must be between %d and %d (got %d)", MinScale, MaxScale, impact)
	}
	return allowed()
}

// AssignContext provides context for assignment and reassignment guards.
type AssignContext struct {
	ActorRole         string
	FindingID         string
	Status            Status
	ResponsibleID     string
	ResponsibleActive bool
	CommitmentDate    string
}

// CanAssign evaluates whether an unassigned finding can be assigned.
// Rules:
// - Actor must be an auditor or field auditor
// - Status must be Sin Asignar
// - Responsible user and commitment date are required
func CanAssign(ctx AssignContext) GuardResult {
	if ctx.Status != StatusUnassigned {
		return deny("can only assign findings in status %s (current status: %s)", StatusUnassigned, ctx.Status)
	}
	return checkAssignment(ctx)
}

// CanReassign evaluates whether a finding's responsible user or due date can change.
// Rules:
// - Actor must be an auditor or field auditor
// - Status must be Asignado or Vencida
// - Responsible user and commitment date are required
func CanReassign(ctx AssignContext) GuardResult {
	if !statusIn(ctx.Status, AwaitingResponse()) {
		return deny("can only reassign findings in status %s or %s (current status: %s)", StatusAssigned, StatusOverdue, ctx.Status)
	}
	return checkAssignment(ctx)
}

func checkAssignment(ctx AssignContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.Reviewers...); !res.Allowed {
		return GuardResult(res)
	}

	var missing []string
	if ctx.ResponsibleID == "" {
		missing = append(missing, "responsible user")
	}
	if ctx.CommitmentDate == "" {
		missing = append(missing, "commitment date")
	}
	if len(missing) > 0 {
		return deny("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !ctx.ResponsibleActive {
		return deny("user %s is not active", ctx.ResponsibleID)
	}

	if _, err := time.Parse(DateLayout, ctx.CommitmentDate); err != nil {
		return deny("invalid commitment date %q (expected YYYY-MM-DD)", ctx.CommitmentDate)
	}

	return allowed()
}

// RespondContext provides context for auditee response guards.
type RespondContext struct {
	ActorID       string
	FindingID     string
	Status        Status
	ResponsibleID string
	Response      string
}

// CanRespond evaluates whether the actor can answer a finding.
// Rules:
// - Status must be Asignado or Vencida
// - Actor must be the responsible user
// - Response text is required
func CanRespond(ctx RespondContext) GuardResult {
	if !statusIn(ctx.Status, AwaitingResponse()) {
		return deny("can only respond to findings in status %s or %s (current status: %s)", StatusAssigned, StatusOverdue, ctx.Status)
	}
	if ctx.ActorID == "" || ctx.ActorID != ctx.ResponsibleID {
		return deny("only the responsible user can respond to finding %s", ctx.FindingID)
	}
	if strings.TrimSpace(ctx.Response) == "" {
		return deny("missing required fields: response")
	}
	return allowed()
}

// ReviewContext provides context for accept and reject guards.
type ReviewContext struct {
	ActorRole string
	FindingID string
	Status    Status
}

// CanAccept evaluates whether a response can be accepted.
// Rules:
// - Actor must be an auditor or field auditor
// - Status must be Respuesta Recibida
func CanAccept(ctx ReviewContext) GuardResult {
	return canReview(ctx, "accept")
}

// CanReject evaluates whether a response can be sent back to the auditee.
// Same rules as CanAccept.
func CanReject(ctx ReviewContext) GuardResult {
	return canReview(ctx, "reject")
}

func canReview(ctx ReviewContext, verb string) GuardResult {
	if res := access.Require(ctx.ActorRole, access.Reviewers...); !res.Allowed {
		return GuardResult(res)
	}
	if ctx.Status != StatusResponseReceived {
		return deny("can only %s findings in status %s (current status: %s)", verb, StatusResponseReceived, ctx.Status)
	}
	return allowed()
}

// DeleteContext provides context for finding deletion guards.
type DeleteContext struct {
	ActorRole string
	FindingID string
}

// CanDelete evaluates whether a finding can be hard-deleted.
// Rules:
// - Actor must be an auditor
func CanDelete(ctx DeleteContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	return allowed()
}

func statusIn(s Status, set []Status) bool {
	for _, st := range set {
		if st == s {
			return true
		}
	}
	return false
}
