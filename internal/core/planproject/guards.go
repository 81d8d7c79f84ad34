// Package planproject contains the pure business logic for plan-project scheduling and status.
// Guards are pure functions that evaluate preconditions without side effects.
package planproject

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/auditplus/internal/core/access"
)

// DateLayout is the calendar date format of planned and actual dates.
const DateLayout = "2006-01-02"

// Status represents the possible states of a plan-project.
type Status string

const (
	StatusNotStarted Status = "Sin Iniciar"
	StatusInProgress Status = "En Proceso"
	StatusCompleted  Status = "Completada"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted}
}

// InitialStatus returns the status of a freshly copied plan-project.
func InitialStatus() Status {
	return StatusNotStarted
}

// Field labels reported when a start is blocked.
const (
	FieldPlannedStart = "planned start date"
	FieldPlannedEnd   = "planned end date"
	FieldSupervisor   = "supervisor"
	FieldFieldAuditor = "field auditor"
)

// GuardResult represents the outcome of a guard evaluation.
// MissingFields and Pending enumerate the blocking items when a transition is refused.
type GuardResult struct {
	Allowed       bool
	Reason        string
	MissingFields []string
	Pending       int
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StartContext provides context for start guards.
type StartContext struct {
	PlanProjectID  string
	Status         Status
	PlannedStart   string
	PlannedEnd     string
	SupervisorID   string
	FieldAuditorID string
}

// CanStart evaluates whether a plan-project can move to En Proceso.
// Rules:
// - Status must be Sin Iniciar
// - Planned start/end dates, supervisor and field auditor must all be set
func CanStart(ctx StartContext) GuardResult {
	if ctx.Status != StatusNotStarted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only start plan-projects in status %s (current status: %s)", StatusNotStarted, ctx.Status),
		}
	}

	var missing []string
	if ctx.PlannedStart == "" {
		missing = append(missing, FieldPlannedStart)
	}
	if ctx.PlannedEnd == "" {
		missing = append(missing, FieldPlannedEnd)
	}
	if ctx.SupervisorID == "" {
		missing = append(missing, FieldSupervisor)
	}
	if ctx.FieldAuditorID == "" {
		missing = append(missing, FieldFieldAuditor)
	}
	if len(missing) > 0 {
		return GuardResult{
			Allowed:       false,
			Reason:        fmt.Sprintf("cannot start plan-project %s: missing %s", ctx.PlanProjectID, strings.Join(missing, ", ")),
			MissingFields: missing,
		}
	}

	return GuardResult{Allowed: true}
}

// CompleteContext provides context for completion guards.
type CompleteContext struct {
	PlanProjectID string
	Status        Status
	TotalFindings int
	Accepted      int
}

// CanComplete evaluates whether a plan-project can move to Completada.
// Rules:
// - Status must be En Proceso
// - At least one finding must exist
// - Every finding must be Aceptada
func CanComplete(ctx CompleteContext) GuardResult {
	if ctx.Status != StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only complete plan-projects in status %s (current status: %s)", StatusInProgress, ctx.Status),
		}
	}

	if ctx.TotalFindings == 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot complete plan-project %s: it has no findings", ctx.PlanProjectID),
		}
	}

	pending := ctx.TotalFindings - ctx.Accepted
	if pending > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot complete plan-project %s: %d pending finding(s)", ctx.PlanProjectID, pending),
			Pending: pending,
		}
	}

	return GuardResult{Allowed: true}
}

// ReopenContext provides context for reopen guards.
type ReopenContext struct {
	PlanProjectID string
	Status        Status
	ActorRole     string
}

// CanReopen evaluates whether a completed plan-project can go back to En Proceso.
// Rules:
// - Status must be Completada
// - Actor must be an auditor
func CanReopen(ctx ReopenContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult{Allowed: false, Reason: res.Reason}
	}
	if ctx.Status != StatusCompleted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only reopen plan-projects in status %s (current status: %s)", StatusCompleted, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// ScheduleContext provides context for schedule edit guards.
type ScheduleContext struct {
	ActorRole    string
	Status       Status
	PlannedStart string
	PlannedEnd   string
}

// CanEditSchedule evaluates whether planned dates and assignees can change.
// Rules:
// - Actor must be an auditor or supervisor
// - Completed plan-projects are frozen
// - Planned dates, when set, must be YYYY-MM-DD
// - End date cannot precede start date
func CanEditSchedule(ctx ScheduleContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor, access.RoleSupervisor); !res.Allowed {
		return GuardResult{Allowed: false, Reason: res.Reason}
	}
	if ctx.Status == StatusCompleted {
		return GuardResult{Allowed: false, Reason: "cannot edit the schedule of a completed plan-project"}
	}
	start, err := parsePlannedDate("start", ctx.PlannedStart)
	if err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}
	end, err := parsePlannedDate("end", ctx.PlannedEnd)
	if err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("planned end date %s is before planned start date %s", ctx.PlannedEnd, ctx.PlannedStart),
		}
	}
	return GuardResult{Allowed: true}
}

func parsePlannedDate(which, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("planned %s date %q is not a valid date (YYYY-MM-DD)", which, value)
	}
	return t, nil
}
