// Package plan contains the pure business logic for annual audit plan operations.
// Guards are pure functions that evaluate preconditions without side effects.
package plan

import (
	"fmt"
	"strings"

	"github.com/example/auditplus/internal/core/access"
)

// Plan statuses.
const (
	StatusActive = "Activo"
	StatusClosed = "Cerrado"
)

// Plan years accepted on creation.
const (
	MinYear = 2020
	MaxYear = 2040
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

// CreatePlanContext provides context for plan creation guards.
type CreatePlanContext struct {
	ActorRole  string
	Code       string
	Name       string
	Year       int
	CodeExists bool
}

// CopyProjectsContext provides context for copy-to-plan guards.
type CopyProjectsContext struct {
	ActorRole  string
	PlanID     string
	PlanStatus string
	Selected   int
}

// DeletePlanContext provides context for plan deletion guards.
type DeletePlanContext struct {
	ActorRole    string
	PlanID       string
	FindingCount int
}

// CanCreatePlan evaluates whether a plan can be created.
// Rules:
// - Actor must be an auditor
// - Code and name are required
// - Year must be within MinYear-MaxYear
// - Code must be unique
func CanCreatePlan(ctx CreatePlanContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}

	var missing []string
	if strings.TrimSpace(ctx.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(ctx.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}

	if ctx.Year < MinYear || ctx.Year > MaxYear {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("year must be between %d and %d (got %d)", MinYear, MaxYear, ctx.Year),
		}
	}

	if ctx.CodeExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("plan code %s already exists", ctx.Code),
		}
	}

	return GuardResult{Allowed: true}
}

// CanCopyProjects evaluates whether universe projects can be copied into a plan.
// Rules:
// - Actor must be an auditor
// - Plan must be active
// - At least one project must be selected
func CanCopyProjects(ctx CopyProjectsContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}

	if ctx.PlanStatus != StatusActive {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot add projects to plan %s (status: %s)", ctx.PlanID, ctx.PlanStatus),
		}
	}

	if ctx.Selected == 0 {
		return GuardResult{Allowed: false, Reason: "select at least one project"}
	}

	return GuardResult{Allowed: true}
}

// CanDeletePlan evaluates whether a plan can be deleted.
// Rules:
// - Actor must be an auditor
// - Plan must not have findings (they reference the plan without cascade)
func CanDeletePlan(ctx DeletePlanContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}

	if ctx.FindingCount > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot delete plan %s: it has %d finding(s)", ctx.PlanID, ctx.FindingCount),
		}
	}

	return GuardResult{Allowed: true}
}
