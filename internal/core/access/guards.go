// Package access contains the pure role rules for users.
// Guards are pure functions that evaluate preconditions without side effects.
package access

import (
	"fmt"
	"strings"
)

// Role is a global user role.
type Role string

const (
	RoleAuditor      Role = "auditor"
	RoleSupervisor   Role = "supervisor"
	RoleFieldAuditor Role = "auditor_campo"
	RoleAuditee      Role = "auditado"
)

// MinPasswordLength is the shortest password accepted on create or reset.
const MinPasswordLength = 6

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{RoleAuditor, RoleSupervisor, RoleFieldAuditor, RoleAuditee}
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}

// Reviewers are the roles allowed to raise and review findings.
var Reviewers = []Role{RoleAuditor, RoleFieldAuditor}

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

// Require evaluates whether actorRole is one of roles.
func Require(actorRole string, roles ...Role) GuardResult {
	for _, r := range roles {
		if string(r) == actorRole {
			return GuardResult{Allowed: true}
		}
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	if actorRole == "" {
		actorRole = "anonymous"
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("role %s is not allowed (requires %s)", actorRole, strings.Join(names, " or ")),
	}
}

// CreateUserContext provides context for user creation guards.
type CreateUserContext struct {
	Username       string
	FullName       string
	Password       string
	Role           string
	UsernameExists bool
}

// CanCreateUser evaluates whether a user can be created.
// Rules:
// - Username, full name and password are required
// - Password must be at least MinPasswordLength characters
// - Role must be known
// - Username must be unique
func CanCreateUser(ctx CreateUserContext) GuardResult {
	var missing []string
	if strings.TrimSpace(ctx.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(ctx.FullName) == "" {
		missing = append(missing, "full name")
	}
	if ctx.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}

	if res := CheckPassword(ctx.Password); !res.Allowed {
		return res
	}

	if !IsValidRole(ctx.Role) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown role %q", ctx.Role)}
	}

	if ctx.UsernameExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("username %s already exists", ctx.Username)}
	}

	return GuardResult{Allowed: true}
}

// CheckPassword evaluates the password length rule.
func CheckPassword(password string) GuardResult {
	if len(password) < MinPasswordLength {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return GuardResult{Allowed: true}
}

// ChangeRoleContext provides context for role change guards.
type ChangeRoleContext struct {
	ActorID  string
	TargetID string
	NewRole  string
}

// CanChangeRole evaluates whether a user's role can be changed.
// Rules:
// - Role must be known
// - Actors cannot change their own role
func CanChangeRole(ctx ChangeRoleContext) GuardResult {
	if !IsValidRole(ctx.NewRole) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown role %q", ctx.NewRole)}
	}
	if ctx.ActorID != "" && ctx.ActorID == ctx.TargetID {
		return GuardResult{Allowed: false, Reason: "cannot change your own role"}
	}
	return GuardResult{Allowed: true}
}

// DeactivateUserContext provides context for user deactivation guards.
type DeactivateUserContext struct {
	ActorID  string
	TargetID string
	IsActive bool
}

// CanDeactivateUser evaluates whether a user can be deactivated.
// Rules:
// - User must be active
// - Actors cannot deactivate themselves
func CanDeactivateUser(ctx DeactivateUserContext) GuardResult {
	if !ctx.IsActive {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("user %s is already inactive", ctx.TargetID)}
	}
	if ctx.ActorID != "" && ctx.ActorID == ctx.TargetID {
		return GuardResult{Allowed: false, Reason: "cannot deactivate your own account"}
	}
	return GuardResult{Allowed: true}
}
