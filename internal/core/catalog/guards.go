// Package catalog contains the pure business logic for catalog values.
// Catalog values are deactivated, never deleted, so historical records stay resolvable.
package catalog

import (
	"fmt"
	"strings"

	"github.com/example/auditplus/internal/core/access"
)

// Type names a catalog.
type Type string

const (
	TypeAuditType Type = "tipo_auditoria"
	TypeProcess   Type = "proceso"
	TypeArea      Type = "area"
)

// AllTypes returns the known catalog types.
func AllTypes() []Type {
	return []Type{TypeAuditType, TypeProcess, TypeArea}
}

// IsValidType reports whether t is a known catalog type.
func IsValidType(t string) bool {
	for _, known := range AllTypes() {
		if string(known) == t {
			return true
		}
	}
	return false
}

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

// CreateEntryContext provides context for catalog entry creation guards.
type CreateEntryContext struct {
	ActorRole   string
	Type        string
	Value       string
	ValueExists bool
}

// CanCreateEntry evaluates whether a catalog entry can be created.
// Rules:
// - Actor must be an auditor
// - Type must be known
// - Value is required and unique per type
func CanCreateEntry(ctx CreateEntryContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	if !IsValidType(ctx.Type) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown catalog type %q", ctx.Type)}
	}
	if strings.TrimSpace(ctx.Value) == "" {
		return GuardResult{Allowed: false, Reason: "missing required fields: value"}
	}
	if ctx.ValueExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s %q already exists", ctx.Type, ctx.Value)}
	}
	return GuardResult{Allowed: true}
}

// ToggleContext provides context for activate and deactivate guards.
type ToggleContext struct {
	ActorRole string
	EntryID   string
	IsActive  bool
}

// CanDeactivate evaluates whether a catalog entry can be deactivated.
func CanDeactivate(ctx ToggleContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	if !ctx.IsActive {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("catalog entry %s is already inactive", ctx.EntryID)}
	}
	return GuardResult{Allowed: true}
}

// CanActivate evaluates whether a catalog entry can be reactivated.
func CanActivate(ctx ToggleContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	if ctx.IsActive {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("catalog entry %s is already active", ctx.EntryID)}
	}
	return GuardResult{Allowed: true}
}
