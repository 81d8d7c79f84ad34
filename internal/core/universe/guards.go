package universe

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/auditplus/internal/core/access"
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

// AllowedAttachmentExtensions lists the file types accepted as attachments.
var AllowedAttachmentExtensions = []string{"pdf", "docx", "xlsx", "png", "jpg", "jpeg"}

// CreateProjectContext provides context for universe project creation guards.
type CreateProjectContext struct {
	ActorRole  string
	Code       string
	Name       string
	CodeExists bool
}

// CanCreateProject evaluates whether a universe project can be created.
// Rules:
// - Actor must be an auditor
// - Code and name are required
// - Code must be unique
func CanCreateProject(ctx CreateProjectContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	if res := requireCodeAndName(ctx.Code, ctx.Name); !res.Allowed {
		return res
	}
	if ctx.CodeExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("project code %s already exists", ctx.Code)}
	}
	return GuardResult{Allowed: true}
}

// NodeContext provides context for section and subsection guards.
type NodeContext struct {
	ActorRole    string
	ParentID     string
	ParentExists bool
	Code         string
	Name         string
}

// CanAddNode evaluates whether a section or subsection can be added under a parent.
// Rules:
// - Actor must be an auditor
// - Parent must exist
// - Code and name are required
func CanAddNode(ctx NodeContext) GuardResult {
	if res := access.Require(ctx.ActorRole, access.RoleAuditor); !res.Allowed {
		return GuardResult(res)
	}
	if !ctx.ParentExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s not found", ctx.ParentID)}
	}
	return requireCodeAndName(ctx.Code, ctx.Name)
}

func requireCodeAndName(code, name string) GuardResult {
	var missing []string
	if strings.TrimSpace(code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	return GuardResult{Allowed: true}
}

// ValidateAttachmentName checks the file extension against AllowedAttachmentExtensions.
func ValidateAttachmentName(filename string) GuardResult {
	if strings.TrimSpace(filename) == "" {
		return GuardResult{Allowed: false, Reason: "missing required fields: filename"}
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range AllowedAttachmentExtensions {
		if ext == allowed {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("file type %q is not allowed (accepted: %s)", ext, strings.Join(AllowedAttachmentExtensions, ", ")),
	}
}
