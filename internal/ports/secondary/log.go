package secondary

import "context"

// AuditLogWriter defines the interface for appending business audit entries.
// Implementations extract the actor from context.
type AuditLogWriter interface {
	// Record appends an entry for the actor in ctx.
	// module names the functional area (e.g. "Hallazgos"); detail is free text.
	Record(ctx context.Context, action, module, detail string) error
}
