package primary

import "context"

// AuditLogService defines the primary port for reading the business audit trail.
type AuditLogService interface {
	// ListEntries lists entries newest first.
	ListEntries(ctx context.Context, filters AuditLogFilters) ([]*AuditLogEntry, error)
}

// AuditLogFilters contains filter options for listing audit log entries.
type AuditLogFilters struct {
	UserID string
	Module string
	Limit  int
}

// AuditLogEntry is one recorded action.
type AuditLogEntry struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Action    string `json:"action"`
	Module    string `json:"module"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}
