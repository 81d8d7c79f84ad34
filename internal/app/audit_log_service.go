package app

import (
	"context"
	"fmt"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// defaultLogLimit caps a listing when the caller gives no limit.
const defaultLogLimit = 200

// AuditLogServiceImpl implements the AuditLogService interface.
type AuditLogServiceImpl struct {
	logRepo secondary.AuditLogRepository
}

// NewAuditLogService creates a new AuditLogService with injected dependencies.
func NewAuditLogService(logRepo secondary.AuditLogRepository) *AuditLogServiceImpl {
	return &AuditLogServiceImpl{logRepo: logRepo}
}

// ListEntries lists audit log entries, newest first. Only auditors read the trail.
func (s *AuditLogServiceImpl) ListEntries(ctx context.Context, filters primary.AuditLogFilters) ([]*primary.AuditLogEntry, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	records, err := s.logRepo.List(ctx, secondary.AuditLogFilters{
		UserID: filters.UserID,
		Module: filters.Module,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}

	result := make([]*primary.AuditLogEntry, len(records))
	for i, r := range records {
		result[i] = &primary.AuditLogEntry{
			ID:        r.ID,
			UserID:    r.UserID,
			Username:  r.Username,
			Action:    r.Action,
			Module:    r.Module,
			Detail:    r.Detail,
			CreatedAt: r.CreatedAt,
		}
	}
	return result, nil
}

// Ensure AuditLogServiceImpl implements the interface
var _ primary.AuditLogService = (*AuditLogServiceImpl)(nil)
