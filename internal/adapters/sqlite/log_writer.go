package sqlite

import (
	"context"

	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/secondary"
)

// AuditLogWriter implements secondary.AuditLogWriter using AuditLogRepository.
type AuditLogWriter struct {
	logRepo secondary.AuditLogRepository
}

// NewAuditLogWriter creates a new AuditLogWriter.
func NewAuditLogWriter(logRepo secondary.AuditLogRepository) *AuditLogWriter {
	return &AuditLogWriter{logRepo: logRepo}
}

// Record appends an entry attributed to the actor in ctx.
// Anonymous actions (seeding, sweeps run outside a session) are stored without a user.
func (w *AuditLogWriter) Record(ctx context.Context, action, module, detail string) error {
	actor, _ := ctxutil.ActorFromContext(ctx)

	id, err := w.logRepo.GetNextID(ctx)
	if err != nil {
		return err
	}

	return w.logRepo.Create(ctx, &secondary.AuditLogRecord{
		ID:       id,
		UserID:   actor.UserID,
		Username: actor.Username,
		Action:   action,
		Module:   module,
		Detail:   detail,
	})
}

var _ secondary.AuditLogWriter = (*AuditLogWriter)(nil)
