package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/auditplus/internal/core/finding"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/secondary"
)

// Audit log modules, as shown to users.
const (
	moduleUsers      = "Usuarios"
	moduleCatalogs   = "Catálogos"
	moduleWeights    = "Pesos"
	moduleUniverse   = "Universo Auditable"
	modulePlan       = "Plan Anual"
	moduleFindings   = "Hallazgos"
	moduleAttachment = "Adjuntos"
	moduleEvaluation = "Evaluación"
)

// Audit log actions.
const (
	actionCreate       = "Crear"
	actionEdit         = "Editar"
	actionDelete       = "Eliminar"
	actionActivate     = "Activar"
	actionDeactivate   = "Desactivar"
	actionChangeRole   = "Cambiar Rol"
	actionResetPass    = "Reset Password"
	actionUpdate       = "Actualizar"
	actionCopy         = "Copiar"
	actionStart        = "Iniciar"
	actionComplete     = "Completar"
	actionReopen       = "Reabrir"
	actionAssign       = "Asignar"
	actionReassign     = "Reasignar"
	actionRespond      = "Responder"
	actionChangeStatus = "Cambiar Estado"
	actionUpload       = "Subir"
	actionEvaluate     = "Evaluar"
	actionImport       = "Importar"
	actionSync         = "Sincronizar"
)

// Activity appends business audit entries on behalf of the actor in context.
// A failed write is logged and swallowed: the mutation it describes is already stored.
type Activity struct {
	writer secondary.AuditLogWriter
	logger *zap.Logger
}

// NewActivity creates an Activity recorder.
func NewActivity(writer secondary.AuditLogWriter, logger *zap.Logger) *Activity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activity{writer: writer, logger: logger}
}

// Record appends one entry.
func (a *Activity) Record(ctx context.Context, action, module, format string, args ...any) {
	if a == nil || a.writer == nil {
		return
	}
	detail := fmt.Sprintf(format, args...)
	if err := a.writer.Record(ctx, action, module, detail); err != nil {
		a.logger.Warn("failed to persist audit log",
			zap.String("action", action),
			zap.String("module", module),
			zap.String("actor", ctxutil.ActorID(ctx)),
			zap.Error(err))
	}
}

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// today is the local calendar date used for sweeps and date stamps.
func (c Clock) today() string {
	return c.now().Format(finding.DateLayout)
}

