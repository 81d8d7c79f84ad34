package primary

import "context"

// EvaluationService defines the primary port for universe evaluations and criticality.
type EvaluationService interface {
	// ListEvaluations returns one row per universe project, highest criticality first.
	// Projects never evaluated are shown with default values.
	ListEvaluations(ctx context.Context) ([]*Evaluation, error)

	// SaveEvaluation stores an evaluation and its criticality under the current weights.
	SaveEvaluation(ctx context.Context, req SaveEvaluationRequest) (*Evaluation, error)

	// SyncFromPlans derives audit history fields from each project's latest plan-project.
	SyncFromPlans(ctx context.Context) (int, error)
}

// SaveEvaluationRequest contains the manually entered evaluation fields.
type SaveEvaluationRequest struct {
	ProjectID         string
	RiskLevel         int
	MonthsSinceAudit  int
	FindingsLastAudit int
	FindingsResolved  int
	RotationCycle     int
}

// Evaluation is a universe project's prioritization snapshot.
type Evaluation struct {
	ProjectID         string  `json:"project_id"`
	ProjectCode       string  `json:"project_code"`
	ProjectName       string  `json:"project_name"`
	RiskLevel         int     `json:"risk_level"`
	MonthsSinceAudit  int     `json:"months_since_audit"`
	FindingsLastAudit int     `json:"findings_last_audit"`
	FindingsResolved  int     `json:"findings_resolved"`
	LastAuditStatus   string  `json:"last_audit_status"`
	LastAuditDate     string  `json:"last_audit_date,omitempty"`
	RotationCycle     int     `json:"rotation_cycle"`
	Criticality       float64 `json:"criticality"`
	CriticalityLevel  string  `json:"criticality_level"`
	Stored            bool    `json:"stored"`
	EvaluatedAt       string  `json:"evaluated_at,omitempty"`
}
