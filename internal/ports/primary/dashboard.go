package primary

import "context"

// DashboardService defines the primary port for summary counts.
type DashboardService interface {
	// Summary counts findings and plan-projects, optionally within one plan.
	Summary(ctx context.Context, planID string) (*DashboardSummary, error)
}

// DashboardSummary holds grouped counts.
type DashboardSummary struct {
	PlanID           string         `json:"plan_id,omitempty"`
	TotalFindings    int            `json:"total_findings"`
	FindingsByStatus map[string]int `json:"findings_by_status"`
	FindingsByRisk   map[string]int `json:"findings_by_risk"`
	FindingsByArea   map[string]int `json:"findings_by_area"`
	ProjectsByStatus map[string]int `json:"projects_by_status"`
	OverdueSwept     int64          `json:"overdue_swept"`
	UniverseProjects int            `json:"universe_projects"`
	CriticalProjects int            `json:"critical_projects"`
}
