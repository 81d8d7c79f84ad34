// Package evaluation contains the pure rules for universe evaluations.
package evaluation

import (
	"fmt"
	"time"

	"github.com/example/auditplus/internal/core/scoring"
)

const dateLayout = "2006-01-02"

// Defaults applied to a universe project with no stored evaluation.
const (
	DefaultRiskLevel     = 1
	DefaultRotationCycle = 12
	NoAuditStatus        = "N/A"
)

// Default returns the evaluation shown for a project that was never evaluated.
func Default() scoring.Evaluation {
	return scoring.Evaluation{RiskLevel: DefaultRiskLevel, RotationCycleMonth: DefaultRotationCycle}
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

// Validate checks the ranges of manually entered evaluation fields.
// Rules:
// - Risk level within 1-5
// - Months and finding counts are non-negative
// - Resolved findings cannot exceed the findings of the last audit
// - Rotation cycle is at least one month
func Validate(ev scoring.Evaluation) GuardResult {
	if ev.RiskLevel < 1 || ev.RiskLevel > 5 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("risk level must be between 1 and 5 (got %d)", ev.RiskLevel)}
	}
	if ev.MonthsSinceAudit < 0 || ev.FindingsLastAudit < 0 || ev.FindingsResolved < 0 {
		return GuardResult{Allowed: false, Reason: "months and finding counts cannot be negative"}
	}
	if ev.FindingsResolved > ev.FindingsLastAudit {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("resolved findings (%d) exceed findings of the last audit (%d)", ev.FindingsResolved, ev.FindingsLastAudit),
		}
	}
	if ev.RotationCycleMonth < 1 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("rotation cycle must be at least 1 month (got %d)", ev.RotationCycleMonth)}
	}
	return GuardResult{Allowed: true}
}

// LatestAudit describes the most recent plan-project copied from a universe project.
type LatestAudit struct {
	Status        string
	ActualEnd     string
	TotalFindings int
	Accepted      int
}

// Derived holds the evaluation fields computed from plan history.
type Derived struct {
	MonthsSinceAudit  int
	FindingsLastAudit int
	FindingsResolved  int
	AuditStatus       string
	AuditDate         string
}

// Derive computes evaluation fields from the latest audit as of today.
// Months are whole 30-day periods since the actual end date, never negative.
func Derive(latest LatestAudit, today time.Time) Derived {
	d := Derived{
		FindingsLastAudit: latest.TotalFindings,
		FindingsResolved:  latest.Accepted,
		AuditStatus:       latest.Status,
		AuditDate:         latest.ActualEnd,
	}
	if d.AuditStatus == "" {
		d.AuditStatus = NoAuditStatus
	}
	d.MonthsSinceAudit = MonthsSince(latest.ActualEnd, today)
	return d
}

// MonthsSince returns whole 30-day periods between date and today, or 0 if date is empty or malformed.
func MonthsSince(date string, today time.Time) int {
	if date == "" {
		return 0
	}
	t, err := time.ParseInLocation(dateLayout, date, today.Location())
	if err != nil {
		return 0
	}
	y, m, dd := today.Date()
	midnight := time.Date(y, m, dd, 0, 0, 0, 0, today.Location())
	days := int(midnight.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 30
}
