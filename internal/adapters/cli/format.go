package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/auditplus/internal/core/finding"
	"github.com/example/auditplus/internal/core/planproject"
	"github.com/example/auditplus/internal/core/scoring"
)

// newTable returns a tabwriter aligned the way every list command prints.
func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// levelColor colours a risk or criticality level.
func levelColor(level string) string {
	switch scoring.RiskLevel(level) {
	case scoring.RiskVeryHigh:
		return color.New(color.FgHiRed, color.Bold).Sprint(level)
	case scoring.RiskHigh:
		return color.New(color.FgRed).Sprint(level)
	case scoring.RiskMedium:
		return color.New(color.FgYellow).Sprint(level)
	case scoring.RiskLow:
		return color.New(color.FgGreen).Sprint(level)
	case scoring.RiskVeryLow:
		return color.New(color.FgHiGreen).Sprint(level)
	}
	return level
}

// statusColor colours finding and plan-project statuses.
func statusColor(status string) string {
	switch status {
	case string(finding.StatusOverdue):
		return color.New(color.FgHiRed).Sprint(status)
	case string(finding.StatusUnassigned), string(planproject.StatusNotStarted):
		return color.New(color.FgHiBlack).Sprint(status)
	case string(finding.StatusAssigned), string(planproject.StatusInProgress):
		return color.New(color.FgCyan).Sprint(status)
	case string(finding.StatusResponseReceived):
		return color.New(color.FgYellow).Sprint(status)
	case string(finding.StatusAccepted), string(planproject.StatusCompleted):
		return color.New(color.FgHiGreen).Sprint(status)
	}
	return status
}

func success(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
