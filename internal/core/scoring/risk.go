// Package scoring contains the pure risk and criticality calculations.
// This is part of the Functional Core - no I/O, only pure functions.
package scoring

// RiskLevel is one of the five ordered risk labels.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Muy Bajo"
	RiskLow      RiskLevel = "Bajo"
	RiskMedium   RiskLevel = "Medio"
	RiskHigh     RiskLevel = "Alto"
	RiskVeryHigh RiskLevel = "Muy Alto"
)

// AllRiskLevels returns the labels ordered from lowest to highest.
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}
}

// Rank returns 1 (Muy Bajo) through 5 (Muy Alto), or 0 for an unknown label.
func (l RiskLevel) Rank() int {
	for i, level := range AllRiskLevels() {
		if level == l {
			return i + 1
		}
	}
	return 0
}

// IsValid reports whether the label is one of the five known levels.
func (l RiskLevel) IsValid() bool {
	return l.Rank() > 0
}

// LevelForScore maps a score on the 1-5 scale to its label.
// Thresholds are inclusive upper bounds: <=1 Muy Bajo, <=2 Bajo, <=3 Medio, <=4 Alto.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score <= 1.0:
		return RiskVeryLow
	case score <= 2.0:
		return RiskLow
	case score <= 3.0:
		return RiskMedium
	case score <= 4.0:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// CalculateRiskLevel derives the finding risk label from probability and impact.
// Callers are expected to pass values already within 1-5; no clamping happens here.
func CalculateRiskLevel(probability, impact int) RiskLevel {
	average := float64(probability+impact) / 2
	return LevelForScore(average)
}
