package scoring

import "math"

// Factor names an evaluation weight.
type Factor string

const (
	FactorRiskLevel      Factor = "nivel_riesgo"
	FactorMonthsSince    Factor = "meses_ultima_auditoria"
	FactorFindingsLast   Factor = "hallazgos_ult_auditoria"
	FactorFindingsSolved Factor = "hallazgos_solucionados"
	FactorRotationCycle  Factor = "ciclo_rotacion"
)

const (
	maxNormalizedScore      = 5.0
	monthsForFullScore      = 12.0
	cycleMonthsForFullScore = 24.0
)

// AllFactors returns the five weighted factors in display order.
func AllFactors() []Factor {
	return []Factor{FactorRiskLevel, FactorMonthsSince, FactorFindingsLast, FactorFindingsSolved, FactorRotationCycle}
}

// Weights maps each factor to its weight in [0,1].
type Weights map[Factor]float64

// DefaultWeights returns the weight set installed on a fresh database.
func DefaultWeights() Weights {
	return Weights{
		FactorRiskLevel:      0.30,
		FactorMonthsSince:    0.20,
		FactorFindingsLast:   0.20,
		FactorFindingsSolved: 0.15,
		FactorRotationCycle:  0.15,
	}
}

// weight returns w[f], falling back to the default weight when the factor is absent.
func (w Weights) weight(f Factor) float64 {
	if v, ok := w[f]; ok {
		return v
	}
	return DefaultWeights()[f]
}

// Evaluation is the snapshot of a universe evaluation that feeds the score.
type Evaluation struct {
	RiskLevel          int
	MonthsSinceAudit   int
	FindingsLastAudit  int
	FindingsResolved   int
	RotationCycleMonth int
}

// Terms holds each normalized factor before weighting.
type Terms struct {
	Risk       float64
	Months     float64
	Findings   float64
	Unresolved float64
	Cycle      float64
}

// Normalize converts raw evaluation fields into 0-5 terms.
func Normalize(ev Evaluation) Terms {
	pctResolved := 0.0
	if ev.FindingsLastAudit > 0 {
		pctResolved = float64(ev.FindingsResolved) / float64(ev.FindingsLastAudit) * maxNormalizedScore
	}
	return Terms{
		Risk:       float64(ev.RiskLevel),
		Months:     math.Min(float64(ev.MonthsSinceAudit)/monthsForFullScore*maxNormalizedScore, maxNormalizedScore),
		Findings:   math.Min(float64(ev.FindingsLastAudit), maxNormalizedScore),
		Unresolved: maxNormalizedScore - pctResolved,
		Cycle:      math.Min(float64(ev.RotationCycleMonth)/cycleMonthsForFullScore*maxNormalizedScore, maxNormalizedScore),
	}
}

// CalculateCriticality returns the weighted criticality score of an evaluation.
// Weights are used as given; the sum-to-one rule belongs to weight validation.
func CalculateCriticality(ev Evaluation, w Weights) float64 {
	t := Normalize(ev)
	return t.Risk*w.weight(FactorRiskLevel) +
		t.Months*w.weight(FactorMonthsSince) +
		t.Findings*w.weight(FactorFindingsLast) +
		t.Unresolved*w.weight(FactorFindingsSolved) +
		t.Cycle*w.weight(FactorRotationCycle)
}

// CriticalityLevel is CalculateCriticality followed by LevelForScore.
func CriticalityLevel(ev Evaluation, w Weights) (float64, RiskLevel) {
	score := CalculateCriticality(ev, w)
	return score, LevelForScore(score)
}
