package valueobject

import "math"

// ProbabilityOfDefault is the symmetric uncertainty band around the
// estimated default probability, expressed in percent.
type ProbabilityOfDefault struct {
	Estimate       float64 `json:"estimate"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	UncertaintyPct float64 `json:"uncertainty_pct"`
}

// NewProbabilityOfDefault builds the band for probability p in [0,1] and a
// fixed calibration uncertainty in percentage points.
func NewProbabilityOfDefault(p, uncertaintyPct float64) ProbabilityOfDefault {
	estimate := p * 100
	return ProbabilityOfDefault{
		Estimate:       estimate,
		LowerBound:     math.Max(0, estimate-uncertaintyPct),
		UpperBound:     math.Min(100, estimate+uncertaintyPct),
		UncertaintyPct: uncertaintyPct,
	}
}

// Direction of a factor's effect on the final score.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// ReasonCode identifies an explanation entry.
type ReasonCode string

// KeyFactor is one ranked explanation entry.
type KeyFactor struct {
	Code      ReasonCode `json:"code"`
	Factor    string     `json:"factor"`
	Direction Direction  `json:"direction"`
	Impact    float64    `json:"impact"`
}
