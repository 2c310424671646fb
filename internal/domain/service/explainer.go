package service

import (
	"math"
	"sort"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// Network reason codes.
const (
	CodeCommunityTrust   valueobject.ReasonCode = "N01"
	CodeAddressStability valueobject.ReasonCode = "N02"
)

// impacts are compared at this resolution so ties stay ties.
const impactResolution = 1e6

type factorText struct {
	positive string
	negative string
}

var factorTexts = map[valueobject.ReasonCode]factorText{
	CodeCommunityTrust:    {"Strong community trust network", "Limited community trust network"},
	CodeAddressStability:  {"Stable residential history", "Frequent address changes"},
	"S01":                 {"Consistent income rhythm", "Irregular income pattern"},
	"S02":                 {"Regular savings habit", "Limited savings activity"},
	"S03":                 {"Long-standing device usage", "Frequent device changes or reinstalls"},
	"S04":                 {"Spending well matched to income", "Volatile spending relative to income"},
	"S05":                 {"Reliable utility payments", "Inconsistent utility payments"},
	"S06":                 {"Loyal merchant relationships", "Elevated refunds or disputes"},
	"S07":                 {"Early or on-time repayments", "Tendency toward late repayments"},
	"S08":                 {"Resilient local economic profile", "Exposure to local economic shocks"},
	CodeAge:               {"Age profile supports creditworthiness", "Limited credit history for age group"},
	CodeIncome:            {"Strong monthly income", "Low monthly income"},
	CodeAccountAge:        {"Seasoned account history", "New account"},
	CodeTransactionVolume: {"Healthy transaction activity", "Unusual transaction volume"},
	CodeDeviceChanges:     {"Stable device usage", "Frequent device changes"},
	CodeTransactionSize:   {"Typical transaction size", "Unusually large average transaction size"},
	CodeLocationRisk:      {"Low-risk location", "Elevated location risk"},
	CodeFraudFlag:         {"No prior fraud history", "Previous fraud flag on record"},
	CodeChargebacks:       {"No chargeback history", "Chargeback history"},
	CodeLowValueFrequency: {"Regular everyday spending", "High-frequency low-value transaction pattern"},
}

// Explanation is the ranked, deterministic account of a score.
type Explanation struct {
	ReasonCodes []string
	KeyFactors  []valueobject.KeyFactor
}

// Explainer ranks contributions to the final score by absolute effect.
type Explainer struct {
	policy Policy
}

// NewExplainer creates an Explainer bound to a validated policy.
func NewExplainer(policy Policy) *Explainer {
	return &Explainer{policy: policy}
}

type contribution struct {
	code   valueobject.ReasonCode
	impact float64
}

// Explain derives reason codes and key factors from a fused result. Candidates
// are collected network first, then stability signals in category order,
// then rule drivers, and the stable sort keeps that order among equal impacts.
func (e *Explainer) Explain(result model.ScoringResult) Explanation {
	base := float64(result.BaseRuleScore)
	w := e.policy.RuleWeight

	var candidates []contribution
	if result.Network.CTCScore != nil {
		candidates = append(candidates, contribution{CodeCommunityTrust, w * base * result.CTCAdjustmentPct / 100})
	}
	if result.Network.AddressStabilityScore != nil {
		candidates = append(candidates, contribution{CodeAddressStability, w * base * result.AddressAdjustmentPct / 100})
	}
	if n := len(result.Stability.Signals); n > 0 {
		for _, s := range result.Stability.Signals {
			share := s.AdjustmentPct / float64(n)
			candidates = append(candidates, contribution{valueobject.ReasonCode(s.Category.Code()), w * base * share / 100})
		}
	}
	total := RuleNeutralBase
	for _, d := range result.RuleDrivers {
		total += d.Points
	}
	adjust := 1 + (result.CTCAdjustmentPct+result.AddressAdjustmentPct+result.StabilityAdjustmentPct)/100
	enhanced := func(points int) float64 {
		return clamp(clamp(float64(points), ruleScoreMin, ruleScoreMax)*adjust, ruleScoreMin, ruleScoreMax)
	}
	for _, d := range result.RuleDrivers {
		// Effect through the clamped base: points past a bound move nothing.
		effect := enhanced(total) - enhanced(total-d.Points)
		candidates = append(candidates, contribution{d.Code, w * effect})
	}

	material := candidates[:0]
	for _, c := range candidates {
		if math.Abs(c.impact) >= e.policy.MaterialityThreshold && c.impact != 0 {
			material = append(material, c)
		}
	}

	sort.SliceStable(material, func(i, j int) bool {
		return magnitude(material[i].impact) > magnitude(material[j].impact)
	})
	if len(material) > e.policy.ReasonCodeLimit {
		material = material[:e.policy.ReasonCodeLimit]
	}

	out := Explanation{
		ReasonCodes: make([]string, 0, len(material)),
		KeyFactors:  make([]valueobject.KeyFactor, 0, len(material)),
	}
	for _, c := range material {
		direction, text := describe(c)
		out.ReasonCodes = append(out.ReasonCodes, string(c.code)+": "+text)
		out.KeyFactors = append(out.KeyFactors, valueobject.KeyFactor{
			Code:      c.code,
			Factor:    text,
			Direction: direction,
			Impact:    math.Round(c.impact*100) / 100,
		})
	}
	return out
}

func magnitude(v float64) float64 {
	return math.Round(math.Abs(v) * impactResolution)
}

func describe(c contribution) (valueobject.Direction, string) {
	t := factorTexts[c.code]
	if c.impact > 0 {
		return valueobject.DirectionPositive, t.positive
	}
	return valueobject.DirectionNegative, t.negative
}
