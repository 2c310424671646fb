package service

import (
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// Address tenure categories.
const (
	TenureHigh   = "High"
	TenureMedium = "Medium"
	TenureLow    = "Low"
)

const (
	addressTenureHorizonMonths = 24
	addressChangeHorizon       = 4
)

// NetworkTrust derives the Community Trust Coefficient and the address
// stability adjustment from aggregate network ratios.
type NetworkTrust struct {
	policy Policy
}

// NewNetworkTrust creates a NetworkTrust bound to a validated policy.
func NewNetworkTrust(policy Policy) *NetworkTrust {
	return &NetworkTrust{policy: policy}
}

// Compute returns the network adjustment for profile. A nil profile yields
// an unavailable result with zero adjustments.
func (n *NetworkTrust) Compute(profile *valueobject.NetworkProfile) model.NetworkAdjustment {
	if profile == nil {
		return model.NetworkAdjustment{}
	}

	out := model.NetworkAdjustment{Available: true}

	if profile.HasContactData() {
		components, ctc := n.ctc(*profile)
		out.CTCComponents = &components
		out.CTCScore = &ctc
		out.CTCAdjustmentPct = clamp((ctc-0.5)*2*n.policy.CTCCapPct, -n.policy.CTCCapPct, n.policy.CTCCapPct)
	}

	if profile.HasAddressData() {
		score := addressStability(profile.AddressTenureMonths(), profile.AddressChangeCount())
		out.AddressStabilityScore = &score
		out.TenureCategory = tenureCategory(profile.AddressTenureMonths(), profile.AddressChangeCount())
		out.AddressAdjustmentPct = clamp((score-0.5)*2*n.policy.AddressCapPct, -n.policy.AddressCapPct, n.policy.AddressCapPct)
	}

	return out
}

func (n *NetworkTrust) ctc(p valueobject.NetworkProfile) (model.CTCComponents, float64) {
	span := n.policy.ContactScoreMax - n.policy.ContactScoreMin
	c := model.CTCComponents{
		ContactScoreNormalized: clamp((p.AvgContactCreditScore()-n.policy.ContactScoreMin)/span, 0, 1),
		LowRiskContactRatio:    p.LowRiskContactRatio(),
		NetworkStabilityRatio:  p.NetworkStabilityRatio(),
		HighRiskInverse:        1 - p.HighRiskContactRatio(),
	}
	w := n.policy.CTCWeights
	score := w.ContactScore*c.ContactScoreNormalized +
		w.LowRiskRatio*c.LowRiskContactRatio +
		w.NetworkStability*c.NetworkStabilityRatio +
		w.HighRiskInverse*c.HighRiskInverse
	return c, clamp(score, 0, 1)
}

func addressStability(tenureMonths, changes int) float64 {
	tenure := math.Min(1, float64(tenureMonths)/addressTenureHorizonMonths)
	churn := math.Min(1, float64(changes)/addressChangeHorizon)
	return 0.6*tenure + 0.4*(1-churn)
}

func tenureCategory(tenureMonths, changes int) string {
	switch {
	case tenureMonths >= 18 && changes <= 1:
		return TenureHigh
	case tenureMonths >= 6 || changes <= 2:
		return TenureMedium
	default:
		return TenureLow
	}
}
