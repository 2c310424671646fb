package valueobject

import (
	"math"

	"github.com/bibbank/creditrisk/internal/domain/errs"
)

// Neutral defaults applied to fields missing from a partially supplied profile.
const (
	DefaultContactCreditScore   = 600.0
	DefaultLowRiskContactRatio  = 0.5
	DefaultHighRiskContactRatio = 0.2
	DefaultNetworkStability     = 0.5
	DefaultAddressChangeCount   = 1
	DefaultAddressTenureMonths  = 12
	maxAddressTenureMonths      = 240
)

// NetworkProfileInput carries aggregate network data; nil fields were not supplied.
// Only aggregate ratios are accepted, never contact identifiers.
type NetworkProfileInput struct {
	AvgContactCreditScore *float64
	LowRiskContactRatio   *float64
	HighRiskContactRatio  *float64
	NetworkStabilityRatio *float64
	AddressTenureMonths   *int
	AddressChangeCount    *int
}

// NetworkProfile is the immutable aggregate view of an applicant's contact
// network and address history.
type NetworkProfile struct {
	avgContactCreditScore float64
	lowRiskContactRatio   float64
	highRiskContactRatio  float64
	networkStabilityRatio float64
	addressTenureMonths   int
	addressChangeCount    int
	hasContactData        bool
	hasAddressData        bool
}

// NewNetworkProfile builds a profile from the input. It returns nil when no
// field is supplied, which downstream treats as "network data unavailable".
func NewNetworkProfile(in NetworkProfileInput) (*NetworkProfile, error) {
	hasContact := in.AvgContactCreditScore != nil || in.LowRiskContactRatio != nil ||
		in.HighRiskContactRatio != nil || in.NetworkStabilityRatio != nil
	hasAddress := in.AddressTenureMonths != nil || in.AddressChangeCount != nil
	if !hasContact && !hasAddress {
		return nil, nil
	}

	p := &NetworkProfile{
		avgContactCreditScore: DefaultContactCreditScore,
		lowRiskContactRatio:   DefaultLowRiskContactRatio,
		highRiskContactRatio:  DefaultHighRiskContactRatio,
		networkStabilityRatio: DefaultNetworkStability,
		addressTenureMonths:   DefaultAddressTenureMonths,
		addressChangeCount:    DefaultAddressChangeCount,
		hasContactData:        hasContact,
		hasAddressData:        hasAddress,
	}

	if in.AvgContactCreditScore != nil {
		if math.IsNaN(*in.AvgContactCreditScore) || math.IsInf(*in.AvgContactCreditScore, 0) {
			return nil, errs.Validation("avg_contact_credit_score", "must be a finite number")
		}
		p.avgContactCreditScore = *in.AvgContactCreditScore
	}

	ratios := []struct {
		name string
		in   *float64
		out  *float64
	}{
		{"low_risk_contact_ratio", in.LowRiskContactRatio, &p.lowRiskContactRatio},
		{"high_risk_contact_ratio", in.HighRiskContactRatio, &p.highRiskContactRatio},
		{"network_stability_ratio", in.NetworkStabilityRatio, &p.networkStabilityRatio},
	}
	for _, r := range ratios {
		if r.in == nil {
			continue
		}
		if math.IsNaN(*r.in) || *r.in < 0 || *r.in > 1 {
			return nil, errs.Validation(r.name, "must be within [0, 1], got %v", *r.in)
		}
		*r.out = *r.in
	}

	if in.AddressTenureMonths != nil {
		if *in.AddressTenureMonths < 0 {
			return nil, errs.Validation("address_tenure_months", "must not be negative, got %d", *in.AddressTenureMonths)
		}
		p.addressTenureMonths = min(*in.AddressTenureMonths, maxAddressTenureMonths)
	}
	if in.AddressChangeCount != nil {
		if *in.AddressChangeCount < 0 {
			return nil, errs.Validation("address_change_count", "must not be negative, got %d", *in.AddressChangeCount)
		}
		p.addressChangeCount = *in.AddressChangeCount
	}

	return p, nil
}

// --- Accessors ---

func (p NetworkProfile) AvgContactCreditScore() float64 { return p.avgContactCreditScore }
func (p NetworkProfile) LowRiskContactRatio() float64   { return p.lowRiskContactRatio }
func (p NetworkProfile) HighRiskContactRatio() float64  { return p.highRiskContactRatio }
func (p NetworkProfile) NetworkStabilityRatio() float64 { return p.networkStabilityRatio }
func (p NetworkProfile) AddressTenureMonths() int       { return p.addressTenureMonths }
func (p NetworkProfile) AddressChangeCount() int        { return p.addressChangeCount }

// HasContactData reports whether any contact-network aggregate was supplied.
func (p NetworkProfile) HasContactData() bool { return p.hasContactData }

// HasAddressData reports whether any address history field was supplied.
func (p NetworkProfile) HasAddressData() bool { return p.hasAddressData }
