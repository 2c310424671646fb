package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func TestNetworkTrust_AbsentProfile(t *testing.T) {
	adj := service.NewNetworkTrust(service.DefaultPolicy()).Compute(nil)

	assert.False(t, adj.Available)
	assert.Nil(t, adj.CTCScore)
	assert.Nil(t, adj.AddressStabilityScore)
	assert.Zero(t, adj.CTCAdjustmentPct)
	assert.Zero(t, adj.AddressAdjustmentPct)
}

func TestNetworkTrust_FullProfile(t *testing.T) {
	profile := newNetwork(t, valueobject.NetworkProfileInput{
		AvgContactCreditScore: ptr(750.0),
		LowRiskContactRatio:   ptr(0.7),
		HighRiskContactRatio:  ptr(0.1),
		NetworkStabilityRatio: ptr(0.8),
		AddressTenureMonths:   ptr(36),
		AddressChangeCount:    ptr(0),
	})

	adj := service.NewNetworkTrust(service.DefaultPolicy()).Compute(profile)

	require.True(t, adj.Available)
	require.NotNil(t, adj.CTCScore)
	assert.InDelta(t, 0.76, *adj.CTCScore, 1e-9)
	assert.InDelta(t, 5.2, adj.CTCAdjustmentPct, 1e-9)
	require.NotNil(t, adj.CTCComponents)
	assert.InDelta(t, 0.75, adj.CTCComponents.ContactScoreNormalized, 1e-9)
	assert.InDelta(t, 0.9, adj.CTCComponents.HighRiskInverse, 1e-9)

	require.NotNil(t, adj.AddressStabilityScore)
	assert.InDelta(t, 1.0, *adj.AddressStabilityScore, 1e-9)
	assert.InDelta(t, 5.0, adj.AddressAdjustmentPct, 1e-9)
	assert.Equal(t, service.TenureHigh, adj.TenureCategory)
}

func TestNetworkTrust_AddressOnly(t *testing.T) {
	profile := newNetwork(t, valueobject.NetworkProfileInput{
		AddressTenureMonths: ptr(3),
		AddressChangeCount:  ptr(4),
	})

	adj := service.NewNetworkTrust(service.DefaultPolicy()).Compute(profile)

	assert.True(t, adj.Available)
	assert.Nil(t, adj.CTCScore, "no contact fields means no CTC")
	assert.Zero(t, adj.CTCAdjustmentPct)
	// 0.6*(3/24) + 0.4*0 = 0.075
	assert.InDelta(t, 0.075, *adj.AddressStabilityScore, 1e-9)
	assert.InDelta(t, -4.25, adj.AddressAdjustmentPct, 1e-9)
	assert.Equal(t, service.TenureLow, adj.TenureCategory)
}

func TestNetworkTrust_ContactScoreIsClamped(t *testing.T) {
	policy := service.DefaultPolicy()
	nt := service.NewNetworkTrust(policy)

	high := nt.Compute(newNetwork(t, valueobject.NetworkProfileInput{
		AvgContactCreditScore: ptr(2000.0),
		LowRiskContactRatio:   ptr(1.0),
		HighRiskContactRatio:  ptr(0.0),
		NetworkStabilityRatio: ptr(1.0),
	}))
	low := nt.Compute(newNetwork(t, valueobject.NetworkProfileInput{
		AvgContactCreditScore: ptr(100.0),
		LowRiskContactRatio:   ptr(0.0),
		HighRiskContactRatio:  ptr(1.0),
		NetworkStabilityRatio: ptr(0.0),
	}))

	assert.InDelta(t, policy.CTCCapPct, high.CTCAdjustmentPct, 1e-9)
	assert.InDelta(t, -policy.CTCCapPct, low.CTCAdjustmentPct, 1e-9)
}

func TestNetworkTrust_TenureCategories(t *testing.T) {
	tests := []struct {
		tenure, changes int
		want            string
	}{
		{18, 1, service.TenureHigh},
		{18, 2, service.TenureMedium},
		{6, 5, service.TenureMedium},
		{2, 2, service.TenureMedium},
		{2, 3, service.TenureLow},
	}
	nt := service.NewNetworkTrust(service.DefaultPolicy())
	for _, tt := range tests {
		adj := nt.Compute(newNetwork(t, valueobject.NetworkProfileInput{
			AddressTenureMonths: ptr(tt.tenure),
			AddressChangeCount:  ptr(tt.changes),
		}))
		assert.Equal(t, tt.want, adj.TenureCategory, "tenure=%d changes=%d", tt.tenure, tt.changes)
	}
}
