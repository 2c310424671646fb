package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func ptr[T any](v T) *T { return &v }

type featureOverrides func(*valueobject.ApplicantFeaturesInput)

func newFeatures(t *testing.T, overrides ...featureOverrides) valueobject.ApplicantFeatures {
	t.Helper()
	in := valueobject.ApplicantFeaturesInput{
		Age:                   ptr(34),
		MonthlyIncome:         ptr(decimal.NewFromInt(4200)),
		TransactionCount30d:   ptr(42),
		AvgTransactionAmount:  ptr(decimal.RequireFromString("85.50")),
		LocationRiskScore:     ptr(0.15),
		DeviceChangeFrequency: ptr(1),
		PreviousFraudFlag:     ptr(false),
		AccountAgeMonths:      ptr(30),
		ChargebackCount:       ptr(0),
	}
	for _, o := range overrides {
		o(&in)
	}
	f, err := valueobject.NewApplicantFeatures(in)
	require.NoError(t, err)
	return f
}

func newNetwork(t *testing.T, in valueobject.NetworkProfileInput) *valueobject.NetworkProfile {
	t.Helper()
	p, err := valueobject.NewNetworkProfile(in)
	require.NoError(t, err)
	return p
}

// mockEstimator implements port.ProbabilityEstimator.
type mockEstimator struct {
	PredictFunc func(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error)
	AUC         float64
}

func (m *mockEstimator) Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, features)
	}
	return 0.2, nil
}

func (m *mockEstimator) ModelAUC() float64 { return m.AUC }

func fixedEstimator(p float64) *mockEstimator {
	return &mockEstimator{
		PredictFunc: func(context.Context, [valueobject.FeatureVectorSize]float64) (float64, error) { return p, nil },
		AUC:         0.81,
	}
}
