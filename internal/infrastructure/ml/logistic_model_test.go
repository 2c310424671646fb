package ml_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
)

func typicalVector() [valueobject.FeatureVectorSize]float64 {
	return [valueobject.FeatureVectorSize]float64{34, 4200, 42, 85.5, 0.15, 1, 0, 30, 0}
}

func TestDefaultLogisticModel(t *testing.T) {
	m, err := ml.DefaultLogisticModel()
	require.NoError(t, err)

	assert.Equal(t, 0.79, m.ModelAUC())
	assert.NotEmpty(t, m.Version())

	p, err := m.Predict(context.Background(), typicalVector())
	require.NoError(t, err)
	assert.InDelta(t, 0.0536, p, 0.001)
}

func TestLogisticModel_RiskierApplicantScoresHigher(t *testing.T) {
	m, err := ml.DefaultLogisticModel()
	require.NoError(t, err)
	ctx := context.Background()

	clean, err := m.Predict(ctx, typicalVector())
	require.NoError(t, err)

	risky := typicalVector()
	risky[6] = 1 // previous fraud flag
	risky[8] = 3 // chargebacks
	flagged, err := m.Predict(ctx, risky)
	require.NoError(t, err)

	assert.Greater(t, flagged, clean)
	assert.LessOrEqual(t, flagged, 1.0)
}

func TestParseLogisticModel_NeutralModel(t *testing.T) {
	m, err := ml.ParseLogisticModel([]byte(`{
		"model_version": "neutral",
		"auc": 0.5,
		"intercept": 0,
		"coefficients": [0,0,0,0,0,0,0,0,0],
		"means": [0,0,0,0,0,0,0,0,0],
		"scales": [1,1,1,1,1,1,1,1,1]
	}`))
	require.NoError(t, err)

	p, err := m.Predict(context.Background(), typicalVector())
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)
}

func TestParseLogisticModel_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		artifact string
	}{
		{"not json", `{`},
		{"missing intercept", `{"model_version":"x","auc":0.7,"coefficients":[0,0,0,0,0,0,0,0,0],"means":[0,0,0,0,0,0,0,0,0],"scales":[1,1,1,1,1,1,1,1,1]}`},
		{"short coefficients", `{"model_version":"x","auc":0.7,"intercept":0,"coefficients":[0,0],"means":[0,0,0,0,0,0,0,0,0],"scales":[1,1,1,1,1,1,1,1,1]}`},
		{"zero scale", `{"model_version":"x","auc":0.7,"intercept":0,"coefficients":[0,0,0,0,0,0,0,0,0],"means":[0,0,0,0,0,0,0,0,0],"scales":[1,1,1,0,1,1,1,1,1]}`},
		{"auc above one", `{"model_version":"x","auc":1.2,"intercept":0,"coefficients":[0,0,0,0,0,0,0,0,0],"means":[0,0,0,0,0,0,0,0,0],"scales":[1,1,1,1,1,1,1,1,1]}`},
		{"unknown field", `{"model_version":"x","auc":0.7,"intercept":0,"bias":1,"coefficients":[0,0,0,0,0,0,0,0,0],"means":[0,0,0,0,0,0,0,0,0],"scales":[1,1,1,1,1,1,1,1,1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ml.ParseLogisticModel([]byte(tt.artifact))
			assert.Error(t, err)
		})
	}
}

func TestLoadLogisticModel_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model_version": "file",
		"auc": 0.83,
		"intercept": -1,
		"coefficients": [0,0,0,0,0,0,0,0,0],
		"means": [0,0,0,0,0,0,0,0,0],
		"scales": [1,1,1,1,1,1,1,1,1]
	}`), 0o600))

	m, err := ml.LoadLogisticModel(path)
	require.NoError(t, err)
	assert.Equal(t, "file", m.Version())

	p, err := m.Predict(context.Background(), typicalVector())
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.E), p, 1e-12)

	_, err = ml.LoadLogisticModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLogisticModel_CanceledContext(t *testing.T) {
	m, err := ml.DefaultLogisticModel()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Predict(ctx, typicalVector())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogisticModel_ConcurrentPredict(t *testing.T) {
	m, err := ml.DefaultLogisticModel()
	require.NoError(t, err)
	want, err := m.Predict(context.Background(), typicalVector())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = m.Predict(context.Background(), typicalVector())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
