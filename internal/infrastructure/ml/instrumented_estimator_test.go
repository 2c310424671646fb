package ml_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
)

type scriptedEstimator struct {
	p   float64
	err error
}

func (s scriptedEstimator) Predict(context.Context, [valueobject.FeatureVectorSize]float64) (float64, error) {
	return s.p, s.err
}

func (s scriptedEstimator) ModelAUC() float64 { return 0.77 }

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestInstrumentedEstimator(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	ctx := context.Background()

	ok, err := ml.NewInstrumentedEstimator(scriptedEstimator{p: 0.3}, meter)
	require.NoError(t, err)
	failing, err := ml.NewInstrumentedEstimator(scriptedEstimator{err: errors.New("boom")}, meter)
	require.NoError(t, err)
	nan, err := ml.NewInstrumentedEstimator(scriptedEstimator{p: math.NaN()}, meter)
	require.NoError(t, err)

	p, err := ok.Predict(ctx, typicalVector())
	require.NoError(t, err)
	assert.Equal(t, 0.3, p)
	assert.Equal(t, 0.77, ok.ModelAUC())

	_, err = failing.Predict(ctx, typicalVector())
	assert.Error(t, err)
	p, err = nan.Predict(ctx, typicalVector())
	assert.NoError(t, err, "range checks belong to the engine")
	assert.True(t, math.IsNaN(p))

	metrics := collect(t, reader)

	hist, found := metrics["credit.estimator.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, found)
	var calls uint64
	for _, dp := range hist.DataPoints {
		calls += dp.Count
	}
	assert.EqualValues(t, 3, calls)

	sum, found := metrics["credit.estimator.failures"].Data.(metricdata.Sum[int64])
	require.True(t, found)
	byOutcome := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		byOutcome[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"error": 1, "out_of_range": 1}, byOutcome)
}

func TestInstrumentedEstimator_ReadyDelegates(t *testing.T) {
	meter := sdkmetric.NewMeterProvider().Meter("test")
	wrapped, err := ml.NewInstrumentedEstimator(scriptedEstimator{p: 0.1}, meter)
	require.NoError(t, err)

	assert.NoError(t, wrapped.Ready(context.Background()))
}
