package ml

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// InstrumentedEstimator records latency and failures of the wrapped
// estimator. A prediction outside [0,1] counts as a failure here even
// though it is returned unchanged.
type InstrumentedEstimator struct {
	next     port.ProbabilityEstimator
	latency  metric.Float64Histogram
	failures metric.Int64Counter
}

var _ port.ProbabilityEstimator = (*InstrumentedEstimator)(nil)

func NewInstrumentedEstimator(next port.ProbabilityEstimator, meter metric.Meter) (*InstrumentedEstimator, error) {
	latency, err := meter.Float64Histogram("credit.estimator.duration",
		metric.WithDescription("Probability estimator call latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("credit.estimator.failures",
		metric.WithDescription("Failed or out-of-range probability estimator calls"),
	)
	if err != nil {
		return nil, err
	}
	return &InstrumentedEstimator{next: next, latency: latency, failures: failures}, nil
}

func (e *InstrumentedEstimator) Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	start := time.Now()
	p, err := e.next.Predict(ctx, features)

	outcome := "ok"
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	case math.IsNaN(p) || p < 0 || p > 1:
		outcome = "out_of_range"
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	e.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	if outcome != "ok" {
		e.failures.Add(ctx, 1, attrs)
	}
	return p, err
}

func (e *InstrumentedEstimator) ModelAUC() float64 { return e.next.ModelAUC() }

// Ready delegates to the wrapped estimator when it reports readiness.
func (e *InstrumentedEstimator) Ready(ctx context.Context) error {
	if r, ok := e.next.(interface{ Ready(context.Context) error }); ok {
		return r.Ready(ctx)
	}
	return nil
}
