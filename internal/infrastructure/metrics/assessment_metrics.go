// Package metrics records credit assessment business metrics through the
// OpenTelemetry metric API.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/creditrisk/internal/domain/port"
)

// AssessmentMetrics implements port.AssessmentMetrics.
type AssessmentMetrics struct {
	assessments metric.Int64Counter
	failures    metric.Int64Counter
	finalScore  metric.Int64Histogram
	duration    metric.Float64Histogram
}

var _ port.AssessmentMetrics = (*AssessmentMetrics)(nil)

func NewAssessmentMetrics(meter metric.Meter) (*AssessmentMetrics, error) {
	assessments, err := meter.Int64Counter("credit.assessments",
		metric.WithDescription("Completed credit assessments by risk band"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("credit.assessment.failures",
		metric.WithDescription("Failed credit assessments by error kind"),
	)
	if err != nil {
		return nil, err
	}
	finalScore, err := meter.Int64Histogram("credit.assessment.final_score",
		metric.WithDescription("Distribution of final scores"),
		metric.WithExplicitBucketBoundaries(100, 200, 300, 350, 400, 500, 600, 700, 800, 900, 1000),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("credit.assessment.duration",
		metric.WithDescription("End-to-end assessment latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &AssessmentMetrics{
		assessments: assessments,
		failures:    failures,
		finalScore:  finalScore,
		duration:    duration,
	}, nil
}

func (m *AssessmentMetrics) RecordAssessment(ctx context.Context, riskBand string, finalScore int, d time.Duration) {
	band := metric.WithAttributes(attribute.String("risk_band", riskBand))
	m.assessments.Add(ctx, 1, band)
	m.finalScore.Record(ctx, int64(finalScore), band)
	m.duration.Record(ctx, d.Seconds(), band)
}

func (m *AssessmentMetrics) RecordFailure(ctx context.Context, errorKind string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("error_kind", errorKind)))
}
