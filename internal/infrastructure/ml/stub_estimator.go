package ml

import (
	"context"
	"log/slog"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// StubEstimator returns a fixed probability. It is meant for local
// development where no model artifact or scoring service is available.
type StubEstimator struct {
	logger      *slog.Logger
	probability float64
	auc         float64
}

// NewStubEstimator creates a stub that always predicts probability.
func NewStubEstimator(probability float64, logger *slog.Logger) *StubEstimator {
	return &StubEstimator{logger: logger, probability: probability, auc: 0.5}
}

func (s *StubEstimator) Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	s.logger.DebugContext(ctx, "stub estimator prediction requested",
		slog.Int("feature_count", len(features)),
		slog.Float64("probability", s.probability),
	)
	return s.probability, nil
}

// ModelAUC reports 0.5, the AUC of an uninformative model.
func (s *StubEstimator) ModelAUC() float64 { return s.auc }
