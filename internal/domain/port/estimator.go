package port

import (
	"context"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ProbabilityEstimator returns a default probability in [0,1] for the
// ordered core feature vector. Implementations must be safe for
// concurrent use.
type ProbabilityEstimator interface {
	Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error)
	ModelAUC() float64
}
