// Package ml provides the probability-of-default estimators behind
// port.ProbabilityEstimator.
package ml

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

//go:embed model_schema.json
var modelSchema []byte

//go:embed default_model.json
var defaultModel []byte

type modelArtifact struct {
	ModelVersion string                                 `json:"model_version"`
	AUC          float64                                `json:"auc"`
	Intercept    float64                                `json:"intercept"`
	Coefficients [valueobject.FeatureVectorSize]float64 `json:"coefficients"`
	Means        [valueobject.FeatureVectorSize]float64 `json:"means"`
	Scales       [valueobject.FeatureVectorSize]float64 `json:"scales"`
}

// LogisticModel is a standardized logistic regression over the core feature
// vector. It is immutable after loading and safe for concurrent Predict calls.
type LogisticModel struct {
	artifact modelArtifact
}

var _ port.ProbabilityEstimator = (*LogisticModel)(nil)

// DefaultLogisticModel returns the model compiled into the binary.
func DefaultLogisticModel() (*LogisticModel, error) {
	return ParseLogisticModel(defaultModel)
}

// LoadLogisticModel reads a model artifact from disk.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	return ParseLogisticModel(data)
}

// ParseLogisticModel validates data against the artifact schema and decodes it.
func ParseLogisticModel(data []byte) (*LogisticModel, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(modelSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("model artifact validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return nil, fmt.Errorf("invalid model artifact: %s", strings.Join(problems, "; "))
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	return &LogisticModel{artifact: artifact}, nil
}

// Predict returns σ(intercept + Σ coef·(x−mean)/scale).
func (m *LogisticModel) Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a := m.artifact
	z := a.Intercept
	for i, x := range features {
		z += a.Coefficients[i] * (x - a.Means[i]) / a.Scales[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LogisticModel) ModelAUC() float64 { return m.artifact.AUC }

// Version returns the artifact's model_version.
func (m *LogisticModel) Version() string { return m.artifact.ModelVersion }
