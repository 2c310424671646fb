package ml

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

// NewEstimator builds the estimator selected by cfg.Mode.
func NewEstimator(cfg config.EstimatorConfig, logger *slog.Logger) (port.ProbabilityEstimator, error) {
	switch cfg.Mode {
	case config.EstimatorStub:
		logger.Warn("using stub probability estimator", slog.Float64("probability", cfg.StubProbability))
		return NewStubEstimator(cfg.StubProbability, logger), nil

	case config.EstimatorRemote:
		tlsCfg, err := tlsutil.ClientTLS(cfg.CAFile, false)
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		client := &http.Client{Timeout: cfg.Timeout, Transport: transport}
		return NewHTTPEstimator(HTTPEstimatorConfig{
			URL:        cfg.URL,
			RPS:        cfg.RPS,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
		}, logger), nil

	case config.EstimatorLocal, "":
		var (
			model *LogisticModel
			err   error
		)
		if cfg.ModelPath != "" {
			model, err = LoadLogisticModel(cfg.ModelPath)
		} else {
			model, err = DefaultLogisticModel()
		}
		if err != nil {
			return nil, err
		}
		logger.Info("loaded logistic model",
			slog.String("version", model.Version()),
			slog.Float64("auc", model.ModelAUC()),
		)
		return model, nil

	default:
		return nil, fmt.Errorf("unknown estimator mode %q", cfg.Mode)
	}
}
