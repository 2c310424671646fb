package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const (
	finalScoreMin = 0
	finalScoreMax = 1000
)

// AssessmentInput is everything the engine needs for one applicant.
type AssessmentInput struct {
	Features   valueobject.ApplicantFeatures
	Network    *valueobject.NetworkProfile
	Behavioral valueobject.BehavioralInputs
}

// FusionEngine combines the rule score, network and stability adjustments
// and the estimator probability into the final score. It holds no mutable
// state and may be shared across goroutines.
type FusionEngine struct {
	policy    Policy
	rules     *RuleScorer
	network   *NetworkTrust
	stability *BehavioralStability
	explainer *Explainer
	estimator port.ProbabilityEstimator
	logger    *slog.Logger
}

// NewFusionEngine validates policy and wires the scoring components.
func NewFusionEngine(policy Policy, estimator port.ProbabilityEstimator, logger *slog.Logger) (*FusionEngine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if estimator == nil {
		return nil, errs.Configuration("estimator", "probability estimator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FusionEngine{
		policy:    policy,
		rules:     NewRuleScorer(),
		network:   NewNetworkTrust(policy),
		stability: NewBehavioralStability(policy),
		explainer: NewExplainer(policy),
		estimator: estimator,
		logger:    logger,
	}, nil
}

// Policy returns the validated policy the engine runs with.
func (e *FusionEngine) Policy() Policy { return e.policy }

// Assess runs the full pipeline. An estimator failure aborts the assessment
// and no partial result is returned.
func (e *FusionEngine) Assess(ctx context.Context, in AssessmentInput) (model.ScoringResult, error) {
	rule := e.rules.Score(in.Features)
	network := e.network.Compute(in.Network)
	stability := e.stability.Compute(in.Behavioral)

	p, err := e.predict(ctx, in.Features)
	if err != nil {
		return model.ScoringResult{}, err
	}

	result, err := e.Fuse(rule, network, stability, p)
	if err != nil {
		return model.ScoringResult{}, err
	}

	e.logger.DebugContext(ctx, "credit assessment fused",
		"final_score", result.FinalScore,
		"risk_band", result.RiskBand.String(),
		"base_rule_score", result.BaseRuleScore,
		"signals_available", result.SignalsAvailable,
	)
	return result, nil
}

// Fuse is the pure combination step. Each adjustment is clamped to its own
// cap before it is applied. A default probability outside [0, 1] is an
// EstimatorUnavailable error.
func (e *FusionEngine) Fuse(rule model.RuleScore, network model.NetworkAdjustment, stability model.StabilityAssessment, p float64) (model.ScoringResult, error) {
	if err := checkProbability(p); err != nil {
		return model.ScoringResult{}, err
	}
	pol := e.policy
	ctcAdj := clamp(network.CTCAdjustmentPct, -pol.CTCCapPct, pol.CTCCapPct)
	addrAdj := clamp(network.AddressAdjustmentPct, -pol.AddressCapPct, pol.AddressCapPct)
	stabAdj := clamp(stability.AdjustmentPct, -pol.CompositeCapPct, pol.CompositeCapPct)

	base := float64(rule.Base)
	enhanced := clamp(base*(1+(ctcAdj+addrAdj+stabAdj)/100), finalScoreMin, finalScoreMax)
	mlScore := (1 - p) * finalScoreMax
	final := int(clamp(math.Round(pol.MLWeight*mlScore+pol.RuleWeight*enhanced), finalScoreMin, finalScoreMax))

	if stability.Signals == nil {
		stability.Signals = []valueobject.SignalScore{}
	}
	network.CTCAdjustmentPct = ctcAdj
	network.AddressAdjustmentPct = addrAdj
	stability.AdjustmentPct = stabAdj

	result := model.ScoringResult{
		RiskBand:               valueobject.RiskBandFromScore(final),
		CTCScore:               network.CTCScore,
		StabilityComposite:     stability.Composite,
		RuleDrivers:            rule.Drivers,
		Network:                network,
		Stability:              stability,
		Disclosure:             pol.Disclosure(e.estimator.ModelAUC()),
		ProbabilityOfDefault:   valueobject.NewProbabilityOfDefault(p, pol.UncertaintyPct),
		CTCAdjustmentPct:       ctcAdj,
		AddressAdjustmentPct:   addrAdj,
		StabilityAdjustmentPct: stabAdj,
		EnhancedRuleScore:      enhanced,
		MLProbability:          p,
		MLScore:                mlScore,
		ModelAUC:               e.estimator.ModelAUC(),
		BaseRuleScore:          rule.Base,
		FinalScore:             final,
		SignalsAvailable:       stability.SignalsAvailable,
	}

	explanation := e.explainer.Explain(result)
	result.ReasonCodes = explanation.ReasonCodes
	result.KeyFactors = explanation.KeyFactors
	return result, nil
}

func (e *FusionEngine) predict(ctx context.Context, f valueobject.ApplicantFeatures) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.policy.EstimatorTimeout)
	defer cancel()

	p, err := e.estimator.Predict(ctx, f.Vector())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (err == nil && ctx.Err() != nil):
		return 0, errs.EstimatorUnavailable(ctx.Err(), "estimator exceeded %s", e.policy.EstimatorTimeout)
	case err != nil:
		if errors.Is(err, errs.ErrEstimatorUnavailable) {
			return 0, err
		}
		return 0, errs.EstimatorUnavailable(err, "estimator call failed")
	}
	return p, nil
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return errs.EstimatorUnavailable(fmt.Errorf("probability %v out of range", p), "invalid default probability")
	}
	return nil
}
