package service

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const weightTolerance = 1e-9

type namedValue struct {
	name  string
	value float64
}

// CTCWeights are the Community Trust Coefficient component weights.
type CTCWeights struct {
	ContactScore     float64 `yaml:"contact_score"`
	LowRiskRatio     float64 `yaml:"low_risk_ratio"`
	NetworkStability float64 `yaml:"network_stability"`
	HighRiskInverse  float64 `yaml:"high_risk_inverse"`
}

// Sum returns the total of all weights.
func (w CTCWeights) Sum() float64 {
	return w.ContactScore + w.LowRiskRatio + w.NetworkStability + w.HighRiskInverse
}

// SignalCaps holds the maximum absolute adjustment, in percent, per behavioral signal.
type SignalCaps struct {
	IncomeRhythm      float64 `yaml:"income_rhythm"`
	SavingsCadence    float64 `yaml:"savings_cadence"`
	DevicePersistence float64 `yaml:"device_persistence"`
	ExpenseElasticity float64 `yaml:"expense_elasticity"`
	UtilityStability  float64 `yaml:"utility_stability"`
	MerchantLoyalty   float64 `yaml:"merchant_loyalty"`
	RepaymentVelocity float64 `yaml:"repayment_velocity"`
	GeoResilience     float64 `yaml:"geo_resilience"`
}

// For returns the cap of category c.
func (s SignalCaps) For(c valueobject.SignalCategory) float64 {
	switch c {
	case valueobject.SignalIncomeRhythm:
		return s.IncomeRhythm
	case valueobject.SignalSavingsCadence:
		return s.SavingsCadence
	case valueobject.SignalDevicePersistence:
		return s.DevicePersistence
	case valueobject.SignalExpenseElasticity:
		return s.ExpenseElasticity
	case valueobject.SignalUtilityStability:
		return s.UtilityStability
	case valueobject.SignalMerchantLoyalty:
		return s.MerchantLoyalty
	case valueobject.SignalRepaymentVelocity:
		return s.RepaymentVelocity
	case valueobject.SignalGeoResilience:
		return s.GeoResilience
	default:
		return 0
	}
}

// Max returns the largest signal cap.
func (s SignalCaps) Max() float64 {
	m := 0.0
	for _, c := range valueobject.SignalCategories {
		m = math.Max(m, s.For(c))
	}
	return m
}

// Policy is the immutable scoring configuration handed to the engine. Build
// it with DefaultPolicy, optionally override fields, then call Validate once
// at startup.
type Policy struct {
	CTCWeights            CTCWeights    `yaml:"ctc_weights"`
	SignalCapsPct         SignalCaps    `yaml:"signal_caps_pct"`
	ContactScoreMin       float64       `yaml:"contact_score_min"`
	ContactScoreMax       float64       `yaml:"contact_score_max"`
	CTCCapPct             float64       `yaml:"ctc_cap_pct"`
	AddressCapPct         float64       `yaml:"address_cap_pct"`
	CompositeCapPct       float64       `yaml:"composite_cap_pct"`
	TotalAdjustmentCapPct float64       `yaml:"total_adjustment_cap_pct"`
	MLWeight              float64       `yaml:"ml_weight"`
	RuleWeight            float64       `yaml:"rule_weight"`
	UncertaintyPct        float64       `yaml:"uncertainty_pct"`
	MaterialityThreshold  float64       `yaml:"materiality_threshold"`
	ReasonCodeLimit       int           `yaml:"reason_code_limit"`
	EstimatorTimeout      time.Duration `yaml:"estimator_timeout"`
}

// DefaultPolicy returns the documented scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		CTCWeights: CTCWeights{
			ContactScore:     0.4,
			LowRiskRatio:     0.3,
			NetworkStability: 0.2,
			HighRiskInverse:  0.1,
		},
		SignalCapsPct: SignalCaps{
			IncomeRhythm:      7,
			SavingsCadence:    5,
			DevicePersistence: 4,
			ExpenseElasticity: 4,
			UtilityStability:  3.5,
			MerchantLoyalty:   3,
			RepaymentVelocity: 5,
			GeoResilience:     4,
		},
		ContactScoreMin:       300,
		ContactScoreMax:       900,
		CTCCapPct:             10,
		AddressCapPct:         5,
		CompositeCapPct:       15,
		TotalAdjustmentCapPct: 25,
		MLWeight:              0.6,
		RuleWeight:            0.4,
		UncertaintyPct:        10,
		MaterialityThreshold:  2,
		ReasonCodeLimit:       5,
		EstimatorTimeout:      2 * time.Second,
	}
}

// Validate checks the internal consistency of the policy.
func (p Policy) Validate() error {
	if math.Abs(p.CTCWeights.Sum()-1) > weightTolerance {
		return errs.Configuration("ctc_weights", "must sum to 1.0, got %v", p.CTCWeights.Sum())
	}
	for _, w := range []namedValue{
		{"ctc_weights.contact_score", p.CTCWeights.ContactScore},
		{"ctc_weights.low_risk_ratio", p.CTCWeights.LowRiskRatio},
		{"ctc_weights.network_stability", p.CTCWeights.NetworkStability},
		{"ctc_weights.high_risk_inverse", p.CTCWeights.HighRiskInverse},
	} {
		if w.value < 0 {
			return errs.Configuration(w.name, "must not be negative, got %v", w.value)
		}
	}
	if p.ContactScoreMax <= p.ContactScoreMin {
		return errs.Configuration("contact_score_max", "must exceed contact_score_min (%v), got %v", p.ContactScoreMin, p.ContactScoreMax)
	}

	caps := []namedValue{
		{"ctc_cap_pct", p.CTCCapPct},
		{"address_cap_pct", p.AddressCapPct},
		{"composite_cap_pct", p.CompositeCapPct},
		{"total_adjustment_cap_pct", p.TotalAdjustmentCapPct},
	}
	for _, c := range valueobject.SignalCategories {
		caps = append(caps, namedValue{"signal_caps_pct." + c.String(), p.SignalCapsPct.For(c)})
	}
	for _, c := range caps {
		if c.value <= 0 {
			return errs.Configuration(c.name, "must be positive, got %v", c.value)
		}
	}

	for _, c := range valueobject.SignalCategories {
		if p.SignalCapsPct.For(c) > p.CompositeCapPct {
			return errs.Configuration("signal_caps_pct."+c.String(),
				"cap %v exceeds composite cap %v", p.SignalCapsPct.For(c), p.CompositeCapPct)
		}
	}

	if worst := p.WorstCaseAdjustmentPct(); worst > p.TotalAdjustmentCapPct {
		return errs.Configuration("total_adjustment_cap_pct",
			"network and stability caps allow %v%%, exceeding the %v%% total cap", worst, p.TotalAdjustmentCapPct)
	}

	if p.MLWeight < 0 || p.RuleWeight < 0 {
		return errs.Configuration("fusion_weights", "must not be negative")
	}
	if math.Abs(p.MLWeight+p.RuleWeight-1) > weightTolerance {
		return errs.Configuration("fusion_weights", "ml_weight + rule_weight must equal 1.0, got %v", p.MLWeight+p.RuleWeight)
	}
	if p.UncertaintyPct < 0 || p.UncertaintyPct > 100 {
		return errs.Configuration("uncertainty_pct", "must be within [0, 100], got %v", p.UncertaintyPct)
	}
	if p.MaterialityThreshold < 0 {
		return errs.Configuration("materiality_threshold", "must not be negative, got %v", p.MaterialityThreshold)
	}
	if p.ReasonCodeLimit < 1 {
		return errs.Configuration("reason_code_limit", "must be at least 1, got %d", p.ReasonCodeLimit)
	}
	if p.EstimatorTimeout <= 0 {
		return errs.Configuration("estimator_timeout", "must be positive, got %s", p.EstimatorTimeout)
	}
	return nil
}

// WorstCaseAdjustmentPct is the largest combined network and stability
// adjustment the caps permit. The stability adjustment is a mean of signal
// adjustments, so it can never exceed the largest single signal cap.
func (p Policy) WorstCaseAdjustmentPct() float64 {
	return p.CTCCapPct + p.AddressCapPct + math.Min(p.CompositeCapPct, p.SignalCapsPct.Max())
}

// Disclosure renders the compliance block for this policy.
func (p Policy) Disclosure(modelAUC float64) model.Disclosure {
	signals := make(map[string]string, len(valueobject.SignalCategories))
	for _, c := range valueobject.SignalCategories {
		signals[c.String()] = plusMinus(p.SignalCapsPct.For(c))
	}
	return model.Disclosure{
		CTCMaxImpact:       plusMinus(p.CTCCapPct),
		AddressMaxImpact:   plusMinus(p.AddressCapPct),
		StabilityMaxImpact: plusMinus(p.CompositeCapPct),
		TotalAdjustmentCap: plusMinus(p.TotalAdjustmentCapPct),
		SignalMaxImpact:    signals,
		FusionWeights:      model.FusionWeights{ML: p.MLWeight, Rule: p.RuleWeight},
		RiskBandBreakpoints: fmt.Sprintf("<%d Low; %d-%d Moderate; >%d High",
			valueobject.ModerateBandFloor, valueobject.ModerateBandFloor,
			valueobject.ModerateBandCeiling, valueobject.ModerateBandCeiling),
		NetworkDataPolicy: "aggregate ratios only; no contact identifiers",
		ModelAUC:          modelAUC,
	}
}

func plusMinus(v float64) string {
	return "±" + strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
