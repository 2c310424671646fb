package model

import (
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// RuleDriver is the point contribution of one core feature to the base rule score.
type RuleDriver struct {
	Feature string                 `json:"feature"`
	Code    valueobject.ReasonCode `json:"code"`
	Points  int                    `json:"points"`
}

// RuleScore is the Rule Scorer outcome.
type RuleScore struct {
	Drivers []RuleDriver `json:"drivers"`
	Base    int          `json:"base_rule_score"`
}

// CTCComponents are the weighted inputs of the Community Trust Coefficient.
// Only aggregate ratios appear here.
type CTCComponents struct {
	ContactScoreNormalized float64 `json:"contact_score_normalized"`
	LowRiskContactRatio    float64 `json:"low_risk_contact_ratio"`
	NetworkStabilityRatio  float64 `json:"network_stability_ratio"`
	HighRiskInverse        float64 `json:"high_risk_inverse"`
}

// NetworkAdjustment is the Network Trust Module outcome.
type NetworkAdjustment struct {
	CTCScore              *float64       `json:"ctc_score"`
	CTCComponents         *CTCComponents `json:"ctc_components,omitempty"`
	AddressStabilityScore *float64       `json:"address_stability_score"`
	TenureCategory        string         `json:"tenure_category,omitempty"`
	CTCAdjustmentPct      float64        `json:"ctc_adjustment_pct"`
	AddressAdjustmentPct  float64        `json:"address_adjustment_pct"`
	Available             bool           `json:"available"`
}

// StabilityAssessment is the Behavioral Stability Module outcome.
type StabilityAssessment struct {
	Composite        *float64                  `json:"composite"`
	Signals          []valueobject.SignalScore `json:"signals"`
	AdjustmentPct    float64                   `json:"stability_adjustment_pct"`
	SignalsAvailable int                       `json:"signals_available"`
}

// FusionWeights are the ML and rule shares of the final score.
type FusionWeights struct {
	ML   float64 `json:"ml"`
	Rule float64 `json:"rule"`
}

// Disclosure is the fixed compliance block attached to every result.
type Disclosure struct {
	SignalMaxImpact     map[string]string `json:"signal_max_impact"`
	CTCMaxImpact        string            `json:"ctc_max_impact"`
	AddressMaxImpact    string            `json:"address_max_impact"`
	StabilityMaxImpact  string            `json:"stability_max_impact"`
	TotalAdjustmentCap  string            `json:"total_adjustment_cap"`
	RiskBandBreakpoints string            `json:"risk_band_breakpoints"`
	NetworkDataPolicy   string            `json:"network_data_policy"`
	FusionWeights       FusionWeights     `json:"fusion_weights"`
	ModelAUC            float64           `json:"model_auc"`
}

// ScoringResult is the engine output for one assessment. It is built once
// and never mutated afterwards, so it can be read concurrently.
type ScoringResult struct {
	RiskBand               valueobject.RiskBand             `json:"risk_band"`
	CTCScore               *float64                         `json:"ctc_score"`
	StabilityComposite     *float64                         `json:"stability_composite"`
	ReasonCodes            []string                         `json:"reason_codes"`
	KeyFactors             []valueobject.KeyFactor          `json:"key_factors"`
	RuleDrivers            []RuleDriver                     `json:"rule_drivers"`
	Network                NetworkAdjustment                `json:"network"`
	Stability              StabilityAssessment              `json:"stability"`
	Disclosure             Disclosure                       `json:"compliance"`
	ProbabilityOfDefault   valueobject.ProbabilityOfDefault `json:"probability_of_default"`
	CTCAdjustmentPct       float64                          `json:"ctc_adjustment_pct"`
	AddressAdjustmentPct   float64                          `json:"address_adjustment_pct"`
	StabilityAdjustmentPct float64                          `json:"stability_adjustment_pct"`
	EnhancedRuleScore      float64                          `json:"enhanced_rule_score"`
	MLProbability          float64                          `json:"ml_probability"`
	MLScore                float64                          `json:"ml_score"`
	ModelAUC               float64                          `json:"model_auc"`
	BaseRuleScore          int                              `json:"base_rule_score"`
	FinalScore             int                              `json:"final_score"`
	SignalsAvailable       int                              `json:"signals_available"`
}
