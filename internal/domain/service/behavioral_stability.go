package service

import (
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// compositeWeights weight the reported composite; categories not listed use defaultCompositeWeight.
var compositeWeights = map[valueobject.SignalCategory]float64{
	valueobject.SignalIncomeRhythm:      0.20,
	valueobject.SignalRepaymentVelocity: 0.15,
	valueobject.SignalGeoResilience:     0.15,
}

const defaultCompositeWeight = 0.10

// BehavioralStability scores the optional alternative-data signals and
// combines them into a single stability adjustment.
type BehavioralStability struct {
	policy Policy
}

// NewBehavioralStability creates a BehavioralStability bound to a validated policy.
func NewBehavioralStability(policy Policy) *BehavioralStability {
	return &BehavioralStability{policy: policy}
}

// Compute scores every present category in fixed order and combines them.
func (b *BehavioralStability) Compute(in valueobject.BehavioralInputs) model.StabilityAssessment {
	signals := make([]valueobject.SignalScore, 0, len(valueobject.SignalCategories))
	for _, c := range valueobject.SignalCategories {
		if !in.Present(c) {
			continue
		}
		raw, qualitative := scoreSignal(c, in)
		signals = append(signals, b.signalScore(c, raw, qualitative))
	}
	return b.Combine(signals)
}

// Combine aggregates already scored signals. The result does not depend on
// the order of signals.
func (b *BehavioralStability) Combine(signals []valueobject.SignalScore) model.StabilityAssessment {
	if len(signals) == 0 {
		return model.StabilityAssessment{Signals: []valueobject.SignalScore{}}
	}

	var adjSum, weighted, weights float64
	for _, s := range signals {
		adjSum += s.AdjustmentPct
		w := compositeWeight(s.Category)
		weighted += w * s.RawScore
		weights += w
	}
	composite := weighted / weights
	limit := b.policy.CompositeCapPct

	return model.StabilityAssessment{
		Composite:        &composite,
		Signals:          signals,
		AdjustmentPct:    clamp(adjSum/float64(len(signals)), -limit, limit),
		SignalsAvailable: len(signals),
	}
}

func (b *BehavioralStability) signalScore(c valueobject.SignalCategory, raw float64, qualitative string) valueobject.SignalScore {
	limit := b.policy.SignalCapsPct.For(c)
	raw = clamp(raw, 0, 1)
	return valueobject.SignalScore{
		Category:            c,
		QualitativeCategory: qualitative,
		RawScore:            raw,
		AdjustmentPct:       clamp((raw-0.5)*2*limit, -limit, limit),
		CapPct:              limit,
	}
}

func compositeWeight(c valueobject.SignalCategory) float64 {
	if w, ok := compositeWeights[c]; ok {
		return w
	}
	return defaultCompositeWeight
}

func scoreSignal(c valueobject.SignalCategory, in valueobject.BehavioralInputs) (float64, string) {
	switch c {
	case valueobject.SignalIncomeRhythm:
		return incomeRhythm(*in.IncomeRhythm)
	case valueobject.SignalSavingsCadence:
		return savingsCadence(*in.SavingsCadence)
	case valueobject.SignalDevicePersistence:
		return devicePersistence(*in.DevicePersistence)
	case valueobject.SignalExpenseElasticity:
		return expenseElasticity(*in.ExpenseElasticity)
	case valueobject.SignalUtilityStability:
		return utilityStability(*in.UtilityStability)
	case valueobject.SignalMerchantLoyalty:
		return merchantLoyalty(*in.MerchantLoyalty)
	case valueobject.SignalRepaymentVelocity:
		return repaymentVelocity(*in.RepaymentVelocity)
	case valueobject.SignalGeoResilience:
		return geoResilience(*in.GeoResilience)
	default:
		return 0.5, ""
	}
}

func incomeRhythm(in valueobject.IncomeRhythmInput) (float64, string) {
	cv := clamp(valueOr(in.CoefficientOfVariation, 0.3), 0, 2)
	seasonal := math.Max(0, valueOr(in.SeasonalFactor, 1))
	months := float64(intOr(in.MonthsObserved, 12))

	raw := clamp((0.6*(1-math.Min(1, cv/0.5))+0.4*math.Min(1, math.Max(0, months)/12))*seasonal, 0, 1)
	return raw, tier(raw, 0.7, 0.4, "Stable", "Variable", "Irregular")
}

func savingsCadence(in valueobject.SavingsCadenceInput) (float64, string) {
	saves := math.Max(0, valueOr(in.MicroSavesPerMonth, 0))
	persist := math.Max(0, float64(intOr(in.PersistenceMonths, 0)))
	escrow := 0.0
	if in.HasEscrow != nil && *in.HasEscrow {
		escrow = 1
	}

	// escrow counts once as a component and once as a bonus
	raw := math.Min(1, 0.5*math.Min(1, saves/4)+0.4*math.Min(1, persist/12)+0.1*escrow+0.1*escrow)
	switch {
	case raw >= 0.7:
		return raw, "Strong"
	case raw >= 0.4:
		return raw, "Moderate"
	case raw > 0:
		return raw, "Weak"
	default:
		return raw, "None"
	}
}

func devicePersistence(in valueobject.DevicePersistenceInput) (float64, string) {
	tenure := math.Max(0, float64(intOr(in.DeviceTenureMonths, 6)))
	churn := math.Max(0, float64(intOr(in.OSChangeCount12m, 1)+intOr(in.AppReinstallCount, 0)))

	raw := 0.6*math.Min(1, tenure/24) + 0.4*(1-math.Min(1, churn/6))
	return raw, tier(raw, 0.7, 0.4, "High", "Medium", "Low")
}

func expenseElasticity(in valueobject.ExpenseElasticityInput) (float64, string) {
	corr := valueOr(in.ExpenseIncomeCorrelation, 0.5)
	vol := math.Max(0, valueOr(in.ExpenseVolatility, 0.3))

	raw := 0.6*(1-math.Min(1, vol)) + 0.4*clamp(1-math.Abs(corr-0.6)*2, 0, 1)
	return raw, tier(raw, 0.7, 0.4, "Controlled", "Flexible", "Volatile")
}

func utilityStability(in valueobject.UtilityStabilityInput) (float64, string) {
	onTime := clamp(valueOr(in.OnTimeRatio, 0.8), 0, 1)
	variance := math.Max(0, valueOr(in.PaymentVariance, 0.2))
	months := math.Max(0, float64(intOr(in.MonthsActive, 12)))

	raw := 0.5*onTime + 0.3*(1-math.Min(1, variance)) + 0.2*math.Min(1, months/24)
	return raw, tier(raw, 0.8, 0.5, "Consistent", "Variable", "Irregular")
}

func merchantLoyalty(in valueobject.MerchantLoyaltyInput) (float64, string) {
	repeat := clamp(valueOr(in.RepeatMerchantRatio, 0.5), 0, 1)
	refund := math.Max(0, valueOr(in.RefundRatio, 0.05))
	disputes := math.Max(0, valueOr(in.DisputeFrequency, 0.01))

	raw := 0.4*repeat + 0.35*(1-math.Min(1, refund*10)) + 0.25*(1-math.Min(1, disputes*20))
	return raw, tier(raw, 0.75, 0.5, "Premium", "Standard", "Low")
}

func repaymentVelocity(in valueobject.RepaymentVelocityInput) (float64, string) {
	early := math.Max(0, valueOr(in.EarlyRatio, 0.2))
	onTime := math.Max(0, valueOr(in.OnTimeRatio, 0.7))
	late := math.Max(0, valueOr(in.LateRatio, 0.1))

	if total := early + onTime + late; total > 0 {
		early, onTime, late = early/total, onTime/total, late/total
	} else {
		early, onTime, late = 0.2, 0.7, 0.1
	}

	raw := early + 0.7*onTime + 0.2*late
	switch {
	case early >= 0.4:
		return raw, "Early Payer"
	case onTime >= 0.7:
		return raw, "On-Time"
	default:
		return raw, "Late Tendency"
	}
}

func geoResilience(in valueobject.GeoResilienceInput) (float64, string) {
	index := clamp(valueOr(in.LocalEconomicIndex, 0.5), 0, 1)
	corr := clamp(valueOr(in.IncomeLocalCorrelation, 0.5), -1, 1)
	diversity := clamp(valueOr(in.EmploymentDiversity, 0.5), 0, 1)

	raw := 0.4*(1-math.Abs(corr)) + 0.3*index + 0.3*diversity
	return raw, tier(raw, 0.7, 0.4, "High", "Medium", "Low")
}

func tier(raw, upper, lower float64, high, mid, low string) string {
	switch {
	case raw >= upper:
		return high
	case raw >= lower:
		return mid
	default:
		return low
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
