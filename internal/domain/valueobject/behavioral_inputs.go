package valueobject

import "fmt"

// SignalCategory identifies one of the eight behavioral stability signals.
type SignalCategory struct {
	value string
	code  string
	label string
}

var (
	SignalIncomeRhythm      = SignalCategory{value: "income_rhythm", code: "S01", label: "income rhythm"}
	SignalSavingsCadence    = SignalCategory{value: "savings_cadence", code: "S02", label: "savings cadence"}
	SignalDevicePersistence = SignalCategory{value: "device_persistence", code: "S03", label: "device persistence"}
	SignalExpenseElasticity = SignalCategory{value: "expense_elasticity", code: "S04", label: "expense elasticity"}
	SignalUtilityStability  = SignalCategory{value: "utility_stability", code: "S05", label: "utility payment stability"}
	SignalMerchantLoyalty   = SignalCategory{value: "merchant_loyalty", code: "S06", label: "merchant loyalty"}
	SignalRepaymentVelocity = SignalCategory{value: "repayment_velocity", code: "S07", label: "repayment velocity"}
	SignalGeoResilience     = SignalCategory{value: "geo_resilience", code: "S08", label: "geo-economic resilience"}
)

// SignalCategories lists every category in its fixed evaluation order.
var SignalCategories = []SignalCategory{
	SignalIncomeRhythm,
	SignalSavingsCadence,
	SignalDevicePersistence,
	SignalExpenseElasticity,
	SignalUtilityStability,
	SignalMerchantLoyalty,
	SignalRepaymentVelocity,
	SignalGeoResilience,
}

// SignalCategoryFromString reconstructs a SignalCategory from its string representation.
func SignalCategoryFromString(s string) (SignalCategory, error) {
	for _, c := range SignalCategories {
		if c.value == s {
			return c, nil
		}
	}
	return SignalCategory{}, fmt.Errorf("invalid signal category: %s", s)
}

// String returns the string representation.
func (c SignalCategory) String() string { return c.value }

// Code returns the reason-code identifier for the category.
func (c SignalCategory) Code() string { return c.code }

// Label returns a human-readable name.
func (c SignalCategory) Label() string { return c.label }

// IsZero returns true if the category has not been set.
func (c SignalCategory) IsZero() bool { return c.value == "" }

// Equal checks equality with another SignalCategory.
func (c SignalCategory) Equal(other SignalCategory) bool { return c.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (c SignalCategory) MarshalText() ([]byte, error) { return []byte(c.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SignalCategory) UnmarshalText(text []byte) error {
	parsed, err := SignalCategoryFromString(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Per-category inputs. A nil field was not observed and receives the
// category's neutral default when scored.

type IncomeRhythmInput struct {
	CoefficientOfVariation *float64
	SeasonalFactor         *float64
	MonthsObserved         *int
}

type SavingsCadenceInput struct {
	MicroSavesPerMonth *float64
	PersistenceMonths  *int
	HasEscrow          *bool
}

type DevicePersistenceInput struct {
	DeviceTenureMonths *int
	OSChangeCount12m   *int
	AppReinstallCount  *int
}

type ExpenseElasticityInput struct {
	ExpenseIncomeCorrelation *float64
	ExpenseVolatility        *float64
}

type UtilityStabilityInput struct {
	OnTimeRatio     *float64
	PaymentVariance *float64
	MonthsActive    *int
}

type MerchantLoyaltyInput struct {
	RepeatMerchantRatio *float64
	RefundRatio         *float64
	DisputeFrequency    *float64
}

type RepaymentVelocityInput struct {
	EarlyRatio  *float64
	OnTimeRatio *float64
	LateRatio   *float64
}

type GeoResilienceInput struct {
	LocalEconomicIndex     *float64
	IncomeLocalCorrelation *float64
	EmploymentDiversity    *float64
}

// BehavioralInputs groups the optional per-category inputs.
type BehavioralInputs struct {
	IncomeRhythm      *IncomeRhythmInput
	SavingsCadence    *SavingsCadenceInput
	DevicePersistence *DevicePersistenceInput
	ExpenseElasticity *ExpenseElasticityInput
	UtilityStability  *UtilityStabilityInput
	MerchantLoyalty   *MerchantLoyaltyInput
	RepaymentVelocity *RepaymentVelocityInput
	GeoResilience     *GeoResilienceInput
}

// Present reports whether the category has at least one observed field.
func (b BehavioralInputs) Present(c SignalCategory) bool {
	switch c {
	case SignalIncomeRhythm:
		in := b.IncomeRhythm
		return in != nil && (in.CoefficientOfVariation != nil || in.SeasonalFactor != nil || in.MonthsObserved != nil)
	case SignalSavingsCadence:
		in := b.SavingsCadence
		return in != nil && (in.MicroSavesPerMonth != nil || in.PersistenceMonths != nil || in.HasEscrow != nil)
	case SignalDevicePersistence:
		in := b.DevicePersistence
		return in != nil && (in.DeviceTenureMonths != nil || in.OSChangeCount12m != nil || in.AppReinstallCount != nil)
	case SignalExpenseElasticity:
		in := b.ExpenseElasticity
		return in != nil && (in.ExpenseIncomeCorrelation != nil || in.ExpenseVolatility != nil)
	case SignalUtilityStability:
		in := b.UtilityStability
		return in != nil && (in.OnTimeRatio != nil || in.PaymentVariance != nil || in.MonthsActive != nil)
	case SignalMerchantLoyalty:
		in := b.MerchantLoyalty
		return in != nil && (in.RepeatMerchantRatio != nil || in.RefundRatio != nil || in.DisputeFrequency != nil)
	case SignalRepaymentVelocity:
		in := b.RepaymentVelocity
		return in != nil && (in.EarlyRatio != nil || in.OnTimeRatio != nil || in.LateRatio != nil)
	case SignalGeoResilience:
		in := b.GeoResilience
		return in != nil && (in.LocalEconomicIndex != nil || in.IncomeLocalCorrelation != nil || in.EmploymentDiversity != nil)
	default:
		return false
	}
}

// Count returns the number of present categories.
func (b BehavioralInputs) Count() int {
	n := 0
	for _, c := range SignalCategories {
		if b.Present(c) {
			n++
		}
	}
	return n
}

// SignalScore is the scored outcome of one behavioral category.
type SignalScore struct {
	Category            SignalCategory `json:"category"`
	QualitativeCategory string         `json:"qualitative_category"`
	RawScore            float64        `json:"raw_score"`
	AdjustmentPct       float64        `json:"capped_adjustment_pct"`
	CapPct              float64        `json:"cap_pct"`
}
