package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ApplicantFeaturesDTO carries the nine required core features. Pointer
// fields distinguish "missing" from a legitimate zero.
type ApplicantFeaturesDTO struct {
	Age                   *int             `json:"age" validate:"required,gte=18,lte=120"`
	MonthlyIncome         *decimal.Decimal `json:"monthly_income" validate:"required"`
	TransactionCount30d   *int             `json:"transaction_count_30d" validate:"required,gte=0"`
	AvgTransactionAmount  *decimal.Decimal `json:"avg_transaction_amount" validate:"required"`
	LocationRiskScore     *float64         `json:"location_risk_score" validate:"required,gte=0,lte=1"`
	DeviceChangeFrequency *int             `json:"device_change_frequency" validate:"required,gte=0"`
	PreviousFraudFlag     *bool            `json:"previous_fraud_flag" validate:"required"`
	AccountAgeMonths      *int             `json:"account_age_months" validate:"required,gte=0"`
	ChargebackCount       *int             `json:"chargeback_count" validate:"required,gte=0"`
}

// NetworkProfileDTO carries aggregate contact-network ratios and address
// history. It never carries contact identifiers.
type NetworkProfileDTO struct {
	AvgContactCreditScore *float64 `json:"avg_contact_credit_score" validate:"omitempty,gte=0,lte=1000"`
	LowRiskContactRatio   *float64 `json:"low_risk_contact_ratio" validate:"omitempty,gte=0,lte=1"`
	HighRiskContactRatio  *float64 `json:"high_risk_contact_ratio" validate:"omitempty,gte=0,lte=1"`
	NetworkStabilityRatio *float64 `json:"network_stability_ratio" validate:"omitempty,gte=0,lte=1"`
	AddressTenureMonths   *int     `json:"address_tenure_months" validate:"omitempty,gte=0"`
	AddressChangeCount    *int     `json:"address_change_count" validate:"omitempty,gte=0"`
}

type IncomeRhythmDTO struct {
	CoefficientOfVariation *float64 `json:"coefficient_of_variation" validate:"omitempty,gte=0"`
	SeasonalFactor         *float64 `json:"seasonal_factor" validate:"omitempty,gte=0"`
	MonthsObserved         *int     `json:"months_observed" validate:"omitempty,gte=0"`
}

type SavingsCadenceDTO struct {
	MicroSavesPerMonth *float64 `json:"micro_saves_per_month" validate:"omitempty,gte=0"`
	PersistenceMonths  *int     `json:"persistence_months" validate:"omitempty,gte=0"`
	HasEscrow          *bool    `json:"has_escrow"`
}

type DevicePersistenceDTO struct {
	DeviceTenureMonths *int `json:"device_tenure_months" validate:"omitempty,gte=0"`
	OSChangeCount12m   *int `json:"os_change_count_12m" validate:"omitempty,gte=0"`
	AppReinstallCount  *int `json:"app_reinstall_count" validate:"omitempty,gte=0"`
}

type ExpenseElasticityDTO struct {
	ExpenseIncomeCorrelation *float64 `json:"expense_income_correlation" validate:"omitempty,gte=-1,lte=1"`
	ExpenseVolatility        *float64 `json:"expense_volatility" validate:"omitempty,gte=0"`
}

type UtilityStabilityDTO struct {
	OnTimeRatio     *float64 `json:"on_time_ratio" validate:"omitempty,gte=0,lte=1"`
	PaymentVariance *float64 `json:"payment_variance" validate:"omitempty,gte=0"`
	MonthsActive    *int     `json:"months_active" validate:"omitempty,gte=0"`
}

type MerchantLoyaltyDTO struct {
	RepeatMerchantRatio *float64 `json:"repeat_merchant_ratio" validate:"omitempty,gte=0,lte=1"`
	RefundRatio         *float64 `json:"refund_ratio" validate:"omitempty,gte=0,lte=1"`
	DisputeFrequency    *float64 `json:"dispute_frequency" validate:"omitempty,gte=0"`
}

type RepaymentVelocityDTO struct {
	EarlyRatio  *float64 `json:"early_ratio" validate:"omitempty,gte=0,lte=1"`
	OnTimeRatio *float64 `json:"on_time_ratio" validate:"omitempty,gte=0,lte=1"`
	LateRatio   *float64 `json:"late_ratio" validate:"omitempty,gte=0,lte=1"`
}

type GeoResilienceDTO struct {
	LocalEconomicIndex     *float64 `json:"local_economic_index" validate:"omitempty,gte=0,lte=1"`
	IncomeLocalCorrelation *float64 `json:"income_local_correlation" validate:"omitempty,gte=-1,lte=1"`
	EmploymentDiversity    *float64 `json:"employment_diversity" validate:"omitempty,gte=0,lte=1"`
}

// BehavioralInputsDTO groups the optional behavioral categories.
type BehavioralInputsDTO struct {
	IncomeRhythm      *IncomeRhythmDTO      `json:"income_rhythm,omitempty"`
	SavingsCadence    *SavingsCadenceDTO    `json:"savings_cadence,omitempty"`
	DevicePersistence *DevicePersistenceDTO `json:"device_persistence,omitempty"`
	ExpenseElasticity *ExpenseElasticityDTO `json:"expense_elasticity,omitempty"`
	UtilityStability  *UtilityStabilityDTO  `json:"utility_stability,omitempty"`
	MerchantLoyalty   *MerchantLoyaltyDTO   `json:"merchant_loyalty,omitempty"`
	RepaymentVelocity *RepaymentVelocityDTO `json:"repayment_velocity,omitempty"`
	GeoResilience     *GeoResilienceDTO     `json:"geo_resilience,omitempty"`
}

// AssessCreditRequest carries one assessment request. TenantID comes from
// the caller's credentials, never from the body.
type AssessCreditRequest struct {
	TenantID    string               `json:"-" validate:"required"`
	ApplicantID string               `json:"applicant_id" validate:"required,max=128"`
	Features    ApplicantFeaturesDTO `json:"features"`
	Network     *NetworkProfileDTO   `json:"network_profile,omitempty"`
	Behavioral  *BehavioralInputsDTO `json:"behavioral_signals,omitempty"`
}

// GetAssessmentRequest identifies an assessment to retrieve.
type GetAssessmentRequest struct {
	TenantID     string `json:"-" validate:"required"`
	AssessmentID string `json:"assessment_id" validate:"required"`
}

// ListAssessmentsRequest pages through an applicant's assessments. A zero
// Limit means DefaultPageLimit.
type ListAssessmentsRequest struct {
	TenantID    string `json:"-" validate:"required"`
	ApplicantID string `json:"applicant_id" validate:"required,max=128"`
	Limit       int    `json:"limit" validate:"gte=0,lte=100"`
	Offset      int    `json:"offset" validate:"gte=0"`
}

// Page bounds for ListAssessmentsRequest.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// CustomerNoticeResponse is the plain-language adverse-action notice.
type CustomerNoticeResponse struct {
	BandLabel string `json:"band_label"`
	Email     string `json:"email"`
	SMS       string `json:"sms"`
}

// AssessmentResponse is the external representation of a stored assessment.
// The scoring result fields are inlined.
type AssessmentResponse struct {
	AssessmentID   string                 `json:"assessment_id"`
	TenantID       string                 `json:"tenant_id"`
	ApplicantID    string                 `json:"applicant_id"`
	CreatedAt      time.Time              `json:"created_at"`
	CustomerNotice CustomerNoticeResponse `json:"customer_notice"`
	model.ScoringResult
}

// AssessmentSummary is one row of a ListAssessmentsResponse.
type AssessmentSummary struct {
	AssessmentID string    `json:"assessment_id"`
	FinalScore   int       `json:"final_score"`
	RiskBand     string    `json:"risk_band"`
	ReasonCodes  []string  `json:"reason_codes"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListAssessmentsResponse struct {
	Assessments []AssessmentSummary `json:"assessments"`
	Total       int                 `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}
