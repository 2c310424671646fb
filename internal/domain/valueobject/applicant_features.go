package valueobject

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/errs"
)

// FeatureVectorSize is the dimension of the estimator feature vector.
const FeatureVectorSize = 9

// FeatureNames lists the estimator feature vector in positional order.
var FeatureNames = [FeatureVectorSize]string{
	"age",
	"monthly_income",
	"transaction_count_30d",
	"avg_transaction_amount",
	"location_risk_score",
	"device_change_frequency",
	"previous_fraud_flag",
	"account_age_months",
	"chargeback_count",
}

// ApplicantFeaturesInput carries normalized applicant features where a nil
// field means the feature was not supplied.
type ApplicantFeaturesInput struct {
	Age                   *int
	MonthlyIncome         *decimal.Decimal
	TransactionCount30d   *int
	AvgTransactionAmount  *decimal.Decimal
	LocationRiskScore     *float64
	DeviceChangeFrequency *int
	PreviousFraudFlag     *bool
	AccountAgeMonths      *int
	ChargebackCount       *int
}

// ApplicantFeatures is the immutable, validated core feature set of an applicant.
type ApplicantFeatures struct {
	monthlyIncome         decimal.Decimal
	avgTransactionAmount  decimal.Decimal
	locationRiskScore     float64
	age                   int
	transactionCount30d   int
	deviceChangeFrequency int
	accountAgeMonths      int
	chargebackCount       int
	previousFraudFlag     bool
}

// NewApplicantFeatures validates the input and builds ApplicantFeatures.
// Every feature is required; a missing or out-of-domain feature yields a
// validation error and no zero substitution happens.
func NewApplicantFeatures(in ApplicantFeaturesInput) (ApplicantFeatures, error) {
	switch {
	case in.Age == nil:
		return ApplicantFeatures{}, errs.Validation("age", "is required")
	case in.MonthlyIncome == nil:
		return ApplicantFeatures{}, errs.Validation("monthly_income", "is required")
	case in.TransactionCount30d == nil:
		return ApplicantFeatures{}, errs.Validation("transaction_count_30d", "is required")
	case in.AvgTransactionAmount == nil:
		return ApplicantFeatures{}, errs.Validation("avg_transaction_amount", "is required")
	case in.LocationRiskScore == nil:
		return ApplicantFeatures{}, errs.Validation("location_risk_score", "is required")
	case in.DeviceChangeFrequency == nil:
		return ApplicantFeatures{}, errs.Validation("device_change_frequency", "is required")
	case in.PreviousFraudFlag == nil:
		return ApplicantFeatures{}, errs.Validation("previous_fraud_flag", "is required")
	case in.AccountAgeMonths == nil:
		return ApplicantFeatures{}, errs.Validation("account_age_months", "is required")
	case in.ChargebackCount == nil:
		return ApplicantFeatures{}, errs.Validation("chargeback_count", "is required")
	}

	if *in.Age < 18 || *in.Age > 120 {
		return ApplicantFeatures{}, errs.Validation("age", "must be between 18 and 120, got %d", *in.Age)
	}
	if in.MonthlyIncome.IsNegative() {
		return ApplicantFeatures{}, errs.Validation("monthly_income", "must not be negative, got %s", in.MonthlyIncome)
	}
	if *in.TransactionCount30d < 0 {
		return ApplicantFeatures{}, errs.Validation("transaction_count_30d", "must not be negative, got %d", *in.TransactionCount30d)
	}
	if in.AvgTransactionAmount.IsNegative() {
		return ApplicantFeatures{}, errs.Validation("avg_transaction_amount", "must not be negative, got %s", in.AvgTransactionAmount)
	}
	if loc := *in.LocationRiskScore; math.IsNaN(loc) || loc < 0 || loc > 1 {
		return ApplicantFeatures{}, errs.Validation("location_risk_score", "must be within [0, 1], got %v", loc)
	}
	if *in.DeviceChangeFrequency < 0 {
		return ApplicantFeatures{}, errs.Validation("device_change_frequency", "must not be negative, got %d", *in.DeviceChangeFrequency)
	}
	if *in.AccountAgeMonths < 0 {
		return ApplicantFeatures{}, errs.Validation("account_age_months", "must not be negative, got %d", *in.AccountAgeMonths)
	}
	if *in.ChargebackCount < 0 {
		return ApplicantFeatures{}, errs.Validation("chargeback_count", "must not be negative, got %d", *in.ChargebackCount)
	}

	return ApplicantFeatures{
		age:                   *in.Age,
		monthlyIncome:         *in.MonthlyIncome,
		transactionCount30d:   *in.TransactionCount30d,
		avgTransactionAmount:  *in.AvgTransactionAmount,
		locationRiskScore:     *in.LocationRiskScore,
		deviceChangeFrequency: *in.DeviceChangeFrequency,
		previousFraudFlag:     *in.PreviousFraudFlag,
		accountAgeMonths:      *in.AccountAgeMonths,
		chargebackCount:       *in.ChargebackCount,
	}, nil
}

// --- Accessors ---

func (f ApplicantFeatures) Age() int                              { return f.age }
func (f ApplicantFeatures) MonthlyIncome() decimal.Decimal        { return f.monthlyIncome }
func (f ApplicantFeatures) TransactionCount30d() int              { return f.transactionCount30d }
func (f ApplicantFeatures) AvgTransactionAmount() decimal.Decimal { return f.avgTransactionAmount }
func (f ApplicantFeatures) LocationRiskScore() float64            { return f.locationRiskScore }
func (f ApplicantFeatures) DeviceChangeFrequency() int            { return f.deviceChangeFrequency }
func (f ApplicantFeatures) PreviousFraudFlag() bool               { return f.previousFraudFlag }
func (f ApplicantFeatures) AccountAgeMonths() int                 { return f.accountAgeMonths }
func (f ApplicantFeatures) ChargebackCount() int                  { return f.chargebackCount }

// Vector returns the estimator feature vector in FeatureNames order.
func (f ApplicantFeatures) Vector() [FeatureVectorSize]float64 {
	fraud := 0.0
	if f.previousFraudFlag {
		fraud = 1.0
	}
	return [FeatureVectorSize]float64{
		float64(f.age),
		f.monthlyIncome.InexactFloat64(),
		float64(f.transactionCount30d),
		f.avgTransactionAmount.InexactFloat64(),
		f.locationRiskScore,
		float64(f.deviceChangeFrequency),
		fraud,
		float64(f.accountAgeMonths),
		float64(f.chargebackCount),
	}
}
