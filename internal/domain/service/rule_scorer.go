package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// Rule reason codes, one per core feature driver.
const (
	CodeAge               valueobject.ReasonCode = "R01"
	CodeIncome            valueobject.ReasonCode = "R02"
	CodeAccountAge        valueobject.ReasonCode = "R03"
	CodeTransactionVolume valueobject.ReasonCode = "R04"
	CodeDeviceChanges     valueobject.ReasonCode = "R05"
	CodeTransactionSize   valueobject.ReasonCode = "R06"
	CodeLocationRisk      valueobject.ReasonCode = "R07"
	CodeFraudFlag         valueobject.ReasonCode = "R10"
	CodeChargebacks       valueobject.ReasonCode = "R11"
	CodeLowValueFrequency valueobject.ReasonCode = "R12"
)

const (
	// RuleNeutralBase is the starting point before feature points are applied.
	RuleNeutralBase = 500
	ruleScoreMin    = 0
	ruleScoreMax    = 1000
)

// RuleScorer computes a deterministic point-based creditworthiness score
// from the nine core applicant features. Higher is better.
type RuleScorer struct{}

// NewRuleScorer creates a RuleScorer.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score returns the base rule score (0-1000) with each feature's points.
func (s *RuleScorer) Score(f valueobject.ApplicantFeatures) model.RuleScore {
	drivers := []model.RuleDriver{
		{Feature: "age", Code: CodeAge, Points: agePoints(f.Age())},
		{Feature: "monthly_income", Code: CodeIncome, Points: incomePoints(f.MonthlyIncome())},
		{Feature: "account_age_months", Code: CodeAccountAge, Points: accountAgePoints(f.AccountAgeMonths())},
		{Feature: "transaction_count_30d", Code: transactionVolumeCode(f), Points: transactionCountPoints(f.TransactionCount30d())},
		{Feature: "avg_transaction_amount", Code: CodeTransactionSize, Points: avgAmountPoints(f.AvgTransactionAmount())},
		{Feature: "location_risk_score", Code: CodeLocationRisk, Points: -int(math.Round(f.LocationRiskScore() * 200))},
		{Feature: "device_change_frequency", Code: CodeDeviceChanges, Points: -min(f.DeviceChangeFrequency()*40, 200)},
		{Feature: "previous_fraud_flag", Code: CodeFraudFlag, Points: fraudPoints(f.PreviousFraudFlag())},
		{Feature: "chargeback_count", Code: CodeChargebacks, Points: -min(f.ChargebackCount()*50, 200)},
	}

	total := RuleNeutralBase
	for _, d := range drivers {
		total += d.Points
	}

	return model.RuleScore{
		Base:    max(ruleScoreMin, min(ruleScoreMax, total)),
		Drivers: drivers,
	}
}

func agePoints(age int) int {
	switch {
	case age < 21:
		return -40
	case age <= 25:
		return 0
	case age <= 35:
		return 30
	case age <= 55:
		return 50
	default:
		return 30
	}
}

var (
	income1k  = decimal.NewFromInt(1000)
	income3k  = decimal.NewFromInt(3000)
	income6k  = decimal.NewFromInt(6000)
	income10k = decimal.NewFromInt(10000)
)

func incomePoints(income decimal.Decimal) int {
	switch {
	case income.LessThan(income1k):
		return -60
	case income.LessThan(income3k):
		return 0
	case income.LessThan(income6k):
		return 50
	case income.LessThan(income10k):
		return 90
	default:
		return 120
	}
}

func accountAgePoints(months int) int {
	switch {
	case months < 6:
		return -80
	case months < 12:
		return -20
	case months < 36:
		return 30
	case months < 72:
		return 60
	default:
		return 90
	}
}

func transactionCountPoints(count int) int {
	switch {
	case count >= 100:
		return -60
	case count >= 50:
		return -20
	case count >= 20:
		return 30
	case count >= 5:
		return 20
	default:
		return -10
	}
}

var (
	amount50   = decimal.NewFromInt(50)
	amount200  = decimal.NewFromInt(200)
	amount1000 = decimal.NewFromInt(1000)
)

func avgAmountPoints(avg decimal.Decimal) int {
	switch {
	case avg.GreaterThanOrEqual(amount1000):
		return -50
	case avg.GreaterThanOrEqual(amount200):
		return 0
	case avg.GreaterThanOrEqual(amount50):
		return 30
	default:
		return 10
	}
}

func fraudPoints(flag bool) int {
	if flag {
		return -200
	}
	return 0
}

// transactionVolumeCode flags the high-frequency, low-value pattern.
func transactionVolumeCode(f valueobject.ApplicantFeatures) valueobject.ReasonCode {
	if f.TransactionCount30d() >= 100 && f.AvgTransactionAmount().LessThan(amount50) {
		return CodeLowValueFrequency
	}
	return CodeTransactionVolume
}
