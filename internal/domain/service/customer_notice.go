package service

import (
	"fmt"
	"strings"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const (
	smsMaxLength     = 160
	noticeFactorsMax = 2
)

var bandLabels = map[valueobject.RiskBand]string{
	valueobject.RiskBandLow:      "Needs Attention",
	valueobject.RiskBandModerate: "Good Standing with Room for Growth",
	valueobject.RiskBandHigh:     "Excellent Standing",
}

var improvementTips = map[valueobject.ReasonCode]string{
	CodeCommunityTrust:    "Building relationships with established financial contacts can help over time.",
	CodeAddressStability:  "Keeping a stable address helps demonstrate consistency.",
	"S01":                 "Steady, predictable income deposits strengthen your profile.",
	"S02":                 "Small, regular savings transfers show healthy habits.",
	"S03":                 "Using the same device for your account builds trust.",
	"S04":                 "Keeping spending in line with income reduces risk.",
	"S05":                 "Paying utility bills on time every month helps.",
	"S06":                 "Fewer refunds and disputes improve your standing.",
	"S07":                 "Paying on or before the due date has a strong positive effect.",
	"S08":                 "Diversifying income sources adds resilience.",
	CodeAge:               "A longer track record will help as it builds.",
	CodeIncome:            "Documenting all sources of income can improve your assessment.",
	CodeAccountAge:        "Your score will benefit as your account matures.",
	CodeTransactionVolume: "Consolidating many small payments can help.",
	CodeDeviceChanges:     "Avoid frequently switching devices for account access.",
	CodeTransactionSize:   "Keeping transaction sizes consistent helps.",
	CodeLocationRisk:      "Accessing your account from usual locations helps.",
	CodeFraudFlag:         "Contact support to review any past account flags.",
	CodeChargebacks:       "Resolving issues with merchants directly avoids chargebacks.",
	CodeLowValueFrequency: "Consolidating many small payments can help.",
}

// CustomerNotice is the customer-safe summary of an assessment.
type CustomerNotice struct {
	BandLabel string `json:"band_label"`
	Email     string `json:"email"`
	SMS       string `json:"sms"`
}

// BuildCustomerNotice renders the email and SMS notices for result. The
// output depends only on the band and the ranked key factors.
func BuildCustomerNotice(result model.ScoringResult) CustomerNotice {
	label := bandLabels[result.RiskBand]

	var negatives, positives []valueobject.KeyFactor
	for _, f := range result.KeyFactors {
		switch {
		case f.Direction == valueobject.DirectionNegative && len(negatives) < noticeFactorsMax:
			negatives = append(negatives, f)
		case f.Direction == valueobject.DirectionPositive && len(positives) < noticeFactorsMax:
			positives = append(positives, f)
		}
	}

	return CustomerNotice{
		BandLabel: label,
		Email:     renderEmail(label, positives, negatives),
		SMS:       renderSMS(label, positives, negatives),
	}
}

func renderEmail(label string, positives, negatives []valueobject.KeyFactor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your credit standing: %s\n", label)

	if len(positives) > 0 {
		b.WriteString("\nWhat is working in your favor:\n")
		for _, f := range positives {
			fmt.Fprintf(&b, "- %s\n", f.Factor)
		}
	}
	if len(negatives) > 0 {
		b.WriteString("\nWhere you can improve:\n")
		for _, f := range negatives {
			fmt.Fprintf(&b, "- %s. %s\n", f.Factor, improvementTips[f.Code])
		}
	}
	return b.String()
}

func renderSMS(label string, positives, negatives []valueobject.KeyFactor) string {
	msg := "Credit standing: " + label + "."
	if len(positives) > 0 {
		msg += " Strength: " + positives[0].Factor + "."
	}
	if len(negatives) > 0 {
		msg += " Improve: " + negatives[0].Factor + "."
	}
	if len(msg) <= smsMaxLength {
		return msg
	}
	return msg[:smsMaxLength-3] + "..."
}
