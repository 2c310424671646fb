package dto

import (
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ToAssessmentInput maps the request onto validated domain value objects.
func (r AssessCreditRequest) ToAssessmentInput() (service.AssessmentInput, error) {
	f := r.Features
	features, err := valueobject.NewApplicantFeatures(valueobject.ApplicantFeaturesInput{
		Age:                   f.Age,
		MonthlyIncome:         f.MonthlyIncome,
		TransactionCount30d:   f.TransactionCount30d,
		AvgTransactionAmount:  f.AvgTransactionAmount,
		LocationRiskScore:     f.LocationRiskScore,
		DeviceChangeFrequency: f.DeviceChangeFrequency,
		PreviousFraudFlag:     f.PreviousFraudFlag,
		AccountAgeMonths:      f.AccountAgeMonths,
		ChargebackCount:       f.ChargebackCount,
	})
	if err != nil {
		return service.AssessmentInput{}, err
	}

	in := service.AssessmentInput{Features: features}

	if n := r.Network; n != nil {
		profile, err := valueobject.NewNetworkProfile(valueobject.NetworkProfileInput{
			AvgContactCreditScore: n.AvgContactCreditScore,
			LowRiskContactRatio:   n.LowRiskContactRatio,
			HighRiskContactRatio:  n.HighRiskContactRatio,
			NetworkStabilityRatio: n.NetworkStabilityRatio,
			AddressTenureMonths:   n.AddressTenureMonths,
			AddressChangeCount:    n.AddressChangeCount,
		})
		if err != nil {
			return service.AssessmentInput{}, err
		}
		in.Network = profile
	}

	if b := r.Behavioral; b != nil {
		in.Behavioral = b.toValueObject()
	}
	return in, nil
}

func (b BehavioralInputsDTO) toValueObject() valueobject.BehavioralInputs {
	var out valueobject.BehavioralInputs
	if s := b.IncomeRhythm; s != nil {
		out.IncomeRhythm = &valueobject.IncomeRhythmInput{
			CoefficientOfVariation: s.CoefficientOfVariation,
			SeasonalFactor:         s.SeasonalFactor,
			MonthsObserved:         s.MonthsObserved,
		}
	}
	if s := b.SavingsCadence; s != nil {
		out.SavingsCadence = &valueobject.SavingsCadenceInput{
			MicroSavesPerMonth: s.MicroSavesPerMonth,
			PersistenceMonths:  s.PersistenceMonths,
			HasEscrow:          s.HasEscrow,
		}
	}
	if s := b.DevicePersistence; s != nil {
		out.DevicePersistence = &valueobject.DevicePersistenceInput{
			DeviceTenureMonths: s.DeviceTenureMonths,
			OSChangeCount12m:   s.OSChangeCount12m,
			AppReinstallCount:  s.AppReinstallCount,
		}
	}
	if s := b.ExpenseElasticity; s != nil {
		out.ExpenseElasticity = &valueobject.ExpenseElasticityInput{
			ExpenseIncomeCorrelation: s.ExpenseIncomeCorrelation,
			ExpenseVolatility:        s.ExpenseVolatility,
		}
	}
	if s := b.UtilityStability; s != nil {
		out.UtilityStability = &valueobject.UtilityStabilityInput{
			OnTimeRatio:     s.OnTimeRatio,
			PaymentVariance: s.PaymentVariance,
			MonthsActive:    s.MonthsActive,
		}
	}
	if s := b.MerchantLoyalty; s != nil {
		out.MerchantLoyalty = &valueobject.MerchantLoyaltyInput{
			RepeatMerchantRatio: s.RepeatMerchantRatio,
			RefundRatio:         s.RefundRatio,
			DisputeFrequency:    s.DisputeFrequency,
		}
	}
	if s := b.RepaymentVelocity; s != nil {
		out.RepaymentVelocity = &valueobject.RepaymentVelocityInput{
			EarlyRatio:  s.EarlyRatio,
			OnTimeRatio: s.OnTimeRatio,
			LateRatio:   s.LateRatio,
		}
	}
	if s := b.GeoResilience; s != nil {
		out.GeoResilience = &valueobject.GeoResilienceInput{
			LocalEconomicIndex:     s.LocalEconomicIndex,
			IncomeLocalCorrelation: s.IncomeLocalCorrelation,
			EmploymentDiversity:    s.EmploymentDiversity,
		}
	}
	return out
}

// ToAssessmentResponse renders an aggregate with its customer notice.
func ToAssessmentResponse(a model.CreditAssessment) AssessmentResponse {
	notice := service.BuildCustomerNotice(a.Result())
	return AssessmentResponse{
		AssessmentID: a.ID(),
		TenantID:     a.TenantID(),
		ApplicantID:  a.ApplicantID(),
		CreatedAt:    a.CreatedAt().UTC(),
		CustomerNotice: CustomerNoticeResponse{
			BandLabel: notice.BandLabel,
			Email:     notice.Email,
			SMS:       notice.SMS,
		},
		ScoringResult: a.Result(),
	}
}

// ToListAssessmentsResponse renders one page of assessments.
func ToListAssessmentsResponse(page []model.CreditAssessment, total, limit, offset int) ListAssessmentsResponse {
	out := ListAssessmentsResponse{
		Assessments: make([]AssessmentSummary, 0, len(page)),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}
	for _, a := range page {
		r := a.Result()
		out.Assessments = append(out.Assessments, AssessmentSummary{
			AssessmentID: a.ID(),
			FinalScore:   r.FinalScore,
			RiskBand:     r.RiskBand.String(),
			ReasonCodes:  r.ReasonCodes,
			CreatedAt:    a.CreatedAt().UTC(),
		})
	}
	return out
}
