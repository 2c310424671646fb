package event

import (
	"github.com/bibbank/creditrisk/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	AggregateTypeCreditAssessment = "CreditAssessment"

	TypeAssessmentCompleted = "credit.assessment.completed"
	TypeAssessmentFailed    = "credit.assessment.failed"
)

// AssessmentCompleted is raised when an applicant has been scored.
type AssessmentCompleted struct {
	events.BaseEvent
	ApplicantID       string   `json:"applicant_id"`
	FinalScore        int      `json:"final_score"`
	RiskBand          string   `json:"risk_band"`
	BaseRuleScore     int      `json:"base_rule_score"`
	EnhancedRuleScore float64  `json:"enhanced_rule_score"`
	MLProbability     float64  `json:"ml_probability"`
	SignalsAvailable  int      `json:"signals_available"`
	ReasonCodes       []string `json:"reason_codes"`
	ModelAUC          float64  `json:"model_auc"`
}

func NewAssessmentCompleted(
	assessmentID, tenantID, applicantID string,
	finalScore int, riskBand string,
	baseRuleScore int, enhancedRuleScore, mlProbability float64,
	signalsAvailable int, reasonCodes []string, modelAUC float64,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:         events.NewBaseEvent(TypeAssessmentCompleted, assessmentID, AggregateTypeCreditAssessment, tenantID),
		ApplicantID:       applicantID,
		FinalScore:        finalScore,
		RiskBand:          riskBand,
		BaseRuleScore:     baseRuleScore,
		EnhancedRuleScore: enhancedRuleScore,
		MLProbability:     mlProbability,
		SignalsAvailable:  signalsAvailable,
		ReasonCodes:       reasonCodes,
		ModelAUC:          modelAUC,
	}
}

// AssessmentFailed is raised when an assessment could not be produced. It
// names the failing component for the audit trail.
type AssessmentFailed struct {
	events.BaseEvent
	ApplicantID string `json:"applicant_id"`
	ErrorKind   string `json:"error_kind"`
	Component   string `json:"component"`
	Reason      string `json:"reason"`
}

func NewAssessmentFailed(attemptID, tenantID, applicantID, errorKind, component, reason string) AssessmentFailed {
	return AssessmentFailed{
		BaseEvent:   events.NewBaseEvent(TypeAssessmentFailed, attemptID, AggregateTypeCreditAssessment, tenantID),
		ApplicantID: applicantID,
		ErrorKind:   errorKind,
		Component:   component,
		Reason:      reason,
	}
}
