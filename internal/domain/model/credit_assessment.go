package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/event"
)

// ---------------------------------------------------------------------------
// CreditAssessment aggregate root
// ---------------------------------------------------------------------------

// CreditAssessment is the persisted record of one scoring decision. It is
// immutable once created.
type CreditAssessment struct {
	id           string
	tenantID     string
	applicantID  string
	result       ScoringResult
	version      int
	createdAt    time.Time
	domainEvents []event.DomainEvent
}

// NewCreditAssessment records a completed assessment and emits AssessmentCompleted.
func NewCreditAssessment(tenantID, applicantID string, result ScoringResult, now time.Time) (CreditAssessment, error) {
	if tenantID == "" {
		return CreditAssessment{}, errors.New("tenant ID is required")
	}
	if applicantID == "" {
		return CreditAssessment{}, errors.New("applicant ID is required")
	}
	if result.RiskBand.IsZero() {
		return CreditAssessment{}, errors.New("scoring result has no risk band")
	}

	id := uuid.New().String()
	a := CreditAssessment{
		id:          id,
		tenantID:    tenantID,
		applicantID: applicantID,
		result:      result,
		version:     1,
		createdAt:   now,
	}
	a.domainEvents = append(a.domainEvents, event.NewAssessmentCompleted(
		id, tenantID, applicantID,
		result.FinalScore, result.RiskBand.String(),
		result.BaseRuleScore, result.EnhancedRuleScore, result.MLProbability,
		result.SignalsAvailable, result.ReasonCodes, result.ModelAUC,
	))
	return a, nil
}

// ReconstructCreditAssessment rebuilds an aggregate from persistence without side-effects.
func ReconstructCreditAssessment(
	id, tenantID, applicantID string,
	result ScoringResult,
	version int,
	createdAt time.Time,
) CreditAssessment {
	return CreditAssessment{
		id:          id,
		tenantID:    tenantID,
		applicantID: applicantID,
		result:      result,
		version:     version,
		createdAt:   createdAt,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a CreditAssessment) ID() string                        { return a.id }
func (a CreditAssessment) TenantID() string                  { return a.tenantID }
func (a CreditAssessment) ApplicantID() string               { return a.applicantID }
func (a CreditAssessment) Result() ScoringResult             { return a.result }
func (a CreditAssessment) ModelAUC() float64                 { return a.result.ModelAUC }
func (a CreditAssessment) Version() int                      { return a.version }
func (a CreditAssessment) CreatedAt() time.Time              { return a.createdAt }
func (a CreditAssessment) DomainEvents() []event.DomainEvent { return a.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a CreditAssessment) ClearEvents() CreditAssessment {
	next := a
	next.domainEvents = nil
	return next
}
