package port

import (
	"context"
	"errors"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
)

// ErrAssessmentNotFound is returned when no assessment matches the lookup.
var ErrAssessmentNotFound = errors.New("credit assessment not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// CreditAssessmentRepository persists and retrieves credit assessments.
type CreditAssessmentRepository interface {
	Save(ctx context.Context, assessment model.CreditAssessment) error
	FindByID(ctx context.Context, tenantID, id string) (model.CreditAssessment, error)
	FindByApplicantID(ctx context.Context, tenantID, applicantID string, limit, offset int) ([]model.CreditAssessment, int, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Cache and metrics ports
// ---------------------------------------------------------------------------

// AssessmentCache is a read-through cache of completed assessments. A miss
// returns (_, false, nil).
type AssessmentCache interface {
	Get(ctx context.Context, tenantID, id string) (model.CreditAssessment, bool, error)
	Set(ctx context.Context, assessment model.CreditAssessment) error
}

// AssessmentMetrics records business metrics for completed and failed assessments.
type AssessmentMetrics interface {
	RecordAssessment(ctx context.Context, riskBand string, finalScore int, duration time.Duration)
	RecordFailure(ctx context.Context, errorKind string)
}
