package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

const tracerName = "github.com/bibbank/creditrisk/internal/application/usecase"

// AssessCreditUseCase scores an applicant, records the assessment and
// announces it.
type AssessCreditUseCase struct {
	engine    *service.FusionEngine
	repo      port.CreditAssessmentRepository
	publisher port.EventPublisher
	cache     port.AssessmentCache
	metrics   port.AssessmentMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAssessCreditUseCase wires dependencies.
func NewAssessCreditUseCase(
	engine *service.FusionEngine,
	repo port.CreditAssessmentRepository,
	publisher port.EventPublisher,
	cache port.AssessmentCache,
	metrics port.AssessmentMetrics,
	logger *slog.Logger,
) *AssessCreditUseCase {
	return &AssessCreditUseCase{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute validates the request, runs the engine and persists the result.
// Engine failures are returned unchanged so callers can match their kind.
func (uc *AssessCreditUseCase) Execute(ctx context.Context, req dto.AssessCreditRequest) (dto.AssessmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "AssessCredit.Execute",
		trace.WithAttributes(attribute.String("tenant_id", req.TenantID)),
	)
	defer span.End()
	start := time.Now()

	// 1. Validate and map the request.
	if err := dto.Validate(req); err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, err)
	}
	in, err := req.ToAssessmentInput()
	if err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, err)
	}

	// 2. Score.
	result, err := uc.engine.Assess(ctx, in)
	if err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, err)
	}

	// 3. Create the aggregate.
	assessment, err := model.NewCreditAssessment(req.TenantID, req.ApplicantID, result, uc.now())
	if err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, fmt.Errorf("create assessment: %w", err))
	}

	// 4. Persist.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, fmt.Errorf("save assessment: %w", err))
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, assessment.DomainEvents()...); err != nil {
		return dto.AssessmentResponse{}, uc.fail(ctx, span, req, fmt.Errorf("publish events: %w", err))
	}
	assessment = assessment.ClearEvents()

	// 6. Warm the read cache; a cache outage never fails the request.
	if err := uc.cache.Set(ctx, assessment); err != nil {
		uc.logger.WarnContext(ctx, "failed to cache assessment",
			slog.String("assessment_id", assessment.ID()),
			slog.String("error", err.Error()),
		)
	}

	uc.metrics.RecordAssessment(ctx, result.RiskBand.String(), result.FinalScore, time.Since(start))
	span.SetAttributes(
		attribute.String("assessment_id", assessment.ID()),
		attribute.String("risk_band", result.RiskBand.String()),
		attribute.Int("final_score", result.FinalScore),
	)
	uc.logger.InfoContext(ctx, "credit assessment completed",
		slog.String("assessment_id", assessment.ID()),
		slog.String("tenant_id", req.TenantID),
		slog.String("risk_band", result.RiskBand.String()),
		slog.Int("final_score", result.FinalScore),
		slog.Int("signals_available", result.SignalsAvailable),
	)

	return dto.ToAssessmentResponse(assessment), nil
}

// fail records the failure and, for estimator outages, publishes an
// AssessmentFailed event so the component failure is auditable.
func (uc *AssessCreditUseCase) fail(ctx context.Context, span trace.Span, req dto.AssessCreditRequest, err error) error {
	kind := string(errs.KindOf(err))
	if kind == "" {
		kind = "INTERNAL"
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	uc.metrics.RecordFailure(ctx, kind)

	if !errors.Is(err, errs.ErrEstimatorUnavailable) {
		return err
	}

	component := errs.ComponentEstimator
	if e, ok := errs.As(err); ok {
		component = e.Component
	}
	uc.logger.ErrorContext(ctx, "credit assessment failed",
		slog.String("tenant_id", req.TenantID),
		slog.String("error_kind", kind),
		slog.String("component", component),
		slog.String("error", err.Error()),
	)

	failed := event.NewAssessmentFailed(uuid.New().String(), req.TenantID, req.ApplicantID, kind, component, err.Error())
	if pubErr := uc.publisher.Publish(ctx, failed); pubErr != nil {
		uc.logger.ErrorContext(ctx, "failed to publish assessment failure",
			slog.String("error", pubErr.Error()),
		)
	}
	return err
}
