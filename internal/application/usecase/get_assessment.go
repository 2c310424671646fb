package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

// GetAssessmentUseCase reads one assessment, through the cache.
type GetAssessmentUseCase struct {
	repo   port.CreditAssessmentRepository
	cache  port.AssessmentCache
	logger *slog.Logger
}

func NewGetAssessmentUseCase(repo port.CreditAssessmentRepository, cache port.AssessmentCache, logger *slog.Logger) *GetAssessmentUseCase {
	return &GetAssessmentUseCase{repo: repo, cache: cache, logger: logger}
}

// Execute returns port.ErrAssessmentNotFound (wrapped) when the assessment
// does not exist in the caller's tenant.
func (uc *GetAssessmentUseCase) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.AssessmentResponse{}, err
	}

	cached, ok, err := uc.cache.Get(ctx, req.TenantID, req.AssessmentID)
	if err != nil {
		uc.logger.WarnContext(ctx, "assessment cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		return dto.ToAssessmentResponse(cached), nil
	}

	assessment, err := uc.repo.FindByID(ctx, req.TenantID, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("find assessment: %w", err)
	}

	if err := uc.cache.Set(ctx, assessment); err != nil {
		uc.logger.WarnContext(ctx, "failed to cache assessment", slog.String("error", err.Error()))
	}
	return dto.ToAssessmentResponse(assessment), nil
}
