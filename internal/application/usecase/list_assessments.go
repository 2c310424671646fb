package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

// ListAssessmentsUseCase pages through an applicant's assessment history.
type ListAssessmentsUseCase struct {
	repo port.CreditAssessmentRepository
}

func NewListAssessmentsUseCase(repo port.CreditAssessmentRepository) *ListAssessmentsUseCase {
	return &ListAssessmentsUseCase{repo: repo}
}

func (uc *ListAssessmentsUseCase) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.ListAssessmentsResponse{}, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = dto.DefaultPageLimit
	}

	page, total, err := uc.repo.FindByApplicantID(ctx, req.TenantID, req.ApplicantID, limit, req.Offset)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("list assessments: %w", err)
	}
	return dto.ToListAssessmentsResponse(page, total, limit, req.Offset), nil
}
