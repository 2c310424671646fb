package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/model"
)

func TestListAssessments_Execute(t *testing.T) {
	t.Run("applies the default page size", func(t *testing.T) {
		var gotLimit, gotOffset int
		repo := &mockRepository{
			listFunc: func(_ context.Context, tenantID, applicantID string, limit, offset int) ([]model.CreditAssessment, int, error) {
				assert.Equal(t, "tenant-001", tenantID)
				assert.Equal(t, "applicant-001", applicantID)
				gotLimit, gotOffset = limit, offset
				return []model.CreditAssessment{storedAssessment(t, tenantID, 300)}, 41, nil
			},
		}
		uc := usecase.NewListAssessmentsUseCase(repo)

		resp, err := uc.Execute(context.Background(), dto.ListAssessmentsRequest{
			TenantID: "tenant-001", ApplicantID: "applicant-001", Offset: 20,
		})
		require.NoError(t, err)

		assert.Equal(t, dto.DefaultPageLimit, gotLimit)
		assert.Equal(t, 20, gotOffset)
		assert.Equal(t, 41, resp.Total)
		assert.Equal(t, dto.DefaultPageLimit, resp.Limit)
		require.Len(t, resp.Assessments, 1)
		assert.Equal(t, "Low", resp.Assessments[0].RiskBand)
	})

	t.Run("rejects oversized pages before touching the repository", func(t *testing.T) {
		uc := usecase.NewListAssessmentsUseCase(&mockRepository{
			listFunc: func(context.Context, string, string, int, int) ([]model.CreditAssessment, int, error) {
				t.Fatal("repository must not be queried")
				return nil, 0, nil
			},
		})

		_, err := uc.Execute(context.Background(), dto.ListAssessmentsRequest{
			TenantID: "tenant-001", ApplicantID: "applicant-001", Limit: dto.MaxPageLimit + 1,
		})

		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("empty history", func(t *testing.T) {
		uc := usecase.NewListAssessmentsUseCase(&mockRepository{})

		resp, err := uc.Execute(context.Background(), dto.ListAssessmentsRequest{
			TenantID: "tenant-001", ApplicantID: "applicant-001",
		})

		require.NoError(t, err)
		assert.NotNil(t, resp.Assessments)
		assert.Empty(t, resp.Assessments)
	})

	t.Run("repository errors are wrapped", func(t *testing.T) {
		uc := usecase.NewListAssessmentsUseCase(&mockRepository{
			listFunc: func(context.Context, string, string, int, int) ([]model.CreditAssessment, int, error) {
				return nil, 0, errors.New("db down")
			},
		})

		_, err := uc.Execute(context.Background(), dto.ListAssessmentsRequest{
			TenantID: "tenant-001", ApplicantID: "applicant-001",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list assessments")
	})
}
