package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

func ptr[T any](v T) *T { return &v }

func validAssessRequest() dto.AssessCreditRequest {
	return dto.AssessCreditRequest{
		TenantID:    "tenant-001",
		ApplicantID: "applicant-001",
		Features: dto.ApplicantFeaturesDTO{
			Age:                   ptr(34),
			MonthlyIncome:         ptr(decimal.NewFromInt(4200)),
			TransactionCount30d:   ptr(42),
			AvgTransactionAmount:  ptr(decimal.RequireFromString("85.50")),
			LocationRiskScore:     ptr(0.15),
			DeviceChangeFrequency: ptr(1),
			PreviousFraudFlag:     ptr(false),
			AccountAgeMonths:      ptr(30),
			ChargebackCount:       ptr(0),
		},
	}
}

type assessFixture struct {
	uc        *usecase.AssessCreditUseCase
	repo      *mockRepository
	publisher *mockPublisher
	cache     *mockCache
	metrics   *mockMetrics
}

func newAssessFixture(t *testing.T, est fixedEstimator) assessFixture {
	t.Helper()
	engine, err := service.NewFusionEngine(service.DefaultPolicy(), est, discardLogger())
	require.NoError(t, err)

	f := assessFixture{
		repo:      &mockRepository{},
		publisher: &mockPublisher{},
		cache:     newMockCache(),
		metrics:   &mockMetrics{},
	}
	f.uc = usecase.NewAssessCreditUseCase(engine, f.repo, f.publisher, f.cache, f.metrics, discardLogger())
	return f
}

func TestAssessCredit_Execute(t *testing.T) {
	t.Run("scores, saves, publishes and caches", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})

		resp, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.NoError(t, err)

		assert.NotEmpty(t, resp.AssessmentID)
		assert.Equal(t, "tenant-001", resp.TenantID)
		assert.Equal(t, "applicant-001", resp.ApplicantID)
		assert.Equal(t, 0.81, resp.ModelAUC)
		assert.GreaterOrEqual(t, resp.FinalScore, 0)
		assert.LessOrEqual(t, resp.FinalScore, 1000)
		assert.NotEmpty(t, resp.CustomerNotice.BandLabel)

		require.Len(t, f.repo.saved, 1)
		assert.Equal(t, resp.AssessmentID, f.repo.saved[0].ID())

		require.Len(t, f.publisher.published, 1)
		completed, ok := f.publisher.published[0].(event.AssessmentCompleted)
		require.True(t, ok)
		assert.Equal(t, resp.FinalScore, completed.FinalScore)
		assert.Equal(t, resp.RiskBand.String(), completed.RiskBand)

		_, cached, _ := f.cache.Get(context.Background(), "tenant-001", resp.AssessmentID)
		assert.True(t, cached)

		assert.Equal(t, []string{resp.RiskBand.String()}, f.metrics.bands)
		assert.Empty(t, f.metrics.failures)
	})

	t.Run("validation errors fail fast", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})
		req := validAssessRequest()
		req.Features.Age = nil

		_, err := f.uc.Execute(context.Background(), req)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Empty(t, f.repo.saved)
		assert.Empty(t, f.publisher.published)
		assert.Equal(t, []string{string(errs.KindValidation)}, f.metrics.failures)
	})

	t.Run("domain validation catches negative income", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})
		req := validAssessRequest()
		req.Features.MonthlyIncome = ptr(decimal.NewFromInt(-10))

		_, err := f.uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Empty(t, f.repo.saved)
	})

	t.Run("estimator outage publishes a failure event and saves nothing", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{err: errEstimatorDown})

		_, err := f.uc.Execute(context.Background(), validAssessRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrEstimatorUnavailable)
		assert.Empty(t, f.repo.saved)
		require.Len(t, f.publisher.published, 1)
		failed, ok := f.publisher.published[0].(event.AssessmentFailed)
		require.True(t, ok)
		assert.Equal(t, event.TypeAssessmentFailed, failed.EventType())
		assert.Equal(t, string(errs.KindEstimatorUnavailable), failed.ErrorKind)
		assert.Equal(t, errs.ComponentEstimator, failed.Component)
		assert.Equal(t, "applicant-001", failed.ApplicantID)
		assert.Equal(t, []string{string(errs.KindEstimatorUnavailable)}, f.metrics.failures)
	})

	t.Run("out-of-range probability is an estimator failure", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 1.3})

		_, err := f.uc.Execute(context.Background(), validAssessRequest())

		assert.ErrorIs(t, err, errs.ErrEstimatorUnavailable)
	})

	t.Run("save failure is returned and nothing is published", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})
		f.repo.saveFunc = func(context.Context, model.CreditAssessment) error {
			return errors.New("db down")
		}

		_, err := f.uc.Execute(context.Background(), validAssessRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save assessment")
		assert.Empty(t, f.publisher.published)
		assert.Equal(t, []string{"INTERNAL"}, f.metrics.failures)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})
		f.publisher.publishFunc = func(context.Context, ...event.DomainEvent) error {
			return errors.New("broker down")
		}

		_, err := f.uc.Execute(context.Background(), validAssessRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish events")
	})

	t.Run("cache failure does not fail the request", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.2})
		f.cache.setErr = errors.New("redis down")

		_, err := f.uc.Execute(context.Background(), validAssessRequest())

		assert.NoError(t, err)
		assert.Len(t, f.repo.saved, 1)
	})

	t.Run("identical inputs give identical results", func(t *testing.T) {
		f := newAssessFixture(t, fixedEstimator{p: 0.37})
		req := validAssessRequest()
		req.Network = &dto.NetworkProfileDTO{AvgContactCreditScore: ptr(720.0), AddressTenureMonths: ptr(36)}

		first, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		second, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.NotEqual(t, first.AssessmentID, second.AssessmentID)
		assert.Equal(t, first.ScoringResult, second.ScoringResult)
	})
}

func TestAssessCredit_NotFoundIsNotAnEngineError(t *testing.T) {
	assert.Empty(t, errs.KindOf(port.ErrAssessmentNotFound))
}
