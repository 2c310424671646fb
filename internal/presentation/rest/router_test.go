package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/internal/presentation/rest"
	"github.com/bibbank/creditrisk/pkg/auth"
	"github.com/bibbank/creditrisk/pkg/testutil"
)

type assessFunc func(context.Context, dto.AssessCreditRequest) (dto.AssessmentResponse, error)

func (f assessFunc) Execute(ctx context.Context, req dto.AssessCreditRequest) (dto.AssessmentResponse, error) {
	return f(ctx, req)
}

type getFunc func(context.Context, dto.GetAssessmentRequest) (dto.AssessmentResponse, error)

func (f getFunc) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	return f(ctx, req)
}

type listFunc func(context.Context, dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error)

func (f listFunc) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	return f(ctx, req)
}

type fixture struct {
	jwt    *auth.JWTService
	router http.Handler

	assessErr  error
	getErr     error
	lastAssess dto.AssessCreditRequest
	lastList   dto.ListAssessmentsRequest
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, limiter *rate.Limiter, checks map[string]rest.ReadinessCheck) *fixture {
	t.Helper()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "bib-identity", Expiration: time.Hour})
	require.NoError(t, err)

	f := &fixture{jwt: jwtService}
	assessments := rest.NewAssessmentHandler(
		assessFunc(func(_ context.Context, req dto.AssessCreditRequest) (dto.AssessmentResponse, error) {
			f.lastAssess = req
			if f.assessErr != nil {
				return dto.AssessmentResponse{}, f.assessErr
			}
			return dto.AssessmentResponse{
				AssessmentID: "a-1",
				TenantID:     req.TenantID,
				ApplicantID:  req.ApplicantID,
				ScoringResult: model.ScoringResult{
					RiskBand:   valueobject.RiskBandLow,
					FinalScore: 742,
				},
			}, nil
		}),
		getFunc(func(_ context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
			if f.getErr != nil {
				return dto.AssessmentResponse{}, f.getErr
			}
			return dto.AssessmentResponse{
				AssessmentID:  req.AssessmentID,
				TenantID:      req.TenantID,
				ScoringResult: model.ScoringResult{RiskBand: valueobject.RiskBandModerate, FinalScore: 512},
			}, nil
		}),
		listFunc(func(_ context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
			f.lastList = req
			return dto.ListAssessmentsResponse{Assessments: []dto.AssessmentSummary{}, Limit: req.Limit, Offset: req.Offset}, nil
		}),
		discardLogger(),
	)

	f.router = rest.NewRouter(rest.RouterConfig{
		Health:      rest.NewHealthHandler("credit-service", checks, discardLogger()),
		Assessments: assessments,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# HELP credit_assessments_total\n")
		}),
		JWT:     jwtService,
		Limiter: limiter,
		Logger:  discardLogger(),
	})
	return f
}

func (f *fixture) token(t *testing.T, roles ...string) string {
	t.Helper()
	tok, err := f.jwt.GenerateToken(testutil.TestUserID, testutil.TestTenantID, roles)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type errorEnvelope struct {
	Error struct {
		Kind      string `json:"kind"`
		Component string `json:"component"`
		Field     string `json:"field"`
		Message   string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAssessCredit_Created(t *testing.T) {
	f := newFixture(t, nil, nil)

	body := `{"applicant_id":"applicant-0001","tenant_id":"spoofed","features":{"age":34}}`
	rec := f.do(t, http.MethodPost, "/v1/assessments", f.token(t, auth.RoleAPIClient), body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, testutil.TestTenantID.String(), f.lastAssess.TenantID)
	require.NotNil(t, f.lastAssess.Features.Age)
	assert.Equal(t, 34, *f.lastAssess.Features.Age)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a-1", resp["assessment_id"])
	assert.EqualValues(t, 742, resp["final_score"])
}

func TestAssessCredit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		token     func(f *fixture) string
		body      string
		useCase   error
		wantCode  int
		wantKind  string
		wantField string
	}{
		{
			name:     "missing token",
			token:    func(*fixture) string { return "" },
			body:     `{}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "auditor may not assess",
			token:    func(f *fixture) string { return f.token(t, auth.RoleAuditor) },
			body:     `{}`,
			wantCode: http.StatusForbidden,
			wantKind: "PERMISSION_DENIED",
		},
		{
			name:     "malformed body",
			token:    func(f *fixture) string { return f.token(t, auth.RoleOperator) },
			body:     `{"applicant_id":`,
			wantCode: http.StatusBadRequest,
			wantKind: string(errs.KindValidation),
		},
		{
			name:      "validation error",
			token:     func(f *fixture) string { return f.token(t, auth.RoleOperator) },
			body:      `{"applicant_id":"a"}`,
			useCase:   errs.Validation("features.age", "is required"),
			wantCode:  http.StatusBadRequest,
			wantKind:  string(errs.KindValidation),
			wantField: "features.age",
		},
		{
			name:     "estimator unavailable",
			token:    func(f *fixture) string { return f.token(t, auth.RoleOperator) },
			body:     `{"applicant_id":"a"}`,
			useCase:  errs.EstimatorUnavailable(context.DeadlineExceeded, "timed out"),
			wantCode: http.StatusServiceUnavailable,
			wantKind: string(errs.KindEstimatorUnavailable),
		},
		{
			name:     "storage failure",
			token:    func(f *fixture) string { return f.token(t, auth.RoleOperator) },
			body:     `{"applicant_id":"a"}`,
			useCase:  errors.New("save assessment: connection reset"),
			wantCode: http.StatusInternalServerError,
			wantKind: "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			f.assessErr = tt.useCase

			rec := f.do(t, http.MethodPost, "/v1/assessments", tt.token(f), tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantKind == "" {
				return
			}
			env := decodeError(t, rec)
			assert.Equal(t, tt.wantKind, env.Error.Kind)
			assert.Equal(t, tt.wantField, env.Error.Field)
			assert.NotContains(t, env.Error.Message, "connection reset")
		})
	}
}

func TestGetAssessment(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := uuid.NewString()

	rec := f.do(t, http.MethodGet, "/v1/assessments/"+id, f.token(t, auth.RoleAuditor), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.AssessmentID)
	assert.Equal(t, testutil.TestTenantID.String(), resp.TenantID)

	f.getErr = port.ErrAssessmentNotFound
	rec = f.do(t, http.MethodGet, "/v1/assessments/"+id, f.token(t, auth.RoleAuditor), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAssessments_Paging(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/v1/applicants/applicant-0001/assessments?limit=5&offset=10", f.token(t, auth.RoleOperator), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "applicant-0001", f.lastList.ApplicantID)
	assert.Equal(t, 5, f.lastList.Limit)
	assert.Equal(t, 10, f.lastList.Offset)

	rec = f.do(t, http.MethodGet, "/v1/applicants/applicant-0001/assessments?limit=ten", f.token(t, auth.RoleOperator), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit", decodeError(t, rec).Error.Field)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, rest.NewLimiter(1, 1), nil)
	tok := f.token(t, auth.RoleOperator)

	first := f.do(t, http.MethodGet, "/v1/assessments/x", tok, "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := f.do(t, http.MethodGet, "/v1/assessments/x", tok, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// Probes are never limited.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", "").Code)
}

func TestNewLimiter_DisabledForNonPositiveRate(t *testing.T) {
	assert.Nil(t, rest.NewLimiter(0, 10))
	assert.NotNil(t, rest.NewLimiter(5, 0))
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health rest.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "credit-service", health.Service)

	rec = f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "credit_assessments_total")
}

func TestReadyz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		f := newFixture(t, nil, map[string]rest.ReadinessCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})
		rec := f.do(t, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp rest.ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("failing check reports 503", func(t *testing.T) {
		f := newFixture(t, nil, map[string]rest.ReadinessCheck{
			"database":  func(context.Context) error { return nil },
			"estimator": func(context.Context) error { return errors.New("circuit open") },
		})
		rec := f.do(t, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp rest.ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "circuit open", resp.Checks["estimator"])
		assert.Equal(t, "ok", resp.Checks["database"])
	})
}
