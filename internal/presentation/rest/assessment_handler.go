package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/auth"
)

const maxRequestBody = 1 << 20

// Use case contracts consumed by the handler.
type (
	CreditAssessor interface {
		Execute(ctx context.Context, req dto.AssessCreditRequest) (dto.AssessmentResponse, error)
	}
	AssessmentGetter interface {
		Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error)
	}
	AssessmentLister interface {
		Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error)
	}
)

var (
	writeRoles = []string{auth.RoleAdmin, auth.RoleOperator, auth.RoleAPIClient}
	readRoles  = []string{auth.RoleAdmin, auth.RoleOperator, auth.RoleAPIClient, auth.RoleAuditor}
)

// AssessmentHandler serves the JSON assessment API. Requests must carry
// claims placed in the context by auth.HTTPMiddleware.
type AssessmentHandler struct {
	assess CreditAssessor
	get    AssessmentGetter
	list   AssessmentLister
	logger *slog.Logger
}

func NewAssessmentHandler(assess CreditAssessor, get AssessmentGetter, list AssessmentLister, logger *slog.Logger) *AssessmentHandler {
	return &AssessmentHandler{assess: assess, get: get, list: list, logger: logger}
}

// RegisterRoutes registers the assessment endpoints on mux.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/assessments", h.AssessCredit)
	mux.HandleFunc("GET /v1/assessments/{id}", h.GetAssessment)
	mux.HandleFunc("GET /v1/applicants/{applicantID}/assessments", h.ListAssessments)
}

// AssessCredit handles POST /v1/assessments.
func (h *AssessmentHandler) AssessCredit(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, writeRoles)
	if !ok {
		return
	}

	var req dto.AssessCreditRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{
			Kind:      string(errs.KindValidation),
			Component: errs.ComponentRequest,
			Message:   "malformed request body: " + err.Error(),
		})
		return
	}
	req.TenantID = claims.TenantID.String()

	resp, err := h.assess.Execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(w, r, "assess credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetAssessment handles GET /v1/assessments/{id}.
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, readRoles)
	if !ok {
		return
	}

	resp, err := h.get.Execute(r.Context(), dto.GetAssessmentRequest{
		TenantID:     claims.TenantID.String(),
		AssessmentID: r.PathValue("id"),
	})
	if err != nil {
		h.writeUseCaseError(w, r, "get assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAssessments handles GET /v1/applicants/{applicantID}/assessments.
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, readRoles)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, validationBody(errs.Validation("limit", "must be an integer")))
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, validationBody(errs.Validation("offset", "must be an integer")))
		return
	}

	resp, err := h.list.Execute(r.Context(), dto.ListAssessmentsRequest{
		TenantID:    claims.TenantID.String(),
		ApplicantID: r.PathValue("applicantID"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.writeUseCaseError(w, r, "list assessments", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssessmentHandler) authorize(w http.ResponseWriter, r *http.Request, roles []string) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errorBody{Kind: "UNAUTHENTICATED", Message: "authentication required"})
		return nil, false
	}
	if !claims.HasAnyRole(roles...) {
		writeError(w, http.StatusForbidden, errorBody{Kind: "PERMISSION_DENIED", Message: "insufficient permissions"})
		return nil, false
	}
	return claims, true
}

func (h *AssessmentHandler) writeUseCaseError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, port.ErrAssessmentNotFound) {
		writeError(w, http.StatusNotFound, errorBody{Kind: "NOT_FOUND", Message: "assessment not found"})
		return
	}
	if e, ok := errs.As(err); ok {
		switch e.Kind {
		case errs.KindValidation:
			writeError(w, http.StatusBadRequest, validationBody(e))
			return
		case errs.KindEstimatorUnavailable:
			writeError(w, http.StatusServiceUnavailable, errorBody{
				Kind:      string(e.Kind),
				Component: e.Component,
				Message:   "probability estimator unavailable",
			})
			return
		}
	}

	h.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, errorBody{Kind: "INTERNAL", Message: "internal error"})
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

type errorBody struct {
	Kind      string `json:"kind"`
	Component string `json:"component,omitempty"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func validationBody(e *errs.Error) errorBody {
	return errorBody{
		Kind:      string(e.Kind),
		Component: e.Component,
		Field:     e.Field,
		Message:   e.Message,
	}
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, errorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
