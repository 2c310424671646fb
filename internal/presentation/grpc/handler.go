package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/auth"
)

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

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if !claims.HasAnyRole(roles...) {
		return status.Error(codes.PermissionDenied, "insufficient permissions")
	}
	return nil
}

// tenantIDFromContext extracts the tenant ID from JWT claims in the context.
func tenantIDFromContext(ctx context.Context) (string, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	return claims.TenantID.String(), nil
}

var _ CreditServiceServer = (*CreditServiceHandler)(nil)

// CreditServiceHandler implements the gRPC CreditServiceServer interface.
type CreditServiceHandler struct {
	UnimplementedCreditServiceServer
	assess CreditAssessor
	get    AssessmentGetter
	list   AssessmentLister
	logger *slog.Logger
}

// NewCreditServiceHandler creates a new gRPC handler.
func NewCreditServiceHandler(
	assess CreditAssessor,
	get AssessmentGetter,
	list AssessmentLister,
	logger *slog.Logger,
) *CreditServiceHandler {
	return &CreditServiceHandler{
		assess: assess,
		get:    get,
		list:   list,
		logger: logger,
	}
}

// AssessCredit scores an applicant and stores the assessment.
func (h *CreditServiceHandler) AssessCredit(ctx context.Context, req *AssessCreditRequest) (*AssessCreditResponse, error) {
	if err := requireRole(ctx, writeRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.assess.Execute(ctx, dto.AssessCreditRequest{
		TenantID:    tenantID,
		ApplicantID: req.ApplicantID,
		Features:    req.Features,
		Network:     req.NetworkProfile,
		Behavioral:  req.BehavioralSignals,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "assess credit", err)
	}
	return &AssessCreditResponse{Assessment: &resp}, nil
}

// GetAssessment returns one stored assessment of the caller's tenant.
func (h *CreditServiceHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if err := requireRole(ctx, readRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.get.Execute(ctx, dto.GetAssessmentRequest{
		TenantID:     tenantID,
		AssessmentID: req.AssessmentID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "get assessment", err)
	}
	return &GetAssessmentResponse{Assessment: &resp}, nil
}

// ListAssessments pages through an applicant's assessments, newest first.
func (h *CreditServiceHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if err := requireRole(ctx, readRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.list.Execute(ctx, dto.ListAssessmentsRequest{
		TenantID:    tenantID,
		ApplicantID: req.ApplicantID,
		Limit:       int(req.PageSize),
		Offset:      int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "list assessments", err)
	}
	return &ListAssessmentsResponse{
		Assessments: resp.Assessments,
		TotalCount:  int32(resp.Total), //nolint:gosec // bounded by repository count
	}, nil
}

// toStatus maps use case errors to gRPC status codes. Unexpected errors are
// logged and reported without detail.
func (h *CreditServiceHandler) toStatus(ctx context.Context, op string, err error) error {
	if errors.Is(err, port.ErrAssessmentNotFound) {
		return status.Error(codes.NotFound, "assessment not found")
	}
	if e, ok := errs.As(err); ok {
		switch e.Kind {
		case errs.KindValidation:
			return status.Error(codes.InvalidArgument, e.Error())
		case errs.KindEstimatorUnavailable:
			return status.Error(codes.Unavailable, "probability estimator unavailable")
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "request canceled")
	}

	h.logger.ErrorContext(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
