package grpc

// proto.go defines the gRPC server interface for bib.credit.v1.CreditService.
// Messages travel with the JSON codec registered in json_codec.go, so the
// request and response types below are plain structs with proto field names.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/creditrisk/internal/application/dto"
)

const creditServiceName = "bib.credit.v1.CreditService"

// Full method names, used by interceptors and clients.
const (
	MethodAssessCredit    = "/" + creditServiceName + "/AssessCredit"
	MethodGetAssessment   = "/" + creditServiceName + "/GetAssessment"
	MethodListAssessments = "/" + creditServiceName + "/ListAssessments"
)

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type AssessCreditRequest struct {
	ApplicantID       string                   `json:"applicant_id"`
	Features          dto.ApplicantFeaturesDTO `json:"features"`
	NetworkProfile    *dto.NetworkProfileDTO   `json:"network_profile,omitempty"`
	BehavioralSignals *dto.BehavioralInputsDTO `json:"behavioral_signals,omitempty"`
}

type AssessCreditResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

type GetAssessmentRequest struct {
	AssessmentID string `json:"assessment_id"`
}

type GetAssessmentResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

type ListAssessmentsRequest struct {
	ApplicantID string `json:"applicant_id"`
	PageSize    int32  `json:"page_size"`
	Offset      int32  `json:"offset"`
}

type ListAssessmentsResponse struct {
	Assessments []dto.AssessmentSummary `json:"assessments"`
	TotalCount  int32                   `json:"total_count"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// CreditServiceServer is the server API for CreditService.
type CreditServiceServer interface {
	AssessCredit(context.Context, *AssessCreditRequest) (*AssessCreditResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	mustEmbedUnimplementedCreditServiceServer()
}

// UnimplementedCreditServiceServer provides forward-compatible default implementations.
type UnimplementedCreditServiceServer struct{}

func (UnimplementedCreditServiceServer) AssessCredit(context.Context, *AssessCreditRequest) (*AssessCreditResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessCredit not implemented")
}
func (UnimplementedCreditServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedCreditServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedCreditServiceServer) mustEmbedUnimplementedCreditServiceServer() {}

// RegisterCreditServiceServer registers the CreditServiceServer with the gRPC server.
func RegisterCreditServiceServer(s *grpclib.Server, srv CreditServiceServer) {
	s.RegisterService(&_CreditService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _CreditService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: creditServiceName,
	HandlerType: (*CreditServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessCredit", Handler: _CreditService_AssessCredit_Handler},       //nolint:revive // gRPC handler registration
		{MethodName: "GetAssessment", Handler: _CreditService_GetAssessment_Handler},     //nolint:revive // gRPC handler registration
		{MethodName: "ListAssessments", Handler: _CreditService_ListAssessments_Handler}, //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _CreditService_AssessCredit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(AssessCreditRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditServiceServer).AssessCredit(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodAssessCredit}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CreditServiceServer).AssessCredit(ctx, req.(*AssessCreditRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _CreditService_GetAssessment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAssessmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditServiceServer).GetAssessment(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetAssessment}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CreditServiceServer).GetAssessment(ctx, req.(*GetAssessmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _CreditService_ListAssessments_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListAssessmentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditServiceServer).ListAssessments(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodListAssessments}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CreditServiceServer).ListAssessments(ctx, req.(*ListAssessmentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
