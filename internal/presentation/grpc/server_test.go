package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/creditrisk/pkg/auth"
	"github.com/bibbank/creditrisk/pkg/testutil"
)

func startBufconnServer(t *testing.T, jwtService *auth.JWTService) *grpclib.ClientConn {
	t.Helper()

	srv, err := NewServer(buildTestHandler(), jwtService, ServerOptions{}, testLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "bib-identity",
		Expiration: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestServer_AssessCreditOverJSONCodec(t *testing.T) {
	jwtService := newJWTService(t)
	conn := startBufconnServer(t, jwtService)

	token, err := jwtService.GenerateToken(testutil.TestUserID, testutil.TestTenantID, []string{auth.RoleOperator})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

	var resp AssessCreditResponse
	err = conn.Invoke(ctx, MethodAssessCredit, &AssessCreditRequest{ApplicantID: testutil.TestApplicantID}, &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Assessment)
	assert.Equal(t, testutil.TestTenantID.String(), resp.Assessment.TenantID)
	assert.Equal(t, 577, resp.Assessment.FinalScore)
}

func TestServer_RejectsMissingToken(t *testing.T) {
	conn := startBufconnServer(t, newJWTService(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp GetAssessmentResponse
	err := conn.Invoke(ctx, MethodGetAssessment, &GetAssessmentRequest{AssessmentID: "x"}, &resp)
	requireGRPCCode(t, err, codes.Unauthenticated)
}

func TestServer_HealthSkipsAuth(t *testing.T) {
	conn := startBufconnServer(t, newJWTService(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The health service speaks protobuf, so override the default JSON subtype.
	resp, err := healthpb.NewHealthClient(conn).Check(ctx,
		&healthpb.HealthCheckRequest{Service: HealthServiceName},
		grpclib.CallContentSubtype("proto"),
	)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
