package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/auth"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const testSecret = "secret"

type fakeRequests struct {
	calls []string
}

func (f *fakeRequests) ObserveRequest(transport, method string, code int) {
	f.calls = append(f.calls, transport+" "+method+" "+codes.Code(code).String())
}

func startBufconn(t *testing.T, a authorizer, exp exporter) (*api.EnigmaClient, *grpc.ClientConn, *fakeRequests) {
	t.Helper()

	rec := &fakeRequests{}
	s := NewGRPCServer("bufnet", nopLogger{}, a, exp, rec, testSecret, time.Hour)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return api.NewEnigmaClient(conn), conn, rec
}

func adminCtx(t *testing.T) context.Context {
	t.Helper()
	tok, err := auth.GenerateAdminToken("test", []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, common.BearerPrefix+tok)
}

func TestBufconn_PublicMethodsWithoutToken(t *testing.T) {
	fa := &fakeAuth{session: sampleSession()}
	client, _, rec := startBufconn(t, fa, nil)
	ctx := context.Background()

	resp, err := client.CreateSession(ctx, &api.CreateSessionRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Session.SessionToken)
	assert.Equal(t, "alice", resp.Session.User.Username)
	assert.Equal(t, []api.Permission{{Site: "blog", Permission: "write"}}, resp.Session.User.Permissions)

	fa.verify = models.VerifyResult{Status: models.SessionExpired}
	vr, err := client.VerifySession(ctx, &api.SessionTokenRequest{SessionToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusExpired, vr.Status)
	assert.Nil(t, vr.Session)

	_, err = client.DeleteSession(ctx, &api.SessionTokenRequest{SessionToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "tok", fa.deleted)

	assert.Contains(t, rec.calls, "grpc /enigma.v1.Enigma/CreateSession OK")
}

func TestBufconn_LoginFailureIsUnauthenticated(t *testing.T) {
	client, _, _ := startBufconn(t, &fakeAuth{err: common.ErrLoginFailed}, nil)

	_, err := client.CreateSession(context.Background(), &api.CreateSessionRequest{Username: "alice", Password: "x"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "user or password incorrect", status.Convert(err).Message())
}

func TestBufconn_AdminRequiresToken(t *testing.T) {
	fa := &fakeAuth{users: []models.User{{ID: 1, Username: "alice"}}}
	client, _, _ := startBufconn(t, fa, nil)

	_, err := client.ListUsers(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	resp, err := client.ListUsers(adminCtx(t), &api.Empty{})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "alice", resp.Users[0].Username)
}

func TestBufconn_ExportNotConfigured(t *testing.T) {
	client, _, _ := startBufconn(t, &fakeAuth{}, nil)

	_, err := client.ExportDirectory(adminCtx(t), &api.Empty{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestBufconn_Health(t *testing.T) {
	_, conn, _ := startBufconn(t, &fakeAuth{}, nil)

	hc := healthpb.NewHealthClient(conn)
	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestBufconn_RequestIDEchoed(t *testing.T) {
	client, _, _ := startBufconn(t, &fakeAuth{session: sampleSession()}, nil)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.RequestIDHeaderName, "req-42")
	var header metadata.MD
	_, err := client.CreateSession(ctx, &api.CreateSessionRequest{Username: "alice", Password: "pw"}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get(common.RequestIDHeaderName))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeAuth{}, nil, nil, testSecret, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakeAuth{}, nil, nil, testSecret, 0)
	assert.Error(t, srv.Run(context.Background()))
}
