package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/server/auth"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake api client
 *************/

type fakeAPI struct {
	lastCreateReq *api.CreateUserRequest
	lastUserReq   *api.UsernameRequest
	lastPermReq   *api.PermissionRequest
	hadDeadline   bool

	user     api.User
	users    []api.User
	granted  bool
	sessions []api.SessionInfo
	deleted  int64
	export   *api.ExportDirectoryResponse
	err      error
}

func (f *fakeAPI) CreateUser(ctx context.Context, in *api.CreateUserRequest, _ ...grpc.CallOption) (*api.UserResponse, error) {
	f.lastCreateReq = in
	_, f.hadDeadline = ctx.Deadline()
	return &api.UserResponse{User: f.user}, f.err
}
func (f *fakeAPI) DeleteUser(_ context.Context, in *api.UsernameRequest, _ ...grpc.CallOption) (*api.Empty, error) {
	f.lastUserReq = in
	return &api.Empty{}, f.err
}
func (f *fakeAPI) GetUser(_ context.Context, in *api.UsernameRequest, _ ...grpc.CallOption) (*api.UserResponse, error) {
	f.lastUserReq = in
	return &api.UserResponse{User: f.user}, f.err
}
func (f *fakeAPI) ListUsers(context.Context, *api.Empty, ...grpc.CallOption) (*api.ListUsersResponse, error) {
	return &api.ListUsersResponse{Users: f.users}, f.err
}
func (f *fakeAPI) AddPermission(_ context.Context, in *api.PermissionRequest, _ ...grpc.CallOption) (*api.Empty, error) {
	f.lastPermReq = in
	return &api.Empty{}, f.err
}
func (f *fakeAPI) RemovePermission(_ context.Context, in *api.PermissionRequest, _ ...grpc.CallOption) (*api.Empty, error) {
	f.lastPermReq = in
	return &api.Empty{}, f.err
}
func (f *fakeAPI) HasPermission(_ context.Context, in *api.PermissionRequest, _ ...grpc.CallOption) (*api.HasPermissionResponse, error) {
	f.lastPermReq = in
	return &api.HasPermissionResponse{Granted: f.granted}, f.err
}
func (f *fakeAPI) ListSessions(_ context.Context, in *api.UsernameRequest, _ ...grpc.CallOption) (*api.ListSessionsResponse, error) {
	f.lastUserReq = in
	return &api.ListSessionsResponse{Sessions: f.sessions}, f.err
}
func (f *fakeAPI) SweepSessions(context.Context, *api.Empty, ...grpc.CallOption) (*api.SweepSessionsResponse, error) {
	return &api.SweepSessionsResponse{Deleted: f.deleted}, f.err
}
func (f *fakeAPI) ExportDirectory(context.Context, *api.Empty, ...grpc.CallOption) (*api.ExportDirectoryResponse, error) {
	return f.export, f.err
}

/*************
 * adminTokenInterceptor tests
 *************/

func TestInterceptor_AttachesSignedAdminToken(t *testing.T) {
	c := &GRPCClient{secretKey: []byte("secret")}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		vals := md.Get(common.AuthorizationHeaderName)
		require.Len(t, vals, 1)
		require.True(t, strings.HasPrefix(vals[0], common.BearerPrefix))

		subject, err := auth.ParseAdminToken(strings.TrimPrefix(vals[0], common.BearerPrefix), []byte("secret"), time.Hour)
		require.NoError(t, err)
		require.Equal(t, adminSubject, subject)
		return nil
	}

	require.NoError(t, c.adminTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_ReplacesExistingAuthorization(t *testing.T) {
	c := &GRPCClient{secretKey: []byte("secret")}
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, "Bearer stale")

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		vals := md.Get(common.AuthorizationHeaderName)
		require.Len(t, vals, 1)
		require.NotEqual(t, "Bearer stale", vals[0])
		return nil
	}

	require.NoError(t, c.adminTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_PassesErrorsThrough(t *testing.T) {
	c := &GRPCClient{secretKey: []byte("secret")}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	require.Error(t, c.adminTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.NoError(t, c.mapError(nil))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "user not found")), ErrNotFound)
	require.ErrorIs(t, c.mapError(status.Error(codes.AlreadyExists, "dup")), ErrAlreadyExists)
	require.ErrorIs(t, c.mapError(status.Error(codes.InvalidArgument, "empty")), ErrInvalidArgument)
	require.ErrorIs(t, c.mapError(status.Error(codes.FailedPrecondition, "backup")), ErrNotConfigured)
	require.ErrorContains(t, c.mapError(status.Error(codes.NotFound, "user not found")), "user not found")

	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e), "rpc error:")
}

/*************
 * call tests
 *************/

func TestCreateUser_SendsRequestWithDeadline(t *testing.T) {
	email := "a@x"
	f := &fakeAPI{user: api.User{ID: 3, Username: "alice", Email: &email}}
	c := &GRPCClient{client: f, timeout: time.Second}

	u, err := c.CreateUser(context.Background(), "alice", "pw", &email)
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, "alice", f.lastCreateReq.Username)
	require.Equal(t, "pw", f.lastCreateReq.Password)
	require.Equal(t, &email, f.lastCreateReq.Email)
	require.True(t, f.hadDeadline)
}

func TestCreateUser_MapsError(t *testing.T) {
	f := &fakeAPI{err: status.Error(codes.AlreadyExists, "username already exists")}
	c := &GRPCClient{client: f}
	_, err := c.CreateUser(context.Background(), "alice", "pw", nil)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDeleteAndGetUser(t *testing.T) {
	f := &fakeAPI{user: api.User{ID: 9, Username: "bob"}}
	c := &GRPCClient{client: f}

	require.NoError(t, c.DeleteUser(context.Background(), "bob"))
	require.Equal(t, "bob", f.lastUserReq.Username)

	u, err := c.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, int64(9), u.ID)

	f.err = status.Error(codes.NotFound, "user not found")
	require.ErrorIs(t, c.DeleteUser(context.Background(), "bob"), ErrNotFound)
}

func TestListUsers(t *testing.T) {
	f := &fakeAPI{users: []api.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}}
	c := &GRPCClient{client: f}

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestPermissions(t *testing.T) {
	f := &fakeAPI{granted: true}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	require.NoError(t, c.AddPermission(ctx, "alice", "blog", "write"))
	require.Equal(t, &api.PermissionRequest{Username: "alice", Site: "blog", Permission: "write"}, f.lastPermReq)

	require.NoError(t, c.RemovePermission(ctx, "alice", "blog", "read"))
	require.Equal(t, "read", f.lastPermReq.Permission)

	ok, err := c.HasPermission(ctx, "alice", "blog", "write")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSessionsAndSweep(t *testing.T) {
	f := &fakeAPI{sessions: []api.SessionInfo{{SessionToken: "t1"}}, deleted: 4}
	c := &GRPCClient{client: f}

	sessions, err := c.ListSessions(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "t1", sessions[0].SessionToken)
	require.Equal(t, "alice", f.lastUserReq.Username)

	n, err := c.SweepSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}

func TestExportDirectory(t *testing.T) {
	f := &fakeAPI{export: &api.ExportDirectoryResponse{Bucket: "b", Key: "k", Users: 2}}
	c := &GRPCClient{client: f}

	res, err := c.ExportDirectory(context.Background())
	require.NoError(t, err)
	require.Equal(t, "k", res.Key)

	f.err = status.Error(codes.FailedPrecondition, "backup is not configured")
	_, err = c.ExportDirectory(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewEnigmaAdminClient_LazyDial(t *testing.T) {
	c, err := NewEnigmaAdminClient("127.0.0.1:1", "secret", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
