package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	adminSubject       = "enigma-cli"
	adminTokenValidity = time.Minute
)

// enigmaAPI is the subset of api.EnigmaClient used here.
type enigmaAPI interface {
	CreateUser(ctx context.Context, in *api.CreateUserRequest, opts ...grpc.CallOption) (*api.UserResponse, error)
	DeleteUser(ctx context.Context, in *api.UsernameRequest, opts ...grpc.CallOption) (*api.Empty, error)
	GetUser(ctx context.Context, in *api.UsernameRequest, opts ...grpc.CallOption) (*api.UserResponse, error)
	ListUsers(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.ListUsersResponse, error)
	AddPermission(ctx context.Context, in *api.PermissionRequest, opts ...grpc.CallOption) (*api.Empty, error)
	RemovePermission(ctx context.Context, in *api.PermissionRequest, opts ...grpc.CallOption) (*api.Empty, error)
	HasPermission(ctx context.Context, in *api.PermissionRequest, opts ...grpc.CallOption) (*api.HasPermissionResponse, error)
	ListSessions(ctx context.Context, in *api.UsernameRequest, opts ...grpc.CallOption) (*api.ListSessionsResponse, error)
	SweepSessions(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.SweepSessionsResponse, error)
	ExportDirectory(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.ExportDirectoryResponse, error)
}

type GRPCClient struct {
	endpointURL string
	secretKey   []byte
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      enigmaAPI
}

var _ Client = (*GRPCClient)(nil)

func withAdminToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

// adminTokenInterceptor signs a new admin token for every outgoing call.
func (s *GRPCClient) adminTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	token, err := auth.GenerateAdminToken(adminSubject, s.secretKey, adminTokenValidity)
	if err != nil {
		return fmt.Errorf("sign admin token: %w", err)
	}
	return invoker(withAdminToken(ctx, token), method, req, reply, cc, opts...)
}

// NewEnigmaAdminClient dials endpointURL lazily; the first call opens the
// connection.
func NewEnigmaAdminClient(endpointURL, secretKey string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, secretKey: []byte(secretKey), timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.adminTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewEnigmaClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) CreateUser(ctx context.Context, username, password string, email *string) (*api.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateUser(ctx, &api.CreateUserRequest{Username: username, Password: password, Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context, username string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteUser(ctx, &api.UsernameRequest{Username: username})
	return s.mapError(err)
}

func (s *GRPCClient) GetUser(ctx context.Context, username string) (*api.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetUser(ctx, &api.UsernameRequest{Username: username})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]api.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListUsers(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) AddPermission(ctx context.Context, username, site, permission string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.AddPermission(ctx, &api.PermissionRequest{Username: username, Site: site, Permission: permission})
	return s.mapError(err)
}

func (s *GRPCClient) RemovePermission(ctx context.Context, username, site, permission string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.RemovePermission(ctx, &api.PermissionRequest{Username: username, Site: site, Permission: permission})
	return s.mapError(err)
}

func (s *GRPCClient) HasPermission(ctx context.Context, username, site, permission string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.HasPermission(ctx, &api.PermissionRequest{Username: username, Site: site, Permission: permission})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Granted, nil
}

func (s *GRPCClient) ListSessions(ctx context.Context, username string) ([]api.SessionInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListSessions(ctx, &api.UsernameRequest{Username: username})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Sessions, nil
}

func (s *GRPCClient) SweepSessions(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SweepSessions(ctx, &api.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) ExportDirectory(ctx context.Context) (*api.ExportDirectoryResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ExportDirectory(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrNotConfigured, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
