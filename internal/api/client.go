package api

import (
	"context"

	"google.golang.org/grpc"
)

// EnigmaClient calls enigma.v1.Enigma using the JSON codec.
type EnigmaClient struct {
	cc grpc.ClientConnInterface
}

func NewEnigmaClient(cc grpc.ClientConnInterface) *EnigmaClient {
	return &EnigmaClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *EnigmaClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EnigmaClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, MethodCreateSession, in, opts)
}

func (c *EnigmaClient) VerifySession(ctx context.Context, in *SessionTokenRequest, opts ...grpc.CallOption) (*VerifySessionResponse, error) {
	return invoke[VerifySessionResponse](ctx, c, MethodVerifySession, in, opts)
}

func (c *EnigmaClient) DeleteSession(ctx context.Context, in *SessionTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDeleteSession, in, opts)
}

func (c *EnigmaClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodCreateUser, in, opts)
}

func (c *EnigmaClient) DeleteUser(ctx context.Context, in *UsernameRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDeleteUser, in, opts)
}

func (c *EnigmaClient) GetUser(ctx context.Context, in *UsernameRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodGetUser, in, opts)
}

func (c *EnigmaClient) ListUsers(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c, MethodListUsers, in, opts)
}

func (c *EnigmaClient) AddPermission(ctx context.Context, in *PermissionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodAddPermission, in, opts)
}

func (c *EnigmaClient) RemovePermission(ctx context.Context, in *PermissionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodRemovePermission, in, opts)
}

func (c *EnigmaClient) HasPermission(ctx context.Context, in *PermissionRequest, opts ...grpc.CallOption) (*HasPermissionResponse, error) {
	return invoke[HasPermissionResponse](ctx, c, MethodHasPermission, in, opts)
}

func (c *EnigmaClient) ListSessions(ctx context.Context, in *UsernameRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	return invoke[ListSessionsResponse](ctx, c, MethodListSessions, in, opts)
}

func (c *EnigmaClient) SweepSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SweepSessionsResponse, error) {
	return invoke[SweepSessionsResponse](ctx, c, MethodSweepSessions, in, opts)
}

func (c *EnigmaClient) ExportDirectory(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ExportDirectoryResponse, error) {
	return invoke[ExportDirectoryResponse](ctx, c, MethodExportDirectory, in, opts)
}
