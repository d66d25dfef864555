package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "enigma.v1.Enigma"

const (
	MethodCreateSession    = "CreateSession"
	MethodVerifySession    = "VerifySession"
	MethodDeleteSession    = "DeleteSession"
	MethodCreateUser       = "CreateUser"
	MethodDeleteUser       = "DeleteUser"
	MethodGetUser          = "GetUser"
	MethodListUsers        = "ListUsers"
	MethodAddPermission    = "AddPermission"
	MethodRemovePermission = "RemovePermission"
	MethodHasPermission    = "HasPermission"
	MethodListSessions     = "ListSessions"
	MethodSweepSessions    = "SweepSessions"
	MethodExportDirectory  = "ExportDirectory"
)

// FullMethod returns the gRPC path of method, e.g. /enigma.v1.Enigma/GetUser.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IsAdminMethod reports whether fullMethod requires an admin token.
func IsAdminMethod(fullMethod string) bool {
	switch fullMethod {
	case FullMethod(MethodCreateSession), FullMethod(MethodVerifySession), FullMethod(MethodDeleteSession):
		return false
	}
	return true
}

// EnigmaServer is implemented by the server transport.
type EnigmaServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*SessionResponse, error)
	VerifySession(context.Context, *SessionTokenRequest) (*VerifySessionResponse, error)
	DeleteSession(context.Context, *SessionTokenRequest) (*Empty, error)

	CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error)
	DeleteUser(context.Context, *UsernameRequest) (*Empty, error)
	GetUser(context.Context, *UsernameRequest) (*UserResponse, error)
	ListUsers(context.Context, *Empty) (*ListUsersResponse, error)
	AddPermission(context.Context, *PermissionRequest) (*Empty, error)
	RemovePermission(context.Context, *PermissionRequest) (*Empty, error)
	HasPermission(context.Context, *PermissionRequest) (*HasPermissionResponse, error)
	ListSessions(context.Context, *UsernameRequest) (*ListSessionsResponse, error)
	SweepSessions(context.Context, *Empty) (*SweepSessionsResponse, error)
	ExportDirectory(context.Context, *Empty) (*ExportDirectoryResponse, error)
}

func unary[Req, Resp any](method string, call func(EnigmaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(EnigmaServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes enigma.v1.Enigma for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EnigmaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCreateSession, EnigmaServer.CreateSession),
		unary(MethodVerifySession, EnigmaServer.VerifySession),
		unary(MethodDeleteSession, EnigmaServer.DeleteSession),
		unary(MethodCreateUser, EnigmaServer.CreateUser),
		unary(MethodDeleteUser, EnigmaServer.DeleteUser),
		unary(MethodGetUser, EnigmaServer.GetUser),
		unary(MethodListUsers, EnigmaServer.ListUsers),
		unary(MethodAddPermission, EnigmaServer.AddPermission),
		unary(MethodRemovePermission, EnigmaServer.RemovePermission),
		unary(MethodHasPermission, EnigmaServer.HasPermission),
		unary(MethodListSessions, EnigmaServer.ListSessions),
		unary(MethodSweepSessions, EnigmaServer.SweepSessions),
		unary(MethodExportDirectory, EnigmaServer.ExportDirectory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "enigma/v1/enigma.proto",
}

func RegisterEnigmaServer(s grpc.ServiceRegistrar, srv EnigmaServer) {
	s.RegisterService(&ServiceDesc, srv)
}
