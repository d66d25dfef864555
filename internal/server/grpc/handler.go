package grpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// handler implements api.EnigmaServer on top of GRPCServer.
type handler struct {
	s *GRPCServer
}

var _ api.EnigmaServer = (*handler)(nil)

func required(fields map[string]string) error {
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", common.ErrValidation, name)
		}
	}
	return nil
}

func (h *handler) CreateSession(ctx context.Context, req *api.CreateSessionRequest) (*api.SessionResponse, error) {
	session, err := h.s.auth.CreateSession(ctx, req.Username, req.Password, fromAPITrack(req.Track))
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.SessionResponse{Session: toAPISession(session)}, nil
}

func (h *handler) VerifySession(ctx context.Context, req *api.SessionTokenRequest) (*api.VerifySessionResponse, error) {
	res, err := h.s.auth.VerifySession(ctx, req.SessionToken)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}

	resp := &api.VerifySessionResponse{Status: verifyStatus(res.Status)}
	if res.Session != nil {
		session := toAPISession(res.Session)
		resp.Session = &session
	}
	return resp, nil
}

func (h *handler) DeleteSession(ctx context.Context, req *api.SessionTokenRequest) (*api.Empty, error) {
	if err := h.s.auth.DeleteSession(ctx, req.SessionToken); err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (h *handler) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.UserResponse, error) {
	u, err := h.s.auth.CreateUser(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) DeleteUser(ctx context.Context, req *api.UsernameRequest) (*api.Empty, error) {
	if err := h.s.auth.DeleteUser(ctx, req.Username); err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (h *handler) GetUser(ctx context.Context, req *api.UsernameRequest) (*api.UserResponse, error) {
	u, err := h.s.auth.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) ListUsers(ctx context.Context, _ *api.Empty) (*api.ListUsersResponse, error) {
	users, err := h.s.auth.ListUsers(ctx)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}

	resp := &api.ListUsersResponse{Users: make([]api.User, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, toAPIUser(&users[i]))
	}
	return resp, nil
}

func (h *handler) AddPermission(ctx context.Context, req *api.PermissionRequest) (*api.Empty, error) {
	if err := required(map[string]string{"site": req.Site, "permission": req.Permission}); err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	if err := h.s.auth.AddPermission(ctx, req.Username, req.Site, req.Permission); err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (h *handler) RemovePermission(ctx context.Context, req *api.PermissionRequest) (*api.Empty, error) {
	if err := h.s.auth.RemovePermission(ctx, req.Username, req.Site, req.Permission); err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (h *handler) HasPermission(ctx context.Context, req *api.PermissionRequest) (*api.HasPermissionResponse, error) {
	ok, err := h.s.auth.HasPermission(ctx, req.Username, req.Site, req.Permission)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.HasPermissionResponse{Granted: ok}, nil
}

func (h *handler) ListSessions(ctx context.Context, req *api.UsernameRequest) (*api.ListSessionsResponse, error) {
	records, err := h.s.auth.ListUserSessions(ctx, req.Username)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}

	now := h.s.now()
	resp := &api.ListSessionsResponse{Sessions: make([]api.SessionInfo, 0, len(records))}
	for i := range records {
		resp.Sessions = append(resp.Sessions, toSessionInfo(&records[i], now))
	}
	return resp, nil
}

func (h *handler) SweepSessions(ctx context.Context, _ *api.Empty) (*api.SweepSessionsResponse, error) {
	n, err := h.s.auth.SweepExpiredSessions(ctx)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.SweepSessionsResponse{Deleted: n}, nil
}

func (h *handler) ExportDirectory(ctx context.Context, _ *api.Empty) (*api.ExportDirectoryResponse, error) {
	if h.s.exporter == nil {
		return nil, status.Error(codes.FailedPrecondition, "backup is not configured")
	}

	res, err := h.s.exporter.Export(ctx)
	if err != nil {
		return nil, h.s.toStatus(ctx, err)
	}
	return &api.ExportDirectoryResponse{Bucket: res.Bucket, Key: res.Key, Users: res.Users}, nil
}
