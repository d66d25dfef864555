package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	adminSubjectKey ctxKey = "adminSubject"
	loggerKey       ctxKey = "logger"
)

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// requestLogger returns the per-request logger stored by requestInterceptor.
func (s *GRPCServer) requestLogger(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey).(logging.Logger); ok {
		return l
	}
	return s.logger
}

// requestInterceptor tags the call with a request id, logs its outcome and
// counts it.
func (s *GRPCServer) requestInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMetadata(ctx, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	l := s.logger.With("request_id", requestID, "method", info.FullMethod)
	ctx = context.WithValue(ctx, loggerKey, l)
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	l.Debug(ctx, "request finished", "code", code.String(), "duration", time.Since(start))
	if s.recorder != nil {
		s.recorder.ObserveRequest("grpc", info.FullMethod, int(code))
	}
	return resp, err
}

// adminTokenInterceptor requires "authorization: Bearer <jwt>" on every admin
// method.
func (s *GRPCServer) adminTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !api.IsAdminMethod(info.FullMethod) {
		return handler(ctx, req)
	}

	header := firstMetadata(ctx, common.AuthorizationHeaderName)
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	subject, err := auth.ParseAdminToken(token, s.jwtSecret, s.adminTokenLifetime)
	if err != nil {
		s.requestLogger(ctx).Warn(ctx, "admin token rejected", "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, adminSubjectKey, subject)
	return handler(ctx, req)
}
