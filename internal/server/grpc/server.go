// Package grpc exposes the authorizer over gRPC as enigma.v1.Enigma, plus the
// standard health service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/backup"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type authorizer interface {
	CreateSession(ctx context.Context, username, password string, track models.Track) (*models.Session, error)
	VerifySession(ctx context.Context, token string) (models.VerifyResult, error)
	DeleteSession(ctx context.Context, token string) error
	SweepExpiredSessions(ctx context.Context) (int64, error)
	ListUserSessions(ctx context.Context, username string) ([]models.SessionRecord, error)
	CreateUser(ctx context.Context, username, password string, email *string) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AddPermission(ctx context.Context, username, site, permission string) error
	RemovePermission(ctx context.Context, username, site, permission string) error
	HasPermission(ctx context.Context, username, site, permission string) (bool, error)
}

type exporter interface {
	Export(ctx context.Context) (*backup.Result, error)
}

type requestRecorder interface {
	ObserveRequest(transport, method string, code int)
}

type GRPCServer struct {
	address            string
	auth               authorizer
	exporter           exporter
	recorder           requestRecorder
	logger             logging.Logger
	jwtSecret          []byte
	adminTokenLifetime time.Duration
	health             *health.Server
	now                func() time.Time
}

// NewGRPCServer builds the transport. exp and rec may be nil.
func NewGRPCServer(addr string, l logging.Logger, a authorizer, exp exporter, rec requestRecorder,
	secretKey string, adminTokenLifetime time.Duration) *GRPCServer {
	return &GRPCServer{
		address:            addr,
		auth:               a,
		exporter:           exp,
		recorder:           rec,
		logger:             l.With("module", "grpc_server"),
		jwtSecret:          []byte(secretKey),
		adminTokenLifetime: adminTokenLifetime,
		health:             health.NewServer(),
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// NewServer returns a grpc.Server with interceptors and both services
// registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestInterceptor, s.adminTokenInterceptor))

	api.RegisterEnigmaServer(srv, &handler{s: s})
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Serve runs on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}
