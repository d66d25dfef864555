// Package httpapi serves the session endpoints over plain HTTP/JSON with chi,
// together with health and Prometheus scrape endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type authorizer interface {
	Ping(ctx context.Context) error
	CreateSession(ctx context.Context, username, password string, track models.Track) (*models.Session, error)
	VerifySession(ctx context.Context, token string) (models.VerifyResult, error)
	DeleteSession(ctx context.Context, token string) error
}

type requestRecorder interface {
	ObserveRequest(transport, method string, code int)
}

type HTTPServer struct {
	address  string
	auth     authorizer
	recorder requestRecorder
	metrics  http.Handler
	logger   logging.Logger
}

// NewHTTPServer builds the transport. rec and metricsHandler may be nil; a nil
// metricsHandler leaves /metrics unrouted.
func NewHTTPServer(addr string, l logging.Logger, a authorizer, rec requestRecorder, metricsHandler http.Handler) *HTTPServer {
	return &HTTPServer{
		address:  addr,
		auth:     a,
		recorder: rec,
		metrics:  metricsHandler,
		logger:   l.With("module", "http_server"),
	}
}

// Router returns the chi router with all routes mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Route("/session", func(r chi.Router) {
		r.Post("/create", s.createSession)
		r.Post("/verify", s.verifySession)
		r.Post("/delete", s.deleteSession)
	})
	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

// observe logs and counts each request under its route pattern.
func (s *HTTPServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}

		s.logger.Debug(r.Context(), "request finished",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"code", strconv.Itoa(code),
			"duration", time.Since(start))
		if s.recorder != nil {
			s.recorder.ObserveRequest("http", r.Method+" "+route, code)
		}
	})
}

// Serve runs on lis until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}
