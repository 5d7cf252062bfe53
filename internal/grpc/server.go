package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goMarketd/internal/rpc"
)

// Server represents the gRPC server of the market.
type Server struct {
	mu sync.RWMutex

	grpcServer *grpc.Server
	health     *health.Server
	config     *ServerConfig
	logger     *zap.Logger

	// listener is the network listener
	listener net.Listener

	// running indicates if the server is currently running
	running bool
}

// NewServer creates a gRPC server dispatching Market calls to executor.
func NewServer(cfg *ServerConfig, executor Executor, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.With(zap.String("component", "grpc"))

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.UnaryInterceptor(UnaryServerInterceptor(logger)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	registerMarketService(grpcServer, &marketService{
		executor: executor,
		admin:    rpc.NewAdminList(cfg.Admin),
	})
	reflection.Register(grpcServer)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(MarketServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Listen binds the configured address without serving yet.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server is already listening")
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Serve accepts connections on lis, or on the bound listener when lis is
// nil. It blocks until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	if lis == nil {
		lis = s.listener
	}
	if lis == nil {
		s.mu.Unlock()
		return errors.New("server is not listening")
	}
	s.listener = lis
	s.running = true
	s.mu.Unlock()

	s.logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Start binds the configured address and serves. It blocks until the
// server is stopped or an error occurs.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(nil)
}

// Stop marks every service not serving, then gracefully stops the server.
func (s *Server) Stop() {
	s.health.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grpcServer.GracefulStop()
	s.running = false
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the address the server is listening on.
// Returns empty string if the server is not listening.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// UnaryServerInterceptor logs every unary call at debug level.
func UnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}
