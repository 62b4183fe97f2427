package grpc_control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// GRPCService handles gRPC server lifecycle
// -----------------------------------------------------------------------------

type GRPCService struct {
	server   *grpc.Server
	listener net.Listener
	health   *health.Server
	logger   *logger.Logger
	running  atomic.Bool
}

// -----------------------------------------------------------------------------

// NewGRPCService listens on the configured gRPC address
func NewGRPCService(cfg *models.MConfig, log *logger.Logger, control IDashboardControlServer) (*GRPCService, error) {
	port := cfg.GrpcPort
	if port == 0 {
		port = 50061
	}
	address := fmt.Sprintf("%s:%d", cfg.GrpcHost, port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return NewGRPCServiceWithListener(listener, log, control), nil
}

// -----------------------------------------------------------------------------

// NewGRPCServiceWithListener serves on an existing listener
func NewGRPCServiceWithListener(listener net.Listener, log *logger.Logger, control IDashboardControlServer) *GRPCService {
	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(10*1024*1024), // 10MB
		grpc.MaxSendMsgSize(10*1024*1024), // 10MB
	)

	RegisterDashboardControlServer(server, control)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCService{
		server:   server,
		listener: listener,
		health:   healthServer,
		logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Start serves in the background
func (g *GRPCService) Start() {
	g.logger.Info("Starting gRPC Control Server on %s", g.listener.Addr().String())

	g.running.Store(true)
	go func() {
		defer g.running.Store(false)
		if err := g.server.Serve(g.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			g.logger.Error("gRPC server failed: %v", err)
		}
	}()
}

// -----------------------------------------------------------------------------

// Stop gracefully stops the gRPC server, forcing it once ctx expires
func (g *GRPCService) Stop(ctx context.Context) {
	g.logger.Info("Stopping gRPC service...")
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-ctx.Done():
		g.logger.Warning("gRPC graceful shutdown timeout, forcing stop...")
		g.server.Stop()
		<-done
	case <-done:
	}

	g.running.Store(false)
	g.logger.Info("gRPC service stopped")
}

// -----------------------------------------------------------------------------

func (g *GRPCService) IsRunning() bool {
	return g.running.Load()
}

// -----------------------------------------------------------------------------

func (g *GRPCService) Addr() net.Addr {
	return g.listener.Addr()
}
