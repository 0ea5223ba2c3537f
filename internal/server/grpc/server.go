// Package grpc serves the standard gRPC health protocol for agentdesk. One
// status is kept per pipeline plus the overall "" entry; all of them follow
// the storage backend's Ping.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/agentdesk/internal/logging"
)

// Health service names, one per pipeline.
const (
	ServiceEmail    = "agentdesk.email"
	ServicePlanner  = "agentdesk.planner"
	ServiceResearch = "agentdesk.research"
)

var services = []string{"", ServiceEmail, ServicePlanner, ServiceResearch}

// DefaultProbeInterval is how often the store is pinged while serving.
const DefaultProbeInterval = 15 * time.Second

// listen is a test seam for net.Listen.
var listen = func(address string) (net.Listener, error) {
	return net.Listen("tcp", address)
}

// Pinger is the part of the repository manager the health check needs.
type Pinger interface {
	Ping(context.Context) error
}

type HealthServer struct {
	address  string
	store    Pinger
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewHealthServer(address string, store Pinger, interval time.Duration, l logging.Logger) *HealthServer {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &HealthServer{
		address:  address,
		store:    store,
		interval: interval,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
	}
}

// Probe pings the store once and publishes the result for every service.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	for _, name := range services {
		s.health.SetServingStatus(name, status)
	}
	return status
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Run serves until ctx is cancelled, then reports NOT_SERVING to watchers
// and stops gracefully.
func (s *HealthServer) Run(ctx context.Context) error {

	lis, err := listen(s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.Probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
