// Package grpc runs the gRPC health endpoint used by orchestrators to probe
// the book review server.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/bookreview/internal/logging"
)

// ServiceName is the health service name reported alongside the overall
// ("") status.
const ServiceName = "bookreview.v1.BookReview"

const checkInterval = 15 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address string
	logger  logging.Logger
	db      Pinger
	health  *health.Server
}

// NewHealthServer creates the server. db may be nil, in which case the
// service is reported as serving for as long as the process runs.
func NewHealthServer(a string, l logging.Logger, db Pinger) *HealthServer {
	return &HealthServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		db:      db,
		health:  health.NewServer(),
	}
}

// Check refreshes the reported status from the database ping.
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	s.Check(ctx)

	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Check(ctx)
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
