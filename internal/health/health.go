// internal/health/health.go
package health

import (
	"fmt"
	"net"

	"github.com/jdharms/jumpking-autosplitter/internal/adapter"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AdapterService is the health service name that follows the game
// connection
const AdapterService = "jumpking.autosplitter.adapter"

// Server exposes the standard gRPC health service. The overall status is
// SERVING while the process runs; AdapterService is SERVING only while the
// game adapter is connected.
type Server struct {
	logger *logrus.Logger
	grpc   *grpc.Server
	health *health.Server
}

// NewServer creates a health server with the adapter marked NOT_SERVING
func NewServer(logger *logrus.Logger) *Server {
	s := &Server{
		logger: logger,
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(AdapterService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetConnected updates the adapter service status
func (s *Server) SetConnected(connected bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if connected {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(AdapterService, status)
	s.logger.WithField("status", status.String()).Debug("Adapter health updated")
}

// AdapterStateListener returns a listener for adapter.OnStateChange
func (s *Server) AdapterStateListener() func(adapter.State) {
	return func(state adapter.State) {
		s.SetConnected(state == adapter.StateConnected)
	}
}

// Listen starts serving on addr in the background
func (s *Server) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.Serve(listener)
	s.logger.WithField("addr", listener.Addr().String()).Info("Health server started")
	return nil
}

// Serve serves on listener in the background
func (s *Server) Serve(listener net.Listener) {
	go func() {
		if err := s.grpc.Serve(listener); err != nil {
			s.logger.WithError(err).Error("Health server error")
		}
	}()
}

// Stop marks every service NOT_SERVING and stops the server
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("Health server stopped")
}
