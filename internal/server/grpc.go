// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net"

	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/handler"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer manages the gRPC server lifecycle.
type GRPCServer struct {
	server  *grpc.Server
	health  *health.Server
	port    int
	manager *pipeline.Manager
}

// NewGRPCServer creates a new gRPC server instance.
func NewGRPCServer(port int, manager *pipeline.Manager) *GRPCServer {
	return &GRPCServer{
		port:    port,
		manager: manager,
	}
}

// Setup configures the gRPC server with interceptors and registers the
// lifecycle and decision services.
func (s *GRPCServer) Setup() error {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		logging.UnaryServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		logging.StreamServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}

	// Create server with OpenTelemetry instrumentation
	s.server = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	handler.RegisterLifecycleEventServiceServer(s.server, handler.NewLifecycle(s.manager))
	handler.RegisterNudgeDecisionServiceServer(s.server, handler.NewDecision(s.manager.Engine()))

	logrus.Infof("registered gRPC services: %s, %s",
		handler.LifecycleEventServiceName, handler.NudgeDecisionServiceName)

	// Reflection for grpcurl, health for Kubernetes probes
	reflection.Register(s.server)
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.server, s.health)

	logrus.Infof("gRPC reflection and health check enabled")

	return nil
}

// Start begins listening and serving gRPC requests.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	go func() {
		logrus.Infof("gRPC server listening on port %d", s.port)
		if err := s.server.Serve(lis); err != nil {
			logrus.Fatalf("gRPC server failed: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the gRPC server.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down gRPC server...")
	if s.health != nil {
		s.health.Shutdown()
	}
	s.server.GracefulStop()
	logrus.Info("gRPC server stopped")
	return nil
}
