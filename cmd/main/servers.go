package main

import (
	"context"
	"time"

	"monitor-dashboard/src/grpc_control"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
)

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(srv interfaces.IDataExchanger, grpcService *grpc_control.GRPCService, appLogger *logger.Logger) {
	// 1. Dashboard HTTP + websocket server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	if grpcService != nil {
		grpcService.Start()
	}
}

// -----------------------------------------------------------------------------

// stopServers shuts every server down, forcing gRPC after a grace period
func stopServers(srv interfaces.IDataExchanger, grpcService *grpc_control.GRPCService, appLogger *logger.Logger) {
	if err := srv.Stop(); err != nil {
		appLogger.Warning("Server shutdown: %v", err)
	}

	if grpcService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcService.Stop(ctx)
	}
}
