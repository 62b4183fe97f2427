package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"monitor-dashboard/src/chart"
	"monitor-dashboard/src/config"
	"monitor-dashboard/src/grpc_control"
	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/realtime"
	"monitor-dashboard/src/server"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf, conf.Name)

	loc, err := conf.Location()
	if err != nil {
		appLogger.Critical("Invalid timezone: %v", err)
		return
	}

	// 4. Setup Components
	db, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}

	networkManager := setupNetwork(conf.MConfig)
	cacheBackend, closeBackend := setupCacheBackend(conf, appLogger)
	defer closeBackend()

	clock := utils.RealClock{}
	historyCache := setupHistory(conf.MConfig, loc, networkManager, cacheBackend, clock)

	capacity := conf.LiveSeries.Capacity
	if capacity <= 0 {
		capacity = utils.DefaultSeriesCapacity
	}
	series := utils.NewSeriesManager(capacity, logger.NewLogger(conf, "LiveSeries"))

	rtStore := store.NewRealtimeStore(clock)
	channel := realtime.NewChannel(
		conf.MConfig,
		rtStore,
		realtime.NewGorillaDialer(
			time.Duration(conf.Realtime.HandshakeTimeoutSeconds)*time.Second,
			conf.Realtime.ReadLimitBytes,
		),
		clock,
		logger.NewLogger(conf, "RealtimeChannel"),
	)

	binding := chart.NewBinding(historyCache, series, rtStore, loc, historyCache.AggregateKey(), logger.NewLogger(conf, "ChartBinding"))

	srv := server.NewDashboardServer(conf.MConfig, logger.NewLogger(conf, "DashboardServer"), server.Deps{
		Store:    rtStore,
		Channel:  channel,
		History:  historyCache,
		Binding:  binding,
		Series:   series,
		Database: db,
	})

	publisher := setupPublisher(conf.MConfig, appLogger)

	controlLogger := logger.NewLogger(conf, "ControlService")
	grpcService, err := grpc_control.NewGRPCService(conf.MConfig, controlLogger,
		grpc_control.NewControlService(rtStore, channel, historyCache, controlLogger))
	if err != nil {
		appLogger.Error("gRPC control disabled: %v", err)
	}

	// 5. Bootstrap (warm history cache, restore recorded samples)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	performInitialLoad(ctx, historyCache, db, series, conf.MConfig, appLogger)

	// 6. Start Servers
	startServers(srv, grpcService, appLogger)

	// 7. Open the realtime feed
	go channel.Run(ctx)

	// 8. Run Main Processing Loop (blocking)
	appLogger.Info("Starting Main Data Loop...")
	errHandler := helpers.NewErrorHandler(logger.NewLogger(conf, "ErrorHandler"))
	runDataLoop(ctx, rtStore, dataSinks{
		Series:    series,
		Database:  db,
		Publisher: publisher,
		Exchanger: srv,
	}, errHandler, appLogger)

	// 9. Shutdown
	appLogger.Info("Shutting down...")
	stopServers(srv, grpcService, appLogger)
	channel.Close()

	if publisher != nil {
		publisher.Disconnect()
	}
	if db != nil {
		db.Close()
	}
	appLogger.Info("Shutdown complete. %d errors handled.", errHandler.ErrorCount())
}
