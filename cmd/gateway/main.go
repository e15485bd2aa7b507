// Command gateway wires the tag store, PLC drivers, OPC UA bridge, poll
// engine and REST API together and runs the gateway until it receives a
// shutdown signal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plcgateway/internal/audit"
	"plcgateway/internal/config"
	"plcgateway/internal/lifecycle"
	"plcgateway/internal/logger"
	"plcgateway/internal/lokipush"
	"plcgateway/internal/metrics"
	"plcgateway/internal/opcuabridge"
	"plcgateway/internal/plcdriver"
	"plcgateway/internal/pollengine"
	"plcgateway/internal/ratelimit"
	"plcgateway/internal/reconnect"
	"plcgateway/internal/restapi"
	"plcgateway/internal/tagstore"
	"plcgateway/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("error")
		logger.Fatal("failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	logger.Log.Info("starting plc gateway",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("failed to init tracing", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Log.Error("metrics server failed", "error", err)
			}
		}()
	}

	auditLogger, err := audit.New(&audit.Config{
		Enabled:     cfg.Audit.Enabled,
		Backend:     cfg.Audit.Backend,
		FilePath:    cfg.Audit.FilePath,
		BufferSize:  cfg.Audit.BufferSize,
		FlushPeriod: cfg.Audit.FlushPeriod,
	})
	if err != nil {
		logger.Fatal("failed to init audit logger", "error", err)
	}
	audit.SetGlobal(auditLogger)
	defer auditLogger.Close()

	store := tagstore.New()

	bridge := opcuabridge.New(cfg.OPCUA.NamespaceURI, cfg.OPCUA.FolderName)
	bridgeDone := lifecycle.RunBridge(ctx, bridge)
	for _, tag := range store.ListTags() {
		value := store.GetRawValue(tag.TagID)
		bridge.CreateNode(tag.TagID, tag.Name, tag.DataType, tag.Writable, value)
	}

	pusher := lokipush.New(cfg.PLC.LokiPushURL)

	controllers := map[string]*reconnect.StateMachine{
		string(plcdriver.KindCompactLogix): reconnect.New(string(plcdriver.KindCompactLogix), cfg.PLC.CompactLogixIP, cfg.PLC.ReconnectBase, cfg.PLC.ReconnectMax),
		string(plcdriver.KindSLC500):       reconnect.New(string(plcdriver.KindSLC500), cfg.PLC.SLC500IP, cfg.PLC.ReconnectBase, cfg.PLC.ReconnectMax),
	}
	for _, sm := range controllers {
		sm.OnFailure = func(key, ip string, ts time.Time, message string) {
			pusher.PushError(context.Background(), key, ip, ts, message)
		}
		if cfg.PLC.MockFailReconnect {
			sm.ForceSyntheticFailure = func() bool { return true }
		}
	}

	limiter, err := ratelimit.New(&ratelimit.Config{
		Requests:        cfg.RateLimit.Requests,
		Window:          cfg.RateLimit.Window,
		Strategy:        cfg.RateLimit.Strategy,
		Backend:         cfg.RateLimit.Backend,
		BurstSize:       cfg.RateLimit.BurstSize,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		RedisAddr:       cfg.RateLimit.RedisAddr,
	})
	if err != nil {
		logger.Fatal("failed to init rate limiter", "error", err)
	}
	defer limiter.Close()

	readiness := lifecycle.NewReadiness(cfg.PLC.ReadyFile)

	var shutdown lifecycle.Shutdown
	onStop := func() { shutdown.Run(context.Background()) }

	server := restapi.New(
		restapi.Config{
			Host: "0.0.0.0",
			Port: cfg.HTTP.Port,
			CORS: restapi.CORSConfig{
				AllowedOrigins:   cfg.HTTP.CORS.AllowedOrigins,
				AllowedMethods:   cfg.HTTP.CORS.AllowedMethods,
				AllowedHeaders:   cfg.HTTP.CORS.AllowedHeaders,
				AllowCredentials: cfg.HTTP.CORS.AllowCredentials,
				MaxAge:           cfg.HTTP.CORS.MaxAge,
			},
			MockMode: cfg.PLC.MockPLC,
		},
		store,
		bridge,
		controllers,
		func() int64 { return time.Now().Unix() },
		readiness.Ready,
		onStop,
	)
	if cfg.RateLimit.Enabled {
		server.WithRateLimiter(limiter)
	}
	if err := server.Start(); err != nil {
		logger.Fatal("failed to start rest server", "error", err)
	}

	engine := pollengine.New(store, bridge, cfg.PLC.PollPeriod, readiness)

	compactCtrl := &pollengine.Controller{
		PLCID:        string(plcdriver.KindCompactLogix),
		IP:           cfg.PLC.CompactLogixIP,
		StateMachine: controllers[string(plcdriver.KindCompactLogix)],
		NewDriver: func() (reconnect.Opener, error) {
			return plcdriver.New(plcdriver.KindCompactLogix, cfg.PLC.CompactLogixIP, cfg.PLC.SocketTimeout, cfg.PLC.MockPLC), nil
		},
	}
	slcCtrl := &pollengine.Controller{
		PLCID:        string(plcdriver.KindSLC500),
		IP:           cfg.PLC.SLC500IP,
		StateMachine: controllers[string(plcdriver.KindSLC500)],
		NewDriver: func() (reconnect.Opener, error) {
			return plcdriver.New(plcdriver.KindSLC500, cfg.PLC.SLC500IP, cfg.PLC.SocketTimeout, cfg.PLC.MockPLC), nil
		},
	}

	go engine.Run(ctx, compactCtrl)
	go engine.Run(ctx, slcCtrl)

	shutdown = lifecycle.Shutdown{
		Timeout:       cfg.PLC.ShutdownTimeout,
		CancelWorkers: cancelWorkers,
		BridgeDone:    bridgeDone,
		Drivers: func() []plcdriver.Driver {
			var drivers []plcdriver.Driver
			for _, ctrl := range []*pollengine.Controller{compactCtrl, slcCtrl} {
				if d := ctrl.Driver(); d != nil {
					drivers = append(drivers, d)
				}
			}
			return drivers
		},
		REST: server,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	shutdown.Run(context.Background())
	logger.Log.Info("gateway stopped")
}
