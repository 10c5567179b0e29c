package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campus-rms-console/config"
	"campus-rms-console/internal/api"
	"campus-rms-console/internal/db"
	"campus-rms-console/internal/gateway"
	"campus-rms-console/internal/metrics"
	"campus-rms-console/internal/notification"
	"campus-rms-console/internal/session"
	"campus-rms-console/internal/store"
	"campus-rms-console/internal/watcher"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("backend", cfg.Upstream.BaseURL))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	appStore := store.NewGormStore(gormDB)
	logger.Info("data store initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := gateway.NewClient(&cfg.Upstream, logger, recorder)
	sessions := session.NewManager(backend, appStore, cfg.Session.TTL, logger)
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	deps := api.Deps{
		Backend:  backend,
		Sessions: sessions,
		Store:    appStore,
		Metrics:  recorder,
		Logger:   logger,
	}

	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatal("push is enabled but VAPID keys are missing; generate them and add them to the config file")
		}
		webpushOptions := &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions, recorder, logger)
		pool.Start(ctx)
		deps.WebPush = webpushOptions
		deps.Notifier = pool

		if cfg.Watcher.Enabled {
			watch := watcher.NewService(backend, appStore, pool, cfg.Watcher.Interval, cfg.Booking.Location, logger)
			go watch.Run(ctx)
		}
	} else {
		logger.Info("push notifications disabled")
		if cfg.Watcher.Enabled {
			logger.Warn("booking watcher needs push notifications; not starting it")
		}
	}

	handler := api.NewHandler(cfg, deps)
	router := api.NewRouter(handler, cfg, registry, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Block until a signal is received.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// newLogger builds a console logger in development and a JSON one otherwise.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build(zap.Fields(zap.String("service", "rmsconsole")))
}
