package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smazurov/hlsrelay/cmd"
	"github.com/smazurov/hlsrelay/internal/api"
	"github.com/smazurov/hlsrelay/internal/config"
	"github.com/smazurov/hlsrelay/internal/events"
	"github.com/smazurov/hlsrelay/internal/health"
	"github.com/smazurov/hlsrelay/internal/logging"
	"github.com/smazurov/hlsrelay/internal/metrics"
	"github.com/smazurov/hlsrelay/internal/overlays"
	"github.com/smazurov/hlsrelay/internal/overlays/store"
	"github.com/smazurov/hlsrelay/internal/streams"
	"github.com/smazurov/hlsrelay/internal/systemd"
	"github.com/smazurov/hlsrelay/ui"
)

const (
	storeOpenTimeout  = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
	configReloadDelay = 500 * time.Millisecond
)

// application holds the running components in shutdown order.
type application struct {
	server   *api.Server
	manager  *streams.Manager
	store    overlays.Store
	recorder *metrics.Recorder
	watcher  *config.Watcher[logging.Config]
	notifier *systemd.Notifier
	stopDog  context.CancelFunc
	logger   *slog.Logger
}

func newApplication(ctx context.Context, opts *config.Options) (*application, error) {
	logger := logging.GetLogger("main")
	bus := events.New()

	manager := streams.NewManager(cmd.StreamsConfig(opts), &streams.Options{Bus: bus})

	openCtx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	defer cancel()
	overlayStore, err := store.Open(openCtx, cmd.StoreConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("open overlay store: %w", err)
	}
	overlayService := overlays.NewService(overlayStore, bus, logging.GetLogger("overlays"))

	app := &application{
		manager:  manager,
		store:    overlayStore,
		notifier: systemd.NewNotifier(logging.GetLogger("systemd")),
		logger:   logger,
	}
	watchdogCtx, stopDog := context.WithCancel(context.Background())
	app.stopDog = stopDog

	var (
		metricsHandler http.Handler
		registerer     prometheus.Registerer
	)
	if opts.MetricsEnabled {
		app.recorder = metrics.New(manager.Len)
		app.recorder.Attach(bus)
		metricsHandler = app.recorder.Handler()
		registerer = app.recorder.Registry()
	}

	checker := health.New(health.Options{
		TranscoderBin: opts.TranscoderBin,
		HLSRoot:       opts.HLSRoot,
		Store:         overlayStore,
		Registerer:    registerer,
	})
	if results, err := checker.RunReadiness(); err != nil {
		for _, r := range results {
			if r.Err != nil {
				logger.Warn("Readiness check failing at startup", "check", r.Name, "error", r.Err)
			}
		}
	}

	static, err := ui.Handler(opts.StaticRoot)
	if err != nil {
		logger.Warn("Frontend unavailable", "error", err)
		static = nil
	}

	app.server = api.NewServer(&api.Options{
		Streams:        manager,
		Overlays:       overlayService,
		EventBus:       bus,
		HLSRoot:        opts.HLSRoot,
		HLSRoute:       opts.HLSRoute,
		CORSOrigin:     opts.CORSOrigin,
		MetricsHandler: metricsHandler,
		Probes:         checker,
		StaticHandler:  static,
		OnListening: func(addr net.Addr) {
			logger.Info("Listening", "addr", addr.String())
			app.notifier.Ready()
			go app.notifier.Watchdog(watchdogCtx)
		},
	})

	app.watcher = config.NewConfigWatcher(
		opts.Config,
		config.ReadLoggingConfig,
		logging.GetLogger("config"),
		config.WithDebounce[logging.Config](configReloadDelay),
	)
	app.watcher.OnReload(func(lc logging.Config) {
		logging.SetLevels(lc)
		logger.Info("Logging levels reloaded", "level", lc.Level)
	})
	if err := app.watcher.Start(); err != nil {
		logger.Warn("Config reload disabled", "config", opts.Config, "error", err)
		app.watcher = nil
	}

	return app, nil
}

// shutdown stops accepting requests, then terminates every transcoder tree.
func (a *application) shutdown() {
	a.logger.Info("Shutting down server")
	a.notifier.Stopping()
	a.stopDog()
	if err := a.server.Stop(); err != nil {
		a.logger.Error("Error stopping HTTP server", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.manager.StopAll(ctx)

	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	if a.recorder != nil {
		a.recorder.Detach()
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("Error closing overlay store", "error", err)
	}
}
