// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/imrouter/lib/clock"
	"github.com/bureau-foundation/imrouter/lib/config"
	"github.com/bureau-foundation/imrouter/lib/imapi"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/catalog"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/memory"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/service"
	"github.com/bureau-foundation/imrouter/lib/version"
)

// shutdownTimeout bounds how long shutdown waits for queued lifecycle
// notifications and the metrics server.
const shutdownTimeout = 10 * time.Second

type daemonOptions struct {
	Logger   *slog.Logger
	Clock    clock.Clock
	Registry *prometheus.Registry
}

// daemon owns the router and the listeners serving it.
type daemon struct {
	config    *config.Config
	logger    *slog.Logger
	clock     clock.Clock
	startedAt time.Time

	catalog  *catalog.Catalog
	router   *multiuser.Router
	registry *prometheus.Registry

	clientServer  *service.SocketServer
	hostServer    *service.SocketServer
	metricsServer *service.HTTPServer
}

// newDaemon loads the catalog, builds the router for the configured
// mode, and registers every action on the two socket servers. Nothing
// listens until run is called.
func newDaemon(ctx context.Context, cfg *config.Config, options daemonOptions) (*daemon, error) {
	methods, err := catalog.ReadFile(cfg.Paths.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var metrics *multiuser.Metrics
	if options.Registry != nil {
		metrics = multiuser.NewMetrics(options.Registry)
	}

	users := make(multiuser.StaticUsers, 0, len(cfg.Lifecycle.KnownUsers))
	for _, user := range cfg.Lifecycle.KnownUsers {
		users = append(users, inputmethod.UserID(user))
	}

	instanceOptions := memory.Options{Logger: options.Logger, Clock: options.Clock}
	mode := multiuser.ModeFor(cfg.Router.MultiUser)
	routerOptions := multiuser.Options{
		Mode:     mode,
		Host:     inputmethod.HostContext{Logger: options.Logger, Clock: options.Clock},
		Users:    users,
		Resolver: imapi.PeerResolver,
		Logger:   options.Logger,
		Metrics:  metrics,
	}
	// Only the selected mode's backend is constructed.
	if mode == multiuser.ModeMultiUser {
		routerOptions.Factory = memory.Factory(methods, instanceOptions)
	} else {
		routerOptions.Legacy = memory.NewLegacy(methods, instanceOptions)
	}
	router, err := multiuser.Build(ctx, routerOptions)
	if err != nil {
		return nil, err
	}

	d := &daemon{
		config:    cfg,
		logger:    options.Logger,
		clock:     options.Clock,
		startedAt: options.Clock.Now(),
		catalog:   methods,
		router:    router,
		registry:  options.Registry,
	}

	d.clientServer = service.NewSocketServer(cfg.Paths.ClientSocket, options.Logger.With("socket", "client"))
	d.clientServer.SetMode(0666)
	imapi.RegisterClient(d.clientServer, router.Calls, d.status)

	d.hostServer = service.NewSocketServer(cfg.Paths.HostSocket, options.Logger.With("socket", "host"))
	d.hostServer.SetMode(0600)
	imapi.RegisterHost(d.hostServer, router.Lifecycle, router.Local, router.Sync)

	if cfg.Metrics.ListenAddress != "" && options.Registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(options.Registry, promhttp.HandlerOpts{Registry: options.Registry}))
		d.metricsServer = service.NewHTTPServer(service.HTTPServerConfig{
			Address: cfg.Metrics.ListenAddress,
			Handler: mux,
			Logger:  options.Logger.With("endpoint", "metrics"),
		})
	}

	options.Logger.Info("router built",
		"mode", mode.String(),
		"catalog", cfg.Paths.Catalog,
		"catalog_digest", methods.Digest(),
		"catalog_methods", methods.Len(),
		"known_users", len(users),
	)
	return d, nil
}

// status reports the daemon's state for the status action.
func (d *daemon) status(context.Context) (imapi.Status, error) {
	return imapi.Status{
		Mode:             d.router.Mode.String(),
		Version:          version.Info(),
		StartedAt:        d.startedAt,
		UptimeSeconds:    int64(clock.Since(d.clock, d.startedAt).Seconds()),
		CatalogDigest:    d.catalog.Digest(),
		CatalogMethods:   d.catalog.Len(),
		PendingLifecycle: d.router.PendingLifecycle(),
		Users:            d.router.Snapshots(),
	}, nil
}

// run serves until ctx is cancelled. The lifecycle worker runs on its
// own context so that notifications accepted before shutdown are
// processed after the sockets close.
func (d *daemon) run(ctx context.Context) error {
	if err := d.config.EnsurePaths(); err != nil {
		return err
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- d.router.Run(workerCtx)
	}()

	var metricsDone chan error
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()
	if d.metricsServer != nil {
		metricsDone = make(chan error, 1)
		go func() {
			metricsDone <- d.metricsServer.Serve(metricsCtx)
		}()
	}

	var (
		serveErrors []error
		mu          sync.Mutex
		wg          sync.WaitGroup
	)
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	for _, server := range []*service.SocketServer{d.clientServer, d.hostServer} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Serve(serveCtx); err != nil {
				mu.Lock()
				serveErrors = append(serveErrors, err)
				mu.Unlock()
				// One socket failing takes the daemon down.
				stopServing()
			}
		}()
	}

	d.logger.Info("imrouter daemon running",
		"mode", d.router.Mode.String(),
		"client_socket", d.config.Paths.ClientSocket,
		"host_socket", d.config.Paths.HostSocket,
	)

	wg.Wait()
	d.logger.Info("shutting down", "pending_lifecycle", d.router.PendingLifecycle())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.router.Sync(shutdownCtx); err != nil {
		d.logger.Warn("lifecycle queue not drained", "error", err, "pending_lifecycle", d.router.PendingLifecycle())
	}
	stopWorker()
	if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
		serveErrors = append(serveErrors, fmt.Errorf("lifecycle worker: %w", err))
	}
	if metricsDone != nil {
		stopMetrics()
		if err := <-metricsDone; err != nil {
			serveErrors = append(serveErrors, fmt.Errorf("metrics endpoint: %w", err))
		}
	}

	return errors.Join(serveErrors...)
}
