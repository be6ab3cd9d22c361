// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bureau-foundation/imrouter/lib/clock"
	"github.com/bureau-foundation/imrouter/lib/config"
	"github.com/bureau-foundation/imrouter/lib/imapi"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/testutil"
)

const testCatalog = `{
	// Minimal catalog for daemon tests.
	"methods": [
		{"id": "org.example.latin/.LatinIME", "label": "Latin", "system": true,
		 "default_subtype_id": 1,
		 "subtypes": [{"id": 1, "locale": "en-US", "mode": "keyboard"}]},
	],
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T, multiUser bool) *config.Config {
	t.Helper()
	directory := testutil.SocketDir(t)
	cfg := config.Default()
	cfg.Router.MultiUser = multiUser
	cfg.Paths.Root = directory
	cfg.Paths.ClientSocket = filepath.Join(directory, "client.sock")
	cfg.Paths.HostSocket = filepath.Join(directory, "host.sock")
	cfg.Paths.Catalog = testutil.WriteFile(t, "catalog.jsonc", testCatalog)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

type runningDaemon struct {
	daemon   *daemon
	clock    *clock.FakeClock
	registry *prometheus.Registry
	client   *imapi.Client
	host     *imapi.Client
	stop     func() error
}

func startDaemon(t *testing.T, cfg *config.Config) *runningDaemon {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	fake := clock.Fake(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	registry := prometheus.NewRegistry()

	d, err := newDaemon(ctx, cfg, daemonOptions{Logger: testLogger(), Clock: fake, Registry: registry})
	if err != nil {
		cancel()
		t.Fatalf("newDaemon: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- d.run(ctx) }()
	testutil.RequireClosed(t, d.clientServer.Ready(), 5*time.Second, "client socket ready")
	testutil.RequireClosed(t, d.hostServer.Ready(), 5*time.Second, "host socket ready")

	stopped := false
	stop := func() error {
		if stopped {
			return nil
		}
		stopped = true
		cancel()
		return testutil.RequireReceive(t, done, 10*time.Second, "daemon shutdown")
	}
	t.Cleanup(func() { _ = stop() })

	return &runningDaemon{
		daemon:   d,
		clock:    fake,
		registry: registry,
		client:   imapi.NewClient(cfg.Paths.ClientSocket),
		host:     imapi.NewClient(cfg.Paths.HostSocket),
		stop:     stop,
	}
}

func TestDaemonMultiUser(t *testing.T) {
	cfg := testConfig(t, true)
	running := startDaemon(t, cfg)
	ctx := context.Background()
	self := inputmethod.UserIDForUID(uint32(os.Getuid()))

	err := running.client.AddClient(ctx, "client-a", inputmethod.DefaultDisplay)
	if !errors.Is(err, multiuser.ErrUnregisteredUser) {
		t.Fatalf("AddClient before user start = %v, want ErrUnregisteredUser", err)
	}

	if err := running.host.UserStarting(ctx, self); err != nil {
		t.Fatalf("UserStarting: %v", err)
	}
	if err := running.host.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := running.client.AddClient(ctx, "client-a", inputmethod.DefaultDisplay); err != nil {
		t.Fatalf("AddClient: %v", err)
	}

	running.clock.Advance(90 * time.Second)
	status, err := running.client.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Mode != "multi-user" || status.UptimeSeconds != 90 || status.Version == "" {
		t.Errorf("status = %+v", status)
	}
	if status.CatalogMethods != 1 || status.CatalogDigest != running.daemon.catalog.Digest() {
		t.Errorf("catalog in status = (%d, %q)", status.CatalogMethods, status.CatalogDigest)
	}
	if len(status.Users) != 1 || status.Users[0].User != self || status.Users[0].Clients != 1 {
		t.Errorf("status users = %+v", status.Users)
	}

	expected := `
# HELP imrouter_registered_users Users with a registered input method instance
# TYPE imrouter_registered_users gauge
imrouter_registered_users 1
`
	if err := promtest.GatherAndCompare(running.registry, strings.NewReader(expected), "imrouter_registered_users"); err != nil {
		t.Error(err)
	}
	if count, err := promtest.GatherAndCount(running.registry, "imrouter_dispatches_total"); err != nil || count == 0 {
		t.Errorf("dispatch series = (%d, %v), want at least one", count, err)
	}

	if err := running.stop(); err != nil {
		t.Fatalf("daemon returned %v", err)
	}
	for _, path := range []string{cfg.Paths.ClientSocket, cfg.Paths.HostSocket} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("socket %s left behind after shutdown (stat error %v)", path, err)
		}
	}
}

func TestDaemonKnownUsersAtBoot(t *testing.T) {
	cfg := testConfig(t, true)
	self := inputmethod.UserIDForUID(uint32(os.Getuid()))
	cfg.Lifecycle.KnownUsers = []int32{int32(self)}
	running := startDaemon(t, cfg)
	ctx := context.Background()

	if err := running.host.BootPhase(ctx, inputmethod.PhaseActivityManagerReady); err != nil {
		t.Fatalf("BootPhase: %v", err)
	}
	if err := running.host.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	enabled, err := running.client.GetEnabledInputMethodList(ctx, self)
	if err != nil || len(enabled) != 1 {
		t.Errorf("GetEnabledInputMethodList = (%+v, %v), want the system method", enabled, err)
	}
}

func TestDaemonLegacyMode(t *testing.T) {
	running := startDaemon(t, testConfig(t, false))
	ctx := context.Background()

	if err := running.client.AddClient(ctx, "client-a", inputmethod.DefaultDisplay); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	status, err := running.client.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Mode != "legacy" || len(status.Users) != 1 || status.PendingLifecycle != 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestNewDaemonMissingCatalog(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Paths.Catalog = filepath.Join(t.TempDir(), "missing.jsonc")

	_, err := newDaemon(context.Background(), cfg, daemonOptions{Logger: testLogger(), Clock: clock.Real()})
	if err == nil || !strings.Contains(err.Error(), "loading catalog") {
		t.Errorf("newDaemon = %v, want catalog error", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := testutil.WriteFile(t, "imrouter.yaml", "environment: invalid\n")
	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("loadConfig = %v, want validation error", err)
	}

	path = testutil.WriteFile(t, "imrouter.yaml", "router:\n  multi_user: false\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Router.MultiUser {
		t.Error("expected multi_user=false")
	}
}

func TestDaemonMetricsEndpoint(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Metrics.ListenAddress = "127.0.0.1:0"
	running := startDaemon(t, cfg)
	testutil.RequireClosed(t, running.daemon.metricsServer.Ready(), 5*time.Second, "metrics endpoint ready")

	response, err := http.Get("http://" + running.daemon.metricsServer.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if !strings.Contains(string(body), "imrouter_registered_users 0") {
		t.Errorf("metrics body missing registry gauge:\n%s", body)
	}

	if err := running.stop(); err != nil {
		t.Fatalf("daemon returned %v", err)
	}
}
