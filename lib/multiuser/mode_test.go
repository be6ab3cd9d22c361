// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/memory"
)

func TestModeFor(t *testing.T) {
	if got := ModeFor(true); got != ModeMultiUser {
		t.Errorf("ModeFor(true) = %v", got)
	}
	if got := ModeFor(false); got != ModeLegacy {
		t.Errorf("ModeFor(false) = %v", got)
	}
	if got := Mode(7).String(); got != "Mode(7)" {
		t.Errorf("Mode(7).String() = %q", got)
	}
}

func TestBuildValidatesOptions(t *testing.T) {
	tests := []struct {
		name    string
		options Options
	}{
		{"missing resolver", Options{Mode: ModeMultiUser, Factory: newTestFactory(t)}},
		{"multi-user without factory", Options{Mode: ModeMultiUser, Resolver: ContextResolver}},
		{"legacy without instance", Options{Mode: ModeLegacy, Resolver: ContextResolver}},
		{"unknown mode", Options{Mode: Mode(9), Resolver: ContextResolver}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Build(context.Background(), test.options); err == nil {
				t.Fatal("Build succeeded, want error")
			}
		})
	}
}

func TestLegacyModeUsesSingleInstance(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)
	legacy := memory.NewLegacy(testCatalog(t), memory.Options{Logger: testLogger()})

	router, err := Build(ctx, Options{
		Mode:     ModeLegacy,
		Factory:  factory,
		Legacy:   legacy,
		Users:    StaticUsers{10, 11},
		Resolver: ContextResolver,
		Logger:   testLogger(),
		Metrics:  NewMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if router.Registry != nil || router.Coordinator != nil {
		t.Fatal("legacy mode built a registry or coordinator")
	}
	if err := legacy.Start(ctx); !errors.Is(err, memory.ErrAlreadyStarted) {
		t.Errorf("legacy instance not started by Build: Start = %v", err)
	}

	// Lifecycle notifications reach the legacy instance directly,
	// including the ones multi-user mode does not propagate.
	router.Lifecycle.OnBootPhase(ctx, inputmethod.PhaseActivityManagerReady)
	router.Lifecycle.OnUserStarting(ctx, 10)
	router.Lifecycle.OnUserUnlocking(ctx, 10)
	router.Lifecycle.OnUserSwitching(ctx, 0, 10)
	if got := legacy.Snapshot().User; got != 10 {
		t.Errorf("legacy foreground user = %d, want 10", got)
	}
	router.Lifecycle.OnUserStopping(ctx, 10)
	if running, _ := legacy.UserState(10); running {
		t.Error("legacy instance still reports user 10 running")
	}

	// Calls from any user land on the one instance.
	for _, user := range []inputmethod.UserID{0, 10, 42} {
		client := inputmethod.ClientID("client-" + user.String())
		if err := router.Calls.AddClient(callerContext(user), client, inputmethod.DefaultDisplay); err != nil {
			t.Fatalf("AddClient as user %d: %v", user, err)
		}
	}
	if got := legacy.Snapshot().Clients; got != 3 {
		t.Errorf("legacy clients = %d, want 3", got)
	}
	if err := router.Local.SetInteractive(callerContext(42), false); err != nil {
		t.Fatalf("local SetInteractive: %v", err)
	}
	if legacy.Snapshot().Interactive {
		t.Error("local call did not reach the legacy instance")
	}

	for user := range factory.constructions {
		t.Errorf("factory constructed an instance for user %d in legacy mode", user)
	}
	if err := router.Sync(ctx); err != nil {
		t.Errorf("Sync: %v", err)
	}
	if snapshots := router.Snapshots(); len(snapshots) != 1 {
		t.Errorf("Snapshots() = %d entries, want 1", len(snapshots))
	}
}

func TestMultiUserModeAssemblesRegistry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	factory := newTestFactory(t)

	router, err := Build(ctx, Options{
		Mode:     ModeMultiUser,
		Factory:  factory,
		Users:    StaticUsers{10, 11},
		Resolver: ContextResolver,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if router.Registry == nil || router.Coordinator == nil {
		t.Fatal("multi-user mode did not build a registry and coordinator")
	}
	go router.Run(ctx)

	router.Lifecycle.OnBootPhase(ctx, inputmethod.PhaseActivityManagerReady)
	if err := router.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	snapshots := router.Snapshots()
	if len(snapshots) != 2 || snapshots[0].User != 10 || snapshots[1].User != 11 {
		t.Errorf("Snapshots() = %+v, want users 10 and 11", snapshots)
	}
	if _, err := router.Calls.IsImeTraceEnabled(callerContext(12)); !errors.Is(err, ErrUnregisteredUser) {
		t.Errorf("call for user 12 = %v, want ErrUnregisteredUser", err)
	}
	if router.PendingLifecycle() != 0 {
		t.Errorf("PendingLifecycle() = %d, want 0", router.PendingLifecycle())
	}
}
