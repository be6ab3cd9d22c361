// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// Mode selects between per-user routing and the single legacy
// instance. It is decided once at startup.
type Mode int

const (
	// ModeLegacy routes every call and lifecycle notification to one
	// unmultiplexed instance.
	ModeLegacy Mode = iota
	// ModeMultiUser routes each call to the owning user's instance.
	ModeMultiUser
)

// ModeFor maps the multi_user configuration flag to a Mode.
func ModeFor(multiUser bool) Mode {
	if multiUser {
		return ModeMultiUser
	}
	return ModeLegacy
}

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeMultiUser:
		return "multi-user"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures Build.
type Options struct {
	Mode Mode

	// Factory constructs per-user instances. Required in ModeMultiUser.
	Factory inputmethod.Factory

	// Legacy is the single instance used in ModeLegacy. Build starts
	// it. Required in ModeLegacy.
	Legacy inputmethod.LegacyInstance

	// Host is passed to every instance the factory constructs.
	Host inputmethod.HostContext

	// Users lists the users to register at the activity-manager-ready
	// boot phase. Optional.
	Users UserLister

	// Resolver derives caller identity for both routers. Required.
	Resolver CallerResolver

	Logger  *slog.Logger
	Metrics *Metrics
}

// Router is the assembled routing layer for one Mode. Exactly one of
// Registry/Coordinator (multi-user) or the legacy instance (legacy) is
// populated.
type Router struct {
	Mode      Mode
	Calls     *CallRouter
	Local     *LocalRouter
	Lifecycle inputmethod.Lifecycle

	Registry    *Registry
	Coordinator *Coordinator

	legacy inputmethod.LegacyInstance
}

// Build assembles the routing layer for options.Mode. In legacy mode it
// starts the legacy instance before returning; in multi-user mode the
// caller must run Router.Run to process lifecycle notifications.
func Build(ctx context.Context, options Options) (*Router, error) {
	if options.Resolver == nil {
		return nil, errors.New("building router: caller resolver is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("mode", options.Mode.String())

	switch options.Mode {
	case ModeMultiUser:
		if options.Factory == nil {
			return nil, errors.New("building multi-user router: instance factory is required")
		}
		registry := NewRegistry(options.Factory, options.Host, logger, options.Metrics)
		coordinator := NewCoordinator(registry, options.Users, logger, options.Metrics)
		return &Router{
			Mode:        ModeMultiUser,
			Calls:       NewCallRouter(options.Resolver, registry.Lookup, logger, options.Metrics),
			Local:       NewLocalRouter(options.Resolver, registry.LookupLocal, logger, options.Metrics),
			Lifecycle:   coordinator,
			Registry:    registry,
			Coordinator: coordinator,
		}, nil

	case ModeLegacy:
		if options.Legacy == nil {
			return nil, errors.New("building legacy router: legacy instance is required")
		}
		if err := options.Legacy.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting legacy instance: %w", err)
		}
		logger.Info("multi-user routing disabled, using legacy instance")
		return &Router{
			Mode:  ModeLegacy,
			Calls: NewCallRouter(options.Resolver, legacyLookup[inputmethod.Instance](options.Legacy), logger, options.Metrics),
			Local: NewLocalRouter(options.Resolver, legacyLookup(options.Legacy.Local()), logger, options.Metrics),
			Lifecycle: &legacyLifecycle{
				instance: options.Legacy,
				logger:   logger,
				metrics:  options.Metrics,
			},
			legacy: options.Legacy,
		}, nil

	default:
		return nil, fmt.Errorf("building router: unknown mode %v", options.Mode)
	}
}

// Run processes lifecycle notifications until ctx is cancelled. In
// legacy mode notifications are handled inline and Run only waits.
func (r *Router) Run(ctx context.Context) error {
	if r.Coordinator != nil {
		return r.Coordinator.Run(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Sync waits for queued lifecycle notifications to be processed. It
// returns immediately in legacy mode.
func (r *Router) Sync(ctx context.Context) error {
	if r.Coordinator != nil {
		return r.Coordinator.Sync(ctx)
	}
	return nil
}

// Snapshots reports the state of every instance, ordered by user. In
// legacy mode the single instance is reported once.
func (r *Router) Snapshots() []inputmethod.Snapshot {
	if r.legacy != nil {
		return []inputmethod.Snapshot{r.legacy.Snapshot()}
	}
	users := r.Registry.Users()
	snapshots := make([]inputmethod.Snapshot, 0, len(users))
	for _, user := range users {
		if instance, ok := r.Registry.Get(user); ok {
			snapshots = append(snapshots, instance.Snapshot())
		}
	}
	return snapshots
}

// PendingLifecycle returns the number of queued lifecycle
// notifications. Always zero in legacy mode.
func (r *Router) PendingLifecycle() int {
	if r.Coordinator != nil {
		return r.Coordinator.Pending()
	}
	return 0
}
