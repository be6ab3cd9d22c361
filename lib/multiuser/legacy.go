// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// legacyLifecycle forwards every host notification straight to the
// single legacy instance, on the notifying goroutine.
type legacyLifecycle struct {
	instance inputmethod.LegacyInstance
	logger   *slog.Logger
	metrics  *Metrics
}

var _ inputmethod.Lifecycle = (*legacyLifecycle)(nil)

func (l *legacyLifecycle) OnBootPhase(ctx context.Context, phase inputmethod.BootPhase) {
	l.metrics.lifecycle(eventBootPhase, dispositionHandled)
	l.instance.OnBootPhase(ctx, phase)
}

func (l *legacyLifecycle) OnUserStarting(ctx context.Context, user inputmethod.UserID) {
	l.metrics.lifecycle(eventStarting, dispositionHandled)
	l.instance.OnUserStarting(ctx, user)
}

func (l *legacyLifecycle) OnUserUnlocking(ctx context.Context, user inputmethod.UserID) {
	l.metrics.lifecycle(eventUnlocking, dispositionHandled)
	l.instance.OnUserUnlocking(ctx, user)
}

func (l *legacyLifecycle) OnUserSwitching(ctx context.Context, from, to inputmethod.UserID) {
	l.logger.Debug("forwarding user switch to legacy instance", "from_user", from, "to_user", to)
	l.metrics.lifecycle(eventSwitching, dispositionHandled)
	l.instance.OnUserSwitching(ctx, from, to)
}

func (l *legacyLifecycle) OnUserStopping(ctx context.Context, user inputmethod.UserID) {
	l.metrics.lifecycle(eventStopping, dispositionHandled)
	l.instance.OnUserStopping(ctx, user)
}

// legacyLookup returns a lookup that yields the same handle for every
// user.
func legacyLookup[T any](handle T) func(inputmethod.UserID) (T, error) {
	return func(inputmethod.UserID) (T, error) { return handle, nil }
}
