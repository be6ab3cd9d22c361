// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// The Lifecycle methods below are driven by the host only in legacy
// mode, where this single instance serves every user. Failures are
// logged: the notification surface has no error channel.

func (i *Instance) OnBootPhase(_ context.Context, phase inputmethod.BootPhase) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if phase > i.bootPhase {
		i.bootPhase = phase
	}
	i.logger.Debug("boot phase reached", "phase", phase)
}

func (i *Instance) OnUserStarting(_ context.Context, user inputmethod.UserID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running[user] = true
}

func (i *Instance) OnUserUnlocking(ctx context.Context, user inputmethod.UserID) {
	if err := i.NotifySystemUnlocked(ctx, user); err != nil {
		i.logger.Error("unlock notification failed", "target_user", user, "error", err)
	}
}

// OnUserSwitching moves the instance to the new foreground user,
// passing the previously focused client as the prior-client hint.
func (i *Instance) OnUserSwitching(ctx context.Context, from, to inputmethod.UserID) {
	i.mu.Lock()
	var prior *inputmethod.ClientID
	if i.focusedClient != "" {
		focused := i.focusedClient
		prior = &focused
	}
	i.mu.Unlock()

	if err := i.ScheduleUserSwitch(ctx, to, prior); err != nil {
		i.logger.Error("user switch failed", "from_user", from, "to_user", to, "error", err)
	}
}

func (i *Instance) OnUserStopping(_ context.Context, user inputmethod.UserID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.running, user)
	delete(i.unlocked, user)
	i.logger.Debug("user stopping", "target_user", user)
}

// UserState reports whether user is running and unlocked as far as
// this instance knows. Used by tests and status output in legacy mode.
func (i *Instance) UserState(user inputmethod.UserID) (running, unlocked bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.running[user], i.unlocked[user]
}
