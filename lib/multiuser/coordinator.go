// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// UserLister enumerates the users that exist when the host reaches
// PhaseActivityManagerReady.
type UserLister interface {
	ListUsers(ctx context.Context) ([]inputmethod.UserID, error)
}

// UserListerFunc adapts a function to UserLister.
type UserListerFunc func(ctx context.Context) ([]inputmethod.UserID, error)

// ListUsers calls f.
func (f UserListerFunc) ListUsers(ctx context.Context) ([]inputmethod.UserID, error) {
	return f(ctx)
}

// StaticUsers is a fixed user list.
type StaticUsers []inputmethod.UserID

// ListUsers returns a copy of s.
func (s StaticUsers) ListUsers(context.Context) ([]inputmethod.UserID, error) {
	return append([]inputmethod.UserID(nil), s...), nil
}

// Lifecycle event names used in logs and metrics.
const (
	eventBootPhase = "boot_phase"
	eventStarting  = "user_starting"
	eventUnlocking = "user_unlocking"
	eventSwitching = "user_switching"
	eventStopping  = "user_stopping"
	eventSync      = "sync"
)

// Dispositions of a processed lifecycle event.
const (
	dispositionHandled       = "handled"
	dispositionIgnored       = "ignored"
	dispositionAbsent        = "absent"
	dispositionNotPropagated = "not_propagated"
	dispositionFailed        = "failed"
)

type lifecycleTask struct {
	event string
	run   func(ctx context.Context) (disposition string, err error)
}

// Coordinator turns host lifecycle notifications into registry
// operations. The On* callbacks only enqueue and return immediately;
// a single worker goroutine (Run) processes tasks one at a time in
// arrival order. The queue is unbounded.
//
// User switching and stopping are not propagated to per-user
// instances: each instance serves exactly one user, so neither event
// changes which instance handles a call. They are logged and counted.
type Coordinator struct {
	registry *Registry
	users    UserLister
	logger   *slog.Logger
	metrics  *Metrics

	mu    sync.Mutex
	queue []lifecycleTask
	wake  chan struct{}
}

var _ inputmethod.Lifecycle = (*Coordinator)(nil)

// NewCoordinator creates a coordinator feeding registry. users may be
// nil, in which case the activity-manager-ready boot phase registers
// nobody. metrics may be nil.
func NewCoordinator(registry *Registry, users UserLister, logger *slog.Logger, metrics *Metrics) *Coordinator {
	return &Coordinator{
		registry: registry,
		users:    users,
		logger:   logger,
		metrics:  metrics,
		wake:     make(chan struct{}, 1),
	}
}

// Run processes queued tasks until ctx is cancelled. It must be called
// exactly once. Tasks still queued at cancellation are left
// unprocessed; call Sync first to drain.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		task, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.process(ctx, task)
	}
}

func (c *Coordinator) next() (lifecycleTask, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return lifecycleTask{}, false
	}
	task := c.queue[0]
	c.queue[0] = lifecycleTask{}
	c.queue = c.queue[1:]
	c.metrics.queueDepth(len(c.queue))
	return task, true
}

func (c *Coordinator) enqueue(task lifecycleTask) {
	c.mu.Lock()
	c.queue = append(c.queue, task)
	c.metrics.queueDepth(len(c.queue))
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) process(ctx context.Context, task lifecycleTask) {
	disposition, err := task.run(ctx)
	if err != nil {
		c.logger.Error("lifecycle task failed", "event", task.event, "error", err)
		c.metrics.lifecycleFailure(task.event)
		disposition = dispositionFailed
	}
	if task.event != eventSync {
		c.metrics.lifecycle(task.event, disposition)
	}
}

// Pending returns the number of queued tasks not yet picked up by the
// worker.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Sync waits until every task enqueued before the call has been
// processed, or until ctx is done. It requires a running worker.
func (c *Coordinator) Sync(ctx context.Context) error {
	done := make(chan struct{})
	c.enqueue(lifecycleTask{
		event: eventSync,
		run: func(context.Context) (string, error) {
			close(done)
			return dispositionHandled, nil
		},
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for lifecycle queue: %w", ctx.Err())
	}
}

// OnBootPhase registers every known user when phase is
// PhaseActivityManagerReady. Other phases are ignored.
func (c *Coordinator) OnBootPhase(_ context.Context, phase inputmethod.BootPhase) {
	c.enqueue(lifecycleTask{
		event: eventBootPhase,
		run: func(ctx context.Context) (string, error) {
			if phase != inputmethod.PhaseActivityManagerReady {
				c.logger.Debug("ignoring boot phase", "phase", phase)
				return dispositionIgnored, nil
			}
			if c.users == nil {
				c.logger.Info("no user lister configured, registering nobody at boot")
				return dispositionHandled, nil
			}
			users, err := c.users.ListUsers(ctx)
			if err != nil {
				return "", fmt.Errorf("listing users at boot phase %d: %w", phase, err)
			}
			var errs []error
			for _, user := range users {
				if _, err := c.registry.Ensure(ctx, user); err != nil {
					errs = append(errs, err)
				}
			}
			c.logger.Info("boot phase handled", "phase", phase, "users", len(users), "failures", len(errs))
			return dispositionHandled, errors.Join(errs...)
		},
	})
}

// OnUserStarting registers user's instance if needed and schedules the
// initial switch to user.
func (c *Coordinator) OnUserStarting(_ context.Context, user inputmethod.UserID) {
	c.enqueue(lifecycleTask{
		event: eventStarting,
		run: func(ctx context.Context) (string, error) {
			instance, err := c.registry.Ensure(ctx, user)
			if err != nil {
				return "", err
			}
			if err := instance.ScheduleUserSwitch(ctx, user, nil); err != nil {
				return "", fmt.Errorf("scheduling switch to user %d: %w", user, err)
			}
			return dispositionHandled, nil
		},
	})
}

// OnUserUnlocking notifies user's instance that storage is unlocked. A
// user with no instance is skipped; a user whose instance failed to
// start is counted as a failure.
func (c *Coordinator) OnUserUnlocking(_ context.Context, user inputmethod.UserID) {
	c.enqueue(lifecycleTask{
		event: eventUnlocking,
		run: func(ctx context.Context) (string, error) {
			instance, err := c.registry.Lookup(user)
			if errors.Is(err, errNotRegistered) {
				c.logger.Debug("unlock for user with no instance", "user", user)
				return dispositionAbsent, nil
			}
			if err != nil {
				return "", fmt.Errorf("notifying unlock: %w", err)
			}
			if err := instance.NotifySystemUnlocked(ctx, user); err != nil {
				return "", fmt.Errorf("notifying unlock for user %d: %w", user, err)
			}
			return dispositionHandled, nil
		},
	})
}

// OnUserSwitching is recorded but not propagated.
func (c *Coordinator) OnUserSwitching(_ context.Context, from, to inputmethod.UserID) {
	c.enqueue(lifecycleTask{
		event: eventSwitching,
		run: func(context.Context) (string, error) {
			c.logger.Debug("user switch not propagated to per-user instances", "from_user", from, "to_user", to)
			return dispositionNotPropagated, nil
		},
	})
}

// OnUserStopping is recorded but not propagated. The user's instance,
// if any, stays registered.
func (c *Coordinator) OnUserStopping(_ context.Context, user inputmethod.UserID) {
	c.enqueue(lifecycleTask{
		event: eventStopping,
		run: func(context.Context) (string, error) {
			c.logger.Debug("user stop not propagated to per-user instances", "user", user)
			return dispositionNotPropagated, nil
		},
	})
}
