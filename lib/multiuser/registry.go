// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// errNotRegistered is returned by the Lookup methods for a user with
// no registered instance. The routers turn it into an
// UnregisteredUserError naming the operation.
var errNotRegistered = errors.New("user not registered")

// registryEntry is one registered user. start runs Instance.Start
// exactly once; every Ensure caller for the user waits on it and sees
// the same startErr. startErr is written under Registry.mu so lookups
// can read it while Start is still running.
type registryEntry struct {
	instance inputmethod.Instance
	start    sync.Once
	startErr error
}

// Registry owns the per-user instances and their local handles. An
// instance is constructed at most once per user for the life of the
// Registry and is never removed.
//
// A single mutex guards both maps, so a user present in one is always
// present in the other. The mutex is never held across a call into an
// instance other than the factory's constructor and Instance.Local.
type Registry struct {
	factory inputmethod.Factory
	host    inputmethod.HostContext
	logger  *slog.Logger
	metrics *Metrics

	mu        sync.Mutex
	instances map[inputmethod.UserID]*registryEntry
	locals    map[inputmethod.UserID]inputmethod.Local
}

// NewRegistry creates an empty registry. host is handed to every
// instance the factory constructs. metrics may be nil.
func NewRegistry(factory inputmethod.Factory, host inputmethod.HostContext, logger *slog.Logger, metrics *Metrics) *Registry {
	return &Registry{
		factory:   factory,
		host:      host,
		logger:    logger,
		metrics:   metrics,
		instances: make(map[inputmethod.UserID]*registryEntry),
		locals:    make(map[inputmethod.UserID]inputmethod.Local),
	}
}

// Ensure returns the started instance for user, constructing and
// starting it if this is the first request for user. Concurrent calls
// for the same user construct exactly once and return the same
// instance.
//
// If construction fails nothing is registered and a later Ensure
// retries. If Start fails the instance stays registered (there is no
// teardown) and every Ensure for user returns the start error.
func (r *Registry) Ensure(ctx context.Context, user inputmethod.UserID) (inputmethod.Instance, error) {
	entry, err := r.register(ctx, user)
	if err != nil {
		return nil, err
	}

	entry.start.Do(func() {
		err := entry.instance.Start(ctx)
		r.mu.Lock()
		entry.startErr = err
		r.mu.Unlock()
		if err != nil {
			r.metrics.construction(constructionStartError)
			r.logger.Error("starting input method instance failed", "user", user, "error", err)
			return
		}
		r.metrics.construction(constructionStarted)
		r.logger.Info("input method instance registered", "user", user)
	})
	if entry.startErr != nil {
		return nil, fmt.Errorf("starting instance for user %d: %w", user, entry.startErr)
	}
	return entry.instance, nil
}

// register returns the entry for user, constructing and registering it
// under the lock when absent.
func (r *Registry) register(ctx context.Context, user inputmethod.UserID) (*registryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.instances[user]; ok {
		return entry, nil
	}

	instance, err := r.factory.NewInstance(ctx, r.host, user)
	if err != nil {
		r.metrics.construction(constructionFactoryError)
		return nil, fmt.Errorf("constructing instance for user %d: %w", user, err)
	}
	if instance == nil {
		r.metrics.construction(constructionFactoryError)
		return nil, fmt.Errorf("constructing instance for user %d: factory returned nil", user)
	}

	entry := &registryEntry{instance: instance}
	r.instances[user] = entry
	r.locals[user] = instance.Local()
	r.metrics.registered(len(r.instances))
	return entry, nil
}

// Get returns the instance registered for user. It never constructs.
// The instance may still be starting if a concurrent Ensure has not
// returned yet, and it is returned even if its Start failed; use Lookup
// to route calls.
func (r *Registry) Get(user inputmethod.UserID) (inputmethod.Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.instances[user]
	if !ok {
		return nil, false
	}
	return entry.instance, true
}

// GetLocal returns the local handle registered for user. It never
// constructs.
func (r *Registry) GetLocal(user inputmethod.UserID) (inputmethod.Local, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	local, ok := r.locals[user]
	return local, ok
}

// Lookup returns the instance CallRouter forwards to for user. It
// never constructs. A user with no instance yields errNotRegistered; a
// user whose Start failed yields that start error. An instance whose
// Start is still running in another goroutine's Ensure is returned.
func (r *Registry) Lookup(user inputmethod.UserID) (inputmethod.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.instances[user]
	if !ok {
		return nil, errNotRegistered
	}
	if entry.startErr != nil {
		return nil, startFailed(user, entry.startErr)
	}
	return entry.instance, nil
}

// LookupLocal is Lookup for the local handle paired with user's
// instance.
func (r *Registry) LookupLocal(user inputmethod.UserID) (inputmethod.Local, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.instances[user]
	if !ok {
		return nil, errNotRegistered
	}
	if entry.startErr != nil {
		return nil, startFailed(user, entry.startErr)
	}
	return r.locals[user], nil
}

func startFailed(user inputmethod.UserID, err error) error {
	return fmt.Errorf("instance for user %d failed to start: %w", user, err)
}

// Users returns the registered users in ascending order.
func (r *Registry) Users() []inputmethod.UserID {
	r.mu.Lock()
	users := make([]inputmethod.UserID, 0, len(r.instances))
	for user := range r.instances {
		users = append(users, user)
	}
	r.mu.Unlock()
	slices.Sort(users)
	return users
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}
