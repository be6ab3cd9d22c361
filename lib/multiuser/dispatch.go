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

// Surfaces label dispatch metrics.
const (
	surfaceClient = "client"
	surfaceLocal  = "local"
)

// dispatcher holds the resolve-lookup-forward logic shared by
// CallRouter and LocalRouter. T is the per-user handle the surface
// forwards to.
type dispatcher[T any] struct {
	surface  string
	resolver CallerResolver
	lookup   func(inputmethod.UserID) (T, error)
	logger   *slog.Logger
	metrics  *Metrics
}

// route resolves the caller and looks up the caller's own handle.
func (d *dispatcher[T]) route(ctx context.Context, operation string) (T, inputmethod.Caller, error) {
	caller, err := d.resolve(ctx, operation)
	if err != nil {
		var zero T
		return zero, caller, err
	}
	return d.find(operation, caller, caller.User)
}

// routeAs resolves the caller and looks up target's handle. Calls that
// cross users are logged at info with both identities.
func (d *dispatcher[T]) routeAs(ctx context.Context, operation string, target inputmethod.UserID) (T, inputmethod.Caller, error) {
	caller, err := d.resolve(ctx, operation)
	if err != nil {
		var zero T
		return zero, caller, err
	}
	if target != caller.User {
		d.logger.Info("cross-user call",
			"surface", d.surface,
			"operation", operation,
			"caller_user", caller.User,
			"caller_uid", caller.UID,
			"target_user", target,
		)
	}
	return d.find(operation, caller, target)
}

func (d *dispatcher[T]) resolve(ctx context.Context, operation string) (inputmethod.Caller, error) {
	caller, err := d.resolver.ResolveCaller(ctx)
	if err != nil {
		d.metrics.dispatch(d.surface, operation, outcomeError)
		return inputmethod.Caller{}, fmt.Errorf("%s: resolving caller: %w", operation, err)
	}
	return caller, nil
}

// find looks up user's handle. A missing user is an
// UnregisteredUserError; any other lookup failure (an instance whose
// Start failed) is returned wrapped with the operation.
func (d *dispatcher[T]) find(operation string, caller inputmethod.Caller, user inputmethod.UserID) (T, inputmethod.Caller, error) {
	handle, err := d.lookup(user)
	if err != nil && !errors.Is(err, errNotRegistered) {
		d.metrics.dispatch(d.surface, operation, outcomeError)
		d.logger.Warn("call for user whose instance failed to start",
			"surface", d.surface,
			"operation", operation,
			"user", user,
			"error", err,
		)
		var zero T
		return zero, caller, fmt.Errorf("%s: %w", operation, err)
	}
	if err != nil {
		d.metrics.dispatch(d.surface, operation, outcomeUnregistered)
		d.logger.Debug("call for unregistered user",
			"surface", d.surface,
			"operation", operation,
			"user", user,
			"caller_uid", caller.UID,
		)
		var zero T
		return zero, caller, &UnregisteredUserError{User: user, Operation: operation}
	}
	return handle, caller, nil
}

// finish records the outcome of a forwarded call and returns err
// unchanged.
func (d *dispatcher[T]) finish(operation string, err error) error {
	if err != nil {
		d.metrics.dispatch(d.surface, operation, outcomeError)
		return err
	}
	d.metrics.dispatch(d.surface, operation, outcomeOK)
	return nil
}
