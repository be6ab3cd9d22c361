// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package multiuser routes input method calls to isolated per-user
// service instances.
//
// A [Registry] owns every per-user [inputmethod.Instance] and its paired
// [inputmethod.Local] handle. Instances are created on demand by the
// [Coordinator], which consumes host lifecycle notifications on a
// single worker goroutine in arrival order, and are never torn down.
// Client calls go through a [CallRouter] (and host-internal calls
// through a [LocalRouter]): the router resolves the caller's identity
// from the request context, looks up the owning user's instance and
// forwards the call synchronously. A call for a user with no instance
// fails fast with [ErrUnregisteredUser]; the call path never creates
// instances.
//
// When multi-user mode is disabled, [Build] constructs no registry or
// coordinator. A single [inputmethod.LegacyInstance] serves every
// user and receives every lifecycle notification directly.
package multiuser
