// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"errors"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// ErrNoCaller is returned by ContextResolver when the context carries
// no caller identity.
var ErrNoCaller = errors.New("no caller identity in context")

// CallerResolver derives the identity of whoever issued the call
// carried by ctx. Routers resolve once per call and never consult
// request fields for identity.
type CallerResolver interface {
	ResolveCaller(ctx context.Context) (inputmethod.Caller, error)
}

// CallerResolverFunc adapts a function to CallerResolver.
type CallerResolverFunc func(ctx context.Context) (inputmethod.Caller, error)

// ResolveCaller calls f.
func (f CallerResolverFunc) ResolveCaller(ctx context.Context) (inputmethod.Caller, error) {
	return f(ctx)
}

type callerKey struct{}

// WithCaller returns a context carrying caller. In-process hosts use
// it with ContextResolver.
func WithCaller(ctx context.Context, caller inputmethod.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (inputmethod.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(inputmethod.Caller)
	return caller, ok
}

// ContextResolver resolves the caller stored by WithCaller.
var ContextResolver CallerResolver = CallerResolverFunc(func(ctx context.Context) (inputmethod.Caller, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return inputmethod.Caller{}, ErrNoCaller
	}
	return caller, nil
})
