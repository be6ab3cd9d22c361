// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/imrouter/lib/codec"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/service"
)

// Error codes carried in the response envelope.
const (
	// CodeUnregisteredUser marks calls for a user with no instance.
	CodeUnregisteredUser = "unregistered_user"
	// CodeUnauthenticated marks connections whose caller identity
	// could not be determined.
	CodeUnauthenticated = "unauthenticated"
	// CodeInvalidRequest marks malformed or incomplete requests.
	CodeInvalidRequest = "invalid_request"
)

// Request is the decoded form of every request. Fields not used by an
// action are ignored.
type Request struct {
	Action string `cbor:"action"`

	Client        inputmethod.ClientID           `cbor:"client,omitempty"`
	Display       inputmethod.DisplayID          `cbor:"display,omitempty"`
	TargetUser    *inputmethod.UserID            `cbor:"target_user,omitempty"`
	Method        inputmethod.MethodID           `cbor:"method,omitempty"`
	AllowImplicit bool                           `cbor:"allow_implicit,omitempty"`
	Subtypes      []inputmethod.Subtype          `cbor:"subtypes,omitempty"`
	SoftInput     *inputmethod.SoftInputRequest  `cbor:"soft_input,omitempty"`
	StartInput    *inputmethod.StartInputRequest `cbor:"start_input,omitempty"`
	AuxiliaryMode int32                          `cbor:"auxiliary_mode,omitempty"`
	Window        inputmethod.WindowToken        `cbor:"window,omitempty"`
	Perceptible   bool                           `cbor:"perceptible,omitempty"`
	Data          []byte                         `cbor:"data,omitempty"`
	Source        int32                          `cbor:"source,omitempty"`
	Where         string                         `cbor:"where,omitempty"`
	TimeoutMillis int64                          `cbor:"timeout_ms,omitempty"`

	Interactive bool  `cbor:"interactive,omitempty"`
	Reason      int32 `cbor:"reason,omitempty"`
	Enabled     bool  `cbor:"enabled,omitempty"`
	Visible     bool  `cbor:"visible,omitempty"`
	DisableIcon bool  `cbor:"disable_icon,omitempty"`

	Phase    *inputmethod.BootPhase `cbor:"phase,omitempty"`
	User     *inputmethod.UserID    `cbor:"user,omitempty"`
	FromUser *inputmethod.UserID    `cbor:"from_user,omitempty"`
	ToUser   *inputmethod.UserID    `cbor:"to_user,omitempty"`
}

func (r Request) targetUser() (inputmethod.UserID, error) {
	if r.TargetUser == nil {
		return 0, missingField("target_user")
	}
	return *r.TargetUser, nil
}

func (r Request) user() (inputmethod.UserID, error) {
	if r.User == nil {
		return 0, missingField("user")
	}
	return *r.User, nil
}

func (r Request) softInput() (inputmethod.SoftInputRequest, error) {
	if r.SoftInput == nil {
		return inputmethod.SoftInputRequest{}, missingField("soft_input")
	}
	return *r.SoftInput, nil
}

func (r Request) startInput() (inputmethod.StartInputRequest, error) {
	if r.StartInput == nil {
		return inputmethod.StartInputRequest{}, missingField("start_input")
	}
	return *r.StartInput, nil
}

func (r Request) timeout() time.Duration {
	return time.Duration(r.TimeoutMillis) * time.Millisecond
}

func missingField(name string) error {
	return service.WithCode(fmt.Errorf("missing required field: %s", name), CodeInvalidRequest)
}

// Result wraps a single return value.
type Result[T any] struct {
	Value T `cbor:"value"`
}

// Status is the response to ActionStatus.
type Status struct {
	Mode             string                 `cbor:"mode" json:"mode"`
	Version          string                 `cbor:"version" json:"version"`
	StartedAt        time.Time              `cbor:"started_at" json:"started_at"`
	UptimeSeconds    int64                  `cbor:"uptime_seconds" json:"uptime_seconds"`
	CatalogDigest    string                 `cbor:"catalog_digest" json:"catalog_digest"`
	CatalogMethods   int                    `cbor:"catalog_methods" json:"catalog_methods"`
	PendingLifecycle int                    `cbor:"pending_lifecycle" json:"pending_lifecycle"`
	Users            []inputmethod.Snapshot `cbor:"users" json:"users"`
}

// handle registers fn for action, decoding the request and tagging
// errors with response codes.
func handle(server *service.SocketServer, action string, fn func(ctx context.Context, request Request) (any, error)) {
	server.Handle(action, func(ctx context.Context, raw []byte) (any, error) {
		var request Request
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, service.WithCode(fmt.Errorf("decoding %s request: %w", action, err), CodeInvalidRequest)
		}
		result, err := fn(ctx, request)
		if err != nil {
			return nil, classify(err)
		}
		return result, nil
	})
}

// classify attaches the response code matching err, unless err already
// carries one.
func classify(err error) error {
	if service.ErrorCode(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, multiuser.ErrUnregisteredUser):
		return service.WithCode(err, CodeUnregisteredUser)
	case errors.Is(err, service.ErrNoPeer), errors.Is(err, multiuser.ErrNoCaller):
		return service.WithCode(err, CodeUnauthenticated)
	}
	return err
}

// PeerResolver resolves the caller from the connection credentials the
// socket server stores in the request context.
var PeerResolver multiuser.CallerResolver = multiuser.CallerResolverFunc(func(ctx context.Context) (inputmethod.Caller, error) {
	peer, err := service.RequirePeer(ctx)
	if err != nil {
		return inputmethod.Caller{}, err
	}
	return inputmethod.CallerForUID(peer.UID, peer.PID), nil
})
