// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/service"
)

// Client is a typed client for either router socket. Operations from
// the other socket's surface fail with an unknown-action error.
type Client struct {
	service *service.ServiceClient
}

// NewClient creates a client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{service: service.NewServiceClient(socketPath)}
}

// Call issues a raw request. fields must not contain "action".
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	return c.call(ctx, action, fields, result)
}

func (c *Client) call(ctx context.Context, action string, fields map[string]any, result any) error {
	err := c.service.Call(ctx, action, fields, result)
	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Code == CodeUnregisteredUser {
		return fmt.Errorf("%w: %w", multiuser.ErrUnregisteredUser, serviceErr)
	}
	return err
}

// Status fetches router status from the client socket.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.call(ctx, ActionStatus, nil, &status)
	return status, err
}

// BootPhase delivers a boot phase notification on the host socket.
func (c *Client) BootPhase(ctx context.Context, phase inputmethod.BootPhase) error {
	return c.call(ctx, ActionHostBootPhase, map[string]any{"phase": phase}, nil)
}

// UserStarting delivers a user-starting notification on the host
// socket.
func (c *Client) UserStarting(ctx context.Context, user inputmethod.UserID) error {
	return c.call(ctx, ActionHostUserStarting, map[string]any{"user": user}, nil)
}

// UserUnlocking delivers a user-unlocking notification on the host
// socket.
func (c *Client) UserUnlocking(ctx context.Context, user inputmethod.UserID) error {
	return c.call(ctx, ActionHostUserUnlocking, map[string]any{"user": user}, nil)
}

// UserSwitching delivers a user-switching notification on the host
// socket.
func (c *Client) UserSwitching(ctx context.Context, from, to inputmethod.UserID) error {
	return c.call(ctx, ActionHostUserSwitching, map[string]any{"from_user": from, "to_user": to}, nil)
}

// UserStopping delivers a user-stopping notification on the host
// socket.
func (c *Client) UserStopping(ctx context.Context, user inputmethod.UserID) error {
	return c.call(ctx, ActionHostUserStopping, map[string]any{"user": user}, nil)
}

// Sync waits on the host socket until delivered lifecycle
// notifications have been processed.
func (c *Client) Sync(ctx context.Context) error {
	return c.call(ctx, ActionHostSync, nil, nil)
}
