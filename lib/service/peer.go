// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
)

// ErrNoPeer is returned when a request context carries no peer
// credentials.
var ErrNoPeer = errors.New("no peer credentials for connection")

// Peer holds the kernel-reported credentials of the process on the
// other end of a connection.
type Peer struct {
	UID uint32
	GID uint32
	PID int32
}

type peerKey struct{}

// WithPeer returns a context carrying peer.
func WithPeer(ctx context.Context, peer Peer) context.Context {
	return context.WithValue(ctx, peerKey{}, peer)
}

// PeerFromContext returns the peer stored by the server (or WithPeer).
func PeerFromContext(ctx context.Context) (Peer, bool) {
	peer, ok := ctx.Value(peerKey{}).(Peer)
	return peer, ok
}

// RequirePeer is PeerFromContext with ErrNoPeer for the absent case.
func RequirePeer(ctx context.Context) (Peer, error) {
	peer, ok := PeerFromContext(ctx)
	if !ok {
		return Peer{}, ErrNoPeer
	}
	return peer, nil
}
