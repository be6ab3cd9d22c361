// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// peerCredentials reads SO_PEERCRED from a Unix socket connection.
func peerCredentials(conn net.Conn) (Peer, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return Peer{}, fmt.Errorf("connection is %T, not a Unix socket", conn)
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		return Peer{}, fmt.Errorf("accessing socket descriptor: %w", err)
	}

	var (
		ucred    *unix.Ucred
		ucredErr error
	)
	if err := raw.Control(func(fd uintptr) {
		ucred, ucredErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return Peer{}, fmt.Errorf("accessing socket descriptor: %w", err)
	}
	if ucredErr != nil {
		return Peer{}, fmt.Errorf("reading SO_PEERCRED: %w", ucredErr)
	}
	return Peer{UID: ucred.Uid, GID: ucred.Gid, PID: ucred.Pid}, nil
}
