// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Imrouter is the command-line client for imrouter-daemon.
//
//	imrouter status [--json]
//	imrouter call <action> [key=value ...] [--raw]
//	imrouter host <event> [args ...]
//
// status and call talk to the client socket, so the daemon resolves the
// invoking user from the connection's credentials exactly as it would
// for an application. host talks to the owner-only host socket and
// delivers lifecycle notifications (boot-phase, starting, unlocking,
// switching, stopping, sync) or local control-plane actions.
//
// call values are typed by shape: integers, true/false, and JSON
// objects or arrays are sent as such; everything else is a string.
package main
