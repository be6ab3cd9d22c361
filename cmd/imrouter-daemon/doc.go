// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Imrouter-daemon hosts the input method service. Depending on
// router.multi_user it either routes every call to an isolated
// per-user instance or serves all users from a single legacy instance.
//
// The daemon listens on two Unix sockets:
//
//   - The client socket (mode 0666) serves input method client
//     operations. Callers are identified by the kernel-reported
//     credentials of their connection; the user is derived from the
//     UID.
//   - The host socket (mode 0600) serves lifecycle notifications (boot
//     phase, user starting/unlocking/switching/stopping) and the local
//     control-plane operations used by other host services.
//
// On startup:
//  1. Loads configuration from --config or IMROUTER_CONFIG.
//  2. Loads the input method catalog.
//  3. Builds the router for the configured mode and starts the
//     lifecycle worker.
//  4. Serves both sockets and, when metrics.listen_address is set, a
//     Prometheus /metrics endpoint.
//
// On SIGINT or SIGTERM the sockets stop accepting connections, queued
// lifecycle notifications are drained, and the worker exits.
package main
