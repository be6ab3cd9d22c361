// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the imrouter
// binaries. It centralizes the one legitimate raw I/O pattern that
// exists before the structured logger: fatal error reporting to
// stderr, followed by process exit, in main().
package process
