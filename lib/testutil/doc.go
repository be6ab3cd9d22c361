// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for imrouter packages.
//
// [SocketDir] creates a short temporary directory in /tmp for Unix
// domain sockets, whose paths are limited to 108 bytes (sun_path).
// t.TempDir() paths can exceed that under deeply nested test roots.
//
// [RequireReceive], [RequireSend], and [RequireClosed] bound channel
// operations with a wall-clock timeout so a broken worker fails the
// test instead of hanging it. They are the only place tests use real
// timeouts.
//
// [WriteFile] writes fixture files (configuration, catalogs) into a
// test-scoped directory. [UniqueID] generates distinct identifiers
// such as client and window tokens.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no imrouter-internal dependencies.
package testutil
