// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// The router only ever reads the time: instance start timestamps,
// lifecycle handling latency, and daemon uptime. Components take a
// Clock instead of calling time.Now so tests can pin timestamps:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	instance := memory.New(user, catalog, memory.Options{Clock: c})
//	c.Advance(5 * time.Second)
package clock
