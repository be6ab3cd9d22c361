// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory is a process-local implementation of a per-user input
// method service. It keeps client registrations, focus binding,
// soft-input visibility, the selected method and subtype, tracing and
// stylus state in memory behind one mutex per instance.
//
// It exists so the router daemon can run without a real input method
// backend and so router tests can exercise full dispatch paths. It is
// deliberately simple: there is no window manager behind it, "showing"
// the soft input only flips state, and visible heights are a fixed
// configurable value.
//
// [New] builds a per-user instance for multi-user mode. [NewLegacy]
// builds the single instance used in legacy fallback mode, which also
// consumes lifecycle notifications and tracks the foreground user.
package memory
