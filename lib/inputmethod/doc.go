// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inputmethod defines the boundary between the router and the
// per-user input method service it dispatches to.
//
// The router treats a per-user service as opaque. It needs to know how
// to construct one ([Factory]), how to drive its lifecycle
// ([Instance].Start, ScheduleUserSwitch, NotifySystemUnlocked), and the
// set of operations it forwards ([Service] for client calls, [Local]
// for host-internal control-plane calls). Everything else about how a
// service tracks clients, windows, and subtypes lives behind these
// interfaces. Package memory provides the reference implementation.
//
// # Identity
//
// A [UserID] identifies one operating-system user session. Callers
// never supply their own UserID for routing: the transport derives a
// [Caller] from the connection's peer credentials ([UserIDForUID] maps
// a kernel UID into its user session), and every per-user operation
// receives that Caller explicitly. A handful of operations are scoped
// by an explicit target user (GetInputMethodList and friends); those
// take a separate target parameter, and the Caller is still passed for
// auditing.
//
// # Lifecycle
//
// [Lifecycle] is the notification surface consumed from the host:
// boot phases and user starting, unlocking, switching, and stopping.
// In multi-user mode the router implements it; in legacy mode a single
// [LegacyInstance] implements it directly.
package inputmethod
