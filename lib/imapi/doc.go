// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imapi is the socket API of the input method router.
//
// The daemon serves two sockets. The client socket carries the
// forwarded input method operations (registered by [RegisterClient])
// and ActionStatus. The host socket carries lifecycle notifications and
// the Local control plane (registered by [RegisterHost]). Both use the
// one-request-per-connection CBOR protocol of lib/service.
//
// Every request decodes into [Request]; each action reads the fields it
// needs. Value results are wrapped in [Result]. Requests never carry
// caller identity: [PeerResolver] derives it from the connection's
// kernel credentials.
//
// A call for a user with no registered instance fails with code
// [CodeUnregisteredUser]; [Client] turns that back into an error
// matching multiuser.ErrUnregisteredUser.
package imapi
