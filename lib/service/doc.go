// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the Unix socket transport shared by the
// router daemon and its clients.
//
// The protocol is one CBOR request and one CBOR response per
// connection. A request is a CBOR map with an "action" field plus
// action-specific fields; a response is the [Response] envelope.
// [SocketServer] dispatches requests to registered [ActionFunc]
// handlers and [ServiceClient] issues them.
//
// # Caller identity
//
// The server never trusts identity fields in a request. For every
// accepted connection it reads the kernel-verified credentials of the
// connecting process (SO_PEERCRED) and stores them in the handler's
// context, retrievable with [PeerFromContext]. Connections whose
// credentials cannot be read are served without a [Peer]; handlers that
// need identity must reject them.
//
// # Error codes
//
// Handler errors become {ok: false, error: "..."} responses. An error
// wrapped with [WithCode] also sets the envelope's "code" field, which
// the client surfaces as [ServiceError.Code] so callers can match
// failures without parsing messages.
package service
