// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by the
// router's socket protocols.
//
// Both sockets the router serves (the client socket carrying forwarded
// input method calls and the host socket carrying lifecycle
// notifications and local control-plane calls) speak CBOR. Every
// package that touches those protocols encodes through this package so
// that encoder and decoder options are configured in one place.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which keeps protocol
// test fixtures stable.
//
// Buffer-oriented use (response payloads):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream-oriented use (socket connections):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tags
//
// Wire types in lib/imapi carry `json` tags. fxamacker/cbor v2 reads
// `json` tags when `cbor` tags are absent, so the same struct can be
// printed as JSON by the CLI (--json) and sent as CBOR on the socket.
// Types that only ever travel as CBOR (the socket envelope) use `cbor`
// tags. Never put both tags on one field.
package codec
