// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import "errors"

var (
	// ErrUnknownClient is returned for operations naming a client that
	// was never added (or was removed).
	ErrUnknownClient = errors.New("unknown input method client")

	// ErrUnknownMethod is returned for operations naming a method that
	// is not in the catalog.
	ErrUnknownMethod = errors.New("unknown input method")

	// ErrNotStarted is returned by lifecycle operations issued before
	// Start.
	ErrNotStarted = errors.New("instance not started")

	// ErrAlreadyStarted is returned by a second Start call.
	ErrAlreadyStarted = errors.New("instance already started")

	// ErrHandwritingUnavailable is returned by StartStylusHandwriting
	// when the client is not focused or the current method has no
	// stylus support.
	ErrHandwritingUnavailable = errors.New("stylus handwriting unavailable")
)
