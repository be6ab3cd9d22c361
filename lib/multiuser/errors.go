// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// ErrUnregisteredUser is matched (via errors.Is) by every failure
// caused by a call for a user that has no registered instance.
var ErrUnregisteredUser = errors.New("no input method instance registered for user")

// UnregisteredUserError reports which user and operation failed the
// registry lookup.
type UnregisteredUserError struct {
	User      inputmethod.UserID
	Operation string
}

func (e *UnregisteredUserError) Error() string {
	return fmt.Sprintf("%s: no input method instance registered for user %d", e.Operation, e.User)
}

// Is makes errors.Is(err, ErrUnregisteredUser) true.
func (e *UnregisteredUserError) Is(target error) bool {
	return target == ErrUnregisteredUser
}
