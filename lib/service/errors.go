// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import "errors"

// Error codes set by the server itself.
const (
	// CodeUnknownAction marks a request for an action with no handler.
	CodeUnknownAction = "unknown_action"
)

// codedError attaches a response code to an error.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// WithCode returns err tagged with code. The server copies the code of
// the outermost tagged error into the response envelope. A nil err
// returns nil.
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ErrorCode returns the code attached to err by WithCode, or "".
func ErrorCode(err error) string {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return ""
}
