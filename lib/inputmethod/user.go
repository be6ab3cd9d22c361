// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inputmethod

import (
	"fmt"
	"strconv"
)

// UserID identifies an operating-system user session. Valid values are
// non-negative.
type UserID int32

// UserSystem is the primordial system user. It exists from boot and
// commonly unlocks before (or without) a starting notification.
const UserSystem UserID = 0

// PerUserRange is the width of the kernel UID block assigned to each
// user session. UIDs [n*PerUserRange, (n+1)*PerUserRange) belong to
// user n.
const PerUserRange = 100000

// UserIDForUID returns the user session owning a kernel UID.
func UserIDForUID(uid uint32) UserID {
	return UserID(uid / PerUserRange)
}

// ParseUserID parses a decimal user ID. Negative values and values that
// do not fit in 31 bits are rejected.
func ParseUserID(raw string) (UserID, error) {
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid user ID %q: must be non-negative", raw)
	}
	return UserID(value), nil
}

// Valid reports whether u is a usable user ID.
func (u UserID) Valid() bool { return u >= 0 }

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// Caller is the resolved identity of whoever issued a call. The router
// resolves it once at its boundary and passes it to every per-user
// operation.
type Caller struct {
	// UID is the kernel user ID of the calling process.
	UID uint32
	// PID is the calling process ID, zero when the transport cannot
	// supply one.
	PID int32
	// User is the user session the UID belongs to.
	User UserID
}

// CallerForUID builds a Caller from a kernel UID and PID.
func CallerForUID(uid uint32, pid int32) Caller {
	return Caller{UID: uid, PID: pid, User: UserIDForUID(uid)}
}
