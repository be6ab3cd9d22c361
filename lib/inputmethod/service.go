// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inputmethod

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/imrouter/lib/clock"
)

// Service is the client-facing operation set of one per-user input
// method service. Every method receives the resolved Caller. Methods
// with a target parameter are scoped to that user explicitly; the
// router has already routed the call to target's instance.
type Service interface {
	AddClient(ctx context.Context, caller Caller, client ClientID, display DisplayID) error
	RemoveClient(ctx context.Context, caller Caller, client ClientID) error

	GetInputMethodList(ctx context.Context, caller Caller, target UserID) ([]InputMethodInfo, error)
	GetEnabledInputMethodList(ctx context.Context, caller Caller, target UserID) ([]InputMethodInfo, error)
	GetEnabledInputMethodSubtypeList(ctx context.Context, caller Caller, method MethodID, allowImplicit bool) ([]Subtype, error)
	GetLastInputMethodSubtype(ctx context.Context, caller Caller) (*Subtype, error)
	GetCurrentInputMethodSubtype(ctx context.Context, caller Caller) (*Subtype, error)
	GetCurrentInputMethodInfoAsUser(ctx context.Context, caller Caller, target UserID) (*InputMethodInfo, error)
	SetAdditionalInputMethodSubtypes(ctx context.Context, caller Caller, method MethodID, subtypes []Subtype) error

	ShowSoftInput(ctx context.Context, caller Caller, request SoftInputRequest) (bool, error)
	HideSoftInput(ctx context.Context, caller Caller, request SoftInputRequest) (bool, error)
	StartInputOrWindowGainedFocus(ctx context.Context, caller Caller, request StartInputRequest) (InputBindResult, error)

	ShowInputMethodPickerFromClient(ctx context.Context, caller Caller, client ClientID, auxiliaryMode int32) error
	ShowInputMethodPickerFromSystem(ctx context.Context, caller Caller, client ClientID, auxiliaryMode int32, display DisplayID) error
	ShowInputMethodAndSubtypeEnablerFromClient(ctx context.Context, caller Caller, client ClientID, method MethodID) error
	IsInputMethodPickerShownForTest(ctx context.Context, caller Caller) (bool, error)

	GetInputMethodWindowVisibleHeight(ctx context.Context, caller Caller, client ClientID) (int32, error)
	ReportPerceptible(ctx context.Context, caller Caller, window WindowToken, perceptible bool) error
	RemoveImeSurface(ctx context.Context, caller Caller) error
	RemoveImeSurfaceFromWindow(ctx context.Context, caller Caller, window WindowToken) error

	StartProtoDump(ctx context.Context, caller Caller, data []byte, source int32, where string) error
	IsImeTraceEnabled(ctx context.Context, caller Caller) (bool, error)
	StartImeTrace(ctx context.Context, caller Caller) error
	StopImeTrace(ctx context.Context, caller Caller) error

	StartStylusHandwriting(ctx context.Context, caller Caller, client ClientID) error
	IsStylusHandwritingAvailableAsUser(ctx context.Context, caller Caller, target UserID) (bool, error)
	AddVirtualStylusIDForTestSession(ctx context.Context, caller Caller, client ClientID) error
	SetStylusWindowIdleTimeoutForTest(ctx context.Context, caller Caller, client ClientID, timeout time.Duration) error

	ShouldOfferSwitchingToNextInputMethod(ctx context.Context, caller Caller, window WindowToken) (bool, error)
}

// Local is the narrower control-plane handle for host-internal calls
// (power, window manager, autofill) that still need per-user routing.
type Local interface {
	SetInteractive(ctx context.Context, caller Caller, interactive bool) error
	HideCurrentInputMethod(ctx context.Context, caller Caller, reason int32) error
	GetInputMethodListAsUser(ctx context.Context, caller Caller, target UserID) ([]InputMethodInfo, error)
	GetEnabledInputMethodListAsUser(ctx context.Context, caller Caller, target UserID) ([]InputMethodInfo, error)
	SwitchToInputMethod(ctx context.Context, caller Caller, method MethodID, target UserID) (bool, error)
	SetInputMethodEnabled(ctx context.Context, caller Caller, method MethodID, enabled bool, target UserID) (bool, error)
	ReportImeControl(ctx context.Context, caller Caller, window WindowToken) error
	ReportImeWindowVisibility(ctx context.Context, caller Caller, window WindowToken, visible bool) error
	IsImeWindowVisible(ctx context.Context, caller Caller) (bool, error)
	OnImeParentChanged(ctx context.Context, caller Caller) error
	RemoveImeSurface(ctx context.Context, caller Caller) error
	UpdateImeWindowStatus(ctx context.Context, caller Caller, disableIcon bool) error
	TransferTouchFocusToImeWindow(ctx context.Context, caller Caller, source WindowToken, display DisplayID) (bool, error)
	MaybeFinishStylusHandwriting(ctx context.Context, caller Caller) error
}

// Instance is one user's isolated input method service as the router
// sees it: the forwarded operations plus the lifecycle hooks the router
// drives.
type Instance interface {
	Service

	// Start transitions a freshly constructed instance to running.
	// Called exactly once, by the goroutine that constructed it.
	Start(ctx context.Context) error

	// ScheduleUserSwitch asks the instance to prepare for user. prior
	// is the client that held input focus before the switch, or nil
	// for an initial start.
	ScheduleUserSwitch(ctx context.Context, user UserID, prior *ClientID) error

	// NotifySystemUnlocked reports that user's credential-encrypted
	// storage is available.
	NotifySystemUnlocked(ctx context.Context, user UserID) error

	// Local returns the control-plane handle paired with this
	// instance. It must return the same value on every call.
	Local() Local

	// Snapshot reports current state for diagnostics.
	Snapshot() Snapshot
}

// Lifecycle is the host notification surface. Implementations must
// return promptly: the host delivers these on its own dispatch
// goroutine.
type Lifecycle interface {
	OnBootPhase(ctx context.Context, phase BootPhase)
	OnUserStarting(ctx context.Context, user UserID)
	OnUserUnlocking(ctx context.Context, user UserID)
	OnUserSwitching(ctx context.Context, from, to UserID)
	OnUserStopping(ctx context.Context, user UserID)
}

// LegacyInstance is a single unmultiplexed service that handles every
// user itself and consumes lifecycle notifications directly.
type LegacyInstance interface {
	Instance
	Lifecycle
}

// HostContext carries the process-scoped collaborators handed to every
// constructed instance.
type HostContext struct {
	Logger *slog.Logger
	Clock  clock.Clock
}

// Factory constructs per-user instances. NewInstance must not start
// the instance and must not block on other instances.
type Factory interface {
	NewInstance(ctx context.Context, host HostContext, user UserID) (Instance, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, host HostContext, user UserID) (Instance, error)

// NewInstance calls f.
func (f FactoryFunc) NewInstance(ctx context.Context, host HostContext, user UserID) (Instance, error) {
	return f(ctx, host, user)
}
