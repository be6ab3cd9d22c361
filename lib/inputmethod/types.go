// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inputmethod

import "time"

// ClientID identifies an input method client (an application process
// connection that hosts editable views).
type ClientID string

// WindowToken identifies an application window.
type WindowToken string

// MethodID identifies an installed input method, in
// "package/.Component" form.
type MethodID string

// DisplayID identifies a logical display.
type DisplayID int32

// DefaultDisplay is the built-in display.
const DefaultDisplay DisplayID = 0

// Subtype describes one language/mode variant of an input method.
type Subtype struct {
	// ID is unique within the owning input method.
	ID int32 `json:"id"`
	// Locale is a BCP 47 language tag ("en-US", "ja-JP").
	Locale string `json:"locale"`
	// Mode is "keyboard", "voice", or "handwriting".
	Mode string `json:"mode"`
	// Auxiliary subtypes are never selected implicitly and are only
	// listed when the caller asks for them.
	Auxiliary bool `json:"auxiliary,omitempty"`
	// ImplicitlySelected subtypes are enabled without user action when
	// the input method itself is enabled.
	ImplicitlySelected bool `json:"implicitly_selected,omitempty"`
	// Additional marks a subtype registered at runtime through
	// SetAdditionalInputMethodSubtypes rather than shipped in the
	// catalog.
	Additional bool `json:"additional,omitempty"`
}

// InputMethodInfo describes an installed input method.
type InputMethodInfo struct {
	ID                   MethodID  `json:"id"`
	Label                string    `json:"label"`
	Subtypes             []Subtype `json:"subtypes,omitempty"`
	DefaultSubtypeID     int32     `json:"default_subtype_id"`
	SupportsStylus       bool      `json:"supports_stylus,omitempty"`
	SupportsSwitchingKey bool      `json:"supports_switching_key,omitempty"`
	// System methods are enabled by default for every new user.
	System bool `json:"system,omitempty"`
}

// EditorInfo carries the attributes of the focused text editor.
type EditorInfo struct {
	InputType   int32  `json:"input_type"`
	ImeOptions  int32  `json:"ime_options"`
	PackageName string `json:"package_name"`
	FieldID     int32  `json:"field_id"`
}

// SoftInputRequest is the shared parameter block for ShowSoftInput and
// HideSoftInput.
type SoftInputRequest struct {
	Client ClientID    `json:"client"`
	Window WindowToken `json:"window"`
	Flags  int32       `json:"flags"`
	Reason int32       `json:"reason"`
}

// StartInputReason explains why StartInputOrWindowGainedFocus was
// called.
type StartInputReason int32

const (
	StartInputReasonUnspecified StartInputReason = iota
	StartInputReasonWindowFocusGain
	StartInputReasonWindowFocusGainReportOnly
	StartInputReasonAppCalledRestartInput
	StartInputReasonCheckFocus
)

// StartInputRequest carries the arguments of
// StartInputOrWindowGainedFocus.
type StartInputRequest struct {
	Reason         StartInputReason `json:"reason"`
	Client         ClientID         `json:"client"`
	Window         WindowToken      `json:"window"`
	StartFlags     int32            `json:"start_flags"`
	SoftInputMode  int32            `json:"soft_input_mode"`
	WindowFlags    int32            `json:"window_flags"`
	Editor         *EditorInfo      `json:"editor,omitempty"`
	MissingMethods int32            `json:"missing_methods"`
	TargetSDK      int32            `json:"target_sdk"`
}

// BindResult is the outcome code of an input binding attempt.
type BindResult int32

const (
	BindSuccessWithSession BindResult = iota
	BindSuccessWaitingBind
	BindSuccessReportWindowFocusOnly
	BindErrorNoIME
	BindErrorInvalidClient
	BindErrorNotFocused
)

// InputBindResult is returned by StartInputOrWindowGainedFocus.
type InputBindResult struct {
	Result    BindResult `json:"result"`
	SessionID string     `json:"session_id,omitempty"`
	Method    MethodID   `json:"method,omitempty"`
	Sequence  int64      `json:"sequence"`
}

// BootPhase is a host boot milestone.
type BootPhase int32

const (
	PhaseWaitForDefaultDisplay  BootPhase = 100
	PhaseLockSettingsReady      BootPhase = 480
	PhaseSystemServicesReady    BootPhase = 500
	PhaseActivityManagerReady   BootPhase = 550
	PhaseThirdPartyAppsCanStart BootPhase = 600
	PhaseBootCompleted          BootPhase = 1000
)

// Hide reasons passed to Local.HideCurrentInputMethod.
const (
	HideReasonPowerButton int32 = iota + 1
	HideReasonDockedStackAttached
	HideReasonRecentsAnimation
	HideReasonBubbleShown
)

// Snapshot is a read-only view of a per-user service's state, used by
// the router's status reporting.
type Snapshot struct {
	User           UserID    `json:"user"`
	StartedAt      time.Time `json:"started_at"`
	Clients        int       `json:"clients"`
	CurrentMethod  MethodID  `json:"current_method,omitempty"`
	SoftInputShown bool      `json:"soft_input_shown"`
	Interactive    bool      `json:"interactive"`
	Tracing        bool      `json:"tracing"`
	Unlocked       bool      `json:"unlocked"`
}
