// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imapi

// Client socket actions. Each forwards to the CallRouter operation of
// the same name.
const (
	ActionAddClient                                  = "add_client"
	ActionRemoveClient                               = "remove_client"
	ActionGetInputMethodList                         = "get_input_method_list"
	ActionGetEnabledInputMethodList                  = "get_enabled_input_method_list"
	ActionGetEnabledInputMethodSubtypeList           = "get_enabled_input_method_subtype_list"
	ActionGetLastInputMethodSubtype                  = "get_last_input_method_subtype"
	ActionGetCurrentInputMethodSubtype               = "get_current_input_method_subtype"
	ActionGetCurrentInputMethodInfoAsUser            = "get_current_input_method_info_as_user"
	ActionSetAdditionalInputMethodSubtypes           = "set_additional_input_method_subtypes"
	ActionShowSoftInput                              = "show_soft_input"
	ActionHideSoftInput                              = "hide_soft_input"
	ActionStartInputOrWindowGainedFocus              = "start_input_or_window_gained_focus"
	ActionShowInputMethodPickerFromClient            = "show_input_method_picker_from_client"
	ActionShowInputMethodPickerFromSystem            = "show_input_method_picker_from_system"
	ActionShowInputMethodAndSubtypeEnablerFromClient = "show_input_method_and_subtype_enabler_from_client"
	ActionIsInputMethodPickerShownForTest            = "is_input_method_picker_shown_for_test"
	ActionGetInputMethodWindowVisibleHeight          = "get_input_method_window_visible_height"
	ActionReportPerceptible                          = "report_perceptible"
	ActionRemoveImeSurface                           = "remove_ime_surface"
	ActionRemoveImeSurfaceFromWindow                 = "remove_ime_surface_from_window"
	ActionStartProtoDump                             = "start_proto_dump"
	ActionIsImeTraceEnabled                          = "is_ime_trace_enabled"
	ActionStartImeTrace                              = "start_ime_trace"
	ActionStopImeTrace                               = "stop_ime_trace"
	ActionStartStylusHandwriting                     = "start_stylus_handwriting"
	ActionIsStylusHandwritingAvailableAsUser         = "is_stylus_handwriting_available_as_user"
	ActionAddVirtualStylusIDForTestSession           = "add_virtual_stylus_id_for_test_session"
	ActionSetStylusWindowIdleTimeoutForTest          = "set_stylus_window_idle_timeout_for_test"
	ActionShouldOfferSwitchingToNextInputMethod      = "should_offer_switching_to_next_input_method"

	// ActionStatus reports router state. It is served by the daemon,
	// not by any per-user instance.
	ActionStatus = "status"
)

// Host socket actions: the lifecycle notification surface plus the
// Local control plane. Local actions carry a "local_" prefix.
const (
	ActionHostBootPhase     = "host_boot_phase"
	ActionHostUserStarting  = "host_user_starting"
	ActionHostUserUnlocking = "host_user_unlocking"
	ActionHostUserSwitching = "host_user_switching"
	ActionHostUserStopping  = "host_user_stopping"

	// ActionHostSync waits until every previously delivered lifecycle
	// notification has been processed.
	ActionHostSync = "host_sync"

	ActionLocalSetInteractive                  = "local_set_interactive"
	ActionLocalHideCurrentInputMethod          = "local_hide_current_input_method"
	ActionLocalGetInputMethodListAsUser        = "local_get_input_method_list_as_user"
	ActionLocalGetEnabledInputMethodListAsUser = "local_get_enabled_input_method_list_as_user"
	ActionLocalSwitchToInputMethod             = "local_switch_to_input_method"
	ActionLocalSetInputMethodEnabled           = "local_set_input_method_enabled"
	ActionLocalReportImeControl                = "local_report_ime_control"
	ActionLocalReportImeWindowVisibility       = "local_report_ime_window_visibility"
	ActionLocalIsImeWindowVisible              = "local_is_ime_window_visible"
	ActionLocalOnImeParentChanged              = "local_on_ime_parent_changed"
	ActionLocalRemoveImeSurface                = "local_remove_ime_surface"
	ActionLocalUpdateImeWindowStatus           = "local_update_ime_window_status"
	ActionLocalTransferTouchFocusToImeWindow   = "local_transfer_touch_focus_to_ime_window"
	ActionLocalMaybeFinishStylusHandwriting    = "local_maybe_finish_stylus_handwriting"
)
