// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// CallRouter is the client-facing entry point. Each method resolves the
// caller from ctx, looks up the owning user's instance (the caller's
// own user, or target for the explicitly user-scoped operations) and
// forwards synchronously on the calling goroutine. Results and errors
// from the instance are returned unchanged. A user with no instance
// yields an *UnregisteredUserError; the router never creates
// instances.
type CallRouter struct {
	d dispatcher[inputmethod.Instance]
}

// NewCallRouter creates a router that finds instances with lookup.
// Use Registry.Lookup in multi-user mode. metrics may be nil.
func NewCallRouter(resolver CallerResolver, lookup func(inputmethod.UserID) (inputmethod.Instance, error), logger *slog.Logger, metrics *Metrics) *CallRouter {
	return &CallRouter{d: dispatcher[inputmethod.Instance]{
		surface:  surfaceClient,
		resolver: resolver,
		lookup:   lookup,
		logger:   logger,
		metrics:  metrics,
	}}
}

// AddClient forwards to the caller's instance.
func (r *CallRouter) AddClient(ctx context.Context, client inputmethod.ClientID, display inputmethod.DisplayID) error {
	handle, caller, err := r.d.route(ctx, "add_client")
	if err != nil {
		return err
	}
	return r.d.finish("add_client", handle.AddClient(ctx, caller, client, display))
}

// RemoveClient forwards to the caller's instance.
func (r *CallRouter) RemoveClient(ctx context.Context, client inputmethod.ClientID) error {
	handle, caller, err := r.d.route(ctx, "remove_client")
	if err != nil {
		return err
	}
	return r.d.finish("remove_client", handle.RemoveClient(ctx, caller, client))
}

// GetInputMethodList routes to target's instance, not the caller's.
func (r *CallRouter) GetInputMethodList(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	handle, caller, err := r.d.routeAs(ctx, "get_input_method_list", target)
	if err != nil {
		return nil, err
	}
	result, err := handle.GetInputMethodList(ctx, caller, target)
	return result, r.d.finish("get_input_method_list", err)
}

// GetEnabledInputMethodList forwards to target's instance.
func (r *CallRouter) GetEnabledInputMethodList(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	handle, caller, err := r.d.routeAs(ctx, "get_enabled_input_method_list", target)
	if err != nil {
		return nil, err
	}
	result, err := handle.GetEnabledInputMethodList(ctx, caller, target)
	return result, r.d.finish("get_enabled_input_method_list", err)
}

// GetEnabledInputMethodSubtypeList forwards to the caller's instance.
func (r *CallRouter) GetEnabledInputMethodSubtypeList(ctx context.Context, method inputmethod.MethodID, allowImplicit bool) ([]inputmethod.Subtype, error) {
	handle, caller, err := r.d.route(ctx, "get_enabled_input_method_subtype_list")
	if err != nil {
		return nil, err
	}
	result, err := handle.GetEnabledInputMethodSubtypeList(ctx, caller, method, allowImplicit)
	return result, r.d.finish("get_enabled_input_method_subtype_list", err)
}

// GetLastInputMethodSubtype forwards to the caller's instance.
func (r *CallRouter) GetLastInputMethodSubtype(ctx context.Context) (*inputmethod.Subtype, error) {
	handle, caller, err := r.d.route(ctx, "get_last_input_method_subtype")
	if err != nil {
		return nil, err
	}
	result, err := handle.GetLastInputMethodSubtype(ctx, caller)
	return result, r.d.finish("get_last_input_method_subtype", err)
}

// GetCurrentInputMethodSubtype forwards to the caller's instance.
func (r *CallRouter) GetCurrentInputMethodSubtype(ctx context.Context) (*inputmethod.Subtype, error) {
	handle, caller, err := r.d.route(ctx, "get_current_input_method_subtype")
	if err != nil {
		return nil, err
	}
	result, err := handle.GetCurrentInputMethodSubtype(ctx, caller)
	return result, r.d.finish("get_current_input_method_subtype", err)
}

// GetCurrentInputMethodInfoAsUser forwards to target's instance.
func (r *CallRouter) GetCurrentInputMethodInfoAsUser(ctx context.Context, target inputmethod.UserID) (*inputmethod.InputMethodInfo, error) {
	handle, caller, err := r.d.routeAs(ctx, "get_current_input_method_info_as_user", target)
	if err != nil {
		return nil, err
	}
	result, err := handle.GetCurrentInputMethodInfoAsUser(ctx, caller, target)
	return result, r.d.finish("get_current_input_method_info_as_user", err)
}

// SetAdditionalInputMethodSubtypes forwards to the caller's instance.
func (r *CallRouter) SetAdditionalInputMethodSubtypes(ctx context.Context, method inputmethod.MethodID, subtypes []inputmethod.Subtype) error {
	handle, caller, err := r.d.route(ctx, "set_additional_input_method_subtypes")
	if err != nil {
		return err
	}
	return r.d.finish("set_additional_input_method_subtypes", handle.SetAdditionalInputMethodSubtypes(ctx, caller, method, subtypes))
}

// ShowSoftInput forwards to the caller's instance.
func (r *CallRouter) ShowSoftInput(ctx context.Context, request inputmethod.SoftInputRequest) (bool, error) {
	handle, caller, err := r.d.route(ctx, "show_soft_input")
	if err != nil {
		return false, err
	}
	result, err := handle.ShowSoftInput(ctx, caller, request)
	return result, r.d.finish("show_soft_input", err)
}

// HideSoftInput forwards to the caller's instance.
func (r *CallRouter) HideSoftInput(ctx context.Context, request inputmethod.SoftInputRequest) (bool, error) {
	handle, caller, err := r.d.route(ctx, "hide_soft_input")
	if err != nil {
		return false, err
	}
	result, err := handle.HideSoftInput(ctx, caller, request)
	return result, r.d.finish("hide_soft_input", err)
}

// StartInputOrWindowGainedFocus binds the caller's focused client to
// its user's current input method.
func (r *CallRouter) StartInputOrWindowGainedFocus(ctx context.Context, request inputmethod.StartInputRequest) (inputmethod.InputBindResult, error) {
	handle, caller, err := r.d.route(ctx, "start_input_or_window_gained_focus")
	if err != nil {
		return inputmethod.InputBindResult{}, err
	}
	result, err := handle.StartInputOrWindowGainedFocus(ctx, caller, request)
	return result, r.d.finish("start_input_or_window_gained_focus", err)
}

// ShowInputMethodPickerFromClient forwards to the caller's instance.
func (r *CallRouter) ShowInputMethodPickerFromClient(ctx context.Context, client inputmethod.ClientID, auxiliaryMode int32) error {
	handle, caller, err := r.d.route(ctx, "show_input_method_picker_from_client")
	if err != nil {
		return err
	}
	return r.d.finish("show_input_method_picker_from_client", handle.ShowInputMethodPickerFromClient(ctx, caller, client, auxiliaryMode))
}

// ShowInputMethodPickerFromSystem forwards to the caller's instance.
func (r *CallRouter) ShowInputMethodPickerFromSystem(ctx context.Context, client inputmethod.ClientID, auxiliaryMode int32, display inputmethod.DisplayID) error {
	handle, caller, err := r.d.route(ctx, "show_input_method_picker_from_system")
	if err != nil {
		return err
	}
	return r.d.finish("show_input_method_picker_from_system", handle.ShowInputMethodPickerFromSystem(ctx, caller, client, auxiliaryMode, display))
}

// ShowInputMethodAndSubtypeEnablerFromClient forwards to the caller's instance.
func (r *CallRouter) ShowInputMethodAndSubtypeEnablerFromClient(ctx context.Context, client inputmethod.ClientID, method inputmethod.MethodID) error {
	handle, caller, err := r.d.route(ctx, "show_input_method_and_subtype_enabler_from_client")
	if err != nil {
		return err
	}
	return r.d.finish("show_input_method_and_subtype_enabler_from_client", handle.ShowInputMethodAndSubtypeEnablerFromClient(ctx, caller, client, method))
}

// IsInputMethodPickerShownForTest forwards to the caller's instance.
func (r *CallRouter) IsInputMethodPickerShownForTest(ctx context.Context) (bool, error) {
	handle, caller, err := r.d.route(ctx, "is_input_method_picker_shown_for_test")
	if err != nil {
		return false, err
	}
	result, err := handle.IsInputMethodPickerShownForTest(ctx, caller)
	return result, r.d.finish("is_input_method_picker_shown_for_test", err)
}

// GetInputMethodWindowVisibleHeight forwards to the caller's instance.
func (r *CallRouter) GetInputMethodWindowVisibleHeight(ctx context.Context, client inputmethod.ClientID) (int32, error) {
	handle, caller, err := r.d.route(ctx, "get_input_method_window_visible_height")
	if err != nil {
		return 0, err
	}
	result, err := handle.GetInputMethodWindowVisibleHeight(ctx, caller, client)
	return result, r.d.finish("get_input_method_window_visible_height", err)
}

// ReportPerceptible forwards to the caller's instance.
func (r *CallRouter) ReportPerceptible(ctx context.Context, window inputmethod.WindowToken, perceptible bool) error {
	handle, caller, err := r.d.route(ctx, "report_perceptible")
	if err != nil {
		return err
	}
	return r.d.finish("report_perceptible", handle.ReportPerceptible(ctx, caller, window, perceptible))
}

// RemoveImeSurface forwards to the caller's instance.
func (r *CallRouter) RemoveImeSurface(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "remove_ime_surface")
	if err != nil {
		return err
	}
	return r.d.finish("remove_ime_surface", handle.RemoveImeSurface(ctx, caller))
}

// RemoveImeSurfaceFromWindow forwards to the caller's instance.
func (r *CallRouter) RemoveImeSurfaceFromWindow(ctx context.Context, window inputmethod.WindowToken) error {
	handle, caller, err := r.d.route(ctx, "remove_ime_surface_from_window")
	if err != nil {
		return err
	}
	return r.d.finish("remove_ime_surface_from_window", handle.RemoveImeSurfaceFromWindow(ctx, caller, window))
}

// StartProtoDump forwards to the caller's instance.
func (r *CallRouter) StartProtoDump(ctx context.Context, data []byte, source int32, where string) error {
	handle, caller, err := r.d.route(ctx, "start_proto_dump")
	if err != nil {
		return err
	}
	return r.d.finish("start_proto_dump", handle.StartProtoDump(ctx, caller, data, source, where))
}

// IsImeTraceEnabled forwards to the caller's instance.
func (r *CallRouter) IsImeTraceEnabled(ctx context.Context) (bool, error) {
	handle, caller, err := r.d.route(ctx, "is_ime_trace_enabled")
	if err != nil {
		return false, err
	}
	result, err := handle.IsImeTraceEnabled(ctx, caller)
	return result, r.d.finish("is_ime_trace_enabled", err)
}

// StartImeTrace forwards to the caller's instance.
func (r *CallRouter) StartImeTrace(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "start_ime_trace")
	if err != nil {
		return err
	}
	return r.d.finish("start_ime_trace", handle.StartImeTrace(ctx, caller))
}

// StopImeTrace forwards to the caller's instance.
func (r *CallRouter) StopImeTrace(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "stop_ime_trace")
	if err != nil {
		return err
	}
	return r.d.finish("stop_ime_trace", handle.StopImeTrace(ctx, caller))
}

// StartStylusHandwriting forwards to the caller's instance.
func (r *CallRouter) StartStylusHandwriting(ctx context.Context, client inputmethod.ClientID) error {
	handle, caller, err := r.d.route(ctx, "start_stylus_handwriting")
	if err != nil {
		return err
	}
	return r.d.finish("start_stylus_handwriting", handle.StartStylusHandwriting(ctx, caller, client))
}

// IsStylusHandwritingAvailableAsUser forwards to target's instance.
func (r *CallRouter) IsStylusHandwritingAvailableAsUser(ctx context.Context, target inputmethod.UserID) (bool, error) {
	handle, caller, err := r.d.routeAs(ctx, "is_stylus_handwriting_available_as_user", target)
	if err != nil {
		return false, err
	}
	result, err := handle.IsStylusHandwritingAvailableAsUser(ctx, caller, target)
	return result, r.d.finish("is_stylus_handwriting_available_as_user", err)
}

// AddVirtualStylusIDForTestSession forwards to the caller's instance.
func (r *CallRouter) AddVirtualStylusIDForTestSession(ctx context.Context, client inputmethod.ClientID) error {
	handle, caller, err := r.d.route(ctx, "add_virtual_stylus_id_for_test_session")
	if err != nil {
		return err
	}
	return r.d.finish("add_virtual_stylus_id_for_test_session", handle.AddVirtualStylusIDForTestSession(ctx, caller, client))
}

// SetStylusWindowIdleTimeoutForTest forwards to the caller's instance.
func (r *CallRouter) SetStylusWindowIdleTimeoutForTest(ctx context.Context, client inputmethod.ClientID, timeout time.Duration) error {
	handle, caller, err := r.d.route(ctx, "set_stylus_window_idle_timeout_for_test")
	if err != nil {
		return err
	}
	return r.d.finish("set_stylus_window_idle_timeout_for_test", handle.SetStylusWindowIdleTimeoutForTest(ctx, caller, client, timeout))
}

// ShouldOfferSwitchingToNextInputMethod forwards to the caller's instance.
func (r *CallRouter) ShouldOfferSwitchingToNextInputMethod(ctx context.Context, window inputmethod.WindowToken) (bool, error) {
	handle, caller, err := r.d.route(ctx, "should_offer_switching_to_next_input_method")
	if err != nil {
		return false, err
	}
	result, err := handle.ShouldOfferSwitchingToNextInputMethod(ctx, caller, window)
	return result, r.d.finish("should_offer_switching_to_next_input_method", err)
}
