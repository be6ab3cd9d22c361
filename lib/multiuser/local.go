// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// LocalRouter routes host-internal control-plane calls to per-user
// Local handles with the same resolve-lookup-forward rules as
// CallRouter.
type LocalRouter struct {
	d dispatcher[inputmethod.Local]
}

// NewLocalRouter creates a router that finds local handles with
// lookup. Use Registry.LookupLocal in multi-user mode. metrics may be nil.
func NewLocalRouter(resolver CallerResolver, lookup func(inputmethod.UserID) (inputmethod.Local, error), logger *slog.Logger, metrics *Metrics) *LocalRouter {
	return &LocalRouter{d: dispatcher[inputmethod.Local]{
		surface:  surfaceLocal,
		resolver: resolver,
		lookup:   lookup,
		logger:   logger,
		metrics:  metrics,
	}}
}

// SetInteractive forwards to the caller's local handle.
func (r *LocalRouter) SetInteractive(ctx context.Context, interactive bool) error {
	handle, caller, err := r.d.route(ctx, "set_interactive")
	if err != nil {
		return err
	}
	return r.d.finish("set_interactive", handle.SetInteractive(ctx, caller, interactive))
}

// HideCurrentInputMethod forwards to the caller's local handle.
func (r *LocalRouter) HideCurrentInputMethod(ctx context.Context, reason int32) error {
	handle, caller, err := r.d.route(ctx, "hide_current_input_method")
	if err != nil {
		return err
	}
	return r.d.finish("hide_current_input_method", handle.HideCurrentInputMethod(ctx, caller, reason))
}

// GetInputMethodListAsUser forwards to target's local handle.
func (r *LocalRouter) GetInputMethodListAsUser(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	handle, caller, err := r.d.routeAs(ctx, "get_input_method_list_as_user", target)
	if err != nil {
		return nil, err
	}
	result, err := handle.GetInputMethodListAsUser(ctx, caller, target)
	return result, r.d.finish("get_input_method_list_as_user", err)
}

// GetEnabledInputMethodListAsUser forwards to target's local handle.
func (r *LocalRouter) GetEnabledInputMethodListAsUser(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	handle, caller, err := r.d.routeAs(ctx, "get_enabled_input_method_list_as_user", target)
	if err != nil {
		return nil, err
	}
	result, err := handle.GetEnabledInputMethodListAsUser(ctx, caller, target)
	return result, r.d.finish("get_enabled_input_method_list_as_user", err)
}

// SwitchToInputMethod forwards to target's local handle.
func (r *LocalRouter) SwitchToInputMethod(ctx context.Context, method inputmethod.MethodID, target inputmethod.UserID) (bool, error) {
	handle, caller, err := r.d.routeAs(ctx, "switch_to_input_method", target)
	if err != nil {
		return false, err
	}
	result, err := handle.SwitchToInputMethod(ctx, caller, method, target)
	return result, r.d.finish("switch_to_input_method", err)
}

// SetInputMethodEnabled forwards to target's local handle.
func (r *LocalRouter) SetInputMethodEnabled(ctx context.Context, method inputmethod.MethodID, enabled bool, target inputmethod.UserID) (bool, error) {
	handle, caller, err := r.d.routeAs(ctx, "set_input_method_enabled", target)
	if err != nil {
		return false, err
	}
	result, err := handle.SetInputMethodEnabled(ctx, caller, method, enabled, target)
	return result, r.d.finish("set_input_method_enabled", err)
}

// ReportImeControl forwards to the caller's local handle.
func (r *LocalRouter) ReportImeControl(ctx context.Context, window inputmethod.WindowToken) error {
	handle, caller, err := r.d.route(ctx, "report_ime_control")
	if err != nil {
		return err
	}
	return r.d.finish("report_ime_control", handle.ReportImeControl(ctx, caller, window))
}

// ReportImeWindowVisibility forwards to the caller's local handle.
func (r *LocalRouter) ReportImeWindowVisibility(ctx context.Context, window inputmethod.WindowToken, visible bool) error {
	handle, caller, err := r.d.route(ctx, "report_ime_window_visibility")
	if err != nil {
		return err
	}
	return r.d.finish("report_ime_window_visibility", handle.ReportImeWindowVisibility(ctx, caller, window, visible))
}

// IsImeWindowVisible forwards to the caller's local handle.
func (r *LocalRouter) IsImeWindowVisible(ctx context.Context) (bool, error) {
	handle, caller, err := r.d.route(ctx, "is_ime_window_visible")
	if err != nil {
		return false, err
	}
	result, err := handle.IsImeWindowVisible(ctx, caller)
	return result, r.d.finish("is_ime_window_visible", err)
}

// OnImeParentChanged forwards to the caller's local handle.
func (r *LocalRouter) OnImeParentChanged(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "on_ime_parent_changed")
	if err != nil {
		return err
	}
	return r.d.finish("on_ime_parent_changed", handle.OnImeParentChanged(ctx, caller))
}

// RemoveImeSurface forwards to the caller's local handle.
func (r *LocalRouter) RemoveImeSurface(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "remove_ime_surface")
	if err != nil {
		return err
	}
	return r.d.finish("remove_ime_surface", handle.RemoveImeSurface(ctx, caller))
}

// UpdateImeWindowStatus forwards to the caller's local handle.
func (r *LocalRouter) UpdateImeWindowStatus(ctx context.Context, disableIcon bool) error {
	handle, caller, err := r.d.route(ctx, "update_ime_window_status")
	if err != nil {
		return err
	}
	return r.d.finish("update_ime_window_status", handle.UpdateImeWindowStatus(ctx, caller, disableIcon))
}

// TransferTouchFocusToImeWindow forwards to the caller's local handle.
func (r *LocalRouter) TransferTouchFocusToImeWindow(ctx context.Context, source inputmethod.WindowToken, display inputmethod.DisplayID) (bool, error) {
	handle, caller, err := r.d.route(ctx, "transfer_touch_focus_to_ime_window")
	if err != nil {
		return false, err
	}
	result, err := handle.TransferTouchFocusToImeWindow(ctx, caller, source, display)
	return result, r.d.finish("transfer_touch_focus_to_ime_window", err)
}

// MaybeFinishStylusHandwriting forwards to the caller's local handle.
func (r *LocalRouter) MaybeFinishStylusHandwriting(ctx context.Context) error {
	handle, caller, err := r.d.route(ctx, "maybe_finish_stylus_handwriting")
	if err != nil {
		return err
	}
	return r.d.finish("maybe_finish_stylus_handwriting", handle.MaybeFinishStylusHandwriting(ctx, caller))
}
