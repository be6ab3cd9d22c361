// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imapi

import (
	"context"
	"time"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// Client-surface operations. Each mirrors the CallRouter method of the
// same name; identity comes from the connection, not from arguments.

func (c *Client) AddClient(ctx context.Context, client inputmethod.ClientID, display inputmethod.DisplayID) error {
	return c.call(ctx, ActionAddClient, map[string]any{"client": client, "display": display}, nil)
}

func (c *Client) RemoveClient(ctx context.Context, client inputmethod.ClientID) error {
	return c.call(ctx, ActionRemoveClient, map[string]any{"client": client}, nil)
}

func (c *Client) GetInputMethodList(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	var result Result[[]inputmethod.InputMethodInfo]
	err := c.call(ctx, ActionGetInputMethodList, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) GetEnabledInputMethodList(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	var result Result[[]inputmethod.InputMethodInfo]
	err := c.call(ctx, ActionGetEnabledInputMethodList, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) GetEnabledInputMethodSubtypeList(ctx context.Context, method inputmethod.MethodID, allowImplicit bool) ([]inputmethod.Subtype, error) {
	var result Result[[]inputmethod.Subtype]
	err := c.call(ctx, ActionGetEnabledInputMethodSubtypeList, map[string]any{"method": method, "allow_implicit": allowImplicit}, &result)
	return result.Value, err
}

func (c *Client) GetLastInputMethodSubtype(ctx context.Context) (*inputmethod.Subtype, error) {
	var result Result[*inputmethod.Subtype]
	err := c.call(ctx, ActionGetLastInputMethodSubtype, nil, &result)
	return result.Value, err
}

func (c *Client) GetCurrentInputMethodSubtype(ctx context.Context) (*inputmethod.Subtype, error) {
	var result Result[*inputmethod.Subtype]
	err := c.call(ctx, ActionGetCurrentInputMethodSubtype, nil, &result)
	return result.Value, err
}

func (c *Client) GetCurrentInputMethodInfoAsUser(ctx context.Context, target inputmethod.UserID) (*inputmethod.InputMethodInfo, error) {
	var result Result[*inputmethod.InputMethodInfo]
	err := c.call(ctx, ActionGetCurrentInputMethodInfoAsUser, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) SetAdditionalInputMethodSubtypes(ctx context.Context, method inputmethod.MethodID, subtypes []inputmethod.Subtype) error {
	return c.call(ctx, ActionSetAdditionalInputMethodSubtypes, map[string]any{"method": method, "subtypes": subtypes}, nil)
}

func (c *Client) ShowSoftInput(ctx context.Context, softInput inputmethod.SoftInputRequest) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionShowSoftInput, map[string]any{"soft_input": softInput}, &result)
	return result.Value, err
}

func (c *Client) HideSoftInput(ctx context.Context, softInput inputmethod.SoftInputRequest) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionHideSoftInput, map[string]any{"soft_input": softInput}, &result)
	return result.Value, err
}

func (c *Client) StartInputOrWindowGainedFocus(ctx context.Context, startInput inputmethod.StartInputRequest) (inputmethod.InputBindResult, error) {
	var result Result[inputmethod.InputBindResult]
	err := c.call(ctx, ActionStartInputOrWindowGainedFocus, map[string]any{"start_input": startInput}, &result)
	return result.Value, err
}

func (c *Client) ShowInputMethodPickerFromClient(ctx context.Context, client inputmethod.ClientID, auxiliaryMode int32) error {
	return c.call(ctx, ActionShowInputMethodPickerFromClient, map[string]any{"client": client, "auxiliary_mode": auxiliaryMode}, nil)
}

func (c *Client) ShowInputMethodPickerFromSystem(ctx context.Context, client inputmethod.ClientID, auxiliaryMode int32, display inputmethod.DisplayID) error {
	return c.call(ctx, ActionShowInputMethodPickerFromSystem, map[string]any{"client": client, "auxiliary_mode": auxiliaryMode, "display": display}, nil)
}

func (c *Client) ShowInputMethodAndSubtypeEnablerFromClient(ctx context.Context, client inputmethod.ClientID, method inputmethod.MethodID) error {
	return c.call(ctx, ActionShowInputMethodAndSubtypeEnablerFromClient, map[string]any{"client": client, "method": method}, nil)
}

func (c *Client) IsInputMethodPickerShownForTest(ctx context.Context) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionIsInputMethodPickerShownForTest, nil, &result)
	return result.Value, err
}

func (c *Client) GetInputMethodWindowVisibleHeight(ctx context.Context, client inputmethod.ClientID) (int32, error) {
	var result Result[int32]
	err := c.call(ctx, ActionGetInputMethodWindowVisibleHeight, map[string]any{"client": client}, &result)
	return result.Value, err
}

func (c *Client) ReportPerceptible(ctx context.Context, window inputmethod.WindowToken, perceptible bool) error {
	return c.call(ctx, ActionReportPerceptible, map[string]any{"window": window, "perceptible": perceptible}, nil)
}

func (c *Client) RemoveImeSurface(ctx context.Context) error {
	return c.call(ctx, ActionRemoveImeSurface, nil, nil)
}

func (c *Client) RemoveImeSurfaceFromWindow(ctx context.Context, window inputmethod.WindowToken) error {
	return c.call(ctx, ActionRemoveImeSurfaceFromWindow, map[string]any{"window": window}, nil)
}

func (c *Client) StartProtoDump(ctx context.Context, data []byte, source int32, where string) error {
	return c.call(ctx, ActionStartProtoDump, map[string]any{"data": data, "source": source, "where": where}, nil)
}

func (c *Client) IsImeTraceEnabled(ctx context.Context) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionIsImeTraceEnabled, nil, &result)
	return result.Value, err
}

func (c *Client) StartImeTrace(ctx context.Context) error {
	return c.call(ctx, ActionStartImeTrace, nil, nil)
}

func (c *Client) StopImeTrace(ctx context.Context) error {
	return c.call(ctx, ActionStopImeTrace, nil, nil)
}

func (c *Client) StartStylusHandwriting(ctx context.Context, client inputmethod.ClientID) error {
	return c.call(ctx, ActionStartStylusHandwriting, map[string]any{"client": client}, nil)
}

func (c *Client) IsStylusHandwritingAvailableAsUser(ctx context.Context, target inputmethod.UserID) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionIsStylusHandwritingAvailableAsUser, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) AddVirtualStylusIDForTestSession(ctx context.Context, client inputmethod.ClientID) error {
	return c.call(ctx, ActionAddVirtualStylusIDForTestSession, map[string]any{"client": client}, nil)
}

func (c *Client) SetStylusWindowIdleTimeoutForTest(ctx context.Context, client inputmethod.ClientID, timeout time.Duration) error {
	return c.call(ctx, ActionSetStylusWindowIdleTimeoutForTest, map[string]any{"client": client, "timeout_ms": timeout.Milliseconds()}, nil)
}

func (c *Client) ShouldOfferSwitchingToNextInputMethod(ctx context.Context, window inputmethod.WindowToken) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionShouldOfferSwitchingToNextInputMethod, map[string]any{"window": window}, &result)
	return result.Value, err
}

// Host-surface Local operations. The client must be connected to the
// host socket.

func (c *Client) LocalSetInteractive(ctx context.Context, interactive bool) error {
	return c.call(ctx, ActionLocalSetInteractive, map[string]any{"interactive": interactive}, nil)
}

func (c *Client) LocalHideCurrentInputMethod(ctx context.Context, reason int32) error {
	return c.call(ctx, ActionLocalHideCurrentInputMethod, map[string]any{"reason": reason}, nil)
}

func (c *Client) LocalGetInputMethodListAsUser(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	var result Result[[]inputmethod.InputMethodInfo]
	err := c.call(ctx, ActionLocalGetInputMethodListAsUser, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) LocalGetEnabledInputMethodListAsUser(ctx context.Context, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	var result Result[[]inputmethod.InputMethodInfo]
	err := c.call(ctx, ActionLocalGetEnabledInputMethodListAsUser, map[string]any{"target_user": target}, &result)
	return result.Value, err
}

func (c *Client) LocalSwitchToInputMethod(ctx context.Context, method inputmethod.MethodID, target inputmethod.UserID) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionLocalSwitchToInputMethod, map[string]any{"method": method, "target_user": target}, &result)
	return result.Value, err
}

func (c *Client) LocalSetInputMethodEnabled(ctx context.Context, method inputmethod.MethodID, enabled bool, target inputmethod.UserID) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionLocalSetInputMethodEnabled, map[string]any{"method": method, "enabled": enabled, "target_user": target}, &result)
	return result.Value, err
}

func (c *Client) LocalReportImeControl(ctx context.Context, window inputmethod.WindowToken) error {
	return c.call(ctx, ActionLocalReportImeControl, map[string]any{"window": window}, nil)
}

func (c *Client) LocalReportImeWindowVisibility(ctx context.Context, window inputmethod.WindowToken, visible bool) error {
	return c.call(ctx, ActionLocalReportImeWindowVisibility, map[string]any{"window": window, "visible": visible}, nil)
}

func (c *Client) LocalIsImeWindowVisible(ctx context.Context) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionLocalIsImeWindowVisible, nil, &result)
	return result.Value, err
}

func (c *Client) LocalOnImeParentChanged(ctx context.Context) error {
	return c.call(ctx, ActionLocalOnImeParentChanged, nil, nil)
}

func (c *Client) LocalRemoveImeSurface(ctx context.Context) error {
	return c.call(ctx, ActionLocalRemoveImeSurface, nil, nil)
}

func (c *Client) LocalUpdateImeWindowStatus(ctx context.Context, disableIcon bool) error {
	return c.call(ctx, ActionLocalUpdateImeWindowStatus, map[string]any{"disable_icon": disableIcon}, nil)
}

func (c *Client) LocalTransferTouchFocusToImeWindow(ctx context.Context, source inputmethod.WindowToken, display inputmethod.DisplayID) (bool, error) {
	var result Result[bool]
	err := c.call(ctx, ActionLocalTransferTouchFocusToImeWindow, map[string]any{"window": source, "display": display}, &result)
	return result.Value, err
}

func (c *Client) LocalMaybeFinishStylusHandwriting(ctx context.Context) error {
	return c.call(ctx, ActionLocalMaybeFinishStylusHandwriting, nil, nil)
}
