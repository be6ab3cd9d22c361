// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

func (i *Instance) AddClient(_ context.Context, caller inputmethod.Caller, client inputmethod.ClientID, display inputmethod.DisplayID) error {
	if client == "" {
		return fmt.Errorf("adding client: empty client ID")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.clients[client] = &clientState{uid: caller.UID, pid: caller.PID, display: display}
	i.logger.Debug("client added", "client", client, "caller_uid", caller.UID, "display", display)
	return nil
}

func (i *Instance) RemoveClient(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(client); err != nil {
		return err
	}
	delete(i.clients, client)
	if i.focusedClient == client {
		i.focusedClient = ""
		i.focusedWindow = ""
		i.sessionID = ""
		i.hideLocked()
	}
	return nil
}

func (i *Instance) GetInputMethodList(_ context.Context, _ inputmethod.Caller, _ inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	methods := i.catalog.Methods()
	for index := range methods {
		methods[index].Subtypes = i.subtypesLocked(methods[index])
	}
	return methods, nil
}

func (i *Instance) GetEnabledInputMethodList(_ context.Context, _ inputmethod.Caller, _ inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabledMethodsLocked(), nil
}

// GetEnabledInputMethodSubtypeList lists the non-auxiliary subtypes of
// method (the current method when empty). Implicitly selected subtypes
// are included only when allowImplicit is set.
func (i *Instance) GetEnabledInputMethodSubtypeList(_ context.Context, _ inputmethod.Caller, method inputmethod.MethodID, allowImplicit bool) ([]inputmethod.Subtype, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if method == "" {
		method = i.currentMethod
	}
	info, ok := i.catalog.Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if !i.enabled[method] {
		return nil, nil
	}
	var result []inputmethod.Subtype
	for _, subtype := range i.subtypesLocked(info) {
		if subtype.Auxiliary {
			continue
		}
		if subtype.ImplicitlySelected && !allowImplicit {
			continue
		}
		result = append(result, subtype)
	}
	return result, nil
}

func (i *Instance) GetLastInputMethodSubtype(_ context.Context, _ inputmethod.Caller) (*inputmethod.Subtype, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return copySubtype(i.lastSubtype), nil
}

func (i *Instance) GetCurrentInputMethodSubtype(_ context.Context, _ inputmethod.Caller) (*inputmethod.Subtype, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return copySubtype(i.currentSubtype), nil
}

func (i *Instance) GetCurrentInputMethodInfoAsUser(_ context.Context, _ inputmethod.Caller, _ inputmethod.UserID) (*inputmethod.InputMethodInfo, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.currentMethod == "" {
		return nil, nil
	}
	info, ok := i.catalog.Lookup(i.currentMethod)
	if !ok {
		return nil, nil
	}
	info.Subtypes = i.subtypesLocked(info)
	return &info, nil
}

func (i *Instance) SetAdditionalInputMethodSubtypes(_ context.Context, _ inputmethod.Caller, method inputmethod.MethodID, subtypes []inputmethod.Subtype) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.catalog.Lookup(method); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	registered := make([]inputmethod.Subtype, len(subtypes))
	for index, subtype := range subtypes {
		subtype.Additional = true
		registered[index] = subtype
	}
	if len(registered) == 0 {
		delete(i.additional, method)
	} else {
		i.additional[method] = registered
	}
	return nil
}

// ShowSoftInput shows the soft input for the focused client. Requests
// from unfocused clients are ignored and report false.
func (i *Instance) ShowSoftInput(_ context.Context, _ inputmethod.Caller, request inputmethod.SoftInputRequest) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(request.Client); err != nil {
		return false, err
	}
	if request.Client != i.focusedClient || i.currentMethod == "" {
		return false, nil
	}
	i.softInputShown = true
	i.imeWindowVisible = true
	return true, nil
}

func (i *Instance) HideSoftInput(_ context.Context, _ inputmethod.Caller, request inputmethod.SoftInputRequest) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(request.Client); err != nil {
		return false, err
	}
	if request.Client != i.focusedClient {
		return false, nil
	}
	return i.hideLocked(), nil
}

func (i *Instance) StartInputOrWindowGainedFocus(_ context.Context, _ inputmethod.Caller, request inputmethod.StartInputRequest) (inputmethod.InputBindResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.clients[request.Client]; !ok {
		return inputmethod.InputBindResult{Result: inputmethod.BindErrorInvalidClient, Sequence: i.sequence}, nil
	}
	if request.Window != i.focusedWindow {
		i.hideLocked()
	}
	i.focusedClient = request.Client
	i.focusedWindow = request.Window

	if request.Reason == inputmethod.StartInputReasonWindowFocusGainReportOnly {
		return inputmethod.InputBindResult{Result: inputmethod.BindSuccessReportWindowFocusOnly, Sequence: i.sequence}, nil
	}
	if i.currentMethod == "" {
		return inputmethod.InputBindResult{Result: inputmethod.BindErrorNoIME, Sequence: i.sequence}, nil
	}

	i.sequence++
	i.sessionID = newSessionID()
	return inputmethod.InputBindResult{
		Result:    inputmethod.BindSuccessWithSession,
		SessionID: i.sessionID,
		Method:    i.currentMethod,
		Sequence:  i.sequence,
	}, nil
}

func (i *Instance) ShowInputMethodPickerFromClient(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID, _ int32) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(client); err != nil {
		return err
	}
	i.pickerShown = true
	return nil
}

func (i *Instance) ShowInputMethodPickerFromSystem(_ context.Context, _ inputmethod.Caller, _ inputmethod.ClientID, _ int32, _ inputmethod.DisplayID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pickerShown = true
	return nil
}

func (i *Instance) ShowInputMethodAndSubtypeEnablerFromClient(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID, method inputmethod.MethodID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(client); err != nil {
		return err
	}
	if method != "" {
		if _, ok := i.catalog.Lookup(method); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
		}
	}
	return nil
}

func (i *Instance) IsInputMethodPickerShownForTest(_ context.Context, _ inputmethod.Caller) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pickerShown, nil
}

func (i *Instance) GetInputMethodWindowVisibleHeight(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID) (int32, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(client); err != nil {
		return 0, err
	}
	if !i.imeWindowVisible || client != i.focusedClient {
		return 0, nil
	}
	return i.windowHeight, nil
}

func (i *Instance) ReportPerceptible(_ context.Context, _ inputmethod.Caller, window inputmethod.WindowToken, perceptible bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.perceptible[window] = perceptible
	return nil
}

func (i *Instance) RemoveImeSurface(_ context.Context, _ inputmethod.Caller) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hideLocked()
	return nil
}

func (i *Instance) RemoveImeSurfaceFromWindow(_ context.Context, _ inputmethod.Caller, window inputmethod.WindowToken) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if window == i.focusedWindow {
		i.hideLocked()
	}
	return nil
}

func (i *Instance) StartProtoDump(_ context.Context, _ inputmethod.Caller, data []byte, source int32, where string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.tracing {
		return nil
	}
	i.protoDumpBytes += len(data)
	i.logger.Debug("proto dump recorded", "source", source, "where", where, "bytes", len(data))
	return nil
}

func (i *Instance) IsImeTraceEnabled(_ context.Context, _ inputmethod.Caller) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracing, nil
}

func (i *Instance) StartImeTrace(_ context.Context, _ inputmethod.Caller) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tracing = true
	return nil
}

func (i *Instance) StopImeTrace(_ context.Context, _ inputmethod.Caller) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tracing = false
	return nil
}

func (i *Instance) StartStylusHandwriting(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.clientLocked(client); err != nil {
		return err
	}
	method, ok := i.catalog.Lookup(i.currentMethod)
	if client != i.focusedClient || !ok || !method.SupportsStylus {
		return ErrHandwritingUnavailable
	}
	i.handwriting = true
	return nil
}

func (i *Instance) IsStylusHandwritingAvailableAsUser(_ context.Context, _ inputmethod.Caller, _ inputmethod.UserID) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, method := range i.enabledMethodsLocked() {
		if method.SupportsStylus {
			return true, nil
		}
	}
	return false, nil
}

func (i *Instance) AddVirtualStylusIDForTestSession(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, err := i.clientLocked(client)
	if err != nil {
		return err
	}
	state.virtualStylus = true
	return nil
}

func (i *Instance) SetStylusWindowIdleTimeoutForTest(_ context.Context, _ inputmethod.Caller, client inputmethod.ClientID, timeout time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, err := i.clientLocked(client)
	if err != nil {
		return err
	}
	state.idleTimeout = timeout
	return nil
}

// ShouldOfferSwitchingToNextInputMethod reports whether another enabled
// method or subtype exists to switch to.
func (i *Instance) ShouldOfferSwitchingToNextInputMethod(_ context.Context, _ inputmethod.Caller, window inputmethod.WindowToken) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if window != i.focusedWindow {
		return false, nil
	}
	candidates := 0
	for _, method := range i.enabledMethodsLocked() {
		for _, subtype := range method.Subtypes {
			if !subtype.Auxiliary {
				candidates++
			}
		}
		if len(method.Subtypes) == 0 {
			candidates++
		}
	}
	return candidates > 1, nil
}

func copySubtype(subtype *inputmethod.Subtype) *inputmethod.Subtype {
	if subtype == nil {
		return nil
	}
	copied := *subtype
	return &copied
}
