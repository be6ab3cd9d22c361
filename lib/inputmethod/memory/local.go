// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// localHandle is the control-plane view of an Instance. It shares the
// instance's state and mutex.
type localHandle struct {
	instance *Instance
}

func (l *localHandle) SetInteractive(_ context.Context, _ inputmethod.Caller, interactive bool) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.interactive = interactive
	if !interactive {
		i.hideLocked()
	}
	return nil
}

func (l *localHandle) HideCurrentInputMethod(_ context.Context, _ inputmethod.Caller, reason int32) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.hideLocked() {
		i.logger.Debug("soft input hidden by host", "reason", reason)
	}
	return nil
}

func (l *localHandle) GetInputMethodListAsUser(ctx context.Context, caller inputmethod.Caller, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	return l.instance.GetInputMethodList(ctx, caller, target)
}

func (l *localHandle) GetEnabledInputMethodListAsUser(ctx context.Context, caller inputmethod.Caller, target inputmethod.UserID) ([]inputmethod.InputMethodInfo, error) {
	return l.instance.GetEnabledInputMethodList(ctx, caller, target)
}

// SwitchToInputMethod selects method if it is enabled. Unknown or
// disabled methods report false.
func (l *localHandle) SwitchToInputMethod(_ context.Context, _ inputmethod.Caller, method inputmethod.MethodID, _ inputmethod.UserID) (bool, error) {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.enabled[method] {
		return false, nil
	}
	i.selectMethodLocked(method)
	i.hideLocked()
	return true, nil
}

// SetInputMethodEnabled reports whether the enabled state changed.
// Disabling the current method falls back to the first remaining
// enabled method, or to none.
func (l *localHandle) SetInputMethodEnabled(_ context.Context, _ inputmethod.Caller, method inputmethod.MethodID, enabled bool, _ inputmethod.UserID) (bool, error) {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.catalog.Lookup(method); !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if i.enabled[method] == enabled {
		return false, nil
	}
	if enabled {
		i.enabled[method] = true
		if i.currentMethod == "" {
			i.selectMethodLocked(method)
		}
		return true, nil
	}

	delete(i.enabled, method)
	if i.currentMethod == method {
		i.hideLocked()
		i.currentMethod = ""
		i.currentSubtype = nil
		for _, candidate := range i.catalog.Methods() {
			if i.enabled[candidate.ID] {
				i.selectMethodLocked(candidate.ID)
				break
			}
		}
	}
	return true, nil
}

func (l *localHandle) ReportImeControl(_ context.Context, _ inputmethod.Caller, window inputmethod.WindowToken) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.imeControl = window
	return nil
}

func (l *localHandle) ReportImeWindowVisibility(_ context.Context, _ inputmethod.Caller, _ inputmethod.WindowToken, visible bool) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.imeWindowVisible = visible
	if !visible {
		i.softInputShown = false
	}
	return nil
}

func (l *localHandle) IsImeWindowVisible(_ context.Context, _ inputmethod.Caller) (bool, error) {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.imeWindowVisible, nil
}

// OnImeParentChanged hides the soft input: the surface it was attached
// to is gone.
func (l *localHandle) OnImeParentChanged(_ context.Context, _ inputmethod.Caller) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hideLocked()
	i.imeControl = ""
	return nil
}

func (l *localHandle) RemoveImeSurface(ctx context.Context, caller inputmethod.Caller) error {
	return l.instance.RemoveImeSurface(ctx, caller)
}

func (l *localHandle) UpdateImeWindowStatus(_ context.Context, _ inputmethod.Caller, disableIcon bool) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.iconDisabled = disableIcon
	return nil
}

func (l *localHandle) TransferTouchFocusToImeWindow(_ context.Context, _ inputmethod.Caller, source inputmethod.WindowToken, _ inputmethod.DisplayID) (bool, error) {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.imeWindowVisible && source != "" && source == i.focusedWindow, nil
}

func (l *localHandle) MaybeFinishStylusHandwriting(_ context.Context, _ inputmethod.Caller) error {
	i := l.instance
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handwriting = false
	return nil
}
