// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imapi

import (
	"context"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/service"
)

// RegisterClient registers the client surface on server: every
// CallRouter operation plus ActionStatus. status may be nil, in which
// case ActionStatus is not registered.
func RegisterClient(server *service.SocketServer, router *multiuser.CallRouter, status func(ctx context.Context) (Status, error)) {
	handle(server, ActionAddClient, func(ctx context.Context, request Request) (any, error) {
		return nil, router.AddClient(ctx, request.Client, request.Display)
	})
	handle(server, ActionRemoveClient, func(ctx context.Context, request Request) (any, error) {
		return nil, router.RemoveClient(ctx, request.Client)
	})
	handle(server, ActionGetInputMethodList, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := router.GetInputMethodList(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[[]inputmethod.InputMethodInfo]{Value: value}, nil
	})
	handle(server, ActionGetEnabledInputMethodList, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := router.GetEnabledInputMethodList(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[[]inputmethod.InputMethodInfo]{Value: value}, nil
	})
	handle(server, ActionGetEnabledInputMethodSubtypeList, func(ctx context.Context, request Request) (any, error) {
		value, err := router.GetEnabledInputMethodSubtypeList(ctx, request.Method, request.AllowImplicit)
		if err != nil {
			return nil, err
		}
		return Result[[]inputmethod.Subtype]{Value: value}, nil
	})
	handle(server, ActionGetLastInputMethodSubtype, func(ctx context.Context, request Request) (any, error) {
		value, err := router.GetLastInputMethodSubtype(ctx)
		if err != nil {
			return nil, err
		}
		return Result[*inputmethod.Subtype]{Value: value}, nil
	})
	handle(server, ActionGetCurrentInputMethodSubtype, func(ctx context.Context, request Request) (any, error) {
		value, err := router.GetCurrentInputMethodSubtype(ctx)
		if err != nil {
			return nil, err
		}
		return Result[*inputmethod.Subtype]{Value: value}, nil
	})
	handle(server, ActionGetCurrentInputMethodInfoAsUser, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := router.GetCurrentInputMethodInfoAsUser(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[*inputmethod.InputMethodInfo]{Value: value}, nil
	})
	handle(server, ActionSetAdditionalInputMethodSubtypes, func(ctx context.Context, request Request) (any, error) {
		return nil, router.SetAdditionalInputMethodSubtypes(ctx, request.Method, request.Subtypes)
	})
	handle(server, ActionShowSoftInput, func(ctx context.Context, request Request) (any, error) {
		softInput, err := request.softInput()
		if err != nil {
			return nil, err
		}
		value, err := router.ShowSoftInput(ctx, softInput)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionHideSoftInput, func(ctx context.Context, request Request) (any, error) {
		softInput, err := request.softInput()
		if err != nil {
			return nil, err
		}
		value, err := router.HideSoftInput(ctx, softInput)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionStartInputOrWindowGainedFocus, func(ctx context.Context, request Request) (any, error) {
		startInput, err := request.startInput()
		if err != nil {
			return nil, err
		}
		value, err := router.StartInputOrWindowGainedFocus(ctx, startInput)
		if err != nil {
			return nil, err
		}
		return Result[inputmethod.InputBindResult]{Value: value}, nil
	})
	handle(server, ActionShowInputMethodPickerFromClient, func(ctx context.Context, request Request) (any, error) {
		return nil, router.ShowInputMethodPickerFromClient(ctx, request.Client, request.AuxiliaryMode)
	})
	handle(server, ActionShowInputMethodPickerFromSystem, func(ctx context.Context, request Request) (any, error) {
		return nil, router.ShowInputMethodPickerFromSystem(ctx, request.Client, request.AuxiliaryMode, request.Display)
	})
	handle(server, ActionShowInputMethodAndSubtypeEnablerFromClient, func(ctx context.Context, request Request) (any, error) {
		return nil, router.ShowInputMethodAndSubtypeEnablerFromClient(ctx, request.Client, request.Method)
	})
	handle(server, ActionIsInputMethodPickerShownForTest, func(ctx context.Context, request Request) (any, error) {
		value, err := router.IsInputMethodPickerShownForTest(ctx)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionGetInputMethodWindowVisibleHeight, func(ctx context.Context, request Request) (any, error) {
		value, err := router.GetInputMethodWindowVisibleHeight(ctx, request.Client)
		if err != nil {
			return nil, err
		}
		return Result[int32]{Value: value}, nil
	})
	handle(server, ActionReportPerceptible, func(ctx context.Context, request Request) (any, error) {
		return nil, router.ReportPerceptible(ctx, request.Window, request.Perceptible)
	})
	handle(server, ActionRemoveImeSurface, func(ctx context.Context, request Request) (any, error) {
		return nil, router.RemoveImeSurface(ctx)
	})
	handle(server, ActionRemoveImeSurfaceFromWindow, func(ctx context.Context, request Request) (any, error) {
		return nil, router.RemoveImeSurfaceFromWindow(ctx, request.Window)
	})
	handle(server, ActionStartProtoDump, func(ctx context.Context, request Request) (any, error) {
		return nil, router.StartProtoDump(ctx, request.Data, request.Source, request.Where)
	})
	handle(server, ActionIsImeTraceEnabled, func(ctx context.Context, request Request) (any, error) {
		value, err := router.IsImeTraceEnabled(ctx)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionStartImeTrace, func(ctx context.Context, request Request) (any, error) {
		return nil, router.StartImeTrace(ctx)
	})
	handle(server, ActionStopImeTrace, func(ctx context.Context, request Request) (any, error) {
		return nil, router.StopImeTrace(ctx)
	})
	handle(server, ActionStartStylusHandwriting, func(ctx context.Context, request Request) (any, error) {
		return nil, router.StartStylusHandwriting(ctx, request.Client)
	})
	handle(server, ActionIsStylusHandwritingAvailableAsUser, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := router.IsStylusHandwritingAvailableAsUser(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionAddVirtualStylusIDForTestSession, func(ctx context.Context, request Request) (any, error) {
		return nil, router.AddVirtualStylusIDForTestSession(ctx, request.Client)
	})
	handle(server, ActionSetStylusWindowIdleTimeoutForTest, func(ctx context.Context, request Request) (any, error) {
		return nil, router.SetStylusWindowIdleTimeoutForTest(ctx, request.Client, request.timeout())
	})
	handle(server, ActionShouldOfferSwitchingToNextInputMethod, func(ctx context.Context, request Request) (any, error) {
		value, err := router.ShouldOfferSwitchingToNextInputMethod(ctx, request.Window)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})

	if status != nil {
		handle(server, ActionStatus, func(ctx context.Context, _ Request) (any, error) {
			return status(ctx)
		})
	}
}

// RegisterHost registers the host surface on server: the lifecycle
// notifications, a queue barrier, and every LocalRouter operation.
// sync may be nil, in which case ActionHostSync returns immediately.
func RegisterHost(server *service.SocketServer, lifecycle inputmethod.Lifecycle, local *multiuser.LocalRouter, sync func(ctx context.Context) error) {
	handle(server, ActionHostBootPhase, func(ctx context.Context, request Request) (any, error) {
		if request.Phase == nil {
			return nil, missingField("phase")
		}
		lifecycle.OnBootPhase(ctx, *request.Phase)
		return nil, nil
	})
	handle(server, ActionHostUserStarting, func(ctx context.Context, request Request) (any, error) {
		user, err := request.user()
		if err != nil {
			return nil, err
		}
		lifecycle.OnUserStarting(ctx, user)
		return nil, nil
	})
	handle(server, ActionHostUserUnlocking, func(ctx context.Context, request Request) (any, error) {
		user, err := request.user()
		if err != nil {
			return nil, err
		}
		lifecycle.OnUserUnlocking(ctx, user)
		return nil, nil
	})
	handle(server, ActionHostUserSwitching, func(ctx context.Context, request Request) (any, error) {
		if request.FromUser == nil {
			return nil, missingField("from_user")
		}
		if request.ToUser == nil {
			return nil, missingField("to_user")
		}
		lifecycle.OnUserSwitching(ctx, *request.FromUser, *request.ToUser)
		return nil, nil
	})
	handle(server, ActionHostUserStopping, func(ctx context.Context, request Request) (any, error) {
		user, err := request.user()
		if err != nil {
			return nil, err
		}
		lifecycle.OnUserStopping(ctx, user)
		return nil, nil
	})
	handle(server, ActionHostSync, func(ctx context.Context, _ Request) (any, error) {
		if sync == nil {
			return nil, nil
		}
		return nil, sync(ctx)
	})

	handle(server, ActionLocalSetInteractive, func(ctx context.Context, request Request) (any, error) {
		return nil, local.SetInteractive(ctx, request.Interactive)
	})
	handle(server, ActionLocalHideCurrentInputMethod, func(ctx context.Context, request Request) (any, error) {
		return nil, local.HideCurrentInputMethod(ctx, request.Reason)
	})
	handle(server, ActionLocalGetInputMethodListAsUser, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := local.GetInputMethodListAsUser(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[[]inputmethod.InputMethodInfo]{Value: value}, nil
	})
	handle(server, ActionLocalGetEnabledInputMethodListAsUser, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := local.GetEnabledInputMethodListAsUser(ctx, target)
		if err != nil {
			return nil, err
		}
		return Result[[]inputmethod.InputMethodInfo]{Value: value}, nil
	})
	handle(server, ActionLocalSwitchToInputMethod, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := local.SwitchToInputMethod(ctx, request.Method, target)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionLocalSetInputMethodEnabled, func(ctx context.Context, request Request) (any, error) {
		target, err := request.targetUser()
		if err != nil {
			return nil, err
		}
		value, err := local.SetInputMethodEnabled(ctx, request.Method, request.Enabled, target)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionLocalReportImeControl, func(ctx context.Context, request Request) (any, error) {
		return nil, local.ReportImeControl(ctx, request.Window)
	})
	handle(server, ActionLocalReportImeWindowVisibility, func(ctx context.Context, request Request) (any, error) {
		return nil, local.ReportImeWindowVisibility(ctx, request.Window, request.Visible)
	})
	handle(server, ActionLocalIsImeWindowVisible, func(ctx context.Context, request Request) (any, error) {
		value, err := local.IsImeWindowVisible(ctx)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionLocalOnImeParentChanged, func(ctx context.Context, request Request) (any, error) {
		return nil, local.OnImeParentChanged(ctx)
	})
	handle(server, ActionLocalRemoveImeSurface, func(ctx context.Context, request Request) (any, error) {
		return nil, local.RemoveImeSurface(ctx)
	})
	handle(server, ActionLocalUpdateImeWindowStatus, func(ctx context.Context, request Request) (any, error) {
		return nil, local.UpdateImeWindowStatus(ctx, request.DisableIcon)
	})
	handle(server, ActionLocalTransferTouchFocusToImeWindow, func(ctx context.Context, request Request) (any, error) {
		value, err := local.TransferTouchFocusToImeWindow(ctx, request.Window, request.Display)
		if err != nil {
			return nil, err
		}
		return Result[bool]{Value: value}, nil
	})
	handle(server, ActionLocalMaybeFinishStylusHandwriting, func(ctx context.Context, request Request) (any, error) {
		return nil, local.MaybeFinishStylusHandwriting(ctx)
	})
}
