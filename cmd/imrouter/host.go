// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imrouter/lib/imapi"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

var bootPhases = map[string]inputmethod.BootPhase{
	"wait-for-default-display":   inputmethod.PhaseWaitForDefaultDisplay,
	"lock-settings-ready":        inputmethod.PhaseLockSettingsReady,
	"system-services-ready":      inputmethod.PhaseSystemServicesReady,
	"activity-manager-ready":     inputmethod.PhaseActivityManagerReady,
	"third-party-apps-can-start": inputmethod.PhaseThirdPartyAppsCanStart,
	"boot-completed":             inputmethod.PhaseBootCompleted,
}

// hostEvent delivers one notification. arity is the number of
// positional arguments it takes.
type hostEvent struct {
	arity   int
	deliver func(ctx context.Context, client *imapi.Client, args []string) error
}

var hostEvents = map[string]hostEvent{
	"boot-phase": {1, func(ctx context.Context, client *imapi.Client, args []string) error {
		phase, err := parseBootPhase(args[0])
		if err != nil {
			return err
		}
		return client.BootPhase(ctx, phase)
	}},
	"starting":  {1, withUser((*imapi.Client).UserStarting)},
	"unlocking": {1, withUser((*imapi.Client).UserUnlocking)},
	"stopping":  {1, withUser((*imapi.Client).UserStopping)},
	"switching": {2, func(ctx context.Context, client *imapi.Client, args []string) error {
		from, err := parseUser(args[0])
		if err != nil {
			return err
		}
		to, err := parseUser(args[1])
		if err != nil {
			return err
		}
		return client.UserSwitching(ctx, from, to)
	}},
	"sync": {0, func(ctx context.Context, client *imapi.Client, _ []string) error {
		return client.Sync(ctx)
	}},
}

func withUser(notify func(*imapi.Client, context.Context, inputmethod.UserID) error) func(context.Context, *imapi.Client, []string) error {
	return func(ctx context.Context, client *imapi.Client, args []string) error {
		user, err := parseUser(args[0])
		if err != nil {
			return err
		}
		return notify(client, ctx, user)
	}
}

func runHost(ctx context.Context, g globals, args []string, _ io.Writer) error {
	var noWait bool
	flagSet := pflag.NewFlagSet("host", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.BoolVar(&noWait, "no-wait", false, "return once the notification is queued instead of after it is processed")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() == 0 {
		return fmt.Errorf("usage: imrouter host <event> [args ...]")
	}
	name := flagSet.Arg(0)
	event, ok := hostEvents[name]
	if !ok {
		return fmt.Errorf("unknown host event %q", name)
	}
	eventArgs := flagSet.Args()[1:]
	if len(eventArgs) != event.arity {
		return fmt.Errorf("host %s takes %d argument(s), got %d", name, event.arity, len(eventArgs))
	}

	client := imapi.NewClient(g.hostSocket)
	if err := event.deliver(ctx, client, eventArgs); err != nil {
		return fmt.Errorf("delivering %s: %w", name, err)
	}
	if !noWait && name != "sync" {
		if err := client.Sync(ctx); err != nil {
			return fmt.Errorf("waiting for %s to be processed: %w", name, err)
		}
	}
	newCommandLogger().Info("host notification delivered", "event", name, "args", eventArgs, "waited", !noWait)
	return nil
}

func parseUser(value string) (inputmethod.UserID, error) {
	user, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !inputmethod.UserID(user).Valid() {
		return 0, fmt.Errorf("invalid user %q", value)
	}
	return inputmethod.UserID(user), nil
}

func parseBootPhase(value string) (inputmethod.BootPhase, error) {
	if phase, ok := bootPhases[value]; ok {
		return phase, nil
	}
	phase, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid boot phase %q", value)
	}
	return inputmethod.BootPhase(phase), nil
}
