// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imrouter/lib/process"
	"github.com/bureau-foundation/imrouter/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

// globals are the flags shared by every subcommand.
type globals struct {
	clientSocket string
	hostSocket   string
	timeout      time.Duration
}

type command struct {
	summary string
	run     func(ctx context.Context, g globals, args []string, out io.Writer) error
}

var commands = map[string]command{
	"status": {summary: "show daemon mode, catalog, and per-user instances", run: runStatus},
	"call":   {summary: "invoke a client action as the current user", run: runCall},
	"host":   {summary: "deliver a lifecycle notification or local action", run: runHost},
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var g globals
	var showVersion bool
	flagSet := pflag.NewFlagSet("imrouter", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&g.clientSocket, "client-socket", "/run/imrouter/client.sock", "daemon client socket")
	flagSet.StringVar(&g.hostSocket, "host-socket", "/run/imrouter/host.sock", "daemon host socket")
	flagSet.DurationVar(&g.timeout, "timeout", 10*time.Second, "per-request timeout")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.Usage = func() { printUsage(flagSet) }
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print("imrouter")
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(flagSet)
		return fmt.Errorf("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (known: %s)", rest[0], strings.Join(commandNames(), ", "))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return cmd.run(ctx, g, rest[1:], out)
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: imrouter [flags] <command> [args]\n\nCommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n%s", flagSet.FlagUsages())
}
