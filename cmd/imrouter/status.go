// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imrouter/lib/imapi"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

func runStatus(ctx context.Context, g globals, args []string, out io.Writer) error {
	var outputJSON bool
	flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 0 {
		return fmt.Errorf("status takes no arguments")
	}

	status, err := imapi.NewClient(g.clientSocket).Status(ctx)
	if err != nil {
		return fmt.Errorf("querying status: %w", err)
	}
	if outputJSON || !isTerminal(out) {
		if status.Users == nil {
			status.Users = []inputmethod.Snapshot{}
		}
		return writeJSON(out, status)
	}
	_, err = fmt.Fprintln(out, renderStatus(status))
	return err
}

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(18)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	modeStyles  = map[string]lipgloss.Style{
		"multi-user": lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		"legacy":     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
)

// renderStatus formats status as a summary block followed by one table
// row per instance.
func renderStatus(status imapi.Status) string {
	mode := status.Mode
	if style, ok := modeStyles[mode]; ok {
		mode = style.Render(mode)
	}
	digest := status.CatalogDigest
	if len(digest) > 16 {
		digest = digest[:16]
	}

	summary := []string{
		labelStyle.Render("mode") + mode,
		labelStyle.Render("version") + status.Version,
		labelStyle.Render("uptime") + (time.Duration(status.UptimeSeconds) * time.Second).String(),
		labelStyle.Render("catalog") + fmt.Sprintf("%d methods (%s)", status.CatalogMethods, digest),
		labelStyle.Render("pending lifecycle") + strconv.Itoa(status.PendingLifecycle),
	}

	if len(status.Users) == 0 {
		summary = append(summary, "", faintStyle.Render("no registered users"))
		return lipgloss.JoinVertical(lipgloss.Left, summary...)
	}

	rows := make([][]string, 0, len(status.Users))
	for _, user := range status.Users {
		rows = append(rows, []string{
			strconv.Itoa(int(user.User)),
			string(user.CurrentMethod),
			strconv.Itoa(user.Clients),
			instanceState(user),
			user.StartedAt.Format(time.RFC3339),
		})
	}
	users := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USER", "METHOD", "CLIENTS", "STATE", "STARTED").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return lipgloss.JoinVertical(lipgloss.Left, append(summary, "", users.Render())...)
}

// instanceState summarizes the boolean snapshot fields.
func instanceState(user inputmethod.Snapshot) string {
	var state []string
	if user.Unlocked {
		state = append(state, "unlocked")
	}
	if user.SoftInputShown {
		state = append(state, "shown")
	}
	if !user.Interactive {
		state = append(state, "idle")
	}
	if user.Tracing {
		state = append(state, "tracing")
	}
	if len(state) == 0 {
		return "-"
	}
	return strings.Join(state, ",")
}
