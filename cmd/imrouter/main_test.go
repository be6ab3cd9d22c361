// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/imrouter/lib/imapi"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/catalog"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/memory"
	"github.com/bureau-foundation/imrouter/lib/multiuser"
	"github.com/bureau-foundation/imrouter/lib/service"
	"github.com/bureau-foundation/imrouter/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// serveRouter starts a multi-user router behind client and host sockets
// and returns the global flags pointing at them.
func serveRouter(t *testing.T) []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	methods, err := catalog.Parse([]byte(`{"methods": [
		{"id": "org.example.latin/.LatinIME", "label": "Latin", "system": true,
		 "default_subtype_id": 1, "subtypes": [{"id": 1, "locale": "en-US", "mode": "keyboard"}]}
	]}`))
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	router, err := multiuser.Build(ctx, multiuser.Options{
		Mode:     multiuser.ModeMultiUser,
		Factory:  memory.Factory(methods, memory.Options{}),
		Host:     inputmethod.HostContext{Logger: testLogger()},
		Resolver: imapi.PeerResolver,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	go router.Run(ctx)

	directory := testutil.SocketDir(t)
	clientSocket := filepath.Join(directory, "client.sock")
	hostSocket := filepath.Join(directory, "host.sock")
	clientServer := service.NewSocketServer(clientSocket, testLogger())
	imapi.RegisterClient(clientServer, router.Calls, func(context.Context) (imapi.Status, error) {
		return imapi.Status{Mode: router.Mode.String(), CatalogMethods: methods.Len(), Users: router.Snapshots()}, nil
	})
	hostServer := service.NewSocketServer(hostSocket, testLogger())
	imapi.RegisterHost(hostServer, router.Lifecycle, router.Local, router.Sync)
	for _, server := range []*service.SocketServer{clientServer, hostServer} {
		go server.Serve(ctx)
		testutil.RequireClosed(t, server.Ready(), 5*time.Second, "socket ready")
	}
	return []string{"--client-socket", clientSocket, "--host-socket", hostSocket}
}

func runCLI(t *testing.T, globals []string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append(append([]string(nil), globals...), args...), &out)
	return out.String(), err
}

func TestEndToEnd(t *testing.T) {
	globals := serveRouter(t)
	self := strconv.Itoa(int(inputmethod.UserIDForUID(uint32(os.Getuid()))))

	_, err := runCLI(t, globals, "call", "add_client", "client=cli", "display=0")
	if !errors.Is(err, multiuser.ErrUnregisteredUser) {
		t.Fatalf("call before user start = %v, want ErrUnregisteredUser", err)
	}

	if _, err := runCLI(t, globals, "host", "starting", self); err != nil {
		t.Fatalf("host starting: %v", err)
	}
	if _, err := runCLI(t, globals, "call", "add_client", "client=cli", "display=0"); err != nil {
		t.Fatalf("call add_client: %v", err)
	}

	out, err := runCLI(t, globals, "call", "get_enabled_input_method_list", "target_user="+self)
	if err != nil {
		t.Fatalf("call get_enabled_input_method_list: %v", err)
	}
	var listed struct {
		Value []inputmethod.InputMethodInfo `json:"value"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(listed.Value) != 1 || listed.Value[0].ID != "org.example.latin/.LatinIME" {
		t.Errorf("listed = %+v", listed.Value)
	}

	out, err = runCLI(t, globals, "call", "--raw", "is_ime_trace_enabled")
	if err != nil {
		t.Fatalf("call --raw: %v", err)
	}
	if !strings.Contains(out, `"value"`) || !strings.Contains(out, "false") {
		t.Errorf("diagnostic output = %q", out)
	}

	out, err = runCLI(t, globals, "call", "--host", "local_is_ime_window_visible")
	if err != nil {
		t.Fatalf("call --host: %v", err)
	}
	if !strings.Contains(out, `"value": false`) {
		t.Errorf("local call output = %q", out)
	}

	out, err = runCLI(t, globals, "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status imapi.Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decoding status %q: %v", out, err)
	}
	if status.Mode != "multi-user" || len(status.Users) != 1 || status.Users[0].Clients != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestHostEvents(t *testing.T) {
	globals := serveRouter(t)

	tests := []struct {
		args    []string
		wantErr string
	}{
		{args: []string{"boot-phase", "activity-manager-ready"}},
		{args: []string{"boot-phase", "1000"}},
		{args: []string{"unlocking", "10"}},
		{args: []string{"switching", "0", "10"}},
		{args: []string{"--no-wait", "stopping", "10"}},
		{args: []string{"sync"}},
		{args: []string{"boot-phase", "soon"}, wantErr: "invalid boot phase"},
		{args: []string{"starting", "-1"}, wantErr: "invalid user"},
		{args: []string{"switching", "0"}, wantErr: "takes 2 argument(s)"},
		{args: []string{"rebooting"}, wantErr: "unknown host event"},
		{args: nil, wantErr: "usage"},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			_, err := runCLI(t, globals, append([]string{"host"}, test.args...)...)
			switch {
			case test.wantErr == "" && err != nil:
				t.Errorf("host %v = %v", test.args, err)
			case test.wantErr != "" && (err == nil || !strings.Contains(err.Error(), test.wantErr)):
				t.Errorf("host %v = %v, want error containing %q", test.args, err, test.wantErr)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := runCLI(t, nil); err == nil || !strings.Contains(err.Error(), "no command") {
		t.Errorf("no command = %v", err)
	}
	if _, err := runCLI(t, nil, "reboot"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unknown command = %v", err)
	}
	if _, err := runCLI(t, nil, "status", "extra"); err == nil {
		t.Error("status with arguments succeeded")
	}
	if _, err := runCLI(t, nil, "call"); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("call without action = %v", err)
	}
	missing := []string{"--client-socket", filepath.Join(t.TempDir(), "absent.sock"), "--timeout", "1s"}
	if _, err := runCLI(t, missing, "status"); err == nil || !strings.Contains(err.Error(), "querying status") {
		t.Errorf("status against missing socket = %v", err)
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{
		"client=app-1",
		"display=2",
		"allow_implicit=true",
		"where=",
		`label="42"`,
		`soft_input={"client":"app-1","flags":3}`,
		`subtypes=[{"id":7,"locale":"de-DE"}]`,
		"ratio=1.5",
	})
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	want := map[string]any{
		"client":         "app-1",
		"display":        int64(2),
		"allow_implicit": true,
		"where":          "",
		"label":          "42",
		"soft_input":     map[string]any{"client": "app-1", "flags": int64(3)},
		"subtypes":       []any{map[string]any{"id": int64(7), "locale": "de-DE"}},
		"ratio":          "1.5",
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("parseFields =\n%#v\nwant\n%#v", fields, want)
	}

	for _, bad := range [][]string{{"novalue"}, {"=x"}, {"a=1", "a=2"}, {"a={broken"}} {
		if _, err := parseFields(bad); err == nil {
			t.Errorf("parseFields(%q) succeeded", bad)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rendered := renderStatus(imapi.Status{
		Mode:           "multi-user",
		Version:        "1.2.0 (abc1234, unknown)",
		UptimeSeconds:  3725,
		CatalogDigest:  "0123456789abcdef0123456789abcdef",
		CatalogMethods: 3,
		Users: []inputmethod.Snapshot{
			{User: 0, StartedAt: started, Clients: 2, CurrentMethod: "org.example.latin/.LatinIME", Unlocked: true, Interactive: true},
			{User: 10, StartedAt: started, CurrentMethod: "org.example.pen/.PenIME", Interactive: false, Tracing: true},
		},
	})
	for _, want := range []string{
		"multi-user", "1h2m5s", "3 methods (0123456789abcdef)",
		"USER", "org.example.latin/.LatinIME", "unlocked", "idle,tracing", "2026-10-01T12:00:00Z",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered status missing %q:\n%s", want, rendered)
		}
	}

	empty := renderStatus(imapi.Status{Mode: "legacy"})
	if !strings.Contains(empty, "no registered users") {
		t.Errorf("empty status:\n%s", empty)
	}
}
