// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// recordingTB captures Fatalf instead of stopping the test. Fatalf
// panics so helpers do not continue past the failure.
type recordingTB struct {
	message string
}

type fatalSignal struct{}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(fatalSignal{})
}

func expectFatal(t *testing.T, run func(tb *recordingTB)) string {
	t.Helper()
	tb := &recordingTB{}
	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				if _, ok := recovered.(fatalSignal); !ok {
					panic(recovered)
				}
			}
		}()
		run(tb)
	}()
	if tb.message == "" {
		t.Fatal("expected helper to fail the test")
	}
	return tb.message
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	message := expectFatal(t, func(tb *recordingTB) {
		RequireReceive(tb, make(chan int), time.Millisecond, "waiting for %s", "worker")
	})
	if !strings.Contains(message, "waiting for worker") {
		t.Errorf("timeout message = %q", message)
	}

	closed := make(chan int)
	close(closed)
	message = expectFatal(t, func(tb *recordingTB) {
		RequireReceive(tb, closed, time.Second)
	})
	if !strings.Contains(message, "closed") {
		t.Errorf("closed message = %q", message)
	}
}

func TestRequireSendAndClosed(t *testing.T) {
	ch := make(chan string, 1)
	RequireSend(t, ch, "hello", time.Second, "send")
	if got := <-ch; got != "hello" {
		t.Errorf("received %q", got)
	}

	done := make(chan struct{})
	close(done)
	RequireClosed(t, done, time.Second, "done")

	expectFatal(t, func(tb *recordingTB) {
		RequireClosed(tb, make(chan struct{}), time.Millisecond, "never closes")
	})
	expectFatal(t, func(tb *recordingTB) {
		RequireSend(tb, make(chan int), 1, time.Millisecond)
	})
}

func TestSocketDirIsShort(t *testing.T) {
	directory := SocketDir(t)
	if !strings.HasPrefix(directory, "/tmp/imrouter-test-") {
		t.Errorf("SocketDir() = %q", directory)
	}
	if len(directory+"/client.sock") > 108 {
		t.Errorf("socket path too long: %d bytes", len(directory+"/client.sock"))
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "catalog.jsonc", "{}")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(content) != "{}" {
		t.Errorf("content = %q", content)
	}
}

func TestUniqueID(t *testing.T) {
	first, second := UniqueID("client"), UniqueID("client")
	if first == second {
		t.Errorf("UniqueID returned %q twice", first)
	}
	if !strings.HasPrefix(first, "client-") {
		t.Errorf("UniqueID = %q", first)
	}
}
