// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/imrouter/lib/codec"
	"github.com/bureau-foundation/imrouter/lib/testutil"
)

func TestClientCall(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("add", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			A int `cbor:"a"`
			B int `cbor:"b"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]int{"sum": request.A + request.B}, nil
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	if client.SocketPath() != socketPath {
		t.Errorf("SocketPath() = %q", client.SocketPath())
	}
	var result struct {
		Sum int `cbor:"sum"`
	}
	if err := client.Call(context.Background(), "add", map[string]any{"a": 2, "b": 40}, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.Sum != 42 {
		t.Errorf("sum = %d, want 42", result.Sum)
	}
}

func TestClientCallNilResult(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("data", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]string{"ignored": "yes"}, nil
	})
	server.Handle("empty", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	if err := client.Call(context.Background(), "data", nil, nil); err != nil {
		t.Errorf("Call with nil result: %v", err)
	}
	result := map[string]string{"untouched": "true"}
	if err := client.Call(context.Background(), "empty", nil, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result["untouched"] != "true" {
		t.Errorf("result modified by empty response: %v", result)
	}
}

func TestClientCallServiceError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, WithCode(errors.New("no instance for user 12"), "unregistered_user")
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	err := client.Call(context.Background(), "fail", nil, nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if serviceErr.Action != "fail" || serviceErr.Code != "unregistered_user" || serviceErr.Message != "no instance for user 12" {
		t.Errorf("ServiceError = %+v", serviceErr)
	}

	err = client.Call(context.Background(), "missing", nil, nil)
	if !errors.As(err, &serviceErr) || serviceErr.Code != CodeUnknownAction {
		t.Errorf("unknown action error = %v, want code %s", err, CodeUnknownAction)
	}
}

func TestClientCallConnectionRefused(t *testing.T) {
	client := NewServiceClient(testSocketPath(t))
	err := client.Call(context.Background(), "status", nil, nil)
	if err == nil {
		t.Fatal("expected error for missing socket")
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		t.Errorf("connection failure reported as *ServiceError: %v", err)
	}
}

func TestClientCallCancelled(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	release := make(chan struct{})
	server.Handle("hang", func(ctx context.Context, raw []byte) (any, error) {
		<-release
		return nil, nil
	})
	startServer(t, server)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- NewServiceClient(socketPath).Call(ctx, "hang", nil, nil)
	}()
	cancel()
	if err := testutil.RequireReceive(t, result, 5*time.Second, "cancelled call"); !errors.Is(err, context.Canceled) {
		t.Errorf("Call = %v, want context.Canceled", err)
	}
}

func TestClientConcurrentCalls(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			N int `cbor:"n"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]int{"n": request.N}, nil
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var result struct {
				N int `cbor:"n"`
			}
			if err := client.Call(context.Background(), "echo", map[string]any{"n": i}, &result); err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			if result.N != i {
				t.Errorf("call %d: got %d", i, result.N)
			}
		}()
	}
	wg.Wait()
}
