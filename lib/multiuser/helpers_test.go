// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/catalog"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/memory"
	"github.com/bureau-foundation/imrouter/lib/testutil"
)

const (
	testLatin inputmethod.MethodID = "org.example.latin/.LatinIME"
	testPen   inputmethod.MethodID = "org.example.pen/.PenIME"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	methods, err := catalog.New([]inputmethod.InputMethodInfo{
		{
			ID:               testLatin,
			Label:            "Latin",
			System:           true,
			DefaultSubtypeID: 1,
			Subtypes:         []inputmethod.Subtype{{ID: 1, Locale: "en-US", Mode: "keyboard"}},
		},
		{
			ID:               testPen,
			Label:            "Pen",
			SupportsStylus:   true,
			DefaultSubtypeID: 10,
			Subtypes:         []inputmethod.Subtype{{ID: 10, Locale: "en-US", Mode: "handwriting"}},
		},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return methods
}

// callerContext returns a context whose resolved caller belongs to
// user.
func callerContext(user inputmethod.UserID) context.Context {
	uid := uint32(user)*inputmethod.PerUserRange + 10123
	return WithCaller(context.Background(), inputmethod.CallerForUID(uid, 4242))
}

// eventLog records lifecycle effects observed by recordingInstances, in
// order, across all users.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recordingInstance wraps the in-memory implementation and records the
// lifecycle hooks the router drives.
type recordingInstance struct {
	*memory.Instance
	user     inputmethod.UserID
	log      *eventLog
	startErr error
	starts   atomic.Int32
}

func (r *recordingInstance) Start(ctx context.Context) error {
	r.starts.Add(1)
	r.log.add("start %d", r.user)
	if r.startErr != nil {
		return r.startErr
	}
	return r.Instance.Start(ctx)
}

func (r *recordingInstance) ScheduleUserSwitch(ctx context.Context, user inputmethod.UserID, prior *inputmethod.ClientID) error {
	if prior == nil {
		r.log.add("switch %d prior=nil", user)
	} else {
		r.log.add("switch %d prior=%s", user, *prior)
	}
	return r.Instance.ScheduleUserSwitch(ctx, user, prior)
}

func (r *recordingInstance) NotifySystemUnlocked(ctx context.Context, user inputmethod.UserID) error {
	r.log.add("unlock %d", user)
	return r.Instance.NotifySystemUnlocked(ctx, user)
}

// testFactory builds recordingInstances and counts constructions.
type testFactory struct {
	catalog *catalog.Catalog
	log     *eventLog

	// gate, when non-nil, blocks every construction until closed.
	gate chan struct{}

	mu            sync.Mutex
	constructions map[inputmethod.UserID]int
	instances     map[inputmethod.UserID]*recordingInstance
	failConstruct map[inputmethod.UserID]error
	failStart     map[inputmethod.UserID]error
}

func newTestFactory(t *testing.T) *testFactory {
	return &testFactory{
		catalog:       testCatalog(t),
		log:           &eventLog{},
		constructions: make(map[inputmethod.UserID]int),
		instances:     make(map[inputmethod.UserID]*recordingInstance),
		failConstruct: make(map[inputmethod.UserID]error),
		failStart:     make(map[inputmethod.UserID]error),
	}
}

func (f *testFactory) NewInstance(_ context.Context, host inputmethod.HostContext, user inputmethod.UserID) (inputmethod.Instance, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructions[user]++
	if err := f.failConstruct[user]; err != nil {
		return nil, err
	}
	instance := &recordingInstance{
		Instance: memory.New(user, f.catalog, memory.Options{Logger: host.Logger, Clock: host.Clock}),
		user:     user,
		log:      f.log,
		startErr: f.failStart[user],
	}
	f.instances[user] = instance
	return instance, nil
}

func (f *testFactory) constructionsFor(user inputmethod.UserID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.constructions[user]
}

func (f *testFactory) instance(user inputmethod.UserID) *recordingInstance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instances[user]
}

// newTestRegistry returns a registry backed by factory plus its
// metrics, registered on a private Prometheus registry.
func newTestRegistry(factory *testFactory) (*Registry, *Metrics) {
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewRegistry(factory, inputmethod.HostContext{Logger: testLogger()}, testLogger(), metrics), metrics
}

// runCoordinator starts coordinator's worker and stops it when the test
// ends.
func runCoordinator(t *testing.T, coordinator *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		coordinator.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, stopped, 5*time.Second, "coordinator worker exit")
	})
}

func syncCoordinator(t *testing.T, coordinator *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := coordinator.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
