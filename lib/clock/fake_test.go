// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
	if got := Since(clock, epoch); got != 5*time.Second {
		t.Errorf("Since(epoch) = %v, want 5s", got)
	}
}

func TestFakeClockSet(t *testing.T) {
	clock := Fake(epoch)
	later := epoch.Add(time.Hour)
	clock.Set(later)
	if got := clock.Now(); !got.Equal(later) {
		t.Fatalf("Now() after Set = %v, want %v", got, later)
	}
}

func TestFakeClockAdvanceNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Advance(-1s) did not panic")
		}
	}()
	Fake(epoch).Advance(-time.Second)
}

func TestFakeClockConcurrentAdvance(t *testing.T) {
	clock := Fake(epoch)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
		}()
	}
	wg.Wait()
	if got := Since(clock, epoch); got != 50*time.Millisecond {
		t.Errorf("elapsed = %v, want 50ms", got)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	clock := Real()
	first := clock.Now()
	second := clock.Now()
	if second.Before(first) {
		t.Errorf("real clock went backwards: %v then %v", first, second)
	}
}
