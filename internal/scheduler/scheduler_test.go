package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunKeepsOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	results := Run(context.Background(), items, 2, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})
	for i, n := range items {
		if results[i] != n*10 {
			t.Errorf("result %d: expected %d, got %d", i, n*10, results[i])
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 20)
	Run(context.Background(), items, 3, func(_ context.Context, _ int) struct{} {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	})
	if p := peak.Load(); p > 3 {
		t.Errorf("expected at most 3 concurrent workers, saw %d", p)
	}
}

func TestRunUnboundedStartsAll(t *testing.T) {
	const n = 6
	var started atomic.Int32
	release := make(chan struct{})
	done := make(chan []error)
	go func() {
		done <- Run(context.Background(), make([]int, n), 0, func(_ context.Context, _ int) error {
			started.Add(1)
			<-release
			return nil
		})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for started.Load() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := started.Load(); got != n {
		t.Fatalf("expected %d workers in flight, got %d", n, got)
	}
	close(release)
	<-done
}

func TestRunDoesNotShortCircuit(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	results := Run(context.Background(), []int{0, 1, 2, 3}, 1, func(_ context.Context, i int) error {
		calls.Add(1)
		if i == 0 {
			return boom
		}
		return nil
	})
	if calls.Load() != 4 {
		t.Errorf("expected all 4 items to run, got %d", calls.Load())
	}
	if !errors.Is(results[0], boom) || results[1] != nil {
		t.Errorf("unexpected results %v", results)
	}
}

func TestRunEmpty(t *testing.T) {
	if got := Run(context.Background(), []int(nil), 4, func(context.Context, int) int { return 1 }); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}
