package payments

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDeleter struct {
	calls  atomic.Int64
	wiped  atomic.Int64
	cutoff atomic.Value
}

func (f *fakeDeleter) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls.Add(1)
	f.cutoff.Store(cutoff)
	return f.wiped.Load(), nil
}

func TestSweeperRunsAndStops(t *testing.T) {
	del := &fakeDeleter{}
	del.wiped.Store(3)
	s := NewSweeper(del, time.Hour, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for del.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}

	cutoff, _ := del.cutoff.Load().(time.Time)
	if age := time.Since(cutoff); age < 55*time.Minute || age > 65*time.Minute {
		t.Fatalf("cutoff %v is not about one TTL in the past", cutoff)
	}
}
