package jobs

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestJobGroup_ExecuteJobsWaitsForAll(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var counter atomic.Int32
	g := NewJobGroup(pool)
	for i := 0; i < 50; i++ {
		g.AddJob(func() { counter.Add(1) })
	}
	g.ExecuteJobs()

	if counter.Load() != 50 {
		t.Errorf("counter = %d, want 50", counter.Load())
	}
}

func TestJobGroup_ExecuteJobsAsyncFiresNotifier(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var counter atomic.Int32
	g := NewJobGroup(pool)
	g.AddJob(func() { counter.Add(1) })
	g.AddJob(func() { counter.Add(1) })

	n := g.ExecuteJobsAsync()
	deadline := time.After(time.Second)
	for !n.Fired() {
		select {
		case <-deadline:
			t.Fatal("notifier never fired")
		default:
			pool.TryStealAndRun()
		}
	}
	if counter.Load() != 2 {
		t.Errorf("counter = %d, want 2", counter.Load())
	}
}

func TestPool_TryStealAndRunFalseWhenEmpty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()
	if pool.TryStealAndRun() {
		t.Error("TryStealAndRun on an empty pool returned true")
	}
}
