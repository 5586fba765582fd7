package jobs

import "sync"

// JobGroup batches a set of coarse CPU jobs - builder collection, per-module
// recording - submitted together and awaited together. It does not own a
// Pool; callers create a new JobGroup for each batch (there is no Reset).
type JobGroup struct {
	pool *Pool
	wg   sync.WaitGroup
}

// NewJobGroup creates a group that dispatches onto pool.
func NewJobGroup(pool *Pool) *JobGroup {
	return &JobGroup{pool: pool}
}

// AddJob submits fn to the pool, tracking it as part of this group.
func (g *JobGroup) AddJob(fn func()) {
	if fn == nil {
		return
	}
	g.wg.Add(1)
	g.pool.Submit(func() {
		defer g.wg.Done()
		fn()
	})
}

// ExecuteJobs blocks until every job added to this group has completed. The
// calling goroutine is not idle while waiting: it steals and runs other
// pool work in between checks, so a compilation stage's own worker capacity
// still contributes while the caller waits on completion signals it can't
// observe any other way.
func (g *JobGroup) ExecuteJobs() {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return
		default:
			if !g.pool.TryStealAndRun() {
				<-done
				return
			}
		}
	}
}

// Notifier is fired once the async jobs a JobGroup dispatched have all
// completed. A waiter polls Fired() inside its own busy-wait loop (calling
// Pool.TryStealAndRun between checks) rather than blocking outright, per
// the cooperative-scheduling model the FrameGraph pipeline uses throughout.
type Notifier struct {
	done chan struct{}
}

// Fired reports whether the underlying jobs have all completed.
func (n *Notifier) Fired() bool {
	select {
	case <-n.done:
		return true
	default:
		return false
	}
}

// Wait blocks until Fired() would return true.
func (n *Notifier) Wait() { <-n.done }

// ExecuteJobsAsync dispatches every job added to this group and returns
// immediately with a Notifier the caller can poll later, instead of
// blocking the calling goroutine now.
func (g *JobGroup) ExecuteJobsAsync() *Notifier {
	n := &Notifier{done: make(chan struct{})}
	go func() {
		g.wg.Wait()
		close(n.done)
	}()
	return n
}
