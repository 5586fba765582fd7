// Package submit turns a compiled FrameGraph frame into recorded command
// lists and submits them in execution-module order across the three command
// queues, matching cross-queue fence waits to the order queues were first
// used within the frame. It owns the single dedicated
// submission thread that guarantees fence signals happen in frame order,
// even though recording itself is parallelized across a job pool.
package submit

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
	"github.com/brawler/framegraph/internal/thread"
)

// ResourceResolver maps a resource ID the FrameGraph core tracks to the
// concrete hal.Resource the recorded command list operates on, and to the
// opaque handle the barrier schedule keys barriers by.
type ResourceResolver interface {
	Resolve(arena.ResourceID) hal.Resource
	HandleOf(arena.ResourceID) hal.ResourceHandle
}

// BarrierResolver is optionally implemented by a ResourceResolver whose
// tracking handles differ from the backing resources' own (the resource
// registry's, whose transients get their backing only after compilation).
// Each scheduled barrier passes through it immediately before recording.
type BarrierResolver interface {
	ResolveBarrier(hal.Barrier) hal.Barrier
}

// QueueStats is a cheap per-queue diagnostic: the last fence value this
// queue submitted and the last one the GPU is known to have completed.
type QueueStats struct {
	LastSubmitted uint64
	LastCompleted uint64
}

// SubmissionStats reports QueueStats for every queue kind, refreshed after
// each Submit call.
type SubmissionStats struct {
	Queues [hal.NumQueueKinds]QueueStats
}

type queueState struct {
	queue      hal.CommandQueue
	fence      hal.Fence
	nextValue  uint64
	lastSignal uint64
}

// Submitter owns one command queue and one fence per queue kind, plus one
// dedicated submission thread, and drives recording plus submission of
// compiled frames against a hal.Device.
type Submitter struct {
	dev    hal.Device
	pool   *jobs.Pool
	thread *thread.Thread

	queues [hal.NumQueueKinds]*queueState

	allocators [hal.NumQueueKinds][]hal.CommandAllocator
	lists      [hal.NumQueueKinds][]hal.CommandList

	// presentation is consulted when a recorded pass calls Present; nil
	// means presentation requests are ignored. The dedicated presentation
	// queue and its fence are created lazily on first presented frame.
	presentation *PresentationManager
	presentQueue hal.CommandQueue
	presentFence hal.Fence
	presentValue uint64
}

// NewSubmitter creates a queue and fence for every queue kind and starts the
// dedicated submission thread.
func NewSubmitter(dev hal.Device, pool *jobs.Pool) (*Submitter, error) {
	s := &Submitter{dev: dev, pool: pool, thread: thread.New()}

	for q := 0; q < hal.NumQueueKinds; q++ {
		kind := hal.QueueKind(q)
		queue, err := dev.CreateQueue(kind)
		if err != nil {
			return nil, fmt.Errorf("submit: create %s queue: %w", kind, err)
		}
		fence, err := dev.CreateFence(0)
		if err != nil {
			return nil, fmt.Errorf("submit: create %s fence: %w", kind, err)
		}
		s.queues[q] = &queueState{queue: queue, fence: fence}
	}
	return s, nil
}

// Close stops the submission thread. Callers must ensure every in-flight
// frame has retired before calling Close.
func (s *Submitter) Close() { s.thread.Stop() }

// SetPresentationManager installs the manager whose callbacks run when a
// frame requests presentation. Call once at init, before the first Submit.
func (s *Submitter) SetPresentationManager(pm *PresentationManager) { s.presentation = pm }

// QueueFence returns the fence used for queue kind q, for callers (the
// frame-in-flight ring) that need to wait on a frame's prior use of that
// queue before reusing its allocator.
func (s *Submitter) QueueFence(q hal.QueueKind) hal.Fence { return s.queues[q].fence }

// allocatorFor returns (creating if necessary) the Nth command allocator and
// list for queue kind q - one pair per concurrently-recorded module on that
// queue within a single Submit call.
func (s *Submitter) allocatorFor(q hal.QueueKind, slot int) (hal.CommandAllocator, hal.CommandList, error) {
	for len(s.allocators[q]) <= slot {
		alloc, err := s.dev.CreateCommandAllocator(q)
		if err != nil {
			return nil, nil, fmt.Errorf("submit: create allocator: %w", err)
		}
		list, err := s.dev.CreateCommandList(alloc, q)
		if err != nil {
			return nil, nil, fmt.Errorf("submit: create command list: %w", err)
		}
		if err := list.Close(); err != nil {
			return nil, nil, fmt.Errorf("submit: close fresh command list: %w", err)
		}
		s.allocators[q] = append(s.allocators[q], alloc)
		s.lists[q] = append(s.lists[q], list)
	}
	return s.allocators[q][slot], s.lists[q][slot], nil
}

// recordedModule is one module's finished command list plus the queue it
// targets, ready to hand to the submission thread in module order.
type recordedModule struct {
	queue       hal.QueueKind
	list        hal.CommandList
	isSyncPoint bool
}

// Submit records frame's execution modules (in parallel across queues, via
// the job pool) then hands them to the dedicated submission thread in
// module order, so ExecuteCommandLists calls and fence signals land in the
// exact sequence the compiler produced, even though recording itself is
// not serialized.
func (s *Submitter) Submit(ctx context.Context, frame *framegraph.CompiledFrame, resolver ResourceResolver) (SubmissionStats, error) {
	bundleByID := make(map[arena.BundleID]*framegraph.RenderPassBundle, len(frame.Bundles))
	for _, b := range frame.Bundles {
		bundleByID[b.ID] = b
	}

	// Each module may itself span more than one queue (packExecutionModules
	// forces such bundles into a module of their own), so recording can
	// produce more than one recordedModule per module index. recordedByModule
	// keeps those grouped by module so the flattened submission order below
	// can still walk modules strictly in compiled order, which is what lets
	// submitInOrder trust "every other queue's lastSignal" at a sync point.
	recordedByModule := make([][]*recordedModule, len(frame.Modules))
	recErrs := make([][]error, len(frame.Modules))

	var presentRequested atomic.Bool

	group := jobs.NewJobGroup(s.pool)
	var nextSlot [hal.NumQueueKinds]int
	for i, mod := range frame.Modules {
		i, mod := i, mod
		queues := usedQueuesOf(mod)
		recordedByModule[i] = make([]*recordedModule, len(queues))
		recErrs[i] = make([]error, len(queues))
		for j, q := range queues {
			j, q := j, q
			slot := nextSlot[q]
			nextSlot[q]++
			group.AddJob(func() {
				rec, err := s.recordModule(mod, q, slot, bundleByID, frame.Events, resolver, &presentRequested)
				recordedByModule[i][j] = rec
				recErrs[i][j] = err
			})
		}
	}
	group.ExecuteJobs()

	for _, errs := range recErrs {
		for _, err := range errs {
			if err != nil {
				return SubmissionStats{}, err
			}
		}
	}

	var recorded []*recordedModule
	for _, mods := range recordedByModule {
		recorded = append(recorded, mods...)
	}

	result := s.thread.Call(func() any {
		return s.submitInOrder(ctx, recorded)
	}).(submitResult)
	if result.err != nil {
		return result.stats, result.err
	}

	if presentRequested.Load() && s.presentation != nil {
		computeUsed := false
		for _, rec := range recorded {
			if rec.queue == hal.QueueCompute {
				computeUsed = true
				break
			}
		}
		if err := s.presentFrame(computeUsed); err != nil {
			return result.stats, err
		}
	}
	return result.stats, nil
}

type submitResult struct {
	stats SubmissionStats
	err   error
}

// usedQueuesOf returns the distinct queue kinds mod touches, in ascending
// order (graphics, compute, copy).
func usedQueuesOf(mod *framegraph.ExecutionModule) []hal.QueueKind {
	var out []hal.QueueKind
	for q := 0; q < hal.NumQueueKinds; q++ {
		if mod.UsedQueues&(1<<uint(q)) != 0 {
			out = append(out, hal.QueueKind(q))
		}
	}
	return out
}
