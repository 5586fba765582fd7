package submit

import (
	"context"
	"fmt"

	"github.com/brawler/framegraph/hal"
)

// submitInOrder runs on the dedicated submission thread: it walks recorded
// modules in frame order (the axis packExecutionModules produced), issuing
// ExecuteCommandLists and a Signal per module, and - for modules the
// compiler marked as sync points - a Wait against every other queue's
// latest signaled value first. Waiting on "every other queue's latest
// value" rather than a value threaded through from compile time is correct
// because submission happens strictly in frame order: by the time a
// sync-point module is reached, every queue's lastSignal already reflects
// everything that module's barriers are meant to follow.
func (s *Submitter) submitInOrder(ctx context.Context, recorded []*recordedModule) submitResult {
	for _, rec := range recorded {
		if rec == nil {
			return submitResult{err: fmt.Errorf("submit: a module failed to record")}
		}

		qs := s.queues[rec.queue]

		if rec.isSyncPoint {
			for q := 0; q < hal.NumQueueKinds; q++ {
				if hal.QueueKind(q) == rec.queue {
					continue
				}
				other := s.queues[q]
				if other.lastSignal == 0 {
					continue
				}
				if err := qs.queue.Wait(other.fence, other.lastSignal); err != nil {
					return submitResult{err: fmt.Errorf("submit: cross-queue wait on %s: %w", hal.QueueKind(q), err)}
				}
			}
		}

		qs.queue.ExecuteCommandLists([]hal.CommandList{rec.list})

		qs.nextValue++
		if err := qs.queue.Signal(qs.fence, qs.nextValue); err != nil {
			return submitResult{err: fmt.Errorf("submit: signal %s fence: %w", rec.queue, err)}
		}
		qs.lastSignal = qs.nextValue
	}

	var stats SubmissionStats
	for q := 0; q < hal.NumQueueKinds; q++ {
		qs := s.queues[q]
		stats.Queues[q] = QueueStats{
			LastSubmitted: qs.lastSignal,
			LastCompleted: qs.fence.CompletedValue(),
		}
	}
	return submitResult{stats: stats}
}

// presentFrame runs the end-of-frame presentation step on the dedicated
// submission thread, after the frame's last module has been submitted: the
// presentation queue waits on graphics (always) and compute (if the frame
// used it), every registered present callback runs - concurrently when
// more than one is registered - and the presentation fence signals frame
// completion. Callback errors are collected across all callbacks; the
// fence still signals before the joined error is surfaced, so the frame
// ring never deadlocks on a failed swapchain.
func (s *Submitter) presentFrame(computeUsed bool) error {
	result := s.thread.Call(func() any {
		if err := s.ensurePresentQueue(); err != nil {
			return presentResult{err: err}
		}
		graphics := s.queues[hal.QueueGraphics]
		if graphics.lastSignal != 0 {
			if err := s.presentQueue.Wait(graphics.fence, graphics.lastSignal); err != nil {
				return presentResult{err: fmt.Errorf("submit: present wait on graphics: %w", err)}
			}
		}
		if computeUsed {
			compute := s.queues[hal.QueueCompute]
			if compute.lastSignal != 0 {
				if err := s.presentQueue.Wait(compute.fence, compute.lastSignal); err != nil {
					return presentResult{err: fmt.Errorf("submit: present wait on compute: %w", err)}
				}
			}
		}

		callbackErr := s.presentation.invokeAll()

		s.presentValue++
		if err := s.presentQueue.Signal(s.presentFence, s.presentValue); err != nil {
			return presentResult{err: fmt.Errorf("submit: signal presentation fence: %w", err)}
		}
		if callbackErr != nil {
			return presentResult{err: fmt.Errorf("submit: present callbacks: %w", callbackErr)}
		}
		return presentResult{}
	}).(presentResult)
	return result.err
}

// ensurePresentQueue lazily creates the dedicated presentation direct queue
// and its fence. Runs on the submission thread only.
func (s *Submitter) ensurePresentQueue() error {
	if s.presentQueue != nil {
		return nil
	}
	queue, err := s.dev.CreateQueue(hal.QueueGraphics)
	if err != nil {
		return fmt.Errorf("submit: create presentation queue: %w", err)
	}
	fence, err := s.dev.CreateFence(0)
	if err != nil {
		return fmt.Errorf("submit: create presentation fence: %w", err)
	}
	s.presentQueue = queue
	s.presentFence = fence
	return nil
}

// PresentFence returns the fence the presentation step signals frame
// completion on, or nil if no frame has presented yet.
func (s *Submitter) PresentFence() hal.Fence { return s.presentFence }

type presentResult struct{ err error }
