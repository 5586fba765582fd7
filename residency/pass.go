package residency

import (
	"context"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
)

// residentDevice is the narrow device slice the residency pass needs: make
// resident plus the evict call the free-residency FSM drives.
type residentDevice interface {
	MakeResident(ctx context.Context, objects []hal.Pageable) error
	Evict(objects []hal.Pageable) error
}

// Completion is the software fence the residency pass hands back in place
// of the asynchronous EnqueueMakeResident this module's device abstraction
// does not depend on (see hal.Device.MakeResident's doc comment). The
// FrameGraph attaches it to the frame's fence collection; submission queues
// wait on it before executing any command list for this frame (
// step 4).
type Completion struct {
	done chan error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan error, 1)}
}

// Wait blocks until the make-resident call this Completion represents has
// finished, or ctx is cancelled first.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPass runs one frame's residency pass end to end:
//
//  1. collect every currently-evicted object flagged NeedsResidencyThisFrame;
//  2. dispatch the make-resident call on a worker job, simulating the
//     asynchronous EnqueueMakeResident contract the device abstraction
//     doesn't expose, and return a Completion immediately;
//  3. if the device call reports out-of-memory, run the free-residency FSM
//     (evict then delete, or the reverse per budget.PreferEviction) and
//     retry the same make-resident call for the page-faulted objects;
//  4. if budget still cannot be met, the Completion resolves with
//     ErrBudgetExceeded instead of blocking the caller forever.
//
// RunPass never blocks the caller; all device interaction happens on pool.
func RunPass(ctx context.Context, pool *jobs.Pool, dev residentDevice, r *Registry, budget Budget) *Completion {
	completion := newCompletion()

	pool.Submit(func() {
		completion.done <- runPassSync(ctx, dev, r, budget)
	})

	return completion
}

func runPassSync(ctx context.Context, dev residentDevice, r *Registry, budget Budget) error {
	needed := r.snapshotNeedingResidency()
	if len(needed) == 0 {
		return nil
	}

	pageables := make([]hal.Pageable, len(needed))
	for i, obj := range needed {
		pageables[i] = obj.Pageable
	}

	err := dev.MakeResident(ctx, pageables)
	if err == nil {
		markAllResident(r, needed)
		return nil
	}

	// Out-of-memory (or any other MakeResident failure): free budget and
	// retry once. A second failure after a full evict+delete pass is
	// reported as-is rather than looping - an unmeetable budget propagates an
	// out-of-memory error rather than retrying indefinitely.
	if fsmErr := RunFreeResidencyFSM(r, dev, budget); fsmErr != nil {
		return fsmErr
	}

	if err := dev.MakeResident(ctx, pageables); err != nil {
		return err
	}
	markAllResident(r, needed)
	return nil
}

func markAllResident(r *Registry, objs []*PageableObject) {
	for _, obj := range objs {
		r.markResident(obj.ID, true)
	}
}
