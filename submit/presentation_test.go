package submit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
)

func TestPresentationManager_InvokeAllRunsEveryCallbackAndJoinsErrors(t *testing.T) {
	pm := NewPresentationManager()

	errA := errors.New("swapchain a lost")
	errB := errors.New("swapchain b lost")
	var ran atomic.Int32

	pm.RegisterPresentCallback(func() error { ran.Add(1); return errA })
	pm.RegisterPresentCallback(func() error { ran.Add(1); return nil })
	pm.RegisterPresentCallback(func() error { ran.Add(1); return errB })

	err := pm.invokeAll()
	if ran.Load() != 3 {
		t.Fatalf("ran %d callbacks, want 3 (a failing callback must not stop the others)", ran.Load())
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("joined error missing a member: %v", err)
	}
}

func TestPresentationManager_UnregisterStopsInvocation(t *testing.T) {
	pm := NewPresentationManager()
	var ran atomic.Int32
	id := pm.RegisterPresentCallback(func() error { ran.Add(1); return nil })
	pm.UnregisterPresentCallback(id)
	if err := pm.invokeAll(); err != nil {
		t.Fatalf("invokeAll: %v", err)
	}
	if ran.Load() != 0 {
		t.Errorf("unregistered callback ran %d times", ran.Load())
	}
}

// presentingFrame builds a single-module frame whose one graphics pass
// requests presentation during recording.
func presentingFrame() *framegraph.CompiledFrame {
	bundle := framegraph.NewRenderPassBundle()
	bundle.ID = arena.NewBundleID(0, 0)
	bundle.AddRenderPass(&framegraph.RenderPass{
		Queue: hal.QueueGraphics,
		Name:  "composite",
		Record: func(ctx *framegraph.RecordContext) {
			ctx.Present()
		},
	})
	module := &framegraph.ExecutionModule{
		ID:         arena.NewExecutionModuleID(0, 0),
		Bundles:    []arena.BundleID{bundle.ID},
		UsedQueues: 1 << uint(hal.QueueGraphics),
	}
	return &framegraph.CompiledFrame{
		Bundles: []*framegraph.RenderPassBundle{bundle},
		Modules: []*framegraph.ExecutionModule{module},
		Events:  &framegraph.GPUResourceEventManager{},
	}
}

func TestSubmitter_PresentRequestRunsCallbacksAfterLastModule(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	pm := NewPresentationManager()
	var presented atomic.Int32
	pm.RegisterPresentCallback(func() error { presented.Add(1); return nil })
	sub.SetPresentationManager(pm)

	if _, err := sub.Submit(context.Background(), presentingFrame(), fakeResolver{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if presented.Load() != 1 {
		t.Fatalf("present callbacks ran %d times, want 1", presented.Load())
	}

	// The presentation queue waited on the graphics fence's frame value and
	// signalled the presentation fence to mark frame completion.
	gq := dev.queues[hal.QueueGraphics]
	foundWait := false
	for _, w := range gq.waits {
		if w.value == 1 {
			foundWait = true
		}
	}
	if !foundWait {
		t.Error("presentation queue did not wait on the graphics queue's frame signal")
	}
	if sub.PresentFence() == nil || sub.PresentFence().CompletedValue() != 1 {
		t.Error("presentation fence did not signal frame completion")
	}
}

func TestSubmitter_PresentCallbackErrorSurfacesAfterFenceSignal(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	pm := NewPresentationManager()
	lost := errors.New("device removed during present")
	pm.RegisterPresentCallback(func() error { return lost })
	sub.SetPresentationManager(pm)

	_, err = sub.Submit(context.Background(), presentingFrame(), fakeResolver{})
	if !errors.Is(err, lost) {
		t.Fatalf("Submit error = %v, want the callback's error", err)
	}
	// Cleanup-before-rethrow: the fence still signalled so the frame ring
	// can retire the frame.
	if sub.PresentFence() == nil || sub.PresentFence().CompletedValue() != 1 {
		t.Error("presentation fence must signal even when a callback fails")
	}
}

func TestSubmitter_NoPresentRequestSkipsCallbacks(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	pm := NewPresentationManager()
	var presented atomic.Int32
	pm.RegisterPresentCallback(func() error { presented.Add(1); return nil })
	sub.SetPresentationManager(pm)

	bundle := framegraph.NewRenderPassBundle()
	bundle.ID = arena.NewBundleID(0, 0)
	bundle.AddRenderPass(&framegraph.RenderPass{Queue: hal.QueueGraphics, Name: "offscreen"})
	module := &framegraph.ExecutionModule{
		Bundles:    []arena.BundleID{bundle.ID},
		UsedQueues: 1 << uint(hal.QueueGraphics),
	}
	frame := &framegraph.CompiledFrame{
		Bundles: []*framegraph.RenderPassBundle{bundle},
		Modules: []*framegraph.ExecutionModule{module},
		Events:  &framegraph.GPUResourceEventManager{},
	}

	if _, err := sub.Submit(context.Background(), frame, fakeResolver{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if presented.Load() != 0 {
		t.Errorf("callbacks ran %d times for a frame that never called Present", presented.Load())
	}
}
