package submit

import (
	"context"
	"testing"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
)

type fakeFence struct {
	value uint64
}

func (f *fakeFence) CompletedValue() uint64 { return f.value }
func (f *fakeFence) SignalCPU(v uint64) error {
	f.value = v
	return nil
}
func (f *fakeFence) WaitCPU(ctx context.Context, v uint64) error { return nil }

type fenceWait struct {
	fence *fakeFence
	value uint64
}

type fakeQueue struct {
	kind      hal.QueueKind
	executed  [][]hal.CommandList
	signals   []uint64
	waits     []fenceWait
	fenceSelf *fakeFence
}

func (q *fakeQueue) ExecuteCommandLists(lists []hal.CommandList) {
	q.executed = append(q.executed, lists)
}
func (q *fakeQueue) Signal(fence hal.Fence, value uint64) error {
	q.signals = append(q.signals, value)
	fence.(*fakeFence).value = value
	return nil
}
func (q *fakeQueue) Wait(fence hal.Fence, value uint64) error {
	q.waits = append(q.waits, fenceWait{fence: fence.(*fakeFence), value: value})
	return nil
}
func (q *fakeQueue) Kind() hal.QueueKind { return q.kind }

type fakeAllocator struct{ resets int }

func (a *fakeAllocator) Reset() error { a.resets++; return nil }

type fakeCommandList struct {
	kind     hal.QueueKind
	barriers [][]hal.Barrier
	closed   bool
}

func (l *fakeCommandList) Reset(hal.CommandAllocator) error                                    { l.closed = false; return nil }
func (l *fakeCommandList) Close() error                                                        { l.closed = true; return nil }
func (l *fakeCommandList) ResourceBarrier(b []hal.Barrier)                                     { l.barriers = append(l.barriers, b) }
func (l *fakeCommandList) DiscardResource(hal.Resource)                                        {}
func (l *fakeCommandList) CopyBufferRegion(hal.Resource, uint64, hal.Resource, uint64, uint64) {}
func (l *fakeCommandList) CopyTextureRegion(hal.Resource, uint32, hal.Resource, uint32)        {}
func (l *fakeCommandList) CopyResource(hal.Resource, hal.Resource)                             {}
func (l *fakeCommandList) Draw(uint32, uint32, uint32, uint32)                                 {}
func (l *fakeCommandList) DrawIndexed(uint32, uint32, uint32, int32, uint32)                   {}
func (l *fakeCommandList) Dispatch(uint32, uint32, uint32)                                     {}
func (l *fakeCommandList) ClearRTV(hal.DescriptorHandle, [4]float32)                           {}
func (l *fakeCommandList) ClearDSV(hal.DescriptorHandle, float32, uint8)                       {}
func (l *fakeCommandList) ExecuteIndirect(any, uint32, hal.Resource, uint64, hal.Resource, uint64) {
}
func (l *fakeCommandList) Kind() hal.QueueKind { return l.kind }
func (l *fakeCommandList) Native() any         { return l }

type fakeDevice struct {
	queues [hal.NumQueueKinds]*fakeQueue
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{}
	for q := 0; q < hal.NumQueueKinds; q++ {
		d.queues[q] = &fakeQueue{kind: hal.QueueKind(q)}
	}
	return d
}

func (d *fakeDevice) CreateHeap(hal.HeapDescriptor) (hal.Heap, error) { return nil, nil }
func (d *fakeDevice) CreateCommittedResource(hal.ResourceDescriptor, hal.ResourceState) (hal.Resource, error) {
	return nil, nil
}
func (d *fakeDevice) CreatePlacedResource(hal.Heap, uint64, hal.ResourceDescriptor, hal.ResourceState) (hal.Resource, error) {
	return nil, nil
}
func (d *fakeDevice) GetResourceAllocationInfo(hal.ResourceDescriptor) hal.AllocationInfo {
	return hal.AllocationInfo{}
}
func (d *fakeDevice) CreateDescriptorHeap(hal.DescriptorHeapDescriptor) (hal.DescriptorHeap, error) {
	return nil, nil
}
func (d *fakeDevice) DescriptorHandleIncrement(hal.DescriptorHeapType) uint32 { return 0 }
func (d *fakeDevice) CreateQueue(kind hal.QueueKind) (hal.CommandQueue, error) {
	return d.queues[kind], nil
}
func (d *fakeDevice) CreateCommandAllocator(hal.QueueKind) (hal.CommandAllocator, error) {
	return &fakeAllocator{}, nil
}
func (d *fakeDevice) CreateCommandList(allocator hal.CommandAllocator, kind hal.QueueKind) (hal.CommandList, error) {
	return &fakeCommandList{kind: kind}, nil
}
func (d *fakeDevice) CreateFence(initial uint64) (hal.Fence, error) {
	return &fakeFence{value: initial}, nil
}
func (d *fakeDevice) MakeResident(context.Context, []hal.Pageable) error { return nil }
func (d *fakeDevice) Evict([]hal.Pageable) error                         { return nil }
func (d *fakeDevice) HeapTier() hal.HeapTier                             { return hal.HeapTier2 }

type fakeResolver struct{}

func (fakeResolver) Resolve(arena.ResourceID) hal.Resource { return nil }
func (fakeResolver) HandleOf(id arena.ResourceID) hal.ResourceHandle {
	return hal.ResourceHandle(id.Index())
}

func TestSubmitter_SubmitsModulesInOrderAndSignalsFences(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	var recordedOrder []string
	bundle := framegraph.NewRenderPassBundle()
	bundle.AddRenderPass(&framegraph.RenderPass{
		Queue: hal.QueueGraphics,
		Name:  "a",
		Record: func(ctx *framegraph.RecordContext) {
			recordedOrder = append(recordedOrder, "a")
		},
	})
	bundle.ID = arena.NewBundleID(0, 0)

	module := &framegraph.ExecutionModule{
		ID:         arena.NewExecutionModuleID(0, 0),
		Bundles:    []arena.BundleID{bundle.ID},
		UsedQueues: 1 << uint(hal.QueueGraphics),
	}

	frame := &framegraph.CompiledFrame{
		Bundles: []*framegraph.RenderPassBundle{bundle},
		Modules: []*framegraph.ExecutionModule{module},
		Events:  &framegraph.GPUResourceEventManager{},
	}

	stats, err := sub.Submit(context.Background(), frame, fakeResolver{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(recordedOrder) != 1 || recordedOrder[0] != "a" {
		t.Fatalf("recordedOrder = %v", recordedOrder)
	}
	if stats.Queues[hal.QueueGraphics].LastSubmitted != 1 {
		t.Errorf("LastSubmitted = %d, want 1", stats.Queues[hal.QueueGraphics].LastSubmitted)
	}
	if len(dev.queues[hal.QueueGraphics].executed) != 1 {
		t.Errorf("expected exactly one ExecuteCommandLists call, got %d", len(dev.queues[hal.QueueGraphics].executed))
	}
}

// A module whose only bundle carries no passes touches no queue at all
// (UsedQueues == 0); Submit must treat it as a no-op rather than mistaking
// its absence of recorded work for a recording failure.
func TestSubmitter_SubmitSkipsModulesThatTouchNoQueue(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	bundle := framegraph.NewRenderPassBundle()
	bundle.ID = arena.NewBundleID(0, 0)

	module := &framegraph.ExecutionModule{
		ID:      arena.NewExecutionModuleID(0, 0),
		Bundles: []arena.BundleID{bundle.ID},
	}

	frame := &framegraph.CompiledFrame{
		Bundles: []*framegraph.RenderPassBundle{bundle},
		Modules: []*framegraph.ExecutionModule{module},
		Events:  &framegraph.GPUResourceEventManager{},
	}

	if _, err := sub.Submit(context.Background(), frame, fakeResolver{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

// A module spanning two queues (packExecutionModules forces such a bundle
// into a module of its own) must record and submit on both queues rather
// than losing one to the other via a shared per-module slot.
func TestSubmitter_SubmitRecordsBothQueuesOfAMultiQueueModule(t *testing.T) {
	dev := newFakeDevice()
	pool := jobs.NewPool(2)
	defer pool.Close()

	sub, err := NewSubmitter(dev, pool)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	defer sub.Close()

	bundle := framegraph.NewRenderPassBundle()
	bundle.ID = arena.NewBundleID(0, 0)
	bundle.AddRenderPass(&framegraph.RenderPass{Queue: hal.QueueGraphics, Name: "g"})
	bundle.AddRenderPass(&framegraph.RenderPass{Queue: hal.QueueCompute, Name: "c"})

	module := &framegraph.ExecutionModule{
		ID:         arena.NewExecutionModuleID(0, 0),
		Bundles:    []arena.BundleID{bundle.ID},
		UsedQueues: 1<<uint(hal.QueueGraphics) | 1<<uint(hal.QueueCompute),
	}

	frame := &framegraph.CompiledFrame{
		Bundles: []*framegraph.RenderPassBundle{bundle},
		Modules: []*framegraph.ExecutionModule{module},
		Events:  &framegraph.GPUResourceEventManager{},
	}

	if _, err := sub.Submit(context.Background(), frame, fakeResolver{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(dev.queues[hal.QueueGraphics].executed) != 1 {
		t.Errorf("graphics queue executed %d times, want 1", len(dev.queues[hal.QueueGraphics].executed))
	}
	if len(dev.queues[hal.QueueCompute].executed) != 1 {
		t.Errorf("compute queue executed %d times, want 1", len(dev.queues[hal.QueueCompute].executed))
	}
}
