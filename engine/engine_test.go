package engine

import (
	"context"
	"testing"
	"time"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/descriptor"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
	"github.com/brawler/framegraph/residency"
	"github.com/brawler/framegraph/resource"
)

type fakeFence struct{ value uint64 }

func (f *fakeFence) CompletedValue() uint64                      { return f.value }
func (f *fakeFence) SignalCPU(v uint64) error                    { f.value = v; return nil }
func (f *fakeFence) WaitCPU(ctx context.Context, v uint64) error { return nil }

type fakeQueue struct{ kind hal.QueueKind }

func (q *fakeQueue) ExecuteCommandLists(lists []hal.CommandList) {}
func (q *fakeQueue) Signal(fence hal.Fence, value uint64) error {
	fence.(*fakeFence).value = value
	return nil
}
func (q *fakeQueue) Wait(fence hal.Fence, value uint64) error { return nil }
func (q *fakeQueue) Kind() hal.QueueKind                      { return q.kind }

type fakeAllocator struct{}

func (fakeAllocator) Reset() error { return nil }

type fakeCommandList struct{ kind hal.QueueKind }

func (l *fakeCommandList) Reset(hal.CommandAllocator) error { return nil }
func (l *fakeCommandList) Close() error                     { return nil }
func (l *fakeCommandList) ResourceBarrier([]hal.Barrier)    {}
func (l *fakeCommandList) DiscardResource(hal.Resource)     {}
func (l *fakeCommandList) CopyBufferRegion(hal.Resource, uint64, hal.Resource, uint64, uint64) {
}
func (l *fakeCommandList) CopyTextureRegion(hal.Resource, uint32, hal.Resource, uint32) {}
func (l *fakeCommandList) CopyResource(hal.Resource, hal.Resource)                      {}
func (l *fakeCommandList) Draw(uint32, uint32, uint32, uint32)                          {}
func (l *fakeCommandList) DrawIndexed(uint32, uint32, uint32, int32, uint32)            {}
func (l *fakeCommandList) Dispatch(uint32, uint32, uint32)                              {}
func (l *fakeCommandList) ClearRTV(hal.DescriptorHandle, [4]float32)                    {}
func (l *fakeCommandList) ClearDSV(hal.DescriptorHandle, float32, uint8)                {}
func (l *fakeCommandList) ExecuteIndirect(any, uint32, hal.Resource, uint64, hal.Resource, uint64) {
}
func (l *fakeCommandList) Kind() hal.QueueKind { return l.kind }
func (l *fakeCommandList) Native() any         { return l }

type fakeHeap struct{ size uint64 }

func (h *fakeHeap) SizeBytes() uint64       { return h.size }
func (h *fakeHeap) Release()                {}
func (h *fakeHeap) IsResident() bool        { return true }
func (h *fakeHeap) ApproximateSize() uint64 { return h.size }

type fakeResource struct{ handle hal.ResourceHandle }

func (r *fakeResource) Handle() hal.ResourceHandle { return r.handle }
func (r *fakeResource) GPUVirtualAddress() uint64  { return 0 }
func (r *fakeResource) SubresourceCount() uint32   { return 1 }
func (r *fakeResource) Release()                   {}
func (r *fakeResource) IsResident() bool           { return true }
func (r *fakeResource) ApproximateSize() uint64    { return 1 }

type fakeDevice struct{}

func (fakeDevice) CreateHeap(desc hal.HeapDescriptor) (hal.Heap, error) {
	return &fakeHeap{size: desc.SizeBytes}, nil
}
func (fakeDevice) CreateCommittedResource(hal.ResourceDescriptor, hal.ResourceState) (hal.Resource, error) {
	return &fakeResource{handle: 10_000}, nil
}
func (fakeDevice) CreatePlacedResource(hal.Heap, uint64, hal.ResourceDescriptor, hal.ResourceState) (hal.Resource, error) {
	return &fakeResource{handle: 20_000}, nil
}
func (fakeDevice) GetResourceAllocationInfo(desc hal.ResourceDescriptor) hal.AllocationInfo {
	return hal.AllocationInfo{SizeBytes: desc.Width}
}
func (fakeDevice) CreateDescriptorHeap(hal.DescriptorHeapDescriptor) (hal.DescriptorHeap, error) {
	return nil, nil
}
func (fakeDevice) DescriptorHandleIncrement(hal.DescriptorHeapType) uint32 { return 0 }
func (fakeDevice) CreateQueue(kind hal.QueueKind) (hal.CommandQueue, error) {
	return &fakeQueue{kind: kind}, nil
}
func (fakeDevice) CreateCommandAllocator(hal.QueueKind) (hal.CommandAllocator, error) {
	return fakeAllocator{}, nil
}
func (fakeDevice) CreateCommandList(allocator hal.CommandAllocator, kind hal.QueueKind) (hal.CommandList, error) {
	return &fakeCommandList{kind: kind}, nil
}
func (fakeDevice) CreateFence(initial uint64) (hal.Fence, error) {
	return &fakeFence{value: initial}, nil
}
func (fakeDevice) MakeResident(context.Context, []hal.Pageable) error { return nil }
func (fakeDevice) Evict([]hal.Pageable) error                         { return nil }
func (fakeDevice) HeapTier() hal.HeapTier                             { return hal.HeapTier2 }

type fakeFactory struct{ next uint32 }

func (f *fakeFactory) CreateTransientResource(hal.ResourceDescriptor) arena.ResourceID {
	f.next++
	return arena.NewResourceID(f.next, 0)
}

type fakeResolver struct{}

func (fakeResolver) Resolve(arena.ResourceID) hal.Resource { return nil }
func (fakeResolver) HandleOf(id arena.ResourceID) hal.ResourceHandle {
	return hal.ResourceHandle(id.Index())
}

func fakeLookup(arena.ResourceID) framegraph.ResourceInfo {
	return framegraph.ResourceInfo{Handle: 1, Class: framegraph.ClassOrdinaryTexture}
}

func TestEngine_ProcessFrameRunsModulesAndSubmits(t *testing.T) {
	dev := fakeDevice{}
	pool := jobs.NewPool(2)
	defer pool.Close()

	e, err := NewEngine(dev, pool, residency.Budget{BytesLimit: 1 << 30, PreferEviction: true}, [FramesInFlight]*descriptor.Table{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	ran := make([]bool, 2)
	modules := []ModuleFunc{
		func(b *framegraph.FrameGraphBuilder) {
			ran[0] = true
			_ = b.CreateTransientResource(hal.ResourceDescriptor{})
			b.AddRenderPassBundle(&framegraph.RenderPassBundle{})
		},
		func(b *framegraph.FrameGraphBuilder) {
			ran[1] = true
		},
	}

	factory := &fakeFactory{}
	opts := framegraph.CompileOptions{Lookup: fakeLookup}

	result, err := e.ProcessFrame(context.Background(), modules, factory, fakeResolver{}, nil, 0, opts)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if !ran[0] || !ran[1] {
		t.Errorf("expected both modules to run, got %v", ran)
	}
	_ = result
}

func TestEngine_ProcessFrameCyclesThroughFrameSlots(t *testing.T) {
	dev := fakeDevice{}
	pool := jobs.NewPool(2)
	defer pool.Close()

	e, err := NewEngine(dev, pool, residency.Budget{BytesLimit: 1 << 30, PreferEviction: true}, [FramesInFlight]*descriptor.Table{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	factory := &fakeFactory{}
	opts := framegraph.CompileOptions{Lookup: fakeLookup}

	for i := 0; i < FramesInFlight+2; i++ {
		if _, err := e.ProcessFrame(context.Background(), nil, factory, fakeResolver{}, nil, 0, opts); err != nil {
			t.Fatalf("frame %d: ProcessFrame: %v", i, err)
		}
	}
	if e.frameNumber != uint64(FramesInFlight+2) {
		t.Errorf("frameNumber = %d, want %d", e.frameNumber, FramesInFlight+2)
	}
}

// A full frame through the resource registry: a transient created by a
// module's builder has a realized backing by the time its pass records, and
// is drained out of the registry by the end of the frame.
func TestEngine_ProcessFrameWithAttachedResources(t *testing.T) {
	dev := fakeDevice{}
	pool := jobs.NewPool(2)
	defer pool.Close()

	e, err := NewEngine(dev, pool, residency.Budget{BytesLimit: 1 << 30, PreferEviction: true}, [FramesInFlight]*descriptor.Table{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	reg := resource.NewRegistry()
	e.AttachResources(reg)

	var realized bool
	modules := []ModuleFunc{
		func(b *framegraph.FrameGraphBuilder) {
			id := b.CreateTransientResource(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, Width: 4096})
			bundle := framegraph.NewRenderPassBundle()
			pass := &framegraph.RenderPass{Queue: hal.QueueGraphics, Name: "draw"}
			pass.AddResourceDependency(id, hal.StatePixelShaderResource, framegraph.AllSubresources)
			pass.SetRecordCallback(func(ctx *framegraph.RecordContext) {
				realized = reg.Resolve(id) != nil
			})
			bundle.AddRenderPass(pass)
			b.AddRenderPassBundle(bundle)
		},
	}

	opts := framegraph.CompileOptions{Lookup: reg.Lookup}
	if _, err := e.ProcessFrame(context.Background(), modules, reg, reg, nil, 0, opts); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if !realized {
		t.Error("transient had no backing resource by the time its pass recorded")
	}

	// The transient was drained out of the registry at end of frame.
	if got := len(reg.DrainTransients()); got != 0 {
		t.Errorf("registry still held %d transients after the frame", got)
	}
}

func TestEngine_ProcessFrameRespectsFrameRateLimit(t *testing.T) {
	dev := fakeDevice{}
	pool := jobs.NewPool(2)
	defer pool.Close()

	e, err := NewEngine(dev, pool, residency.Budget{BytesLimit: 1 << 30, PreferEviction: true}, [FramesInFlight]*descriptor.Table{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	factory := &fakeFactory{}
	opts := framegraph.CompileOptions{Lookup: fakeLookup, FrameRateLimit: 100}

	if _, err := e.ProcessFrame(context.Background(), nil, factory, fakeResolver{}, nil, 0, opts); err != nil {
		t.Fatalf("frame 0: ProcessFrame: %v", err)
	}

	start := time.Now()
	if _, err := e.ProcessFrame(context.Background(), nil, factory, fakeResolver{}, nil, 0, opts); err != nil {
		t.Fatalf("frame 1: ProcessFrame: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 9*time.Millisecond {
		t.Errorf("second ProcessFrame returned after %v, want >= ~10ms for a 100fps limit", elapsed)
	}
}

func TestEngine_ProcessFrameUnlimitedByDefault(t *testing.T) {
	dev := fakeDevice{}
	pool := jobs.NewPool(2)
	defer pool.Close()

	e, err := NewEngine(dev, pool, residency.Budget{BytesLimit: 1 << 30, PreferEviction: true}, [FramesInFlight]*descriptor.Table{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	factory := &fakeFactory{}
	opts := framegraph.CompileOptions{Lookup: fakeLookup}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := e.ProcessFrame(context.Background(), nil, factory, fakeResolver{}, nil, 0, opts); err != nil {
			t.Fatalf("frame %d: ProcessFrame: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("three unlimited frames took %v, want fast", elapsed)
	}
}
