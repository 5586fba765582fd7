package resource

import (
	"testing"

	"github.com/brawler/framegraph/descriptor"
	"github.com/brawler/framegraph/hal"
)

type fakeBacking struct {
	handle   hal.ResourceHandle
	released bool
}

func (f *fakeBacking) Handle() hal.ResourceHandle { return f.handle }
func (f *fakeBacking) GPUVirtualAddress() uint64  { return 0 }
func (f *fakeBacking) SubresourceCount() uint32   { return 1 }
func (f *fakeBacking) Release()                   { f.released = true }
func (f *fakeBacking) IsResident() bool           { return true }
func (f *fakeBacking) ApproximateSize() uint64    { return 1 }

type fakeDescHeap struct{}

func (fakeDescHeap) CPUHandle(index uint32) hal.DescriptorHandle { return hal.DescriptorHandle(index) }
func (fakeDescHeap) GPUHandle(index uint32) hal.DescriptorHandle { return hal.DescriptorHandle(index) }
func (fakeDescHeap) Release()                                    {}

type countingWriter struct{ writes int }

func (w *countingWriter) WriteSRV(heap hal.DescriptorHeap, index descriptor.Index) { w.writes++ }

func TestInitialStateFor(t *testing.T) {
	cases := []struct {
		name string
		desc hal.ResourceDescriptor
		want hal.ResourceState
	}{
		{"upload buffer", hal.ResourceDescriptor{Kind: hal.ResourceKindBuffer, HeapType: hal.HeapTypeUpload}, hal.StateGenericRead},
		{"readback buffer", hal.ResourceDescriptor{Kind: hal.ResourceKindBuffer, HeapType: hal.HeapTypeReadback}, hal.StateCopyDest},
		{"default buffer", hal.ResourceDescriptor{Kind: hal.ResourceKindBuffer}, hal.StateCommon},
		{"render target", hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, AllowRenderTarget: true}, hal.StateRenderTarget},
		{"depth stencil", hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, AllowDepthStencil: true}, hal.StateDepthWrite},
		{"plain texture", hal.ResourceDescriptor{Kind: hal.ResourceKindTexture}, hal.StateCommon},
		{"simultaneous texture", hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, SimultaneousAccess: true}, hal.StateCommon},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := InitialStateFor(c.desc); got != c.want {
				t.Errorf("InitialStateFor = %#x, want %#x", got, c.want)
			}
		})
	}
}

func TestInitialStateFor_TextureInUploadHeapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for texture in upload heap")
		}
	}()
	InitialStateFor(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, HeapType: hal.HeapTypeUpload})
}

func TestSubresourceCount(t *testing.T) {
	if got := SubresourceCount(hal.ResourceDescriptor{Kind: hal.ResourceKindBuffer, MipLevels: 5}); got != 1 {
		t.Errorf("buffer count = %d, want 1", got)
	}
	tex := hal.ResourceDescriptor{Kind: hal.ResourceKindTexture, MipLevels: 4, DepthOrArraySize: 6}
	if got := SubresourceCount(tex); got != 24 {
		t.Errorf("texture count = %d, want 24", got)
	}
	if got := SubresourceCount(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture}); got != 1 {
		t.Errorf("zero-value texture count = %d, want 1", got)
	}
}

func TestSubresourceStateManager_SetAndCombine(t *testing.T) {
	m := NewSubresourceStateManager(3, hal.StateCommon)
	m.Set(0, hal.StatePixelShaderResource)
	m.Set(2, hal.StateCopySource)
	if got := m.StateOf(0); got != hal.StatePixelShaderResource {
		t.Errorf("StateOf(0) = %#x", got)
	}
	if got := m.CombinedState(); got != hal.StatePixelShaderResource|hal.StateCopySource {
		t.Errorf("CombinedState = %#x", got)
	}
	m.SetAll(hal.StateCommon)
	if got := m.CombinedState(); got != hal.StateCommon {
		t.Errorf("CombinedState after SetAll = %#x", got)
	}
}

func TestGPUResource_SetContainerRewritesBindlessAtStableIndex(t *testing.T) {
	pool := descriptor.NewPool()
	res := NewGPUResource(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture}, LifetimePersistent, 1, Committed(&fakeBacking{handle: 10}))

	writer := &countingWriter{}
	alloc, err := res.CreateBindlessSRV(pool, fakeDescHeap{}, writer)
	if err != nil {
		t.Fatalf("CreateBindlessSRV: %v", err)
	}
	index := alloc.Index()
	if writer.writes != 1 {
		t.Fatalf("writes = %d after allocation, want 1", writer.writes)
	}

	old := &fakeBacking{handle: 10}
	res.container = Committed(old)
	res.SetContainer(Committed(&fakeBacking{handle: 11}))

	if writer.writes != 2 {
		t.Errorf("writes = %d after container swap, want 2 (descriptor re-created)", writer.writes)
	}
	if alloc.Index() != index {
		t.Errorf("index changed across container swap: %d -> %d", index, alloc.Index())
	}
	if !old.released {
		t.Error("old container was not released on swap")
	}
}

func TestGPUResource_ReleaseFreesContainerAndBindless(t *testing.T) {
	pool := descriptor.NewPool()
	backing := &fakeBacking{handle: 20}
	res := NewGPUResource(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture}, LifetimeTransient, 2, Placed(backing, nil, 0))

	alloc, err := res.CreateBindlessSRV(pool, fakeDescHeap{}, &countingWriter{})
	if err != nil {
		t.Fatalf("CreateBindlessSRV: %v", err)
	}
	freed := alloc.Index()

	res.Release()
	if !backing.released {
		t.Error("placed backing was not released")
	}

	// The freed index must be recycled before any never-used slot.
	again, err := pool.Allocate(fakeDescHeap{}, &countingWriter{})
	if err != nil {
		t.Fatalf("Allocate after release: %v", err)
	}
	if again.Index() != freed {
		t.Errorf("recycled index = %d, want %d", again.Index(), freed)
	}
}

func TestGPUResource_BorrowedContainerNotReleased(t *testing.T) {
	backing := &fakeBacking{handle: 30}
	res := NewGPUResource(hal.ResourceDescriptor{Kind: hal.ResourceKindTexture}, LifetimePersistent, 3, Borrowed(backing))
	res.Release()
	if backing.released {
		t.Error("borrowed back-buffer must never be released by the wrapper")
	}
}
