// Package resource wraps backend GPU resources in the containers, state
// managers, and descriptor registrations the FrameGraph core schedules
// against: a committed/placed/borrowed container variant per resource, an
// authoritative per-subresource state record carried between frames, and
// bindless SRV registrations that survive the underlying resource changing
// identity.
package resource

import (
	"sync"

	"github.com/brawler/framegraph/descriptor"
	"github.com/brawler/framegraph/hal"
)

// Lifetime classes a resource for ownership and aliasing purposes:
// transient resources are frame-scoped and eligible for heap aliasing,
// persistent ones span frames and are never aliased.
type Lifetime uint8

const (
	LifetimePersistent Lifetime = iota
	LifetimeTransient
)

type containerKind uint8

const (
	containerNone containerKind = iota
	containerCommitted
	containerPlaced
	containerBorrowed
)

// Container is the tagged variant holding a resource's backing storage:
// committed (the resource owns an implicit heap), placed (a handle into a
// shared, possibly aliased heap allocation), or borrowed (a back-buffer the
// swapchain owns - never released on drop).
type Container struct {
	kind   containerKind
	res    hal.Resource
	heap   hal.Heap // placed only; non-owning, the heap manager owns it
	offset uint64   // placed only
}

// Committed wraps a committed resource.
func Committed(res hal.Resource) Container {
	return Container{kind: containerCommitted, res: res}
}

// Placed wraps a placed resource with the heap and byte offset backing it.
func Placed(res hal.Resource, heap hal.Heap, offset uint64) Container {
	return Container{kind: containerPlaced, res: res, heap: heap, offset: offset}
}

// Borrowed wraps a resource this module does not own (a swapchain
// back-buffer); release is a no-op.
func Borrowed(res hal.Resource) Container {
	return Container{kind: containerBorrowed, res: res}
}

// Resource returns the backing hal.Resource, or nil if the container is
// empty (a transient whose heap has not been realized yet).
func (c Container) Resource() hal.Resource { return c.res }

// IsEmpty reports whether no backing resource exists yet.
func (c Container) IsEmpty() bool { return c.kind == containerNone }

// release frees the backing resource for owned variants. The placed
// variant's heap is deliberately not released here - the heap manager owns
// it and one heap backs many placed resources.
func (c Container) release() {
	if c.res == nil {
		return
	}
	switch c.kind {
	case containerCommitted, containerPlaced:
		c.res.Release()
	}
}

// bindlessEntry pairs a sentinel-owning allocation with the writer that can
// re-create its descriptor, so a container swap can rewrite every
// registered SRV at its stable index.
type bindlessEntry struct {
	alloc  *descriptor.Allocation
	writer descriptor.SRVWriter
}

// GPUResource is one buffer or texture as the FrameGraph core sees it: the
// creation descriptor, the container backing it, the per-subresource state
// record the compiler reads and writes across frames, and any bindless SRV
// registrations whose shader-visible indices must survive the container
// changing.
//
// Container swaps (placed-resource reallocation, eviction and remake) take
// the exclusive lock; descriptor and container reads take the shared lock,
// per the shared-resource policy for descriptor invalidation.
type GPUResource struct {
	mu sync.RWMutex

	desc     hal.ResourceDescriptor
	lifetime Lifetime
	handle   hal.ResourceHandle

	container Container
	states    *SubresourceStateManager
	bindless  []bindlessEntry

	// statesFromDecay marks states written by ApplyFinalStates as the
	// product of implicit decay, making next frame's first use
	// promotion-eligible. Guarded by mu.
	statesFromDecay bool
}

// NewGPUResource creates a wrapper with its subresource states seeded per
// the heap-type invariants. handle is the stable identifier the compiler's
// barrier schedule keys on; it never changes, even across container swaps.
func NewGPUResource(desc hal.ResourceDescriptor, lifetime Lifetime, handle hal.ResourceHandle, container Container) *GPUResource {
	return &GPUResource{
		desc:      desc,
		lifetime:  lifetime,
		handle:    handle,
		container: container,
		states:    NewSubresourceStateManager(SubresourceCount(desc), InitialStateFor(desc)),
	}
}

// Descriptor returns the creation descriptor.
func (r *GPUResource) Descriptor() hal.ResourceDescriptor { return r.desc }

// Lifetime returns the resource's lifetime class.
func (r *GPUResource) Lifetime() Lifetime { return r.lifetime }

// Handle returns the stable tracking handle.
func (r *GPUResource) Handle() hal.ResourceHandle { return r.handle }

// States returns the authoritative per-subresource state manager.
func (r *GPUResource) States() *SubresourceStateManager { return r.states }

// SetCarriedState records the state a compilation left every subresource
// in, plus whether it is the product of implicit decay.
func (r *GPUResource) SetCarriedState(state hal.ResourceState, fromDecay bool) {
	r.states.SetAll(state)
	r.mu.Lock()
	r.statesFromDecay = fromDecay
	r.mu.Unlock()
}

// CarriedFromDecay reports whether the current states were produced by
// implicit decay rather than explicit transitions or creation.
func (r *GPUResource) CarriedFromDecay() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statesFromDecay
}

// Backing returns the current backing resource, or nil if the container is
// empty.
func (r *GPUResource) Backing() hal.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.container.Resource()
}

// SetContainer swaps the backing container and rewrites every registered
// bindless SRV at its existing sentinel index, so shader-side indices stay
// valid across the swap. The previous container is released.
func (r *GPUResource) SetContainer(c Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hal.DebugAssertionsEnabled() && !r.container.IsEmpty() && r.container.kind == containerBorrowed && c.kind != containerBorrowed {
		panic("resource: a borrowed container may not be replaced by an owned one")
	}
	old := r.container
	r.container = c
	for _, e := range r.bindless {
		e.alloc.Rewrite(e.writer)
	}
	old.release()
}

// CreateBindlessSRV reserves a slot in the process-wide bindless range,
// writes the descriptor via writer, and records the registration so a later
// container swap re-creates it at the same index. The returned allocation's
// index is stable for its whole lifetime.
func (r *GPUResource) CreateBindlessSRV(pool *descriptor.Pool, heap hal.DescriptorHeap, writer descriptor.SRVWriter) (*descriptor.Allocation, error) {
	alloc, err := pool.Allocate(heap, writer)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.bindless = append(r.bindless, bindlessEntry{alloc: alloc, writer: writer})
	r.mu.Unlock()
	return alloc, nil
}

// Release frees the container (owned variants only) and returns every
// bindless index to its pool. Call only once the GPU has signalled
// completion of the last frame referencing the resource.
func (r *GPUResource) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.bindless {
		e.alloc.Release()
	}
	r.bindless = nil
	r.container.release()
	r.container = Container{}
}
