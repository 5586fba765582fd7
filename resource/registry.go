package resource

import (
	"sync"
	"sync/atomic"

	"github.com/brawler/framegraph/alias"
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
)

// nextHandle hands out process-unique tracking handles. The handle space is
// the registry's, not the backend's: a transient resource needs a stable
// handle at compile time, before any backend resource exists to carry one.
var nextHandle atomic.Uint64

func newHandle() hal.ResourceHandle {
	return hal.ResourceHandle(nextHandle.Add(1))
}

// Registry owns every GPUResource a FrameGraph schedules: it is the
// ResourceFactory builders create transients through, the ResourceLookup
// the compiler's state analysis consults, and the ResourceResolver the
// recording layer maps IDs and barrier handles through. Transient entries
// live until DrainTransients hands them to the frame ring for deferred
// destruction; persistent entries live until the application removes them.
type Registry struct {
	mu        sync.RWMutex
	resources *arena.ResourceStorage[*GPUResource]
	byHandle  map[hal.ResourceHandle]arena.ResourceID
	nextIndex uint32
	epoch     uint32
}

// NewRegistry creates an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{
		resources: arena.NewResourceStorage[*GPUResource](0),
		byHandle:  make(map[hal.ResourceHandle]arena.ResourceID),
		// Index 0 at epoch 0 is the zero ID, which the rest of the module
		// treats as "no resource"; never hand it out.
		nextIndex: 1,
	}
}

func (r *Registry) insert(res *GPUResource) arena.ResourceID {
	r.mu.Lock()
	id := arena.NewResourceID(r.nextIndex, r.epoch)
	r.nextIndex++
	r.byHandle[res.Handle()] = id
	r.mu.Unlock()

	r.resources.Insert(id, res)
	return id
}

// CreateTransientResource registers a frame-scoped resource with no backing
// container yet - the transient heap allocator binds one once alias groups
// are realized. Implements framegraph.ResourceFactory; safe for concurrent
// use by builder jobs.
func (r *Registry) CreateTransientResource(desc hal.ResourceDescriptor) arena.ResourceID {
	res := NewGPUResource(desc, LifetimeTransient, newHandle(), Container{})
	return r.insert(res)
}

// RegisterPersistent registers an application-owned resource with its
// already-created container.
func (r *Registry) RegisterPersistent(desc hal.ResourceDescriptor, c Container) arena.ResourceID {
	res := NewGPUResource(desc, LifetimePersistent, newHandle(), c)
	return r.insert(res)
}

// Get returns the wrapper for id.
func (r *Registry) Get(id arena.ResourceID) (*GPUResource, bool) {
	return r.resources.Get(id)
}

// BindContainer attaches a backing container to a previously registered
// resource (normally a transient being realized into its aliased heap).
func (r *Registry) BindContainer(id arena.ResourceID, c Container) bool {
	res, ok := r.resources.Get(id)
	if !ok {
		return false
	}
	res.SetContainer(c)
	return true
}

// Resolve implements the recording layer's ID-to-resource mapping.
func (r *Registry) Resolve(id arena.ResourceID) hal.Resource {
	res, ok := r.resources.Get(id)
	if !ok {
		return nil
	}
	return res.Backing()
}

// HandleOf returns the stable tracking handle barriers key on. Implements
// the recording layer's resolver interface.
func (r *Registry) HandleOf(id arena.ResourceID) hal.ResourceHandle {
	res, ok := r.resources.Get(id)
	if !ok {
		return 0
	}
	return res.Handle()
}

// ResolveBarrier rewrites a compile-time barrier's tracking handles to the
// backing resources' own handles just before recording. Compilation runs
// before transient heaps are realized, so the schedule's handles are the
// registry's; the backend's barrier lowering only knows the handles its own
// resources carry.
func (r *Registry) ResolveBarrier(b hal.Barrier) hal.Barrier {
	b.Resource = r.backingHandle(b.Resource)
	if b.AliasedBefore != 0 {
		b.AliasedBefore = r.backingHandle(b.AliasedBefore)
	}
	return b
}

func (r *Registry) backingHandle(h hal.ResourceHandle) hal.ResourceHandle {
	if h == 0 {
		return 0
	}
	r.mu.RLock()
	id, ok := r.byHandle[h]
	r.mu.RUnlock()
	if !ok {
		return h
	}
	res, ok := r.resources.Get(id)
	if !ok {
		return h
	}
	if backing := res.Backing(); backing != nil {
		return backing.Handle()
	}
	return h
}

// Lookup is the framegraph.ResourceLookup the compiler's state analysis
// consults: the tracking handle, the implicit-decay class, and the state
// recorded at the end of the previous compilation.
func (r *Registry) Lookup(id arena.ResourceID) framegraph.ResourceInfo {
	res, ok := r.resources.Get(id)
	if !ok {
		return framegraph.ResourceInfo{}
	}
	class := framegraph.ClassOrdinaryTexture
	desc := res.Descriptor()
	if desc.Kind == hal.ResourceKindBuffer || desc.SimultaneousAccess {
		class = framegraph.ClassAlwaysDecays
	}
	return framegraph.ResourceInfo{
		Handle:                res.Handle(),
		Class:                 class,
		InitialState:          res.States().CombinedState(),
		InitialStateFromDecay: res.CarriedFromDecay(),
	}
}

// ApplyFinalStates writes the compiler's end-of-frame states back into each
// resource's state manager, making them the initial states the next
// compilation observes.
func (r *Registry) ApplyFinalStates(finals map[arena.ResourceID]framegraph.FinalState) {
	for id, final := range finals {
		if res, ok := r.resources.Get(id); ok {
			res.SetCarriedState(final.State, final.FromDecay)
		}
	}
}

// AliasClassFor maps a descriptor to the heap-tier class the alias tracker
// groups by.
func AliasClassFor(desc hal.ResourceDescriptor) alias.HeapTierClass {
	if desc.Kind == hal.ResourceKindBuffer {
		return alias.ClassBuffer
	}
	if desc.AllowRenderTarget || desc.AllowDepthStencil {
		return alias.ClassRTDSTexture
	}
	return alias.ClassNonRTDSTexture
}

// TransientLifetimes derives the alias tracker's input from a compiled
// frame: for every transient resource referenced by any pass, the
// [first, last] bundle-ID interval it is live over, its allocation size
// (via sizeOf, normally Device.GetResourceAllocationInfo), and its
// grouping class and constraints.
func (r *Registry) TransientLifetimes(frame *framegraph.CompiledFrame, sizeOf func(hal.ResourceDescriptor) hal.AllocationInfo) []alias.TransientResource {
	type span struct {
		first, last uint32
		seen        bool
	}
	spans := make(map[arena.ResourceID]*span)
	var order []arena.ResourceID

	for _, b := range frame.Bundles {
		bid := b.ID.Index()
		for q := 0; q < hal.NumQueueKinds; q++ {
			for _, p := range b.Passes(hal.QueueKind(q)) {
				for _, dep := range p.Dependencies {
					res, ok := r.resources.Get(dep.Resource)
					if !ok || res.Lifetime() != LifetimeTransient {
						continue
					}
					s, ok := spans[dep.Resource]
					if !ok {
						s = &span{}
						spans[dep.Resource] = s
						order = append(order, dep.Resource)
					}
					if !s.seen || bid < s.first {
						s.first = bid
					}
					if !s.seen || bid > s.last {
						s.last = bid
					}
					s.seen = true
				}
			}
		}
	}

	out := make([]alias.TransientResource, 0, len(order))
	for _, id := range order {
		res, _ := r.resources.Get(id)
		desc := res.Descriptor()
		info := sizeOf(desc)
		out = append(out, alias.TransientResource{
			Resource:     id,
			FirstBundle:  spans[id].first,
			LastBundle:   spans[id].last,
			SizeBytes:    info.SizeBytes,
			Class:        AliasClassFor(desc),
			UploadHeap:   desc.HeapType == hal.HeapTypeUpload,
			ReadbackHeap: desc.HeapType == hal.HeapTypeReadback,
		})
	}
	return out
}

// DrainTransients removes every transient entry from the registry and
// returns them. The caller (the frame ring) holds them until the frame's
// fences signal, then Releases each - the deferred-destruction rule for
// resources the GPU may still be reading.
func (r *Registry) DrainTransients() []*GPUResource {
	var drained []*GPUResource
	var ids []arena.ResourceID
	r.resources.ForEach(func(id arena.ResourceID, res *GPUResource) bool {
		if res.Lifetime() == LifetimeTransient {
			drained = append(drained, res)
			ids = append(ids, id)
		}
		return true
	})
	for i, id := range ids {
		r.resources.Remove(id)
		r.mu.Lock()
		delete(r.byHandle, drained[i].Handle())
		r.mu.Unlock()
	}
	return drained
}
