// Package residency tracks GPU-memory pressure across every pageable
// object (committed resource, placed resource, heap) the device owns, and
// evicts or deletes objects to keep the working set within budget - the
// FrameGraph's residency management subsystem.
package residency

import (
	"sync"
)

// ObjectID identifies one registered PageableObject. The registry is a
// process-wide singleton (per the design notes on global mutable state);
// ObjectID values are stable for the object's full lifetime, independent of
// any frame.
type ObjectID uint64

// UsageEWMAAlpha weights how quickly the usage metric responds to a new
// Touch versus its prior history. The source treats this as a best-guess
// constant rather than a derived value; kept here as a named constant per
// the open-question note on exposing heuristic thresholds.
const UsageEWMAAlpha = 0.2

// PageableObject is one object the registry tracks: its current residency
// state (mirrored from the last make-resident/evict call, since the
// backend Pageable.IsResident() is advisory only), its recent-use EWMA, and
// the flags the free-residency FSM and make-resident pass consult.
type PageableObject struct {
	ID             ObjectID
	Pageable       Pageable
	MemorySize     uint64
	UsageMetric    float64
	IsResident     bool
	IsDeletionSafe bool
	// NeedsResidencyThisFrame is set through Registry.Touch by whatever
	// subsystem is about to use the object this frame (the transient heap
	// allocator, for transient heaps).
	NeedsResidencyThisFrame bool
}

// Pageable is the narrow interface the registry needs from a concrete
// resource/heap wrapper - hal.Resource and hal.Heap both satisfy it.
type Pageable interface {
	IsResident() bool
	ApproximateSize() uint64
}

// Registry is the process-wide registry of pageable objects. Unlike the
// bindless descriptor pool it shards no internal state - residency passes
// run once per frame on a single worker job, so simple mutex contention is
// not a bottleneck the way per-draw-call descriptor writes would be.
type Registry struct {
	mu      sync.Mutex
	objects map[ObjectID]*PageableObject
	nextID  ObjectID
}

// NewRegistry creates an empty registry. Call once at device-init time and
// keep for the device's full lifetime - the registry is not reconstructed
// per frame.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[ObjectID]*PageableObject)}
}

// Register adds p to the registry, with its residency taken from
// p.IsResident(), and returns its stable ObjectID.
func (r *Registry) Register(p Pageable, deletionSafe bool) ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.objects[id] = &PageableObject{
		ID:             id,
		Pageable:       p,
		MemorySize:     p.ApproximateSize(),
		IsResident:     p.IsResident(),
		IsDeletionSafe: deletionSafe,
	}
	return id
}

// Unregister removes id from the registry, e.g. when its backing resource
// is destroyed.
func (r *Registry) Unregister(id ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Touch records a use of id this frame: marks it as needing residency and
// updates its EWMA usage metric toward 1.0.
func (r *Registry) Touch(id ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	if !ok {
		return
	}
	obj.NeedsResidencyThisFrame = true
	obj.UsageMetric = obj.UsageMetric*(1-UsageEWMAAlpha) + UsageEWMAAlpha*1.0
}

// decay is called once per frame for every object not touched this frame,
// letting their usage metric fall toward 0 so long-idle objects become
// eviction candidates.
func (r *Registry) decay() {
	for _, obj := range r.objects {
		if obj.NeedsResidencyThisFrame {
			continue
		}
		obj.UsageMetric *= (1 - UsageEWMAAlpha)
	}
}

// ResetFrameFlags clears NeedsResidencyThisFrame on every object and decays
// usage metrics, called once at the start of each residency pass before new
// Touch calls for the upcoming frame are recorded.
func (r *Registry) ResetFrameFlags() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decay()
	for _, obj := range r.objects {
		obj.NeedsResidencyThisFrame = false
	}
}

// snapshotNeedingResidency returns every currently-evicted object flagged
// as needed this frame.
func (r *Registry) snapshotNeedingResidency() []*PageableObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PageableObject
	for _, obj := range r.objects {
		if !obj.IsResident && obj.NeedsResidencyThisFrame {
			out = append(out, obj)
		}
	}
	return out
}

// snapshotEvictable returns resident objects that are not needed this
// frame - candidates for the Evict state of the free-residency FSM.
func (r *Registry) snapshotEvictable() []*PageableObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PageableObject
	for _, obj := range r.objects {
		if obj.IsResident && !obj.NeedsResidencyThisFrame {
			out = append(out, obj)
		}
	}
	return out
}

// snapshotDeletable returns objects marked deletion-safe - candidates for
// the Delete state fallback.
func (r *Registry) snapshotDeletable() []*PageableObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PageableObject
	for _, obj := range r.objects {
		if obj.IsDeletionSafe {
			out = append(out, obj)
		}
	}
	return out
}

func (r *Registry) markResident(id ObjectID, resident bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if obj, ok := r.objects[id]; ok {
		obj.IsResident = resident
	}
}

// CurrentUsageBytes sums MemorySize over every currently-resident object.
func (r *Registry) CurrentUsageBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total uint64
	for _, obj := range r.objects {
		if obj.IsResident {
			total += obj.MemorySize
		}
	}
	return total
}
