package resource

import (
	"fmt"

	"github.com/brawler/framegraph/alias"
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/residency"
)

// DefaultPlacementAlignment is D3D12's default placed-resource alignment;
// transient heaps are created at this alignment so any member of an alias
// group can be placed at offset zero.
const DefaultPlacementAlignment = 65536

func heapCategoryFor(tier hal.HeapTier, class alias.HeapTierClass) hal.HeapCategory {
	if tier >= hal.HeapTier2 {
		return hal.HeapCategoryMixed
	}
	switch class {
	case alias.ClassBuffer:
		return hal.HeapCategoryBuffersOnly
	case alias.ClassRTDSTexture:
		return hal.HeapCategoryRTDSTexturesOnly
	default:
		return hal.HeapCategoryNonRTDSTexturesOnly
	}
}

// AliasingEvent schedules one aliasing barrier: it must be recorded
// immediately before the named resource's first use this frame.
type AliasingEvent struct {
	Resource arena.ResourceID
	Barrier  hal.Barrier
}

// FrameAllocation holds the heaps created for one frame's transient alias
// groups, plus their residency registrations. Release only once the
// frame's fences have signalled.
type FrameAllocation struct {
	heaps        []hal.Heap
	residencyIDs []residency.ObjectID
	registry     *residency.Registry
}

// Release frees every heap and unregisters it from the residency registry.
func (f *FrameAllocation) Release() {
	if f == nil {
		return
	}
	for i, h := range f.heaps {
		if f.registry != nil {
			f.registry.Unregister(f.residencyIDs[i])
		}
		h.Release()
	}
	f.heaps = nil
}

// TransientHeapAllocator is the heap manager the alias tracker feeds: it
// turns each AliasableResourceGroup into one heap plus one placed resource
// per member, all at offset zero, so group-mates overlap the same bytes.
type TransientHeapAllocator struct {
	dev       hal.Device
	resources *Registry
	residency *residency.Registry
}

// NewTransientHeapAllocator creates an allocator backed by dev, binding
// realized containers into resources and registering heaps with res for
// residency tracking (res may be nil in tests).
func NewTransientHeapAllocator(dev hal.Device, resources *Registry, res *residency.Registry) *TransientHeapAllocator {
	return &TransientHeapAllocator{dev: dev, resources: resources, residency: res}
}

// Realize creates one heap per group and places every member in it,
// binding each resulting container into the resource registry. It returns
// the aliasing barriers the frame must record - one per member after the
// group's first occupant, ordered by first use - and the FrameAllocation
// owning the heaps.
func (a *TransientHeapAllocator) Realize(groups []alias.AliasableResourceGroup) (*FrameAllocation, []AliasingEvent, error) {
	frame := &FrameAllocation{registry: a.residency}
	var events []AliasingEvent

	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		heap, err := a.dev.CreateHeap(hal.HeapDescriptor{
			SizeBytes: g.HeapSizeBytes,
			Alignment: DefaultPlacementAlignment,
			Category:  heapCategoryFor(a.dev.HeapTier(), g.Members[0].Class),
		})
		if err != nil {
			frame.Release()
			return nil, nil, fmt.Errorf("resource: create transient heap (%d bytes): %w", g.HeapSizeBytes, err)
		}
		frame.heaps = append(frame.heaps, heap)
		var rid residency.ObjectID
		if a.residency != nil {
			rid = a.residency.Register(heap, false)
			a.residency.Touch(rid)
		}
		frame.residencyIDs = append(frame.residencyIDs, rid)

		// Members arrive sorted by size; place them in first-use order so
		// each aliasing barrier's before-resource is the prior occupant.
		ordered := make([]alias.TransientResource, len(g.Members))
		copy(ordered, g.Members)
		for i := 1; i < len(ordered); i++ {
			for j := i; j > 0 && ordered[j].FirstBundle < ordered[j-1].FirstBundle; j-- {
				ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
			}
		}

		var prevHandle hal.ResourceHandle
		for i, member := range ordered {
			res, ok := a.resources.Get(member.Resource)
			if !ok {
				continue
			}
			placed, err := a.dev.CreatePlacedResource(heap, 0, res.Descriptor(), InitialStateFor(res.Descriptor()))
			if err != nil {
				frame.Release()
				return nil, nil, fmt.Errorf("resource: place transient in heap: %w", err)
			}
			res.SetContainer(Placed(placed, heap, 0))
			if i > 0 {
				events = append(events, AliasingEvent{
					Resource: member.Resource,
					Barrier:  alias.AliasingBarrier(prevHandle, res.Handle()),
				})
			}
			prevHandle = res.Handle()
		}
	}
	return frame, events, nil
}
