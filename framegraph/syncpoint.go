package framegraph

import (
	"fmt"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// crossQueueUse records, for one bundle, the union of states a resource is
// required in across the queues that touch it in that bundle.
type crossQueueUse struct {
	resource arena.ResourceID
	union    hal.ResourceState
}

// injectSyncPoints scans every bundle for resources used by more than one
// queue (or by the copy queue together with any other queue) and, for each
// such bundle, synthesizes a preceding sync-point bundle: a single
// direct-queue pass that transitions every cross-queue-shared resource to
// the OR of its required states. Resources whose ResourceClass always
// decays (buffers, simultaneous-access textures) are exempt - they need no
// explicit sync-point entry because the hardware handles them implicitly.
func injectSyncPoints(bundles []*RenderPassBundle, lookup ResourceLookup) []*RenderPassBundle {
	out := make([]*RenderPassBundle, 0, len(bundles))
	var nextID uint32
	for _, b := range bundles {
		nextID = max(nextID, b.ID.Index()+1)
	}

	for _, b := range bundles {
		if needsSyncPoint(b) {
			shared := crossQueueSharedResources(b, lookup)
			if len(shared) > 0 {
				sp := syncPointBundleFor(shared)
				sp.ID = arena.NewBundleID(nextID, 0)
				nextID++
				out = append(out, sp)
				if b.QueueCount() > 2 {
					hal.Logger().Info("sync point injected for a bundle using more queues than expected",
						"bundle", b.ID.Index(), "queues", b.QueueCount(), "sharedResources", len(shared))
				} else {
					hal.Logger().Debug("sync point injected",
						"bundle", b.ID.Index(), "sharedResources", len(shared))
				}
			}
		}
		out = append(out, b)
	}
	return out
}

// needsSyncPoint reports whether bundle uses more than one queue, or uses
// the copy queue at all - copy-queue use alongside any other queue in the
// same bundle requires a sync point.
func needsSyncPoint(b *RenderPassBundle) bool {
	return b.QueueCount() > 1 || b.usesCopyQueue()
}

// crossQueueSharedResources computes, for every resource referenced by more
// than one queue within bundle, the union of its required states - skipping
// resources whose class always decays implicitly.
func crossQueueSharedResources(b *RenderPassBundle, lookup ResourceLookup) []crossQueueUse {
	type accum struct {
		union  hal.ResourceState
		queues uint8
	}
	seen := make(map[arena.ResourceID]*accum)
	var order []arena.ResourceID

	for q := 0; q < hal.NumQueueKinds; q++ {
		for _, pass := range b.perQueue[q] {
			for _, dep := range pass.Dependencies {
				a, ok := seen[dep.Resource]
				if !ok {
					a = &accum{}
					seen[dep.Resource] = a
					order = append(order, dep.Resource)
				}
				a.union |= dep.RequiredState
				a.queues |= 1 << uint(q)
			}
		}
	}

	const directComputeMask = 1<<uint(hal.QueueGraphics) | 1<<uint(hal.QueueCompute)

	var out []crossQueueUse
	for _, id := range order {
		a := seen[id]
		if popcount8(a.queues) < 2 {
			continue
		}
		// A subresource used concurrently on both the direct and compute
		// queues within one bundle must be in a read-only state: the sync
		// point transitions it once to the union, and a write bit in that
		// union would mean two queues racing on the same writable resource.
		if a.queues&directComputeMask == directComputeMask &&
			hal.DebugAssertionsEnabled() && !a.union.IsReadOnly() {
			panic(fmt.Sprintf(
				"framegraph: resource %v is used on both the direct and compute queues in one bundle with writable combined state %#x; concurrent cross-queue use must be read-only",
				id, uint32(a.union)))
		}
		if lookup != nil && lookup(id).Class == ClassAlwaysDecays {
			continue
		}
		out = append(out, crossQueueUse{resource: id, union: a.union})
	}
	return out
}

func popcount8(v uint8) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// syncPointBundleFor builds the synthetic direct-queue bundle that
// transitions every entry in shared to its required union state. The
// bundle is marked isSyncPoint so execution-module packing never merges it
// into a run of ordinary direct-queue bundles.
func syncPointBundleFor(shared []crossQueueUse) *RenderPassBundle {
	bundle := NewRenderPassBundle()
	bundle.isSyncPoint = true

	pass := &RenderPass{Queue: hal.QueueGraphics, Name: "sync-point", isSyncPoint: true}
	for _, u := range shared {
		pass.AddResourceDependency(u.resource, u.union, AllSubresources)
	}
	bundle.AddRenderPass(pass)
	return bundle
}
