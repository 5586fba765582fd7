package submit

import (
	"fmt"
	"sync/atomic"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
)

// recordModule opens slot's allocator/list pair for queue q, records every
// pass in mod's bundles that targets q (emitting the pre-pass barriers
// GPUResourceEventManager scheduled for it first), and closes the list.
func (s *Submitter) recordModule(
	mod *framegraph.ExecutionModule,
	q hal.QueueKind,
	slot int,
	bundleByID map[arena.BundleID]*framegraph.RenderPassBundle,
	events *framegraph.GPUResourceEventManager,
	resolver ResourceResolver,
	presentRequested *atomic.Bool,
) (*recordedModule, error) {
	alloc, list, err := s.allocatorFor(q, slot)
	if err != nil {
		return nil, err
	}
	if err := alloc.Reset(); err != nil {
		return nil, fmt.Errorf("submit: reset allocator: %w", err)
	}
	if err := list.Reset(alloc); err != nil {
		return nil, fmt.Errorf("submit: reset command list: %w", err)
	}

	isSyncPoint := false
	for _, bid := range mod.Bundles {
		bundle := bundleByID[bid]
		if bundle == nil {
			continue
		}
		if bundle.IsSyncPoint() {
			isSyncPoint = true
		}
		for _, pass := range bundle.Passes(q) {
			if barriers := events.EventsFor(pass.ID); len(barriers) > 0 {
				if br, ok := resolver.(BarrierResolver); ok {
					resolved := make([]hal.Barrier, len(barriers))
					for i, b := range barriers {
						resolved[i] = br.ResolveBarrier(b)
					}
					barriers = resolved
				}
				list.ResourceBarrier(barriers)
			}
			if pass.Record == nil {
				continue
			}
			ctx := framegraph.NewRecordContext(list, pass, resolver.HandleOf, resolver.Resolve)
			ctx.OnPresent(func() { presentRequested.Store(true) })
			pass.Record(ctx)
		}
	}

	if err := list.Close(); err != nil {
		return nil, fmt.Errorf("submit: close command list: %w", err)
	}

	return &recordedModule{queue: q, list: list, isSyncPoint: isSyncPoint}, nil
}
