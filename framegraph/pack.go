package framegraph

import "github.com/brawler/framegraph/core/arena"

// packExecutionModules greedily merges adjacent bundles into one
// ExecutionModule each, starting a new module whenever the running module
// would span more than one queue type, would exceed maxBundles, or the next
// bundle is a sync point (sync points never merge into a surrounding
// direct-only module - they always start their own module so the cross-
// queue barriers they carry land in their own ExecuteCommandLists call).
func packExecutionModules(bundles []*RenderPassBundle, maxBundles int) []*ExecutionModule {
	var modules []*ExecutionModule
	var current *ExecutionModule
	var currentBundleCount int
	var nextModuleIndex uint32

	flush := func() {
		if current != nil {
			modules = append(modules, current)
			current = nil
			currentBundleCount = 0
		}
	}

	for _, b := range bundles {
		used := b.UsedQueues()

		startsNew := current == nil ||
			b.isSyncPoint ||
			currentBundleCount >= maxBundles ||
			(current.UsedQueues != 0 && current.UsedQueues != used) ||
			popcount8(used) > 1

		if startsNew {
			flush()
			current = &ExecutionModule{
				ID:         arena.NewExecutionModuleID(nextModuleIndex, 0),
				UsedQueues: used,
			}
			nextModuleIndex++
		}

		current.Bundles = append(current.Bundles, b.ID)
		current.UsedQueues |= used
		currentBundleCount++

		if b.isSyncPoint {
			// A sync-point bundle always occupies its module alone.
			flush()
		}
	}
	flush()

	return modules
}
