package residency

import (
	"errors"
	"sort"

	"github.com/brawler/framegraph/hal"
)

// ErrBudgetExceeded is returned when the free-residency FSM exhausts both
// the evict and delete states without bringing current usage under budget
// (if the budget cannot be met the error propagates to the frame driver
// error").
var ErrBudgetExceeded = errors.New("residency: budget exceeded after evict and delete passes")

// Budget configures one device's residency pressure limit.
type Budget struct {
	// BytesLimit is the GPU-memory working-set ceiling the free-residency
	// FSM trims to.
	BytesLimit uint64

	// PreferEviction selects which state the FSM tries first:
	// "Eviction is preferred over deletion when the process's max
	// virtual-address range exceeds the budget (typical on modern GPUs);
	// otherwise delete-first." Supplemented from original_source/: this is
	// detected once at device init from the adapter's virtual-address
	// range, not re-derived every frame.
	PreferEviction bool
}

// freeResidencyState is the tagged variant behind
// (I_FreeGPUResidencyState): each variant snapshots its own candidate set
// and frees bytes from the registry, returning how much it freed and which
// variant the FSM should fall back to next (nil once exhausted).
type freeResidencyState interface {
	process(r *Registry, dev evictor, neededBytes uint64) (freedBytes uint64, fallback freeResidencyState, err error)
}

// evictor is the narrow device slice the free-residency FSM needs.
type evictor interface {
	Evict(objects []hal.Pageable) error
}

type evictState struct{}

// process implements the Evict state: snapshot evictable objects
// (resident, not needed this frame), sort by (usage ascending, size
// descending), evict until budget is met or the list is exhausted. Falling
// through to deleteState is the documented fallback.
func (evictState) process(r *Registry, dev evictor, neededBytes uint64) (uint64, freeResidencyState, error) {
	candidates := r.snapshotEvictable()
	sortEvictionCandidates(candidates)

	var freed uint64
	var toEvict []*PageableObject
	var pageables []hal.Pageable
	for _, obj := range candidates {
		if freed >= neededBytes {
			break
		}
		toEvict = append(toEvict, obj)
		pageables = append(pageables, obj.Pageable)
		freed += obj.MemorySize
	}

	if len(pageables) > 0 {
		if err := dev.Evict(pageables); err != nil {
			return 0, deleteState{}, nil
		}
		for _, obj := range toEvict {
			r.markResident(obj.ID, false)
		}
		hal.Logger().Debug("evicted pageable objects", "count", len(pageables), "freedBytes", freed)
	}

	return freed, deleteState{}, nil
}

// sortEvictionCandidates orders by (usage ascending, size descending) per
// breaking ties on usage with the larger object first so a
// single eviction frees more bytes. UsageEpsilon is the heuristic tolerance
// the source treats two usage metrics within as "equally cold" - kept as a
// named constant rather than reproduced as a magic number (an open
// question).
func sortEvictionCandidates(objs []*PageableObject) {
	sort.SliceStable(objs, func(i, j int) bool {
		di := objs[i].UsageMetric - objs[j].UsageMetric
		if di < -UsageEpsilon || di > UsageEpsilon {
			return objs[i].UsageMetric < objs[j].UsageMetric
		}
		return objs[i].MemorySize > objs[j].MemorySize
	})
}

// UsageEpsilon is the tolerance within which two usage metrics are treated
// as tied by the eviction sort, breaking the tie on size instead. The
// value of 0.01 is an empirical best guess.
const UsageEpsilon = 0.01

// deleteState's process reuses evictor.Evict as the underlying device call:
// a delete-safe object's Evict IS its destruction once the registry
// unregisters it afterward, so no separate device method is needed.
type deleteState struct{}

// process implements the Delete state, the fallback once Evict is
// exhausted: snapshot deletion-safe objects, sort by size ascending (many
// small deletes trim to budget more precisely than one large one), delete
// until budget is met or the list runs out. Delete has no further fallback.
func (deleteState) process(r *Registry, dev evictor, neededBytes uint64) (uint64, freeResidencyState, error) {
	candidates := r.snapshotDeletable()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MemorySize < candidates[j].MemorySize
	})

	var freed uint64
	var toDelete []*PageableObject
	var pageables []hal.Pageable
	for _, obj := range candidates {
		if freed >= neededBytes {
			break
		}
		toDelete = append(toDelete, obj)
		pageables = append(pageables, obj.Pageable)
		freed += obj.MemorySize
	}

	if len(pageables) > 0 {
		if err := dev.Evict(pageables); err != nil {
			return 0, nil, nil
		}
		for _, obj := range toDelete {
			r.Unregister(obj.ID)
		}
		hal.Logger().Debug("deleted pageable objects to meet budget", "count", len(pageables), "freedBytes", freed)
	}

	return freed, nil, nil
}

// RunFreeResidencyFSM drives the Evict/Delete state machine (step
// 2) until r's current resident usage is at or under budget, or both states
// are exhausted. budget.PreferEviction selects the order: Evict then Delete
// when set, Delete then Evict otherwise.
func RunFreeResidencyFSM(r *Registry, dev evictor, budget Budget) error {
	var state freeResidencyState
	if budget.PreferEviction {
		state = evictState{}
	} else {
		state = deleteState{}
	}

	if usage := r.CurrentUsageBytes(); usage > budget.BytesLimit {
		hal.Logger().Info("gpu memory over budget, freeing residency",
			"usageBytes", usage, "budgetBytes", budget.BytesLimit, "preferEviction", budget.PreferEviction)
	}

	for state != nil {
		usage := r.CurrentUsageBytes()
		if usage <= budget.BytesLimit {
			return nil
		}
		excess := usage - budget.BytesLimit

		freed, next, err := state.process(r, dev, excess)
		if err != nil {
			return err
		}
		if !budget.PreferEviction {
			// Delete-first order: Evict follows Delete and is the last state.
			if _, wasDelete := state.(deleteState); wasDelete {
				next = evictState{}
			} else {
				next = nil
			}
		}
		if freed == 0 {
			state = next
			continue
		}
		if r.CurrentUsageBytes() <= budget.BytesLimit {
			return nil
		}
		state = next
	}

	return ErrBudgetExceeded
}
