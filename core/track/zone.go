package track

import "github.com/brawler/framegraph/hal"

// Zone is one resource-state requirement entry in the per-resource,
// per-frame sequence the compiler builds before barrier emission. A null
// zone (RequiredState == nil) represents a pass in which the resource is
// not referenced at all; null zones exist purely as placeholders the
// read-combine optimizer may delete once it has absorbed their neighbors.
type Zone struct {
	RequiredState *hal.ResourceState
	EntrancePass  int
	Queue         hal.QueueKind
	Module        int
	// Decay marks a synthetic zone the caller inserts at a module boundary
	// when the resource decays to COMMON (buffers and
	// ALLOW_SIMULTANEOUS_ACCESS textures always; others only when they
	// entered the module in COMMON and every state used in the module is
	// reachable from COMMON by implicit promotion). A decay zone starts a
	// new segment: the optimizer never combines across it.
	Decay bool
}

func (z Zone) isNull() bool { return z.RequiredState == nil && !z.Decay }

// OptimizeZones implements the read-combine FSM: within each segment (a run
// of zones between decay boundaries), read-only zones separated only by
// null zones are folded into a single "accumulator" zone carrying the OR of
// their states, as long as the combined state stays read-only and remains
// performable on the accumulating zone's queue. The first read-only zone of
// a segment is never combined backwards into whatever preceded the decay -
// minimizing the read mask of each barrier is the goal, not maximizing the
// span it covers. A write zone, or a read zone whose merge would leave the
// compute/copy queue's legal-state set, commits whatever is accumulating
// and is kept as its own entry.
func OptimizeZones(zones []Zone) []Zone {
	out := make([]Zone, 0, len(zones))
	var accumulator *Zone

	commit := func() {
		if accumulator != nil {
			out = append(out, *accumulator)
			accumulator = nil
		}
	}

	for i := range zones {
		z := zones[i]
		switch {
		case z.Decay:
			commit()
			out = append(out, z)
		case z.isNull():
			// provisional delete: skip entirely, whether or not an
			// accumulator is active.
		case !z.RequiredState.IsReadOnly():
			commit()
			out = append(out, z)
		default:
			if accumulator == nil {
				a := z
				accumulator = &a
				continue
			}
			combined := accumulator.RequiredState.IsCompatible(*z.RequiredState)
			mergedState := *accumulator.RequiredState | *z.RequiredState
			if combined && queueLegal(accumulator.Queue, mergedState) {
				// Keep the accumulator's original entrance pass: the merged
				// barrier must land at the first reference, not migrate
				// forward as later zones' states are folded in.
				accumulator.RequiredState = &mergedState
			} else {
				commit()
				a := z
				accumulator = &a
			}
		}
	}
	commit()
	return out
}

// computeLegalStates is the subset of hal.ResourceState transitions a
// compute command list may perform: no render-target, depth, or
// stream-out states, which only the direct queue's fixed-function stages
// can be in.
const computeLegalStates = hal.StateUnorderedAccess |
	hal.StateNonPixelShaderResource |
	hal.StateCopySource | hal.StateCopyDest |
	hal.StateIndirectArgument | hal.StateCommon |
	hal.StateVertexAndConstantBuffer

// copyLegalStates is the subset a copy command list may transition
// through: only the two copy states and COMMON.
const copyLegalStates = hal.StateCopySource | hal.StateCopyDest | hal.StateCommon

func queueLegal(queue hal.QueueKind, state hal.ResourceState) bool {
	switch queue {
	case hal.QueueCompute:
		return state&^computeLegalStates == 0
	case hal.QueueCopy:
		return state&^copyLegalStates == 0
	default:
		return true
	}
}

// QueueCanPerformTransition reports whether a command list on queue can
// record the barrier for before -> after. The direct queue can perform any
// transition; compute and copy queues are restricted to their legal state
// subsets, per the D3D12 queue-capability rules the BarrierMerger consults
// when choosing a split-barrier BEGIN slot.
func QueueCanPerformTransition(queue hal.QueueKind, before, after hal.ResourceState) bool {
	return queueLegal(queue, before) && queueLegal(queue, after)
}
