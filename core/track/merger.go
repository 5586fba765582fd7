package track

import "github.com/brawler/framegraph/hal"

// PassQueueObserver tells the BarrierMerger which queue executes a given
// pass sequence number, so it can find candidate split-barrier BEGIN slots
// between two zones without the merger needing to know about passes,
// bundles, or modules itself.
type PassQueueObserver interface {
	QueueForPass(passIndex int) hal.QueueKind
}

// candidateSlot is the earliest pass seen on one queue kind since the
// merger last emitted a barrier, that is capable of performing the
// transition currently being analyzed.
type candidateSlot struct {
	pass  int
	valid bool
}

// BarrierMerger walks an optimized per-(resource, subresource) zone
// sequence and decides, for each state change, whether to emit a single
// immediate transition barrier or a split BEGIN/END pair. It keeps one
// candidate begin-pass slot per queue kind and always prefers the
// earliest-seen slot, maximizing how much GPU work can hide the
// transition's latency.
type BarrierMerger struct {
	resource    hal.ResourceHandle
	subresource uint32
	observer    PassQueueObserver

	initial           hal.ResourceState
	initialPromotable bool
	final             hal.ResourceState
}

// NewBarrierMerger creates a merger for one (resource, subresource) pair.
// The before-state for the first zone defaults to COMMON; callers carrying
// authoritative state across frames override it with SetInitialState.
func NewBarrierMerger(resource hal.ResourceHandle, subresource uint32, observer PassQueueObserver) *BarrierMerger {
	return &BarrierMerger{resource: resource, subresource: subresource, observer: observer}
}

// SetInitialState seeds the merger with the subresource's state as recorded
// at the end of the previous frame's compilation. promotable marks resources
// whose COMMON state at frame entry is the product of implicit decay
// (buffers, simultaneous-access textures): their first use this frame
// reaches any promotion-eligible state without an explicit barrier, exactly
// as if a decay zone had just been crossed.
func (m *BarrierMerger) SetInitialState(state hal.ResourceState, promotable bool) {
	m.initial = state
	m.initialPromotable = promotable
}

// FinalState reports the subresource's state after the last zone the most
// recent Emit/EmitWithPlacement call walked - the value the resource's
// state manager records for the next frame's compilation.
func (m *BarrierMerger) FinalState() hal.ResourceState { return m.final }

// Emit walks the already-optimized zones (see OptimizeZones) and returns
// the barriers needed to satisfy every non-null, non-decay zone's required
// state, in order.
func (m *BarrierMerger) Emit(zones []Zone) []hal.Barrier {
	barriers, _ := m.EmitWithPlacement(zones)
	return barriers
}

// BarrierPlacement records the pass index a single emitted barrier (or one
// half of a split pair) belongs in - the BEGIN half's placement is the
// candidate slot chosen to hide its latency, not the zone's own entrance
// pass.
type BarrierPlacement struct {
	PassIndex int
}

// EmitWithPlacement is Emit plus, for each returned barrier, the pass index
// it should be recorded at - needed by callers (the frame compiler) that
// must know where to insert a split barrier's BEGIN half, which is earlier
// than the zone's own entrance pass.
func (m *BarrierMerger) EmitWithPlacement(zones []Zone) ([]hal.Barrier, []BarrierPlacement) {
	var out []hal.Barrier
	var placement []BarrierPlacement
	current := m.initial
	currentPass := -1
	justDecayed := m.initialPromotable && m.initial == hal.StateCommon

	var slots [hal.NumQueueKinds]candidateSlot

	resetSlots := func() {
		for i := range slots {
			slots[i] = candidateSlot{}
		}
	}

	for _, z := range zones {
		if z.Decay {
			current = hal.StateCommon
			currentPass = z.EntrancePass
			justDecayed = true
			resetSlots()
			continue
		}
		if z.RequiredState == nil {
			continue
		}
		next := *z.RequiredState
		if next == current {
			justDecayed = false
			continue
		}
		// No transition is needed when the current state already contains
		// every bit the new zone requires (e.g. GENERIC_READ already covers
		// PIXEL_SHADER_RESOURCE) - only an expansion of the state actually
		// needs a barrier.
		if next != hal.StateCommon && current&next == next {
			justDecayed = false
			continue
		}
		// Implicit state promotion: a resource that just decayed to
		// COMMON at a module boundary reaches a promotion-eligible state
		// on its first use in the new module without an explicit barrier.
		// This does not apply to the frame's very first reference to a
		// resource created in COMMON, which still transitions explicitly -
		// only to a zone immediately following a synthetic decay zone.
		if justDecayed && current == hal.StateCommon && next.IsImplicitPromotionEligible() {
			current = next
			currentPass = z.EntrancePass
			justDecayed = false
			resetSlots()
			continue
		}
		justDecayed = false

		// Scan passes strictly between the last fixed point and this
		// zone's entrance for a queue capable of performing the
		// transition; record only the earliest such pass per queue.
		if m.observer != nil {
			for p := currentPass + 1; p < z.EntrancePass; p++ {
				q := m.observer.QueueForPass(p)
				if slots[q].valid {
					continue
				}
				if QueueCanPerformTransition(q, current, next) {
					slots[q] = candidateSlot{pass: p, valid: true}
				}
			}
		}

		earliest, hasGap := earliestSlot(slots)
		if hasGap && earliest < z.EntrancePass {
			out = append(out,
				hal.Barrier{
					Kind: hal.BarrierTransition, Flag: hal.SplitBeginOnly,
					Resource: m.resource, Subresource: m.subresource,
					Before: current, After: next,
				},
				hal.Barrier{
					Kind: hal.BarrierTransition, Flag: hal.SplitEndOnly,
					Resource: m.resource, Subresource: m.subresource,
					Before: current, After: next,
				},
			)
			placement = append(placement,
				BarrierPlacement{PassIndex: earliest},
				BarrierPlacement{PassIndex: z.EntrancePass},
			)
		} else {
			out = append(out, hal.Barrier{
				Kind: hal.BarrierTransition, Flag: hal.SplitNone,
				Resource: m.resource, Subresource: m.subresource,
				Before: current, After: next,
			})
			placement = append(placement, BarrierPlacement{PassIndex: z.EntrancePass})
		}

		current = next
		currentPass = z.EntrancePass
		resetSlots()
	}
	m.final = current
	return out, placement
}

func earliestSlot(slots [hal.NumQueueKinds]candidateSlot) (int, bool) {
	best := -1
	found := false
	for _, s := range slots {
		if !s.valid {
			continue
		}
		if !found || s.pass < best {
			best = s.pass
			found = true
		}
	}
	return best, found
}
