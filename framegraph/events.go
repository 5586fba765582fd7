package framegraph

import (
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/core/track"
	"github.com/brawler/framegraph/hal"
)

// GPUResourceEventManager maps a render pass (by identity) to the ordered
// list of barriers that must be recorded immediately before that pass's
// commands, as computed by per-subresource state analysis.
type GPUResourceEventManager struct {
	events map[arena.PassID][]hal.Barrier
}

func newGPUResourceEventManager() *GPUResourceEventManager {
	return &GPUResourceEventManager{events: make(map[arena.PassID][]hal.Barrier)}
}

// EventsFor returns the barriers to emit before pass, or nil if it needs
// none.
func (m *GPUResourceEventManager) EventsFor(pass arena.PassID) []hal.Barrier {
	return m.events[pass]
}

// merge appends barriers to pass's event list in this manager - used to
// fold a single resource's scheduled barriers into the frame-wide one.
func (m *GPUResourceEventManager) merge(pass arena.PassID, barriers []hal.Barrier) {
	if len(barriers) == 0 {
		return
	}
	m.events[pass] = append(m.events[pass], barriers...)
}

// AddFront prepends a barrier to pass's event list. Aliasing barriers go
// through here after compilation: a placed resource's ALIASING barrier must
// execute before any transition barrier the state tracker scheduled for the
// same pass.
func (m *GPUResourceEventManager) AddFront(pass arena.PassID, b hal.Barrier) {
	if m.events == nil {
		m.events = make(map[arena.PassID][]hal.Barrier)
	}
	m.events[pass] = append([]hal.Barrier{b}, m.events[pass]...)
}

// flatPass is one (pass, queue, module) triple in final frame order, used
// both as the global pass-sequence axis Zone.EntrancePass indexes into and
// as the PassQueueObserver the BarrierMerger consults for split-barrier
// candidate slots.
type flatPass struct {
	pass   *RenderPass
	queue  hal.QueueKind
	module int
}

type passSequence struct {
	passes []flatPass
}

// QueueForPass implements track.PassQueueObserver.
func (s *passSequence) QueueForPass(passIndex int) hal.QueueKind {
	return s.passes[passIndex].queue
}

// flattenPasses walks modules in order and assigns every pass (sync-point
// passes included) a PassID equal to its position in the global sequence,
// the axis both Zone.EntrancePass and the BarrierMerger's candidate-slot
// scan operate on.
func flattenPasses(bundles []*RenderPassBundle, modules []*ExecutionModule) *passSequence {
	bundleByID := make(map[arena.BundleID]*RenderPassBundle, len(bundles))
	for _, b := range bundles {
		bundleByID[b.ID] = b
	}

	seq := &passSequence{}
	var next uint32
	for mi, mod := range modules {
		for _, bid := range mod.Bundles {
			b := bundleByID[bid]
			for q := 0; q < hal.NumQueueKinds; q++ {
				for _, p := range b.perQueue[q] {
					p.ID = arena.NewPassID(next, 0)
					seq.passes = append(seq.passes, flatPass{pass: p, queue: hal.QueueKind(q), module: mi})
					next++
				}
			}
		}
	}
	return seq
}

// analyzeResourceStates runs per-subresource state analysis for
// every resource referenced anywhere in the frame and returns the
// frame-wide barrier schedule.
func analyzeResourceStates(bundles []*RenderPassBundle, modules []*ExecutionModule, lookup ResourceLookup) (*GPUResourceEventManager, map[arena.ResourceID]FinalState) {
	seq := flattenPasses(bundles, modules)
	frame := newGPUResourceEventManager()
	finalStates := make(map[arena.ResourceID]FinalState)

	// Group the flattened passes' dependencies by resource, preserving
	// frame order, and note the module index each zone belongs to so decay
	// boundaries can be inserted between zones from different modules.
	type resourceTrack struct {
		order []int // pass-sequence indices referencing this resource
	}
	tracks := make(map[arena.ResourceID]*resourceTrack)
	var order []arena.ResourceID

	for i, fp := range seq.passes {
		for _, dep := range fp.pass.Dependencies {
			t, ok := tracks[dep.Resource]
			if !ok {
				t = &resourceTrack{}
				tracks[dep.Resource] = t
				order = append(order, dep.Resource)
			}
			t.order = append(t.order, i)
		}
	}

	for _, resID := range order {
		t := tracks[resID]
		info := ResourceInfo{}
		if lookup != nil {
			info = lookup(resID)
		}

		zones := buildZones(resID, t.order, seq, info)
		optimized := track.OptimizeZones(zones)

		merger := track.NewBarrierMerger(info.Handle, AllSubresources, seq)
		merger.SetInitialState(info.InitialState, info.InitialStateFromDecay)
		barriers, placement := merger.EmitWithPlacement(optimized)

		for i, b := range barriers {
			passID := seq.passes[placement[i].PassIndex].pass.ID
			frame.merge(passID, []hal.Barrier{b})
		}

		// The state the resource carries into the next frame: the merger's
		// final state, unless the frame's last module using the resource
		// implies decay at its ExecuteCommandLists boundary.
		final := FinalState{State: merger.FinalState()}
		if len(t.order) > 0 {
			lastModule := seq.passes[t.order[len(t.order)-1]].module
			if decaysBetweenModules(info, resID, seq, lastModule) {
				final = FinalState{State: hal.StateCommon, FromDecay: true}
			}
		}
		finalStates[resID] = final
	}

	return frame, finalStates
}

// buildZones produces the ordered Zone sequence for one resource: one zone
// per pass index in refs (the passes that declared a dependency on it),
// with a synthetic decay zone inserted whenever the module boundary implies
// implicit decay for this resource.
func buildZones(resID arena.ResourceID, refs []int, seq *passSequence, info ResourceInfo) []track.Zone {
	var zones []track.Zone
	lastModule := -1

	for _, passIdx := range refs {
		fp := seq.passes[passIdx]
		if lastModule != -1 && fp.module != lastModule {
			if decaysBetweenModules(info, resID, seq, lastModule) {
				zones = append(zones, track.Zone{Decay: true, EntrancePass: passIdx, Module: fp.module})
			}
		}
		lastModule = fp.module

		var dep *ResourceDependency
		for i := range fp.pass.Dependencies {
			if fp.pass.Dependencies[i].Resource == resID {
				dep = &fp.pass.Dependencies[i]
				break
			}
		}
		if dep == nil {
			continue
		}
		state := dep.RequiredState
		zones = append(zones, track.Zone{
			RequiredState: &state,
			EntrancePass:  passIdx,
			Queue:         fp.queue,
			Module:        fp.module,
		})
	}
	return zones
}

// decaysBetweenModules decides implicit decay: a resource decays to COMMON
// at a module boundary if it always decays (buffers, simultaneous-access
// textures), if it was used on the copy queue in the module just ended, or
// if every state the resource needed in that module is implicit-promotion
// reachable from COMMON.
func decaysBetweenModules(info ResourceInfo, resID arena.ResourceID, seq *passSequence, priorModule int) bool {
	if info.Class == ClassAlwaysDecays {
		return true
	}

	usedCopy := false
	var unionStates hal.ResourceState
	for _, fp := range seq.passes {
		if fp.module != priorModule {
			continue
		}
		for _, dep := range fp.pass.Dependencies {
			if dep.Resource != resID {
				continue
			}
			if fp.queue == hal.QueueCopy {
				usedCopy = true
			}
			unionStates |= dep.RequiredState
		}
	}
	if usedCopy {
		return true
	}
	return unionStates.IsImplicitPromotionEligible()
}
