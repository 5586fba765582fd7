package framegraph

import (
	"testing"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

func ordinaryTextureLookup(handle hal.ResourceHandle) ResourceLookup {
	return func(arena.ResourceID) ResourceInfo {
		return ResourceInfo{Handle: handle, Class: ClassOrdinaryTexture}
	}
}

func alwaysDecaysLookup(handle hal.ResourceHandle) ResourceLookup {
	return func(arena.ResourceID) ResourceInfo {
		return ResourceInfo{Handle: handle, Class: ClassAlwaysDecays}
	}
}

func addPass(b *RenderPassBundle, queue hal.QueueKind, dep ResourceDependency) *RenderPass {
	p := &RenderPass{Queue: queue}
	p.Dependencies = append(p.Dependencies, dep)
	b.AddRenderPass(p)
	return p
}

func builderWith(bundles ...*RenderPassBundle) *FrameGraphBuilder {
	b := NewFrameGraphBuilder(nil, NewBlackboard())
	for _, bundle := range bundles {
		b.AddRenderPassBundle(bundle)
	}
	return b
}

// A single-queue read-combine across a null zone
// collapses to one transition at the first reference, with no event at the
// later pass whose state got folded in.
func TestCompile_SingleQueueReadCombine(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	b1 := NewRenderPassBundle()
	p1 := addPass(b1, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StatePixelShaderResource, Subresource: AllSubresources})
	p2 := addPass(b1, hal.QueueGraphics, ResourceDependency{Resource: arena.NewResourceID(2, 0), RequiredState: hal.StateRenderTarget, Subresource: AllSubresources})
	p3 := addPass(b1, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateNonPixelShaderResource, Subresource: AllSubresources})

	// Distinct handles per resource, so res's barriers can be told apart from
	// the split BEGIN of the other resource's first transition, which also
	// lands on P1.
	lookup := func(id arena.ResourceID) ResourceInfo {
		return ResourceInfo{Handle: hal.ResourceHandle(id.Index()), Class: ClassOrdinaryTexture}
	}
	frame := Compile([]*FrameGraphBuilder{builderWith(b1)}, CompileOptions{Lookup: lookup})

	var got []hal.Barrier
	for _, e := range frame.Events.EventsFor(p1.ID) {
		if e.Resource == 1 {
			got = append(got, e)
		}
	}
	if len(got) != 1 {
		t.Fatalf("events on P1 = %d, want 1", len(got))
	}
	want := hal.StatePixelShaderResource | hal.StateNonPixelShaderResource
	if got[0].Before != hal.StateCommon || got[0].After != want || got[0].Flag != hal.SplitNone {
		t.Errorf("P1 event = %+v, want before=COMMON after=%v flag=SplitNone", got[0], want)
	}
	if events := frame.Events.EventsFor(p3.ID); len(events) != 0 {
		t.Errorf("events on P3 = %+v, want none", events)
	}
	_ = p2
}

// A bundle whose resource is used concurrently on the
// direct and compute queues gets a preceding sync-point bundle carrying a
// single COMMON -> union transition, and no transition inside the bundle
// itself.
func TestCompile_CrossQueueSyncPoint(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	b1 := NewRenderPassBundle()
	addPass(b1, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StatePixelShaderResource, Subresource: AllSubresources})
	addPass(b1, hal.QueueCompute, ResourceDependency{Resource: res, RequiredState: hal.StateNonPixelShaderResource, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(b1)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	if len(frame.Bundles) != 2 {
		t.Fatalf("len(Bundles) = %d, want 2 (injected sync point + B1)", len(frame.Bundles))
	}
	sp := frame.Bundles[0]
	if !sp.IsSyncPoint() {
		t.Fatalf("Bundles[0] is not marked as a sync point")
	}
	spPasses := sp.Passes(hal.QueueGraphics)
	if len(spPasses) != 1 {
		t.Fatalf("sync-point bundle has %d direct passes, want 1", len(spPasses))
	}
	spEvents := frame.Events.EventsFor(spPasses[0].ID)
	if len(spEvents) != 1 {
		t.Fatalf("sync-point events = %d, want 1", len(spEvents))
	}
	want := hal.StatePixelShaderResource | hal.StateNonPixelShaderResource
	if spEvents[0].Before != hal.StateCommon || spEvents[0].After != want {
		t.Errorf("sync-point event = %+v, want before=COMMON after=%v", spEvents[0], want)
	}

	b1direct := frame.Bundles[1].Passes(hal.QueueGraphics)[0]
	b1compute := frame.Bundles[1].Passes(hal.QueueCompute)[0]
	if ev := frame.Events.EventsFor(b1direct.ID); len(ev) != 0 {
		t.Errorf("B1 direct pass has events %+v, want none", ev)
	}
	if ev := frame.Events.EventsFor(b1compute.ID); len(ev) != 0 {
		t.Errorf("B1 compute pass has events %+v, want none", ev)
	}
}

// A copy-queue write decays to COMMON at the module
// boundary; a subsequent module's need for a promotion-eligible state is
// satisfied by implicit promotion and emits no barrier.
func TestCompile_CopyQueueDecayThenImplicitPromotion(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	copyBundle := NewRenderPassBundle()
	copyPass := addPass(copyBundle, hal.QueueCopy, ResourceDependency{Resource: res, RequiredState: hal.StateCopyDest, Subresource: AllSubresources})

	directBundle := NewRenderPassBundle()
	directPass := addPass(directBundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateVertexAndConstantBuffer, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(copyBundle, directBundle)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	if len(frame.Modules) != 2 {
		t.Fatalf("len(Modules) = %d, want 2 (copy queue forces its own module)", len(frame.Modules))
	}

	copyEvents := frame.Events.EventsFor(copyPass.ID)
	if len(copyEvents) != 1 || copyEvents[0].Before != hal.StateCommon || copyEvents[0].After != hal.StateCopyDest {
		t.Fatalf("copy pass events = %+v, want one COMMON -> COPY_DEST transition", copyEvents)
	}

	if ev := frame.Events.EventsFor(directPass.ID); len(ev) != 0 {
		t.Errorf("direct pass events = %+v, want none (implicit promotion from COMMON)", ev)
	}
}

// A state change separated from its triggering pass by
// at least one intervening pass on a capable queue emits a split BEGIN/END
// pair rather than a single immediate barrier.
func TestCompile_SplitBarrierAcrossGap(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	bundle := NewRenderPassBundle()
	p1 := addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateRenderTarget, Subresource: AllSubresources})
	p2 := &RenderPass{Queue: hal.QueueGraphics}
	bundle.AddRenderPass(p2)
	p3 := &RenderPass{Queue: hal.QueueGraphics}
	bundle.AddRenderPass(p3)
	p4 := addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StatePixelShaderResource, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(bundle)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	// P1 itself only carries the COMMON -> RENDER_TARGET transition that
	// establishes the before-state; the RENDER_TARGET -> PIXEL_SHADER_RESOURCE
	// split's BEGIN half is the earliest candidate pass strictly after P1 (the
	// events model attaches barriers immediately before a pass's own
	// commands, so "begins right after P1 records" lands on P2, the first
	// pass in the gap).
	p1Events := frame.Events.EventsFor(p1.ID)
	if len(p1Events) != 1 || p1Events[0].Flag != hal.SplitNone || p1Events[0].After != hal.StateRenderTarget {
		t.Fatalf("P1 events = %+v, want one immediate COMMON -> RENDER_TARGET transition", p1Events)
	}

	p2Events := frame.Events.EventsFor(p2.ID)
	if len(p2Events) != 1 {
		t.Fatalf("P2 events = %d, want 1 (the split BEGIN for resource 1's RT -> PSR transition)", len(p2Events))
	}
	if p2Events[0].Flag != hal.SplitBeginOnly || p2Events[0].Resource != 1 {
		t.Errorf("P2 event = %+v, want SplitBeginOnly on resource 1", p2Events[0])
	}

	p4Events := frame.Events.EventsFor(p4.ID)
	if len(p4Events) != 1 {
		t.Fatalf("P4 events = %d, want 1", len(p4Events))
	}
	if p4Events[0].Flag != hal.SplitEndOnly {
		t.Errorf("P4 event flag = %v, want SplitEndOnly", p4Events[0].Flag)
	}
}

func TestCompile_BundleIDsAssignedInBuilderOrder(t *testing.T) {
	b1 := NewRenderPassBundle()
	b2 := NewRenderPassBundle()
	b3 := NewRenderPassBundle()

	frame := Compile([]*FrameGraphBuilder{builderWith(b1, b2), builderWith(b3)}, CompileOptions{})

	for i, b := range frame.Bundles {
		if b.ID.Index() != uint32(i) {
			t.Errorf("Bundles[%d].ID.Index() = %d, want %d", i, b.ID.Index(), i)
		}
	}
}

// Concurrent direct+compute use of one resource must combine to a
// read-only state; a write bit in the union is a misuse assertion while
// debug assertions are enabled, and undefined behaviour once disabled.
func TestCompile_CrossQueueWritableStateAsserts(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	writableBundle := func() *FrameGraphBuilder {
		b := NewRenderPassBundle()
		addPass(b, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateUnorderedAccess, Subresource: AllSubresources})
		addPass(b, hal.QueueCompute, ResourceDependency{Resource: res, RequiredState: hal.StateNonPixelShaderResource, Subresource: AllSubresources})
		return builderWith(b)
	}

	hal.SetDebugAssertions(true)
	defer hal.SetDebugAssertions(true)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected a panic for a writable cross-queue combined state")
			}
		}()
		Compile([]*FrameGraphBuilder{writableBundle()}, CompileOptions{Lookup: ordinaryTextureLookup(1)})
	}()

	// With assertions disabled the check is skipped entirely.
	hal.SetDebugAssertions(false)
	Compile([]*FrameGraphBuilder{writableBundle()}, CompileOptions{Lookup: ordinaryTextureLookup(1)})
}

func TestCompile_AlwaysDecayingResourceSkipsSyncPoint(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	bundle := NewRenderPassBundle()
	addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateVertexAndConstantBuffer, Subresource: AllSubresources})
	addPass(bundle, hal.QueueCompute, ResourceDependency{Resource: res, RequiredState: hal.StateVertexAndConstantBuffer, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(bundle)}, CompileOptions{Lookup: alwaysDecaysLookup(1)})

	if len(frame.Bundles) != 1 {
		t.Fatalf("len(Bundles) = %d, want 1 (buffer decays implicitly, no sync point needed)", len(frame.Bundles))
	}
}

// The compiled frame's FinalStates are what the resource registry writes
// back into each state manager: the post-frame state, plus whether it was
// produced by implicit decay at the last module boundary.
func TestCompile_FinalStatesCarryEndOfFrameState(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	bundle := NewRenderPassBundle()
	addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateRenderTarget, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(bundle)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	final, ok := frame.FinalStates[res]
	if !ok {
		t.Fatal("no FinalStates entry for the analyzed resource")
	}
	if final.State != hal.StateRenderTarget || final.FromDecay {
		t.Errorf("final = %+v, want RENDER_TARGET without decay", final)
	}
}

func TestCompile_FinalStatesDecayAfterPromotionEligibleModule(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	copyBundle := NewRenderPassBundle()
	addPass(copyBundle, hal.QueueCopy, ResourceDependency{Resource: res, RequiredState: hal.StateCopyDest, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(copyBundle)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	final := frame.FinalStates[res]
	if final.State != hal.StateCommon || !final.FromDecay {
		t.Errorf("final = %+v, want COMMON via decay (copy-queue use decays at the module boundary)", final)
	}
}

// Cross-frame promotion: a buffer that decayed to COMMON at the
// end of the previous frame reaches VERTEX_AND_CONSTANT_BUFFER by implicit
// promotion, so the new frame's compilation emits no barrier for it - but a
// freshly created buffer in COMMON still gets its explicit first
// transition.
func TestCompile_DecayedInitialStatePromotesAcrossFrames(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	compile := func(fromDecay bool) *CompiledFrame {
		bundle := NewRenderPassBundle()
		addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StateVertexAndConstantBuffer, Subresource: AllSubresources})
		lookup := func(arena.ResourceID) ResourceInfo {
			return ResourceInfo{Handle: 1, Class: ClassAlwaysDecays, InitialState: hal.StateCommon, InitialStateFromDecay: fromDecay}
		}
		return Compile([]*FrameGraphBuilder{builderWith(bundle)}, CompileOptions{Lookup: lookup})
	}

	decayed := compile(true)
	for _, b := range decayed.Bundles {
		for _, p := range b.Passes(hal.QueueGraphics) {
			if ev := decayed.Events.EventsFor(p.ID); len(ev) != 0 {
				t.Errorf("decayed-entry frame emitted %+v, want no barrier (implicit promotion)", ev)
			}
		}
	}

	fresh := compile(false)
	total := 0
	for _, b := range fresh.Bundles {
		for _, p := range b.Passes(hal.QueueGraphics) {
			total += len(fresh.Events.EventsFor(p.ID))
		}
	}
	if total != 1 {
		t.Errorf("fresh-resource frame emitted %d barriers, want 1 explicit first transition", total)
	}
}

// A carried non-COMMON state that already contains the new frame's
// requirement needs no barrier at all.
func TestCompile_CarriedStateAlreadyContainingRequirement(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	bundle := NewRenderPassBundle()
	pass := addPass(bundle, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StatePixelShaderResource, Subresource: AllSubresources})
	lookup := func(arena.ResourceID) ResourceInfo {
		return ResourceInfo{Handle: 1, Class: ClassOrdinaryTexture, InitialState: hal.StatePixelShaderResource | hal.StateNonPixelShaderResource}
	}

	frame := Compile([]*FrameGraphBuilder{builderWith(bundle)}, CompileOptions{Lookup: lookup})
	if ev := frame.Events.EventsFor(pass.ID); len(ev) != 0 {
		t.Errorf("events = %+v, want none (carried state already contains the requirement)", ev)
	}
}

func TestCompiledFrame_FirstPassUsing(t *testing.T) {
	res := arena.NewResourceID(1, 0)

	b1 := NewRenderPassBundle()
	addPass(b1, hal.QueueGraphics, ResourceDependency{Resource: arena.NewResourceID(9, 0), RequiredState: hal.StateRenderTarget, Subresource: AllSubresources})
	b2 := NewRenderPassBundle()
	p := addPass(b2, hal.QueueGraphics, ResourceDependency{Resource: res, RequiredState: hal.StatePixelShaderResource, Subresource: AllSubresources})

	frame := Compile([]*FrameGraphBuilder{builderWith(b1, b2)}, CompileOptions{Lookup: ordinaryTextureLookup(1)})

	got, ok := frame.FirstPassUsing(res)
	if !ok || got != p.ID {
		t.Errorf("FirstPassUsing = %v/%v, want %v/true", got, ok, p.ID)
	}
	if _, ok := frame.FirstPassUsing(arena.NewResourceID(42, 0)); ok {
		t.Error("FirstPassUsing found a pass for an unused resource")
	}
}

func TestCompile_ExecutionModuleCapSplitsLongRuns(t *testing.T) {
	var bundles []*RenderPassBundle
	for i := 0; i < 5; i++ {
		b := NewRenderPassBundle()
		addPass(b, hal.QueueGraphics, ResourceDependency{Resource: arena.NewResourceID(uint32(i), 0), RequiredState: hal.StateRenderTarget, Subresource: AllSubresources})
		bundles = append(bundles, b)
	}

	frame := Compile([]*FrameGraphBuilder{builderWith(bundles...)}, CompileOptions{MaxBundlesPerModule: 2})

	if len(frame.Modules) != 3 {
		t.Fatalf("len(Modules) = %d, want 3 for 5 bundles capped at 2 per module", len(frame.Modules))
	}
	if len(frame.Modules[0].Bundles) != 2 || len(frame.Modules[1].Bundles) != 2 || len(frame.Modules[2].Bundles) != 1 {
		t.Errorf("module sizes = %d,%d,%d, want 2,2,1",
			len(frame.Modules[0].Bundles), len(frame.Modules[1].Bundles), len(frame.Modules[2].Bundles))
	}
}
