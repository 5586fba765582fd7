package framegraph

import (
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// DefaultMaxBundlesPerModule is the greedy packer's cap on bundles per
// execution module. 200 came from experimentation rather than derivation;
// treat it as a tunable, not a contractual limit.
const DefaultMaxBundlesPerModule = 200

// ResourceClass tells the compiler which implicit-decay rule applies to a
// resource: buffers and ALLOW_SIMULTANEOUS_ACCESS textures always decay to
// COMMON at the next ExecuteCommandLists boundary; ordinary default-heap
// textures only decay under the conditions worked out in decaysBetweenModules.
type ResourceClass uint8

const (
	// ClassOrdinaryTexture decays only via copy-queue use or full implicit
	// re-promotion coverage (see decaysBetweenModules).
	ClassOrdinaryTexture ResourceClass = iota
	// ClassAlwaysDecays covers buffers and simultaneous-access textures.
	ClassAlwaysDecays
)

// ResourceInfo is what the compiler's state-analysis pass needs to know
// about a resource, supplied by the caller (normally backed by the
// FrameGraph's resource registry).
type ResourceInfo struct {
	Handle hal.ResourceHandle
	Class  ResourceClass

	// InitialState is the subresource state recorded by the previous
	// frame's compilation (the resource's state manager is the
	// authoritative source). The zero value, COMMON, is correct for
	// resources created this frame.
	InitialState hal.ResourceState

	// InitialStateFromDecay marks an InitialState of COMMON that is the
	// product of implicit decay at the previous frame's final
	// ExecuteCommandLists boundary, rather than the resource's creation
	// state. Only a decayed COMMON is promotion-eligible on first use: a
	// freshly created resource still gets its explicit first transition.
	InitialStateFromDecay bool
}

// ResourceLookup resolves the per-resource info the compiler needs during
// state analysis.
type ResourceLookup func(arena.ResourceID) ResourceInfo

// ExecutionModule is a contiguous run of bundles sharing one
// ExecuteCommandLists call per queue they use.
type ExecutionModule struct {
	ID         arena.ExecutionModuleID
	Bundles    []arena.BundleID
	UsedQueues uint8
}

// CompiledFrame is everything the recording/submission stage needs: the
// final bundle order (including injected sync points), the packed
// execution modules, the barrier schedule keyed by pass, and the state
// every analyzed resource ends the frame in (written back to each
// resource's state manager, then consulted as the initial state at the
// start of the next compilation).
type CompiledFrame struct {
	Bundles     []*RenderPassBundle
	Modules     []*ExecutionModule
	Events      *GPUResourceEventManager
	FinalStates map[arena.ResourceID]FinalState
}

// FinalState is one resource's state at the end of a compiled frame, plus
// whether that state is the product of implicit decay at the frame's final
// module boundary - the bit that decides whether next frame's first use may
// promote implicitly instead of barriering.
type FinalState struct {
	State     hal.ResourceState
	FromDecay bool
}

// FirstPassUsing returns the ID of the earliest pass (in final frame order)
// that declares a dependency on res, used by the transient heap allocator
// to schedule each group member's aliasing barrier just before its first
// use.
func (f *CompiledFrame) FirstPassUsing(res arena.ResourceID) (arena.PassID, bool) {
	for _, b := range f.Bundles {
		for q := 0; q < hal.NumQueueKinds; q++ {
			for _, p := range b.perQueue[q] {
				for _, dep := range p.Dependencies {
					if dep.Resource == res {
						return p.ID, true
					}
				}
			}
		}
	}
	return arena.PassID{}, false
}

// CompileOptions parameterizes a single Compile call.
type CompileOptions struct {
	MaxBundlesPerModule int
	Lookup              ResourceLookup

	// FrameRateLimit caps frames per second, consulted by
	// engine.Engine.ProcessFrame at frame boundaries rather than by Compile
	// itself. Zero means unlimited.
	FrameRateLimit float64
}

// Compile runs bundle-ID assignment, sync-point injection, execution-module
// packing, and per-subresource state analysis over every bundle collected
// from builders, in builder order.
func Compile(builders []*FrameGraphBuilder, opts CompileOptions) *CompiledFrame {
	if opts.MaxBundlesPerModule <= 0 {
		opts.MaxBundlesPerModule = DefaultMaxBundlesPerModule
	}

	bundles := assignBundleIDs(builders)
	bundles = injectSyncPoints(bundles, opts.Lookup)
	modules := packExecutionModules(bundles, opts.MaxBundlesPerModule)
	events, finalStates := analyzeResourceStates(bundles, modules, opts.Lookup)

	return &CompiledFrame{Bundles: bundles, Modules: modules, Events: events, FinalStates: finalStates}
}

// assignBundleIDs flattens every builder's bundles, in builder order, and
// numbers them sequentially. Bundle IDs are the time axis alias tracking
// and submission both order by.
func assignBundleIDs(builders []*FrameGraphBuilder) []*RenderPassBundle {
	var bundles []*RenderPassBundle
	var next uint32
	for _, b := range builders {
		for _, bundle := range b.Bundles() {
			bundle.ID = arena.NewBundleID(next, 0)
			next++
			bundles = append(bundles, bundle)
		}
	}
	return bundles
}
