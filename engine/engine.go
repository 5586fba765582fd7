// Package engine ties the FrameGraph core's four subsystems - compilation,
// state tracking, transient aliasing, and residency - into the frame loop
// a host application drives: collect each render module's declared work,
// compile it, make its resources resident, and submit it, repeating across
// a small ring of frames in flight so the CPU never waits on the GPU
// between frames it doesn't have to.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/brawler/framegraph/alias"
	"github.com/brawler/framegraph/descriptor"
	"github.com/brawler/framegraph/framegraph"
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/internal/jobs"
	"github.com/brawler/framegraph/residency"
	"github.com/brawler/framegraph/resource"
	"github.com/brawler/framegraph/submit"
)

// FramesInFlight is the size of the frame-slot ring: the host may have this
// many frames' worth of command lists outstanding on the GPU at once before
// ProcessFrame blocks waiting for the oldest one to retire.
const FramesInFlight = 3

// ModuleFunc is one render module's contribution to a frame: it creates
// transient resources and declares render-pass bundles against the builder
// it's handed. Modules run concurrently with each other (one job-pool task
// per module) and must not share mutable state outside the Blackboard.
type ModuleFunc func(*framegraph.FrameGraphBuilder)

// FrameResult is what a host application needs after ProcessFrame returns:
// the per-queue submission diagnostics for frame-time telemetry.
type FrameResult struct {
	Stats submit.SubmissionStats
}

type frameSlot struct {
	blackboard    *framegraph.Blackboard
	descTable     *descriptor.Table
	lastStats     submit.SubmissionStats
	everSubmitted bool

	// Transients and heaps from this slot's last frame, destroyed only at
	// slot reuse, once the slot's fences have retired - the GPU may still
	// be reading them until then.
	retiredTransients []*resource.GPUResource
	retiredHeaps      *resource.FrameAllocation
}

// Engine is the top-level orchestrator a host application creates once per
// device and calls ProcessFrame on once per frame.
type Engine struct {
	dev       hal.Device
	pool      *jobs.Pool
	registry  *residency.Registry
	submitter *submit.Submitter
	budget    residency.Budget

	presentation *submit.PresentationManager

	// resources and transientAlloc are set by AttachResources; without
	// them ProcessFrame runs the caller-supplied factory/resolver path and
	// skips transient heap realization.
	resources      *resource.Registry
	transientAlloc *resource.TransientHeapAllocator

	slots         [FramesInFlight]*frameSlot
	frameNumber   uint64
	lastFrameTime time.Time
}

// NewEngine creates the submission queues/fences and the residency registry
// for dev, and allocates the frame-in-flight ring. Entries of descTables may
// be nil if the host doesn't use the per-frame bindless descriptor region.
func NewEngine(dev hal.Device, pool *jobs.Pool, budget residency.Budget, descTables [FramesInFlight]*descriptor.Table) (*Engine, error) {
	submitter, err := submit.NewSubmitter(dev, pool)
	if err != nil {
		return nil, fmt.Errorf("engine: creating submitter: %w", err)
	}

	e := &Engine{
		dev:          dev,
		pool:         pool,
		registry:     residency.NewRegistry(),
		submitter:    submitter,
		budget:       budget,
		presentation: submit.NewPresentationManager(),
	}
	submitter.SetPresentationManager(e.presentation)
	for i := range e.slots {
		e.slots[i] = &frameSlot{
			blackboard: framegraph.NewBlackboard(),
			descTable:  descTables[i],
		}
	}
	return e, nil
}

// Registry exposes the residency registry so resource-creation code can
// Register new pageable objects (heaps, committed resources) as they're
// created, and Touch them when a pass declares a dependency on them.
func (e *Engine) Registry() *residency.Registry { return e.registry }

// Presentation exposes the presentation manager consumers register their
// swapchain present callbacks with.
func (e *Engine) Presentation() *submit.PresentationManager { return e.presentation }

// AttachResources installs the resource registry as the engine's transient
// factory, barrier resolver, and state-carryover store, and creates the
// transient heap allocator that realizes alias groups each frame. Call once
// at init.
func (e *Engine) AttachResources(reg *resource.Registry) {
	e.resources = reg
	e.transientAlloc = resource.NewTransientHeapAllocator(e.dev, reg, e.registry)
}

// Close stops the submission thread. Every in-flight frame must have
// retired before calling Close.
func (e *Engine) Close() { e.submitter.Close() }

// ProcessFrame runs one full frame: waits for the reused slot's prior frame
// to retire, resets its per-frame state, collects every module's builder
// concurrently, compiles the frame, packs transient resources into aliased
// heaps, runs the residency pass, and submits.
func (e *Engine) ProcessFrame(
	ctx context.Context,
	modules []ModuleFunc,
	factory framegraph.ResourceFactory,
	resolver submit.ResourceResolver,
	transients func() []alias.TransientResource,
	heapTier alias.HeapTier,
	opts framegraph.CompileOptions,
) (FrameResult, error) {
	e.waitForFrameRateLimit(opts.FrameRateLimit)

	slot := e.slots[e.frameNumber%FramesInFlight]

	if slot.everSubmitted {
		if err := e.waitSlotRetired(ctx, slot); err != nil {
			return FrameResult{}, fmt.Errorf("engine: waiting for frame slot to retire: %w", err)
		}
	}
	e.destroyRetired(slot)

	slot.blackboard.Clear()
	if slot.descTable != nil {
		slot.descTable.ResetFrame(e.frameNumber)
	}

	builders := e.collectBuilders(modules, factory, slot.blackboard)

	compiled := framegraph.Compile(builders, opts)

	// Frame flags reset before realization: heaps created for this frame's
	// alias groups Touch the residency registry and must stay flagged for
	// the residency pass below.
	e.registry.ResetFrameFlags()

	if e.resources != nil {
		lifetimes := e.resources.TransientLifetimes(compiled, e.dev.GetResourceAllocationInfo)
		groups := alias.Pack(lifetimes, heapTier, 0)
		logAliasGroups(groups)
		frameAlloc, aliasEvents, err := e.transientAlloc.Realize(groups)
		if err != nil {
			return FrameResult{}, fmt.Errorf("engine: realizing transient heaps: %w", err)
		}
		slot.retiredHeaps = frameAlloc
		for _, ev := range aliasEvents {
			if pass, ok := compiled.FirstPassUsing(ev.Resource); ok {
				compiled.Events.AddFront(pass, ev.Barrier)
			}
		}
		e.resources.ApplyFinalStates(compiled.FinalStates)
	} else if transients != nil {
		groups := alias.Pack(transients(), heapTier, 0)
		logAliasGroups(groups)
	}

	completion := residency.RunPass(ctx, e.pool, e.dev, e.registry, e.budget)
	if err := completion.Wait(ctx); err != nil {
		return FrameResult{}, fmt.Errorf("engine: residency pass: %w", err)
	}

	stats, err := e.submitter.Submit(ctx, compiled, resolver)
	if err != nil {
		return FrameResult{}, fmt.Errorf("engine: submit: %w", err)
	}

	if e.resources != nil {
		slot.retiredTransients = e.resources.DrainTransients()
	}

	slot.lastStats = stats
	slot.everSubmitted = true
	e.frameNumber++
	e.lastFrameTime = time.Now()

	return FrameResult{Stats: stats}, nil
}

// destroyRetired releases the transients and heaps a slot held from its
// prior frame. Called only after waitSlotRetired confirms the GPU is done
// with them.
func (e *Engine) destroyRetired(slot *frameSlot) {
	for _, res := range slot.retiredTransients {
		res.Release()
	}
	slot.retiredTransients = nil
	slot.retiredHeaps.Release()
	slot.retiredHeaps = nil
}

// waitForFrameRateLimit sleeps, if necessary, so that no less than
// 1/limit seconds have elapsed since the previous ProcessFrame call
// returned - the one runtime tunable consuming applications set,
// consulted only at this frame boundary.
// A non-positive limit (the zero value) means unlimited.
func (e *Engine) waitForFrameRateLimit(limit float64) {
	if limit <= 0 || e.lastFrameTime.IsZero() {
		return
	}
	minInterval := time.Duration(float64(time.Second) / limit)
	if elapsed := time.Since(e.lastFrameTime); elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
}

// waitSlotRetired blocks until every queue slot used last time it held this
// ring position has completed, so its command allocators are safe to Reset.
func (e *Engine) waitSlotRetired(ctx context.Context, slot *frameSlot) error {
	for q := 0; q < hal.NumQueueKinds; q++ {
		target := slot.lastStats.Queues[q].LastSubmitted
		if target == 0 {
			continue
		}
		fence := e.submitter.QueueFence(hal.QueueKind(q))
		if err := fence.WaitCPU(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

// collectBuilders runs each module concurrently on the job pool, returning
// their builders in module order regardless of completion order - bundle
// IDs and submission both depend on that order being deterministic.
func (e *Engine) collectBuilders(modules []ModuleFunc, factory framegraph.ResourceFactory, board *framegraph.Blackboard) []*framegraph.FrameGraphBuilder {
	builders := make([]*framegraph.FrameGraphBuilder, len(modules))

	group := jobs.NewJobGroup(e.pool)
	for i, mod := range modules {
		i, mod := i, mod
		b := framegraph.NewFrameGraphBuilder(factory, board)
		builders[i] = b
		group.AddJob(func() {
			mod(b)
		})
	}
	group.ExecuteJobs()

	return builders
}

func logAliasGroups(groups []alias.AliasableResourceGroup) {
	if len(groups) == 0 {
		return
	}
	hal.Logger().Debug("packed transient resources into alias groups", "groups", len(groups))
}
