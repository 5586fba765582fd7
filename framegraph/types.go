// Package framegraph assembles user-authored render-pass bundles into
// execution modules, injects cross-queue synchronization, and drives the
// per-subresource state analysis that turns a frame's declared resource
// dependencies into a concrete barrier schedule.
package framegraph

import (
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// AllSubresources is the sentinel subresource index meaning "every
// subresource of this resource", mirroring D3D12_RESOURCE_BARRIER_ALL_SUBRESOURCES.
const AllSubresources uint32 = 0xffffffff

// ResourceDependency declares that a pass accesses one resource in a
// required state, optionally restricted to a single subresource.
type ResourceDependency struct {
	Resource      arena.ResourceID
	RequiredState hal.ResourceState
	Subresource   uint32
}

// RecordFunc records GPU commands for a pass once its pre-pass barriers
// have been inserted. It is invoked at most once, on whichever worker
// records the pass's execution module.
type RecordFunc func(ctx *RecordContext)

// RenderPass is one unit of recorded GPU work: a queue, a name for
// debugging/PIX markers, its declared resource dependencies, and the
// callback that records it.
type RenderPass struct {
	Queue        hal.QueueKind
	Name         string
	PIXColor     uint32
	Dependencies []ResourceDependency
	Record       RecordFunc

	// ID is assigned during state analysis, when every pass in the frame
	// is enumerated in final bundle/module order; zero until then.
	ID arena.PassID

	// isSyncPoint marks a pass synthesized by sync-point injection rather
	// than user-authored; it carries no Record callback.
	isSyncPoint bool
}

// AddResourceDependency appends a dependency declaration to the pass. All
// dependencies of a pass must be declared before the bundle containing it
// is submitted to a FrameGraphBuilder - declarations are immutable
// thereafter, per the data model's RenderPass definition.
func (p *RenderPass) AddResourceDependency(resource arena.ResourceID, state hal.ResourceState, subresource uint32) {
	p.Dependencies = append(p.Dependencies, ResourceDependency{
		Resource:      resource,
		RequiredState: state,
		Subresource:   subresource,
	})
}

// SetName sets the pass's debug name.
func (p *RenderPass) SetName(name string) { p.Name = name }

// SetPIXColor sets the PIX marker color emitted around the pass's recorded
// commands.
func (p *RenderPass) SetPIXColor(color uint32) { p.PIXColor = color }

// SetRecordCallback sets the callback invoked to record this pass's
// commands.
func (p *RenderPass) SetRecordCallback(fn RecordFunc) { p.Record = fn }

// RenderPassBundle groups render passes evaluated as a unit: one list per
// queue kind, a builder-assigned BundleID, and a sync-point flag the
// compiler sets on bundles it synthesizes (see syncpoint.go). Bundles are
// otherwise immutable once their builder is compiled.
type RenderPassBundle struct {
	ID          arena.BundleID
	perQueue    [hal.NumQueueKinds][]*RenderPass
	isSyncPoint bool
}

// NewRenderPassBundle creates an empty, unassigned bundle. The compiler
// assigns its ID during bundle-ID assignment (see compiler.go); callers
// never set it directly.
func NewRenderPassBundle() *RenderPassBundle {
	return &RenderPassBundle{}
}

// AddRenderPass appends pass to the bundle's list for its queue.
func (b *RenderPassBundle) AddRenderPass(pass *RenderPass) {
	b.perQueue[pass.Queue] = append(b.perQueue[pass.Queue], pass)
}

// Passes returns the passes declared for queue, in declaration order.
func (b *RenderPassBundle) Passes(queue hal.QueueKind) []*RenderPass {
	return b.perQueue[queue]
}

// UsedQueues returns a bitset (1<<QueueKind per used queue) of every queue
// this bundle has at least one pass for.
func (b *RenderPassBundle) UsedQueues() uint8 {
	var mask uint8
	for q := 0; q < hal.NumQueueKinds; q++ {
		if len(b.perQueue[q]) > 0 {
			mask |= 1 << uint(q)
		}
	}
	return mask
}

// QueueCount returns the number of distinct queues this bundle uses.
func (b *RenderPassBundle) QueueCount() int {
	mask := b.UsedQueues()
	n := 0
	for mask != 0 {
		n += int(mask & 1)
		mask >>= 1
	}
	return n
}

// usesCopyQueue reports whether this bundle has any pass on the copy queue.
func (b *RenderPassBundle) usesCopyQueue() bool {
	return len(b.perQueue[hal.QueueCopy]) > 0
}

// IsSyncPoint reports whether the compiler synthesized this bundle during
// sync-point injection rather than a builder authoring it. The submission
// layer uses this to decide which modules need a cross-queue fence wait
// before they may execute, on top of the barriers state analysis already
// scheduled for them.
func (b *RenderPassBundle) IsSyncPoint() bool { return b.isSyncPoint }

// Blackboard is a type-keyed bag builders use to pass data (persistent
// resource handles, frame-constant values) between render modules within a
// frame, without threading it explicitly through every builder call.
// Cleared at the start of each frame slot's reuse.
type Blackboard struct {
	entries map[string]any
}

// NewBlackboard creates an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{entries: make(map[string]any)}
}

// Set stores value under key, overwriting any previous entry.
func (b *Blackboard) Set(key string, value any) { b.entries[key] = value }

// Get returns the value stored under key and whether it was present.
func (b *Blackboard) Get(key string) (any, bool) {
	v, ok := b.entries[key]
	return v, ok
}

// Clear empties the blackboard, called when a FrameGraph slot is reused.
func (b *Blackboard) Clear() {
	for k := range b.entries {
		delete(b.entries, k)
	}
}
