package framegraph

import (
	"fmt"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// RecordContext wraps an open command list for the duration of one pass's
// Record callback, providing type-safe entry points that - while
// hal.DebugAssertionsEnabled - assert the resource they touch was declared
// as a dependency of the current pass with compatible access. Misuse is a
// debug-build assert and undefined behaviour in release; call
// hal.SetDebugAssertions(false) to skip the per-call Dependencies scan.
type RecordContext struct {
	List       hal.CommandList
	pass       *RenderPass
	resolve    func(arena.ResourceID) hal.ResourceHandle
	passHandle func(arena.ResourceID) hal.Resource
	onPresent  func()
}

func newRecordContext(list hal.CommandList, pass *RenderPass, resolveHandle func(arena.ResourceID) hal.ResourceHandle, resolveResource func(arena.ResourceID) hal.Resource) *RecordContext {
	return &RecordContext{List: list, pass: pass, resolve: resolveHandle, passHandle: resolveResource}
}

// NewRecordContext is the exported form of newRecordContext, used by the
// submission layer (which lives in a separate package to avoid a
// framegraph -> submit import cycle) to build a RecordContext for each pass
// it records.
func NewRecordContext(list hal.CommandList, pass *RenderPass, resolveHandle func(arena.ResourceID) hal.ResourceHandle, resolveResource func(arena.ResourceID) hal.Resource) *RecordContext {
	return newRecordContext(list, pass, resolveHandle, resolveResource)
}

// requireDependency panics (in debug builds) if resource is not declared as
// a dependency of the current pass with at least the access bits in want.
func (c *RecordContext) requireDependency(resource arena.ResourceID, want hal.ResourceState) {
	if !hal.DebugAssertionsEnabled() {
		return
	}
	for _, dep := range c.pass.Dependencies {
		if dep.Resource == resource && dep.RequiredState&want == want {
			return
		}
	}
	panic(fmt.Sprintf("framegraph: pass %q used resource without a matching declared dependency", c.pass.Name))
}

// Copy validates both resources were declared (src as a read, dst as a
// write) then records a CopyResource.
func (c *RecordContext) Copy(dst, src arena.ResourceID) {
	c.requireDependency(dst, hal.StateCopyDest)
	c.requireDependency(src, hal.StateCopySource)
	c.List.CopyResource(c.passHandle(dst), c.passHandle(src))
}

// CopyRegion validates both resources then records a CopyBufferRegion over
// the given byte range.
func (c *RecordContext) CopyRegion(dst arena.ResourceID, dstOffset uint64, src arena.ResourceID, srcOffset, size uint64) {
	c.requireDependency(dst, hal.StateCopyDest)
	c.requireDependency(src, hal.StateCopySource)
	c.List.CopyBufferRegion(c.passHandle(dst), dstOffset, c.passHandle(src), srcOffset, size)
}

// Discard validates resource was declared then records DiscardResource,
// hinting the driver that its prior contents need not be preserved.
func (c *RecordContext) Discard(resource arena.ResourceID) {
	c.requireDependency(resource, hal.StateCommon)
	c.List.DiscardResource(c.passHandle(resource))
}

// Barrier manually inserts b without going through the state tracker -
// reserved for UAV barriers a pass needs between two of its own dispatches
// that the compiler's per-module analysis cannot see.
func (c *RecordContext) Barrier(b hal.Barrier) {
	c.List.ResourceBarrier([]hal.Barrier{b})
}

// requireQueue panics (in debug builds) if the current pass does not run on
// one of the allowed queues.
func (c *RecordContext) requireQueue(allowed ...hal.QueueKind) {
	if !hal.DebugAssertionsEnabled() {
		return
	}
	for _, q := range allowed {
		if c.pass.Queue == q {
			return
		}
	}
	panic(fmt.Sprintf("framegraph: pass %q issued a command its %s queue cannot execute", c.pass.Name, c.pass.Queue))
}

// Draw records a non-indexed instanced draw. Direct queue only.
func (c *RecordContext) Draw(vertexCountPerInstance, instanceCount, startVertex, startInstance uint32) {
	c.requireQueue(hal.QueueGraphics)
	c.List.Draw(vertexCountPerInstance, instanceCount, startVertex, startInstance)
}

// DrawIndexed records an indexed instanced draw. Direct queue only.
func (c *RecordContext) DrawIndexed(indexCountPerInstance, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.requireQueue(hal.QueueGraphics)
	c.List.DrawIndexed(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance)
}

// Dispatch records a compute dispatch. Direct or compute queue.
func (c *RecordContext) Dispatch(groupsX, groupsY, groupsZ uint32) {
	c.requireQueue(hal.QueueGraphics, hal.QueueCompute)
	c.List.Dispatch(groupsX, groupsY, groupsZ)
}

// ClearRTV validates target was declared with RENDER_TARGET access, then
// records a render-target clear through rtv.
func (c *RecordContext) ClearRTV(target arena.ResourceID, rtv hal.DescriptorHandle, rgba [4]float32) {
	c.requireQueue(hal.QueueGraphics)
	c.requireDependency(target, hal.StateRenderTarget)
	c.List.ClearRTV(rtv, rgba)
}

// ClearDSV validates target was declared with DEPTH_WRITE access, then
// records a depth-stencil clear through dsv.
func (c *RecordContext) ClearDSV(target arena.ResourceID, dsv hal.DescriptorHandle, depth float32, stencil uint8) {
	c.requireQueue(hal.QueueGraphics)
	c.requireDependency(target, hal.StateDepthWrite)
	c.List.ClearDSV(dsv, depth, stencil)
}

// ExecuteIndirect validates args (and count, if present) were declared as
// INDIRECT_ARGUMENT dependencies, then records the indirect execution.
func (c *RecordContext) ExecuteIndirect(signature any, maxCommands uint32, args arena.ResourceID, argsOffset uint64, count arena.ResourceID, countOffset uint64) {
	c.requireDependency(args, hal.StateIndirectArgument)
	var countRes hal.Resource
	if !count.IsZero() {
		c.requireDependency(count, hal.StateIndirectArgument)
		countRes = c.passHandle(count)
	}
	c.List.ExecuteIndirect(signature, maxCommands, c.passHandle(args), argsOffset, countRes, countOffset)
}

// Present requests presentation at the end of this frame: after the last
// module is submitted, the presentation queue waits on the frame's work and
// every registered present callback runs. Direct queue only.
func (c *RecordContext) Present() {
	c.requireQueue(hal.QueueGraphics)
	if c.onPresent != nil {
		c.onPresent()
	}
}

// OnPresent installs the hook Present fires - the submission layer uses it
// to learn, during recording, that this frame wants presentation.
func (c *RecordContext) OnPresent(fn func()) { c.onPresent = fn }
