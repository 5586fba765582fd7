package framegraph

import (
	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// ResourceFactory creates the transient resources a FrameGraphBuilder hands
// out. The FrameGraph backs it with a Device plus its own transient-resource
// arena; tests can substitute a stub.
type ResourceFactory interface {
	CreateTransientResource(desc hal.ResourceDescriptor) arena.ResourceID
}

// FrameGraphBuilder is the per-render-module entry point: it creates
// transient resources and accumulates the bundles that module contributes
// to the frame. One builder is produced per enabled render module, each
// invoked on its own worker job (see engine.Engine.collectBuilders), then collected in
// deterministic module order before compilation.
type FrameGraphBuilder struct {
	factory    ResourceFactory
	blackboard *Blackboard
	bundles    []*RenderPassBundle
}

// NewFrameGraphBuilder creates a builder backed by factory, sharing board
// across every builder collected for the same frame.
func NewFrameGraphBuilder(factory ResourceFactory, board *Blackboard) *FrameGraphBuilder {
	return &FrameGraphBuilder{factory: factory, blackboard: board}
}

// CreateTransientResource creates a resource scoped to this frame; the
// FrameGraph destroys it once the frame's fences have signalled.
func (b *FrameGraphBuilder) CreateTransientResource(desc hal.ResourceDescriptor) arena.ResourceID {
	return b.factory.CreateTransientResource(desc)
}

// AddRenderPassBundle appends bundle to this builder's contribution. Bundle
// IDs are not yet assigned; the compiler numbers every bundle across every
// builder, in builder order, during bundle-ID assignment.
func (b *FrameGraphBuilder) AddRenderPassBundle(bundle *RenderPassBundle) {
	b.bundles = append(b.bundles, bundle)
}

// AddRenderPass wraps a single pass in its own bundle - the convenience
// path for modules whose passes have no intra-bundle grouping to express.
func (b *FrameGraphBuilder) AddRenderPass(pass *RenderPass) {
	bundle := NewRenderPassBundle()
	bundle.AddRenderPass(pass)
	b.AddRenderPassBundle(bundle)
}

// Blackboard returns the frame-shared blackboard.
func (b *FrameGraphBuilder) Blackboard() *Blackboard { return b.blackboard }

// Bundles returns the bundles accumulated by this builder, in submission
// order.
func (b *FrameGraphBuilder) Bundles() []*RenderPassBundle { return b.bundles }
