package resource

import (
	"fmt"
	"sync"

	"github.com/brawler/framegraph/hal"
)

// InitialStateFor returns the state a freshly created resource starts in,
// per the D3D12 heap rules: upload-heap resources are permanently in
// GENERIC_READ and readback-heap resources permanently in COPY_DEST;
// render-target textures start in RENDER_TARGET and depth-stencil textures
// in DEPTH_WRITE; buffers and simultaneous-access textures in default heaps
// start in COMMON.
func InitialStateFor(desc hal.ResourceDescriptor) hal.ResourceState {
	switch desc.HeapType {
	case hal.HeapTypeUpload:
		if hal.DebugAssertionsEnabled() && desc.Kind != hal.ResourceKindBuffer {
			panic("resource: only buffers may live in an upload heap")
		}
		return hal.StateGenericRead
	case hal.HeapTypeReadback:
		if hal.DebugAssertionsEnabled() && desc.Kind != hal.ResourceKindBuffer {
			panic("resource: only buffers may live in a readback heap")
		}
		return hal.StateCopyDest
	}
	if desc.Kind == hal.ResourceKindTexture {
		if desc.AllowRenderTarget {
			return hal.StateRenderTarget
		}
		if desc.AllowDepthStencil {
			return hal.StateDepthWrite
		}
	}
	return hal.StateCommon
}

// SubresourceCount derives the subresource count from a descriptor: buffers
// have exactly one; textures have mip-count x array-size (single-plane
// formats only - the formats this module creates).
func SubresourceCount(desc hal.ResourceDescriptor) uint32 {
	if desc.Kind == hal.ResourceKindBuffer {
		return 1
	}
	mips := uint32(desc.MipLevels)
	if mips == 0 {
		mips = 1
	}
	layers := uint32(desc.DepthOrArraySize)
	if layers == 0 {
		layers = 1
	}
	return mips * layers
}

// SubresourceStateManager is the authoritative per-subresource state record
// a resource carries between frames: one hal.ResourceState per subresource,
// written from a compiled frame's final states (GPUResource.SetCarriedState)
// and consulted at the start of the next compilation to seed initial
// transitions.
type SubresourceStateManager struct {
	mu     sync.RWMutex
	states []hal.ResourceState
}

// NewSubresourceStateManager creates a manager with every subresource in
// initial.
func NewSubresourceStateManager(count uint32, initial hal.ResourceState) *SubresourceStateManager {
	states := make([]hal.ResourceState, count)
	for i := range states {
		states[i] = initial
	}
	return &SubresourceStateManager{states: states}
}

// StateOf returns the recorded state of one subresource.
func (m *SubresourceStateManager) StateOf(subresource uint32) hal.ResourceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(subresource) >= len(m.states) {
		panic(fmt.Sprintf("resource: subresource %d out of range (%d subresources)", subresource, len(m.states)))
	}
	return m.states[subresource]
}

// CombinedState ORs every subresource's state - what a whole-resource
// (ALL_SUBRESOURCES) dependency observes as its before-state.
func (m *SubresourceStateManager) CombinedState() hal.ResourceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s hal.ResourceState
	for _, st := range m.states {
		s |= st
	}
	return s
}

// SetAll records state on every subresource.
func (m *SubresourceStateManager) SetAll(state hal.ResourceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.states {
		m.states[i] = state
	}
}

// Set records state on one subresource.
func (m *SubresourceStateManager) Set(subresource uint32, state hal.ResourceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(subresource) >= len(m.states) {
		panic(fmt.Sprintf("resource: subresource %d out of range (%d subresources)", subresource, len(m.states)))
	}
	m.states[subresource] = state
}

// Count returns the number of subresources tracked.
func (m *SubresourceStateManager) Count() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint32(len(m.states))
}
