// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

// ResourceState mirrors D3D12_RESOURCE_STATES: a bitmask describing how a
// subresource may currently be accessed by the GPU. Unlike the WebGPU usage
// enums this module used to carry, this type is deliberately D3D12-shaped -
// the core's state tracker reasons about exactly this bitmask, including
// the read-state combinability rules the hardware defines.
type ResourceState uint32

const (
	StateCommon                  ResourceState = 0
	StateVertexAndConstantBuffer ResourceState = 0x1
	StateIndexBuffer             ResourceState = 0x2
	StateRenderTarget            ResourceState = 0x4
	StateUnorderedAccess         ResourceState = 0x8
	StateDepthWrite              ResourceState = 0x10
	StateDepthRead               ResourceState = 0x20
	StateNonPixelShaderResource  ResourceState = 0x40
	StatePixelShaderResource     ResourceState = 0x80
	StateStreamOut               ResourceState = 0x100
	StateIndirectArgument        ResourceState = 0x200
	StateCopyDest                ResourceState = 0x400
	StateCopySource              ResourceState = 0x800
	StateResolveDest             ResourceState = 0x1000
	StateResolveSource           ResourceState = 0x2000
	StateGenericRead             ResourceState = StateVertexAndConstantBuffer | StateIndexBuffer | StateNonPixelShaderResource | StatePixelShaderResource | StateIndirectArgument | StateCopySource
	StatePresent                 ResourceState = 0
	StatePredication             ResourceState = 0x200
	StateVideoDecodeRead         ResourceState = 0x10000
	StateVideoDecodeWrite        ResourceState = 0x20000
)

// IsReadOnly reports whether every bit set in s describes a read-only GPU
// access. Read-only states may be freely combined into a single barrier
// target; a state containing any write bit cannot be combined with anything
// else.
func (s ResourceState) IsReadOnly() bool {
	const writeMask = StateRenderTarget | StateUnorderedAccess | StateDepthWrite |
		StateStreamOut | StateCopyDest | StateResolveDest | StateVideoDecodeWrite
	return s&writeMask == 0
}

// IsCompatible reports whether a and b may be merged into a single resource
// state (both read-only) rather than requiring a transition between them.
func (a ResourceState) IsCompatible(b ResourceState) bool {
	return a.IsReadOnly() && b.IsReadOnly()
}

// ImplicitPromotionStates is the subset of states a resource sitting in
// COMMON may reach without an explicit barrier, per D3D12 implicit state
// promotion: the read states and COPY_DEST. Render-target, depth-write, and
// UAV states are never implicitly reachable from COMMON.
const ImplicitPromotionStates = StateNonPixelShaderResource | StatePixelShaderResource |
	StateCopySource | StateCopyDest | StateGenericRead

// IsImplicitPromotionEligible reports whether s can be reached from COMMON
// without an explicit transition barrier.
func (s ResourceState) IsImplicitPromotionEligible() bool {
	return s&^ImplicitPromotionStates == 0
}

// BarrierKind distinguishes the three D3D12_RESOURCE_BARRIER_TYPE variants
// the state tracker and alias tracker emit.
type BarrierKind uint8

const (
	BarrierTransition BarrierKind = iota
	BarrierAliasing
	BarrierUAV
)

// SplitBarrierFlag mirrors D3D12_RESOURCE_BARRIER_FLAGS: none, begin-only, or
// end-only. A split barrier is a matched BEGIN/END pair whose cost is hidden
// behind intervening GPU work instead of stalling at a single point.
type SplitBarrierFlag uint8

const (
	SplitNone SplitBarrierFlag = iota
	SplitBeginOnly
	SplitEndOnly
)

// Barrier is the state-tracker's queue-agnostic description of one barrier.
// ResourceHandle is an opaque identifier the submission layer resolves to a
// concrete *d3d12.ID3D12Resource at recording time - the state tracker never
// touches the HAL's native resource type directly.
type Barrier struct {
	Kind          BarrierKind
	Flag          SplitBarrierFlag
	Resource      ResourceHandle
	Subresource   uint32 // 0xffffffff == D3D12_RESOURCE_BARRIER_ALL_SUBRESOURCES
	Before        ResourceState
	After         ResourceState
	AliasedBefore ResourceHandle // BarrierAliasing only; zero value == "any resource"
}

// ResourceHandle is an opaque, generation-checked reference to a GPU
// resource owned by the core/arena package. It carries no native pointer so
// that the tracking and compilation packages stay free of cgo/syscall
// dependencies and can be unit tested off of real hardware.
type ResourceHandle uint64

// QueueKind identifies which of the three D3D12 command queue types a piece
// of work targets.
type QueueKind uint8

const (
	QueueGraphics QueueKind = iota
	QueueCompute
	QueueCopy
	numQueueKinds
)

func (q QueueKind) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	case QueueCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// NumQueueKinds is the number of distinct queue kinds the core schedules
// work onto. Packages that keep a fixed-size per-queue array size it with
// this constant instead of a magic "3".
const NumQueueKinds = int(numQueueKinds)
